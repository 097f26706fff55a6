package cmd

import (
	"fmt"
	"runtime"

	"github.com/mitchellh/go-homedir"
	"github.com/shenwei356/util/bytesize"
	"github.com/spf13/cobra"
)

func getFlagString(cmd *cobra.Command, flag string) string {
	v, err := cmd.Flags().GetString(flag)
	checkError(err)
	return v
}

func getFlagPath(cmd *cobra.Command, flag string) string {
	v := getFlagString(cmd, flag)
	if v == "" {
		return v
	}
	expanded, err := homedir.Expand(v)
	checkError(err)
	return expanded
}

func getFlagInt(cmd *cobra.Command, flag string) int {
	v, err := cmd.Flags().GetInt(flag)
	checkError(err)
	return v
}

func getFlagPositiveInt(cmd *cobra.Command, flag string) int {
	v := getFlagInt(cmd, flag)
	if v <= 0 {
		checkError(fmt.Errorf("value of flag --%s should be positive: %d", flag, v))
	}
	return v
}

func getFlagBool(cmd *cobra.Command, flag string) bool {
	v, err := cmd.Flags().GetBool(flag)
	checkError(err)
	return v
}

func getFlagSizeMB(cmd *cobra.Command, flag string) int {
	s := getFlagString(cmd, flag)
	if s == "" {
		return 0
	}
	n, err := bytesize.ParseByteSize(s)
	if err != nil {
		checkError(fmt.Errorf("invalid size for --%s: %s", flag, s))
	}
	return int(n / (1 << 20))
}

// getFlagNbCores resolves a --nb-cores value of 0 (the documented
// "auto") to runtime.NumCPU(), the way kmcp resolves -j/--threads.
func getFlagNbCores(cmd *cobra.Command, flag string) int {
	v := getFlagInt(cmd, flag)
	if v <= 0 {
		return runtime.NumCPU()
	}
	return v
}
