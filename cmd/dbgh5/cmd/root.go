// Copyright © 2026 shenwei356
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package cmd implements the dbgh5 command line tool: the counting and
// graph-building pipeline wired up behind a cobra CLI, modelled on
// kmcp's own cmd package.
package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/shenwei356/go-logging"
	"github.com/spf13/cobra"
)

var log *logging.Logger

func init() {
	logging.SetFormatter(logging.MustStringFormatter(
		`%{color}[%{level:.4s}]%{color:reset} %{message}`,
	))
	backend := logging.NewLogBackend(colorable.NewColorableStderr(), "", 0)
	logging.SetBackend(backend)
	log = logging.MustGetLogger("dbgh5")
}

// RootCmd is the dbgh5 entry point.
var RootCmd = &cobra.Command{
	Use:   "dbgh5",
	Short: "k-mer counting and compacted de Bruijn graph builder",
	Long: `dbgh5 -- k-mer counting engine and BCALM-style compacted de Bruijn
graph builder.

It reads FASTA/FASTQ reads, counts canonical k-mers through a
partitioned, multi-pass pipeline, applies an abundance threshold,
builds a Bloom+cFP membership structure and an MPHF annotation store
over the solid k-mer set, and compacts the resulting de Bruijn graph
into unitigs.`,
}

// Execute runs the root command, exiting the process with code 1 on a
// user error.
func Execute() {
	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func checkError(err error) {
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
