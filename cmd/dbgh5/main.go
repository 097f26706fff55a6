package main

import "github.com/shenwei356/dbgbuild/cmd/dbgh5/cmd"

func main() {
	cmd.Execute()
}
