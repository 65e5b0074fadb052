package main

import (
	"os"

	"cilc/src/cli"
	"cilc/src/util"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		util.NewLogger(os.Stderr, false).Error(err)
		os.Exit(1)
	}
}
