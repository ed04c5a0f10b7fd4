package main

import (
	"fmt"
	"os"

	"github.com/mehmetkoksal-w/routemap/internal/cli"
	"github.com/mehmetkoksal-w/routemap/internal/scan"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cli.SetBuildInfo(version, commit, date)
	scan.Version = cli.GetVersion()
	if err := cli.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "routemap: %v\n", err)
		os.Exit(1)
	}
}
