package main

import "github.com/phytocite/occimport/pkg/cli"

// Version is set at build time via -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	cli.Execute(Version)
}
