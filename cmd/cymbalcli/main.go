package main

import (
	"github.com/robotalks/cymbal/pkg/cli/sh"
	"github.com/robotalks/cymbal/pkg/l1/env/bus"

	_ "github.com/robotalks/cymbal/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	bus.SetupFlags()
}

func main() {
	sh.Main()
}
