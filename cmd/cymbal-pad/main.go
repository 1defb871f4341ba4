package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"

	"github.com/robotalks/cymbal/pkg/framework"
	"github.com/robotalks/cymbal/pkg/joystick"
	"github.com/robotalks/cymbal/pkg/l1/comm"
	"github.com/robotalks/cymbal/pkg/l1/env/bus"
	"github.com/robotalks/cymbal/pkg/l1/master"
)

func init() {
	bus.SetupFlags()
	joystick.SetupFlags()
}

func main() {
	flag.Parse()

	pipe := comm.NewPipe(bus.NewConfig().MustOpen())
	ctl, err := joystick.NewConfig().NewController(master.NewClient(pipe))
	if err != nil {
		log.Fatalln(err)
	}
	framework.NewLoop().Add(pipe, ctl).RunOrFail()
}
