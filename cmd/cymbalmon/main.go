package main

import (
	"context"
	"flag"
	"log"

	fx "github.com/robotalks/cymbal/pkg/framework"
	"github.com/robotalks/cymbal/pkg/l0/frame"
	"github.com/robotalks/cymbal/pkg/l1"
	"github.com/robotalks/cymbal/pkg/l1/comm"
	"github.com/robotalks/cymbal/pkg/l1/comm/mqtt"
	"github.com/robotalks/cymbal/pkg/l1/env/bus"
	"github.com/robotalks/cymbal/pkg/l1/msgs"
)

func init() {
	bus.SetupFlags()
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	conf := bus.NewConfig()
	runner := fx.NewRunner().HandleSignals()
	if conf.BusURL != "" {
		pipe := comm.NewPipe(conf.MustOpen())
		pipe.Handler = l1.HandleFrameFunc(func(ctx context.Context, f frame.Frame) {
			log.Printf("bus: %s", f)
		})
		runner.Go(fx.NamedRun("bus", pipe))
	}
	if conf.MQTTBrokerURL != "" {
		q, err := mqtt.NewQueueFromURL(conf.MQTTBrokerURL)
		if err != nil {
			log.Fatalln(err)
		}
		mqtt.SubStatus(q, func(name string, status *msgs.Status) {
			if status == nil {
				log.Printf("%s: gone", name)
				return
			}
			log.Printf("%s: %s", name, status.String())
		})
		runner.Go(fx.NamedRun("status", fx.RunFunc(func(ctx context.Context) error {
			if err := q.ConnectAndWait(); err != nil {
				return err
			}
			<-ctx.Done()
			q.Close()
			return ctx.Err()
		})))
	}
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
