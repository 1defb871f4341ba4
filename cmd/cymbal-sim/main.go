package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"
	"net/http"

	"github.com/golang/glog"

	fx "github.com/robotalks/cymbal/pkg/framework"
	"github.com/robotalks/cymbal/pkg/l0/device"
	"github.com/robotalks/cymbal/pkg/l0/frame"
	"github.com/robotalks/cymbal/pkg/l1/comm/websocket"
	"github.com/robotalks/cymbal/pkg/l1/env/bus"
	env "github.com/robotalks/cymbal/pkg/l1/env/device"
	"github.com/robotalks/cymbal/pkg/sim"
	"github.com/robotalks/cymbal/pkg/sim/bots/actuator"
	"github.com/robotalks/cymbal/pkg/sim/metrics"
	"github.com/robotalks/cymbal/pkg/sim/visualization/trace"
)

var listenAddr = ":8080"

func init() {
	flag.StringVar(&listenAddr, "listen", listenAddr, "HTTP address serving /bus (websocket) and /metrics, empty to disable.")
	bus.SetupFlags()
	env.SetupFlags()
	actuator.SetupFlags()
	trace.SetupFlags()
}

func main() {
	flag.Parse()

	busConf := bus.NewConfig()
	env := env.NewConfig().MustNewEnv(busConf.MQTTBrokerURL)
	bot, err := actuator.NewConfig().NewController(env)
	if err != nil {
		log.Fatalln(err)
	}
	vis := trace.NewConfig().NewAdapter().Subscribe(bot)

	loop := fx.NewLoop()
	reg := metrics.NewRegistry()
	m := metrics.New(reg)
	bot.Device.Observer = sim.ObserverMux{m, sim.DispatchHook(func(frame.Frame, device.Outcome) {
		loop.TriggerNext()
	})}
	bot.SubscribeStatus(sim.StatusListenerFunc(func(cc fx.ControlContext, s sim.Snapshot) {
		m.Update(s.State, s.PulseWidth.Seconds())
	}))
	hub := sim.NewHub(bot.Link)

	runner := fx.NewRunner().HandleSignals()
	ctx := runner.Context
	runner.Go(loop.Add(bot, vis))
	if busConf.BusURL != "" {
		conn := busConf.MustOpen()
		runner.Go(fx.NamedRun("bus", fx.RunFunc(func(ctx context.Context) error {
			return fx.RunWithContextCloser(ctx, conn, func() error {
				// bus transports may echo writes back, so nothing is relayed to them
				return bot.Link.Serve(ctx, conn)
			})
		})))
	}
	if listenAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/bus", websocket.Handler(func(rw *websocket.ReadWriter) {
			glog.V(1).Info("bus peer joined")
			if err := hub.Serve(ctx, rw); err != nil && err != context.Canceled {
				glog.Warningf("bus peer: %v", err)
			}
		}))
		mux.Handle("/metrics", metrics.Handler(reg))
		server := &http.Server{Addr: listenAddr, Handler: mux}
		runner.Go(fx.NamedRun("http", fx.RunFunc(func(ctx context.Context) error {
			return fx.RunWithContextCloser(ctx, server, server.ListenAndServe)
		})))
	}
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
