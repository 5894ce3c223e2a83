// Profiling:
// go build ./profile/lookup
// go tool pprof -http=":8000" -nodefraction=0.001 ./lookup cpu.pprof

package main

import (
	"log"

	"github.com/pkg/profile"

	"github.com/TheBitDrifter/depot"
)

type position struct {
	X, Y float64
}

type velocity struct {
	X, Y float64
}

func main() {
	iters := 10000
	entities := 100
	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	run(iters, entities)
	p.Stop()
}

func run(iters, numEntities int) {
	registry := depot.Factory.NewRegistry()
	for i, e := range registry.CreateEntities(numEntities) {
		if _, err := depot.CreateComponent(registry, e, position{X: 1, Y: 2}); err != nil {
			log.Fatal(err)
		}
		// Every other entity also moves.
		if i%2 == 0 {
			if _, err := depot.CreateComponent(registry, e, velocity{X: 3, Y: 4}); err != nil {
				log.Fatal(err)
			}
		}
	}

	view, err := depot.Factory.NewView(
		registry,
		depot.FactoryNewTypeKey[position](),
		depot.FactoryNewTypeKey[velocity](),
	)
	if err != nil {
		log.Fatal(err)
	}

	for range iters {
		for _, e := range view.Entities() {
			if !view.HasRequired(e) {
				continue
			}
			pos, _ := depot.ViewGet[position](view)
			vel, _ := depot.ViewGet[velocity](view)
			pos.X += vel.X
			pos.Y += vel.Y
		}
	}
}
