// Profiling:
// go build ./profile/entities
// go tool pprof -http=":8000" -nodefraction=0.001 ./entities mem.pprof

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
	rounds := 10
	iters := 100
	entities := 100
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		registry := depot.Factory.NewRegistry()

		for range iters {
			created := registry.CreateEntities(numEntities)
			for _, e := range created {
				if _, err := depot.CreateComponent(registry, e, position{X: 1, Y: 2}); err != nil {
					log.Fatal(err)
				}
				if _, err := depot.CreateComponent(registry, e, velocity{X: 3, Y: 4}); err != nil {
					log.Fatal(err)
				}
			}
			for _, e := range created {
				if err := registry.DestroyEntity(e); err != nil {
					log.Fatal(err)
				}
			}
		}
		registry.Release()
	}
}
