package bench

import (
	"testing"

	"github.com/mlange-42/arche/ecs"
)

// Arche baselines for the same workloads. Arche removes entities eagerly,
// so its removal cost is paid inside the loop rather than in one pass.

func BenchmarkIterArche(b *testing.B) {
	b.StopTimer()
	world := ecs.NewWorld(ecs.NewConfig().WithCapacityIncrement(1024))

	posID := ecs.ComponentID[Position](&world)
	velID := ecs.ComponentID[Velocity](&world)

	ecs.NewBuilder(&world, posID).NewBatch(nPos)
	ecs.NewBuilder(&world, posID, velID).NewBatch(nPosVel)

	filter := ecs.All(posID, velID)
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		query := world.Query(filter)
		for query.Next() {
			pos := (*Position)(query.Get(posID))
			vel := (*Velocity)(query.Get(velID))
			pos.X += vel.X
			pos.Y += vel.Y
		}
	}
}

func BenchmarkRemoveArche(b *testing.B) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		world := ecs.NewWorld(ecs.NewConfig().WithCapacityIncrement(1024))
		posID := ecs.ComponentID[Position](&world)
		entities := make([]ecs.Entity, 0, nPos)
		for j := 0; j < nPos; j++ {
			entities = append(entities, world.NewEntity(posID))
		}
		b.StartTimer()

		for j := 0; j < nPos; j += 3 {
			world.RemoveEntity(entities[j])
		}
	}
}
