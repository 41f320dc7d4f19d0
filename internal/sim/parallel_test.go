package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/urdfsim/internal/dynamo"
	"github.com/san-kum/urdfsim/internal/integrators"
	"github.com/san-kum/urdfsim/internal/physics"
)

func TestEnsembleRun(t *testing.T) {
	dyn := testVehicle(t, physics.DefaultEnvironment())

	ens := NewEnsemble(dyn,
		func() dynamo.Stepper { return integrators.NewRK45() },
		func() []dynamo.Metric { return []dynamo.Metric{&testMetric{}} },
	)
	ens.SetWorkers(2)

	initial := []dynamo.State{
		{0, 0, 0, 0, 0, 0, 0, 0, 0},
		{5, 0, 0, 0, 0, 0, 0, 0, 0},
		{-5, 0, 0, 0, 0, 0, 0, 0, 0},
	}
	cfg := dynamo.DefaultConfig()
	cfg.Samples = 10

	results, err := ens.Run(context.Background(), initial, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.States[0][0] != initial[i][0] {
			t.Errorf("result %d out of order: starts at %v", i, r.States[0][0])
		}
		if r.Metrics["test"] != 10 {
			t.Errorf("result %d: metric saw %v samples", i, r.Metrics["test"])
		}
	}

	shift := results[1].Final()[0] - results[0].Final()[0]
	if shift < 4 || shift > 6 {
		t.Errorf("translated start should translate the trajectory, got shift %v", shift)
	}
}

func TestEnsembleFailure(t *testing.T) {
	dyn := testVehicle(t, physics.DefaultEnvironment())
	ens := NewEnsemble(dyn, func() dynamo.Stepper { return integrators.NewRK45() }, nil)

	initial := []dynamo.State{make(dynamo.State, physics.StateDim), {1, 2}}
	results, err := ens.Run(context.Background(), initial, dynamo.DefaultConfig())
	if results != nil {
		t.Error("expected no results on failure")
	}
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}
