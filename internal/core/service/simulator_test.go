package service

import (
	"math/rand"
	"testing"
)

func TestAdvance_NeverNegativeAndAtLeastOneUnit(t *testing.T) {
	sim := NewSimulator(0.15, 0.05, 1.5, rand.NewSource(1))

	stock := 200
	for i := 0; i < 500; i++ {
		newStock, consumed := sim.Advance(stock, 68, i%7 >= 5)
		if consumed < 1 {
			t.Fatalf("consumed %d, want >= 1", consumed)
		}
		if newStock < 0 {
			t.Fatalf("stock went negative: %d", newStock)
		}
		stock = newStock
		if stock == 0 {
			stock = 200
		}
	}
}

func TestAdvance_DeterministicUnderFixedSeed(t *testing.T) {
	a := NewSimulator(0.15, 0.05, 1.5, rand.NewSource(42))
	b := NewSimulator(0.15, 0.05, 1.5, rand.NewSource(42))

	for i := 0; i < 100; i++ {
		weekend := i%2 == 0
		_, consumedA := a.Advance(1000, 68, weekend)
		_, consumedB := b.Advance(1000, 68, weekend)
		if consumedA != consumedB {
			t.Fatalf("draw %d diverged: %d vs %d", i, consumedA, consumedB)
		}
	}
}

func TestConsumption_WeekendReduction(t *testing.T) {
	// Zero variation and zero spike probability make the draw exact.
	sim := NewSimulator(0, 0, 1.5, rand.NewSource(1))

	if got := sim.Consumption(68, false); got != 68 {
		t.Errorf("weekday consumption = %d, want 68", got)
	}
	if got := sim.Consumption(68, true); got != 54 {
		t.Errorf("weekend consumption = %d, want 54", got)
	}
}

func TestConsumption_SpikeMultiplier(t *testing.T) {
	sim := NewSimulator(0, 1.0, 1.5, rand.NewSource(1))

	if got := sim.Consumption(68, false); got != 102 {
		t.Errorf("spiked consumption = %d, want 102", got)
	}
}

func TestConsumption_FloorsAtOneUnit(t *testing.T) {
	sim := NewSimulator(0, 0, 1.5, rand.NewSource(1))

	if got := sim.Consumption(0, false); got != 1 {
		t.Errorf("consumption with zero base rate = %d, want 1", got)
	}
}

func TestAdvance_DrainsToZeroNotBelow(t *testing.T) {
	sim := NewSimulator(0, 0, 1.5, rand.NewSource(1))

	newStock, consumed := sim.Advance(10, 68, false)
	if consumed != 68 {
		t.Fatalf("consumed = %d, want 68", consumed)
	}
	if newStock != 0 {
		t.Errorf("stock = %d, want 0", newStock)
	}
}
