package service

import "math/rand"

const weekendFactor = 0.8

// Simulator advances stock by one simulated day. The random source is
// injected so runs are reproducible under a fixed seed.
type Simulator struct {
	variation float64
	spikeProb float64
	spikeMult float64
	rng       *rand.Rand
}

func NewSimulator(variation, spikeProb, spikeMult float64, src rand.Source) *Simulator {
	return &Simulator{
		variation: variation,
		spikeProb: spikeProb,
		spikeMult: spikeMult,
		rng:       rand.New(src),
	}
}

// Consumption draws one day's consumption: weekend reduction, uniform noise
// within ±variation, and an occasional spike. Never below 1 unit.
func (s *Simulator) Consumption(dailyBaseRate int, isWeekend bool) int {
	base := float64(dailyBaseRate)
	if isWeekend {
		base *= weekendFactor
	}

	noise := (s.rng.Float64()*2 - 1) * s.variation
	consumption := base * (1 + noise)

	if s.rng.Float64() < s.spikeProb {
		consumption *= s.spikeMult
	}

	if consumed := int(consumption); consumed > 1 {
		return consumed
	}
	return 1
}

// Advance applies one day of consumption to priorStock. Stock never goes
// negative.
func (s *Simulator) Advance(priorStock, dailyBaseRate int, isWeekend bool) (newStock, consumed int) {
	consumed = s.Consumption(dailyBaseRate, isWeekend)
	newStock = priorStock - consumed
	if newStock < 0 {
		newStock = 0
	}
	return newStock, consumed
}
