// Package statistics accumulates per-agent results in big blinds per hand.
package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/agentholdem/internal/game"
)

// HandResult is one agent's outcome in one hand.
type HandResult struct {
	HandID   string
	NetBB    float64    // chips won or lost in big blinds
	Showdown bool       // the agent reached showdown
	PotBB    float64    // total awarded in big blinds
	Phase    game.Phase // last phase the agent acted in
}

// PhaseStats tracks results by the phase the agent last acted in.
type PhaseStats struct {
	Hands int
	SumBB float64
}

// Statistics tracks results for one agent across hands.
type Statistics struct {
	Hands  int
	SumBB  float64
	SumBB2 float64   // sum of squares for variance
	Values []float64 // every result for median and percentiles

	ShowdownWins    int
	NonShowdownWins int
	ShowdownBB      float64
	NonShowdownBB   float64
	AllBB           float64

	Phases map[game.Phase]*PhaseStats

	MaxPotBB  float64
	BigPots   int // pots of at least 50bb
	BigPotsBB float64
}

// Mean is the average result in big blinds per hand.
func (s *Statistics) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumBB / float64(s.Hands)
}

// Variance is the sample variance of the results.
func (s *Statistics) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumBB2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
}

func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

func (s *Statistics) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean.
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Add records one hand.
func (s *Statistics) Add(r HandResult) {
	s.Hands++
	s.SumBB += r.NetBB
	s.SumBB2 += r.NetBB * r.NetBB
	s.Values = append(s.Values, r.NetBB)
	s.AllBB += r.NetBB

	if r.Showdown {
		s.ShowdownBB += r.NetBB
		if r.NetBB > 0 {
			s.ShowdownWins++
		}
	} else {
		s.NonShowdownBB += r.NetBB
		if r.NetBB > 0 {
			s.NonShowdownWins++
		}
	}

	if s.Phases == nil {
		s.Phases = make(map[game.Phase]*PhaseStats)
	}
	ps, ok := s.Phases[r.Phase]
	if !ok {
		ps = &PhaseStats{}
		s.Phases[r.Phase] = ps
	}
	ps.Hands++
	ps.SumBB += r.NetBB

	if r.PotBB > s.MaxPotBB {
		s.MaxPotBB = r.PotBB
	}
	if r.PotBB >= 50 {
		s.BigPots++
		s.BigPotsBB += r.NetBB
	}
}

func (s *Statistics) sorted() []float64 {
	out := make([]float64, len(s.Values))
	copy(out, s.Values)
	sort.Float64s(out)
	return out
}

func (s *Statistics) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := s.sorted()
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile interpolates the value at p in [0,1].
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := s.sorted()
	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// PhaseMean is the average result for hands last acted in phase.
func (s *Statistics) PhaseMean(phase game.Phase) float64 {
	ps, ok := s.Phases[phase]
	if !ok || ps.Hands == 0 {
		return 0
	}
	return ps.SumBB / float64(ps.Hands)
}

// Validate checks that the buckets account for every hand.
func (s *Statistics) Validate() error {
	if math.Abs(s.AllBB-s.ShowdownBB-s.NonShowdownBB) > 1e-6 {
		return fmt.Errorf("ledger mismatch: all=%.6f showdown=%.6f non-showdown=%.6f",
			s.AllBB, s.ShowdownBB, s.NonShowdownBB)
	}
	if len(s.Values) != s.Hands {
		return fmt.Errorf("%d values recorded for %d hands", len(s.Values), s.Hands)
	}
	if wins := s.ShowdownWins + s.NonShowdownWins; wins > s.Hands {
		return fmt.Errorf("%d wins exceed %d hands", wins, s.Hands)
	}
	phaseHands := 0
	for _, ps := range s.Phases {
		phaseHands += ps.Hands
	}
	if phaseHands != s.Hands {
		return fmt.Errorf("phase hands total %d does not match %d hands", phaseHands, s.Hands)
	}
	return nil
}
