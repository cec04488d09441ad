// Package stats aggregates fleet-level statistics from vessel snapshots.
// Summaries are computed on demand from ListAll output, so they carry no
// synchronization of their own.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/opd-ai/go-vesselsim/pkg/entity"
	"github.com/opd-ai/go-vesselsim/pkg/physics"
)

// Summary holds aggregated statistics for one fleet snapshot.
type Summary struct {
	Count    int `json:"count"`
	Underway int `json:"underway"`
	Holding  int `json:"holding"`

	MeanSpeed   float64 `json:"meanSpeed"`
	StdDevSpeed float64 `json:"stdDevSpeed"`

	// Distance-to-target distribution across the whole fleet.
	MeanDistance   float64 `json:"meanDistance"`
	MedianDistance float64 `json:"medianDistance"`
	P90Distance    float64 `json:"p90Distance"`
	MaxDistance    float64 `json:"maxDistance"`
}

// Summarize computes fleet statistics from a snapshot. A vessel counts as
// underway when its distance to target is at or beyond the arrival
// tolerance. An empty snapshot yields a zero Summary.
func Summarize(states []entity.VesselState, arrivalTolerance float64) Summary {
	summary := Summary{Count: len(states)}
	if len(states) == 0 {
		return summary
	}

	speeds := make([]float64, 0, len(states))
	distances := make([]float64, 0, len(states))
	for _, s := range states {
		pos := physics.Vector2D{X: s.X, Y: s.Y}
		target := physics.Vector2D{X: s.TargetX, Y: s.TargetY}
		d := pos.Distance(target)

		speeds = append(speeds, s.Speed)
		distances = append(distances, d)
		if d < arrivalTolerance {
			summary.Holding++
		} else {
			summary.Underway++
		}
	}

	summary.MeanSpeed = stat.Mean(speeds, nil)
	if len(speeds) > 1 {
		summary.StdDevSpeed = stat.StdDev(speeds, nil)
	}

	sort.Float64s(distances)
	summary.MeanDistance = stat.Mean(distances, nil)
	summary.MedianDistance = stat.Quantile(0.5, stat.Empirical, distances, nil)
	summary.P90Distance = stat.Quantile(0.9, stat.Empirical, distances, nil)
	summary.MaxDistance = distances[len(distances)-1]

	return summary
}
