package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// BoundingBox is a geographic area in degrees.
type BoundingBox struct {
	North float64 `json:"north"`
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
}

// Validate rejects boxes whose bounds are not finite, whose north bound does
// not lie above the south bound, or whose west bound lies east of the east
// bound.
func (b BoundingBox) Validate() error {
	for _, v := range []float64{b.North, b.West, b.South, b.East} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return rangeErrorf("area", "bounds must be finite, got %v", b)
		}
	}
	if b.North <= b.South {
		return rangeErrorf("area", "north %g must be greater than south %g", b.North, b.South)
	}
	if b.West > b.East {
		return rangeErrorf("area", "west %g must not lie east of east %g", b.West, b.East)
	}
	return nil
}

// Contains reports whether b covers every point of other.
func (b BoundingBox) Contains(other BoundingBox) bool {
	return b.North >= other.North && b.South <= other.South &&
		b.West <= other.West && b.East >= other.East
}

// ParseBoundingBox parses "north,west,south,east".
func ParseBoundingBox(s string) (BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BoundingBox{}, rangeErrorf("area", "want north,west,south,east, got %q", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BoundingBox{}, rangeErrorf("area", "bound %q is not a number", p)
		}
		v[i] = f
	}
	return BoundingBox{North: v[0], West: v[1], South: v[2], East: v[3]}, nil
}

// String formats b as "north,west,south,east", the form ParseBoundingBox reads.
func (b BoundingBox) String() string {
	parts := make([]string, 0, 4)
	for _, v := range []float64{b.North, b.West, b.South, b.East} {
		parts = append(parts, strconv.FormatFloat(v, 'f', -1, 64))
	}
	return strings.Join(parts, ",")
}

// Step type codes.
const (
	TypeAnalysis          = "AN"
	TypeForecast          = "FC"
	TypePerturbedForecast = "PF"
)

// StepPlan holds the parallel per-step sequences derived from a date range.
type StepPlan struct {
	Types    []string
	Times    []string
	Steps    []string
	Timestep int // hours

	// Start and End are the dates written to the control file. The ensemble
	// regime moves both to the forecast base time.
	Start time.Time
	End   time.Time
	// AccTime is set by the ensemble regime only.
	AccTime string
}

// Len returns the number of steps in the plan.
func (p StepPlan) Len() int { return len(p.Types) }

// Ensemble population and sample size.
const (
	EnsembleMembers    = 50
	EnsembleSampleSize = 9
)

// EnsembleSelection is a draw of distinct ensemble member identifiers, kept
// in draw order.
type EnsembleSelection struct {
	Members []int
}

// String joins the members with "/" as MARS expects for NUMBER.
func (s EnsembleSelection) String() string {
	parts := make([]string, len(s.Members))
	for i, m := range s.Members {
		parts[i] = strconv.Itoa(m)
	}
	return strings.Join(parts, "/")
}
