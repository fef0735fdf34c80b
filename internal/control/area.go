package control

import (
	"fmt"
	"math"
	"strconv"

	"github.com/couchcryptid/flex-control/internal/domain"
)

// Global grid extents in degrees.
const (
	lonMin, lonMax = -180.0, 180.0
	latMin, latMax = -90.0, 90.0
)

// gridEps absorbs floating-point error when locating a bound on the grid,
// measured in grid cells.
const gridEps = 1e-9

// SetArea writes the area directives for box without grid snapping.
func (d *Document) SetArea(box domain.BoundingBox) (domain.BoundingBox, error) {
	if err := box.Validate(); err != nil {
		return domain.BoundingBox{}, err
	}
	d.Merge(areaDirectives(box)...)
	return box, nil
}

// SetGriddedArea snaps box outward onto a global grid of the given spacing,
// then writes GRID and the area directives. The returned box always
// contains the requested one.
func (d *Document) SetGriddedArea(box domain.BoundingBox, grid float64) (domain.BoundingBox, error) {
	snapped, err := SnapToGrid(box, grid)
	if err != nil {
		return domain.BoundingBox{}, err
	}
	updates := append([]Directive{{Name: KeyGrid, Value: formatFloat(grid)}}, areaDirectives(snapped)...)
	d.Merge(updates...)
	return snapped, nil
}

// SnapToGrid returns the smallest box on the grid -180, -180+grid, ..., 180
// by -90, -90+grid, ..., 90 that contains box. Bounds already on a grid line
// stay on it.
func SnapToGrid(box domain.BoundingBox, grid float64) (domain.BoundingBox, error) {
	if err := box.Validate(); err != nil {
		return domain.BoundingBox{}, err
	}
	if !(grid > 0) || math.IsInf(grid, 0) {
		return domain.BoundingBox{}, &domain.DomainRangeError{Field: "grid", Reason: "spacing must be a positive number"}
	}

	west, east, err := outerValues(lonMin, lonMax, grid, box.West, box.East)
	if err != nil {
		return domain.BoundingBox{}, &domain.DomainRangeError{Field: "longitude", Reason: err.Error()}
	}
	south, north, err := outerValues(latMin, latMax, grid, box.South, box.North)
	if err != nil {
		return domain.BoundingBox{}, &domain.DomainRangeError{Field: "latitude", Reason: err.Error()}
	}
	return domain.BoundingBox{North: north, West: west, South: south, East: east}, nil
}

// outerValues returns the grid cell boundaries straddling [a, b] on the axis
// first, first+step, ..., limit. Callers pass a <= b.
func outerValues(first, limit, step, a, b float64) (lo, hi float64, err error) {
	lower, upper := a, b
	last := math.Floor((limit-first)/step + gridEps)

	i := math.Floor((lower-first)/step + gridEps)
	j := math.Ceil((upper-first)/step - gridEps)
	if i < 0 || j > last {
		return 0, 0, fmt.Errorf("bounds [%g, %g] fall outside the grid [%g, %g]", lower, upper, first, first+last*step)
	}

	lo = math.Min(roundGrid(first+i*step), lower)
	hi = math.Max(roundGrid(first+j*step), upper)
	return lo, hi, nil
}

// roundGrid trims accumulated floating-point noise from a grid value.
func roundGrid(v float64) float64 {
	return math.Round(v*1e10) / 1e10
}

func areaDirectives(box domain.BoundingBox) []Directive {
	return []Directive{
		{Name: KeyLower, Value: formatFloat(box.South)},
		{Name: KeyUpper, Value: formatFloat(box.North)},
		{Name: KeyLeft, Value: formatFloat(box.West)},
		{Name: KeyRight, Value: formatFloat(box.East)},
	}
}

func formatFloat(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
