// Package grid provides the spatial model: a fixed-size cell grid over a
// city bounding box, with per-cell land cover and heat-field state.
package grid

import (
	"errors"
	"fmt"
	"iter"
	"math"
)

// ErrOutOfBounds is returned when a coordinate falls outside the grid.
var ErrOutOfBounds = errors.New("coordinate out of grid bounds")

// KmPerDegreeLat is the approximate north-south extent of one degree of latitude.
const KmPerDegreeLat = 111.0

// LandCover classifies a cell's dominant land use.
type LandCover uint8

const (
	CoverResidential LandCover = iota
	CoverCommercial
	CoverPark
	CoverIndustrial
	CoverRoad
)

// Name returns a human-readable name for a land cover type.
func (lc LandCover) Name() string {
	switch lc {
	case CoverResidential:
		return "residential"
	case CoverCommercial:
		return "commercial"
	case CoverPark:
		return "park"
	case CoverIndustrial:
		return "industrial"
	case CoverRoad:
		return "road"
	default:
		return "unknown"
	}
}

// Bounds is a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Valid reports whether the box has positive extent in both axes.
func (b Bounds) Valid() bool {
	return b.MaxLat > b.MinLat && b.MaxLon > b.MinLon &&
		b.MinLat >= -90 && b.MaxLat <= 90 &&
		b.MinLon >= -180 && b.MaxLon <= 180
}

// Cell is one fixed spatial unit of the grid.
// CurrentTemp is the only field mutated during a simulation day.
type Cell struct {
	ID  int `json:"id"` // row*cols + col, stable for the grid's lifetime
	Row int `json:"row"`
	Col int `json:"col"`

	Bounds Bounds    `json:"bounds"`
	Cover  LandCover `json:"cover"`

	// Static surface properties.
	BaselineTemp float64 `json:"baseline_temp"` // °F offset-adjusted surface baseline
	Canopy       float64 `json:"canopy"`        // tree canopy fraction, 0–1
	RoofAlbedo   float64 `json:"roof_albedo"`   // reflective roof factor, 0–1
	Impervious   float64 `json:"impervious"`    // impervious surface fraction, 0–1

	// Dynamic heat-field state, rewritten each step.
	CurrentTemp float64 `json:"current_temp"`
}

// CenterLat returns the latitude of the cell's centroid.
func (c *Cell) CenterLat() float64 {
	return (c.Bounds.MinLat + c.Bounds.MaxLat) / 2
}

// CenterLon returns the longitude of the cell's centroid.
func (c *Cell) CenterLon() float64 {
	return (c.Bounds.MinLon + c.Bounds.MaxLon) / 2
}

// Grid discretizes a bounding box into cellSizeKm squares, row-major.
type Grid struct {
	Bounds     Bounds
	CellSizeKm float64
	Rows, Cols int
	Cells      []Cell
}

// New creates a grid covering bounds with square cells of cellSizeKm.
// Cell indexing is deterministic: row-major from the southwest corner.
func New(bounds Bounds, cellSizeKm float64) (*Grid, error) {
	if !bounds.Valid() {
		return nil, fmt.Errorf("grid: invalid bounds %+v", bounds)
	}
	if cellSizeKm <= 0 {
		return nil, fmt.Errorf("grid: cell size must be positive, got %g", cellSizeKm)
	}

	latSpanKm := (bounds.MaxLat - bounds.MinLat) * KmPerDegreeLat
	midLat := (bounds.MinLat + bounds.MaxLat) / 2
	lonSpanKm := (bounds.MaxLon - bounds.MinLon) * kmPerDegreeLon(midLat)

	rows := int(math.Ceil(latSpanKm / cellSizeKm))
	cols := int(math.Ceil(lonSpanKm / cellSizeKm))
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}

	g := &Grid{
		Bounds:     bounds,
		CellSizeKm: cellSizeKm,
		Rows:       rows,
		Cols:       cols,
		Cells:      make([]Cell, rows*cols),
	}

	latStep := (bounds.MaxLat - bounds.MinLat) / float64(rows)
	lonStep := (bounds.MaxLon - bounds.MinLon) / float64(cols)

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			id := row*cols + col
			g.Cells[id] = Cell{
				ID:  id,
				Row: row,
				Col: col,
				Bounds: Bounds{
					MinLat: bounds.MinLat + float64(row)*latStep,
					MaxLat: bounds.MinLat + float64(row+1)*latStep,
					MinLon: bounds.MinLon + float64(col)*lonStep,
					MaxLon: bounds.MinLon + float64(col+1)*lonStep,
				},
				Cover: CoverResidential,
			}
		}
	}
	return g, nil
}

// Cell returns the cell with the given stable ID, or nil if out of range.
func (g *Grid) Cell(id int) *Cell {
	if id < 0 || id >= len(g.Cells) {
		return nil
	}
	return &g.Cells[id]
}

// CellAt returns the cell containing the coordinate, or ErrOutOfBounds.
func (g *Grid) CellAt(lat, lon float64) (*Cell, error) {
	b := g.Bounds
	if lat < b.MinLat || lat > b.MaxLat || lon < b.MinLon || lon > b.MaxLon {
		return nil, fmt.Errorf("grid: (%g, %g): %w", lat, lon, ErrOutOfBounds)
	}
	row := int((lat - b.MinLat) / (b.MaxLat - b.MinLat) * float64(g.Rows))
	col := int((lon - b.MinLon) / (b.MaxLon - b.MinLon) * float64(g.Cols))
	if row >= g.Rows {
		row = g.Rows - 1
	}
	if col >= g.Cols {
		col = g.Cols - 1
	}
	return &g.Cells[row*g.Cols+col], nil
}

// Neighbors yields cells whose centroids lie within radiusKm of c's
// centroid, excluding c itself. The sequence is finite and restartable:
// each range over it starts again from the nearest rows.
func (g *Grid) Neighbors(c *Cell, radiusKm float64) iter.Seq[*Cell] {
	return func(yield func(*Cell) bool) {
		if radiusKm <= 0 {
			return
		}
		span := int(math.Ceil(radiusKm/g.CellSizeKm)) + 1
		lat, lon := c.CenterLat(), c.CenterLon()

		for dr := -span; dr <= span; dr++ {
			row := c.Row + dr
			if row < 0 || row >= g.Rows {
				continue
			}
			for dc := -span; dc <= span; dc++ {
				col := c.Col + dc
				if col < 0 || col >= g.Cols || (dr == 0 && dc == 0) {
					continue
				}
				n := &g.Cells[row*g.Cols+col]
				if DistanceKm(lat, lon, n.CenterLat(), n.CenterLon()) <= radiusKm {
					if !yield(n) {
						return
					}
				}
			}
		}
	}
}

// CoveredCellIDs returns the IDs of all cells whose centroids lie within
// radiusKm of the given point. Used for intervention target regions.
func (g *Grid) CoveredCellIDs(lat, lon, radiusKm float64) []int {
	var ids []int
	for i := range g.Cells {
		c := &g.Cells[i]
		if DistanceKm(lat, lon, c.CenterLat(), c.CenterLon()) <= radiusKm {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// DistanceKm approximates the distance between two coordinates using an
// equirectangular projection. Adequate at city scale.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	midLat := (lat1 + lat2) / 2
	dy := (lat2 - lat1) * KmPerDegreeLat
	dx := (lon2 - lon1) * kmPerDegreeLon(midLat)
	return math.Sqrt(dx*dx + dy*dy)
}

func kmPerDegreeLon(lat float64) float64 {
	return KmPerDegreeLat * math.Cos(lat*math.Pi/180)
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d, %.1fkm cells)", g.Rows, g.Cols, g.CellSizeKm)
}

// CoverCounts returns a summary of land cover distribution.
func (g *Grid) CoverCounts() map[LandCover]int {
	counts := make(map[LandCover]int)
	for i := range g.Cells {
		counts[g.Cells[i].Cover]++
	}
	return counts
}
