// Land-cover synthesis using layered simplex noise.
// Derives land cover, canopy, roof albedo, and impervious fraction per cell
// when no explicit cell inventory is supplied.
package grid

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Impervious surface fractions by land cover, before noise perturbation.
var coverImpervious = map[LandCover]float64{
	CoverResidential: 0.55,
	CoverCommercial:  0.85,
	CoverPark:        0.10,
	CoverIndustrial:  0.90,
	CoverRoad:        0.95,
}

// Baseline canopy fractions by land cover.
var coverCanopy = map[LandCover]float64{
	CoverResidential: 0.15,
	CoverCommercial:  0.05,
	CoverPark:        0.40,
	CoverIndustrial:  0.03,
	CoverRoad:        0.02,
}

// Synthesize populates land cover and surface properties for every cell,
// deterministically from the seed. Three independent noise layers drive
// development intensity, greenness, and surface texture.
func Synthesize(g *Grid, seed int64) {
	devNoise := opensimplex.NewNormalized(seed)
	greenNoise := opensimplex.NewNormalized(seed + 1)
	surfNoise := opensimplex.NewNormalized(seed + 2)

	for i := range g.Cells {
		c := &g.Cells[i]

		// Sample noise in cell-index space, scaled so features span
		// several cells.
		x := float64(c.Col)
		y := float64(c.Row)

		dev := octaveNoise(devNoise, x, y, 4, 0.10, 0.5)
		green := octaveNoise(greenNoise, x, y, 3, 0.08, 0.5)
		surf := octaveNoise(surfNoise, x, y, 3, 0.15, 0.5)

		// Development intensity falls off toward the grid edge, like a
		// real urban core.
		cx := float64(g.Cols-1) / 2
		cy := float64(g.Rows-1) / 2
		maxR := math.Max(cx, cy) + 1
		distFromCenter := math.Sqrt((x-cx)*(x-cx)+(y-cy)*(y-cy)) / maxR
		dev *= 1.0 - 0.5*distFromCenter*distFromCenter

		c.Cover = deriveCover(dev, green)
		c.Impervious = clamp01(coverImpervious[c.Cover] + (surf-0.5)*0.2)
		c.Canopy = clamp01(coverCanopy[c.Cover] + (green-0.5)*0.15)
		c.RoofAlbedo = clamp01(0.15 + surf*0.2)

		// Static surface baseline: hotter where impervious, cooler where
		// green. The heat field step layers ambient weather on top.
		c.BaselineTemp = c.Impervious*6.0 - c.Canopy*4.0
		c.CurrentTemp = c.BaselineTemp
	}
}

// deriveCover classifies land cover from development and greenness.
func deriveCover(dev, green float64) LandCover {
	switch {
	case green > 0.68 && dev < 0.55:
		return CoverPark
	case dev > 0.72:
		return CoverCommercial
	case dev > 0.62 && green < 0.35:
		return CoverIndustrial
	case dev > 0.58 && green < 0.25:
		return CoverRoad
	default:
		return CoverResidential
	}
}

// octaveNoise layers multiple noise frequencies for natural variation.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
