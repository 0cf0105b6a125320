// Package heat provides the baseline weather model and the per-cell
// heat-field computation.
package heat

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrMissingForecast is returned when a simulated day has no weather entry.
var ErrMissingForecast = errors.New("forecast missing for simulated day")

// DayWeather is the forecast high and low for one day, in °F.
type DayWeather struct {
	High float64 `json:"high"`
	Low  float64 `json:"low"`
}

// Forecast is the per-day baseline weather input, resolved before a run
// starts. Missing days are an error, never silently defaulted.
type Forecast struct {
	Days []DayWeather `json:"days"`
}

// Day returns the weather for day d (0-based), or ErrMissingForecast.
func (f Forecast) Day(d int) (DayWeather, error) {
	if d < 0 || d >= len(f.Days) {
		return DayWeather{}, fmt.Errorf("day %d: %w", d, ErrMissingForecast)
	}
	return f.Days[d], nil
}

// Covers reports whether the forecast has an entry for every day in [0, horizon).
func (f Forecast) Covers(horizon int) bool {
	return len(f.Days) >= horizon
}

// Constant returns a forecast with the same high/low every day. Used by
// tests and synthetic stress scenarios.
func Constant(days int, high, low float64) Forecast {
	f := Forecast{Days: make([]DayWeather, days)}
	for i := range f.Days {
		f.Days[i] = DayWeather{High: high, Low: low}
	}
	return f
}

// Seasonal synthesizes a desert-summer forecast: a sinusoidal annual cycle
// peaking in midsummer plus day-to-day noise, deterministic from seed.
// startDay is the day of year the horizon begins on.
func Seasonal(days, startDay int, seed int64) Forecast {
	rng := rand.New(rand.NewSource(seed))
	f := Forecast{Days: make([]DayWeather, days)}
	for i := range f.Days {
		doy := (startDay + i) % 365
		base := 85 + 22*math.Sin(2*math.Pi*float64(doy)/365-math.Pi/2)
		noise := rng.NormFloat64() * 4
		high := base + noise
		f.Days[i] = DayWeather{High: high, Low: high - 22}
	}
	return f
}

// diurnalPeakHour is the hour of day at which ambient temperature peaks.
const diurnalPeakHour = 15

// Ambient interpolates the day's low and high with a sinusoidal diurnal
// curve peaking at diurnalPeakHour.
func Ambient(w DayWeather, hour int) float64 {
	phase := 2 * math.Pi * float64(hour-diurnalPeakHour) / 24
	weight := (math.Cos(phase) + 1) / 2 // 1 at the peak hour, 0 twelve hours away
	return w.Low + (w.High-w.Low)*weight
}
