// Package intervention represents urban-heat interventions as timed,
// spatial modifiers to the heat field and to agent exposure.
package intervention

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrUnknownInterventionType is returned for a type outside the fixed set.
var ErrUnknownInterventionType = errors.New("unknown intervention type")

// Type is the fixed, enumerated intervention type set.
type Type uint8

const (
	TreeCanopy Type = iota
	CoolRoof
	CoolingCenter
	Other
)

// ParseType maps the wire name to a Type, or ErrUnknownInterventionType.
func ParseType(s string) (Type, error) {
	switch s {
	case "tree_canopy":
		return TreeCanopy, nil
	case "cool_roof":
		return CoolRoof, nil
	case "cooling_center":
		return CoolingCenter, nil
	case "other":
		return Other, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrUnknownInterventionType)
	}
}

// Name returns the wire name of a type.
func (t Type) Name() string {
	switch t {
	case TreeCanopy:
		return "tree_canopy"
	case CoolRoof:
		return "cool_roof"
	case CoolingCenter:
		return "cooling_center"
	default:
		return "other"
	}
}

// Region is an intervention's spatial target: either a center plus radius,
// or an explicit cell set.
type Region struct {
	CenterLat float64 `json:"center_lat,omitempty"`
	CenterLon float64 `json:"center_lon,omitempty"`
	RadiusKm  float64 `json:"radius_km,omitempty"`
	CellIDs   []int   `json:"cell_ids,omitempty"`
}

// explicit reports whether the region is an explicit cell list.
func (r Region) explicit() bool { return len(r.CellIDs) > 0 }

// Effect constants. Tree canopy grows toward its ceiling over the ramp
// (species maturation); cool roofs approach full reflectivity; cooling
// centers halve covered agents' outdoor exposure while active.
const (
	CanopyCeiling     = 0.45
	AlbedoCeiling     = 0.80
	ExposureReduction = 0.5
	// DefaultTriggerHigh is the forecast high (°F) at or above which a
	// cooling center activates for the day.
	DefaultTriggerHigh = 105.0
)

// Intervention is immutable once constructed. A scenario holds an ordered
// set; insertion order is priority for ties in coverage.
type Intervention struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Kind Type      `json:"type"`

	Region Region  `json:"region"`
	Cost   float64 `json:"cost"`

	// Timeline: zero effect before StartDay; effect scales by
	// min(1, (day−StartDay)/RampDays) after. RampDays of zero means full
	// effect exactly on StartDay.
	StartDay int `json:"start_day"`
	RampDays int `json:"ramp_days"`

	// TriggerHigh applies to cooling centers only: the center is active on
	// a day when the forecast high reaches this threshold. Zero means
	// DefaultTriggerHigh.
	TriggerHigh float64 `json:"trigger_high,omitempty"`
}

// Validate checks type, cost, timeline, and target geometry.
func (iv Intervention) Validate() error {
	switch iv.Kind {
	case TreeCanopy, CoolRoof, CoolingCenter, Other:
	default:
		return fmt.Errorf("intervention %q: type %d: %w", iv.Name, iv.Kind, ErrUnknownInterventionType)
	}
	if iv.Cost <= 0 {
		return fmt.Errorf("intervention %q: cost must be positive, got %g", iv.Name, iv.Cost)
	}
	if iv.StartDay < 0 || iv.RampDays < 0 {
		return fmt.Errorf("intervention %q: negative timeline (start %d, ramp %d)", iv.Name, iv.StartDay, iv.RampDays)
	}
	if !iv.Region.explicit() {
		r := iv.Region
		if r.CenterLat < -90 || r.CenterLat > 90 {
			return fmt.Errorf("intervention %q: latitude %g out of range", iv.Name, r.CenterLat)
		}
		if r.CenterLon < -180 || r.CenterLon > 180 {
			return fmt.Errorf("intervention %q: longitude %g out of range", iv.Name, r.CenterLon)
		}
		if r.RadiusKm <= 0 || r.RadiusKm > 50 {
			return fmt.Errorf("intervention %q: radius %g km outside (0, 50]", iv.Name, r.RadiusKm)
		}
	}
	return nil
}

// RampProgress is the phase-in fraction for a day: 0 before StartDay,
// min(1, (day−StartDay)/RampDays) from StartDay on. RampDays of zero gives
// full effect exactly on StartDay.
func (iv Intervention) RampProgress(day int) float64 {
	if day < iv.StartDay {
		return 0
	}
	if iv.RampDays == 0 {
		return 1
	}
	p := float64(day-iv.StartDay) / float64(iv.RampDays)
	if p > 1 {
		return 1
	}
	return p
}

// triggerHigh resolves the activation threshold for cooling centers.
func (iv Intervention) triggerHigh() float64 {
	if iv.TriggerHigh > 0 {
		return iv.TriggerHigh
	}
	return DefaultTriggerHigh
}
