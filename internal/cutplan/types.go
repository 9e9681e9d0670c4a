package cutplan

import (
	"fmt"
	"strings"

	"podknight/internal/timecode"
)

// SkipMarker is the literal accepted by ParseCutPoints for a skip directive.
const SkipMarker = "skip"

// CutPoint is a boundary timestamp or a skip directive.
type CutPoint struct {
	Seconds float64
	Skip    bool
}

// At returns a timestamp cut point.
func At(seconds float64) CutPoint { return CutPoint{Seconds: seconds} }

// Skip returns the skip directive.
func Skip() CutPoint { return CutPoint{Skip: true} }

func (c CutPoint) String() string {
	if c.Skip {
		return SkipMarker
	}
	return timecode.Format(c.Seconds)
}

// ParseCutPoints converts CLI or config text into cut points.
func ParseCutPoints(values []string) ([]CutPoint, error) {
	points := make([]CutPoint, 0, len(values))
	for _, raw := range values {
		value := strings.TrimSpace(raw)
		if strings.EqualFold(value, SkipMarker) {
			points = append(points, Skip())
			continue
		}
		seconds, err := timecode.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("cut point %d: %w", len(points)+1, err)
		}
		points = append(points, At(seconds))
	}
	return points, nil
}

// PartSpec overrides naming for one output part, or disables it.
type PartSpec struct {
	Prefix   string `toml:"prefix"`
	Suffix   string `toml:"suffix"`
	Disabled bool   `toml:"disabled"`
}

// DisabledPart is the PartSpec sentinel for an index that emits nothing.
var DisabledPart = PartSpec{Disabled: true}

// PartSpecs are indexed by output-part number. Indexes past the end use the
// defaults.
type PartSpecs []PartSpec

// At returns the spec for index i, falling back to the zero value.
func (s PartSpecs) At(i int) PartSpec {
	if i < 0 || i >= len(s) {
		return PartSpec{}
	}
	return s[i]
}

// Disabled reports whether index i is switched off.
func (s PartSpecs) Disabled(i int) bool {
	return s.At(i).Disabled
}

// Filename derives the part's base filename: prefix + base + suffix, where
// the suffix defaults to "_<index+1>".
func (s PartSpec) Filename(index int, base string) string {
	suffix := s.Suffix
	if suffix == "" {
		suffix = fmt.Sprintf("_%d", index+1)
	}
	return s.Prefix + base + suffix
}

// Part is one contiguous interval of the source selected for encoding.
type Part struct {
	Index    int
	Start    float64
	End      float64
	Filename string
}

// Duration returns End - Start.
func (p Part) Duration() float64 {
	return p.End - p.Start
}

// Input carries everything the planner needs.
type Input struct {
	SourceDuration float64
	Start          *float64
	End            *float64
	CutPoints      []CutPoint
	PartSpecs      PartSpecs
	BaseName       string
}
