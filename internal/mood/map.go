// Package mood holds the pure classification functions that turn a mood
// report into the numeric valence/energy pair stored with each event. Two
// input shapes are supported: the categorical check-in flow (valence word +
// intensity 1..5) and the legacy direct-numeric meter (-5..5 both axes).
package mood

import (
	"fmt"
	"math"
)

// Valence is the categorical pleasantness of a report.
type Valence string

const (
	ValenceDifficult Valence = "dificil"
	ValenceNeutral   Valence = "neutral"
	ValencePleasant  Valence = "agradable"
)

// Band groups raw intensity for label-pool and copy selection.
type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// Numeric anchors for categorical valence. Kept at +-3 so the categorical
// flow and the legacy -5..5 meter land on a shared KPI scale.
var valenceNum = map[Valence]int{
	ValenceDifficult: -3,
	ValenceNeutral:   0,
	ValencePleasant:  3,
}

const (
	intensityCenter = 3
	intensityScale  = 1.5
)

// NumericScaleMin and NumericScaleMax bound both axes of the legacy direct
// numeric input.
const (
	NumericScaleMin = -5
	NumericScaleMax = 5
)

func ValidValence(v Valence) bool {
	_, ok := valenceNum[v]
	return ok
}

// MapValenceToNum maps a categorical valence to its numeric anchor.
func MapValenceToNum(v Valence) (int, error) {
	n, ok := valenceNum[v]
	if !ok {
		return 0, fmt.Errorf("%w: valence %q", ErrInvalidValence, v)
	}
	return n, nil
}

// MapIntensityToEnergy maps intensity 1..5 onto the energy axis:
// round((i - 3) * 1.5), so 1->-3, 2->-2, 3->0, 4->2, 5->3.
func MapIntensityToEnergy(i int) (int, error) {
	if err := checkIntensity(i); err != nil {
		return 0, err
	}
	return int(math.Round(float64(i-intensityCenter) * intensityScale)), nil
}

// IntensityBand buckets intensity: 1-2 low, 3-4 medium, 5 high.
func IntensityBand(i int) (Band, error) {
	if err := checkIntensity(i); err != nil {
		return "", err
	}
	switch {
	case i <= 2:
		return BandLow, nil
	case i <= 4:
		return BandMedium, nil
	default:
		return BandHigh, nil
	}
}

// IntensityDescriptor is the human-readable strength of a report. The
// boundaries intentionally differ from IntensityBand: 4 already reads as
// intense even though it pools labels with 3.
func IntensityDescriptor(i int) (string, error) {
	if err := checkIntensity(i); err != nil {
		return "", err
	}
	switch {
	case i <= 2:
		return "mild", nil
	case i == 3:
		return "moderate", nil
	default:
		return "intense", nil
	}
}

func checkIntensity(i int) error {
	if i < 1 || i > 5 {
		return fmt.Errorf("%w: got %d", ErrIntensityOutOfRange, i)
	}
	return nil
}
