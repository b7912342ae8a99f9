package mood

import "errors"

var (
	ErrIntensityOutOfRange = errors.New("intensity must be between 1 and 5")
	ErrInvalidValence      = errors.New("unknown valence")
)

// Picker supplies the randomness for label choice. *math/rand.Rand satisfies
// it; tests inject a deterministic one.
type Picker interface {
	Intn(n int) int
}

// Quadrant is one named rectangle of the valence x energy plane.
type Quadrant struct {
	ID           string
	Name         string
	ValenceRange [2]int
	EnergyRange  [2]int
	Labels       []string
}

// Config is the rectangular partition used by the interactive meter, plus the
// curated label pools offered per valence and band in the categorical flow.
type Config struct {
	ScaleMin  int
	ScaleMax  int
	Quadrants []Quadrant
	Emotions  map[Valence]map[Band][]string
}

// QuadrantFrom locates (valence, energy) in the first matching quadrant and
// picks one of its labels uniformly. No quadrant matching falls back to the
// first configured one.
func (c Config) QuadrantFrom(valence, energy int, rng Picker) (id string, label string) {
	for _, q := range c.Quadrants {
		if valence >= q.ValenceRange[0] && valence <= q.ValenceRange[1] &&
			energy >= q.EnergyRange[0] && energy <= q.EnergyRange[1] {
			return q.ID, pickLabel(q.Labels, rng)
		}
	}
	if len(c.Quadrants) == 0 {
		return "", ""
	}
	q := c.Quadrants[0]
	return q.ID, pickLabel(q.Labels, rng)
}

// LabelPool returns the curated emotion labels offered for a valence and
// intensity band. Missing pools come back empty, not as an error.
func (c Config) LabelPool(v Valence, b Band) []string {
	byBand, ok := c.Emotions[v]
	if !ok {
		return nil
	}
	return byBand[b]
}

func pickLabel(labels []string, rng Picker) string {
	if len(labels) == 0 {
		return ""
	}
	return labels[rng.Intn(len(labels))]
}

// DefaultConfig mirrors the meter's shipped partition: four quadrants over a
// -5..5 plane, unpleasant on the left, high energy on top.
func DefaultConfig() Config {
	return Config{
		ScaleMin: NumericScaleMin,
		ScaleMax: NumericScaleMax,
		Quadrants: []Quadrant{
			{ID: "Q1", Name: "high energy / unpleasant", ValenceRange: [2]int{-5, -1}, EnergyRange: [2]int{0, 5}, Labels: []string{"enojado", "frustrado", "ansioso", "estresado"}},
			{ID: "Q2", Name: "high energy / pleasant", ValenceRange: [2]int{0, 5}, EnergyRange: [2]int{0, 5}, Labels: []string{"emocionado", "optimista", "motivado", "alegre"}},
			{ID: "Q3", Name: "low energy / unpleasant", ValenceRange: [2]int{-5, -1}, EnergyRange: [2]int{-5, -1}, Labels: []string{"triste", "cansado", "desanimado", "solo"}},
			{ID: "Q4", Name: "low energy / pleasant", ValenceRange: [2]int{0, 5}, EnergyRange: [2]int{-5, -1}, Labels: []string{"tranquilo", "relajado", "satisfecho", "sereno"}},
		},
		Emotions: map[Valence]map[Band][]string{
			ValenceDifficult: {
				BandLow:    {"incomodo", "inquieto", "apatico"},
				BandMedium: {"preocupado", "triste", "frustrado"},
				BandHigh:   {"ansioso", "abrumado", "enojado"},
			},
			ValenceNeutral: {
				BandLow:    {"indiferente", "desconectado"},
				BandMedium: {"pensativo", "expectante"},
				BandHigh:   {"alerta", "inquieto"},
			},
			ValencePleasant: {
				BandLow:    {"tranquilo", "sereno", "comodo"},
				BandMedium: {"contento", "agradecido", "satisfecho"},
				BandHigh:   {"feliz", "entusiasmado", "inspirado"},
			},
		},
	}
}
