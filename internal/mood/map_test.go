package mood

import (
	"errors"
	"testing"
)

func TestMapValenceToNum(t *testing.T) {
	cases := []struct {
		in   Valence
		want int
	}{
		{ValenceDifficult, -3},
		{ValenceNeutral, 0},
		{ValencePleasant, 3},
	}
	for _, c := range cases {
		got, err := MapValenceToNum(c.in)
		if err != nil {
			t.Fatalf("MapValenceToNum(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("MapValenceToNum(%q) = %d, want %d", c.in, got, c.want)
		}
	}
	if _, err := MapValenceToNum("happy"); !errors.Is(err, ErrInvalidValence) {
		t.Fatalf("expected ErrInvalidValence, got %v", err)
	}
}

func TestMapIntensityToEnergy(t *testing.T) {
	want := map[int]int{1: -3, 2: -2, 3: 0, 4: 2, 5: 3}
	for in, expect := range want {
		got, err := MapIntensityToEnergy(in)
		if err != nil {
			t.Fatalf("MapIntensityToEnergy(%d): %v", in, err)
		}
		if got != expect {
			t.Fatalf("MapIntensityToEnergy(%d) = %d, want %d", in, got, expect)
		}
	}
}

func TestMapIntensityToEnergyOutOfRange(t *testing.T) {
	for _, in := range []int{0, -1, 6, 100} {
		if _, err := MapIntensityToEnergy(in); !errors.Is(err, ErrIntensityOutOfRange) {
			t.Fatalf("MapIntensityToEnergy(%d): expected ErrIntensityOutOfRange, got %v", in, err)
		}
	}
}

func TestIntensityBand(t *testing.T) {
	want := map[int]Band{1: BandLow, 2: BandLow, 3: BandMedium, 4: BandMedium, 5: BandHigh}
	for in, expect := range want {
		got, err := IntensityBand(in)
		if err != nil {
			t.Fatalf("IntensityBand(%d): %v", in, err)
		}
		if got != expect {
			t.Fatalf("IntensityBand(%d) = %q, want %q", in, got, expect)
		}
	}
	if _, err := IntensityBand(0); !errors.Is(err, ErrIntensityOutOfRange) {
		t.Fatalf("expected ErrIntensityOutOfRange, got %v", err)
	}
	if _, err := IntensityBand(6); !errors.Is(err, ErrIntensityOutOfRange) {
		t.Fatalf("expected ErrIntensityOutOfRange, got %v", err)
	}
}

func TestIntensityDescriptor(t *testing.T) {
	want := map[int]string{1: "mild", 2: "mild", 3: "moderate", 4: "intense", 5: "intense"}
	for in, expect := range want {
		got, err := IntensityDescriptor(in)
		if err != nil {
			t.Fatalf("IntensityDescriptor(%d): %v", in, err)
		}
		if got != expect {
			t.Fatalf("IntensityDescriptor(%d) = %q, want %q", in, got, expect)
		}
	}
}
