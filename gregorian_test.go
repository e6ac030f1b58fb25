package contrapunctus_test

import (
	"testing"

	"github.com/vkleino/contrapunctus"
)

func TestGregorianModes(t *testing.T) {
	cases := []struct {
		mode                            string
		finalis, step2, subsemitonium   string
		hypoFinalis, hypoSubsemitonium  string
	}{
		{"dorian", "D", "E", "^c", "D", "^G"},
		{"phrygian", "E", "F", "^d", "E", "^A"},
		{"lydian", "F", "G", "e", "F", "B"},
		{"mixolydian", "G", "A", "^f", "G", "^c"},
	}
	for _, c := range cases {
		pair, ok := contrapunctus.Modes[c.mode]
		if !ok {
			t.Fatalf("mode %s missing", c.mode)
		}
		authentic, plagal := pair[0], pair[1]
		if got := authentic.Finalis().Name; got != c.finalis {
			t.Errorf("%s finalis = %s, expected %s", c.mode, got, c.finalis)
		}
		if got := authentic.Step2().Name; got != c.step2 {
			t.Errorf("%s step2 = %s, expected %s", c.mode, got, c.step2)
		}
		if got := authentic.Subsemitonium().Name; got != c.subsemitonium {
			t.Errorf("%s subsemitonium = %s, expected %s", c.mode, got, c.subsemitonium)
		}
		if got := plagal.Finalis().Name; got != c.hypoFinalis {
			t.Errorf("hypo%s finalis = %s, expected %s", c.mode, got, c.hypoFinalis)
		}
		if got := plagal.Subsemitonium().Name; got != c.hypoSubsemitonium {
			t.Errorf("hypo%s subsemitonium = %s, expected %s", c.mode, got, c.hypoSubsemitonium)
		}
		if plagal.Finalis().Offset != authentic.Finalis().Offset {
			t.Errorf("%s: plagal finalis differs from authentic", c.mode)
		}
		if authentic.Key != plagal.Key {
			t.Errorf("%s: authentic and plagal keys differ", c.mode)
		}
	}
}

func TestGregorianStep(t *testing.T) {
	cases := []struct {
		idx int
		out string
	}{
		{0, "D"},
		{6, "c"},
		{7, "d"},
		{8, "e"},
		{-1, "C"},
		{-7, "D,"},
		{14, "d'"},
	}
	for _, c := range cases {
		if got := contrapunctus.Dorian.Step(c.idx).Name; got != c.out {
			t.Errorf("dorian step %d = %s, expected %s", c.idx, got, c.out)
		}
	}
}
