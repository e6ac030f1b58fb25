package contrapunctus_test

import (
	"testing"

	"github.com/vkleino/contrapunctus"
)

func TestParseKey(t *testing.T) {
	cases := []struct {
		name   string
		mode   string
		offset int
	}{
		{"C", "major", 0},
		{"Gm", "minor", -2},
		{"F#m", "minor", 3},
		{"DDor", "dorian", 0},
		{"EPhr", "phrygian", 0},
		{"FLyd", "lydian", 0},
		{"GMix", "mixolydian", 0},
		{"Gb", "major", -6},
	}
	for _, c := range cases {
		k, err := contrapunctus.ParseKey(c.name)
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", c.name, err)
		}
		if k.Mode != c.mode || k.Offset != c.offset {
			t.Errorf("ParseKey(%q) = %s/%d, expected %s/%d", c.name, k.Mode, k.Offset, c.mode, c.offset)
		}
	}
	if _, err := contrapunctus.ParseKey("Hmaj"); err == nil {
		t.Errorf("ParseKey(Hmaj) expected to fail")
	}
}

func TestKeyTranspose(t *testing.T) {
	cases := []struct {
		name   string
		nFifth int
		out    string
	}{
		{"C", 1, "G"},
		{"C", -1, "F"},
		{"C", 7, "Db"},
		{"C", -7, "B"},
		{"C", 6, "F#"},
		{"C", -6, "Gb"},
		{"Gm", 1, "Dm"},
		{"DDor", 5, "C#Dor"},
		{"Gm", 0, "Gm"},
	}
	for _, c := range cases {
		got := contrapunctus.MustKey(c.name).Transpose(c.nFifth)
		if got.Name != c.out {
			t.Errorf("%s transposed %d fifths = %s, expected %s", c.name, c.nFifth, got.Name, c.out)
		}
	}
}

func TestKeyAccidentals(t *testing.T) {
	cases := []struct {
		name string
		acc  map[byte]byte
	}{
		{"C", map[byte]byte{}},
		{"D", map[byte]byte{'F': '^', 'C': '^'}},
		{"Gm", map[byte]byte{'B': '_', 'E': '_'}},
		{"F#m", map[byte]byte{'F': '^', 'C': '^', 'G': '^'}},
	}
	for _, c := range cases {
		got := contrapunctus.MustKey(c.name).Accidentals()
		if len(got) != len(c.acc) {
			t.Errorf("%s: %d accidentals, expected %d", c.name, len(got), len(c.acc))
			continue
		}
		for l, m := range c.acc {
			if got[l] != m {
				t.Errorf("%s: accidental for %c = %c, expected %c", c.name, l, got[l], m)
			}
		}
	}
}
