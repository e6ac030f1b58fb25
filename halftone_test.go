package contrapunctus_test

import (
	"testing"

	"github.com/vkleino/contrapunctus"
)

func TestParseHalftone(t *testing.T) {
	cases := []struct {
		name   string
		offset int
	}{
		{"A", 0},
		{"C", -9},
		{"^F", -3},
		{"_B", 1},
		{"c", 3},
		{"c'", 15},
		{"_B,", -11},
		{"C,,", -33},
		{"^c''", 28},
	}
	for _, c := range cases {
		h, err := contrapunctus.ParseHalftone(c.name)
		if err != nil {
			t.Fatalf("ParseHalftone(%q): %v", c.name, err)
		}
		if h.Offset != c.offset {
			t.Errorf("ParseHalftone(%q).Offset = %d, expected %d", c.name, h.Offset, c.offset)
		}
		if h.String() != c.name {
			t.Errorf("ParseHalftone(%q).String() = %q", c.name, h.String())
		}
	}
	for _, name := range []string{"", "H", "c,'", "=C", "b''," } {
		if _, err := contrapunctus.ParseHalftone(name); err == nil {
			t.Errorf("ParseHalftone(%q) expected to fail", name)
		}
	}
}

func TestHalftoneDiff(t *testing.T) {
	if d := contrapunctus.MustHalftone("c").Diff(contrapunctus.MustHalftone("F")); d != 7 {
		t.Errorf("c - F = %d, expected 7", d)
	}
	if d := contrapunctus.MustHalftone("A,").Diff(contrapunctus.MustHalftone("A")); d != -12 {
		t.Errorf("A, - A = %d, expected -12", d)
	}
}

func TestTransposeOctaves(t *testing.T) {
	cases := []struct {
		name    string
		octaves int
		out     string
	}{
		{"B", 1, "b"},
		{"b", 1, "b'"},
		{"C,", 1, "C"},
		{"C", -1, "C,"},
		{"^c", -1, "^C"},
		{"_e'", -2, "_E"},
		{"G", 0, "G"},
	}
	for _, c := range cases {
		got := contrapunctus.MustHalftone(c.name).TransposeOctaves(c.octaves)
		if got.Name != c.out {
			t.Errorf("%s transposed %d octaves = %s, expected %s", c.name, c.octaves, got.Name, c.out)
		}
		if want := contrapunctus.MustHalftone(c.out).Offset; got.Offset != want {
			t.Errorf("%s transposed %d octaves: offset %d, expected %d", c.name, c.octaves, got.Offset, want)
		}
	}
}

func TestEnharmonicEquivalent(t *testing.T) {
	cases := []struct{ name, out string }{
		{"^A", "_B"},
		{"_B", "^A"},
		{"_C", "B,"},
		{"^B,", "C"},
		{"^c", "_d"},
		{"_d'", "^c'"},
		{"D", "D"},
	}
	for _, c := range cases {
		got, err := contrapunctus.MustHalftone(c.name).EnharmonicEquivalent()
		if err != nil {
			t.Fatalf("EnharmonicEquivalent(%s): %v", c.name, err)
		}
		if got.Name != c.out {
			t.Errorf("EnharmonicEquivalent(%s) = %s, expected %s", c.name, got.Name, c.out)
		}
	}
}

func TestTranspose(t *testing.T) {
	cases := []struct {
		name  string
		steps int
		key   string
		out   string
	}{
		{"d", -1, "C", "^c"},
		{"g", -1, "C", "^f"},
		{"f", -1, "C", "e"},
		{"c", -1, "C", "B"},
		{"C", 1, "C", "_D"},
		{"c", 1, "C", "_d"},
		{"C", -1, "C", "B,"},
		{"c", -2, "C", "_B"},
		{"c'''", -1, "C", "b''"},
		{"C", 6, "C", "^F"},
		{"c", -6, "C", "_G"},
		{"E", 2, "C", "^F"},
		{"_A", -2, "C", "_G"},
		{"A", 2, "C", "B"},
		{"_B", -1, "Gm", "A"},
		{"D", 12, "C", "d"},
		{"d", -12, "DDor", "D"},
		{"E", 0, "C", "E"},
	}
	for _, c := range cases {
		got, err := contrapunctus.MustHalftone(c.name).Transpose(c.steps, contrapunctus.MustKey(c.key))
		if err != nil {
			t.Fatalf("%s transposed %d in %s: %v", c.name, c.steps, c.key, err)
		}
		if got.Name != c.out {
			t.Errorf("%s transposed %d in %s = %s, expected %s", c.name, c.steps, c.key, got.Name, c.out)
		}
		if want := contrapunctus.MustHalftone(c.name).Offset + c.steps; got.Offset != want {
			t.Errorf("%s transposed %d in %s: offset %d, expected %d", c.name, c.steps, c.key, got.Offset, want)
		}
	}
}
