package contrapunctus

// Gregorian is one of the eight church modes: a name, the abc key the mode
// is notated in and a seven-tone ambitus. The authentic modes start on
// their finalis; the plagal (hypo) modes share the finalis of their
// authentic counterpart, a fourth above the ambitus start.
type Gregorian struct {
	Name    string
	Key     Key
	ambitus [7]Halftone
	final   int
}

func newGregorian(name, key string, final int, ambitus ...string) *Gregorian {
	g := &Gregorian{Name: name, Key: MustKey(key), final: final}
	for i, a := range ambitus {
		g.ambitus[i] = MustHalftone(a)
	}
	return g
}

var (
	Dorian         = newGregorian("dorian", "DDor", 0, "D", "E", "F", "G", "A", "B", "c")
	Hypodorian     = newGregorian("hypodorian", "DDor", 3, "A,", "B,", "C", "D", "E", "F", "G")
	Phrygian       = newGregorian("phrygian", "EPhr", 0, "E", "F", "G", "A", "B", "c", "d")
	Hypophrygian   = newGregorian("hypophrygian", "EPhr", 3, "B,", "C", "D", "E", "F", "G", "A")
	Lydian         = newGregorian("lydian", "FLyd", 0, "F", "G", "A", "B", "c", "d", "e")
	Hypolydian     = newGregorian("hypolydian", "FLyd", 3, "C", "D", "E", "F", "G", "A", "B")
	Mixolydian     = newGregorian("mixolydian", "GMix", 0, "G", "A", "B", "c", "d", "e", "f")
	Hypomixolydian = newGregorian("hypomixolydian", "GMix", 3, "D", "E", "F", "G", "A", "B", "c")
)

// Modes indexes the authentic modes by name; the second element of each
// pair is the plagal mode with the same finalis.
var Modes = map[string][2]*Gregorian{
	"dorian":     {Dorian, Hypodorian},
	"phrygian":   {Phrygian, Hypophrygian},
	"lydian":     {Lydian, Hypolydian},
	"mixolydian": {Mixolydian, Hypomixolydian},
}

// Step returns the scale tone with the given index. Indices outside 0..6
// are synthesized by octave transposition, so negative indices and indices
// of 7 and above are fine.
func (g *Gregorian) Step(idx int) Halftone {
	if 0 <= idx && idx < len(g.ambitus) {
		return g.ambitus[idx]
	}
	d, m := floorDiv(idx, 7), floorMod(idx, 7)
	return g.ambitus[m].TransposeOctaves(d)
}

func (g *Gregorian) Finalis() Halftone { return g.ambitus[g.final] }

func (g *Gregorian) Step2() Halftone { return g.Step(g.final + 1) }

// Subsemitonium is the leading tone, a halftone below the upper finalis.
func (g *Gregorian) Subsemitonium() Halftone {
	s, err := g.Step(7).Transpose(-1, MustKey("C"))
	if err != nil {
		panic(err)
	}
	return s
}
