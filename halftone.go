package contrapunctus

import (
	"fmt"
	"strings"
)

// Halftone is a single pitch, named in abc notation: a letter C-B or c-b,
// an optional leading accidental mark (^ sharp, _ flat) and trailing octave
// marks (, down and ' up). Offset counts halftone steps relative to the
// standard pitch A (440 Hz), so A has offset 0, c' has offset 15.
type Halftone struct {
	Name   string
	Offset int
}

// Offsets of the first two octaves; everything else is extrapolated by
// octave marks.
var halftoneOffsets = map[string]int{
	"_C": -10, "C": -9, "^C": -8,
	"_D": -8, "D": -7, "^D": -6,
	"_E": -6, "E": -5, "^E": -4,
	"_F": -5, "F": -4, "^F": -3,
	"_G": -3, "G": -2, "^G": -1,
	"_A": -1, "A": 0, "^A": 1,
	"_B": 1, "B": 2, "^B": 3,
	"_c": 2, "c": 3, "^c": 4,
	"_d": 4, "d": 5, "^d": 6,
	"_e": 6, "e": 7, "^e": 8,
	"_f": 7, "f": 8, "^f": 9,
	"_g": 9, "g": 10, "^g": 11,
	"_a": 11, "a": 12, "^a": 13,
	"_b": 13, "b": 14, "^b": 15,
}

var enharmonics = map[string]string{
	"^B,": "C",
	"^C":  "_D",
	"_C":  "B,",
	"^D":  "_E",
	"^E":  "F",
	"_F":  "E",
	"^F":  "_G",
	"^G":  "_A",
	"^A":  "_B",
	"^B":  "c",
	"_c":  "B",
}

var fifthUp = map[string]string{
	"C": "G", "^C": "^G",
	"D": "A", "^D": "^A",
	"E": "B",
	"F": "c", "^F": "^c",
	"_G": "_d", "G": "d", "^G": "^d",
	"A": "e", "^A": "^e",
	"B": "^f",
	"c": "g", "^c": "^g",
	"d": "a", "^d": "^a",
	"e": "b",
	"f": "c'", "^f": "^c'",
	"_g": "_d'", "g": "d'", "^g": "^d'",
	"a": "e'", "^a": "^e'",
	"b": "^f'",
}

var fifthDown = map[string]string{
	"C": "F,",
	"_D": "_G,", "D": "G,",
	"_E": "_A,", "E": "A,",
	"F": "_B,", "^F": "B,",
	"_G": "_C", "G": "C",
	"_A": "_D", "A": "D",
	"_B": "_E", "B": "E",
	"c": "F",
	"d": "G", "_d": "_G",
	"e": "A", "_e": "_A",
	"f": "_B", "^f": "b",
	"_g": "_c", "g": "c",
	"_a": "_d", "a": "d",
	"_b": "_e", "b": "e",
}

var (
	fifthUpInv   = invertFifths(fifthUp, '_')
	fifthDownInv = invertFifths(fifthDown, '^')
)

func invertFifths(m map[string]string, skipMark byte) map[string]string {
	inv := make(map[string]string, len(m))
	for k, v := range m {
		if v[0] == skipMark {
			continue
		}
		inv[v] = k
	}
	return inv
}

func init() {
	for k, v := range enharmonics {
		if v[0] == '^' || v[0] == '_' {
			enharmonics[v] = k
		}
	}
}

// ParseHalftone parses an abc pitch name like "C", "^c'" or "_B,,".
func ParseHalftone(name string) (Halftone, error) {
	tr := 0
	ln := name
	for strings.HasSuffix(ln, ",") {
		ln = ln[:len(ln)-1]
		tr -= 12
	}
	if tr != 0 && strings.HasSuffix(ln, "'") {
		return Halftone{}, fmt.Errorf("halftone %q mixes octave marks", name)
	}
	for strings.HasSuffix(ln, "'") {
		ln = ln[:len(ln)-1]
		tr += 12
	}
	off, ok := halftoneOffsets[ln]
	if !ok {
		return Halftone{}, fmt.Errorf("invalid halftone name %q", name)
	}
	return Halftone{Name: name, Offset: off + tr}, nil
}

// MustHalftone is like ParseHalftone but panics on invalid names. It is
// meant for halftones spelled out in code.
func MustHalftone(name string) Halftone {
	h, err := ParseHalftone(name)
	if err != nil {
		panic(err)
	}
	return h
}

func (h Halftone) String() string { return h.Name }

// Diff returns the halftone distance from o up to h.
func (h Halftone) Diff(o Halftone) int { return h.Offset - o.Offset }

// TransposeOctaves transposes by whole octaves, positive up. This is pure
// name manipulation and cannot change the accidental mark.
func (h Halftone) TransposeOctaves(octaves int) Halftone {
	n := h.Name
	for i := 0; i < octaves; i++ {
		switch {
		case strings.HasSuffix(n, ","):
			n = n[:len(n)-1]
		case strings.ToLower(n) != n:
			n = strings.ToLower(n)
		default:
			n = n + "'"
		}
	}
	for i := 0; i > octaves; i-- {
		switch {
		case strings.HasSuffix(n, "'"):
			n = n[:len(n)-1]
		case strings.ToUpper(n) != n:
			n = strings.ToUpper(n)
		default:
			n = n + ","
		}
	}
	return Halftone{Name: n, Offset: h.Offset + 12*octaves}
}

// EnharmonicEquivalent respells a flat as the equivalent sharp and vice
// versa (e.g. ^A becomes _B, _C becomes B,). Unmarked halftones are
// returned unchanged.
func (h Halftone) EnharmonicEquivalent() (Halftone, error) {
	name := h.Name
	if name[0] != '^' && name[0] != '_' {
		return h, nil
	}
	if n, ok := enharmonics[name]; ok {
		return ParseHalftone(n)
	}
	oct, off := floorDiv(h.Offset, 12), floorMod(h.Offset, 12)
	for off > 2 {
		off -= 12
		oct++
	}
	tr := h.TransposeOctaves(-oct)
	if _, ok := enharmonics[tr.Name]; !ok {
		return Halftone{}, fmt.Errorf("no enharmonic equivalent for %q", h.Name)
	}
	eq, err := tr.EnharmonicEquivalent()
	if err != nil {
		return Halftone{}, err
	}
	return eq.TransposeOctaves(oct), nil
}

// TransposeFifth transposes by the given number of fifths, positive up.
// The key tracks where we are on the circle of fifths so that spellings
// never exceed six accidentals: beyond that the enharmonic equivalent is
// used instead.
func (h Halftone) TransposeFifth(fifth int, key Key) (Halftone, error) {
	ht := h
	oct := 0
	var err error
	for fifth != 0 {
		if key.Offset >= 6 && fifth > 0 || key.Offset <= -6 && fifth < 0 {
			if ht, err = ht.EnharmonicEquivalent(); err != nil {
				return Halftone{}, err
			}
		}
		// Fold into the range covered by the fifth tables before lookup.
		if strings.ContainsAny(ht.Name, ",'") || ht.Offset > 3 {
			oc := floorDiv(ht.Offset, 12)
			oct += oc
			ht = ht.TransposeOctaves(-oc)
			if ht.Offset > 8 {
				ht = ht.TransposeOctaves(-1)
				oct++
			}
		}
		lt, lti := fifthUp, fifthDownInv
		if fifth < 0 {
			lt, lti = fifthDown, fifthUpInv
		}
		n, ok := lt[ht.Name]
		if !ok {
			if n, ok = lti[ht.Name]; !ok {
				return Halftone{}, fmt.Errorf("no fifth transposition for %q", ht.Name)
			}
		}
		if ht, err = ParseHalftone(n); err != nil {
			return Halftone{}, err
		}
		key = key.Transpose(sgn(fifth))
		fifth -= sgn(fifth)
	}
	return ht.TransposeOctaves(oct), nil
}

// Transpose transposes by halftone steps, positive up. The transposition
// goes around the circle of fifths with octave compensation, which keeps
// the enharmonic spelling consistent with the key the tune ends up in.
// The key decides when a spelling would need more than six accidentals
// and must flip to its equivalent.
func (h Halftone) Transpose(steps int, key Key) (Halftone, error) {
	nfifth := stepsToFifths(steps)
	oct := (steps - nfifth*7) / 12
	ht, err := h.TransposeOctaves(oct).TransposeFifth(nfifth, key)
	if err != nil {
		return Halftone{}, err
	}
	if key.Transpose(nfifth).Offset == 6 && steps < 0 {
		return ht.EnharmonicEquivalent()
	}
	return ht, nil
}

// stepsToFifths determines by how many fifths to transpose to cover the
// given number of halftone steps. A fifth is 7 halftones and 7 is its own
// multiplicative inverse mod 12, so dividing by 7 is multiplying by 7.
func stepsToFifths(steps int) int {
	nfifth := floorMod(7*steps, 12)
	if nfifth > 6 {
		nfifth -= 12
	}
	return nfifth
}

func sgn(i int) int {
	if i > 0 {
		return 1
	}
	if i < 0 {
		return -1
	}
	return 0
}

func floorDiv(a, b int) int {
	d := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		d--
	}
	return d
}

func floorMod(a, b int) int {
	m := a % b
	if m != 0 && ((a < 0) != (b < 0)) {
		m += b
	}
	return m
}
