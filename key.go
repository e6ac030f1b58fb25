package contrapunctus

import "fmt"

// Key is an abc key signature, either major or minor or one of the church
// modes. Offset is the position on the circle of fifths relative to the
// accidental-free key of the mode, -7..7 (Cb major has offset -7, C# major
// offset 7).
type Key struct {
	Name   string
	Mode   string
	Offset int
}

// Keys of each mode ordered along the circle of fifths; index 7 is the
// accidental-free key.
var keyModes = map[string][15]string{
	"major": {
		"Cb", "Gb", "Db", "Ab", "Eb", "Bb", "F",
		"C", "G", "D", "A", "E", "B", "F#", "C#",
	},
	"minor": {
		"Abm", "Ebm", "Bbm", "Fm", "Cm", "Gm", "Dm",
		"Am", "Em", "Bm", "F#m", "C#m", "G#m", "D#m", "A#m",
	},
	"mixolydian": {
		"GbMix", "DbMix", "AbMix", "EbMix", "BbMix", "FMix", "CMix",
		"GMix", "DMix", "AMix", "EMix", "BMix", "F#Mix", "C#Mix", "G#Mix",
	},
	"dorian": {
		"DbDor", "AbDor", "EbDor", "BbDor", "FDor", "CDor", "GDor",
		"DDor", "ADor", "EDor", "BDor", "F#Dor", "C#Dor", "G#Dor", "D#Dor",
	},
	"phrygian": {
		"EbPhr", "BbPhr", "FPhr", "CPhr", "GPhr", "DPhr", "APhr",
		"EPhr", "BPhr", "F#Phr", "C#Phr", "G#Phr", "D#Phr", "A#Phr", "E#Phr",
	},
	"lydian": {
		"FbLyd", "CbLyd", "GbLyd", "DbLyd", "AbLyd", "EbLyd", "BbLyd",
		"FLyd", "CLyd", "GLyd", "DLyd", "ALyd", "ELyd", "BLyd", "F#Lyd",
	},
	"locrian": {
		"BbLoc", "FLoc", "CLoc", "GLoc", "DLoc", "ALoc", "ELoc",
		"BLoc", "F#Loc", "C#Loc", "G#Loc", "D#Loc", "A#Loc", "E#Loc", "B#Loc",
	},
}

var keyTable = buildKeyTable()

func buildKeyTable() map[string]Key {
	t := make(map[string]Key)
	for mode, keys := range keyModes {
		for n, name := range keys {
			t[name] = Key{Name: name, Mode: mode, Offset: n - 7}
		}
	}
	return t
}

// ParseKey looks up an abc key name like "C", "Gm" or "DDor".
func ParseKey(name string) (Key, error) {
	k, ok := keyTable[name]
	if !ok {
		return Key{}, fmt.Errorf("unknown key %q", name)
	}
	return k, nil
}

// MustKey is like ParseKey but panics on unknown names. It is meant for
// keys spelled out in code.
func MustKey(name string) Key {
	k, err := ParseKey(name)
	if err != nil {
		panic(err)
	}
	return k
}

func (k Key) String() string { return k.Name }

// Transpose moves the key by the given number of fifths within its mode.
// The result never carries more than 6 accidentals: keys beyond that come
// out as the enharmonically equivalent key. Transposing up prefers sharps,
// transposing down prefers flats.
func (k Key) Transpose(nFifth int) Key {
	t := floorMod(k.Offset+nFifth, 12)
	if t > 6 {
		t -= 12
	}
	if t == 6 && nFifth < 0 {
		t = -6
	}
	return keyTable[keyModes[k.Mode][t+7]]
}

// Order in which accidentals accumulate in a key signature.
var (
	sharpOrder = []byte{'F', 'C', 'G', 'D', 'A', 'E', 'B'}
	flatOrder  = []byte{'B', 'E', 'A', 'D', 'G', 'C', 'F'}
)

// Accidentals returns the accidental mark ('^' or '_') the key signature
// puts on each affected note letter. Letters are upper case; the signature
// applies in all octaves.
func (k Key) Accidentals() map[byte]byte {
	acc := make(map[byte]byte)
	if k.Offset > 0 {
		for _, l := range sharpOrder[:k.Offset] {
			acc[l] = '^'
		}
	} else if k.Offset < 0 {
		for _, l := range flatOrder[:-k.Offset] {
			acc[l] = '_'
		}
	}
	return acc
}

// accidentalFor returns the mark the key signature puts on the given note
// letter (either case), or 0 when the letter is unaffected.
func (k Key) accidentalFor(letter byte) byte {
	if letter >= 'a' {
		letter -= 'a' - 'A'
	}
	var order []byte
	var mark byte
	switch {
	case k.Offset > 0:
		order, mark = sharpOrder[:k.Offset], '^'
	case k.Offset < 0:
		order, mark = flatOrder[:-k.Offset], '_'
	default:
		return 0
	}
	for _, l := range order {
		if l == letter {
			return mark
		}
	}
	return 0
}
