package contrapunctus

import (
	"fmt"
	"sort"
	"strings"
)

// Voice IDs the generator and the rule evaluator look for in a tune.
const (
	CantusFirmusID  = "CantusFirmus"
	ContrapunctusID = "Contrapunctus"
)

// Meter is the time signature of a tune, e.g. 4/4 or 3/4.
type Meter struct {
	Measure int
	Beats   int
}

func (m Meter) String() string { return fmt.Sprintf("%d/%d", m.Measure, m.Beats) }

func (m Meter) AsABC() string { return fmt.Sprintf("M: %d/%d", m.Measure, m.Beats) }

// BarLength is the duration of one full bar counted in the given unit.
func (m Meter) BarLength(unit int) int { return m.Measure * unit / m.Beats }

// Property is a named header value; kept as a slice to preserve the order
// properties were written in.
type Property struct {
	Name  string
	Value string
}

// Voice is a single voice of a tune: an ID, the abc voice header
// properties (clef, name, snm, transpose...) and the bars.
type Voice struct {
	ID         string
	Properties []Property
	Bars       []*Bar
}

func NewVoice(id string, properties ...Property) *Voice {
	return &Voice{ID: id, Properties: properties}
}

// Property returns the value of the named header property, or "".
func (v *Voice) Property(name string) string {
	for _, p := range v.Properties {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}

// Add appends an unattached bar to the voice and links it to its
// predecessor.
func (v *Voice) Add(bar *Bar) error {
	if bar.Voice != nil || bar.Prev != nil || bar.Next != nil {
		return fmt.Errorf("bar already belongs to a voice")
	}
	if len(v.Bars) > 0 {
		last := v.Bars[len(v.Bars)-1]
		last.Next = bar
		bar.Prev = last
	}
	bar.Voice = v
	bar.Idx = len(v.Bars)
	v.Bars = append(v.Bars, bar)
	return nil
}

func (v *Voice) AsABC(key Key) string {
	var sb strings.Builder
	if v.ID != "" {
		fmt.Fprintf(&sb, "[V:%s] ", v.ID)
	}
	for _, bar := range v.Bars {
		sb.WriteString(bar.AsABC(key))
	}
	return sb.String()
}

// ABCHeader renders the V: header line, quoting property values that
// contain spaces. Voices without an ID have no header.
func (v *Voice) ABCHeader() string {
	if v.ID == "" {
		return ""
	}
	parts := make([]string, 0, len(v.Properties))
	for _, p := range v.Properties {
		val := p.Value
		if strings.Contains(val, " ") {
			val = `"` + val + `"`
		}
		parts = append(parts, p.Name+"="+val)
	}
	return fmt.Sprintf("V:%s %s", v.ID, strings.Join(parts, " "))
}

func (v *Voice) Copy() *Voice {
	n := NewVoice(v.ID, v.Properties...)
	for _, b := range v.Bars {
		n.Add(b.Copy())
	}
	return n
}

func (v *Voice) Transposed(steps int, key Key) (*Voice, error) {
	n := NewVoice(v.ID, v.Properties...)
	for _, b := range v.Bars {
		tb, err := b.Transposed(steps, key)
		if err != nil {
			return nil, err
		}
		if err := n.Add(tb); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Tune is a complete multi-voice piece with its abc header data.
type Tune struct {
	Number int
	Title  string
	Meter  Meter
	Key    Key
	// Unit is the default note length as 1/Unit.
	Unit int
	// Fields holds the remaining header lines in order: single-letter
	// names become "N: value" lines, longer names "%%name value"
	// directives (e.g. score).
	Fields []Property
	Voices []*Voice
}

func NewTune(meter Meter, key Key, unit int) *Tune {
	return &Tune{Number: 1, Meter: meter, Key: key, Unit: unit}
}

func (t *Tune) Add(v *Voice) { t.Voices = append(t.Voices, v) }

// Voice returns the voice with the given ID, or nil.
func (t *Tune) Voice(id string) *Voice {
	for _, v := range t.Voices {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// Field returns the value of the named extra header field, or "".
func (t *Tune) Field(name string) string {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// SetField replaces the named field or appends it.
func (t *Tune) SetField(name, value string) {
	for i, f := range t.Fields {
		if f.Name == name {
			t.Fields[i].Value = value
			return
		}
	}
	t.Fields = append(t.Fields, Property{name, value})
}

func (t *Tune) AsABC() string {
	var r []string
	r = append(r, fmt.Sprintf("X: %d", t.Number))
	if t.Title != "" {
		r = append(r, "T: "+t.Title)
	}
	r = append(r, t.Meter.AsABC())
	for _, f := range t.Fields {
		if len(f.Name) == 1 {
			r = append(r, f.Name+": "+f.Value)
		} else {
			r = append(r, "%%"+f.Name+" "+f.Value)
		}
	}
	r = append(r, fmt.Sprintf("L: 1/%d", t.Unit))
	for _, v := range t.Voices {
		if h := v.ABCHeader(); h != "" {
			r = append(r, h)
		}
	}
	r = append(r, "K: "+t.Key.Name)
	for _, v := range t.Voices {
		r = append(r, v.AsABC(t.Key))
	}
	return strings.Join(r, "\n")
}

func (t *Tune) String() string { return t.AsABC() }

func (t *Tune) Copy() *Tune {
	n := NewTune(t.Meter, t.Key, t.Unit)
	n.Number = t.Number
	n.Title = t.Title
	n.Fields = append([]Property(nil), t.Fields...)
	for _, v := range t.Voices {
		n.Add(v.Copy())
	}
	return n
}

// Transposed transposes the whole tune, key included, by halftone steps.
func (t *Tune) Transposed(steps int) (*Tune, error) {
	k := t.Key.Transpose(stepsToFifths(steps))
	n := NewTune(t.Meter, k, t.Unit)
	n.Number = t.Number
	n.Title = t.Title
	n.Fields = append([]Property(nil), t.Fields...)
	for _, v := range t.Voices {
		tv, err := v.Transposed(steps, t.Key)
		if err != nil {
			return nil, err
		}
		n.Add(tv)
	}
	return n, nil
}

// VoicePairs pairs two voices note by note: within each bar the note
// boundaries of both voices are merged and for every boundary the pair of
// objects sounding there is yielded. Boundaries where either voice is
// silent (an empty bar) produce no pair.
func (t *Tune) VoicePairs(a, b int) [][2]BarObject {
	if a >= len(t.Voices) || b >= len(t.Voices) {
		return nil
	}
	va, vb := t.Voices[a], t.Voices[b]
	nbars := min(len(va.Bars), len(vb.Bars))
	var pairs [][2]BarObject
	for i := 0; i < nbars; i++ {
		ba, bb := va.Bars[i], vb.Bars[i]
		offs := map[int]bool{}
		for _, o := range ba.Objects {
			offs[o.Offset()] = true
		}
		for _, o := range bb.Objects {
			offs[o.Offset()] = true
		}
		bounds := make([]int, 0, len(offs))
		for o := range offs {
			bounds = append(bounds, o)
		}
		sort.Ints(bounds)
		for _, off := range bounds {
			oa := soundingAt(ba, off)
			ob := soundingAt(bb, off)
			if oa == nil || ob == nil {
				continue
			}
			pairs = append(pairs, [2]BarObject{oa, ob})
		}
	}
	return pairs
}

func soundingAt(b *Bar, offset int) BarObject {
	var found BarObject
	for _, o := range b.Objects {
		if o.Offset() > offset {
			break
		}
		found = o
	}
	if found != nil && offset >= found.Offset()+found.Length(0) {
		return nil
	}
	return found
}
