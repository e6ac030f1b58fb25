package contrapunctus

import "fmt"

// BarObject is anything that can be placed in a Bar: a Tone or a Pause.
// Placement data (bar, offset, index) is filled in by Bar.Add; before that
// the object is unattached and Bar() returns nil.
type BarObject interface {
	Duration() int
	Unit() int
	// Length converts the duration into the given unit; unit 0 means the
	// object's own unit.
	Length(unit int) int
	// AsABC renders the object as an abc token under the given key; the
	// key signature decides which accidentals stay implicit.
	AsABC(key Key) string
	Transposed(steps int, key Key) (BarObject, error)
	Bar() *Bar
	Offset() int
	Index() int
	Prev() BarObject
	Next() BarObject
	// Overlaps reports whether the two objects sound at the same time,
	// assuming their bars have the same index in different voices.
	Overlaps(other BarObject) bool
	Copy() BarObject

	register(bar *Bar, offset, idx int) error
}

// placement is the common part of Tone and Pause: duration bookkeeping and
// the position inside the containing bar.
type placement struct {
	duration int
	unit     int
	bar      *Bar
	offset   int
	idx      int
}

func (p *placement) Duration() int { return p.duration }
func (p *placement) Unit() int     { return p.unit }
func (p *placement) Bar() *Bar     { return p.bar }
func (p *placement) Offset() int   { return p.offset }
func (p *placement) Index() int    { return p.idx }

func (p *placement) Length(unit int) int {
	if unit == 0 || unit == p.unit {
		return p.duration
	}
	return p.duration * unit / p.unit
}

func (p *placement) register(bar *Bar, offset, idx int) error {
	if p.bar != nil {
		return fmt.Errorf("object already belongs to a bar")
	}
	p.bar = bar
	p.offset = offset
	p.idx = idx
	return nil
}

// Prev returns the object before this one, crossing into the previous bar
// at offset 0. An empty previous bar yields nil.
func (p *placement) Prev() BarObject {
	if p.bar == nil {
		return nil
	}
	if p.idx > 0 {
		return p.bar.Objects[p.idx-1]
	}
	pb := p.bar.Prev
	if pb == nil || len(pb.Objects) == 0 {
		return nil
	}
	return pb.Objects[len(pb.Objects)-1]
}

// Next is the counterpart of Prev.
func (p *placement) Next() BarObject {
	if p.bar == nil {
		return nil
	}
	if p.idx < len(p.bar.Objects)-1 {
		return p.bar.Objects[p.idx+1]
	}
	nb := p.bar.Next
	if nb == nil || len(nb.Objects) == 0 {
		return nil
	}
	return nb.Objects[0]
}

func (p *placement) Overlaps(other BarObject) bool {
	return p.offset < other.Offset()+other.Length(0) &&
		other.Offset() < p.offset+p.duration
}

// Tone is a single pitch with a duration, counted in the given unit
// (duration 4 in unit 8 is a half note). Bind ties the tone to the next
// tone of the same pitch.
type Tone struct {
	placement
	Halftone Halftone
	Bind     bool
}

func NewTone(halftone Halftone, duration, unit int) *Tone {
	return &Tone{placement: placement{duration: duration, unit: unit}, Halftone: halftone}
}

func (t *Tone) AsABC(key Key) string {
	tie := ""
	if t.Bind {
		tie = "-"
	}
	return fmt.Sprintf("%s%d%s", abcName(t.Halftone, key), t.duration, tie)
}

// abcName spells a halftone under a key signature: accidentals implied by
// the signature are dropped, a natural contradicting the signature gets an
// explicit = mark.
func abcName(h Halftone, key Key) string {
	name := h.Name
	mark := byte(0)
	if name[0] == '^' || name[0] == '_' {
		mark = name[0]
		name = name[1:]
	}
	keyMark := key.accidentalFor(name[0])
	switch {
	case mark == keyMark:
		return name
	case mark == 0:
		return "=" + name
	default:
		return string(mark) + name
	}
}

func (t *Tone) Transposed(steps int, key Key) (BarObject, error) {
	ht, err := t.Halftone.Transpose(steps, key)
	if err != nil {
		return nil, err
	}
	n := NewTone(ht, t.duration, t.unit)
	n.Bind = t.Bind
	return n, nil
}

func (t *Tone) Copy() BarObject {
	n := NewTone(t.Halftone, t.duration, t.unit)
	n.Bind = t.Bind
	return n
}

// Pause is a rest.
type Pause struct {
	placement
}

func NewPause(duration, unit int) *Pause {
	return &Pause{placement: placement{duration: duration, unit: unit}}
}

func (p *Pause) AsABC(Key) string { return fmt.Sprintf("z%d", p.duration) }

func (p *Pause) Transposed(int, Key) (BarObject, error) {
	return NewPause(p.duration, p.unit), nil
}

func (p *Pause) Copy() BarObject { return NewPause(p.duration, p.unit) }

// Bar is a measure holding tones and pauses. Bars added to a Voice are
// doubly linked and know their index in the voice.
type Bar struct {
	Duration int
	Unit     int
	Objects  []BarObject
	Prev     *Bar
	Next     *Bar
	Voice    *Voice
	Idx      int

	used int
}

func NewBar(duration, unit int) *Bar {
	return &Bar{Duration: duration, Unit: unit, Idx: -1}
}

// Add appends an object to the bar, rejecting overfull bars.
func (b *Bar) Add(obj BarObject) error {
	l := obj.Length(b.Unit)
	if b.used+l > b.Duration {
		return fmt.Errorf("overfull bar: %d + %d > %d", b.used, l, b.Duration)
	}
	if err := obj.register(b, b.used, len(b.Objects)); err != nil {
		return err
	}
	b.used += l
	b.Objects = append(b.Objects, obj)
	return nil
}

// Free returns the duration still unused in the bar.
func (b *Bar) Free() int { return b.Duration - b.used }

func (b *Bar) AsABC(key Key) string {
	s := ""
	for _, obj := range b.Objects {
		s += obj.AsABC(key) + " "
	}
	return s + "|"
}

// Copy returns a detached copy: same objects, no voice, no links.
func (b *Bar) Copy() *Bar {
	n := NewBar(b.Duration, b.Unit)
	for _, obj := range b.Objects {
		// Objects always fit into a bar with the same duration.
		n.Add(obj.Copy())
	}
	return n
}

func (b *Bar) Transposed(steps int, key Key) (*Bar, error) {
	n := NewBar(b.Duration, b.Unit)
	for _, obj := range b.Objects {
		t, err := obj.Transposed(steps, key)
		if err != nil {
			return nil, err
		}
		if err := n.Add(t); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// GetByOffset finds the object of this bar's voice that sounds at the
// given object's offset, in the bar with the same index as the object's
// bar. Used to pair up two voices note by note.
func (b *Bar) GetByOffset(obj BarObject) BarObject {
	ob := obj.Bar()
	if b.Voice == nil || ob == nil || ob.Idx >= len(b.Voice.Bars) {
		return nil
	}
	var found BarObject
	for _, o := range b.Voice.Bars[ob.Idx].Objects {
		if o.Offset() > obj.Offset() {
			break
		}
		found = o
	}
	return found
}
