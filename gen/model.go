// Package gen generates first-species counterpoint: a gene model mapping
// integer vectors to two-voice tunes, a genetic search and an exhaustive
// depth-first search over it.
package gen

import (
	"fmt"

	"github.com/vkleino/contrapunctus"
)

// genesPerBar is the size of one counterpoint bar's gene group in the
// semibreve model.
const genesPerBar = 11

// Bound is the inclusive allele range of one gene.
type Bound struct {
	Min, Max int
}

// Model is the semibreve gene model. The first and the two last bars of
// each voice are hard-coded (finalis, step2/subsemitonium cadence,
// finalis), the bars between come from the genes: the cantus firmus gets
// one whole-note pitch gene per bar, the counterpoint an 11-gene group
// per bar encoding durations (as log2) and pitches for the heavy, light
// and half-heavy positions of an 8/8 bar. Depending on the decoded
// durations some genes of a group stay unused.
//
// The counterpoint moves on the authentic mode, the cantus firmus on the
// plagal one, so the cantus firmus sits a fourth below. A user-supplied
// cantus firmus replaces the generated one; its gene section is then
// empty.
type Model struct {
	TuneLength   int
	Mode         [2]*contrapunctus.Gregorian
	CantusFirmus *contrapunctus.Voice

	bounds []Bound
}

func NewModel(tuneLength int, mode string, cantusFirmus *contrapunctus.Voice) (*Model, error) {
	if cantusFirmus != nil {
		tuneLength = len(cantusFirmus.Bars)
	}
	if tuneLength <= 3 {
		return nil, fmt.Errorf("tune length must be at least 4, got %d", tuneLength)
	}
	modes, ok := contrapunctus.Modes[mode]
	if !ok {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	m := &Model{TuneLength: tuneLength, Mode: modes, CantusFirmus: cantusFirmus}
	m.bounds = m.computeBounds()
	return m, nil
}

// CFLength is the number of cantus firmus pitch genes; zero when the
// cantus firmus is given.
func (m *Model) CFLength() int {
	if m.CantusFirmus != nil {
		return 0
	}
	return m.TuneLength - 3
}

// CPLength is the number of generated counterpoint bars.
func (m *Model) CPLength() int { return m.TuneLength - 2 }

func (m *Model) Genes() int { return len(m.bounds) }

func (m *Model) Bounds() []Bound { return m.bounds }

func (m *Model) computeBounds() []Bound {
	var init []Bound
	for i := 0; i < m.CFLength(); i++ {
		init = append(init, Bound{0, 7})
	}
	for i := 0; i < m.CPLength(); i++ {
		init = append(init,
			Bound{1, 3}, // duration heavy
			Bound{0, 7}, // pitch
			Bound{0, 1}, // duration light 1/4
			Bound{0, 7}, // pitch
			Bound{0, 7}, // pitch light 1/8
			Bound{1, 2}, // duration half-heavy 1/4 or 1/2
			Bound{0, 7}, // pitch
			Bound{0, 7}, // pitch light 1/8
			Bound{0, 1}, // duration light 1/4
			Bound{0, 7}, // pitch
			Bound{0, 7}, // pitch light 1/8
		)
	}
	return init
}

func (m *Model) newTune() *contrapunctus.Tune {
	t := contrapunctus.NewTune(contrapunctus.Meter{Measure: 4, Beats: 4}, m.Mode[0].Key, 8)
	t.SetField("Q", "1/4=200")
	t.SetField("score", "(Contrapunctus) (CantusFirmus)")
	return t
}

func wholeBar(h contrapunctus.Halftone) (*contrapunctus.Bar, error) {
	b := contrapunctus.NewBar(8, 8)
	if err := b.Add(contrapunctus.NewTone(h, 8, 8)); err != nil {
		return nil, err
	}
	return b, nil
}

func addWholeBar(v *contrapunctus.Voice, h contrapunctus.Halftone) error {
	b, err := wholeBar(h)
	if err != nil {
		return err
	}
	return v.Add(b)
}

// Decode maps a gene vector to its tune. With maxIdx >= 0 only the part
// of the tune determined by genes up to maxIdx is decoded, which lets a
// search score a prefix before the remaining genes are assigned. Genes
// that end up unused by the rhythm are never read, so their values don't
// matter.
func (m *Model) Decode(genes []int, maxIdx int) (*contrapunctus.Tune, error) {
	if len(genes) != len(m.bounds) {
		return nil, fmt.Errorf("gene vector has %d genes, model needs %d", len(genes), len(m.bounds))
	}
	tune := m.newTune()
	var cf *contrapunctus.Voice
	if m.CantusFirmus != nil {
		cf = m.CantusFirmus.Copy()
	} else {
		cf = contrapunctus.NewVoice(contrapunctus.CantusFirmusID,
			contrapunctus.Property{Name: "name", Value: "Cantus Firmus"})
		if err := addWholeBar(cf, m.Mode[1].Finalis()); err != nil {
			return nil, err
		}
	}
	tune.Add(cf)
	for i := 0; i < m.CFLength(); i++ {
		if maxIdx >= 0 && i > maxIdx {
			return tune, nil
		}
		h, err := m.degree(1, genes[i])
		if err != nil {
			return nil, err
		}
		if err := addWholeBar(cf, h); err != nil {
			return nil, err
		}
	}
	if m.CantusFirmus == nil {
		// The final must be approached by step: the bar before the last
		// is hard-coded to step2, the last to the finalis.
		if err := addWholeBar(cf, m.Mode[1].Step2()); err != nil {
			return nil, err
		}
		if err := addWholeBar(cf, m.Mode[1].Finalis()); err != nil {
			return nil, err
		}
	}
	cp := contrapunctus.NewVoice(contrapunctus.ContrapunctusID,
		contrapunctus.Property{Name: "name", Value: "Contrapunctus"})
	tune.Add(cp)
	for i := 0; i < m.CPLength(); i++ {
		off := i*genesPerBar + m.CFLength()
		v := genes[off : off+genesPerBar]
		b := contrapunctus.NewBar(8, 8)
		if err := cp.Add(b); err != nil {
			return nil, err
		}
		done, err := m.decodeBar(b, v, off, maxIdx)
		if err != nil {
			return nil, err
		}
		if !done {
			return tune, nil
		}
	}
	// Cadence: subsemitonium, then the finalis an octave above the
	// cantus firmus.
	if err := addWholeBar(cp, m.Mode[0].Subsemitonium()); err != nil {
		return nil, err
	}
	if err := addWholeBar(cp, m.Mode[0].Step(7)); err != nil {
		return nil, err
	}
	return tune, nil
}

// decodeBar fills one counterpoint bar from its 11-gene group; off is the
// group's position in the whole vector, used for the maxIdx cutoff. The
// returned bool is false when the cutoff truncated the bar.
func (m *Model) decodeBar(b *contrapunctus.Bar, v []int, off, maxIdx int) (bool, error) {
	addTone := func(degree, length int) error {
		h, err := m.degree(0, degree)
		if err != nil {
			return err
		}
		return b.Add(contrapunctus.NewTone(h, length, 8))
	}
	cut := func(need int) bool { return maxIdx >= 0 && off+need > maxIdx }
	duration := func(g, min, max int) (int, error) {
		l := 1 << g
		if l < min || l > max || g < 0 {
			return 0, fmt.Errorf("invalid duration gene %d", g)
		}
		return l, nil
	}
	if cut(1) {
		return false, nil
	}
	l, err := duration(v[0], 2, 8)
	if err != nil {
		return false, err
	}
	if err := addTone(v[1], l); err != nil {
		return false, err
	}
	boff := l
	if boff == 2 {
		if cut(3) {
			return false, nil
		}
		if l, err = duration(v[2], 1, 2); err != nil {
			return false, err
		}
		if err := addTone(v[3], l); err != nil {
			return false, err
		}
		boff += l
	}
	if boff == 3 {
		if cut(4) {
			return false, nil
		}
		if err := addTone(v[4], 1); err != nil {
			return false, err
		}
		boff++
	}
	if boff == 4 {
		if cut(6) {
			return false, nil
		}
		if l, err = duration(v[5], 2, 4); err != nil {
			return false, err
		}
		if err := addTone(v[6], l); err != nil {
			return false, err
		}
		boff += l
	}
	if boff == 5 {
		// Unreachable with the current duration bounds; kept for
		// symmetry with the gene layout.
		if cut(7) {
			return false, nil
		}
		if err := addTone(v[7], 1); err != nil {
			return false, err
		}
		boff++
	}
	if boff == 6 {
		if cut(9) {
			return false, nil
		}
		if l, err = duration(v[8], 1, 2); err != nil {
			return false, err
		}
		if err := addTone(v[9], l); err != nil {
			return false, err
		}
		boff += l
	}
	if boff == 7 {
		if cut(10) {
			return false, nil
		}
		if err := addTone(v[10], 1); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Uses reports whether Decode reads gene idx. The rhythm decoded from a
// group's duration genes determines which of its slots are live, so the
// answer depends only on genes before idx in the same group; the skipped
// slots are don't-cares whose value cannot change the tune.
func (m *Model) Uses(genes []int, idx int) bool {
	if idx < m.CFLength() {
		return true
	}
	rel := (idx - m.CFLength()) % genesPerBar
	if rel <= 1 {
		return true
	}
	v := genes[idx-rel : idx-rel+genesPerBar]
	boff := 1 << v[0]
	if boff == 2 {
		if rel <= 3 {
			return true
		}
		boff += 1 << v[2]
	}
	if boff == 3 {
		if rel == 4 {
			return true
		}
		boff++
	}
	if boff == 4 {
		if rel == 5 || rel == 6 {
			return true
		}
		boff += 1 << v[5]
	}
	if boff == 5 {
		if rel == 7 {
			return true
		}
		boff++
	}
	if boff == 6 {
		if rel == 8 || rel == 9 {
			return true
		}
		boff += 1 << v[8]
	}
	return boff == 7 && rel == 10
}

// degree resolves a scale-degree gene (0..7) on the counterpoint (0) or
// cantus firmus (1) mode.
func (m *Model) degree(voice, g int) (contrapunctus.Halftone, error) {
	if g < 0 || g > 7 {
		return contrapunctus.Halftone{}, fmt.Errorf("invalid pitch gene %d", g)
	}
	return m.Mode[voice].Step(g), nil
}

// Encode is the inverse of Decode: it reads the gene vector back out of a
// generated tune. Genes the rhythm leaves unused come out at their lower
// bound.
func (m *Model) Encode(t *contrapunctus.Tune) ([]int, error) {
	genes := make([]int, len(m.bounds))
	for i, b := range m.bounds {
		genes[i] = b.Min
	}
	cp := t.Voice(contrapunctus.ContrapunctusID)
	if cp == nil {
		return nil, fmt.Errorf("tune has no %s voice", contrapunctus.ContrapunctusID)
	}
	if len(cp.Bars) != m.TuneLength {
		return nil, fmt.Errorf("counterpoint has %d bars, expected %d", len(cp.Bars), m.TuneLength)
	}
	if m.CantusFirmus == nil {
		cf := t.Voice(contrapunctus.CantusFirmusID)
		if cf == nil {
			return nil, fmt.Errorf("tune has no %s voice", contrapunctus.CantusFirmusID)
		}
		if len(cf.Bars) != m.TuneLength {
			return nil, fmt.Errorf("cantus firmus has %d bars, expected %d", len(cf.Bars), m.TuneLength)
		}
		for i := 0; i < m.CFLength(); i++ {
			g, err := m.degreeOf(1, cf.Bars[i+1])
			if err != nil {
				return nil, err
			}
			genes[i] = g
		}
	}
	for i := 0; i < m.CPLength(); i++ {
		off := i*genesPerBar + m.CFLength()
		if err := m.encodeBar(cp.Bars[i], genes[off:off+genesPerBar]); err != nil {
			return nil, fmt.Errorf("counterpoint bar %d: %w", i+1, err)
		}
	}
	return genes, nil
}

func (m *Model) encodeBar(b *contrapunctus.Bar, v []int) error {
	boff := 0
	for _, obj := range b.Objects {
		tone, ok := obj.(*contrapunctus.Tone)
		if !ok {
			return fmt.Errorf("unexpected pause")
		}
		g, err := m.degreeOf0(tone)
		if err != nil {
			return err
		}
		l := tone.Duration()
		switch boff {
		case 0:
			v[0], v[1] = log2(l), g
		case 2:
			v[2], v[3] = log2(l), g
		case 3:
			v[4] = g
		case 4:
			v[5], v[6] = log2(l), g
		case 5:
			v[7] = g
		case 6:
			v[8], v[9] = log2(l), g
		case 7:
			v[10] = g
		default:
			return fmt.Errorf("tone at invalid offset %d", boff)
		}
		boff += l
	}
	if boff != 8 {
		return fmt.Errorf("bar has duration %d, expected 8", boff)
	}
	return nil
}

// degreeOf finds the scale degree 0..7 whose pitch matches the single
// whole tone of a cantus firmus bar.
func (m *Model) degreeOf(voice int, b *contrapunctus.Bar) (int, error) {
	if len(b.Objects) != 1 {
		return 0, fmt.Errorf("cantus firmus bar must hold a single tone")
	}
	tone, ok := b.Objects[0].(*contrapunctus.Tone)
	if !ok {
		return 0, fmt.Errorf("cantus firmus bar must hold a tone, not a pause")
	}
	for g := 0; g <= 7; g++ {
		if m.Mode[voice].Step(g).Offset == tone.Halftone.Offset {
			return g, nil
		}
	}
	return 0, fmt.Errorf("pitch %s is not a degree of the %s mode", tone.Halftone, m.Mode[voice].Name)
}

func (m *Model) degreeOf0(tone *contrapunctus.Tone) (int, error) {
	for g := 0; g <= 7; g++ {
		if m.Mode[0].Step(g).Offset == tone.Halftone.Offset {
			return g, nil
		}
	}
	return 0, fmt.Errorf("pitch %s is not a degree of the %s mode", tone.Halftone, m.Mode[0].Name)
}

func log2(l int) int {
	n := 0
	for l > 1 {
		l >>= 1
		n++
	}
	return n
}
