// Package checks scores counterpoint tunes against the classical rules.
// Every rule yields a Result with a badness (hard rule violations) and an
// ugliness (style penalties); the evaluator multiplies badnesses and adds
// uglinesses over a whole tune.
package checks

import (
	"github.com/vkleino/contrapunctus"
)

// Result is the outcome of feeding one tone or one harmony pair to a
// rule; zero means the rule was not violated.
type Result struct {
	Badness  float64
	Ugliness float64
}

func (r Result) IsZero() bool { return r.Badness == 0 && r.Ugliness == 0 }

// Rule is the common surface of all rules: identification for weight
// overrides and reports, and Reset to clear history state between
// evaluations.
type Rule interface {
	RuleName() string
	Message() string
	Weights() (badness, ugliness float64)
	Reweight(badness, ugliness float64)
	Reset()
}

// MelodyRule checks the progression of a single voice; it is fed the
// voice's tones in order and keeps its own history.
type MelodyRule interface {
	Rule
	Check(t *contrapunctus.Tone) Result
}

// HarmonyRule checks two voices against each other; it is fed the aligned
// cantus firmus / counterpoint pairs in order.
type HarmonyRule interface {
	Rule
	Check(cf, cp contrapunctus.BarObject) Result
}

// RuleInfo is the embedded identification and weight part of every rule.
type RuleInfo struct {
	Name string
	Msg  string

	Badness  float64
	Ugliness float64
}

func (r *RuleInfo) RuleName() string { return r.Name }
func (r *RuleInfo) Message() string  { return r.Msg }

func (r *RuleInfo) Weights() (badness, ugliness float64) {
	return r.Badness, r.Ugliness
}

func (r *RuleInfo) Reweight(badness, ugliness float64) {
	r.Badness, r.Ugliness = badness, ugliness
}

func (r *RuleInfo) result() Result { return Result{r.Badness, r.Ugliness} }

// MelodyInterval flags consecutive tones whose interval falls into a set.
// By default intervals are unsigned and octave-reduced; NoOctave keeps
// compound intervals apart and Signed distinguishes up from down.
// OnlyRepeat flags only the second and further occurrences in a row, for
// rules like "a single unison is fine, several are not". A tone tied to
// its predecessor never counts as a melodic unison.
type MelodyInterval struct {
	RuleInfo
	Intervals  []int
	Signed     bool
	NoOctave   bool
	OnlyRepeat bool

	prev      *contrapunctus.Tone
	prevMatch bool
}

func (c *MelodyInterval) Reset() {
	c.prev = nil
	c.prevMatch = false
}

func (c *MelodyInterval) Check(t *contrapunctus.Tone) Result {
	if c.prev == nil {
		c.prev = t
		return Result{}
	}
	d := t.Halftone.Diff(c.prev.Halftone)
	tied := c.prev.Bind && d == 0
	c.prev = t
	if !c.Signed {
		d = abs(d)
	}
	if !c.NoOctave {
		d = floorMod(d, 12)
	}
	if !member(c.Intervals, d) {
		c.prevMatch = false
		return Result{}
	}
	if tied {
		return Result{}
	}
	rv := c.result()
	if c.OnlyRepeat && !c.prevMatch {
		rv = Result{}
	}
	c.prevMatch = true
	return rv
}

// MelodyJump enforces jump discipline: after a jump (more than a whole
// tone) a voice may neither jump again nor keep stepping in the jump's
// direction.
type MelodyJump struct {
	RuleInfo

	prev     *contrapunctus.Tone
	prevJump int
}

func (c *MelodyJump) Reset() {
	c.prev = nil
	c.prevJump = 0
}

func (c *MelodyJump) Check(t *contrapunctus.Tone) Result {
	if c.prev == nil {
		c.prev = t
		return Result{}
	}
	d := t.Halftone.Diff(c.prev.Halftone)
	c.prev = t
	rv := Result{}
	if abs(d) > 2 {
		if c.prevJump != 0 {
			rv = c.result()
		}
		c.prevJump = sgn(d)
	} else {
		if c.prevJump != 0 && c.prevJump == sgn(d) {
			rv = c.result()
		}
		c.prevJump = 0
	}
	return rv
}

// HarmonyInterval flags harmony pairs whose interval (counterpoint above
// cantus firmus) falls into a set. NotFirst and NotLast exempt the very
// first and very last note of the counterpoint voice, for rules that
// allow e.g. unisons at the beginning and end.
type HarmonyInterval struct {
	RuleInfo
	Intervals []int
	Octave    bool
	Signed    bool
	NotFirst  bool
	NotLast   bool
}

func (c *HarmonyInterval) Reset() {}

func (c *HarmonyInterval) Check(cf, cp contrapunctus.BarObject) Result {
	tcf, tcp, ok := tonePair(cf, cp)
	if !ok {
		return Result{}
	}
	if c.NotFirst && isFirstNote(tcp) || c.NotLast && isLastNote(tcp) {
		return Result{}
	}
	d := tcp.Halftone.Diff(tcf.Halftone)
	if !c.Signed {
		d = abs(d)
	}
	if c.Octave {
		d = floorMod(d, 12)
	}
	if member(c.Intervals, d) {
		return c.result()
	}
	return Result{}
}

// HarmonyFirstInterval restricts the very first sounding interval of the
// tune to a set of allowed intervals. It fires at most once per
// evaluation: on the first pair where both voices sound a tone and the
// cantus firmus has no earlier tone. Leading pauses defer the check.
type HarmonyFirstInterval struct {
	RuleInfo
	Allowed []int

	done bool
}

func (c *HarmonyFirstInterval) Reset() { c.done = false }

func (c *HarmonyFirstInterval) Check(cf, cp contrapunctus.BarObject) Result {
	if c.done {
		return Result{}
	}
	tcf, tcp, ok := tonePair(cf, cp)
	if !ok {
		return Result{}
	}
	if prevTone(tcf) != nil {
		c.done = true
		return Result{}
	}
	c.done = true
	if !member(c.Allowed, abs(tcp.Halftone.Diff(tcf.Halftone))) {
		return c.result()
	}
	return Result{}
}

// prevTone walks backwards over pauses to the nearest earlier tone.
func prevTone(obj contrapunctus.BarObject) *contrapunctus.Tone {
	for p := obj.Prev(); p != nil; p = p.Prev() {
		if t, ok := p.(*contrapunctus.Tone); ok {
			return t
		}
	}
	return nil
}

// HarmonyIntervalMax flags pairs further apart than Maximum (signed, so a
// counterpoint below the cantus firmus never exceeds it).
type HarmonyIntervalMax struct {
	RuleInfo
	Maximum int
}

func (c *HarmonyIntervalMax) Reset() {}

func (c *HarmonyIntervalMax) Check(cf, cp contrapunctus.BarObject) Result {
	tcf, tcp, ok := tonePair(cf, cp)
	if !ok {
		return Result{}
	}
	if tcp.Halftone.Diff(tcf.Halftone) > c.Maximum {
		return c.result()
	}
	return Result{}
}

// HarmonyIntervalMin flags pairs closer than Minimum; with Minimum 0 it
// keeps the counterpoint above the cantus firmus.
type HarmonyIntervalMin struct {
	RuleInfo
	Minimum int
}

func (c *HarmonyIntervalMin) Reset() {}

func (c *HarmonyIntervalMin) Check(cf, cp contrapunctus.BarObject) Result {
	tcf, tcp, ok := tonePair(cf, cp)
	if !ok {
		return Result{}
	}
	if tcp.Halftone.Diff(tcf.Halftone) < c.Minimum {
		return c.result()
	}
	return Result{}
}

// HarmonyJump2 flags movements where both voices jump at once.
type HarmonyJump2 struct {
	RuleInfo
	Limit int

	pCf, pCp *contrapunctus.Tone
}

func (c *HarmonyJump2) Reset() {
	c.pCf, c.pCp = nil, nil
}

func (c *HarmonyJump2) Check(cf, cp contrapunctus.BarObject) Result {
	tcf, tcp, ok := tonePair(cf, cp)
	if !ok {
		c.Reset()
		return Result{}
	}
	if c.pCf == nil {
		c.pCf, c.pCp = tcf, tcp
		return Result{}
	}
	d1 := tcf.Halftone.Diff(c.pCf.Halftone)
	d2 := tcp.Halftone.Diff(c.pCp.Halftone)
	c.pCf, c.pCp = tcf, tcp
	if abs(d1) > c.Limit && abs(d2) > c.Limit {
		return c.result()
	}
	return Result{}
}

// HarmonyHistory flags an interval from the set that directly follows
// another interval from the set, as in "no parallel fifths" or "no runs
// of sixths". A pause breaks the chain.
type HarmonyHistory struct {
	RuleInfo
	Intervals []int

	prevIn bool
}

func (c *HarmonyHistory) Reset() { c.prevIn = false }

func (c *HarmonyHistory) Check(cf, cp contrapunctus.BarObject) Result {
	tcf, tcp, ok := tonePair(cf, cp)
	if !ok {
		c.prevIn = false
		return Result{}
	}
	in := member(c.Intervals, abs(tcp.Halftone.Diff(tcf.Halftone)))
	rv := Result{}
	if in && c.prevIn {
		rv = c.result()
	}
	c.prevIn = in
	return rv
}

// Direction selects which combination of melodic directions a
// HarmonyMelodyDirection rule looks for.
type Direction int

const (
	// DirSame: both voices move, in the same direction.
	DirSame Direction = iota
	// DirZero: neither voice moves.
	DirZero
	// DirParallel: equal directions, moving or not.
	DirParallel
)

// HarmonyMelodyDirection flags harmony pairs by the relative melodic
// direction of the two voices, optionally restricted to an interval set
// (the empty set matches all intervals). The interval is signed.
type HarmonyMelodyDirection struct {
	RuleInfo
	Intervals []int
	Octave    bool
	Dir       Direction

	pCf, pCp *contrapunctus.Tone
}

func (c *HarmonyMelodyDirection) Reset() {
	c.pCf, c.pCp = nil, nil
}

func (c *HarmonyMelodyDirection) Check(cf, cp contrapunctus.BarObject) Result {
	tcf, tcp, ok := tonePair(cf, cp)
	if !ok {
		c.Reset()
		return Result{}
	}
	if c.pCf == nil {
		c.pCf, c.pCp = tcf, tcp
		return Result{}
	}
	dirCf := sgn(tcf.Halftone.Diff(c.pCf.Halftone))
	dirCp := sgn(tcp.Halftone.Diff(c.pCp.Halftone))
	d := tcp.Halftone.Diff(tcf.Halftone)
	if c.Octave {
		d = floorMod(d, 12)
	}
	c.pCf, c.pCp = tcf, tcp
	if len(c.Intervals) > 0 && !member(c.Intervals, d) {
		return Result{}
	}
	var match bool
	switch c.Dir {
	case DirSame:
		match = dirCf != 0 && dirCf == dirCp
	case DirZero:
		match = dirCf == 0 && dirCp == 0
	case DirParallel:
		match = dirCf == dirCp
	}
	if match {
		return c.result()
	}
	return Result{}
}

func tonePair(cf, cp contrapunctus.BarObject) (tcf, tcp *contrapunctus.Tone, ok bool) {
	tcf, ok1 := cf.(*contrapunctus.Tone)
	tcp, ok2 := cp.(*contrapunctus.Tone)
	return tcf, tcp, ok1 && ok2
}

func isFirstNote(obj contrapunctus.BarObject) bool {
	b := obj.Bar()
	return b != nil && b.Idx == 0 && obj.Index() == 0
}

func isLastNote(obj contrapunctus.BarObject) bool {
	b := obj.Bar()
	return b != nil && b.Next == nil && obj.Index() == len(b.Objects)-1
}

func member(set []int, d int) bool {
	for _, s := range set {
		if s == d {
			return true
		}
	}
	return false
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
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

func floorMod(a, b int) int {
	m := a % b
	if m != 0 && ((a < 0) != (b < 0)) {
		m += b
	}
	return m
}
