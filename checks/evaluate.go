package checks

import (
	"fmt"

	"github.com/vkleino/contrapunctus"
)

// RuleSet bundles the rules for the two melodies and for the harmony
// between them.
type RuleSet struct {
	CantusFirmus []MelodyRule
	Counterpoint []MelodyRule
	Harmony      []HarmonyRule
}

// Violation records one failed rule with the position it failed at.
type Violation struct {
	Rule     string
	Where    string
	Msg      string
	Badness  float64
	Ugliness float64
}

// Evaluation is the aggregated score of a tune. Badness starts at 1 and
// multiplies over hard violations, ugliness starts at 1 and adds up style
// penalties; a feasible tune has badness 1.
type Evaluation struct {
	Badness    float64
	Ugliness   float64
	Violations []Violation
}

// Fitness is the value searches minimize; a perfect tune scores 1.
func (e *Evaluation) Fitness() float64 { return e.Badness * e.Ugliness }

// Feasible reports whether no hard rule was violated.
func (e *Evaluation) Feasible() bool { return e.Badness <= 1 }

func (rs *RuleSet) rules() []Rule {
	var all []Rule
	for _, r := range rs.CantusFirmus {
		all = append(all, r)
	}
	for _, r := range rs.Counterpoint {
		all = append(all, r)
	}
	for _, r := range rs.Harmony {
		all = append(all, r)
	}
	return all
}

// Reset clears the history state of every rule.
func (rs *RuleSet) Reset() {
	for _, r := range rs.rules() {
		r.Reset()
	}
}

// Evaluate scores a tune: the melody rules run over the cantus firmus and
// counterpoint voices, the harmony rules over the aligned note pairs of
// both. Partial tunes are fine; missing voices simply contribute nothing.
func (rs *RuleSet) Evaluate(t *contrapunctus.Tune) *Evaluation {
	rs.Reset()
	e := &Evaluation{Badness: 1, Ugliness: 1}
	cfIdx, cpIdx := voiceIndices(t)
	if cfIdx < len(t.Voices) {
		e.runMelody(rs.CantusFirmus, t.Voices[cfIdx])
	}
	if cpIdx < len(t.Voices) {
		e.runMelody(rs.Counterpoint, t.Voices[cpIdx])
	}
	for _, pair := range t.VoicePairs(cfIdx, cpIdx) {
		cf, cp := pair[0], pair[1]
		for _, rule := range rs.Harmony {
			e.account(rule, rule.Check(cf, cp), harmonyWhere(cf, cp))
		}
	}
	return e
}

// EvaluateMelody scores a single voice against the cantus firmus melody
// rules, for checking a user-supplied cantus firmus on its own.
func (rs *RuleSet) EvaluateMelody(v *contrapunctus.Voice) *Evaluation {
	rs.Reset()
	e := &Evaluation{Badness: 1, Ugliness: 1}
	e.runMelody(rs.CantusFirmus, v)
	return e
}

func (e *Evaluation) runMelody(rules []MelodyRule, v *contrapunctus.Voice) {
	for _, bar := range v.Bars {
		for _, obj := range bar.Objects {
			tone, ok := obj.(*contrapunctus.Tone)
			if !ok {
				continue
			}
			for _, rule := range rules {
				e.account(rule, rule.Check(tone), objWhere(tone))
			}
		}
	}
}

func (e *Evaluation) account(rule Rule, r Result, where string) {
	if r.IsZero() {
		return
	}
	if r.Badness != 0 {
		e.Badness *= r.Badness
	}
	e.Ugliness += r.Ugliness
	e.Violations = append(e.Violations, Violation{
		Rule:     rule.RuleName(),
		Where:    where,
		Msg:      rule.Message(),
		Badness:  r.Badness,
		Ugliness: r.Ugliness,
	})
}

// voiceIndices finds the cantus firmus and counterpoint voices by ID,
// falling back to the first two voices.
func voiceIndices(t *contrapunctus.Tune) (cf, cp int) {
	cf, cp = 0, 1
	for i, v := range t.Voices {
		switch v.ID {
		case contrapunctus.CantusFirmusID:
			cf = i
		case contrapunctus.ContrapunctusID:
			cp = i
		}
	}
	return cf, cp
}

func harmonyWhere(cf, cp contrapunctus.BarObject) string {
	return objWhere(cp) + " " + objWhere(cf)
}

func objWhere(obj contrapunctus.BarObject) string {
	b := obj.Bar()
	if b == nil {
		return ""
	}
	id := ""
	if b.Voice != nil {
		id = b.Voice.ID
	}
	return fmt.Sprintf("%s bar: %d note: %d", id, b.Idx+1, obj.Index()+1)
}
