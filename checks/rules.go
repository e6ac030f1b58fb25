package checks

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// StandardRules builds the first-species rule set. The rules follow the
// species counterpoint canon: permitted melodic intervals, jump
// discipline, consonant harmony with perfect consonances at the ends, no
// parallel perfect intervals and a preference for contrary motion.
func StandardRules() *RuleSet {
	melody := func(forCF bool) []MelodyRule {
		unison := &MelodyInterval{
			RuleInfo: RuleInfo{
				Name:    "melody-unison",
				Msg:     "No unison (Prim) allowed in the melody",
				Badness: 10,
			},
			Intervals: []int{0},
			NoOctave:  true,
		}
		if !forCF {
			// The counterpoint may repeat a tone once but not in a series.
			unison.Name = "melody-unison-repeat"
			unison.Msg = "No repeated unison (Prim) allowed in the melody"
			unison.OnlyRepeat = true
		}
		rules := []MelodyRule{
			unison,
			&MelodyInterval{
				RuleInfo: RuleInfo{
					Name:    "melody-seventh",
					Msg:     "No seventh (Septime) allowed in the melody",
					Badness: 10,
				},
				Intervals: []int{10, 11},
			},
			&MelodyInterval{
				RuleInfo: RuleInfo{
					Name:    "melody-tritone",
					Msg:     "No tritone (Devil's interval) allowed in the melody",
					Badness: 10,
				},
				Intervals: []int{6},
			},
			&MelodyJump{
				RuleInfo: RuleInfo{
					Name:    "melody-jump",
					Msg:     "After a jump, neither another jump nor movement in the jump's direction",
					Badness: 10,
				},
			},
		}
		if forCF {
			rules = append(rules,
				&MelodyInterval{
					RuleInfo: RuleInfo{
						Name:     "melody-jump-fourth-fifth",
						Msg:      "Jump by a fourth or fifth",
						Ugliness: 1,
					},
					Intervals: []int{5, 7},
					NoOctave:  true,
				},
				&MelodyInterval{
					RuleInfo: RuleInfo{
						Name:     "melody-jump-sixth",
						Msg:      "Jump by a sixth",
						Ugliness: 10,
					},
					Intervals: []int{8, 9},
					NoOctave:  true,
				},
				&MelodyInterval{
					RuleInfo: RuleInfo{
						Name:     "melody-jump-octave",
						Msg:      "Jump by an octave",
						Ugliness: 2,
					},
					Intervals: []int{12},
					NoOctave:  true,
				},
			)
		}
		return rules
	}
	return &RuleSet{
		CantusFirmus: melody(true),
		Counterpoint: melody(false),
		Harmony: []HarmonyRule{
			&HarmonyFirstInterval{
				RuleInfo: RuleInfo{
					Name:    "harmony-first-interval",
					Msg:     "The voices must begin on unison, fifth or octave",
					Badness: 100,
				},
				Allowed: []int{0, 7, 12},
			},
			&HarmonyInterval{
				RuleInfo: RuleInfo{
					Name:    "harmony-unison",
					Msg:     "Use no unisons except at the beginning or end",
					Badness: 10,
				},
				Intervals: []int{0},
				NotFirst:  true,
				NotLast:   true,
			},
			&HarmonyInterval{
				RuleInfo: RuleInfo{
					Name:    "harmony-second",
					Msg:     "No second (Sekund) between the voices",
					Badness: 10,
				},
				Intervals: []int{1, 2},
				Octave:    true,
			},
			&HarmonyInterval{
				RuleInfo: RuleInfo{
					Name:    "harmony-fourth-tritone",
					Msg:     "No fourth or tritone between the voices",
					Badness: 10,
				},
				Intervals: []int{5, 6},
				Octave:    true,
			},
			&HarmonyInterval{
				RuleInfo: RuleInfo{
					Name:    "harmony-seventh",
					Msg:     "No seventh (Septime) between the voices",
					Badness: 10,
				},
				Intervals: []int{10, 11},
			},
			&HarmonyIntervalMax{
				RuleInfo: RuleInfo{
					Name:    "harmony-limit-ninth",
					Msg:     "Adjacent voices must stay within a ninth of each other",
					Badness: 10,
				},
				Maximum: 16,
			},
			&HarmonyIntervalMax{
				RuleInfo: RuleInfo{
					Name:     "harmony-above-octave",
					Msg:      "Intervals above an octave should be avoided",
					Ugliness: 1,
				},
				Maximum: 12,
			},
			&HarmonyIntervalMin{
				RuleInfo: RuleInfo{
					Name:    "harmony-upper-up",
					Msg:     "The upper voice must stay above the cantus firmus",
					Badness: 10,
				},
				Minimum: 0,
			},
			&HarmonyHistory{
				RuleInfo: RuleInfo{
					Name:    "harmony-parallel-fifth",
					Msg:     "Avoid parallel fifths",
					Badness: 9,
				},
				Intervals: []int{7},
			},
			&HarmonyHistory{
				RuleInfo: RuleInfo{
					Name:    "harmony-parallel-octave",
					Msg:     "Avoid parallel octaves",
					Badness: 9,
				},
				Intervals: []int{12},
			},
			&HarmonyMelodyDirection{
				RuleInfo: RuleInfo{
					Name:     "harmony-sixth-third-row",
					Msg:      "For sixths or thirds, don't allow several in a row",
					Ugliness: 3,
				},
				Intervals: []int{3, 4, 8, 9},
				Dir:       DirZero,
			},
			&HarmonyMelodyDirection{
				RuleInfo: RuleInfo{
					Name:     "harmony-same-direction",
					Msg:      "Voices better move in opposite directions",
					Ugliness: 0.1,
				},
				Dir: DirSame,
			},
			&HarmonyJump2{
				RuleInfo: RuleInfo{
					Name:    "harmony-both-jump",
					Msg:     "Not both voices may jump at once",
					Badness: 10,
				},
				Limit: 2,
			},
		},
	}
}

// Weight is one rule's override in a weights file; omitted values keep
// the rule's default.
type Weight struct {
	Badness  *float64 `yaml:"badness"`
	Ugliness *float64 `yaml:"ugliness"`
}

// ApplyWeights reads a YAML document mapping rule names to weight
// overrides and applies it to the set. Unknown rule names are an error so
// typos don't silently keep defaults.
func (rs *RuleSet) ApplyWeights(r io.Reader) error {
	var weights map[string]Weight
	if err := yaml.NewDecoder(r).Decode(&weights); err != nil {
		return fmt.Errorf("cannot parse weights: %w", err)
	}
	rules := make(map[string]Rule)
	for _, rule := range rs.rules() {
		rules[rule.RuleName()] = rule
	}
	for name, w := range weights {
		rule, ok := rules[name]
		if !ok {
			return fmt.Errorf("unknown rule %q in weights", name)
		}
		b, u := rule.Weights()
		if w.Badness != nil {
			b = *w.Badness
		}
		if w.Ugliness != nil {
			u = *w.Ugliness
		}
		rule.Reweight(b, u)
	}
	return nil
}
