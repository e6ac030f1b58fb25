package contrapunctus

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// The YAML form of a tune keeps bars as flow sequences of abc note
// tokens, so a .yml tune stays diffable and hand-editable.
type tuneYAML struct {
	Number int         `yaml:"number,omitempty"`
	Title  string      `yaml:"title,omitempty"`
	Meter  string      `yaml:"meter"`
	Key    string      `yaml:"key"`
	Unit   int         `yaml:"unit"`
	Fields []Property  `yaml:"fields,omitempty"`
	Voices []voiceYAML `yaml:"voices"`
}

type voiceYAML struct {
	ID         string     `yaml:"id"`
	Properties []Property `yaml:"properties,omitempty"`
	Bars       [][]string `yaml:"bars,flow"`
}

func (t *Tune) MarshalYAML() (interface{}, error) {
	y := tuneYAML{
		Number: t.Number,
		Title:  t.Title,
		Meter:  t.Meter.String(),
		Key:    t.Key.Name,
		Unit:   t.Unit,
		Fields: t.Fields,
	}
	for _, v := range t.Voices {
		vy := voiceYAML{ID: v.ID, Properties: v.Properties}
		for _, b := range v.Bars {
			tokens := make([]string, 0, len(b.Objects))
			for _, obj := range b.Objects {
				tokens = append(tokens, obj.AsABC(t.Key))
			}
			vy.Bars = append(vy.Bars, tokens)
		}
		y.Voices = append(y.Voices, vy)
	}
	return y, nil
}

func (t *Tune) UnmarshalYAML(value *yaml.Node) error {
	var y tuneYAML
	if err := value.Decode(&y); err != nil {
		return err
	}
	meter, err := parseMeter(y.Meter)
	if err != nil {
		return err
	}
	key, err := ParseKey(y.Key)
	if err != nil {
		return err
	}
	unit := y.Unit
	if unit == 0 {
		unit = 8
	}
	*t = Tune{
		Number: y.Number,
		Title:  y.Title,
		Meter:  meter,
		Key:    key,
		Unit:   unit,
		Fields: y.Fields,
	}
	if t.Number == 0 {
		t.Number = 1
	}
	barlen := meter.BarLength(unit)
	for _, vy := range y.Voices {
		v := NewVoice(vy.ID, vy.Properties...)
		for _, tokens := range vy.Bars {
			bar := NewBar(barlen, unit)
			for _, tok := range tokens {
				obj, n, err := parseToken(tok, unit, key)
				if err != nil {
					return err
				}
				if n != len(tok) {
					return fmt.Errorf("trailing data in note token %q", tok)
				}
				if err := bar.Add(obj); err != nil {
					return err
				}
			}
			if err := v.Add(bar); err != nil {
				return err
			}
		}
		t.Add(v)
	}
	return nil
}
