// Package synth renders tunes to raw audio with simple sine voices, for
// previewing generated counterpoint without external players.
package synth

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/viterin/vek/vek32"
	"github.com/vkleino/contrapunctus"
)

const SampleRate = 44100

const (
	attack  = 0.005 // seconds
	release = 0.030
	level   = 0.25 // per-voice amplitude before normalization
)

// Render synthesizes a tune into interleaved stereo float32 samples at
// SampleRate. Each voice is a sine with short attack and release ramps;
// tied tones of equal pitch sustain through, pauses stay silent. The mix
// is normalized when it would clip.
func Render(t *contrapunctus.Tune) ([]float32, error) {
	whole, err := wholeNoteSeconds(t)
	if err != nil {
		return nil, err
	}
	var mix []float32
	for _, v := range t.Voices {
		buf, err := renderVoice(v, whole)
		if err != nil {
			return nil, fmt.Errorf("voice %s: %v", v.ID, err)
		}
		if len(buf) > len(mix) {
			buf, mix = mix, buf
		}
		if len(buf) > 0 {
			vek32.Add_Inplace(mix[:len(buf)], buf)
		}
	}
	if len(mix) == 0 {
		return nil, nil
	}
	peak := max32(vek32.Max(mix), -vek32.Min(mix))
	if peak > 1 {
		vek32.MulNumber_Inplace(mix, 1/peak)
	}
	stereo := make([]float32, 2*len(mix))
	for i, s := range mix {
		stereo[2*i] = s
		stereo[2*i+1] = s
	}
	return stereo, nil
}

// note is a flattened voice event with times in fractions of a whole
// note.
type note struct {
	offset   int // halftones from a', pauses use sounding=false
	sounding bool
	start    float64
	length   float64
}

// flatten walks a voice's bars into a note list, merging tied tones of
// equal pitch into one sustained note.
func flatten(v *contrapunctus.Voice) ([]note, error) {
	transpose := 0
	if tr := v.Property("transpose"); tr != "" {
		n, err := strconv.Atoi(tr)
		if err != nil {
			return nil, fmt.Errorf("bad transpose %q", tr)
		}
		transpose = n
	}
	var notes []note
	pos := 0.0
	bind := false
	for _, bar := range v.Bars {
		for _, obj := range bar.Objects {
			length := float64(obj.Duration()) / float64(obj.Unit())
			switch o := obj.(type) {
			case *contrapunctus.Tone:
				offset := o.Halftone.Offset + transpose
				if bind && len(notes) > 0 {
					last := &notes[len(notes)-1]
					if last.sounding && last.offset == offset {
						last.length += length
						bind = o.Bind
						pos += length
						continue
					}
				}
				notes = append(notes, note{offset: offset, sounding: true, start: pos, length: length})
				bind = o.Bind
			case *contrapunctus.Pause:
				notes = append(notes, note{start: pos, length: length})
				bind = false
			}
			pos += length
		}
	}
	return notes, nil
}

func renderVoice(v *contrapunctus.Voice, whole float64) ([]float32, error) {
	notes, err := flatten(v)
	if err != nil {
		return nil, err
	}
	total := 0.0
	for _, n := range notes {
		total = n.start + n.length
	}
	buf := make([]float32, int(math.Ceil(total*whole*SampleRate)))
	for _, n := range notes {
		if !n.sounding {
			continue
		}
		freq := 440 * math.Pow(2, float64(n.offset)/12)
		from := int(n.start * whole * SampleRate)
		to := int((n.start + n.length) * whole * SampleRate)
		if to > len(buf) {
			to = len(buf)
		}
		dur := float64(to-from) / SampleRate
		for i := from; i < to; i++ {
			t := float64(i-from) / SampleRate
			env := 1.0
			if t < attack {
				env = t / attack
			}
			if left := dur - t; left < release {
				env = min64(env, left/release)
			}
			buf[i] += float32(level * env * math.Sin(2*math.Pi*freq*t))
		}
	}
	return buf, nil
}

// wholeNoteSeconds derives the duration of a whole note from the tune's
// tempo field, e.g. "1/4=200" for 200 quarter notes per minute.
func wholeNoteSeconds(t *contrapunctus.Tune) (float64, error) {
	q := t.Field("Q")
	if q == "" {
		q = "1/4=120"
	}
	parts := strings.SplitN(q, "=", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("bad tempo %q", q)
	}
	frac := strings.SplitN(parts[0], "/", 2)
	if len(frac) != 2 {
		return 0, fmt.Errorf("bad tempo %q", q)
	}
	num, err1 := strconv.Atoi(strings.TrimSpace(frac[0]))
	den, err2 := strconv.Atoi(strings.TrimSpace(frac[1]))
	bpm, err3 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || err3 != nil || num <= 0 || den <= 0 || bpm <= 0 {
		return 0, fmt.Errorf("bad tempo %q", q)
	}
	return 60 * float64(den) / (float64(bpm) * float64(num)), nil
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
