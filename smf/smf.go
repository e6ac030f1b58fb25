// Package smf writes tunes as standard MIDI files.
package smf

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	gosmf "gitlab.com/gomidi/midi/v2/smf"
	"github.com/vkleino/contrapunctus"
)

// ticksPerQuarter is the SMF time resolution; a whole note is four times
// this.
const ticksPerQuarter = 480

const velocity = 90

// Write renders the tune as a type 1 SMF: one meta track carrying tempo
// and meter, then one track per voice. Tones map to MIDI notes relative
// to a' = 69, with the voice's transpose property applied; tied tones of
// equal pitch become one sustained note.
func Write(w io.Writer, t *contrapunctus.Tune) error {
	s := gosmf.New()
	ticks := gosmf.MetricTicks(ticksPerQuarter)
	s.TimeFormat = ticks

	bpm, err := quarterBPM(t)
	if err != nil {
		return err
	}
	var meta gosmf.Track
	if t.Title != "" {
		meta.Add(0, gosmf.MetaTrackSequenceName(t.Title))
	}
	meta.Add(0, gosmf.MetaTempo(bpm))
	meta.Add(0, gosmf.MetaMeter(uint8(t.Meter.Measure), uint8(t.Meter.Beats)))
	meta.Close(0)
	if err := s.Add(meta); err != nil {
		return err
	}

	for ch, v := range t.Voices {
		tr, err := voiceTrack(v, uint8(ch))
		if err != nil {
			return fmt.Errorf("voice %s: %w", v.ID, err)
		}
		if err := s.Add(tr); err != nil {
			return err
		}
	}
	_, err = s.WriteTo(w)
	return err
}

func voiceTrack(v *contrapunctus.Voice, channel uint8) (gosmf.Track, error) {
	var tr gosmf.Track
	if name := v.Property("name"); name != "" {
		tr.Add(0, gosmf.MetaInstrument(name))
	}
	transpose := 0
	if p := v.Property("transpose"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("bad transpose %q", p)
		}
		transpose = n
	}
	// pending is the still-open note, so ties can extend it instead of
	// retriggering.
	var pendingKey uint8
	var pendingTicks uint32
	var pendingBind bool
	open := false
	rest := uint32(0)
	closePending := func() {
		if !open {
			return
		}
		tr.Add(rest, midi.NoteOn(channel, pendingKey, velocity))
		tr.Add(pendingTicks, midi.NoteOff(channel, pendingKey))
		rest = 0
		open = false
	}
	for _, bar := range v.Bars {
		for _, obj := range bar.Objects {
			length := uint32(obj.Duration()) * 4 * ticksPerQuarter / uint32(obj.Unit())
			switch o := obj.(type) {
			case *contrapunctus.Tone:
				key := 69 + o.Halftone.Offset + transpose
				if key < 0 || key > 127 {
					return nil, fmt.Errorf("tone %s out of MIDI range", o.Halftone)
				}
				if open && pendingBind && pendingKey == uint8(key) {
					pendingTicks += length
					pendingBind = o.Bind
					continue
				}
				closePending()
				pendingKey, pendingTicks, pendingBind = uint8(key), length, o.Bind
				open = true
			case *contrapunctus.Pause:
				closePending()
				rest += length
			}
		}
	}
	closePending()
	tr.Close(0)
	return tr, nil
}

// quarterBPM converts the tune's tempo field to quarter notes per
// minute, e.g. "1/4=200" to 200.
func quarterBPM(t *contrapunctus.Tune) (float64, error) {
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
	return float64(bpm) * 4 * float64(num) / float64(den), nil
}
