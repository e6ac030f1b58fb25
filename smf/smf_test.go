package smf_test

import (
	"bytes"
	"testing"

	"github.com/vkleino/contrapunctus"
	"github.com/vkleino/contrapunctus/smf"
)

const twoVoices = `X: 1
M: 4/4
Q: 1/4=200
L: 1/8
V:CantusFirmus name="Cantus Firmus"
V:Contrapunctus name=Contrapunctus
K: DDor
[V:CantusFirmus] D8 |E2 F2 G4 |D8 |
[V:Contrapunctus] z4 A4 |c4 c4- |c8 |`

func TestWrite(t *testing.T) {
	tune, err := contrapunctus.ParseTuneString(twoVoices)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := smf.Write(&buf, tune); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	if len(data) < 14 || string(data[:4]) != "MThd" {
		t.Fatalf("not an SMF: % x", data[:min(len(data), 8)])
	}
	if format := int(data[8])<<8 | int(data[9]); format != 1 {
		t.Errorf("format %d, expected 1", format)
	}
	// One meta track plus one track per voice.
	if tracks := int(data[10])<<8 | int(data[11]); tracks != 3 {
		t.Errorf("%d tracks, expected 3", tracks)
	}
	if !bytes.Contains(data, []byte("Cantus Firmus")) {
		t.Errorf("voice name missing from track meta")
	}
}

func TestWriteErrors(t *testing.T) {
	tune, err := contrapunctus.ParseTuneString(twoVoices)
	if err != nil {
		t.Fatal(err)
	}
	tune.SetField("Q", "fast")
	if err := smf.Write(&bytes.Buffer{}, tune); err == nil {
		t.Errorf("bad tempo expected to fail")
	}
	tune.SetField("Q", "1/4=200")
	tune.Voices[0].Properties = append(tune.Voices[0].Properties,
		contrapunctus.Property{Name: "transpose", Value: "120"})
	if err := smf.Write(&bytes.Buffer{}, tune); err == nil {
		t.Errorf("out-of-range note expected to fail")
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
