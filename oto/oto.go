// Package oto plays rendered audio through the system audio device.
package oto

import (
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/vkleino/contrapunctus"
)

type OtoContext oto.Context

type OtoOutput struct {
	player    *oto.Player
	pipe      *io.PipeWriter
	tmpBuffer []byte
}

// NewContext initializes the audio device for 44100 Hz stereo output.
func NewContext() (*OtoContext, error) {
	op := &oto.NewContextOptions{
		SampleRate:   44100,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}
	context, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return (*OtoContext)(context), nil
}

// Output starts a player pulling from a pipe; WriteAudio pushes into the
// pipe, so writes block once the device buffer is full.
func (c *OtoContext) Output() contrapunctus.AudioSink {
	pr, pw := io.Pipe()
	player := (*oto.Context)(c).NewPlayer(pr)
	player.Play()
	return &OtoOutput{player: player, pipe: pw}
}

// Close is a no-op; oto contexts stay open for the process lifetime.
func (c *OtoContext) Close() error { return nil }

func (o *OtoOutput) WriteAudio(floatBuffer []float32) error {
	// we reuse the old capacity tmpBuffer by setting its length to zero. then,
	// we save the tmpBuffer so we can reuse it next time
	o.tmpBuffer = FloatBufferTo16BitLE(floatBuffer, o.tmpBuffer[:0])
	if _, err := o.pipe.Write(o.tmpBuffer); err != nil {
		return fmt.Errorf("cannot write to player: %w", err)
	}
	return nil
}

// Close drains the remaining buffered audio before closing the player.
func (o *OtoOutput) Close() error {
	if err := o.pipe.Close(); err != nil {
		return fmt.Errorf("cannot close pipe: %w", err)
	}
	for o.player.IsPlaying() && o.player.BufferedSize() > 0 {
		time.Sleep(10 * time.Millisecond)
	}
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}
