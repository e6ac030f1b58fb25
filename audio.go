package contrapunctus

// AudioSink accepts rendered audio: stereo interleaved float32 samples at
// 44100 Hz. Close flushes and releases the sink.
type AudioSink interface {
	WriteAudio(buffer []float32) error
	Close() error
}

// AudioContext is a factory for audio sinks, backed e.g. by a sound
// device.
type AudioContext interface {
	Output() AudioSink
	Close() error
}
