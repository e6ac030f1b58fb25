package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vkleino/contrapunctus"
	"github.com/vkleino/contrapunctus/oto"
	"github.com/vkleino/contrapunctus/smf"
	"github.com/vkleino/contrapunctus/synth"
	"github.com/vkleino/contrapunctus/version"
)

func main() {
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	help := flag.Bool("h", false, "Show help.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, everything is placed in the same directory where the original tune file is.")
	play := flag.Bool("p", false, "Play the input tunes (default behaviour when no other output is defined).")
	rawOut := flag.Bool("r", false, "Output the rendered tune as .raw file. By default, saves stereo float32 buffer to disk.")
	wavOut := flag.Bool("w", false, "Output the rendered tune as .wav file. By default, saves stereo float32 buffer to disk.")
	midOut := flag.Bool("m", false, "Output the tune as a .mid standard MIDI file.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when outputting.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	if !*rawOut && !*wavOut && !*midOut {
		*play = true // if the user gives nothing to output, then the default behaviour is just to play the file
	}
	var audioContext contrapunctus.AudioContext
	if *play {
		var err error
		audioContext, err = oto.NewContext()
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not acquire oto AudioContext: %v\n", err)
			os.Exit(1)
		}
	}
	process := func(filename string) error {
		output := func(extension string, contents []byte) error {
			if *stdout {
				os.Stdout.Write(contents)
				return nil
			}
			dir, name := filepath.Split(filename)
			if *directory != "" {
				dir = *directory
			}
			name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
			f := filepath.Join(dir, name)
			if dir != "" {
				if err := os.MkdirAll(dir, os.ModePerm); err != nil {
					return fmt.Errorf("could not create output directory %v: %v", dir, err)
				}
			}
			if err := os.WriteFile(f, contents, 0644); err != nil {
				return fmt.Errorf("could not write file %v: %v", f, err)
			}
			return nil
		}
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		tune, err := parseTune(inputBytes)
		if err != nil {
			return fmt.Errorf("could not parse %v: %v", filename, err)
		}
		if *midOut {
			var buf bytes.Buffer
			if err := smf.Write(&buf, tune); err != nil {
				return fmt.Errorf("could not generate .mid file: %v", err)
			}
			if err := output(".mid", buf.Bytes()); err != nil {
				return fmt.Errorf("error outputting .mid file: %v", err)
			}
		}
		if !*play && !*rawOut && !*wavOut {
			return nil
		}
		buffer, err := synth.Render(tune)
		if err != nil {
			return fmt.Errorf("could not render tune: %v", err)
		}
		if *rawOut {
			raw, err := contrapunctus.Raw(buffer, *pcm)
			if err != nil {
				return fmt.Errorf("could not generate .raw file: %v", err)
			}
			if err := output(".raw", raw); err != nil {
				return fmt.Errorf("error outputting .raw file: %v", err)
			}
		}
		if *wavOut {
			wav, err := contrapunctus.Wav(buffer, *pcm)
			if err != nil {
				return fmt.Errorf("could not generate .wav file: %v", err)
			}
			if err := output(".wav", wav); err != nil {
				return fmt.Errorf("error outputting .wav file: %v", err)
			}
		}
		if *play {
			sink := audioContext.Output()
			if err := sink.WriteAudio(buffer); err != nil {
				sink.Close()
				return fmt.Errorf("could not play: %v", err)
			}
			if err := sink.Close(); err != nil {
				return fmt.Errorf("could not close audio output: %v", err)
			}
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if err := process(param); err != nil {
			fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

// parseTune accepts tunes in abc or YAML form.
func parseTune(data []byte) (*contrapunctus.Tune, error) {
	if bytes.Contains(data, []byte("X:")) {
		return contrapunctus.ParseTuneString(string(data))
	}
	var tune contrapunctus.Tune
	if err := yaml.Unmarshal(data, &tune); err != nil {
		return nil, err
	}
	return &tune, nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Contrapunctus command line utility for playing .abc/.yml tune files.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
