package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vkleino/contrapunctus"
	"github.com/vkleino/contrapunctus/checks"
	"github.com/vkleino/contrapunctus/gen"
	"github.com/vkleino/contrapunctus/version"
)

func main() {
	length := flag.Int("l", 8, "Tune length in bars. Ignored when a cantus firmus or a gene file determines it.")
	mode := flag.String("m", "dorian", "Church mode of the tune: dorian, phrygian, lydian or mixolydian.")
	cantus := flag.String("c", "", "Read the cantus firmus from this abc file instead of generating one.")
	verify := flag.Bool("verify", false, "Only check the cantus firmus against the melody rules and exit.")
	geneFile := flag.String("g", "", "Skip the search and decode genes from this file; either a gene log or an abc tune to re-encode.")
	best := flag.Bool("b", false, "With -g, pick the best scoring gene vector of the log instead of the last one.")
	seed := flag.Int64("r", 1, "Random seed for the search.")
	df := flag.Bool("df", false, "Search depth-first with backtracking instead of with the genetic algorithm.")
	popSize := flag.Uint("pop", 0, "Population size of the genetic algorithm.")
	generations := flag.Uint("gen", 0, "Generation limit of the genetic algorithm.")
	weights := flag.String("w", "", "Read rule weight overrides from this YAML file.")
	transpose := flag.Int("t", 0, "Transpose the resulting tune by this many halftones.")
	explain := flag.Bool("e", false, "Report every rule violation of the result to standard error.")
	yamlOut := flag.Bool("y", false, "Output the tune as YAML instead of abc.")
	genesOut := flag.String("genes", "", "Also write the gene vector to this file.")
	verbose := flag.Int("verbose", 0, "Log search progress; higher values log more.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	rules := checks.StandardRules()
	if *weights != "" {
		f, err := os.Open(*weights)
		if err != nil {
			fatalf("could not open weights file: %v", err)
		}
		err = rules.ApplyWeights(f)
		f.Close()
		if err != nil {
			fatalf("%v", err)
		}
	}
	var cf *contrapunctus.Voice
	if *cantus != "" {
		var err error
		cf, err = readCantusFirmus(*cantus)
		if err != nil {
			fatalf("could not read cantus firmus: %v", err)
		}
		if *verify {
			eval := rules.EvaluateMelody(cf)
			if err := gen.Explain(os.Stdout, eval); err != nil {
				fatalf("%v", err)
			}
			if !eval.Feasible() {
				os.Exit(1)
			}
			return
		}
	} else if *verify {
		fatalf("-verify needs a cantus firmus (-c)")
	}
	search := &gen.Search{
		Rules:       rules,
		Seed:        *seed,
		PopSize:     *popSize,
		Generations: *generations,
		Verbose:     *verbose,
		Log:         os.Stderr,
	}
	var result *gen.Result
	var err error
	if *geneFile != "" {
		result, err = fromFile(search, *geneFile, *length, *mode, cf, *best)
	} else {
		search.Model, err = gen.NewModel(*length, *mode, cf)
		if err == nil {
			if *df {
				result, err = search.DepthFirst()
			} else {
				result, err = search.GA()
			}
		}
	}
	if err != nil {
		fatalf("%v", err)
	}
	if *explain {
		if err := gen.Explain(os.Stderr, result.Eval); err != nil {
			fatalf("%v", err)
		}
	}
	if *genesOut != "" {
		f, err := os.Create(*genesOut)
		if err != nil {
			fatalf("could not create gene file: %v", err)
		}
		err = gen.WriteGenes(f, result.Genes)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			fatalf("could not write gene file: %v", err)
		}
	}
	tune := result.Tune
	if *transpose != 0 {
		if tune, err = tune.Transposed(*transpose); err != nil {
			fatalf("could not transpose: %v", err)
		}
	}
	if *yamlOut {
		out, err := yaml.Marshal(tune)
		if err != nil {
			fatalf("could not marshal tune: %v", err)
		}
		os.Stdout.Write(out)
	} else {
		fmt.Println(tune.AsABC())
	}
	if !result.Eval.Feasible() {
		fmt.Fprintln(os.Stderr, "warning: the tune violates hard rules")
		os.Exit(1)
	}
}

// fromFile rebuilds a tune from a gene log or re-encodes an abc tune,
// deriving the tune length from the input.
func fromFile(search *gen.Search, path string, length int, mode string, cf *contrapunctus.Voice, best bool) (*gen.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.Contains(string(data), "X:") {
		tune, err := contrapunctus.ParseTuneString(string(data))
		if err != nil {
			return nil, err
		}
		if cp := tune.Voice(contrapunctus.ContrapunctusID); cp != nil {
			length = len(cp.Bars)
		}
		search.Model, err = gen.NewModel(length, mode, cf)
		if err != nil {
			return nil, err
		}
		genes, err := search.Model.Encode(tune)
		if err != nil {
			return nil, err
		}
		return search.Decode(genes)
	}
	geneSets, err := gen.ParseGenes(strings.NewReader(string(data)))
	if err != nil {
		return nil, err
	}
	length, err = gen.GuessTuneLength(len(geneSets[0]), cf != nil)
	if err != nil {
		return nil, err
	}
	search.Model, err = gen.NewModel(length, mode, cf)
	if err != nil {
		return nil, err
	}
	idx := len(geneSets) - 1
	if best {
		if idx, err = search.Best(geneSets); err != nil {
			return nil, err
		}
	}
	return search.Decode(geneSets[idx])
}

// readCantusFirmus loads a one-voice abc file as the cantus firmus.
func readCantusFirmus(path string) (*contrapunctus.Voice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tune, err := contrapunctus.ParseTune(f)
	if err != nil {
		return nil, err
	}
	if v := tune.Voice(contrapunctus.CantusFirmusID); v != nil {
		return v, nil
	}
	if len(tune.Voices) == 0 {
		return nil, fmt.Errorf("no voices in %v", path)
	}
	v := tune.Voices[0].Copy()
	v.ID = contrapunctus.CantusFirmusID
	return v, nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Generates two-voice first species counterpoint.\nUsage: %s [flags]\n", os.Args[0])
	flag.PrintDefaults()
}
