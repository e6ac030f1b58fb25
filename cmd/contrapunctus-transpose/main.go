package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vkleino/contrapunctus"
	"github.com/vkleino/contrapunctus/version"
)

func main() {
	steps := flag.Int("t", 0, "Transpose by this many halftones; the key changes along the circle of fifths.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	in := os.Stdin
	if flag.NArg() > 0 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not open %v: %v\n", flag.Arg(0), err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}
	tune, err := contrapunctus.ParseTune(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not parse tune: %v\n", err)
		os.Exit(1)
	}
	transposed, err := tune.Transposed(*steps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not transpose: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(transposed.AsABC())
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Transposes an abc tune by halftone steps.\nUsage: %s [flags] [path]\n", os.Args[0])
	flag.PrintDefaults()
}
