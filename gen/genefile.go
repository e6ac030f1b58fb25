package gen

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Gene logs interleave the evolving gene vectors with other output; a
// vector is printed as consecutive lines of the form
//
//	#   0: [3, 5, 0, 7, 42, ...]
//	#  10: [1, 2, ...]
//
// where the number before the colon is the index of the line's first
// gene. Any other line ends the current vector.

const genesPerLine = 10

// ParseGenes reads every gene vector from a log.
func ParseGenes(r io.Reader) ([][]int, error) {
	var all [][]int
	var cur []int
	flush := func() {
		if cur != nil {
			all = append(all, cur)
			cur = nil
		}
	}
	sc := bufio.NewScanner(r)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())
		idx, genes, ok, err := parseGeneLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if !ok {
			flush()
			continue
		}
		if idx == 0 {
			flush()
		} else if idx != len(cur) {
			return nil, fmt.Errorf("line %d: gene index %d does not continue at %d", lineNo, idx, len(cur))
		}
		cur = append(cur, genes...)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()
	if len(all) == 0 {
		return nil, fmt.Errorf("no genes found")
	}
	return all, nil
}

// parseGeneLine parses one "#idx: [a, b, ...]" line; ok is false for
// lines that are not gene lines at all.
func parseGeneLine(line string) (idx int, genes []int, ok bool, err error) {
	if !strings.HasPrefix(line, "#") {
		return 0, nil, false, nil
	}
	rest := strings.TrimSpace(line[1:])
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return 0, nil, false, nil
	}
	idx, err = strconv.Atoi(strings.TrimSpace(rest[:colon]))
	if err != nil {
		return 0, nil, false, nil
	}
	vec := strings.TrimSpace(rest[colon+1:])
	if !strings.HasPrefix(vec, "[") || !strings.HasSuffix(vec, "]") {
		return 0, nil, false, fmt.Errorf("malformed gene line %q", line)
	}
	for _, field := range strings.Split(vec[1:len(vec)-1], ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		g, err := strconv.Atoi(field)
		if err != nil {
			return 0, nil, false, fmt.Errorf("bad gene value %q", field)
		}
		genes = append(genes, g)
	}
	return idx, genes, true, nil
}

// WriteGenes prints a gene vector in the log format ParseGenes reads.
func WriteGenes(w io.Writer, genes []int) error {
	for off := 0; off < len(genes); off += genesPerLine {
		end := off + genesPerLine
		if end > len(genes) {
			end = len(genes)
		}
		fields := make([]string, 0, genesPerLine)
		for _, g := range genes[off:end] {
			fields = append(fields, strconv.Itoa(g))
		}
		if _, err := fmt.Fprintf(w, "#%4d: [%s]\n", off, strings.Join(fields, ", ")); err != nil {
			return err
		}
	}
	return nil
}

// GuessTuneLength derives the tune length back from a gene vector's
// size. Without a given cantus firmus a tune of length l takes l-3
// cantus firmus genes plus 11 per counterpoint bar; with one, only the
// counterpoint genes remain.
func GuessTuneLength(nGenes int, cantusFirmusGiven bool) (int, error) {
	if cantusFirmusGiven {
		if nGenes%genesPerBar != 0 {
			return 0, fmt.Errorf("%d genes do not fit any tune length", nGenes)
		}
		return nGenes/genesPerBar + 2, nil
	}
	total := nGenes + 3 + 2*genesPerBar
	if total%(genesPerBar+1) != 0 {
		return 0, fmt.Errorf("%d genes do not fit any tune length", nGenes)
	}
	return total / (genesPerBar + 1), nil
}
