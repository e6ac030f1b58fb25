package contrapunctus

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseTune reads a tune in the abc subset written by Tune.AsABC: the
// header lines up to and including K:, then one body line per voice of the
// form "[V:ID] ..." with bars separated by "|". Repeated body lines for
// the same voice append bars.
func ParseTune(r io.Reader) (*Tune, error) {
	t := &Tune{Number: 1, Unit: 8}
	scanner := bufio.NewScanner(r)
	inHeader := true
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimRight(scanner.Text(), " \t")
		if line == "" || strings.HasPrefix(line, "%abc") {
			continue
		}
		var err error
		if inHeader {
			inHeader, err = t.parseHeaderLine(line)
		} else {
			err = t.parseBodyLine(line)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if inHeader {
		return nil, fmt.Errorf("no K: line found")
	}
	return t, nil
}

// ParseTuneString is ParseTune on a string.
func ParseTuneString(s string) (*Tune, error) {
	return ParseTune(strings.NewReader(s))
}

// parseHeaderLine handles one header line; the returned bool stays true
// until the K: line ends the header.
func (t *Tune) parseHeaderLine(line string) (bool, error) {
	if strings.HasPrefix(line, "%%") {
		name, value, _ := strings.Cut(line[2:], " ")
		t.Fields = append(t.Fields, Property{name, strings.TrimSpace(value)})
		return true, nil
	}
	if len(line) < 2 || line[1] != ':' {
		return true, fmt.Errorf("invalid header line %q", line)
	}
	value := strings.TrimSpace(line[2:])
	switch line[0] {
	case 'X':
		n, err := strconv.Atoi(value)
		if err != nil {
			return true, fmt.Errorf("invalid tune number %q", value)
		}
		t.Number = n
	case 'T':
		t.Title = value
	case 'M':
		m, err := parseMeter(value)
		if err != nil {
			return true, err
		}
		t.Meter = m
	case 'L':
		unit, ok := strings.CutPrefix(value, "1/")
		if !ok {
			return true, fmt.Errorf("invalid unit length %q", value)
		}
		n, err := strconv.Atoi(unit)
		if err != nil {
			return true, fmt.Errorf("invalid unit length %q", value)
		}
		t.Unit = n
	case 'V':
		v, err := parseVoiceHeader(value)
		if err != nil {
			return true, err
		}
		t.Add(v)
	case 'K':
		k, err := ParseKey(value)
		if err != nil {
			return true, err
		}
		t.Key = k
		return false, nil
	default:
		t.Fields = append(t.Fields, Property{string(line[0]), value})
	}
	return true, nil
}

func parseMeter(s string) (Meter, error) {
	num, den, ok := strings.Cut(s, "/")
	if ok {
		n, err1 := strconv.Atoi(num)
		d, err2 := strconv.Atoi(den)
		if err1 == nil && err2 == nil {
			return Meter{n, d}, nil
		}
	}
	return Meter{}, fmt.Errorf("invalid meter %q", s)
}

// parseVoiceHeader parses the part after "V:": the voice ID followed by
// key=value properties, values optionally in double quotes.
func parseVoiceHeader(s string) (*Voice, error) {
	fields, err := splitQuoted(s)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty voice header")
	}
	v := NewVoice(fields[0])
	for _, f := range fields[1:] {
		name, value, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid voice property %q", f)
		}
		v.Properties = append(v.Properties, Property{name, strings.Trim(value, `"`)})
	}
	return v, nil
}

// splitQuoted splits on spaces but keeps double-quoted spans together.
func splitQuoted(s string) ([]string, error) {
	var fields []string
	var cur strings.Builder
	quoted := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			quoted = !quoted
			cur.WriteByte(c)
		case c == ' ' && !quoted:
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteByte(c)
		}
	}
	if quoted {
		return nil, fmt.Errorf("unterminated quote in %q", s)
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields, nil
}

func (t *Tune) parseBodyLine(line string) error {
	rest, ok := strings.CutPrefix(line, "[V:")
	if !ok {
		return fmt.Errorf("voice body must start with [V:ID]: %q", line)
	}
	id, body, ok := strings.Cut(rest, "]")
	if !ok {
		return fmt.Errorf("unterminated voice marker in %q", line)
	}
	v := t.Voice(id)
	if v == nil {
		v = NewVoice(id)
		t.Add(v)
	}
	barlen := t.Meter.BarLength(t.Unit)
	for _, seg := range strings.Split(body, "|") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		bar := NewBar(barlen, t.Unit)
		if err := parseBarInto(bar, seg, t.Unit, t.Key); err != nil {
			return err
		}
		if err := v.Add(bar); err != nil {
			return err
		}
	}
	return nil
}

// parseBarInto scans one bar segment of abc tokens into the bar. Tokens
// may be separated by spaces or directly adjacent (as in "F1G1").
func parseBarInto(bar *Bar, seg string, unit int, key Key) error {
	i := 0
	for i < len(seg) {
		if seg[i] == ' ' {
			i++
			continue
		}
		obj, n, err := parseToken(seg[i:], unit, key)
		if err != nil {
			return err
		}
		if err := bar.Add(obj); err != nil {
			return err
		}
		i += n
	}
	return nil
}

// parseToken parses a single note or rest token at the start of s and
// returns the number of bytes consumed.
func parseToken(s string, unit int, key Key) (BarObject, int, error) {
	i := 0
	if s[i] == 'z' {
		i++
		dur, n := parseDigits(s[i:])
		return NewPause(dur, unit), i + n, nil
	}
	mark := byte(0)
	if s[i] == '^' || s[i] == '_' || s[i] == '=' {
		mark = s[i]
		i++
	}
	if i >= len(s) || !isNoteLetter(s[i]) {
		return nil, 0, fmt.Errorf("invalid note token %q", s)
	}
	letter := s[i]
	i++
	name := string(letter)
	switch mark {
	case 0:
		// No explicit accidental: the key signature applies.
		if km := key.accidentalFor(letter); km != 0 {
			name = string(km) + name
		}
	case '=':
	default:
		name = string(mark) + name
	}
	for i < len(s) && (s[i] == ',' || s[i] == '\'') {
		name += string(s[i])
		i++
	}
	ht, err := ParseHalftone(name)
	if err != nil {
		return nil, 0, err
	}
	dur, n := parseDigits(s[i:])
	i += n
	tone := NewTone(ht, dur, unit)
	if i < len(s) && s[i] == '-' {
		tone.Bind = true
		i++
	}
	return tone, i, nil
}

func parseDigits(s string) (value, n int) {
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		value = value*10 + int(s[n]-'0')
		n++
	}
	if n == 0 {
		value = 1
	}
	return value, n
}

func isNoteLetter(c byte) bool {
	return c >= 'A' && c <= 'G' || c >= 'a' && c <= 'g'
}
