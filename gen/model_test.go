package gen_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/vkleino/contrapunctus"
	"github.com/vkleino/contrapunctus/gen"
)

const tuneHeader = `X: 1
M: 4/4
Q: 1/4=200
%%score (Contrapunctus) (CantusFirmus)
L: 1/8
V:CantusFirmus name="Cantus Firmus"
V:Contrapunctus name=Contrapunctus
K: DDor
`

// The decode cases share one cantus firmus gene (degree 5 of the
// hypodorian mode, F) and vary the counterpoint rhythm. Gene values 42
// mark slots the rhythm leaves unused; they must never be read.
var decodeCases = []struct {
	name  string
	genes []int
	abc   string
}{
	{
		"whole notes",
		[]int{5, 3, 3, 42, 42, 42, 42, 42, 42, 42, 42, 42, 2, 4, 42, 42, 42, 2, 5, 42, 42, 42, 42},
		"[V:CantusFirmus] D8 |F8 |E8 |D8 |\n[V:Contrapunctus] G8 |A4 B4 |^c8 |d8 |",
	},
	{
		"halves and quarters",
		[]int{5, 2, 3, 42, 42, 42, 1, 4, 42, 1, 2, 42, 2, 3, 42, 42, 42, 1, 4, 42, 0, 2, 3},
		"[V:CantusFirmus] D8 |F8 |E8 |D8 |\n[V:Contrapunctus] G4 A2 F2 |G4 A2 F1 G1 |^c8 |d8 |",
	},
	{
		"eighths",
		[]int{5, 1, 3, 1, 4, 42, 1, 4, 42, 0, 2, 2, 1, 3, 0, 4, 4, 1, 3, 42, 0, 4, 4},
		"[V:CantusFirmus] D8 |F8 |E8 |D8 |\n[V:Contrapunctus] G2 A2 A2 F1 F1 |G2 A1 A1 G2 A1 A1 |^c8 |d8 |",
	},
}

func newModel(t *testing.T) *gen.Model {
	t.Helper()
	m, err := gen.NewModel(4, "dorian", nil)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestModelBounds(t *testing.T) {
	m := newModel(t)
	if m.Genes() != 23 {
		t.Errorf("genes = %d, expected 1 + 2*11", m.Genes())
	}
	bounds := m.Bounds()
	if bounds[0] != (gen.Bound{Min: 0, Max: 7}) {
		t.Errorf("cantus firmus gene bounds = %v", bounds[0])
	}
	if bounds[1] != (gen.Bound{Min: 1, Max: 3}) {
		t.Errorf("heavy duration bounds = %v", bounds[1])
	}
	if _, err := gen.NewModel(3, "dorian", nil); err == nil {
		t.Errorf("tune length 3 expected to fail")
	}
	if _, err := gen.NewModel(8, "ionian", nil); err == nil {
		t.Errorf("unknown mode expected to fail")
	}
}

func TestUses(t *testing.T) {
	m := newModel(t)
	// Half + quarters rhythm: slots 2-4 and 7 of each group stay dark;
	// the second group ends on eighths, so its slot 10 is live.
	genes := decodeCases[1].genes
	unused := map[int]bool{}
	for _, rel := range []int{2, 3, 4, 7, 10} {
		unused[1+rel] = true
	}
	for _, rel := range []int{2, 3, 4, 7} {
		unused[12+rel] = true
	}
	for idx := range genes {
		if got := m.Uses(genes, idx); got == unused[idx] {
			t.Errorf("Uses(%d) = %v", idx, got)
		}
	}
	// Whole-note bars read only their first two genes.
	whole := decodeCases[0].genes
	for _, idx := range []int{3, 10, 14, 22} {
		if m.Uses(whole, idx) {
			t.Errorf("whole-note bar uses gene %d", idx)
		}
	}
}

func TestDecode(t *testing.T) {
	m := newModel(t)
	for _, c := range decodeCases {
		tune, err := m.Decode(c.genes, -1)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		want := tuneHeader + c.abc
		if got := tune.AsABC(); got != want {
			t.Errorf("%s:\n%s\nexpected:\n%s", c.name, got, want)
		}
	}
}

func TestDecodePartial(t *testing.T) {
	m := newModel(t)
	genes := decodeCases[0].genes
	// Up to gene 0 only the cantus firmus is decided.
	tune, err := m.Decode(genes, 0)
	if err != nil {
		t.Fatal(err)
	}
	cp := tune.Voice(contrapunctus.ContrapunctusID)
	if len(cp.Bars) != 1 || len(cp.Bars[0].Objects) != 0 {
		t.Errorf("partial decode at 0: counterpoint bars %d", len(cp.Bars))
	}
	if cf := tune.Voice(contrapunctus.CantusFirmusID); len(cf.Bars) != 4 {
		t.Errorf("partial decode at 0: cantus firmus bars %d, expected 4", len(cf.Bars))
	}
	// Gene 2 decides the first counterpoint bar.
	tune, err = m.Decode(genes, 2)
	if err != nil {
		t.Fatal(err)
	}
	cp = tune.Voice(contrapunctus.ContrapunctusID)
	if len(cp.Bars) != 2 || len(cp.Bars[0].Objects) != 1 {
		t.Errorf("partial decode at 2: bars %d", len(cp.Bars))
	}
}

func TestDecodeRejectsBadGenes(t *testing.T) {
	m := newModel(t)
	if _, err := m.Decode([]int{5, 3, 3}, -1); err == nil {
		t.Errorf("short vector expected to fail")
	}
	bad := append([]int(nil), decodeCases[0].genes...)
	bad[1] = 42 // used duration slot
	if _, err := m.Decode(bad, -1); err == nil {
		t.Errorf("invalid duration gene expected to fail")
	}
	bad = append([]int(nil), decodeCases[0].genes...)
	bad[0] = 9 // cantus firmus degree out of range
	if _, err := m.Decode(bad, -1); err == nil {
		t.Errorf("invalid pitch gene expected to fail")
	}
}

func TestEncode(t *testing.T) {
	m := newModel(t)
	for _, c := range decodeCases {
		tune, err := contrapunctus.ParseTuneString(tuneHeader + c.abc)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		genes, err := m.Encode(tune)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		// Unused slots encode as their lower bound; everything else must
		// round-trip.
		back, err := m.Decode(genes, -1)
		if err != nil {
			t.Fatalf("%s: decode after encode: %v", c.name, err)
		}
		if got, want := back.AsABC(), tuneHeader+c.abc; got != want {
			t.Errorf("%s:\n%s\nexpected:\n%s", c.name, got, want)
		}
	}
	expected := []int{5, 3, 3, 0, 0, 0, 1, 0, 0, 0, 0, 0, 2, 4, 0, 0, 0, 2, 5, 0, 0, 0, 0}
	tune, err := contrapunctus.ParseTuneString(tuneHeader + decodeCases[0].abc)
	if err != nil {
		t.Fatal(err)
	}
	genes, err := m.Encode(tune)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(genes, expected) {
		t.Errorf("encoded genes %v, expected %v", genes, expected)
	}
}

func TestGivenCantusFirmus(t *testing.T) {
	tune, err := contrapunctus.ParseTuneString(tuneHeader + decodeCases[0].abc)
	if err != nil {
		t.Fatal(err)
	}
	cf := tune.Voice(contrapunctus.CantusFirmusID).Copy()
	m, err := gen.NewModel(0, "dorian", cf)
	if err != nil {
		t.Fatal(err)
	}
	if m.TuneLength != 4 || m.CFLength() != 0 || m.Genes() != 22 {
		t.Errorf("length %d, cf genes %d, genes %d", m.TuneLength, m.CFLength(), m.Genes())
	}
	decoded, err := m.Decode(decodeCases[0].genes[1:], -1)
	if err != nil {
		t.Fatal(err)
	}
	if got := decoded.Voice(contrapunctus.CantusFirmusID).AsABC(decoded.Key); got != "[V:CantusFirmus] D8 |F8 |E8 |D8 |" {
		t.Errorf("given cantus firmus not copied: %q", got)
	}
}

func TestGuessTuneLength(t *testing.T) {
	if l, err := gen.GuessTuneLength(23, false); err != nil || l != 4 {
		t.Errorf("GuessTuneLength(23) = %d, %v", l, err)
	}
	if l, err := gen.GuessTuneLength(22, true); err != nil || l != 4 {
		t.Errorf("GuessTuneLength(22, cf) = %d, %v", l, err)
	}
	if l, err := gen.GuessTuneLength(119, false); err != nil || l != 12 {
		t.Errorf("GuessTuneLength(119) = %d, %v", l, err)
	}
	if _, err := gen.GuessTuneLength(24, false); err == nil {
		t.Errorf("impossible gene count expected to fail")
	}
}

func TestParseGenes(t *testing.T) {
	log := `starting up
#   0: [5, 3, 3, 42, 42, 42, 42, 42, 42, 42]
#  10: [42, 42, 2, 4, 42, 42, 42, 2, 5, 42]
#  20: [42, 42, 42]
The evaluation was 1.0
#   0: [1, 3, 1, 4, 42, 1, 4, 42, 0, 2]
#  10: [2, 1, 3, 0, 4, 4, 1, 3, 42, 0]
#  20: [4, 4, 5]
done
`
	genes, err := gen.ParseGenes(strings.NewReader(log))
	if err != nil {
		t.Fatal(err)
	}
	if len(genes) != 2 {
		t.Fatalf("%d gene vectors, expected 2", len(genes))
	}
	if !reflect.DeepEqual(genes[0], decodeCases[0].genes) {
		t.Errorf("first vector %v, expected %v", genes[0], decodeCases[0].genes)
	}
	if len(genes[1]) != 23 || genes[1][22] != 5 {
		t.Errorf("second vector %v", genes[1])
	}
	if _, err := gen.ParseGenes(strings.NewReader("#   0: [1, 2]\n#   5: [3]\n")); err == nil {
		t.Errorf("discontinuous indices expected to fail")
	}
	if _, err := gen.ParseGenes(strings.NewReader("nothing here\n")); err == nil {
		t.Errorf("no genes expected to fail")
	}
}

func TestWriteGenesRoundtrip(t *testing.T) {
	var sb strings.Builder
	if err := gen.WriteGenes(&sb, decodeCases[1].genes); err != nil {
		t.Fatal(err)
	}
	genes, err := gen.ParseGenes(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatal(err)
	}
	if len(genes) != 1 || !reflect.DeepEqual(genes[0], decodeCases[1].genes) {
		t.Errorf("roundtrip %v, expected %v", genes, decodeCases[1].genes)
	}
}
