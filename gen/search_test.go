package gen_test

import (
	"strings"
	"testing"

	"github.com/vkleino/contrapunctus"
	"github.com/vkleino/contrapunctus/checks"
	"github.com/vkleino/contrapunctus/gen"
)

func TestDepthFirst(t *testing.T) {
	search := &gen.Search{
		Model:    newModel(t),
		Rules:    checks.StandardRules(),
		Seed:     1,
		MaxSteps: 200_000,
	}
	result, err := search.DepthFirst()
	if err != nil {
		t.Fatal(err)
	}
	if !result.Eval.Feasible() {
		t.Fatalf("depth first returned an infeasible tune: %+v", result.Eval.Violations)
	}
	if len(result.Genes) != 23 {
		t.Errorf("%d genes, expected 23", len(result.Genes))
	}
	for _, id := range []string{"CantusFirmus", "Contrapunctus"} {
		v := result.Tune.Voice(id)
		if v == nil || len(v.Bars) != 4 {
			t.Errorf("voice %s missing or wrong length", id)
		}
	}
}

func TestGA(t *testing.T) {
	// Default population and generation budget; the run stops early at
	// the first feasible tune.
	search := &gen.Search{
		Model: newModel(t),
		Rules: checks.StandardRules(),
		Seed:  2,
	}
	result, err := search.GA()
	if err != nil {
		t.Fatal(err)
	}
	if !result.Eval.Feasible() {
		t.Errorf("genetic search returned an infeasible tune: %+v", result.Eval.Violations)
	}
	if len(result.Genes) != 23 {
		t.Errorf("%d genes, expected 23", len(result.Genes))
	}
	if got := result.Eval.Fitness(); got != result.Eval.Badness*result.Eval.Ugliness {
		t.Errorf("fitness %g does not match badness * ugliness", got)
	}
}

func TestDepthFirstWithCantus(t *testing.T) {
	tune, err := contrapunctus.ParseTuneString(tuneHeader + decodeCases[0].abc)
	if err != nil {
		t.Fatal(err)
	}
	cf := tune.Voice(contrapunctus.CantusFirmusID).Copy()
	model, err := gen.NewModel(0, "dorian", cf)
	if err != nil {
		t.Fatal(err)
	}
	search := &gen.Search{
		Model:    model,
		Rules:    checks.StandardRules(),
		Seed:     1,
		MaxSteps: 200_000,
	}
	result, err := search.DepthFirst()
	if err != nil {
		t.Fatal(err)
	}
	if !result.Eval.Feasible() {
		t.Fatalf("infeasible counterpoint over the given cantus firmus: %+v", result.Eval.Violations)
	}
	if len(result.Genes) != 22 {
		t.Errorf("%d genes, expected 22", len(result.Genes))
	}
	got := result.Tune.Voice(contrapunctus.CantusFirmusID).AsABC(result.Tune.Key)
	if got != "[V:CantusFirmus] D8 |F8 |E8 |D8 |" {
		t.Errorf("cantus firmus not preserved: %q", got)
	}
}

func TestBest(t *testing.T) {
	model := newModel(t)
	search := &gen.Search{Model: model, Rules: checks.StandardRules()}
	// The first vector opens on a fourth, the second on an octave.
	fourth := decodeCases[0].genes
	octave := append([]int(nil), fourth...)
	octave[2] = 7
	idx, err := search.Best([][]int{fourth, octave})
	if err != nil {
		t.Fatal(err)
	}
	r0, err := search.Decode(fourth)
	if err != nil {
		t.Fatal(err)
	}
	r1, err := search.Decode(octave)
	if err != nil {
		t.Fatal(err)
	}
	want := 0
	if r1.Eval.Fitness() < r0.Eval.Fitness() {
		want = 1
	}
	if idx != want {
		t.Errorf("Best = %d, expected %d", idx, want)
	}
	if _, err := search.Best(nil); err == nil {
		t.Errorf("empty input expected to fail")
	}
}

func TestExplain(t *testing.T) {
	search := &gen.Search{Model: newModel(t), Rules: checks.StandardRules()}
	result, err := search.Decode(decodeCases[0].genes)
	if err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	if err := gen.Explain(&sb, result.Eval); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	if !strings.Contains(out, "badness:") || !strings.Contains(out, "fitness:") {
		t.Errorf("totals missing:\n%s", out)
	}
	if len(result.Eval.Violations) > 0 && !strings.Contains(out, result.Eval.Violations[0].Rule) {
		t.Errorf("violation rule missing:\n%s", out)
	}
}
