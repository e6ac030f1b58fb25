package gen

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/MaxHalford/eaopt"
	"github.com/vkleino/contrapunctus"
	"github.com/vkleino/contrapunctus/checks"
)

// Search runs either a genetic or a depth-first search for a feasible
// counterpoint over a gene model.
type Search struct {
	Model *Model
	Rules *checks.RuleSet

	// Seed seeds the search's RNG so runs are reproducible.
	Seed int64
	// PopSize and Generations bound the genetic search; zero picks the
	// defaults.
	PopSize     uint
	Generations uint
	// MaxSteps bounds the depth-first search; zero picks the default.
	MaxSteps int

	// Verbose > 0 logs search progress to Log.
	Verbose int
	Log     io.Writer
}

const (
	defaultPopSize     = 500
	defaultGenerations = 500
	defaultMaxSteps    = 2_000_000
)

// Result is a finished search: the best gene vector found, its decoded
// tune and its evaluation.
type Result struct {
	Genes []int
	Tune  *contrapunctus.Tune
	Eval  *checks.Evaluation
}

// genome adapts a gene vector to eaopt's Genome. Evaluation decodes the
// vector and scores the tune; rules are shared across the population,
// which is fine as long as evaluation stays sequential.
type genome struct {
	genes []int
	model *Model
	rules *checks.RuleSet
}

func (g *genome) Evaluate() (float64, error) {
	tune, err := g.model.Decode(g.genes, -1)
	if err != nil {
		return 0, err
	}
	return g.rules.Evaluate(tune).Fitness(), nil
}

func (g *genome) Mutate(rng *rand.Rand) {
	bounds := g.model.Bounds()
	p := 1 / float64(len(g.genes))
	for i, b := range bounds {
		if rng.Float64() < p {
			g.genes[i] = b.Min + rng.Intn(b.Max-b.Min+1)
		}
	}
}

func (g *genome) Crossover(other eaopt.Genome, rng *rand.Rand) {
	eaopt.CrossGNXInt(g.genes, other.(*genome).genes, 2, rng)
}

func (g *genome) Clone() eaopt.Genome {
	return &genome{genes: append([]int(nil), g.genes...), model: g.model, rules: g.rules}
}

func (s *Search) random(rng *rand.Rand) eaopt.Genome {
	bounds := s.Model.Bounds()
	genes := make([]int, len(bounds))
	for i, b := range bounds {
		genes[i] = b.Min + rng.Intn(b.Max-b.Min+1)
	}
	return &genome{genes: genes, model: s.Model, rules: s.Rules}
}

func (s *Search) logf(level int, format string, args ...interface{}) {
	if s.Verbose >= level && s.Log != nil {
		fmt.Fprintf(s.Log, format+"\n", args...)
	}
}

// GA evolves a population of gene vectors, minimizing fitness, and stops
// early once a feasible tune appears.
func (s *Search) GA() (*Result, error) {
	cfg := eaopt.NewDefaultGAConfig()
	cfg.PopSize = s.PopSize
	if cfg.PopSize == 0 {
		cfg.PopSize = defaultPopSize
	}
	cfg.NGenerations = s.Generations
	if cfg.NGenerations == 0 {
		cfg.NGenerations = defaultGenerations
	}
	cfg.RNG = rand.New(rand.NewSource(s.Seed))
	cfg.EarlyStop = func(ga *eaopt.GA) bool {
		return ga.HallOfFame[0].Fitness <= 1
	}
	cfg.Callback = func(ga *eaopt.GA) {
		s.logf(1, "generation %d: best fitness %g", ga.Generations, ga.HallOfFame[0].Fitness)
	}
	ga, err := cfg.NewGA()
	if err != nil {
		return nil, err
	}
	if err := ga.Minimize(s.random); err != nil {
		return nil, err
	}
	best := ga.HallOfFame[0].Genome.(*genome)
	return s.finish(best.genes)
}

// DepthFirst assigns genes left to right in random order per position,
// pruning every assignment whose partially decoded tune already violates
// a hard rule, and backtracks when a position runs out of candidates.
// Genes the decoded rhythm leaves unused get their lower bound and are
// never branched. It finds a feasible tune or exhausts the step budget.
func (s *Search) DepthFirst() (*Result, error) {
	bounds := s.Model.Bounds()
	genes := make([]int, len(bounds))
	for i, b := range bounds {
		genes[i] = b.Min
	}
	cand := make([][]int, len(bounds))
	rng := rand.New(rand.NewSource(s.Seed))
	maxSteps := s.MaxSteps
	if maxSteps == 0 {
		maxSteps = defaultMaxSteps
	}
	pos, steps := 0, 0
	for {
		if pos == len(bounds) {
			tune, err := s.Model.Decode(genes, -1)
			if err != nil {
				return nil, err
			}
			if s.Rules.Evaluate(tune).Feasible() {
				return s.finish(genes)
			}
			// The hard-coded cadence clashes with the chosen genes; try
			// other values for the last position.
			pos--
			continue
		}
		if steps++; steps > maxSteps {
			return nil, fmt.Errorf("no feasible tune within %d steps", maxSteps)
		}
		if cand[pos] == nil {
			b := bounds[pos]
			if !s.Model.Uses(genes, pos) {
				// A gene the decoded rhythm skips cannot change the tune;
				// branching over its alleles would only repeat the same
				// subtree.
				cand[pos] = []int{b.Min}
			} else {
				vals := make([]int, 0, b.Max-b.Min+1)
				for v := b.Min; v <= b.Max; v++ {
					vals = append(vals, v)
				}
				rng.Shuffle(len(vals), func(i, j int) { vals[i], vals[j] = vals[j], vals[i] })
				cand[pos] = vals
			}
		}
		if len(cand[pos]) == 0 {
			cand[pos] = nil
			pos--
			if pos < 0 {
				return nil, fmt.Errorf("no feasible tune exists for this model")
			}
			continue
		}
		genes[pos], cand[pos] = cand[pos][0], cand[pos][1:]
		tune, err := s.Model.Decode(genes, pos)
		if err != nil {
			return nil, err
		}
		if s.Rules.Evaluate(tune).Feasible() {
			s.logf(2, "step %d: position %d <- %d", steps, pos, genes[pos])
			pos++
		}
	}
}

// Decode builds the Result of a readily known gene vector, e.g. one read
// back from a gene log.
func (s *Search) Decode(genes []int) (*Result, error) {
	return s.finish(genes)
}

func (s *Search) finish(genes []int) (*Result, error) {
	tune, err := s.Model.Decode(genes, -1)
	if err != nil {
		return nil, err
	}
	return &Result{
		Genes: append([]int(nil), genes...),
		Tune:  tune,
		Eval:  s.Rules.Evaluate(tune),
	}, nil
}

// Best evaluates several decoded gene vectors and returns the index of
// the one with the lowest fitness.
func (s *Search) Best(geneSets [][]int) (int, error) {
	if len(geneSets) == 0 {
		return 0, fmt.Errorf("no genes to choose from")
	}
	bestIdx, bestFit := 0, 0.0
	for i, genes := range geneSets {
		tune, err := s.Model.Decode(genes, -1)
		if err != nil {
			return 0, fmt.Errorf("gene set %d: %w", i, err)
		}
		fit := s.Rules.Evaluate(tune).Fitness()
		if i == 0 || fit < bestFit {
			bestIdx, bestFit = i, fit
		}
	}
	return bestIdx, nil
}
