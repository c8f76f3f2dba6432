package governor

import (
	"fmt"
	"math/rand/v2"

	"github.com/kdblock/panel/internal/models"
)

// Generator produces single-use arithmetic challenges for the login form.
type Generator struct {
	rnd *rand.Rand
}

// NewGenerator returns a generator with a non-deterministic seed.
func NewGenerator() *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewGeneratorWithSource returns a generator driven by the given source.
// Used by tests for deterministic output.
func NewGeneratorWithSource(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

// Generate picks two operands in [1,10] and an operator from {+, -, ×}.
// Subtraction orders the operands larger-first so the answer is never
// negative. The rendered question always evaluates to Answer.
func (g *Generator) Generate() models.Challenge {
	a := g.rnd.IntN(10) + 1
	b := g.rnd.IntN(10) + 1

	switch g.rnd.IntN(3) {
	case 0:
		return models.Challenge{
			Question: fmt.Sprintf("%d + %d = ?", a, b),
			Answer:   a + b,
		}
	case 1:
		larger, smaller := a, b
		if smaller > larger {
			larger, smaller = smaller, larger
		}
		return models.Challenge{
			Question: fmt.Sprintf("%d - %d = ?", larger, smaller),
			Answer:   larger - smaller,
		}
	default:
		return models.Challenge{
			Question: fmt.Sprintf("%d × %d = ?", a, b),
			Answer:   a * b,
		}
	}
}
