package governor_test

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"

	"github.com/kdblock/panel/internal/governor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evalQuestion parses a rendered question like "7 × 4 = ?" and evaluates it.
func evalQuestion(t *testing.T, question string) int {
	t.Helper()

	trimmed := strings.TrimSuffix(question, " = ?")
	require.NotEqual(t, question, trimmed, "question %q missing '= ?' suffix", question)

	parts := strings.Fields(trimmed)
	require.Len(t, parts, 3, "question %q should be 'a op b'", question)

	a, err := strconv.Atoi(parts[0])
	require.NoError(t, err)
	b, err := strconv.Atoi(parts[2])
	require.NoError(t, err)

	switch parts[1] {
	case "+":
		return a + b
	case "-":
		return a - b
	case "×":
		return a * b
	default:
		t.Fatalf("unexpected operator %q in %q", parts[1], question)
		return 0
	}
}

func TestGeneratorAnswerMatchesQuestion(t *testing.T) {
	gen := governor.NewGeneratorWithSource(rand.NewPCG(7, 11))

	for i := 0; i < 500; i++ {
		ch := gen.Generate()
		assert.Equal(t, evalQuestion(t, ch.Question), ch.Answer,
			"answer must equal the literal evaluation of %q", ch.Question)
	}
}

func TestGeneratorSubtractionNeverNegative(t *testing.T) {
	gen := governor.NewGeneratorWithSource(rand.NewPCG(3, 5))

	sawSubtraction := false
	for i := 0; i < 500; i++ {
		ch := gen.Generate()
		if strings.Contains(ch.Question, " - ") {
			sawSubtraction = true
			assert.GreaterOrEqual(t, ch.Answer, 0, "subtraction result for %q", ch.Question)
		}
	}
	assert.True(t, sawSubtraction, "expected at least one subtraction in 500 draws")
}

func TestGeneratorOperandsInRange(t *testing.T) {
	gen := governor.NewGeneratorWithSource(rand.NewPCG(1, 2))

	for i := 0; i < 500; i++ {
		ch := gen.Generate()
		parts := strings.Fields(strings.TrimSuffix(ch.Question, " = ?"))
		require.Len(t, parts, 3)
		for _, idx := range []int{0, 2} {
			n, err := strconv.Atoi(parts[idx])
			require.NoError(t, err)
			assert.GreaterOrEqual(t, n, 1, ch.Question)
			assert.LessOrEqual(t, n, 10, ch.Question)
		}
	}
}

func TestGeneratorCoversAllOperators(t *testing.T) {
	gen := governor.NewGeneratorWithSource(rand.NewPCG(42, 43))

	seen := map[string]bool{}
	for i := 0; i < 300; i++ {
		ch := gen.Generate()
		for _, op := range []string{"+", "-", "×"} {
			if strings.Contains(ch.Question, fmt.Sprintf(" %s ", op)) {
				seen[op] = true
			}
		}
	}
	assert.Len(t, seen, 3, "all three operators should appear")
}
