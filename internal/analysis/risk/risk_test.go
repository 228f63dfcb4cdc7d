package risk

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() *Aggregator {
	return New("sadness", "anger", "fear")
}

func TestAssessNonNegativeLabelWithoutHistoryIsLow(t *testing.T) {
	agg := fixture()
	for _, label := range []string{"joy", "neutral", "surprise", "", "unknown-label"} {
		for _, confidence := range []float64{0, 0.5, 1} {
			assert.Equal(t, Low, agg.Assess(label, confidence, nil), "label=%q confidence=%v", label, confidence)
		}
	}
}

func TestScoreNegativeLabelEmptyHistory(t *testing.T) {
	agg := fixture()

	assert.InDelta(t, 45.0, agg.Score("anger", 0.9, nil), 1e-9)
	assert.Equal(t, Moderate, agg.Assess("anger", 0.9, nil))

	assert.InDelta(t, 25.0, agg.Score("anger", 0.5, nil), 1e-9)
	assert.Equal(t, Low, agg.Assess("anger", 0.5, []string{}))
}

func TestAssessEndToEndScenarios(t *testing.T) {
	agg := fixture()
	history := []string{"sadness", "anger"}

	assert.InDelta(t, 60.0, agg.Score("sadness", 0.8, history), 1e-9)
	assert.Equal(t, Moderate, agg.Assess("sadness", 0.8, history))

	assert.InDelta(t, 20.0, agg.Score("joy", 0.95, history), 1e-9)
	assert.Equal(t, Low, agg.Assess("joy", 0.95, history))
}

func TestLevelForBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  Level
	}{
		{70, High},
		{69.999, Moderate},
		{40, Moderate},
		{39.999, Low},
		{0, Low},
		{250, High},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LevelFor(tc.score), "score=%v", tc.score)
	}
}

func TestScoreHasNoUpperClamp(t *testing.T) {
	agg := fixture()
	history := []string{"fear", "fear", "fear", "fear", "fear", "fear", "fear", "fear"}

	assert.InDelta(t, 130.0, agg.Score("fear", 1, history), 1e-9)
	assert.Equal(t, High, agg.Assess("fear", 1, history))
}

func TestAssessIsMonotonicInNegativeHistory(t *testing.T) {
	agg := fixture()
	rank := map[Level]int{Low: 0, Moderate: 1, High: 2}

	for _, label := range []string{"sadness", "joy"} {
		history := []string{"joy"}
		prev := agg.Assess(label, 0.6, history)
		for i := 0; i < 10; i++ {
			history = append(history, "anger")
			next := agg.Assess(label, 0.6, history)
			require.GreaterOrEqual(t, rank[next], rank[prev], "label=%s step=%d", label, i)
			prev = next
		}
		assert.Equal(t, High, prev)
	}
}

func TestConfidenceIsClamped(t *testing.T) {
	agg := fixture()

	assert.InDelta(t, 50.0, agg.Score("sadness", 7, nil), 1e-9)
	assert.InDelta(t, 0.0, agg.Score("sadness", -3, nil), 1e-9)
	assert.InDelta(t, 0.0, agg.Score("sadness", math.NaN(), nil), 1e-9)
}

func TestValidateConfidence(t *testing.T) {
	require.NoError(t, ValidateConfidence(0))
	require.NoError(t, ValidateConfidence(1))
	require.ErrorIs(t, ValidateConfidence(1.01), ErrInvalidConfidence)
	require.ErrorIs(t, ValidateConfidence(-0.01), ErrInvalidConfidence)
	require.ErrorIs(t, ValidateConfidence(math.NaN()), ErrInvalidConfidence)
}

func TestLabelsMatchCaseInsensitively(t *testing.T) {
	agg := New("NEGATIVE")

	assert.True(t, agg.IsNegative("negative"))
	assert.True(t, agg.IsNegative(" Negative "))
	assert.False(t, agg.IsNegative("POSITIVE"))
}

func TestNewWithoutLabelsUsesDefaults(t *testing.T) {
	agg := New()
	for _, label := range DefaultNegativeEmotions {
		assert.True(t, agg.IsNegative(label), label)
	}
	assert.ElementsMatch(t, DefaultNegativeEmotions, agg.NegativeLabels())
}

func TestParseLevel(t *testing.T) {
	level, ok := ParseLevel(" HIGH ")
	require.True(t, ok)
	assert.Equal(t, High, level)

	_, ok = ParseLevel("severe")
	assert.False(t, ok)
}

func TestAssessConcurrentUse(t *testing.T) {
	agg := fixture()
	history := []string{"sadness", "anger"}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, Moderate, agg.Assess("sadness", 0.8, history))
		}()
	}
	wg.Wait()
}
