package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/unoduel/internal/randutil"
)

func countByKey(cards []Card) map[Card]int {
	counts := make(map[Card]int)
	for _, c := range cards {
		counts[c]++
	}
	return counts
}

func TestStandardComposition(t *testing.T) {
	t.Parallel()

	cards := Standard()
	require.Len(t, cards, Size)

	counts := countByKey(cards)
	for _, color := range Colors {
		assert.Equal(t, 1, counts[NewNumber(color, 0)], "%s 0", color)
		for n := 1; n <= 9; n++ {
			assert.Equal(t, 2, counts[NewNumber(color, n)], "%s %d", color, n)
		}
		for _, v := range []string{Skip, Reverse, DrawTwo} {
			assert.Equal(t, 2, counts[NewAction(color, v)], "%s %s", color, v)
		}
	}
	assert.Equal(t, 4, counts[NewWild(WildCard)])
	assert.Equal(t, 4, counts[NewWild(WildFour)])
}

func TestBuildIsPermutationOfStandard(t *testing.T) {
	t.Parallel()

	for _, seed := range []int64{1, 2, 3, 1234} {
		d := Build(randutil.New(seed))
		require.Equal(t, Size, d.Len())
		assert.Equal(t, countByKey(Standard()), countByKey(d.Cards()))
	}
}

func TestBuildShuffles(t *testing.T) {
	t.Parallel()

	a := Build(randutil.New(1)).Cards()
	b := Build(randutil.New(2)).Cards()
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, Standard(), a)
}

func TestCardMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		card  Card
		color Color
		value string
		want  bool
	}{
		{"same color", NewNumber(Red, 3), Red, "7", true},
		{"same value", NewNumber(Blue, 7), Red, "7", true},
		{"same action", NewAction(Green, Skip), Red, Skip, true},
		{"wild always", NewWild(WildCard), Yellow, "2", true},
		{"wild four always", NewWild(WildFour), Yellow, "2", true},
		{"no match", NewNumber(Blue, 3), Red, "7", false},
		{"action no match", NewAction(Blue, DrawTwo), Red, "7", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.card.Matches(tt.color, tt.value))
		})
	}
}

func TestParseColor(t *testing.T) {
	t.Parallel()

	c, err := ParseColor(" Blue ")
	require.NoError(t, err)
	assert.Equal(t, Blue, c)

	_, err = ParseColor("wild")
	assert.Error(t, err)
	_, err = ParseColor("purple")
	assert.Error(t, err)
}

func TestCardString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "red 7", NewNumber(Red, 7).String())
	assert.Equal(t, "green +2", NewAction(Green, DrawTwo).String())
	assert.Equal(t, "wild+4", NewWild(WildFour).String())
}
