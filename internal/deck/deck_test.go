package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDealAndPush(t *testing.T) {
	t.Parallel()

	d := NewDeck(NewNumber(Red, 1), NewNumber(Red, 2))

	top, ok := d.Top()
	require.True(t, ok)
	assert.Equal(t, NewNumber(Red, 1), top)

	card, ok := d.Deal()
	require.True(t, ok)
	assert.Equal(t, NewNumber(Red, 1), card)
	assert.Equal(t, 1, d.Len())

	d.Push(NewWild(WildCard))
	top, _ = d.Top()
	assert.Equal(t, NewWild(WildCard), top)
	assert.Equal(t, 2, d.Len())
}

func TestDealNStopsWhenEmpty(t *testing.T) {
	t.Parallel()

	d := NewDeck(NewNumber(Blue, 1), NewNumber(Blue, 2), NewNumber(Blue, 3))
	got := d.DealN(5)
	assert.Len(t, got, 3)
	assert.True(t, d.IsEmpty())

	_, ok := d.Deal()
	assert.False(t, ok)
	_, ok = d.Top()
	assert.False(t, ok)
}

func TestTakeBelowTop(t *testing.T) {
	t.Parallel()

	d := NewDeck(NewNumber(Green, 9), NewNumber(Green, 8), NewNumber(Green, 7))
	rest := d.TakeBelowTop()
	assert.Equal(t, []Card{NewNumber(Green, 8), NewNumber(Green, 7)}, rest)
	assert.Equal(t, []Card{NewNumber(Green, 9)}, d.Cards())

	assert.Nil(t, d.TakeBelowTop())
	assert.Nil(t, NewDeck().TakeBelowTop())
}

func TestAppendAndCardsCopy(t *testing.T) {
	t.Parallel()

	d := NewDeck(NewNumber(Yellow, 1))
	d.Append(NewNumber(Yellow, 2))
	cards := d.Cards()
	cards[0] = NewWild(WildFour)
	assert.Equal(t, []Card{NewNumber(Yellow, 1), NewNumber(Yellow, 2)}, d.Cards())
}
