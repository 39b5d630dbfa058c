package deck

import (
	"github.com/lox/unoduel/internal/randutil"
)

// Size is the number of cards in a complete deck.
const Size = 108

// Deck is an ordered pile of cards. Index 0 is the top: Deal removes from
// there and Push places a card there. The same type backs the draw pile and
// the discard pile.
type Deck struct {
	cards []Card
}

// NewDeck creates a pile holding exactly the given cards, top first.
func NewDeck(cards ...Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards))}
	copy(d.cards, cards)
	return d
}

// Standard returns the unshuffled 108-card universe: per color one 0 and two
// each of 1-9, skip, reverse and +2, followed by four wilds and four wild+4s.
func Standard() []Card {
	cards := make([]Card, 0, Size)
	for _, color := range Colors {
		cards = append(cards, NewNumber(color, 0))
		for range 2 {
			for n := 1; n <= 9; n++ {
				cards = append(cards, NewNumber(color, n))
			}
			cards = append(cards,
				NewAction(color, Skip),
				NewAction(color, Reverse),
				NewAction(color, DrawTwo),
			)
		}
	}
	for range 4 {
		cards = append(cards, NewWild(WildCard), NewWild(WildFour))
	}
	return cards
}

// Build creates a full deck and shuffles it with rng.
func Build(rng randutil.Source) *Deck {
	d := &Deck{cards: Standard()}
	d.Shuffle(rng)
	return d
}

// Shuffle randomizes the order of cards in the deck
func (d *Deck) Shuffle(rng randutil.Source) {
	randutil.Shuffle(rng, d.cards)
}

// Deal removes and returns the top card from the deck
func (d *Deck) Deal() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}

	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// DealN deals up to n cards from the deck; fewer when it runs out.
func (d *Deck) DealN(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}

	cards := make([]Card, 0, n)
	for range n {
		card, _ := d.Deal()
		cards = append(cards, card)
	}
	return cards
}

// Push places a card on top of the pile.
func (d *Deck) Push(c Card) {
	d.cards = append([]Card{c}, d.cards...)
}

// Append places cards at the bottom of the pile.
func (d *Deck) Append(cards ...Card) {
	d.cards = append(d.cards, cards...)
}

// Top returns the top card without removing it from the deck
func (d *Deck) Top() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	return d.cards[0], true
}

// TakeBelowTop removes and returns every card except the top one.
func (d *Deck) TakeBelowTop() []Card {
	if len(d.cards) <= 1 {
		return nil
	}
	rest := make([]Card, len(d.cards)-1)
	copy(rest, d.cards[1:])
	d.cards = d.cards[:1]
	return rest
}

// Len returns the number of cards left in the deck
func (d *Deck) Len() int {
	return len(d.cards)
}

// IsEmpty returns true if the deck has no cards left
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Cards returns a copy of the pile, top first.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
