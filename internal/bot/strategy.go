package bot

import (
	"fmt"
	"sort"

	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/randutil"
	"github.com/lox/unoduel/internal/view"
)

// Action is what a bot does on its turn.
type Action int

const (
	Play Action = iota + 1
	Draw
	EndTurn
)

// String returns the string representation of an action
func (a Action) String() string {
	switch a {
	case Play:
		return "play"
	case Draw:
		return "draw"
	case EndTurn:
		return "end-turn"
	default:
		return "unknown"
	}
}

// Decision is a strategy's choice for the current turn.
type Decision struct {
	Action    Action
	Index     int
	Color     deck.Color
	Reasoning string
}

// Strategy picks a move from the bot's view of the game. It is only asked
// when it is the bot's turn.
type Strategy interface {
	Decide(g view.Game) Decision
}

// Strategy names accepted by NewStrategy.
const (
	StrategyRandom = "random"
	StrategyGreedy = "greedy"
)

// Strategies lists the available strategy names.
var Strategies = []string{StrategyRandom, StrategyGreedy}

// NewStrategy returns the named strategy.
func NewStrategy(name string, rng randutil.Source) (Strategy, error) {
	switch name {
	case StrategyRandom:
		return &RandomStrategy{rng: rng}, nil
	case StrategyGreedy, "":
		return &GreedyStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want one of %v)", name, Strategies)
	}
}

// Playable returns the indexes of the cards in g's hand that may be played.
func Playable(g view.Game) []int {
	var idx []int
	for i, c := range g.Hand {
		if c.Matches(g.CurrentColor, g.CurrentValue) {
			idx = append(idx, i)
		}
	}
	return idx
}

// noPlay draws, or ends the turn once a draw has already happened.
func noPlay(g view.Game, reason string) Decision {
	if g.CanEndTurn {
		return Decision{Action: EndTurn, Reasoning: reason + ", passing"}
	}
	return Decision{Action: Draw, Reasoning: reason + ", drawing"}
}

// RandomStrategy plays a uniformly random legal card.
type RandomStrategy struct {
	rng randutil.Source
}

func (s *RandomStrategy) Decide(g view.Game) Decision {
	playable := Playable(g)
	if len(playable) == 0 {
		return noPlay(g, "nothing playable")
	}

	i := playable[s.rng.IntN(len(playable))]
	d := Decision{Action: Play, Index: i, Reasoning: "random legal card"}
	if g.Hand[i].IsWild() {
		d.Color = deck.Colors[s.rng.IntN(len(deck.Colors))]
	}
	return d
}

// GreedyStrategy sheds its most disruptive card first and keeps wilds for
// when nothing else fits. Wild colors go to whatever it holds most of.
type GreedyStrategy struct{}

func (GreedyStrategy) Decide(g view.Game) Decision {
	playable := Playable(g)
	if len(playable) == 0 {
		return noPlay(g, "nothing playable")
	}

	sort.SliceStable(playable, func(a, b int) bool {
		return rank(g.Hand[playable[a]]) > rank(g.Hand[playable[b]])
	})
	i := playable[0]

	d := Decision{Action: Play, Index: i, Reasoning: fmt.Sprintf("best of %d playable", len(playable))}
	if g.Hand[i].IsWild() {
		d.Color = dominantColor(g.Hand, i)
		d.Reasoning = "only a wild fits, naming " + d.Color.String()
	}
	return d
}

// rank orders playable cards: penalties, then turn-keepers, then numbers,
// with wilds last.
func rank(c deck.Card) int {
	switch {
	case c.Value == deck.DrawTwo:
		return 4
	case c.Value == deck.Skip || c.Value == deck.Reverse:
		return 3
	case c.IsNumber():
		return 2
	case c.Value == deck.WildFour:
		return 1
	default:
		return 0
	}
}

// dominantColor is the most common color in hand, ignoring the card at skip.
func dominantColor(hand []deck.Card, skip int) deck.Color {
	counts := make(map[deck.Color]int, len(deck.Colors))
	for i, c := range hand {
		if i != skip && c.Color.Valid() {
			counts[c.Color]++
		}
	}

	best := deck.Colors[0]
	for _, color := range deck.Colors {
		if counts[color] > counts[best] {
			best = color
		}
	}
	return best
}
