package game

import (
	"errors"
	"math/rand"
)

// ErrNoMoves is returned when a chooser is asked to move on a finished
// game. That is a harness bug, not a playable situation.
var ErrNoMoves = errors.New("no legal moves: game is over")

// Chooser picks a move for the side to move. Implementations must be
// deterministic given the same position and random source.
type Chooser interface {
	Choose(g Game) (Move, error)
	Name() string
}

// RandomChooser draws uniformly from the legal moves using a seeded
// source, so a fixed seed replays the same game.
type RandomChooser struct {
	rng *rand.Rand
}

// NewRandom returns a chooser backed by rng.
func NewRandom(rng *rand.Rand) *RandomChooser {
	return &RandomChooser{rng: rng}
}

func (c *RandomChooser) Name() string { return "random" }

func (c *RandomChooser) Choose(g Game) (Move, error) {
	moves := g.LegalMoves()
	if len(moves) == 0 {
		return 0, ErrNoMoves
	}
	return moves[c.rng.Intn(len(moves))], nil
}

// PerfectChooser plays full-depth minimax over the game tree. It never
// allows a forced loss: it wins when a win is forced and draws otherwise.
// Ties between equally good moves break toward the lowest position, so
// its play is fully deterministic.
type PerfectChooser struct {
	memo map[Game]int
}

// NewPerfect returns a minimax chooser with a fresh memo table.
func NewPerfect() *PerfectChooser {
	return &PerfectChooser{memo: make(map[Game]int)}
}

func (c *PerfectChooser) Name() string { return "perfect" }

func (c *PerfectChooser) Choose(g Game) (Move, error) {
	moves := g.LegalMoves()
	if len(moves) == 0 {
		return 0, ErrNoMoves
	}
	best := moves[0]
	bestVal := -2
	for _, m := range moves {
		next, err := g.Apply(m)
		if err != nil {
			return 0, err
		}
		if v := -c.value(next); v > bestVal {
			bestVal = v
			best = m
		}
	}
	return best, nil
}

// value scores a position from the perspective of the side to move:
// +1 forced win, 0 forced draw, -1 forced loss.
func (c *PerfectChooser) value(g Game) int {
	if v, ok := c.memo[g]; ok {
		return v
	}
	var v int
	switch g.Status() {
	case Draw:
		v = 0
	case XWins, OWins:
		// the side to move did not make the winning line
		v = -1
	default:
		v = -2
		for _, m := range g.LegalMoves() {
			next, _ := g.Apply(m)
			if cv := -c.value(next); cv > v {
				v = cv
			}
		}
	}
	c.memo[g] = v
	return v
}
