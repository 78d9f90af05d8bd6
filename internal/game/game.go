package game

import (
	"errors"
	"fmt"
	"strings"
)

// Cell is the content of one board position.
type Cell int8

const (
	Empty Cell = iota
	X
	O
)

func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return "."
	}
}

// Opponent returns the other mark. Calling it on Empty is meaningless.
func (c Cell) Opponent() Cell {
	if c == X {
		return O
	}
	return X
}

// Move is a board position numbered 1 (top-left) through 9 (bottom-right).
type Move int

// Status is the terminal state of a game.
type Status int

const (
	Ongoing Status = iota
	XWins
	OWins
	Draw
)

func (s Status) String() string {
	switch s {
	case XWins:
		return "X wins"
	case OWins:
		return "O wins"
	case Draw:
		return "draw"
	default:
		return "ongoing"
	}
}

// ErrIllegalMove is returned by Apply for occupied cells, out-of-range
// positions, and moves on a finished game.
var ErrIllegalMove = errors.New("illegal move")

// winning line triples, zero-indexed
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

// Game is an immutable tic-tac-toe position. The zero value is not valid;
// use New. Apply returns a new Game, so positions can be explored without
// mutation hazards.
type Game struct {
	cells  [9]Cell
	toMove Cell
}

// New returns an empty board with X to move.
func New() Game {
	return Game{toMove: X}
}

// ToMove returns the mark whose turn it is.
func (g Game) ToMove() Cell { return g.toMove }

// At returns the cell at position 1..9. Out-of-range positions are Empty.
func (g Game) At(pos Move) Cell {
	if pos < 1 || pos > 9 {
		return Empty
	}
	return g.cells[pos-1]
}

// LegalMoves lists the open positions in ascending order. A finished game
// has no legal moves.
func (g Game) LegalMoves() []Move {
	if g.Status() != Ongoing {
		return nil
	}
	moves := make([]Move, 0, 9)
	for i, c := range g.cells {
		if c == Empty {
			moves = append(moves, Move(i+1))
		}
	}
	return moves
}

// Apply plays a move for the side to move and returns the resulting
// position. The receiver is unchanged.
func (g Game) Apply(m Move) (Game, error) {
	if m < 1 || m > 9 {
		return g, fmt.Errorf("%w: position %d out of range", ErrIllegalMove, m)
	}
	if g.Status() != Ongoing {
		return g, fmt.Errorf("%w: game is over", ErrIllegalMove)
	}
	if g.cells[m-1] != Empty {
		return g, fmt.Errorf("%w: position %d is taken", ErrIllegalMove, m)
	}
	next := g
	next.cells[m-1] = g.toMove
	next.toMove = g.toMove.Opponent()
	return next, nil
}

// Status reports whether the game is ongoing, won, or drawn.
func (g Game) Status() Status {
	for _, l := range lines {
		c := g.cells[l[0]]
		if c != Empty && g.cells[l[1]] == c && g.cells[l[2]] == c {
			if c == X {
				return XWins
			}
			return OWins
		}
	}
	for _, c := range g.cells {
		if c == Empty {
			return Ongoing
		}
	}
	return Draw
}

// Winner returns the winning mark, if any.
func (g Game) Winner() (Cell, bool) {
	switch g.Status() {
	case XWins:
		return X, true
	case OWins:
		return O, true
	}
	return Empty, false
}

// String renders the board as three space-separated rows, the same format
// the prompts use.
func (g Game) String() string {
	var b strings.Builder
	for row := 0; row < 3; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < 3; col++ {
			if col > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(g.cells[3*row+col].String())
		}
	}
	return b.String()
}
