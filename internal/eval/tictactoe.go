package eval

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/ppiankov/evalforge/internal/game"
)

const tttSystemPrompt = `You are an expert TicTacToe player, and always make the perfect move. Either 'X' or 'O' may go first.

Respond only with a number between 1 and 9, where 1 is the top-left corner and 9 is the bottom-right corner. The game board positions are numbered as follows:

1 2 3
4 5 6
7 8 9

Respond ONLY with a number between 1 and 9. Do not respond with any new lines or other text.`

// Game outcomes score -1 (model loss), 0 (draw), +1 (model win). This is
// the harness's canonical convention; any rescaling for display belongs
// to the presentation layer.
const (
	scoreLoss = -1.0
	scoreDraw = 0.0
	scoreWin  = 1.0
)

// RegisterTicTacToe adds both tic-tac-toe evaluations. They differ only
// in the scripted opponent.
func RegisterTicTacToe(r *Registry) {
	r.Register(TaskDefinition{
		Name:        "tictactoe_random",
		Description: "Tic-tac-toe against a random opponent",
		DefaultRuns: 10,
		Trial: ticTacToeTrial(func(rng *rand.Rand) game.Chooser {
			return game.NewRandom(rng)
		}),
	})
	r.Register(TaskDefinition{
		Name:        "tictactoe_perfect",
		Description: "Tic-tac-toe against a perfect minimax opponent",
		DefaultRuns: 10,
		Trial: ticTacToeTrial(func(rng *rand.Rand) game.Chooser {
			return game.NewPerfect()
		}),
	})
}

// ticTacToeTrial plays one full game. The trial's rng decides who goes
// first (the model plays X when it opens, O otherwise) and drives the
// opponent when it is the random variant. On the model's turn the board
// is serialized into a prompt; an illegal or unparsable reply ends the
// game as an immediate loss.
func ticTacToeTrial(newChooser func(*rand.Rand) game.Chooser) TrialFunc {
	return func(ctx context.Context, call ModelCaller, p Params, rng *rand.Rand) Outcome {
		opponent := newChooser(rng)
		modelMark := game.O
		if rng.Intn(2) == 0 {
			modelMark = game.X
		}

		g := game.New()
		var out Outcome
		for g.Status() == game.Ongoing {
			if g.ToMove() == modelMark {
				prompt := boardPrompt(g)
				out.Prompt = prompt
				resp, err := call(ctx, prompt)
				if err != nil {
					out.Failed = true
					out.Err = err.Error()
					return out
				}
				out.Response = resp

				move, ok := parseMove(resp)
				if !ok {
					out.Score = scoreLoss
					out.Failed = true
					out.Err = fmt.Sprintf("unparsable move %q", resp)
					return out
				}
				next, err := g.Apply(move)
				if err != nil {
					out.Score = scoreLoss
					out.Failed = true
					out.Err = fmt.Sprintf("illegal move %d", move)
					return out
				}
				g = next
			} else {
				move, err := opponent.Choose(g)
				if err != nil {
					// cannot happen on an ongoing game; harness bug
					out.Failed = true
					out.Err = fmt.Sprintf("opponent: %v", err)
					return out
				}
				g, _ = g.Apply(move)
			}
		}

		switch winner, ok := g.Winner(); {
		case !ok:
			out.Score = scoreDraw
		case winner == modelMark:
			out.Score = scoreWin
		default:
			out.Score = scoreLoss
		}
		return out
	}
}

// boardPrompt serializes the current position the way the system prompt
// describes it.
func boardPrompt(g game.Game) string {
	return fmt.Sprintf("%s\n\nGame Board:\n%s\n'%s' to play:", tttSystemPrompt, g, g.ToMove())
}

// parseMove extracts the first integer token from the reply.
func parseMove(response string) (game.Move, bool) {
	m := firstNumber.FindString(response)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return game.Move(n), true
}
