package score

import "github.com/abhisek/rpscam/internal/move"

// Board holds the cumulative win counters for the current session.
// Counters only grow between resets.
type Board struct {
	playerWins   int
	opponentWins int
}

// Snapshot is a read-only copy of the board.
type Snapshot struct {
	PlayerWins   int
	OpponentWins int
}

// NewBoard returns a board at 0-0.
func NewBoard() *Board {
	return &Board{}
}

// Record increments the counter matching the outcome. Ties are ignored.
func (b *Board) Record(o move.Outcome) {
	switch o {
	case move.PlayerWin:
		b.playerWins++
	case move.OpponentWin:
		b.opponentWins++
	}
}

// Reset zeroes both counters.
func (b *Board) Reset() {
	b.playerWins = 0
	b.opponentWins = 0
}

func (b *Board) Snapshot() Snapshot {
	return Snapshot{
		PlayerWins:   b.playerWins,
		OpponentWins: b.opponentWins,
	}
}
