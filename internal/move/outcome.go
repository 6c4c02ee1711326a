package move

// Outcome is the result of a single round from the player's point of view.
type Outcome int

const (
	Tie Outcome = iota
	PlayerWin
	OpponentWin
)

func (o Outcome) String() string {
	switch o {
	case PlayerWin:
		return "player_win"
	case OpponentWin:
		return "opponent_win"
	default:
		return "tie"
	}
}

// Banner returns the text shown when the outcome is revealed.
func (o Outcome) Banner() string {
	switch o {
	case PlayerWin:
		return "You won!"
	case OpponentWin:
		return "Computer won! 🤖"
	default:
		return "It's a tie!"
	}
}

// ParseOutcome reads an outcome back from its String form. Anything it does
// not recognise is a tie.
func ParseOutcome(s string) Outcome {
	switch s {
	case "player_win":
		return PlayerWin
	case "opponent_win":
		return OpponentWin
	default:
		return Tie
	}
}

// Resolve compares the player's move against the opponent's.
func Resolve(player, opponent Move) Outcome {
	switch {
	case Beats(player, opponent):
		return PlayerWin
	case Beats(opponent, player):
		return OpponentWin
	default:
		return Tie
	}
}
