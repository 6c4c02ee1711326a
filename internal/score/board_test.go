package score

import (
	"testing"

	"github.com/abhisek/rpscam/internal/move"
)

func TestBoard_Record(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []move.Outcome
		want     Snapshot
	}{
		{"empty", nil, Snapshot{}},
		{"player win", []move.Outcome{move.PlayerWin}, Snapshot{PlayerWins: 1}},
		{"opponent win", []move.Outcome{move.OpponentWin}, Snapshot{OpponentWins: 1}},
		{"tie is a no-op", []move.Outcome{move.Tie, move.Tie}, Snapshot{}},
		{
			"mixed",
			[]move.Outcome{move.PlayerWin, move.Tie, move.OpponentWin, move.PlayerWin},
			Snapshot{PlayerWins: 2, OpponentWins: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoard()
			for _, o := range tt.outcomes {
				b.Record(o)
			}
			if got := b.Snapshot(); got != tt.want {
				t.Errorf("Snapshot() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBoard_Reset(t *testing.T) {
	b := NewBoard()
	b.Record(move.PlayerWin)
	b.Record(move.OpponentWin)
	b.Reset()
	if got := b.Snapshot(); got != (Snapshot{}) {
		t.Errorf("after Reset, Snapshot() = %+v, want zero", got)
	}
}
