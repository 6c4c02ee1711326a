package move

import (
	"fmt"
	"strings"
)

// Move is one of the three hand gestures.
type Move int

// Declaration order is the classifier label order and breaks argmax ties.
const (
	Rock Move = iota
	Paper
	Scissors
)

// Placeholder is displayed in place of a move that has not been revealed.
const Placeholder = "??"

// entry describes a single move in the catalog.
type entry struct {
	label string
	glyph string
	beats Move
}

var catalog = [...]entry{
	Rock:     {label: "rock", glyph: "✊🏽", beats: Scissors},
	Paper:    {label: "paper", glyph: "✋🏽", beats: Rock},
	Scissors: {label: "scissors", glyph: "✌🏽", beats: Paper},
}

// All returns every move in declaration order.
func All() []Move {
	return []Move{Rock, Paper, Scissors}
}

// Labels returns the move labels in declaration order.
func Labels() []string {
	out := make([]string, len(catalog))
	for i, e := range catalog {
		out[i] = e.label
	}
	return out
}

// Valid reports whether m is a catalog member.
func (m Move) Valid() bool {
	return m >= Rock && m <= Scissors
}

func (m Move) String() string {
	if !m.Valid() {
		return fmt.Sprintf("move(%d)", int(m))
	}
	return catalog[m].label
}

// Glyph returns the display glyph for m, or Placeholder for an invalid move.
func Glyph(m Move) string {
	if !m.Valid() {
		return Placeholder
	}
	return catalog[m].glyph
}

// Beats reports whether a defeats b.
func Beats(a, b Move) bool {
	if !a.Valid() || !b.Valid() {
		return false
	}
	return catalog[a].beats == b
}

// Parse resolves a label (case-insensitive) to a Move.
func Parse(label string) (Move, error) {
	l := strings.ToLower(strings.TrimSpace(label))
	for i, e := range catalog {
		if e.label == l {
			return Move(i), nil
		}
	}
	return 0, fmt.Errorf("unknown move %q", label)
}
