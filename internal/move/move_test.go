package move

import "testing"

func TestBeats_Tournament(t *testing.T) {
	for _, a := range All() {
		if Beats(a, a) {
			t.Errorf("Beats(%s, %s) = true, want false", a, a)
		}
		wins, losses := 0, 0
		for _, b := range All() {
			if a == b {
				continue
			}
			ab, ba := Beats(a, b), Beats(b, a)
			if ab == ba {
				t.Errorf("exactly one of Beats(%s,%s)=%v and Beats(%s,%s)=%v must hold", a, b, ab, b, a, ba)
			}
			if ab {
				wins++
			} else {
				losses++
			}
		}
		if wins != 1 || losses != 1 {
			t.Errorf("%s: wins=%d losses=%d, want 1 and 1", a, wins, losses)
		}
	}
}

func TestBeats_ClassicRules(t *testing.T) {
	tests := []struct {
		a, b Move
	}{
		{Rock, Scissors},
		{Scissors, Paper},
		{Paper, Rock},
	}
	for _, tt := range tests {
		if !Beats(tt.a, tt.b) {
			t.Errorf("Beats(%s, %s) = false, want true", tt.a, tt.b)
		}
	}
}

func TestBeats_InvalidMove(t *testing.T) {
	if Beats(Move(7), Rock) || Beats(Rock, Move(-1)) {
		t.Error("invalid moves must never win")
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		player, opponent Move
		want             Outcome
	}{
		{Rock, Scissors, PlayerWin},
		{Scissors, Paper, PlayerWin},
		{Paper, Rock, PlayerWin},
		{Scissors, Rock, OpponentWin},
		{Rock, Paper, OpponentWin},
		{Paper, Scissors, OpponentWin},
		{Paper, Paper, Tie},
		{Rock, Rock, Tie},
		{Scissors, Scissors, Tie},
	}
	for _, tt := range tests {
		if got := Resolve(tt.player, tt.opponent); got != tt.want {
			t.Errorf("Resolve(%s, %s) = %s, want %s", tt.player, tt.opponent, got, tt.want)
		}
	}
}

func TestOutcomeBanner(t *testing.T) {
	if PlayerWin.Banner() != "You won!" {
		t.Errorf("PlayerWin banner = %q", PlayerWin.Banner())
	}
	if Tie.Banner() != "It's a tie!" {
		t.Errorf("Tie banner = %q", Tie.Banner())
	}
	if OpponentWin.Banner() != "Computer won! 🤖" {
		t.Errorf("OpponentWin banner = %q", OpponentWin.Banner())
	}
}

func TestParseOutcome_RoundTrips(t *testing.T) {
	for _, o := range []Outcome{Tie, PlayerWin, OpponentWin} {
		if got := ParseOutcome(o.String()); got != o {
			t.Errorf("ParseOutcome(%q) = %v", o.String(), got)
		}
	}
	if ParseOutcome("forfeit") != Tie {
		t.Error("unknown outcome should read as a tie")
	}
}

func TestLabelsAndParse(t *testing.T) {
	labels := Labels()
	want := []string{"rock", "paper", "scissors"}
	if len(labels) != len(want) {
		t.Fatalf("Labels() = %v, want %v", labels, want)
	}
	for i, l := range want {
		if labels[i] != l {
			t.Errorf("Labels()[%d] = %q, want %q", i, labels[i], l)
		}
		m, err := Parse(l)
		if err != nil {
			t.Fatalf("Parse(%q): %v", l, err)
		}
		if m != Move(i) {
			t.Errorf("Parse(%q) = %s, want %s", l, m, Move(i))
		}
	}

	if m, err := Parse("  PAPER "); err != nil || m != Paper {
		t.Errorf("Parse(\"  PAPER \") = %v, %v", m, err)
	}
	if _, err := Parse("lizard"); err == nil {
		t.Error("expected error for unknown label")
	}
}

func TestGlyph(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range All() {
		g := Glyph(m)
		if g == "" || g == Placeholder {
			t.Errorf("Glyph(%s) = %q", m, g)
		}
		if seen[g] {
			t.Errorf("duplicate glyph %q", g)
		}
		seen[g] = true
	}
	if Glyph(Move(42)) != Placeholder {
		t.Errorf("invalid move glyph = %q, want placeholder", Glyph(Move(42)))
	}
}

func TestRandomSource_Uniformish(t *testing.T) {
	s := NewRandomSource(7)
	counts := map[Move]int{}
	for range 3000 {
		m := s.Draw()
		if !m.Valid() {
			t.Fatalf("invalid draw %d", m)
		}
		counts[m]++
	}
	for _, m := range All() {
		if counts[m] < 800 {
			t.Errorf("%s drawn %d/3000 times, expected roughly 1000", m, counts[m])
		}
	}
}

func TestRandomSource_SeedIsReproducible(t *testing.T) {
	a, b := NewRandomSource(42), NewRandomSource(42)
	for i := range 50 {
		if x, y := a.Draw(), b.Draw(); x != y {
			t.Fatalf("draw %d differs: %s vs %s", i, x, y)
		}
	}
}

func TestFixedSource(t *testing.T) {
	s := NewFixedSource(Paper, Scissors)
	got := []Move{s.Draw(), s.Draw(), s.Draw()}
	want := []Move{Paper, Scissors, Scissors}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("draw %d = %s, want %s", i, got[i], want[i])
		}
	}
	if NewFixedSource().Draw() != Rock {
		t.Error("empty FixedSource should draw Rock")
	}
}
