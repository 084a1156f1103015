package game

import (
	"errors"
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNewGameDefaults(t *testing.T) {
	g := New("12345678", t0)
	if g.Status != StatusWaiting || g.Turn != "w" || g.Position != StartingFEN {
		t.Fatalf("unexpected new game: %+v", g)
	}
	if len(g.History) != 0 || len(g.Reservations) != 0 || g.CommittedCount() != 0 {
		t.Fatalf("new game should be empty: %+v", g)
	}
}

func TestReserveAndAvailability(t *testing.T) {
	g := New("12345678", t0)
	left, err := g.Reserve("A", White, t0)
	if err != nil || left != 180 {
		t.Fatalf("Reserve: left=%d err=%v", left, err)
	}
	if _, err := g.Reserve("B", White, t0.Add(time.Second)); !errors.Is(err, ErrColorUnavailable) {
		t.Fatalf("second reserve: expected ColorUnavailable, got %v", err)
	}
	avail := g.AvailableAt(t0.Add(time.Second))
	if len(avail) != 1 || avail[0] != Black {
		t.Fatalf("available=%v", avail)
	}
	if got := g.ReservationExpiresIn(White, t0.Add(30*time.Second)); got != 150 {
		t.Fatalf("expires in=%d", got)
	}
}

func TestReserveSwitchReleasesPrior(t *testing.T) {
	g := New("12345678", t0)
	if _, err := g.Reserve("A", White, t0); err != nil {
		t.Fatalf("Reserve white: %v", err)
	}
	if _, err := g.Reserve("A", Black, t0.Add(time.Second)); err != nil {
		t.Fatalf("Reserve black: %v", err)
	}
	if _, ok := g.Reservations[White]; ok {
		t.Fatalf("white reservation should be released")
	}
	if c, ok := g.ReservedBy("A", t0.Add(time.Second)); !ok || c != Black {
		t.Fatalf("ReservedBy=%v,%v", c, ok)
	}
}

func TestReserveWindowNotRefreshed(t *testing.T) {
	g := New("12345678", t0)
	if _, err := g.Reserve("A", White, t0); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	left, err := g.Reserve("A", White, t0.Add(100*time.Second))
	if err != nil || left != 80 {
		t.Fatalf("re-reserve: left=%d err=%v", left, err)
	}
}

func TestReservationExpiry(t *testing.T) {
	g := New("12345678", t0)
	if _, err := g.Reserve("A", White, t0); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	at := t0.Add(ReservationTimeout)
	avail := g.AvailableAt(at)
	if len(avail) != 2 {
		t.Fatalf("white should be available at T+180s, got %v", avail)
	}
	if _, _, err := g.Commit("A", at); !errors.Is(err, ErrNoReservation) {
		t.Fatalf("commit after expiry: expected NoReservation, got %v", err)
	}
	if len(g.Reservations) != 0 {
		t.Fatalf("stale reservation should be purged")
	}
}

func TestCommitSetsPlayerAndReady(t *testing.T) {
	g := New("12345678", t0)
	if _, err := g.Reserve("A", White, t0); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	c, started, err := g.Commit("A", t0.Add(time.Second))
	if err != nil || c != White || started {
		t.Fatalf("Commit: c=%v started=%v err=%v", c, started, err)
	}
	if g.PlayerWhite != "A" || !g.ReadyWhite || len(g.Reservations) != 0 {
		t.Fatalf("unexpected state after commit: %+v", g)
	}
	if _, err := g.Reserve("A", Black, t0.Add(2*time.Second)); !errors.Is(err, ErrAlreadyPlayer) {
		t.Fatalf("committed player reserving: expected AlreadyPlayer, got %v", err)
	}
	if _, _, err := g.Commit("B", t0.Add(2*time.Second)); !errors.Is(err, ErrNoReservation) {
		t.Fatalf("commit without reservation: expected NoReservation, got %v", err)
	}

	if _, err := g.Reserve("B", Black, t0.Add(3*time.Second)); err != nil {
		t.Fatalf("Reserve black: %v", err)
	}
	c, started, err = g.Commit("B", t0.Add(4*time.Second))
	if err != nil || c != Black || !started {
		t.Fatalf("second commit: c=%v started=%v err=%v", c, started, err)
	}
	if g.Status != StatusActive {
		t.Fatalf("status=%s", g.Status)
	}
}

func TestCommitRejectsOccupiedSlot(t *testing.T) {
	g := New("12345678", t0)
	g.PlayerWhite = "A"
	g.Reservations[White] = Reservation{SessionID: "B", Timestamp: t0}
	before := g.Clone()
	if _, _, err := g.Commit("B", t0.Add(time.Second)); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected SlotTaken, got %v", err)
	}
	if g.PlayerWhite != "A" || !g.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatalf("record changed on SlotTaken: %+v", g)
	}
}

func TestCancelReservationIdempotent(t *testing.T) {
	g := New("12345678", t0)
	if _, err := g.Reserve("A", White, t0); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if !g.CancelReservation("A", t0.Add(time.Second)) {
		t.Fatalf("first cancel should remove")
	}
	if g.CancelReservation("A", t0.Add(2*time.Second)) {
		t.Fatalf("second cancel should be a no-op")
	}
}

func TestReadyTransition(t *testing.T) {
	g := New("12345678", t0)
	g.PlayerWhite, g.PlayerBlack = "A", "B"

	started, err := g.MarkReady("A", t0)
	if err != nil || started || g.Status != StatusWaiting {
		t.Fatalf("one ready: started=%v status=%s err=%v", started, g.Status, err)
	}
	if _, err := g.MarkReady("C", t0); !errors.Is(err, ErrNotAPlayer) {
		t.Fatalf("outsider ready: expected NotAPlayer, got %v", err)
	}
	started, err = g.MarkReady("B", t0)
	if err != nil || !started || g.Status != StatusActive {
		t.Fatalf("both ready: started=%v status=%s err=%v", started, g.Status, err)
	}
}

func TestChooseColor(t *testing.T) {
	g := New("12345678", t0)
	if err := g.ChooseColor("A", White, t0); err != nil {
		t.Fatalf("ChooseColor: %v", err)
	}
	if g.PlayerWhite != "A" || g.ReadyWhite {
		t.Fatalf("choose should assign without ready: %+v", g)
	}
	if err := g.ChooseColor("B", White, t0); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("same color: expected SlotTaken, got %v", err)
	}
	if err := g.ChooseColor("B", Black, t0); !errors.Is(err, ErrColorsChosen) {
		t.Fatalf("after first choice: expected ColorsChosen, got %v", err)
	}

	h := New("87654321", t0)
	if _, err := h.Reserve("A", White, t0); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := h.ChooseColor("B", White, t0); !errors.Is(err, ErrColorUnavailable) {
		t.Fatalf("reserved by other: expected ColorUnavailable, got %v", err)
	}
}

func TestResolvePriority(t *testing.T) {
	g := New("12345678", t0)
	if r := g.Resolve("A", t0); r.Role != RoleJoiner || len(r.Available) != 2 {
		t.Fatalf("fresh game: %+v", r)
	}
	if _, err := g.Reserve("A", White, t0); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if r := g.Resolve("A", t0.Add(10*time.Second)); r.Role != RoleReserved || r.Color != White || r.ExpiresIn != 170 {
		t.Fatalf("reservation holder: %+v", r)
	}
	if _, _, err := g.Commit("A", t0.Add(11*time.Second)); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if r := g.Resolve("A", t0.Add(12*time.Second)); r.Role != RolePlayer || r.Color != White {
		t.Fatalf("player: %+v", r)
	}
	g.PlayerBlack = "B"
	for i := 0; i < 2; i++ {
		if r := g.Resolve("C", t0.Add(13*time.Second)); r.Role != RoleSpectator {
			t.Fatalf("spectator: %+v", r)
		}
	}
	if g.SpectatorCount != 2 {
		t.Fatalf("spectator count=%d", g.SpectatorCount)
	}
}

func TestAuthorizeMoveOrder(t *testing.T) {
	g := New("12345678", t0)
	g.PlayerWhite, g.PlayerBlack = "A", "B"
	if err := g.AuthorizeMove("B"); !errors.Is(err, ErrWrongTurn) {
		t.Fatalf("B on white's turn: expected WrongTurn, got %v", err)
	}
	if err := g.AuthorizeMove("A"); !errors.Is(err, ErrGameNotActive) {
		t.Fatalf("waiting game: expected GameNotActive, got %v", err)
	}
	g.Status = StatusActive
	if err := g.AuthorizeMove("A"); err != nil {
		t.Fatalf("A on white's turn: %v", err)
	}
}

func TestRecordMoveAndResult(t *testing.T) {
	g := New("12345678", t0)
	g.Status = StatusActive
	fen := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	g.RecordMove("e2", "e4", "", fen, PositionStatus{Turn: "b"}, t0)
	if g.Turn != "b" || g.LastMove != "e2-e4" || len(g.History) != 1 || g.Position != fen {
		t.Fatalf("unexpected record: %+v", g)
	}
	if h := g.History[0]; h.Turn != "b" || h.FEN != fen {
		t.Fatalf("history entry: %+v", h)
	}

	g.RecordMove("d8", "h4", "", "mate", PositionStatus{Turn: "w", InCheck: true, Checkmate: true, GameOver: true}, t0)
	if g.Status != StatusCheckmate || !g.InCheck || g.Result() != "black_win" {
		t.Fatalf("checkmate: status=%s result=%s", g.Status, g.Result())
	}
}

func TestUpdatedAtStrictlyIncreases(t *testing.T) {
	g := New("12345678", t0)
	first := g.UpdatedAt
	if _, err := g.Reserve("A", White, t0); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if !g.UpdatedAt.After(first) {
		t.Fatalf("UpdatedAt did not advance within one tick")
	}
	second := g.UpdatedAt
	g.CancelReservation("A", t0.Add(-time.Minute))
	if !g.UpdatedAt.After(second) {
		t.Fatalf("UpdatedAt went backwards on clock skew")
	}
}

func TestCloneIsDeep(t *testing.T) {
	g := New("12345678", t0)
	g.Reservations[White] = Reservation{SessionID: "A", Timestamp: t0}
	g.History = append(g.History, MoveEntry{From: "e2", To: "e4"})
	c := g.Clone()
	c.Reservations[Black] = Reservation{SessionID: "B"}
	c.History[0].From = "d2"
	if len(g.Reservations) != 1 || g.History[0].From != "e2" {
		t.Fatalf("clone shares state with original")
	}
}

func TestErrorKinds(t *testing.T) {
	if ErrWrongTurn.Kind != KindUnauthorized || ErrSlotTaken.Kind != KindConflict {
		t.Fatalf("unexpected kinds")
	}
	wrapped := Wrap(CodeRulesUnavailable, errors.New("dial"), "rules down")
	if !wrapped.Retryable() || CodeOf(wrapped) != CodeRulesUnavailable {
		t.Fatalf("wrap: %+v", wrapped)
	}
	if !errors.Is(Errorf(CodeWrongTurn, "custom"), ErrWrongTurn) {
		t.Fatalf("errors.Is should match on code")
	}
}

func TestNewID(t *testing.T) {
	id, err := NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if !ValidID(id) {
		t.Fatalf("bad id %q", id)
	}
	if ValidID("1234") || ValidID("abcdefgh") {
		t.Fatalf("ValidID accepted malformed ids")
	}
}
