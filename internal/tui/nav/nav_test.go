package nav

import "testing"

func checkInvariant(t *testing.T, l List) {
	t.Helper()
	if l.Len == 0 {
		if l.Cursor != 0 || l.Start != 0 {
			t.Fatalf("empty list must sit at origin: %+v", l)
		}
		return
	}
	if l.Cursor < 0 || l.Cursor >= l.Len {
		t.Fatalf("cursor out of range: %+v", l)
	}
	if l.Start > l.Cursor || l.Cursor >= l.Start+l.PageSize {
		t.Fatalf("cursor outside window: %+v", l)
	}
	if l.Start < 0 {
		t.Fatalf("negative start: %+v", l)
	}
}

func TestMoveDown_ScrollsAtWindowEdge(t *testing.T) {
	l := New(10, 3)
	for i := 0; i < 3; i++ {
		l = l.MoveDown()
		checkInvariant(t, l)
	}
	if l.Cursor != 3 || l.Start != 1 {
		t.Fatalf("expected cursor=3 start=1, got %+v", l)
	}
}

func TestMoveUp_StopsAtZero(t *testing.T) {
	l := New(5, 3)
	l = l.MoveUp()
	checkInvariant(t, l)
	if l.Cursor != 0 || l.Start != 0 {
		t.Fatalf("expected origin, got %+v", l)
	}
}

func TestMoveDown_StopsAtEnd(t *testing.T) {
	l := New(3, 5)
	for i := 0; i < 10; i++ {
		l = l.MoveDown()
		checkInvariant(t, l)
	}
	if l.Cursor != 2 {
		t.Fatalf("expected cursor at last row, got %+v", l)
	}
}

func TestPageDownUp(t *testing.T) {
	l := New(20, 5)
	l = l.PageDown()
	checkInvariant(t, l)
	if l.Cursor != 5 || l.Start != 5 {
		t.Fatalf("expected cursor=5 start=5, got %+v", l)
	}
	l = l.PageDown().PageDown().PageDown().PageDown()
	checkInvariant(t, l)
	if l.Cursor != 19 {
		t.Fatalf("expected cursor at end, got %+v", l)
	}
	l = l.PageUp()
	checkInvariant(t, l)
	if l.Cursor != 14 {
		t.Fatalf("expected cursor=14, got %+v", l)
	}
}

func TestHomeEnd(t *testing.T) {
	l := New(30, 7).End()
	checkInvariant(t, l)
	if l.Cursor != 29 {
		t.Fatalf("End should land on last row, got %+v", l)
	}
	if l.Start != 23 {
		t.Fatalf("End should show a full last page, got %+v", l)
	}
	l = l.Home()
	checkInvariant(t, l)
	if l.Cursor != 0 || l.Start != 0 {
		t.Fatalf("Home should land on origin, got %+v", l)
	}
}

func TestReset_ReturnsToTop(t *testing.T) {
	l := New(10, 4).End()
	l = l.Reset(6)
	checkInvariant(t, l)
	if l.Cursor != 0 || l.Start != 0 || l.Len != 6 {
		t.Fatalf("Reset should rewind to the top, got %+v", l)
	}
}

func TestRefresh_PreservesCursorWhenPossible(t *testing.T) {
	l := New(10, 4)
	l = l.MoveDown().MoveDown()

	kept := l.Refresh(10)
	checkInvariant(t, kept)
	if kept.Cursor != 2 {
		t.Fatalf("Refresh with same length must keep cursor, got %+v", kept)
	}

	clamped := l.Refresh(2)
	checkInvariant(t, clamped)
	if clamped.Cursor != 1 {
		t.Fatalf("Refresh should clamp to new last row, got %+v", clamped)
	}

	empty := l.Refresh(0)
	checkInvariant(t, empty)
	if empty.Cursor != 0 || empty.Len != 0 {
		t.Fatalf("Refresh to empty should zero out, got %+v", empty)
	}
}

func TestRefresh_Idempotent(t *testing.T) {
	l := New(8, 3).PageDown().MoveDown()
	once := l.Refresh(8)
	twice := once.Refresh(8)
	if once != twice {
		t.Fatalf("Refresh must be idempotent: %+v vs %+v", once, twice)
	}
}

func TestResize_KeepsCursorVisible(t *testing.T) {
	l := New(20, 10).End()
	l = l.Resize(3)
	checkInvariant(t, l)
	if l.Cursor != 19 {
		t.Fatalf("Resize must not move the cursor, got %+v", l)
	}
}

func TestInvariant_RandomWalk(t *testing.T) {
	l := New(13, 4)
	moves := []func(List) List{
		List.MoveDown, List.MoveUp, List.PageDown, List.PageUp, List.Home, List.End,
	}
	// Deterministic pseudo-random walk.
	seed := 12345
	for i := 0; i < 500; i++ {
		seed = (seed*1103515245 + 12345) % (1 << 31)
		l = moves[seed%len(moves)](l)
		checkInvariant(t, l)
	}
}
