package game

import (
	"testing"

	"battleships/internal/models"
)

const (
	alice = models.PlayerID(1)
	bob   = models.PlayerID(2)
)

func testLayout() models.Layout {
	return models.NewLayout(models.ShipsPlacements{
		models.AircraftCarrier: {Position: models.Position{Row: 0, Col: 0}, Orientation: models.East},
		models.Battleship:      {Position: models.Position{Row: 2, Col: 0}, Orientation: models.East},
		models.Cruiser:         {Position: models.Position{Row: 4, Col: 0}, Orientation: models.East},
		models.Destroyer:       {Position: models.Position{Row: 6, Col: 0}, Orientation: models.East},
		models.PatrolBoat:      {Position: models.Position{Row: 8, Col: 0}, Orientation: models.East},
	})
}

// playingGame returns a game with both layouts set, alice on turn.
func playingGame(t *testing.T) *Game {
	t.Helper()

	g := New(alice, bob)

	if playing, err := g.SetLayout(alice, testLayout()); err != nil || playing {
		t.Fatalf("first SetLayout() = %v, %v", playing, err)
	}
	if playing, err := g.SetLayout(bob, testLayout()); err != nil || !playing {
		t.Fatalf("second SetLayout() = %v, %v", playing, err)
	}

	return g
}

func TestSetLayout(t *testing.T) {
	g := New(alice, bob)

	invalid := models.NewLayout(models.ShipsPlacements{
		models.PatrolBoat: {Position: models.Position{Row: 0, Col: 0}, Orientation: models.East},
	})
	if _, err := g.SetLayout(alice, invalid); err != ErrInvalidLayout {
		t.Errorf("SetLayout() of an invalid layout = %v, want ErrInvalidLayout", err)
	}

	if _, err := g.SetLayout(alice, testLayout()); err != nil {
		t.Fatalf("SetLayout() failed: %v", err)
	}
	if _, err := g.SetLayout(alice, testLayout()); err != ErrAlreadyHasLayout {
		t.Errorf("repeated SetLayout() = %v, want ErrAlreadyHasLayout", err)
	}

	if g.Playing() {
		t.Error("game must not be playing with one layout")
	}
}

func TestShootTurnOrder(t *testing.T) {
	g := playingGame(t)

	if _, err := g.Shoot(bob, models.Position{Row: 0, Col: 0}); err != ErrNotOnTurn {
		t.Fatalf("Shoot() out of turn = %v, want ErrNotOnTurn", err)
	}

	// a hit keeps the shooter on turn
	result, err := g.Shoot(alice, models.Position{Row: 0, Col: 0})
	if err != nil || result.Outcome != Hit {
		t.Fatalf("Shoot() at a ship = %v, %v, want a hit", result, err)
	}

	// a miss passes the turn
	result, err = g.Shoot(alice, models.Position{Row: 9, Col: 9})
	if err != nil || result.Outcome != Missed {
		t.Fatalf("Shoot() at water = %v, %v, want a miss", result, err)
	}

	if _, err := g.Shoot(alice, models.Position{Row: 0, Col: 1}); err != ErrNotOnTurn {
		t.Errorf("alice must not be on turn after a miss, got %v", err)
	}

	if _, err := g.Shoot(bob, models.Position{Row: 9, Col: 9}); err != nil {
		t.Errorf("bob must be on turn after alices miss, got %v", err)
	}
}

func TestShootSunk(t *testing.T) {
	g := playingGame(t)

	result, err := g.Shoot(alice, models.Position{Row: 8, Col: 0})
	if err != nil {
		t.Fatalf("Shoot() failed: %v", err)
	}

	if result.Outcome != Sunk || result.Kind != models.PatrolBoat {
		t.Fatalf("Shoot() at the patrol boat = %+v, want it sunk", result)
	}

	want := models.Placement{Position: models.Position{Row: 8, Col: 0}, Orientation: models.East}
	if result.Placement != want {
		t.Errorf("sunk placement = %s, want %s", result.Placement, want)
	}

	if _, over := g.Winner(); over {
		t.Error("one sunk ship must not end the game")
	}
}

func TestShootRepeatedHit(t *testing.T) {
	g := playingGame(t)

	if _, err := g.Shoot(alice, models.Position{Row: 2, Col: 0}); err != nil {
		t.Fatalf("Shoot() failed: %v", err)
	}

	// a repeated shot at a hit cell reports a hit and changes nothing
	result, err := g.Shoot(alice, models.Position{Row: 2, Col: 0})
	if err != nil || result.Outcome != Hit {
		t.Fatalf("repeated Shoot() = %v, %v, want a hit", result, err)
	}

	state := g.State(bob)
	if len(state.PlayerHits) != 1 {
		t.Errorf("bob has %d hit cells, want 1", len(state.PlayerHits))
	}
}

func TestShootRepeatedMiss(t *testing.T) {
	g := playingGame(t)

	if _, err := g.Shoot(alice, models.Position{Row: 9, Col: 9}); err != nil {
		t.Fatalf("Shoot() failed: %v", err)
	}
	if _, err := g.Shoot(bob, models.Position{Row: 9, Col: 9}); err != nil {
		t.Fatalf("Shoot() failed: %v", err)
	}

	// shooting the same water again misses again and passes the turn
	result, err := g.Shoot(alice, models.Position{Row: 9, Col: 9})
	if err != nil || result.Outcome != Missed {
		t.Fatalf("repeated miss = %v, %v, want a miss", result, err)
	}
	if _, err := g.Shoot(bob, models.Position{Row: 9, Col: 8}); err != nil {
		t.Errorf("bob must be on turn, got %v", err)
	}
}

func TestWinner(t *testing.T) {
	g := playingGame(t)

	// every hit keeps alice on turn, so she can sweep the whole fleet
	for _, kind := range models.ShipKinds() {
		placement := testLayout().Ships[kind]
		row := int(placement.Position.Row)
		col := int(placement.Position.Col)
		incRow, incCol := placement.Orientation.Delta()

		for i := uint8(0); i < kind.Cells(); i++ {
			if _, err := g.Shoot(alice, models.Position{Row: uint8(row), Col: uint8(col)}); err != nil {
				t.Fatalf("Shoot() at %d,%d failed: %v", row, col, err)
			}
			row += incRow
			col += incCol
		}
	}

	winner, over := g.Winner()
	if !over || winner != alice {
		t.Errorf("Winner() = %v, %v, want alice", winner, over)
	}
}

func TestState(t *testing.T) {
	g := playingGame(t)

	g.Shoot(alice, models.Position{Row: 8, Col: 0}) // sinks the patrol boat
	g.Shoot(alice, models.Position{Row: 9, Col: 9}) // miss, turn passes

	state := g.State(alice)

	if state.OnTurn != models.Opponent {
		t.Errorf("alice sees OnTurn = %s, want opponent", state.OnTurn)
	}
	if len(state.OpponentHits) != 1 || len(state.OpponentMisses) != 1 {
		t.Errorf("alice sees %d hits and %d misses on the opponents board, want 1 and 1",
			len(state.OpponentHits), len(state.OpponentMisses))
	}
	if len(state.PlayerHits) != 0 || len(state.PlayerMisses) != 0 {
		t.Errorf("alice sees shots on her own board before bob shot")
	}
	if _, ok := state.SunkShips[models.PatrolBoat]; !ok || len(state.SunkShips) != 1 {
		t.Errorf("alice sees sunk ships %s, want just the patrol boat", state.SunkShips)
	}

	state = g.State(bob)
	if state.OnTurn != models.You {
		t.Errorf("bob sees OnTurn = %s, want you", state.OnTurn)
	}
	if len(state.PlayerHits) != 1 {
		t.Errorf("bob sees %d hit cells on his board, want 1", len(state.PlayerHits))
	}
	if len(state.SunkShips) != 0 {
		t.Errorf("bob sees sunk ships %s on alices board", state.SunkShips)
	}
}
