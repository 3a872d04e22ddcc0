package network

import (
	"reflect"
	"testing"

	"battleships/internal/models"
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

func TestClientMessageSerialize(t *testing.T) {
	tests := []struct {
		message ClientMessage
		want    string
	}{
		{Alive{}, "alive"},
		{Login{Nickname: "Karel"}, "login:Karel"},
		{JoinGame{}, "join_game"},
		{Layout{Layout: testLayout()}, "layout:5;A;0;0;east;B;2;0;east;C;4;0;east;D;6;0;east;P;8;0;east"},
		{Shoot{Position: models.Position{Row: 5, Col: 6}}, "shoot:5;6"},
		{LeaveGame{}, "leave_game"},
		{LogOut{}, "logout"},
	}

	for _, tt := range tests {
		if got := tt.message.Serialize(); got != tt.want {
			t.Errorf("%s serializes to %q, want %q", tt.message, got, tt.want)
		}
	}
}

func TestServerMessageSerialize(t *testing.T) {
	sunk := ShootSunk{
		Kind:      models.PatrolBoat,
		Placement: models.Placement{Position: models.Position{Row: 8, Col: 0}, Orientation: models.East},
	}

	tests := []struct {
		message ServerMessage
		want    string
	}{
		{IllegalState{}, "illegal_state"},
		{AliveOk{}, "alive_ok"},
		{LoginOk{}, "login_ok"},
		{LoginRestored{State: models.RestoreLobby{}}, "login_restored:lobby"},
		{LoginFull{}, "login_full"},
		{LoginTaken{}, "login_taken"},
		{JoinGameWait{}, "join_game_wait"},
		{JoinGameOk{Opponent: "Pepa"}, "join_game_ok:Pepa"},
		{LayoutOk{}, "layout_ok"},
		{LayoutFail{}, "layout_fail"},
		{ShootHit{}, "shoot_hit"},
		{ShootMissed{}, "shoot_missed"},
		{sunk, "shoot_sunk:P;8;0;east"},
		{LeaveGameOk{}, "leave_game_ok"},
		{LogoutOk{}, "logout_ok"},
		{Disconnect{}, "disconnect"},
		{OpponentJoined{Opponent: "Pepa"}, "opponent_joined:Pepa"},
		{OpponentReady{}, "opponent_ready"},
		{OpponentOffline{}, "opponent_offline"},
		{OpponentLeft{}, "opponent_left"},
		{OpponentMissed{Position: models.Position{Row: 0, Col: 1}}, "opponent_missed:0;1"},
		{OpponentHit{Position: models.Position{Row: 9, Col: 9}}, "opponent_hit:9;9"},
		{GameOver{Winner: models.You}, "game_over:you"},
	}

	for _, tt := range tests {
		if got := tt.message.Serialize(); got != tt.want {
			t.Errorf("%s serializes to %q, want %q", tt.message, got, tt.want)
		}
	}
}

func TestParseClientMessageRoundTrip(t *testing.T) {
	messages := []ClientMessage{
		Alive{},
		Login{Nickname: "Karel"},
		JoinGame{},
		Layout{Layout: testLayout()},
		Shoot{Position: models.Position{Row: 3, Col: 7}},
		LeaveGame{},
		LogOut{},
	}

	for _, message := range messages {
		parsed, err := ParseClientMessage(message.Serialize())
		if err != nil {
			t.Fatalf("ParseClientMessage(%q) failed: %v", message.Serialize(), err)
		}
		if !reflect.DeepEqual(parsed, message) {
			t.Errorf("round trip of %s gave %s", message, parsed)
		}
	}
}

func TestParseServerMessageRoundTrip(t *testing.T) {
	restored := LoginRestored{State: models.RestoreGame{
		Opponent:       "Pepa",
		OnTurn:         models.Opponent,
		PlayerHits:     models.Hits{{Row: 1, Col: 1}},
		PlayerMisses:   models.Hits{{Row: 2, Col: 2}, {Row: 3, Col: 3}},
		Layout:         testLayout(),
		OpponentHits:   models.Hits{{Row: 4, Col: 4}},
		OpponentMisses: models.Hits{{Row: 5, Col: 5}},
		SunkShips: models.ShipsPlacements{
			models.PatrolBoat: {Position: models.Position{Row: 8, Col: 0}, Orientation: models.East},
		},
	}}

	messages := []ServerMessage{
		IllegalState{},
		LoginRestored{State: models.RestoreLobby{}},
		restored,
		JoinGameOk{Opponent: "Pepa"},
		ShootSunk{
			Kind:      models.Cruiser,
			Placement: models.Placement{Position: models.Position{Row: 4, Col: 0}, Orientation: models.East},
		},
		OpponentHit{Position: models.Position{Row: 9, Col: 0}},
		GameOver{Winner: models.Opponent},
	}

	for _, message := range messages {
		parsed, err := ParseServerMessage(message.Serialize())
		if err != nil {
			t.Fatalf("ParseServerMessage(%q) failed: %v", message.Serialize(), err)
		}
		if !reflect.DeepEqual(parsed, message) {
			t.Errorf("round trip of %s gave %s", message, parsed)
		}
	}
}

func TestParseClientMessageErrors(t *testing.T) {
	tests := []struct {
		name       string
		serialized string
		kind       DeserializeErrorKind
	}{
		{"unknown header", "frobnicate", UnknownHeader},
		{"empty", "", UnknownHeader},
		{"missing item", "shoot:5", StructDeserialization},
		{"position out of range", "shoot:10;0", StructDeserialization},
		{"not a number", "shoot:five;6", StructDeserialization},
		{"bad orientation", "layout:5;A;0;0;easterly;B;2;0;east;C;4;0;east;D;6;0;east;P;8;0;east", StructDeserialization},
		{"bad ship kind", "layout:1;Z;0;0;east", StructDeserialization},
		{"short nickname", "login:ab", StructDeserialization},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseClientMessage(tt.serialized)
			if err == nil {
				t.Fatalf("ParseClientMessage(%q) should have failed", tt.serialized)
			}
			if e, ok := err.(*DeserializeError); !ok || e.Kind != tt.kind {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

// A layout that names the same ship kind twice parses into fewer
// placements. The message itself is fine; the layout is refused later
// by the validation.
func TestParseDuplicateShipKind(t *testing.T) {
	parsed, err := ParseClientMessage("layout:5;A;0;0;east;A;2;0;east;C;4;0;east;D;6;0;east;P;8;0;east")
	if err != nil {
		t.Fatalf("ParseClientMessage() failed: %v", err)
	}

	layout, ok := parsed.(Layout)
	if !ok {
		t.Fatalf("parsed into %T", parsed)
	}

	if layout.Layout.IsValid() {
		t.Error("a layout with a duplicate ship kind must not validate")
	}
}
