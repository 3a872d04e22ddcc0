package network

import "battleships/internal/models"

// withPayload joins the header and the serialized payload. The payload
// start character is absent when the payload has no items.
func withPayload(header string, p *Payload) string {
	if s, ok := p.Serialize(); ok {
		return header + string(PayloadStart) + s
	}
	return header
}

func putNickname(p *Payload, n models.Nickname) {
	p.PutString(string(n))
}

func putShipKind(p *Payload, k models.ShipKind) {
	switch k {
	case models.AircraftCarrier:
		p.PutString("A")
	case models.Battleship:
		p.PutString("B")
	case models.Cruiser:
		p.PutString("C")
	case models.Destroyer:
		p.PutString("D")
	case models.PatrolBoat:
		p.PutString("P")
	}
}

func putPosition(p *Payload, pos models.Position) {
	p.PutInt(int(pos.Row))
	p.PutInt(int(pos.Col))
}

func putOrientation(p *Payload, o models.Orientation) {
	p.PutString(o.String())
}

func putWho(p *Payload, w models.Who) {
	p.PutString(w.String())
}

func putPlacement(p *Payload, placement models.Placement) {
	putPosition(p, placement.Position)
	putOrientation(p, placement.Orientation)
}

func putHits(p *Payload, hits models.Hits) {
	p.PutInt(len(hits))
	for _, pos := range hits {
		putPosition(p, pos)
	}
}

// putShipsPlacements serializes the placements in the fixed fleet order
// so that the wire form is deterministic.
func putShipsPlacements(p *Payload, ships models.ShipsPlacements) {
	p.PutInt(len(ships))
	for _, kind := range models.ShipKinds() {
		placement, ok := ships[kind]
		if !ok {
			continue
		}
		putShipKind(p, kind)
		putPlacement(p, placement)
	}
}

func putLayout(p *Payload, l models.Layout) {
	putShipsPlacements(p, l.Ships)
}

func putRestoreState(p *Payload, state models.RestoreState) {
	switch s := state.(type) {
	case models.RestoreLobby:
		p.PutString("lobby")
	case models.RestoreGame:
		p.PutString("game")
		putNickname(p, s.Opponent)
		putWho(p, s.OnTurn)
		putHits(p, s.PlayerHits)
		putHits(p, s.PlayerMisses)
		putLayout(p, s.Layout)
		putHits(p, s.OpponentHits)
		putHits(p, s.OpponentMisses)
		putShipsPlacements(p, s.SunkShips)
	}
}

// ---client messages---

func (Alive) Serialize() string    { return "alive" }
func (JoinGame) Serialize() string { return "join_game" }

func (m Login) Serialize() string {
	p := EmptyPayload()
	putNickname(p, m.Nickname)
	return withPayload("login", p)
}

func (m Layout) Serialize() string {
	p := EmptyPayload()
	putLayout(p, m.Layout)
	return withPayload("layout", p)
}

func (m Shoot) Serialize() string {
	p := EmptyPayload()
	putPosition(p, m.Position)
	return withPayload("shoot", p)
}

func (LeaveGame) Serialize() string { return "leave_game" }
func (LogOut) Serialize() string    { return "logout" }

// ---server messages---

func (IllegalState) Serialize() string { return "illegal_state" }
func (AliveOk) Serialize() string      { return "alive_ok" }
func (LoginOk) Serialize() string      { return "login_ok" }

func (m LoginRestored) Serialize() string {
	p := EmptyPayload()
	putRestoreState(p, m.State)
	return withPayload("login_restored", p)
}

func (LoginFull) Serialize() string    { return "login_full" }
func (LoginTaken) Serialize() string   { return "login_taken" }
func (JoinGameWait) Serialize() string { return "join_game_wait" }

func (m JoinGameOk) Serialize() string {
	p := EmptyPayload()
	putNickname(p, m.Opponent)
	return withPayload("join_game_ok", p)
}

func (LayoutOk) Serialize() string    { return "layout_ok" }
func (LayoutFail) Serialize() string  { return "layout_fail" }
func (ShootHit) Serialize() string    { return "shoot_hit" }
func (ShootMissed) Serialize() string { return "shoot_missed" }

func (m ShootSunk) Serialize() string {
	p := EmptyPayload()
	putShipKind(p, m.Kind)
	putPlacement(p, m.Placement)
	return withPayload("shoot_sunk", p)
}

func (LeaveGameOk) Serialize() string { return "leave_game_ok" }
func (LogoutOk) Serialize() string    { return "logout_ok" }
func (Disconnect) Serialize() string  { return "disconnect" }

func (m OpponentJoined) Serialize() string {
	p := EmptyPayload()
	putNickname(p, m.Opponent)
	return withPayload("opponent_joined", p)
}

func (OpponentReady) Serialize() string   { return "opponent_ready" }
func (OpponentOffline) Serialize() string { return "opponent_offline" }
func (OpponentLeft) Serialize() string    { return "opponent_left" }

func (m OpponentMissed) Serialize() string {
	p := EmptyPayload()
	putPosition(p, m.Position)
	return withPayload("opponent_missed", p)
}

func (m OpponentHit) Serialize() string {
	p := EmptyPayload()
	putPosition(p, m.Position)
	return withPayload("opponent_hit", p)
}

func (m GameOver) Serialize() string {
	p := EmptyPayload()
	putWho(p, m.Winner)
	return withPayload("game_over", p)
}
