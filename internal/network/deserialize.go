package network

import "battleships/internal/models"

// splitMessage splits a framed message text into its header and payload.
func splitMessage(serialized string) (string, *Payload) {
	i := find(serialized, PayloadStart, EscapeChar)
	if i < 0 {
		return serialized, EmptyPayload()
	}
	return serialized[:i], parsePayload(serialized[i+1:])
}

// ParseClientMessage deserializes a client message from a framed message text.
func ParseClientMessage(serialized string) (ClientMessage, error) {
	header, payload := splitMessage(serialized)

	switch header {
	case "alive":
		return Alive{}, nil
	case "login":
		nickname, err := takeNickname(payload)
		if err != nil {
			return nil, err
		}
		return Login{Nickname: nickname}, nil
	case "join_game":
		return JoinGame{}, nil
	case "layout":
		layout, err := takeLayout(payload)
		if err != nil {
			return nil, err
		}
		return Layout{Layout: layout}, nil
	case "shoot":
		position, err := takePosition(payload)
		if err != nil {
			return nil, err
		}
		return Shoot{Position: position}, nil
	case "leave_game":
		return LeaveGame{}, nil
	case "logout":
		return LogOut{}, nil
	}

	return nil, newError(UnknownHeader)
}

// ParseServerMessage deserializes a server message from a framed message
// text. The server never parses its own messages; this is the client side
// of the protocol and the reference decoder for the codec round-trips.
func ParseServerMessage(serialized string) (ServerMessage, error) {
	header, payload := splitMessage(serialized)

	switch header {
	case "illegal_state":
		return IllegalState{}, nil
	case "alive_ok":
		return AliveOk{}, nil
	case "login_ok":
		return LoginOk{}, nil
	case "login_restored":
		state, err := takeRestoreState(payload)
		if err != nil {
			return nil, err
		}
		return LoginRestored{State: state}, nil
	case "login_full":
		return LoginFull{}, nil
	case "login_taken":
		return LoginTaken{}, nil
	case "join_game_wait":
		return JoinGameWait{}, nil
	case "join_game_ok":
		opponent, err := takeNickname(payload)
		if err != nil {
			return nil, err
		}
		return JoinGameOk{Opponent: opponent}, nil
	case "layout_ok":
		return LayoutOk{}, nil
	case "layout_fail":
		return LayoutFail{}, nil
	case "shoot_hit":
		return ShootHit{}, nil
	case "shoot_missed":
		return ShootMissed{}, nil
	case "shoot_sunk":
		kind, err := takeShipKind(payload)
		if err != nil {
			return nil, err
		}
		placement, err := takePlacement(payload)
		if err != nil {
			return nil, err
		}
		return ShootSunk{Kind: kind, Placement: placement}, nil
	case "leave_game_ok":
		return LeaveGameOk{}, nil
	case "logout_ok":
		return LogoutOk{}, nil
	case "disconnect":
		return Disconnect{}, nil
	case "opponent_joined":
		opponent, err := takeNickname(payload)
		if err != nil {
			return nil, err
		}
		return OpponentJoined{Opponent: opponent}, nil
	case "opponent_ready":
		return OpponentReady{}, nil
	case "opponent_offline":
		return OpponentOffline{}, nil
	case "opponent_left":
		return OpponentLeft{}, nil
	case "opponent_missed":
		position, err := takePosition(payload)
		if err != nil {
			return nil, err
		}
		return OpponentMissed{Position: position}, nil
	case "opponent_hit":
		position, err := takePosition(payload)
		if err != nil {
			return nil, err
		}
		return OpponentHit{Position: position}, nil
	case "game_over":
		winner, err := takeWho(payload)
		if err != nil {
			return nil, err
		}
		return GameOver{Winner: winner}, nil
	}

	return nil, newError(UnknownHeader)
}

func takeNickname(p *Payload) (models.Nickname, error) {
	item, err := p.TakeString()
	if err != nil {
		return "", structError(StructNickname, err)
	}

	nickname, err := models.NewNickname(item)
	if err != nil {
		return "", structError(StructNickname, err)
	}

	return nickname, nil
}

func takePosition(p *Payload) (models.Position, error) {
	row, err := p.TakeUint8()
	if err != nil {
		return models.Position{}, structError(StructPosition, err)
	}

	col, err := p.TakeUint8()
	if err != nil {
		return models.Position{}, structError(StructPosition, err)
	}

	position, err := models.NewPosition(row, col)
	if err != nil {
		return models.Position{}, structError(StructPosition, err)
	}

	return position, nil
}

func takeOrientation(p *Payload) (models.Orientation, error) {
	item, err := p.TakeString()
	if err != nil {
		return 0, structError(StructOrientation, err)
	}

	switch item {
	case "east":
		return models.East, nil
	case "north":
		return models.North, nil
	case "west":
		return models.West, nil
	case "south":
		return models.South, nil
	}

	return 0, structError(StructOrientation, newError(InvalidEnumValue))
}

func takeShipKind(p *Payload) (models.ShipKind, error) {
	item, err := p.TakeString()
	if err != nil {
		return 0, structError(StructShipKind, err)
	}

	switch item {
	case "A":
		return models.AircraftCarrier, nil
	case "B":
		return models.Battleship, nil
	case "C":
		return models.Cruiser, nil
	case "D":
		return models.Destroyer, nil
	case "P":
		return models.PatrolBoat, nil
	}

	return 0, structError(StructShipKind, newError(InvalidEnumValue))
}

func takeWho(p *Payload) (models.Who, error) {
	item, err := p.TakeString()
	if err != nil {
		return 0, structError(StructWho, err)
	}

	switch item {
	case "you":
		return models.You, nil
	case "opponent":
		return models.Opponent, nil
	}

	return 0, structError(StructWho, newError(InvalidEnumValue))
}

func takePlacement(p *Payload) (models.Placement, error) {
	position, err := takePosition(p)
	if err != nil {
		return models.Placement{}, structError(StructPlacement, err)
	}

	orientation, err := takeOrientation(p)
	if err != nil {
		return models.Placement{}, structError(StructPlacement, err)
	}

	return models.Placement{Position: position, Orientation: orientation}, nil
}

func takeShipsPlacements(p *Payload) (models.ShipsPlacements, error) {
	size, err := p.TakeUint8()
	if err != nil {
		return nil, structError(StructShipsPlacements, err)
	}

	placements := make(models.ShipsPlacements, size)

	for i := uint8(0); i < size; i++ {
		kind, err := takeShipKind(p)
		if err != nil {
			return nil, structError(StructShipsPlacements, err)
		}

		placement, err := takePlacement(p)
		if err != nil {
			return nil, structError(StructShipsPlacements, err)
		}

		placements[kind] = placement
	}

	return placements, nil
}

// takeLayout deserializes a layout. A layout with missing or duplicate
// ship kinds parses fine; it is refused later by the layout validation.
func takeLayout(p *Payload) (models.Layout, error) {
	placements, err := takeShipsPlacements(p)
	if err != nil {
		return models.Layout{}, structError(StructLayout, err)
	}

	return models.NewLayout(placements), nil
}

func takeHits(p *Payload) (models.Hits, error) {
	size, err := p.TakeUint8()
	if err != nil {
		return nil, structError(StructHits, err)
	}

	hits := make(models.Hits, 0, size)

	for i := uint8(0); i < size; i++ {
		position, err := takePosition(p)
		if err != nil {
			return nil, structError(StructHits, err)
		}
		hits = append(hits, position)
	}

	return hits, nil
}

func takeRestoreState(p *Payload) (models.RestoreState, error) {
	item, err := p.TakeString()
	if err != nil {
		return nil, structError(StructRestoreState, err)
	}

	switch item {
	case "lobby":
		return models.RestoreLobby{}, nil
	case "game":
		game := models.RestoreGame{}

		if game.Opponent, err = takeNickname(p); err != nil {
			return nil, structError(StructRestoreState, err)
		}
		if game.OnTurn, err = takeWho(p); err != nil {
			return nil, structError(StructRestoreState, err)
		}
		if game.PlayerHits, err = takeHits(p); err != nil {
			return nil, structError(StructRestoreState, err)
		}
		if game.PlayerMisses, err = takeHits(p); err != nil {
			return nil, structError(StructRestoreState, err)
		}
		if game.Layout, err = takeLayout(p); err != nil {
			return nil, structError(StructRestoreState, err)
		}
		if game.OpponentHits, err = takeHits(p); err != nil {
			return nil, structError(StructRestoreState, err)
		}
		if game.OpponentMisses, err = takeHits(p); err != nil {
			return nil, structError(StructRestoreState, err)
		}
		if game.SunkShips, err = takeShipsPlacements(p); err != nil {
			return nil, structError(StructRestoreState, err)
		}

		return game, nil
	}

	return nil, structError(StructRestoreState, newError(InvalidEnumValue))
}
