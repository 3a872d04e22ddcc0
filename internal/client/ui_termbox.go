package client

import (
	"fmt"

	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"

	"battleships/internal/models"
	"battleships/internal/network"
)

type phase int

const (
	phaseLobby phase = iota
	phaseWaiting
	phaseLayout
	phasePlaying
	phaseOver
)

// UI is the termbox interface showing the players own board on the left
// and the opponents board with the aiming cursor on the right.
type UI struct {
	nickname models.Nickname
	opponent models.Nickname
	phase    phase
	status   string

	layout         models.Layout
	layoutAccepted bool
	opponentReady  bool
	// the player that waited for the opponent shoots first
	waited bool

	onTurn bool
	cursor models.Position
	// the position of the shot awaiting the server verdict
	pendingShot models.Position

	// shots the opponent made on our board
	theirHits   models.Hits
	theirMisses models.Hits
	// shots we made on the opponents board
	ourHits   models.Hits
	ourMisses models.Hits
	sunk      models.ShipsPlacements

	quit bool
}

// NewUI creates the UI in the lobby phase.
func NewUI(nickname models.Nickname) *UI {
	return &UI{
		nickname: nickname,
		status:   "press j to join a game, q to quit",
		sunk:     make(models.ShipsPlacements),
	}
}

// Init initializes the termbox screen.
func (ui *UI) Init() error {
	return termbox.Init()
}

// Close closes the termbox screen.
func (ui *UI) Close() {
	termbox.Close()
}

// Quit reports whether the user asked to leave.
func (ui *UI) Quit() bool {
	return ui.quit
}

// resetGame drops all per-game state.
func (ui *UI) resetGame() {
	ui.opponent = ""
	ui.phase = phaseLobby
	ui.layout = models.Layout{}
	ui.layoutAccepted = false
	ui.opponentReady = false
	ui.waited = false
	ui.onTurn = false
	ui.theirHits = nil
	ui.theirMisses = nil
	ui.ourHits = nil
	ui.ourMisses = nil
	ui.sunk = make(models.ShipsPlacements)
}

// enterLayout starts the layout phase with a random proposal.
func (ui *UI) enterLayout() {
	ui.phase = phaseLayout
	ui.layout = RandomLayout()
	ui.status = "r rerolls the layout, enter submits it"
}

// maybeStartPlaying switches to the playing phase once both layouts are in.
func (ui *UI) maybeStartPlaying() {
	if ui.phase == phaseLayout && ui.layoutAccepted && ui.opponentReady {
		ui.phase = phasePlaying
		ui.onTurn = ui.waited
		if ui.onTurn {
			ui.status = "your turn, aim with arrows and press enter"
		} else {
			ui.status = "opponents turn"
		}
	}
}

// Apply updates the UI state with a server message.
func (ui *UI) Apply(message network.ServerMessage) {
	switch m := message.(type) {
	case network.AliveOk:
	case network.IllegalState:
		ui.status = "that is not possible right now"

	case network.LoginOk:
		ui.phase = phaseLobby
		ui.status = "logged in, press j to join a game"
	case network.LoginRestored:
		ui.applyRestore(m.State)
	case network.LoginTaken:
		ui.status = "nickname is already taken"
		ui.quit = true
	case network.LoginFull:
		ui.status = "server is full"
		ui.quit = true

	case network.JoinGameWait:
		ui.phase = phaseWaiting
		ui.waited = true
		ui.status = "waiting for an opponent, l cancels"
	case network.JoinGameOk:
		ui.opponent = m.Opponent
		ui.enterLayout()
	case network.OpponentJoined:
		ui.opponent = m.Opponent
		ui.enterLayout()

	case network.LayoutOk:
		ui.layoutAccepted = true
		ui.status = "layout accepted, waiting for the opponent"
		ui.maybeStartPlaying()
	case network.LayoutFail:
		ui.status = "layout refused, r rerolls it"
	case network.OpponentReady:
		ui.opponentReady = true
		ui.status = "opponent is ready"
		ui.maybeStartPlaying()

	case network.ShootMissed:
		ui.ourMisses = append(ui.ourMisses, ui.pendingShot)
		ui.onTurn = false
		ui.status = "missed, opponents turn"
	case network.ShootHit:
		ui.ourHits = append(ui.ourHits, ui.pendingShot)
		ui.status = "hit, shoot again"
	case network.ShootSunk:
		ui.ourHits = append(ui.ourHits, ui.pendingShot)
		ui.sunk[m.Kind] = m.Placement
		ui.status = fmt.Sprintf("sunk the opponents %s, shoot again", m.Kind)

	case network.OpponentMissed:
		ui.theirMisses = append(ui.theirMisses, m.Position)
		ui.onTurn = true
		ui.status = "opponent missed, your turn"
	case network.OpponentHit:
		ui.theirHits = append(ui.theirHits, m.Position)
		ui.status = "opponent hit your ship"

	case network.GameOver:
		ui.phase = phaseOver
		if m.Winner == models.You {
			ui.status = "you won! l returns to the lobby"
		} else {
			ui.status = "you lost. l returns to the lobby"
		}

	case network.OpponentOffline:
		ui.status = "opponent went offline"
	case network.OpponentLeft:
		ui.resetGame()
		ui.status = "opponent left the game, press j to join another"
	case network.LeaveGameOk:
		ui.resetGame()
		ui.status = "left the game, press j to join another"

	case network.LogoutOk:
		ui.quit = true
	case network.Disconnect:
		ui.status = "server is shutting down"
		ui.quit = true
	}
}

// applyRestore fills the UI from a reconnect snapshot.
func (ui *UI) applyRestore(state models.RestoreState) {
	switch s := state.(type) {
	case models.RestoreLobby:
		ui.resetGame()
		ui.status = "reconnected into the lobby"
	case models.RestoreGame:
		ui.resetGame()
		ui.opponent = s.Opponent
		ui.phase = phasePlaying
		ui.layout = s.Layout
		ui.layoutAccepted = true
		ui.opponentReady = true
		ui.onTurn = s.OnTurn == models.You
		ui.theirHits = s.PlayerHits
		ui.theirMisses = s.PlayerMisses
		ui.ourHits = s.OpponentHits
		ui.ourMisses = s.OpponentMisses
		for kind, placement := range s.SunkShips {
			ui.sunk[kind] = placement
		}
		ui.status = "reconnected into the game"
	}
}

// HandleKey reacts to a key press and returns the messages to send.
func (ui *UI) HandleKey(ev termbox.Event) []network.ClientMessage {
	if ev.Key == termbox.KeyEsc || ev.Ch == 'q' {
		ui.quit = true
		return []network.ClientMessage{network.LogOut{}}
	}

	switch ui.phase {
	case phaseLobby:
		if ev.Ch == 'j' {
			return []network.ClientMessage{network.JoinGame{}}
		}
	case phaseWaiting:
		if ev.Ch == 'l' {
			return []network.ClientMessage{network.LeaveGame{}}
		}
	case phaseLayout:
		switch {
		case ev.Ch == 'r' && !ui.layoutAccepted:
			ui.layout = RandomLayout()
		case ev.Key == termbox.KeyEnter && !ui.layoutAccepted:
			return []network.ClientMessage{network.Layout{Layout: ui.layout}}
		case ev.Ch == 'l':
			return []network.ClientMessage{network.LeaveGame{}}
		}
	case phasePlaying:
		switch {
		case ev.Key == termbox.KeyArrowUp && ui.cursor.Row > 0:
			ui.cursor.Row--
		case ev.Key == termbox.KeyArrowDown && ui.cursor.Row < models.BoardSize-1:
			ui.cursor.Row++
		case ev.Key == termbox.KeyArrowLeft && ui.cursor.Col > 0:
			ui.cursor.Col--
		case ev.Key == termbox.KeyArrowRight && ui.cursor.Col < models.BoardSize-1:
			ui.cursor.Col++
		case ev.Key == termbox.KeyEnter && ui.onTurn:
			ui.pendingShot = ui.cursor
			return []network.ClientMessage{network.Shoot{Position: ui.cursor}}
		case ev.Ch == 'l':
			return []network.ClientMessage{network.LeaveGame{}}
		}
	case phaseOver:
		if ev.Ch == 'l' || ev.Key == termbox.KeyEnter {
			ui.resetGame()
			ui.status = "press j to join a game"
		}
	}

	return nil
}

const (
	boardTop   = 3
	ownLeft    = 2
	targetLeft = 30
)

// Render draws the whole screen.
func (ui *UI) Render() {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

	header := fmt.Sprintf("you: %s", ui.nickname)
	if ui.opponent != "" {
		header += fmt.Sprintf("   opponent: %s", ui.opponent)
	}
	drawText(ownLeft, 1, header, termbox.ColorWhite, termbox.ColorDefault)

	ui.drawOwnBoard()
	if ui.phase == phasePlaying || ui.phase == phaseOver {
		ui.drawTargetBoard()
	}

	drawText(ownLeft, boardTop+models.BoardSize+3, ui.status, termbox.ColorYellow, termbox.ColorDefault)

	termbox.Flush()
}

func (ui *UI) drawOwnBoard() {
	drawBoardFrame(ownLeft, boardTop, "your board")

	var ships [models.BoardSize][models.BoardSize]bool
	for kind, placement := range ui.layout.Ships {
		row := int(placement.Position.Row)
		col := int(placement.Position.Col)
		incRow, incCol := placement.Orientation.Delta()

		for i := uint8(0); i < kind.Cells(); i++ {
			if row >= 0 && row < models.BoardSize && col >= 0 && col < models.BoardSize {
				ships[row][col] = true
			}
			row += incRow
			col += incCol
		}
	}

	for r := 0; r < models.BoardSize; r++ {
		for c := 0; c < models.BoardSize; c++ {
			ch := '.'
			fg := termbox.ColorBlue
			if ships[r][c] {
				ch = 'O'
				fg = termbox.ColorGreen
			}
			setBoardCell(ownLeft, boardTop, r, c, ch, fg, termbox.ColorDefault)
		}
	}

	for _, p := range ui.theirMisses {
		setBoardCell(ownLeft, boardTop, int(p.Row), int(p.Col), '*', termbox.ColorWhite, termbox.ColorDefault)
	}
	for _, p := range ui.theirHits {
		setBoardCell(ownLeft, boardTop, int(p.Row), int(p.Col), 'X', termbox.ColorRed, termbox.ColorDefault)
	}
}

func (ui *UI) drawTargetBoard() {
	drawBoardFrame(targetLeft, boardTop, "opponents board")

	for r := 0; r < models.BoardSize; r++ {
		for c := 0; c < models.BoardSize; c++ {
			setBoardCell(targetLeft, boardTop, r, c, '.', termbox.ColorBlue, termbox.ColorDefault)
		}
	}

	for _, p := range ui.ourMisses {
		setBoardCell(targetLeft, boardTop, int(p.Row), int(p.Col), '*', termbox.ColorWhite, termbox.ColorDefault)
	}
	for _, p := range ui.ourHits {
		setBoardCell(targetLeft, boardTop, int(p.Row), int(p.Col), 'X', termbox.ColorRed, termbox.ColorDefault)
	}

	for kind, placement := range ui.sunk {
		row := int(placement.Position.Row)
		col := int(placement.Position.Col)
		incRow, incCol := placement.Orientation.Delta()

		for i := uint8(0); i < kind.Cells(); i++ {
			if row >= 0 && row < models.BoardSize && col >= 0 && col < models.BoardSize {
				setBoardCell(targetLeft, boardTop, row, col, '#', termbox.ColorMagenta, termbox.ColorDefault)
			}
			row += incRow
			col += incCol
		}
	}

	if ui.phase == phasePlaying {
		bg := termbox.ColorWhite
		setBoardCellBg(targetLeft, boardTop, int(ui.cursor.Row), int(ui.cursor.Col), bg)
	}
}

// drawBoardFrame draws the title and the row and column labels.
func drawBoardFrame(left, top int, title string) {
	drawText(left, top-1, title, termbox.ColorCyan, termbox.ColorDefault)

	for c := 0; c < models.BoardSize; c++ {
		termbox.SetCell(left+2+c*2, top, rune('0'+c), termbox.ColorCyan, termbox.ColorDefault)
	}
	for r := 0; r < models.BoardSize; r++ {
		termbox.SetCell(left, top+1+r, rune('0'+r), termbox.ColorCyan, termbox.ColorDefault)
	}
}

func setBoardCell(left, top, row, col int, ch rune, fg, bg termbox.Attribute) {
	termbox.SetCell(left+2+col*2, top+1+row, ch, fg, bg)
}

// setBoardCellBg repaints the background of a cell, keeping its rune.
func setBoardCellBg(left, top, row, col int, bg termbox.Attribute) {
	x := left + 2 + col*2
	y := top + 1 + row

	w, h := termbox.Size()
	if x >= w || y >= h {
		return
	}

	buf := termbox.CellBuffer()
	cell := buf[y*w+x]
	termbox.SetCell(x, y, cell.Ch, termbox.ColorBlack, bg)
}

// drawText draws the string, advancing by the real rune widths.
func drawText(x, y int, text string, fg, bg termbox.Attribute) {
	for _, r := range text {
		termbox.SetCell(x, y, r, fg, bg)
		x += runewidth.RuneWidth(r)
	}
}
