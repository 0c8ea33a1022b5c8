package room

import (
	"context"

	"go.uber.org/zap"

	"github.com/bingoduel/bingo-backend/internal/game"
	"github.com/bingoduel/bingo-backend/internal/metrics"
)

type Msg interface{ isRoomMsg() }

// Join seats a connection. The room answers on Reply with the assigned
// seat, or ErrRoomFull when both seats are taken.
type Join struct {
	ConnID string
	Name   string
	Outbox chan Notice // where this client wants to receive notices
	Reply  chan JoinReply
}

func (Join) isRoomMsg() {}

type JoinReply struct {
	Seat int
	Err  error
}

type Leave struct{ ConnID string }

func (Leave) isRoomMsg() {}

type FromClient struct {
	Cmd game.Command
}

func (FromClient) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

// GetState is test-only: reflect internal state without data races.
type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

type View struct {
	Version    int
	NumClients int
	State      game.State
}

// Notice is a single outbound event, already personalized for its
// recipient (seats and win/lose results differ per player).
type Notice struct {
	Kind    string // "gameStart" | "markNumber" | "gameResult"
	Version int
	Seat    int
	Players []string
	Value   int
	Name    string
	Seq     int
	Result  string // "win" | "lose"
	Actor   string // the winning player's name
}

const (
	NoticeGameStart  = "gameStart"
	NoticeMarkNumber = "markNumber"
	NoticeGameResult = "gameResult"
)

type Room struct {
	code    string
	inbox   chan Msg
	state   game.State
	version int
	clients map[string]chan Notice
	ctx     context.Context
	cancel  context.CancelFunc
	log     *zap.Logger
	onEmpty func(code string)
}

// NewRoom starts a room actor. onEmpty fires once, from the room's own
// goroutine, when the last player leaves; the registry uses it to drop
// the code from its table.
func NewRoom(parent context.Context, code string, log *zap.Logger, onEmpty func(code string)) *Room {
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		code:    code,
		inbox:   make(chan Msg, 64),
		state:   game.NewState(),
		clients: make(map[string]chan Notice),
		ctx:     ctx,
		cancel:  cancel,
		log:     log.With(zap.String("room", code)),
		onEmpty: onEmpty,
	}

	go r.loop()
	return r
}

// Inbox exposes the serialized mutation path; all room state changes go
// through it, one message at a time.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) Code() string { return r.code }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.handleJoin(msg)

			case Leave:
				r.handleLeave(msg)

			case FromClient:
				r.handleCommand(msg.Cmd)

			case GetState:
				msg.Reply <- View{
					Version:    r.version,
					NumClients: len(r.clients),
					State:      r.state,
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) handleJoin(msg Join) {
	// Seats never reopen: a room that has left Waiting is full for
	// late joiners even if a seat was vacated by a forfeit.
	if r.state.Phase != game.PhaseWaiting {
		msg.Reply <- JoinReply{Err: game.ErrRoomFull}
		return
	}

	newState, seat, err := game.AddPlayer(r.state, msg.ConnID, msg.Name)
	if err != nil {
		msg.Reply <- JoinReply{Err: err}
		return
	}

	r.state = newState
	r.clients[msg.ConnID] = msg.Outbox
	msg.Reply <- JoinReply{Seat: seat}
	r.log.Info("player joined", zap.String("name", msg.Name), zap.Int("seat", seat))

	if r.state.Phase == game.PhaseActive {
		r.startGame()
	}
}

// startGame tells both seats the duel is on; each client generates its
// own grid upon receipt.
func (r *Room) startGame() {
	r.version++
	names := make([]string, len(r.state.Players))
	for i, p := range r.state.Players {
		names[i] = p.Name
	}
	for _, p := range r.state.Players {
		r.sendTo(p.ConnID, Notice{
			Kind:    NoticeGameStart,
			Version: r.version,
			Seat:    p.Seat,
			Players: names,
		})
	}
	r.log.Info("game started")
}

func (r *Room) handleCommand(cmd game.Command) {
	events, newState, err := game.Apply(r.state, cmd)
	if err != nil {
		// Benign races (double click, late report) are absorbed: no
		// state change, no broadcast, no failure reply.
		r.log.Debug("command rejected",
			zap.String("type", string(cmd.Type)),
			zap.String("name", cmd.Name),
			zap.Error(err))
		return
	}

	r.state = newState
	for _, evt := range events {
		r.version++
		switch evt.Type {
		case game.EvtNumberMarked:
			metrics.ClaimsAccepted.Inc()
			r.broadcast(Notice{
				Kind:    NoticeMarkNumber,
				Version: r.version,
				Value:   evt.Value,
				Name:    evt.Name,
				Seq:     evt.Seq,
			})

		case game.EvtGameFinished:
			r.finishGame(evt.Winner)
		}
	}
}

// finishGame sends the terminal result: "win" to the winner, "lose" to
// everyone else. Finished is terminal; later commands fall out of
// game.Apply as ErrRoomNotActive.
func (r *Room) finishGame(winner string) {
	metrics.GamesFinished.Inc()
	for _, p := range r.state.Players {
		result := "lose"
		if p.Name == winner {
			result = "win"
		}
		r.sendTo(p.ConnID, Notice{
			Kind:    NoticeGameResult,
			Version: r.version,
			Result:  result,
			Actor:   winner,
		})
	}
	r.log.Info("game finished", zap.String("winner", winner))
}

func (r *Room) handleLeave(msg Leave) {
	if ch, ok := r.clients[msg.ConnID]; ok {
		close(ch)
		delete(r.clients, msg.ConnID)
	}

	newState, left, removed := game.RemovePlayer(r.state, msg.ConnID)
	if !removed {
		return
	}
	r.state = newState
	r.log.Info("player left", zap.String("name", left.Name))

	// Mid-game disconnect forfeits to the remaining player.
	if forfeited, ok := game.Forfeit(r.state); ok {
		r.state = forfeited
		r.version++
		r.finishGame(forfeited.Winner)
	}

	if len(r.state.Players) == 0 {
		if r.onEmpty != nil {
			r.onEmpty(r.code)
		}
		r.shutdown()
	}
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch) // Tell client no more notices
		delete(r.clients, id)
	}
	r.cancel()
}

func (r *Room) broadcast(n Notice) {
	for id, ch := range r.clients {
		select {
		case ch <- n:
			//ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(r.clients, id)
		}
	}
}

func (r *Room) sendTo(connID string, n Notice) {
	ch, ok := r.clients[connID]
	if !ok {
		return
	}
	select {
	case ch <- n:
	default:
		close(ch)
		delete(r.clients, connID)
	}
}
