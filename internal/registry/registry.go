package registry

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/bingoduel/bingo-backend/internal/game"
	"github.com/bingoduel/bingo-backend/internal/metrics"
	"github.com/bingoduel/bingo-backend/internal/room"
)

type Msg interface{ isRegistryMsg() }

// CreateRoom makes a fresh room and seats the creator at seat 1. The
// create outcome lands on Reply; the seat assignment follows on
// JoinReply from the room itself.
type CreateRoom struct {
	Code      string
	ConnID    string
	Name      string
	Outbox    chan room.Notice
	JoinReply chan room.JoinReply
	Reply     chan Reply
}

// JoinRoom forwards a seat request to an existing room.
type JoinRoom struct {
	Code      string
	ConnID    string
	Name      string
	Outbox    chan room.Notice
	JoinReply chan room.JoinReply
	Reply     chan Reply
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

// RemoveRoom is posted by a room's onEmpty hook once its last player
// leaves; the room has already stopped itself.
type RemoveRoom struct {
	Code string
}

type Shutdown struct{}

func (CreateRoom) isRegistryMsg() {}
func (JoinRoom) isRegistryMsg()   {}
func (GetRoom) isRegistryMsg()    {}
func (RemoveRoom) isRegistryMsg() {}
func (Shutdown) isRegistryMsg()   {}

type Reply struct {
	Room *room.Room
	Err  error
}

// Registry owns the process-wide room table. Lookup and create/remove
// are serialized here; everything inside a room is serialized by the
// room's own loop.
type Registry struct {
	inbox  chan Msg
	rooms  map[string]*room.Room
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

func NewRegistry(parent context.Context, log *zap.Logger) *Registry {
	ctx, cancel := context.WithCancel(parent)
	reg := &Registry{
		inbox:  make(chan Msg, 64),
		rooms:  make(map[string]*room.Room),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
	go reg.loop()
	return reg
}

func (reg *Registry) Inbox() chan<- Msg { return reg.inbox }

func (reg *Registry) loop() {
	for {
		select {
		case <-reg.ctx.Done():
			reg.shutdown()
			return

		case m := <-reg.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				code := normalize(msg.Code)
				if reg.rooms[code] != nil {
					msg.Reply <- Reply{Err: game.ErrRoomExists}
					break
				}
				rm := room.NewRoom(reg.ctx, code, reg.log, reg.dropWhenEmpty)
				reg.rooms[code] = rm
				metrics.RoomsCreated.Inc()
				metrics.ActiveRooms.Set(float64(len(reg.rooms)))
				// The room's inbox is fresh, so the creator's join is
				// the first message it processes and takes seat 1.
				rm.Inbox() <- room.Join{ConnID: msg.ConnID, Name: msg.Name, Outbox: msg.Outbox, Reply: msg.JoinReply}
				msg.Reply <- Reply{Room: rm}
				reg.log.Info("room created", zap.String("room", code))

			case JoinRoom:
				code := normalize(msg.Code)
				rm := reg.rooms[code]
				if rm == nil {
					msg.Reply <- Reply{Err: game.ErrRoomNotFound}
					break
				}
				rm.Inbox() <- room.Join{ConnID: msg.ConnID, Name: msg.Name, Outbox: msg.Outbox, Reply: msg.JoinReply}
				msg.Reply <- Reply{Room: rm}

			case GetRoom:
				msg.Reply <- reg.rooms[normalize(msg.Code)] // May be nil

			case RemoveRoom:
				delete(reg.rooms, normalize(msg.Code))
				metrics.ActiveRooms.Set(float64(len(reg.rooms)))
				reg.log.Info("room removed", zap.String("room", msg.Code))

			case Shutdown:
				reg.shutdown()
				return
			}
		}
	}
}

func (reg *Registry) shutdown() {
	for _, rm := range reg.rooms {
		rm.Inbox() <- room.Shutdown{}
	}
	clear(reg.rooms)
	metrics.ActiveRooms.Set(0)
	reg.cancel()
}

// dropWhenEmpty runs on the emptied room's goroutine; the delete itself
// happens on the registry loop.
func (reg *Registry) dropWhenEmpty(code string) {
	select {
	case reg.inbox <- RemoveRoom{Code: code}:
	case <-reg.ctx.Done():
	}
}

// Room identifiers are case-insensitive; the table is keyed upper-case.
func normalize(code string) string {
	return strings.ToUpper(code)
}
