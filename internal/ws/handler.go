package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bingoduel/bingo-backend/internal/game"
	"github.com/bingoduel/bingo-backend/internal/metrics"
	"github.com/bingoduel/bingo-backend/internal/registry"
	"github.com/bingoduel/bingo-backend/internal/room"
	"github.com/bingoduel/bingo-backend/internal/types"
)

const ackTimeout = 5 * time.Second

// session is one live connection. A connection belongs to at most one
// room for its whole lifetime (no reconnect/resume).
type session struct {
	connID string
	name   string
	rm     *room.Room
	outbox chan room.Notice
}

func Handler(reg *registry.Registry, log *zap.Logger, origins []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: origins,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		metrics.ConnectionsOpen.Inc()
		defer metrics.ConnectionsOpen.Dec()

		sess := &session{connID: uuid.NewString()}
		log := log.With(zap.String("conn", sess.connID))

		// Disconnect is observed by the room synchronously with the
		// reader exiting, whatever the phase.
		defer func() {
			if sess.rm != nil {
				sess.rm.Inbox() <- room.Leave{ConnID: sess.connID}
			}
		}()

		writeCtx, writeCancel := context.WithCancel(context.Background())
		defer writeCancel()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				// Otherwise, just exit (room.Leave in defer):
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeJSON(r.Context(), conn, types.ServerMessage{Type: "error", Error: "bad json"})
				continue
			}

			switch cm.Type {
			case "createRoom":
				ack := sess.attach(r.Context(), reg, cm, true)
				writeJSON(r.Context(), conn, ack)
				if ack.OK {
					go writer(writeCtx, conn, sess.outbox, log)
				}

			case "joinRoom":
				ack := sess.attach(r.Context(), reg, cm, false)
				writeJSON(r.Context(), conn, ack)
				if ack.OK {
					go writer(writeCtx, conn, sess.outbox, log)
				}

			case "numberClicked":
				if sess.rm == nil {
					continue
				}
				sess.rm.Inbox() <- room.FromClient{Cmd: game.Command{
					Type:  game.CmdClaimNumber,
					Name:  sess.name,
					Value: cm.Number,
				}}

			case "updateLines":
				if sess.rm == nil {
					continue
				}
				sess.rm.Inbox() <- room.FromClient{Cmd: game.Command{
					Type:  game.CmdReportLines,
					Name:  sess.name,
					Lines: cm.Lines,
				}}

			default:
				writeJSON(r.Context(), conn, types.ServerMessage{Type: "error", Error: "unknown type"})
			}
		}
	}
}

// attach runs the create/join handshake against the registry and, on
// success, binds this session to the room.
func (s *session) attach(ctx context.Context, reg *registry.Registry, cm types.ClientMessage, create bool) types.ServerMessage {
	ackType := "joinAck"
	if create {
		ackType = "createAck"
	}

	if s.rm != nil {
		return types.ServerMessage{Type: ackType, Reason: "Already in a room"}
	}
	if cm.RoomID == "" || cm.Name == "" {
		return types.ServerMessage{Type: ackType, Reason: "Missing room code or name"}
	}

	outbox := make(chan room.Notice, 8)
	joinReply := make(chan room.JoinReply, 1)
	reply := make(chan registry.Reply, 1)

	if create {
		reg.Inbox() <- registry.CreateRoom{
			Code: cm.RoomID, ConnID: s.connID, Name: cm.Name,
			Outbox: outbox, JoinReply: joinReply, Reply: reply,
		}
	} else {
		reg.Inbox() <- registry.JoinRoom{
			Code: cm.RoomID, ConnID: s.connID, Name: cm.Name,
			Outbox: outbox, JoinReply: joinReply, Reply: reply,
		}
	}

	var res registry.Reply
	select {
	case res = <-reply:
	case <-ctx.Done():
		return types.ServerMessage{Type: ackType, Reason: "Request cancelled"}
	}
	if res.Err != nil {
		return types.ServerMessage{Type: ackType, Reason: reasonFor(res.Err)}
	}

	// The room answers the seat request itself; a room caught mid
	// teardown never will, so bound the wait.
	select {
	case jr := <-joinReply:
		if jr.Err != nil {
			return types.ServerMessage{Type: ackType, Reason: reasonFor(jr.Err)}
		}
	case <-time.After(ackTimeout):
		return types.ServerMessage{Type: ackType, Reason: "Room not found"}
	case <-ctx.Done():
		return types.ServerMessage{Type: ackType, Reason: "Request cancelled"}
	}

	s.rm = res.Room
	s.name = cm.Name
	s.outbox = outbox
	return types.ServerMessage{Type: ackType, OK: true}
}

// writer drains the room outbox onto the wire. When the room closes the
// outbox (teardown or slow-client drop) the connection goes with it.
func writer(ctx context.Context, conn *websocket.Conn, outbox <-chan room.Notice, log *zap.Logger) {
	for n := range outbox {
		payload, err := json.Marshal(noticeToMessage(n))
		if err != nil {
			log.Error("marshal notice", zap.Error(err))
			continue
		}
		wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		_ = conn.Write(wctx, websocket.MessageText, payload)
		cancel()
	}
	conn.Close(websocket.StatusGoingAway, "room closed")
}

func writeJSON(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) {
	payload, _ := json.Marshal(msg)
	wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}

func noticeToMessage(n room.Notice) types.ServerMessage {
	switch n.Kind {
	case room.NoticeGameStart:
		return types.ServerMessage{
			Type:         "gameStart",
			OK:           true,
			Version:      n.Version,
			AssignedSeat: n.Seat,
			PlayerNames:  n.Players,
		}
	case room.NoticeMarkNumber:
		return types.ServerMessage{
			Type:    "markNumber",
			OK:      true,
			Version: n.Version,
			Number:  n.Value,
			Name:    n.Name,
			Seq:     n.Seq,
		}
	case room.NoticeGameResult:
		return types.ServerMessage{
			Type:    "gameResult",
			OK:      true,
			Version: n.Version,
			Result:  n.Result,
			Actor:   n.Actor,
		}
	default:
		return types.ServerMessage{Type: "error", Error: "unknown notice"}
	}
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, game.ErrRoomExists):
		return "Room already exists"
	case errors.Is(err, game.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, game.ErrRoomFull):
		return "Room is full"
	default:
		return "Internal error"
	}
}
