// Package client is a reference player for the bingo authority. It
// owns everything the authority never sees: the grid layout and the
// line recomputation. Wire traffic is the same catalog the browser
// client speaks.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/coder/websocket"

	"github.com/bingoduel/bingo-backend/internal/game"
	"github.com/bingoduel/bingo-backend/internal/types"
)

var ErrRejected = errors.New("request rejected")

type Client struct {
	conn    *websocket.Conn
	rng     *rand.Rand
	name    string
	roomID  string
	seat    int
	grid    game.Grid
	claimed map[int]bool
	lines   map[game.LineID]bool
}

// Dial connects to the authority's /ws endpoint.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Client{
		conn:    conn,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		claimed: make(map[int]bool),
		lines:   make(map[game.LineID]bool),
	}, nil
}

func (c *Client) Close() {
	c.conn.Close(websocket.StatusNormalClosure, "bye")
}

func (c *Client) Seat() int { return c.seat }

func (c *Client) Grid() game.Grid { return c.grid }

// Create opens a new room and takes seat 1.
func (c *Client) Create(ctx context.Context, roomID, name string) error {
	return c.attach(ctx, "createRoom", "createAck", roomID, name)
}

// Join takes seat 2 in an existing room.
func (c *Client) Join(ctx context.Context, roomID, name string) error {
	return c.attach(ctx, "joinRoom", "joinAck", roomID, name)
}

func (c *Client) attach(ctx context.Context, reqType, ackType, roomID, name string) error {
	if err := c.send(ctx, types.ClientMessage{Type: reqType, RoomID: roomID, Name: name}); err != nil {
		return err
	}
	for {
		msg, err := c.read(ctx)
		if err != nil {
			return err
		}
		if msg.Type != ackType {
			continue
		}
		if !msg.OK {
			return fmt.Errorf("%w: %s", ErrRejected, msg.Reason)
		}
		c.roomID = roomID
		c.name = name
		return nil
	}
}

// Play runs the game to its terminal result and returns "win" or
// "lose". The client deals its grid on gameStart, then drives itself:
// every accepted mark triggers a full line recompute, a count report,
// and the next random claim. Duplicate claims racing the opponent are
// absorbed upstream, so no coordination is needed.
func (c *Client) Play(ctx context.Context) (string, error) {
	for {
		msg, err := c.read(ctx)
		if err != nil {
			return "", err
		}

		switch msg.Type {
		case "gameStart":
			c.seat = msg.AssignedSeat
			c.grid = game.NewGrid(c.rng)
			c.claimed = make(map[int]bool)
			c.lines = make(map[game.LineID]bool)
			if err := c.claimNext(ctx); err != nil {
				return "", err
			}

		case "markNumber":
			c.claimed[msg.Number] = true
			c.lines = game.CompletedLines(c.grid, c.claimed)
			if err := c.reportLines(ctx); err != nil {
				return "", err
			}
			if len(c.lines) < game.LinesToWin {
				if err := c.claimNext(ctx); err != nil {
					return "", err
				}
			}

		case "gameResult":
			return msg.Result, nil
		}
	}
}

// claimNext proposes a random not-yet-claimed value.
func (c *Client) claimNext(ctx context.Context) error {
	open := make([]int, 0, game.BoardCells)
	for v := 1; v <= game.BoardCells; v++ {
		if !c.claimed[v] {
			open = append(open, v)
		}
	}
	if len(open) == 0 {
		return nil
	}
	pick := open[c.rng.Intn(len(open))]
	return c.send(ctx, types.ClientMessage{
		Type:   "numberClicked",
		RoomID: c.roomID,
		Name:   c.name,
		Number: pick,
	})
}

func (c *Client) reportLines(ctx context.Context) error {
	return c.send(ctx, types.ClientMessage{
		Type:   "updateLines",
		RoomID: c.roomID,
		Name:   c.name,
		Lines:  len(c.lines),
	})
}

func (c *Client) send(ctx context.Context, msg types.ClientMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, websocket.MessageText, payload)
}

func (c *Client) read(ctx context.Context) (types.ServerMessage, error) {
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		return types.ServerMessage{}, err
	}
	var msg types.ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return types.ServerMessage{}, fmt.Errorf("decode server message: %w", err)
	}
	return msg, nil
}
