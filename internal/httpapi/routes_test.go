package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bingoduel/bingo-backend/internal/client"
	"github.com/bingoduel/bingo-backend/internal/registry"
)

func newTestServer(t *testing.T) (string, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	reg := registry.NewRegistry(ctx, zap.NewNop())
	srv := httptest.NewServer(SetupRoutes(reg, zap.NewNop(), nil))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	return wsURL, srv
}

func TestHealthz(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewRoomCode(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/roomcode")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Code, 4)
	require.Equal(t, strings.ToUpper(body.Code), body.Code)
}

func TestCreateAndJoinAcks(t *testing.T) {
	wsURL, _ := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	alice, err := client.Dial(ctx, wsURL)
	require.NoError(t, err)
	defer alice.Close()
	require.NoError(t, alice.Create(ctx, "AB12", "Alice"))

	// Same code again fails and names the reason.
	eve, err := client.Dial(ctx, wsURL)
	require.NoError(t, err)
	defer eve.Close()
	err = eve.Create(ctx, "AB12", "Eve")
	require.ErrorIs(t, err, client.ErrRejected)
	require.Contains(t, err.Error(), "Room already exists")

	// Joining an unknown room fails without creating it.
	err = eve.Join(ctx, "NOPE", "Eve")
	require.ErrorIs(t, err, client.ErrRejected)
	require.Contains(t, err.Error(), "Room not found")

	// Codes are case-insensitive on the authority side.
	bob, err := client.Dial(ctx, wsURL)
	require.NoError(t, err)
	defer bob.Close()
	require.NoError(t, bob.Join(ctx, "ab12", "Bob"))

	// Third seat is refused.
	late, err := client.Dial(ctx, wsURL)
	require.NoError(t, err)
	defer late.Close()
	err = late.Join(ctx, "AB12", "Mallory")
	require.ErrorIs(t, err, client.ErrRejected)
	require.Contains(t, err.Error(), "Room is full")
}

// Two self-driving clients race through a full game: exactly one wins,
// the other loses, and the loop stops at the first terminal result.
func TestEndToEndDuel(t *testing.T) {
	wsURL, _ := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	alice, err := client.Dial(ctx, wsURL)
	require.NoError(t, err)
	defer alice.Close()
	require.NoError(t, alice.Create(ctx, "DUEL", "Alice"))

	bob, err := client.Dial(ctx, wsURL)
	require.NoError(t, err)
	defer bob.Close()

	type outcome struct {
		name   string
		result string
		err    error
	}
	results := make(chan outcome, 2)

	go func() {
		res, err := alice.Play(ctx)
		results <- outcome{"Alice", res, err}
	}()
	// Second join flips the room Active and triggers gameStart.
	require.NoError(t, bob.Join(ctx, "DUEL", "Bob"))
	go func() {
		res, err := bob.Play(ctx)
		results <- outcome{"Bob", res, err}
	}()

	got := map[string]string{}
	for i := 0; i < 2; i++ {
		o := <-results
		require.NoError(t, o.err, "player %s", o.name)
		got[o.name] = o.result
	}

	wins := 0
	for _, res := range got {
		if res == "win" {
			wins++
		} else {
			require.Equal(t, "lose", res)
		}
	}
	require.Equal(t, 1, wins, "exactly one winner per room: %v", got)
}

// A mid-game disconnect forfeits to the remaining player.
func TestDisconnectForfeits(t *testing.T) {
	wsURL, _ := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	alice, err := client.Dial(ctx, wsURL)
	require.NoError(t, err)
	defer alice.Close()
	require.NoError(t, alice.Create(ctx, "GONE", "Alice"))

	results := make(chan string, 1)
	go func() {
		res, err := alice.Play(ctx)
		if err != nil {
			results <- "error: " + err.Error()
			return
		}
		results <- res
	}()

	bob, err := client.Dial(ctx, wsURL)
	require.NoError(t, err)
	require.NoError(t, bob.Join(ctx, "GONE", "Bob"))
	bob.Close()

	select {
	case res := <-results:
		require.Equal(t, "win", res)
	case <-ctx.Done():
		t.Fatalf("no forfeit result before timeout")
	}
}
