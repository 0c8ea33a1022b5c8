package game

import (
	"errors"
	"slices"
)

var ErrRoomExists = errors.New("room already exists")
var ErrRoomNotFound = errors.New("room not found")
var ErrRoomFull = errors.New("room is full")
var ErrRoomNotActive = errors.New("room not active")
var ErrAlreadyClaimed = errors.New("value already claimed")
var ErrValueOutOfRange = errors.New("value out of range")
var ErrUnsupportedCommand = errors.New("unsupported command")

// MaxPlayers is fixed: a room is exactly a two-player duel.
const MaxPlayers = 2

// LinesToWin is the number of completed lines a player must report to win.
const LinesToWin = 5

type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseActive   Phase = "active"
	PhaseFinished Phase = "finished"
)

type Player struct {
	ConnID string
	Name   string
	Seat   int // 1 or 2, assigned in join order
	Lines  int // last reported completed-line count
}

type Claim struct {
	Value int
	By    string
	Seq   int // claim order within the room, starting at 1
}

type State struct {
	Phase   Phase
	Players []Player
	Claims  []Claim
	Winner  string
}

type CommandType string

const (
	CmdClaimNumber CommandType = "ClaimNumber"
	CmdReportLines CommandType = "ReportLines"
)

type Command struct {
	Type  CommandType
	Name  string
	Value int
	Lines int
}

type EventType string

const (
	EvtNumberMarked EventType = "NumberMarked"
	EvtGameFinished EventType = "GameFinished"
)

type Event struct {
	Type   EventType
	Value  int
	Name   string
	Seq    int
	Winner string
}

func NewState() State {
	return State{
		Phase:   PhaseWaiting,
		Players: []Player{},
		Claims:  []Claim{},
	}
}

// AddPlayer seats a player in join order and returns the assigned seat.
// The second seat flips the room to Active.
func AddPlayer(s State, connID, name string) (State, int, error) {
	if len(s.Players) >= MaxPlayers {
		return s, 0, ErrRoomFull
	}

	newState := s
	seat := len(s.Players) + 1
	newState.Players = append(slices.Clone(s.Players), Player{
		ConnID: connID,
		Name:   name,
		Seat:   seat,
	})
	if len(newState.Players) == MaxPlayers {
		newState.Phase = PhaseActive
	}
	return newState, seat, nil
}

// RemovePlayer drops the player holding connID, if any.
func RemovePlayer(s State, connID string) (State, Player, bool) {
	for i, p := range s.Players {
		if p.ConnID == connID {
			newState := s
			newState.Players = slices.Delete(slices.Clone(s.Players), i, i+1)
			return newState, p, true
		}
	}
	return s, Player{}, false
}

// Apply arbitrates a single client command against the room state.
// Claims and reports are only legal while the room is Active; callers
// decide whether a rejection is surfaced or absorbed.
func Apply(s State, cmd Command) ([]Event, State, error) {
	if s.Phase != PhaseActive {
		return nil, s, ErrRoomNotActive
	}

	newState := s

	switch cmd.Type {
	case CmdClaimNumber:
		if cmd.Value < 1 || cmd.Value > BoardCells {
			return nil, s, ErrValueOutOfRange
		}
		if hasClaim(s, cmd.Value) {
			return nil, s, ErrAlreadyClaimed
		}

		claim := Claim{Value: cmd.Value, By: cmd.Name, Seq: len(s.Claims) + 1}
		newState.Claims = append(slices.Clone(s.Claims), claim)

		events := []Event{
			{Type: EvtNumberMarked, Value: claim.Value, Name: claim.By, Seq: claim.Seq},
		}
		return events, newState, nil

	case CmdReportLines:
		idx := playerIndexByName(s, cmd.Name)
		if idx < 0 {
			// Stale report from a player no longer seated.
			return nil, s, nil
		}

		// Counts only move forward while the room is Active.
		if cmd.Lines > s.Players[idx].Lines {
			newState.Players = slices.Clone(s.Players)
			newState.Players[idx].Lines = cmd.Lines
		}

		if cmd.Lines < LinesToWin {
			return nil, newState, nil
		}

		newState.Phase = PhaseFinished
		newState.Winner = cmd.Name
		events := []Event{
			{Type: EvtGameFinished, Winner: cmd.Name},
		}
		return events, newState, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

// Forfeit ends an Active game in favor of the sole remaining player.
// Reports false when the room is not in that position.
func Forfeit(s State) (State, bool) {
	if s.Phase != PhaseActive || len(s.Players) != 1 {
		return s, false
	}
	newState := s
	newState.Phase = PhaseFinished
	newState.Winner = s.Players[0].Name
	return newState, true
}

func hasClaim(s State, value int) bool {
	return slices.ContainsFunc(s.Claims, func(c Claim) bool { return c.Value == value })
}

func playerIndexByName(s State, name string) int {
	return slices.IndexFunc(s.Players, func(p Player) bool { return p.Name == name })
}
