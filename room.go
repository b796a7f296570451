package main

import (
	"slices"
)

// Peer is the relay's view of one connected client.
type Peer interface {
	ID() string
	Send(message any)
}

type SessionState int

const (
	WaitingForOpponent SessionState = iota
	Playing
	RematchPending
	Idle
)

func (s SessionState) String() string {
	switch s {
	case WaitingForOpponent:
		return "waiting-for-opponent"
	case Playing:
		return "playing"
	case RematchPending:
		return "rematch-pending"
	case Idle:
		return "idle"
	default:
		return "unknown"
	}
}

// Room is owned by the Registry. Its methods are only called with the
// registry lock held.
type Room struct {
	code      string
	occupants []Peer
	state     SessionState
	// IDs of occupants with an outstanding rematch request.
	rematchRequests map[string]struct{}
}

func NewRoom(code string, creator Peer) *Room {
	return &Room{
		code:            code,
		occupants:       []Peer{creator},
		state:           WaitingForOpponent,
		rematchRequests: make(map[string]struct{}),
	}
}

func (r *Room) Code() string {
	return r.code
}

func (r *Room) State() SessionState {
	return r.state
}

func (r *Room) Occupants() []Peer {
	return slices.Clone(r.occupants)
}

func (r *Room) OccupantCount() int {
	return len(r.occupants)
}

func (r *Room) Other(peer Peer) Peer {
	for _, occupant := range r.occupants {
		if occupant.ID() != peer.ID() {
			return occupant
		}
	}
	return nil
}

func (r *Room) Broadcast(message any) {
	for _, occupant := range r.occupants {
		occupant.Send(message)
	}
}

func (r *Room) add(peer Peer) {
	r.occupants = append(r.occupants, peer)
}

func (r *Room) remove(peer Peer) bool {
	for i, occupant := range r.occupants {
		if occupant.ID() == peer.ID() {
			r.occupants = slices.Delete(r.occupants, i, i+1)
			delete(r.rematchRequests, peer.ID())
			return true
		}
	}
	return false
}

func (r *Room) acceptsMoves() bool {
	return r.state == Playing || r.state == RematchPending
}

func (r *Room) startGame() {
	r.state = Playing
	clear(r.rematchRequests)
}

func (r *Room) requestRematch(peer Peer) {
	r.rematchRequests[peer.ID()] = struct{}{}
	r.state = RematchPending
}

// rematchOfferedTo reports whether someone other than peer has an open
// rematch request.
func (r *Room) rematchOfferedTo(peer Peer) bool {
	if r.state != RematchPending {
		return false
	}
	for id := range r.rematchRequests {
		if id != peer.ID() {
			return true
		}
	}
	return false
}

func (r *Room) opponentLeft() {
	r.state = Idle
	clear(r.rematchRequests)
}
