package main

import (
	"errors"
	"sync"

	"tictactoe-relay/code"
)

const maxCodeAttempts = 32

var (
	// ErrRoomNotJoinable covers both an unknown code and a full room. Clients
	// are never told which one it was.
	ErrRoomNotJoinable = errors.New("room not found or full")
	ErrNoFreeCode      = errors.New("could not allocate a free room code")
	ErrAlreadyInRoom   = errors.New("connection already bound to a room")
)

// Registry owns every room and the connection to room bindings. All of its
// state is guarded by a single lock; callbacks passed to its methods run
// with that lock held and must not call back into the Registry.
type Registry struct {
	rooms    map[string]*Room
	bindings map[string]string
	generate func() string
	lock     sync.Mutex
}

func NewRegistry() *Registry {
	return NewRegistryWithGenerator(code.GenerateRandom)
}

func NewRegistryWithGenerator(generate func() string) *Registry {
	return &Registry{
		rooms:    make(map[string]*Room),
		bindings: make(map[string]string),
		generate: generate,
	}
}

// CreateRoom registers a new room with creator as its first occupant. The
// creator must be unbound.
func (r *Registry) CreateRoom(creator Peer, then func(room *Room)) (string, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, bound := r.bindings[creator.ID()]; bound {
		return "", ErrAlreadyInRoom
	}
	var roomCode string
	for attempt := 0; ; attempt++ {
		if attempt == maxCodeAttempts {
			return "", ErrNoFreeCode
		}
		roomCode = r.generate()
		if _, exists := r.rooms[roomCode]; !exists {
			break
		}
	}
	room := NewRoom(roomCode, creator)
	r.rooms[roomCode] = room
	r.bindings[creator.ID()] = roomCode
	RecordRoomCreated(len(r.rooms))
	if then != nil {
		then(room)
	}
	return roomCode, nil
}

// Join binds peer as the second occupant of the room. It fails with
// ErrRoomNotJoinable unless the room exists, has exactly one occupant, and
// peer is not already bound somewhere.
func (r *Registry) Join(roomCode string, peer Peer, then func(room *Room)) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	room, exists := r.rooms[roomCode]
	if !exists || room.OccupantCount() != 1 {
		return ErrRoomNotJoinable
	}
	if _, bound := r.bindings[peer.ID()]; bound {
		return ErrRoomNotJoinable
	}
	room.add(peer)
	r.bindings[peer.ID()] = roomCode
	if then != nil {
		then(room)
	}
	return nil
}

// Leave unbinds peer. When the room still has an occupant, then is called
// with it and Leave returns true. Empty rooms are deleted. Leaving while
// unbound does nothing.
func (r *Registry) Leave(peer Peer, then func(room *Room)) bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	roomCode, bound := r.bindings[peer.ID()]
	if !bound {
		return false
	}
	delete(r.bindings, peer.ID())
	room, exists := r.rooms[roomCode]
	if !exists {
		return false
	}
	room.remove(peer)
	if room.OccupantCount() == 0 {
		delete(r.rooms, roomCode)
		RecordRoomClosed(len(r.rooms))
		LogClosedRoom(roomCode)
		return false
	}
	if then != nil {
		then(room)
	}
	return true
}

// Update runs fn against the room peer is bound to.
func (r *Registry) Update(peer Peer, fn func(room *Room)) bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	room, exists := r.roomOf(peer)
	if !exists {
		return false
	}
	fn(room)
	return true
}

func (r *Registry) RoomOf(peer Peer) (string, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	roomCode, bound := r.bindings[peer.ID()]
	return roomCode, bound
}

func (r *Registry) Occupants(roomCode string) []Peer {
	r.lock.Lock()
	defer r.lock.Unlock()
	room, exists := r.rooms[roomCode]
	if !exists {
		return nil
	}
	return room.Occupants()
}

func (r *Registry) OtherOccupant(roomCode string, peer Peer) (Peer, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	room, exists := r.rooms[roomCode]
	if !exists {
		return nil, false
	}
	other := room.Other(peer)
	return other, other != nil
}

type RoomInfo struct {
	Code      string `json:"code"`
	Occupants int    `json:"occupants"`
	State     string `json:"state"`
}

func (r *Registry) Info(roomCode string) (RoomInfo, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	room, exists := r.rooms[roomCode]
	if !exists {
		return RoomInfo{}, false
	}
	return RoomInfo{Code: room.Code(), Occupants: room.OccupantCount(), State: room.State().String()}, true
}

func (r *Registry) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.rooms)
}

func (r *Registry) roomOf(peer Peer) (*Room, bool) {
	roomCode, bound := r.bindings[peer.ID()]
	if !bound {
		return nil, false
	}
	room, exists := r.rooms[roomCode]
	return room, exists
}
