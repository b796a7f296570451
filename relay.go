package main

import (
	"errors"
	"sync"
	"sync/atomic"

	"tictactoe-relay/code"
)

// Relay turns inbound protocol messages into Registry mutations and
// outbound deliveries. It does not track turns or board contents.
type Relay struct {
	registry    *Registry
	tracked     sync.Map
	connections atomic.Int64
}

func NewRelay(registry *Registry) *Relay {
	return &Relay{registry: registry}
}

func (r *Relay) Registry() *Registry {
	return r.registry
}

// Connect tracks a freshly opened connection. It stays unbound until it
// creates or joins a room.
func (r *Relay) Connect(peer Peer, transport string) {
	if _, loaded := r.tracked.LoadOrStore(peer.ID(), transport); loaded {
		return
	}
	r.connections.Add(1)
	RecordConnectionOpened(transport)
}

func (r *Relay) Connections() int64 {
	return r.connections.Load()
}

// Handle processes one raw inbound envelope from peer.
func (r *Relay) Handle(peer Peer, data []byte) {
	msg, err := ParseMessage(data)
	if err != nil {
		LogMalformedMessage(peer, err)
		if errors.Is(err, ErrUndefinedType) {
			RecordDropped("undefined-type")
		} else {
			RecordDropped("malformed")
		}
		return
	}
	switch m := msg.(type) {
	case CreateMessage:
		r.create(peer)
	case JoinMessage:
		r.join(peer, m.Code)
	case MoveMessage:
		r.move(peer, m.Move)
	case RematchRequestMessage:
		r.requestRematch(peer)
	case RematchAcceptedMessage:
		r.acceptRematch(peer)
	}
}

// Disconnect runs the leave transition for peer. Calling it again for the
// same peer does nothing.
func (r *Relay) Disconnect(peer Peer) {
	r.leave(peer)
	transport, tracked := r.tracked.LoadAndDelete(peer.ID())
	if !tracked {
		return
	}
	r.connections.Add(-1)
	RecordConnectionClosed(transport.(string))
}

func (r *Relay) create(peer Peer) {
	if _, bound := r.registry.RoomOf(peer); bound {
		r.leave(peer)
	}
	roomCode, err := r.registry.CreateRoom(peer, func(room *Room) {
		peer.Send(NewRoomCreatedMessage(room.Code()))
	})
	if err != nil {
		LogCreateRoomFailed(peer, err)
		peer.Send(NewErrorMessage(createFailedText))
		return
	}
	LogCreatedRoom(peer, roomCode)
}

func (r *Relay) join(peer Peer, rawCode string) {
	roomCode := code.Normalize(rawCode)
	err := r.registry.Join(roomCode, peer, func(room *Room) {
		room.startGame()
		room.Broadcast(NewStartMessage(room.Code()))
	})
	if errors.Is(err, ErrRoomNotJoinable) {
		RecordJoin("rejected")
		LogJoinFailed(peer, roomCode)
		peer.Send(NewErrorMessage(roomNotJoinableText))
		return
	}
	RecordJoin("ok")
	LogJoinedRoom(peer, roomCode)
}

func (r *Relay) move(peer Peer, move Move) {
	bound := r.registry.Update(peer, func(room *Room) {
		if !room.acceptsMoves() {
			r.drop(peer, "not-playing", TypeMove)
			return
		}
		other := room.Other(peer)
		if other == nil {
			r.drop(peer, "no-opponent", TypeMove)
			return
		}
		other.Send(NewMoveMessage(move))
		RecordRelayed(TypeMove)
		LogRelayed(peer, room.Code(), TypeMove)
	})
	if !bound {
		r.drop(peer, "unbound", TypeMove)
	}
}

func (r *Relay) requestRematch(peer Peer) {
	bound := r.registry.Update(peer, func(room *Room) {
		if !room.acceptsMoves() {
			r.drop(peer, "not-playing", TypeRematchRequest)
			return
		}
		other := room.Other(peer)
		if other == nil {
			r.drop(peer, "no-opponent", TypeRematchRequest)
			return
		}
		room.requestRematch(peer)
		other.Send(NewSignalMessage(TypeRematchRequest))
		RecordRelayed(TypeRematchRequest)
		LogRelayed(peer, room.Code(), TypeRematchRequest)
	})
	if !bound {
		r.drop(peer, "unbound", TypeRematchRequest)
	}
}

func (r *Relay) acceptRematch(peer Peer) {
	bound := r.registry.Update(peer, func(room *Room) {
		if !room.rematchOfferedTo(peer) {
			r.drop(peer, "no-pending-request", TypeRematchAccepted)
			return
		}
		room.startGame()
		// Both ends reset from this one signal, so it goes back to the
		// accepter as well.
		room.Broadcast(NewSignalMessage(TypeRematchAccepted))
		RecordRelayed(TypeRematchAccepted)
		LogRelayed(peer, room.Code(), TypeRematchAccepted)
	})
	if !bound {
		r.drop(peer, "unbound", TypeRematchAccepted)
	}
}

func (r *Relay) leave(peer Peer) {
	r.registry.Leave(peer, func(room *Room) {
		room.opponentLeft()
		room.Broadcast(NewPlayerLeftMessage())
		LogPlayerLeft(peer, room.Code(), room.OccupantCount())
	})
}

func (r *Relay) drop(peer Peer, reason string, messageType string) {
	RecordDropped(reason)
	LogDropped(peer, reason, messageType)
}
