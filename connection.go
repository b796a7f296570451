package main

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrUnsupportedFrame is returned by a Transport for a frame it skipped.
// The connection stays usable.
var ErrUnsupportedFrame = errors.New("unsupported frame")

// Transport is one framed, ordered, reliable message channel.
type Transport interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
	RemoteAddr() string
}

// Connection binds a Transport to the relay. Outbound messages go through a
// bounded queue drained by a single writer so Send never blocks the relay.
type Connection struct {
	id        string
	kind      string
	transport Transport
	outgoing  chan any
	logger    ConnLogger
	lock      sync.Mutex
	closed    bool
	closeOnce sync.Once
}

func NewConnection(transport Transport, kind string, bufferSize int) *Connection {
	if bufferSize < 1 {
		bufferSize = 1
	}
	id := uuid.NewString()
	return &Connection{
		id:        id,
		kind:      kind,
		transport: transport,
		outgoing:  make(chan any, bufferSize),
		logger:    GetConnLogger(transport.RemoteAddr(), id, kind),
	}
}

func (c *Connection) ID() string {
	return c.id
}

// Send queues message for delivery. A connection that cannot keep up is
// closed, which in turn makes it leave its room.
func (c *Connection) Send(message any) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return
	}
	select {
	case c.outgoing <- message:
	default:
		c.logger.SendQueueFull()
		c.closeTransport()
	}
}

// Serve pumps messages from the transport into the relay until the
// transport fails, then disconnects exactly once.
func (c *Connection) Serve(relay *Relay) {
	writerDone := make(chan struct{})
	go c.writePump(writerDone)

	relay.Connect(c, c.kind)
	c.logger.Connected()
	for {
		data, err := c.transport.ReadMessage()
		if err != nil {
			if errors.Is(err, ErrUnsupportedFrame) {
				continue
			}
			c.logger.ReadFailed(err)
			break
		}
		relay.Handle(c, data)
	}
	relay.Disconnect(c)

	// Nothing sends to a connection after it left its room.
	c.lock.Lock()
	c.closed = true
	close(c.outgoing)
	c.lock.Unlock()
	<-writerDone
	c.closeTransport()
	c.logger.Disconnected()
}

func (c *Connection) writePump(done chan struct{}) {
	defer close(done)
	for message := range c.outgoing {
		data, err := json.Marshal(message)
		if err != nil {
			c.logger.EncodeFailed(err)
			continue
		}
		if err := c.transport.WriteMessage(data); err != nil {
			c.logger.WriteFailed(err)
			c.closeTransport()
			for range c.outgoing {
			}
			return
		}
	}
}

func (c *Connection) closeTransport() {
	c.closeOnce.Do(func() {
		c.transport.Close()
	})
}
