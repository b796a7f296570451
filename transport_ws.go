package main

import (
	"errors"
	"io"
	"net"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

const maxMessageSize = 4 * 1024

// ErrMessageTooLarge is returned for a message whose frames add up to more
// than maxMessageSize bytes.
var ErrMessageTooLarge = errors.New("message too large")

// WebsocketTransport is the server side of a gobwas/ws connection. Control
// frames are answered under the same write lock as data frames.
type WebsocketTransport struct {
	conn       net.Conn
	reader     *wsutil.Reader
	remoteAddr string
	writeLock  sync.Mutex
}

func NewWebsocketTransport(conn net.Conn, remoteAddr string) *WebsocketTransport {
	t := &WebsocketTransport{conn: conn, remoteAddr: remoteAddr}
	t.reader = &wsutil.Reader{
		Source:       conn,
		State:        ws.StateServerSide,
		CheckUTF8:    true,
		MaxFrameSize: maxMessageSize,
	}
	t.reader.OnIntermediate = t.handleControl
	return t
}

// ReadMessage returns the payload of the next text message. MaxFrameSize
// bounds single frames; the limit reader bounds fragmented messages.
func (t *WebsocketTransport) ReadMessage() ([]byte, error) {
	for {
		header, err := t.reader.NextFrame()
		if err != nil {
			return nil, err
		}
		if header.OpCode.IsControl() {
			if err := t.handleControl(header, t.reader); err != nil {
				return nil, err
			}
			continue
		}
		if header.OpCode != ws.OpText {
			if err := t.reader.Discard(); err != nil {
				return nil, err
			}
			return nil, ErrUnsupportedFrame
		}
		data, err := io.ReadAll(io.LimitReader(t.reader, maxMessageSize+1))
		if err != nil {
			return nil, err
		}
		if len(data) > maxMessageSize {
			return nil, ErrMessageTooLarge
		}
		return data, nil
	}
}

func (t *WebsocketTransport) handleControl(header ws.Header, r io.Reader) error {
	t.writeLock.Lock()
	defer t.writeLock.Unlock()
	return wsutil.ControlFrameHandler(t.conn, ws.StateServerSide)(header, r)
}

func (t *WebsocketTransport) WriteMessage(data []byte) error {
	t.writeLock.Lock()
	defer t.writeLock.Unlock()
	return wsutil.WriteServerText(t.conn, data)
}

// Close sends a close frame when no write is in flight and closes the
// underlying connection. It never waits on a blocked writer.
func (t *WebsocketTransport) Close() error {
	if t.writeLock.TryLock() {
		_ = wsutil.WriteServerMessage(t.conn, ws.OpClose, ws.NewCloseFrameBody(ws.StatusNormalClosure, ""))
		t.writeLock.Unlock()
	}
	return t.conn.Close()
}

func (t *WebsocketTransport) RemoteAddr() string {
	return t.remoteAddr
}
