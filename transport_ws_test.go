package main

import (
	"bytes"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/gobwas/ws"
)

// writeFragments sends payload as a masked text message split into frames of
// at most size bytes.
func writeFragments(conn net.Conn, payload []byte, size int) error {
	op := ws.OpText
	for len(payload) > 0 {
		n := min(size, len(payload))
		frame := ws.NewFrame(op, n == len(payload), payload[:n])
		if err := ws.WriteFrame(conn, ws.MaskFrameInPlace(frame)); err != nil {
			return err
		}
		payload = payload[n:]
		op = ws.OpContinuation
	}
	return nil
}

func readFromPipe(t *testing.T, payload []byte) ([]byte, error) {
	t.Helper()
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()
	server.SetDeadline(time.Now().Add(5 * time.Second))
	go writeFragments(client, payload, 1000)
	return NewWebsocketTransport(server, "pipe").ReadMessage()
}

func TestWebsocketTransportReadsFragmentedMessage(t *testing.T) {
	payload := append([]byte(`{"type":"create","pad":"`), bytes.Repeat([]byte("a"), 2500)...)
	payload = append(payload, `"}`...)

	data, err := readFromPipe(t, payload)
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("ReadMessage() returned %d bytes, want %d", len(data), len(payload))
	}
}

func TestWebsocketTransportAcceptsMessageAtLimit(t *testing.T) {
	payload := bytes.Repeat([]byte("a"), maxMessageSize)

	data, err := readFromPipe(t, payload)
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if len(data) != maxMessageSize {
		t.Errorf("ReadMessage() returned %d bytes, want %d", len(data), maxMessageSize)
	}
}

func TestWebsocketTransportRejectsOversizedFragmentedMessage(t *testing.T) {
	payload := bytes.Repeat([]byte("a"), 50*maxMessageSize)

	data, err := readFromPipe(t, payload)
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("ReadMessage() = %d bytes, error %v, want %v", len(data), err, ErrMessageTooLarge)
	}
}
