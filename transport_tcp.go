package main

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"sync"
)

// LineTransport carries one JSON envelope per newline-terminated line over a
// plain stream connection.
type LineTransport struct {
	conn      net.Conn
	scanner   *bufio.Scanner
	writeLock sync.Mutex
}

func NewLineTransport(conn net.Conn) *LineTransport {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 512), maxMessageSize)
	return &LineTransport{conn: conn, scanner: scanner}
}

func (t *LineTransport) ReadMessage() ([]byte, error) {
	for t.scanner.Scan() {
		line := t.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		data := make([]byte, len(line))
		copy(data, line)
		return data, nil
	}
	if err := t.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, net.ErrClosed
}

func (t *LineTransport) WriteMessage(data []byte) error {
	t.writeLock.Lock()
	defer t.writeLock.Unlock()
	if _, err := t.conn.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}

func (t *LineTransport) Close() error {
	return t.conn.Close()
}

func (t *LineTransport) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}

// TCPServer accepts raw TCP clients speaking the line protocol and hands
// them to the relay.
type TCPServer struct {
	address    string
	listener   net.Listener
	relay      *Relay
	bufferSize int
	conns      map[net.Conn]struct{}
	lock       sync.Mutex
	quit       chan struct{}
	wg         sync.WaitGroup
}

func NewTCPServer(address string, relay *Relay, bufferSize int) *TCPServer {
	return &TCPServer{
		address:    address,
		relay:      relay,
		bufferSize: bufferSize,
		conns:      make(map[net.Conn]struct{}),
		quit:       make(chan struct{}),
	}
}

func (s *TCPServer) Listen() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start TCP server: %w", err)
	}
	s.listener = listener
	LogStartedTCPServer(listener.Addr().String())
	return nil
}

// Serve accepts connections until Stop is called.
func (s *TCPServer) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			LogAcceptFailed(err)
			continue
		}
		s.lock.Lock()
		s.conns[conn] = struct{}{}
		s.lock.Unlock()

		s.wg.Add(1)
		go s.handle(conn)
	}
}

func (s *TCPServer) handle(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.lock.Lock()
		delete(s.conns, conn)
		s.lock.Unlock()
	}()
	NewConnection(NewLineTransport(conn), "tcp", s.bufferSize).Serve(s.relay)
}

func (s *TCPServer) Stop() {
	close(s.quit)
	if s.listener != nil {
		s.listener.Close()
	}
	s.lock.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.lock.Unlock()
	s.wg.Wait()
}

func (s *TCPServer) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
