package main

import (
	"encoding/json"
	"sync"
	"testing"
)

// fakePeer records everything the relay sends to it.
type fakePeer struct {
	id       string
	lock     sync.Mutex
	received []any
}

func newFakePeer(id string) *fakePeer {
	return &fakePeer{id: id}
}

func (p *fakePeer) ID() string {
	return p.id
}

func (p *fakePeer) Send(message any) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.received = append(p.received, message)
}

func (p *fakePeer) Messages() []any {
	p.lock.Lock()
	defer p.lock.Unlock()
	out := make([]any, len(p.received))
	copy(out, p.received)
	return out
}

func (p *fakePeer) Types() []string {
	var types []string
	for _, message := range p.Messages() {
		data, _ := json.Marshal(message)
		envelope, _ := UnmarshalJSON[struct {
			Type string `json:"type"`
		}](data)
		types = append(types, envelope.Type)
	}
	return types
}

func (p *fakePeer) Reset() {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.received = nil
}

var _ Peer = (*fakePeer)(nil)

func fixedCodes(codes ...string) func() string {
	var lock sync.Mutex
	i := 0
	return func() string {
		lock.Lock()
		defer lock.Unlock()
		c := codes[i%len(codes)]
		i++
		return c
	}
}

func assertTypes(t *testing.T, peer *fakePeer, want ...string) {
	t.Helper()
	got := peer.Types()
	if len(got) != len(want) {
		t.Fatalf("%s received %v, want %v", peer.ID(), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%s received %v, want %v", peer.ID(), got, want)
		}
	}
}
