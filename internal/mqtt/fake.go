package mqtt

import "sync"

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	mu sync.Mutex

	// States contains the state payloads in publish order.
	States [][]byte

	// Availability contains every availability value published.
	Availability []bool

	// PublishError, if set, is returned by PublishState.
	PublishError error

	// Block, if non-nil, makes PublishState wait until it is closed.
	Block chan struct{}

	Closed bool
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) PublishState(payload []byte) error {
	if f.Block != nil {
		<-f.Block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.States = append(f.States, payload)
	return nil
}

func (f *FakePublisher) PublishAvailability(online bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Availability = append(f.Availability, online)
	return nil
}

func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	f.Availability = append(f.Availability, false)
	return nil
}

// Snapshot returns copies of the recorded state payloads.
func (f *FakePublisher) Snapshot() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.States))
	copy(out, f.States)
	return out
}

func (f *FakePublisher) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Closed
}
