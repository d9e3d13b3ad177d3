package chat

import (
	"sync"
	"time"
)

// delivery is one Deliver call seen by recordingTransport.
type delivery struct {
	targets []string
	event   Event
}

// recordingTransport captures every delivery instead of writing to connections.
type recordingTransport struct {
	mu         sync.Mutex
	deliveries []delivery
}

func (t *recordingTransport) Deliver(targets []string, ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	copied := append([]string(nil), targets...)
	t.deliveries = append(t.deliveries, delivery{targets: copied, event: ev})
}

func (t *recordingTransport) all() []delivery {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]delivery(nil), t.deliveries...)
}

func (t *recordingTransport) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.deliveries = nil
}

// inbox returns, in order, every event delivered to connectionID.
func (t *recordingTransport) inbox(connectionID string) []Event {
	var events []Event
	for _, d := range t.all() {
		for _, target := range d.targets {
			if target == connectionID {
				events = append(events, d.event)
			}
		}
	}
	return events
}

var fixedTime = time.UnixMilli(1700000000000)

func fixedClock() time.Time { return fixedTime }
