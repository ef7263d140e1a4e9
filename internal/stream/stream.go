package stream

import (
	"context"
	"sync"
	"time"

	"storycat.app/internal/pipeline"
)

// StageEvent describes one pipeline transition for live dashboard feeds.
type StageEvent struct {
	ItemID     string          `json:"item_id"`
	ProjectID  string          `json:"project_id"`
	Action     pipeline.Action `json:"action"`
	FromStatus pipeline.Status `json:"from_status"`
	ToStatus   pipeline.Status `json:"to_status"`
	Stage      pipeline.Stage  `json:"stage"`
	ActorID    string          `json:"actor_id"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Stream fan-outs stage events to all active subscribers (SSE clients).
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan StageEvent
	next int
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{subs: make(map[int]chan StageEvent)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan StageEvent {
	ch := make(chan StageEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		// Close under the write lock so Publish can never send on a
		// closed channel.
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish delivers the event to every subscriber, dropping it for slow ones
// rather than blocking the request path.
func (s *Stream) Publish(event StageEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
