package realtime

import (
	"context"
	"log"

	"github.com/taskboard/taskboard/internal/stats"
)

// Broadcaster fans a DomainEvent out to every session joined to one of the
// event's target rooms. Delivery is at-most-once and best-effort: there is no
// queue of missed events and nothing is replayed for sessions that join
// later. A single goroutine drains the publish queue, so all sessions in a
// room observe events in Publish order.
type Broadcaster struct {
	log         *log.Logger
	rooms       *RoomRegistry
	sessions    *SessionRegistry
	stats       stats.StatsProvider
	disconnect  func(*Session)
	publishChan chan DomainEvent
	stop        chan struct{}
	done        chan struct{}
}

func NewBroadcaster(logger *log.Logger, rooms *RoomRegistry, sessions *SessionRegistry,
	st stats.StatsProvider, disconnect func(*Session)) *Broadcaster {
	return &Broadcaster{
		log:         logger,
		rooms:       rooms,
		sessions:    sessions,
		stats:       st,
		disconnect:  disconnect,
		publishChan: make(chan DomainEvent, 256),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

func (b *Broadcaster) Run() {
	for {
		select {
		case evt := <-b.publishChan:
			b.deliver(evt)
		case <-b.stop:
			close(b.done)
			return
		}
	}
}

// Publish enqueues the event for ordered delivery. Events published to the
// same room are delivered to every member in Publish order.
func (b *Broadcaster) Publish(evt DomainEvent) {
	select {
	case b.publishChan <- evt:
	case <-b.stop:
	}
}

func (b *Broadcaster) deliver(evt DomainEvent) {
	b.stats.Incr(stats.EventsPublished)
	msg := evt.serverMessage()

	// a session joined to more than one target room still gets the event once
	seen := make(map[string]struct{})
	for _, key := range evt.Rooms {
		for _, sid := range b.rooms.MembersOf(key) {
			if _, ok := seen[sid]; ok {
				continue
			}
			seen[sid] = struct{}{}

			sess := b.sessions.Get(sid)
			if sess == nil {
				continue
			}

			if !sess.queueMessage(msg) {
				// a stalled transport must not hold up the rest of the
				// fan-out; drop the session instead
				b.log.Printf("delivery to session %q failed, disconnecting", sid)
				b.stats.Incr(stats.DeliveryFailures)
				b.disconnect(sess)
			}
		}
	}
}

func (b *Broadcaster) Stop(ctx context.Context) error {
	close(b.stop)

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
