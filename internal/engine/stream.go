package engine

import (
	"sync"
	"time"

	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/message"
	"github.com/kode4food/caravan/topic"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

// Hub broadcasts execution lifecycle events to stream subscribers
type Hub struct {
	queue     topic.Topic[*api.StreamEvent]
	prod      topic.Producer[*api.StreamEvent]
	closeOnce sync.Once
}

// NewHub creates the stream event hub
func NewHub() *Hub {
	queue := caravan.NewTopic[*api.StreamEvent]()
	return &Hub{
		queue: queue,
		prod:  queue.NewProducer(),
	}
}

// Publish sends a stream event to all current subscribers
func (h *Hub) Publish(ev *api.StreamEvent) {
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}
	message.Send(h.prod, ev)
}

// NewConsumer registers a new stream subscriber
func (h *Hub) NewConsumer() topic.Consumer[*api.StreamEvent] {
	return h.queue.NewConsumer()
}

// Close shuts the hub's producer down
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		h.prod.Close()
	})
}
