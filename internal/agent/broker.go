package agent

import (
    "sync"

    "initinere/internal/model"
)

// Broker fans accepted location samples out to diagnostics stream
// subscribers. Slow subscribers lose samples rather than stalling delivery.
type Broker struct {
    mu   sync.Mutex
    subs map[chan model.LocationSample]struct{}
}

func NewBroker() *Broker {
    return &Broker{subs: map[chan model.LocationSample]struct{}{}}
}

func (b *Broker) Subscribe() chan model.LocationSample {
    ch := make(chan model.LocationSample, 8)
    b.mu.Lock()
    b.subs[ch] = struct{}{}
    b.mu.Unlock()
    return ch
}

func (b *Broker) Unsubscribe(ch chan model.LocationSample) {
    b.mu.Lock()
    delete(b.subs, ch)
    b.mu.Unlock()
    close(ch)
}

func (b *Broker) Publish(sample model.LocationSample) {
    b.mu.Lock()
    for ch := range b.subs {
        select { case ch <- sample: default: }
    }
    b.mu.Unlock()
}
