// Package observability exposes lightweight runtime counters for the chat
// core. Counters are atomic so the hot broadcast path never takes a lock.
package observability

import (
	"sync/atomic"
)

// Stats is a point-in-time view of the counters, shaped for the stats endpoint.
type Stats struct {
	ActiveConnections int64  `json:"active_connections"`
	MessagesBroadcast uint64 `json:"messages_broadcast"`
	DeliveryFailures  uint64 `json:"delivery_failures"`
	StreamsStarted    uint64 `json:"streams_started"`
	StreamsFailed     uint64 `json:"streams_failed"`
	FragmentsRelayed  uint64 `json:"fragments_relayed"`
	MessagesCensored  uint64 `json:"messages_censored"`
}

type Metrics struct {
	activeConnections atomic.Int64
	messagesBroadcast atomic.Uint64
	deliveryFailures  atomic.Uint64
	streamsStarted    atomic.Uint64
	streamsFailed     atomic.Uint64
	fragmentsRelayed  atomic.Uint64
	messagesCensored  atomic.Uint64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) ConnectionOpened() { m.activeConnections.Add(1) }
func (m *Metrics) ConnectionClosed() { m.activeConnections.Add(-1) }
func (m *Metrics) IncrBroadcast()    { m.messagesBroadcast.Add(1) }
func (m *Metrics) IncrDeliveryFailure() {
	m.deliveryFailures.Add(1)
}
func (m *Metrics) IncrStreamStarted()   { m.streamsStarted.Add(1) }
func (m *Metrics) IncrStreamFailed()    { m.streamsFailed.Add(1) }
func (m *Metrics) IncrFragmentRelayed() { m.fragmentsRelayed.Add(1) }
func (m *Metrics) IncrCensored()        { m.messagesCensored.Add(1) }

func (m *Metrics) Snapshot() Stats {
	return Stats{
		ActiveConnections: m.activeConnections.Load(),
		MessagesBroadcast: m.messagesBroadcast.Load(),
		DeliveryFailures:  m.deliveryFailures.Load(),
		StreamsStarted:    m.streamsStarted.Load(),
		StreamsFailed:     m.streamsFailed.Load(),
		FragmentsRelayed:  m.fragmentsRelayed.Load(),
		MessagesCensored:  m.messagesCensored.Load(),
	}
}
