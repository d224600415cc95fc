package redisserver

import (
	"time"

	"github.com/yndnr/respkv/internal/storage/memory"
)

// Metrics receives server events. Implementations must be safe to call from
// the event loop while being scraped from another goroutine.
type Metrics interface {
	CommandProcessed(name string, failed bool)
	ProtocolError()
	ConnectionAccepted()
	ConnectionRejected(reason string)
	ObserveClients(n int)
	ObserveStore(st memory.Stats)
	ObserveAOF(enabled bool, lastFsync time.Time)
}

type noopMetrics struct{}

func (noopMetrics) CommandProcessed(string, bool) {}
func (noopMetrics) ProtocolError() {}
func (noopMetrics) ConnectionAccepted() {}
func (noopMetrics) ConnectionRejected(string) {}
func (noopMetrics) ObserveClients(int) {}
func (noopMetrics) ObserveStore(memory.Stats) {}
func (noopMetrics) ObserveAOF(bool, time.Time) {}
