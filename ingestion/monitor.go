package ingestion

import "time"

// Monitor provides hooks to observe batch processing.
type Monitor interface {
	BatchStarted(size int)
	BatchFinished(applied, failed int, elapsed time.Duration)
}

// NoopMonitor returns a Monitor that ignores every event.
func NoopMonitor() Monitor {
	return &noopMonitor{}
}

type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) BatchStarted(_ int)                          {}
func (n *noopMonitor) BatchFinished(_ int, _ int, _ time.Duration) {}
