package pipeline

import (
	"sync/atomic"

	"fleet-monitor/simulator/internal/domain"
	"fleet-monitor/simulator/internal/metrics"
)

// Dispatcher fans snapshots out to the sink workers. Sends never block the
// tick loop: a full channel drops the snapshot and counts the drop. A nil
// channel means the sink is disabled.
type Dispatcher struct {
	DBChan    chan *domain.Snapshot
	StateChan chan *domain.Snapshot
	AlertChan chan *domain.Snapshot
	WSChan    chan *domain.Snapshot

	closed atomic.Bool
}

func newChan(size int) chan *domain.Snapshot {
	if size <= 0 {
		return nil
	}
	return make(chan *domain.Snapshot, size)
}

func NewDispatcher(dbSize, stateSize, alertSize, wsSize int) *Dispatcher {
	return &Dispatcher{
		DBChan:    newChan(dbSize),
		StateChan: newChan(stateSize),
		AlertChan: newChan(alertSize),
		WSChan:    newChan(wsSize),
	}
}

func (d *Dispatcher) Observe(s domain.Snapshot) {
	d.Dispatch(&s)
}

func (d *Dispatcher) Dispatch(msg *domain.Snapshot) {
	if d.closed.Load() {
		return
	}
	send(d.DBChan, msg, &metrics.DBChannelDrops)
	send(d.StateChan, msg, &metrics.StateChannelDrops)
	if len(msg.Alerts) > 0 {
		send(d.AlertChan, msg, &metrics.AlertChannelDrops)
	}
	send(d.WSChan, msg, &metrics.WSChannelDrops)
}

func send(ch chan *domain.Snapshot, msg *domain.Snapshot, drops *atomic.Int64) {
	if ch == nil {
		return
	}
	select {
	case ch <- msg:
	default:
		drops.Add(1)
	}
}

// Close ends the fan-out; workers drain what is buffered and return.
// Dispatch must not be called concurrently with Close.
func (d *Dispatcher) Close() {
	if d.closed.Swap(true) {
		return
	}
	for _, ch := range []chan *domain.Snapshot{d.DBChan, d.StateChan, d.AlertChan, d.WSChan} {
		if ch != nil {
			close(ch)
		}
	}
}
