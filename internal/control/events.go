package control

import "time"

// EventKind identifies what happened in the control loop.
type EventKind string

const (
	EventFailSafe       EventKind = "fail_safe"
	EventRecovered      EventKind = "recovered"
	EventReadError      EventKind = "read_error"
	EventWriteError     EventKind = "write_error"
	EventReloaded       EventKind = "reloaded"
	EventReloadRejected EventKind = "reload_rejected"
)

// Event is a notable transition of the control loop.
type Event struct {
	Kind EventKind
	Time time.Time
	// Duty is the duty in effect after the event.
	Duty int
	Err  error
}

const defaultEventBuffer = 32

// emit never blocks; events are dropped when nobody drains the channel.
func (c *Controller) emit(kind EventKind, duty int, err error) {
	ev := Event{Kind: kind, Time: c.now(), Duty: duty, Err: err}

	select {
	case c.events <- ev:
	default:
		c.log.Debug().Str("event", string(kind)).Msg("Event dropped, channel full")
	}
}
