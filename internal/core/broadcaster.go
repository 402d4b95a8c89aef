package core

import "github.com/rs/zerolog"

// Broadcaster fans an event out to every connection in a registry snapshot.
// It encodes the event once, enqueues the same bytes on each outbound channel
// and never blocks: a full buffer means the client is too slow and its
// connection id is reported back to the caller. The broadcaster never removes
// records itself; the hub is the sole owner of registry removal, which keeps
// the close-handler and the broadcaster from racing over the same record.
type Broadcaster struct {
	reg    *Registry
	encode EncodeFunc
	log    *zerolog.Logger
}

// NewBroadcaster builds a broadcaster over the given registry.
func NewBroadcaster(reg *Registry, encode EncodeFunc, logger *zerolog.Logger) *Broadcaster {
	return &Broadcaster{reg: reg, encode: encode, log: logger}
}

// Broadcast delivers event to all current members and returns the connection
// ids whose outbound buffer rejected the frame. Delivery is best-effort and
// unacknowledged, but every member of the snapshot is either enqueued to or
// reported, never skipped silently.
func (b *Broadcaster) Broadcast(event *Event) []string {
	payload, err := b.encode(event)
	if err != nil {
		b.log.Error().Err(err).Int("kind", int(event.Kind)).Msg("encode broadcast event")
		return nil
	}

	var failed []string
	for _, p := range b.reg.Snapshot() {
		select {
		case p.Outbound <- payload:
		default:
			failed = append(failed, p.ConnID)
		}
	}
	return failed
}
