package core

// Presence is the per-connection state tracked by the registry: who is behind
// the connection and whether they are currently typing. Outbound is the
// connection's send path; the core only ever enqueues encoded frames on it and
// never closes it, so a send can never panic against a racing disconnect.
type Presence struct {
	ConnID      string
	UserID      int64
	DisplayName string
	Typing      bool
	Outbound    chan<- []byte
}
