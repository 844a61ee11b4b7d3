package access

// Sink receives every observable change of a session so it can be rendered.
// Implementations must not block; the session calls them from its poll loop.
type Sink interface {
	// Line is called with every record received from the device, before parsing.
	Line(text string)
	// IdentifierObserved is called when an identifier is seen for the first time.
	IdentifierObserved(id string)
	// IdentifierChanged is called when the current identifier is set or cleared.
	IdentifierChanged(id string, ok bool)
	VerdictChanged(v Verdict)
	CheckModeChanged(on bool)
	// ConnectionChanged is called when the transport is opened or closed.
	ConnectionChanged(port string, connected bool)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Line(string)                    {}
func (NopSink) IdentifierObserved(string)      {}
func (NopSink) IdentifierChanged(string, bool) {}
func (NopSink) VerdictChanged(Verdict)         {}
func (NopSink) CheckModeChanged(bool)          {}
func (NopSink) ConnectionChanged(string, bool) {}

// MultiSink fans events out to several sinks in order.
type MultiSink []Sink

func (s MultiSink) Line(text string) {
	for _, sink := range s {
		sink.Line(text)
	}
}

func (s MultiSink) IdentifierObserved(id string) {
	for _, sink := range s {
		sink.IdentifierObserved(id)
	}
}

func (s MultiSink) IdentifierChanged(id string, ok bool) {
	for _, sink := range s {
		sink.IdentifierChanged(id, ok)
	}
}

func (s MultiSink) VerdictChanged(v Verdict) {
	for _, sink := range s {
		sink.VerdictChanged(v)
	}
}

func (s MultiSink) CheckModeChanged(on bool) {
	for _, sink := range s {
		sink.CheckModeChanged(on)
	}
}

func (s MultiSink) ConnectionChanged(port string, connected bool) {
	for _, sink := range s {
		sink.ConnectionChanged(port, connected)
	}
}

// Ensure we implement the interface.
var (
	_ Sink = NopSink{}
	_ Sink = MultiSink(nil)
)
