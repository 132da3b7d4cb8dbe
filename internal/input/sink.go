package input

// Sink A registered virtual device accepting typed events.
// Callers are responsible for ordering and for ending every frame with a
// SYN_REPORT.
type Sink interface {
	Emit(evType, code uint16, value int32) error
	Close() error
}

// Registrar creates a Sink for the given capability set.
type Registrar interface {
	Register(caps Capabilities) (Sink, error)
}

// RegistrarFunc adapts a plain function to Registrar.
type RegistrarFunc func(caps Capabilities) (Sink, error)

func (f RegistrarFunc) Register(caps Capabilities) (Sink, error) {
	return f(caps)
}
