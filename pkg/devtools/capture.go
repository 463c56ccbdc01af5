package devtools

import "sync"

// Transition is one forwarded state change, recorded for assertions in tests.
type Transition struct {
	Label string
	State any
}

// CaptureInspector records transitions instead of forwarding them.
type CaptureInspector struct {
	mu          sync.Mutex
	Transitions []Transition
	Connected   []string
	ConnectErr  error
	SendErr     error
}

// Connect records the store label and returns a recording connection.
func (c *CaptureInspector) Connect(label string) (Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ConnectErr != nil {
		return nil, c.ConnectErr
	}
	c.Connected = append(c.Connected, label)
	return captureConn{inspector: c}, nil
}

type captureConn struct {
	inspector *CaptureInspector
}

func (c captureConn) Send(label string, state any) error {
	c.inspector.mu.Lock()
	defer c.inspector.mu.Unlock()
	c.inspector.Transitions = append(c.inspector.Transitions, Transition{Label: label, State: state})
	return c.inspector.SendErr
}
