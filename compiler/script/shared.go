package script

import (
	"sync"
)

// Grammar parses scripting/SQL source into a statement sequence.
type Grammar interface {
	Parse(query string) ([]Statement, error)
}

// SharedEngine is the only way the rest of the system reaches the
// process-wide Engine instance. The engine's parse tables are expensive
// to build and its scratch state makes concurrent parses unsafe, so
// Parse serializes callers with a mutex. The critical section is the
// parse call alone — never catalog I/O, plan evaluation, or submission.
// Contending callers block until the lock frees.
type SharedEngine struct {
	mu         sync.Mutex
	underlying Grammar
}

var _ Grammar = &SharedEngine{}

func NewSharedEngine() *SharedEngine {
	return &SharedEngine{
		underlying: NewEngine(),
	}
}

func (se *SharedEngine) Parse(query string) ([]Statement, error) {
	se.mu.Lock()
	defer se.mu.Unlock()
	return se.underlying.Parse(query)
}
