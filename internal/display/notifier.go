package display

import (
	"sync"

	"github.com/hammamikhairi/recipebook/internal/catalog"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// PrintFunc prints one line of user-facing output.
type PrintFunc func(text string)

// Notifier watches catalog state and reports the switch to mock data,
// which happens as a side effect of whatever command hit the dead backend.
type Notifier struct {
	log   *logger.Logger
	print PrintFunc

	mu   sync.Mutex
	mock bool
}

// NewNotifier creates a notifier primed with the current state so that
// nothing is reported for it.
func NewNotifier(log *logger.Logger, initial catalog.State, print PrintFunc) *Notifier {
	return &Notifier{log: log, print: print, mock: initial.MockMode}
}

// Observe compares st against the last state seen. Pass it to
// catalog.Store.Subscribe.
func (n *Notifier) Observe(st catalog.State) {
	n.mu.Lock()
	entered := st.MockMode && !n.mock
	n.mock = st.MockMode
	n.mu.Unlock()

	if entered {
		n.log.Debug("notify: mock mode")
		n.print("Backend unreachable. Working with local data until restart.")
	}
}
