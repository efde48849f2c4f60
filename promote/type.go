package promote

import (
	"time"

	"go.uber.org/zap"

	"github.com/HaotaoYang/fling"
)

// Mode reports which read path a Manager is serving from.
type Mode int32

const (
	// ModeStaging serves reads from the mutable staging map; no table has
	// been compiled yet.
	ModeStaging Mode = iota
	// ModePromoted serves reads from the compiled table.
	ModePromoted
)

func (m Mode) String() string {
	switch m {
	case ModeStaging:
		return "staging"
	case ModePromoted:
		return "promoted"
	default:
		return "unknown"
	}
}

// ManagerConfig configures a Manager's promotion cadence.
type ManagerConfig struct {
	// TickInterval is how often the manager checks the staging map for
	// quiescence.
	TickInterval time.Duration
	// QuietTicks is how many consecutive ticks must pass without a write
	// before the staging map is promoted.
	QuietTicks int
	// TableID optionally fixes the identifier promotions load under. Empty
	// means a fresh one is allocated when the manager starts.
	TableID fling.TableID
	// Logger receives promotion lifecycle events. Nil means no logging.
	Logger *zap.Logger
}

// NewManagerConfig returns a config with the given cadence and defaults for
// the rest. Non-positive cadence values are programming errors and panic.
func NewManagerConfig(tickInterval time.Duration, quietTicks int) ManagerConfig {
	if tickInterval <= 0 {
		panic("promote: tickInterval should be greater than 0")
	}
	if quietTicks <= 0 {
		panic("promote: quietTicks should be greater than 0")
	}
	return ManagerConfig{
		TickInterval: tickInterval,
		QuietTicks:   quietTicks,
	}
}
