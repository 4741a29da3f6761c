package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/charlesng35/formstore/internal/monitoring"
)

// StorageState describes how the active store was selected at startup.
type StorageState struct {
	Mode string
	// StartupErr is the database error that forced the in-memory store, if any.
	StartupErr error
}

// Storage reports degraded while the service runs on the in-memory store
// because the database could not be reached at startup. Memory mode chosen
// explicitly is reported as up.
func Storage(state StorageState) monitoring.Check {
	return monitoring.NewCheck("storage", func(context.Context) monitoring.ProbeResult {
		start := time.Now()
		if state.StartupErr != nil {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusDegraded,
				Details:  fmt.Sprintf("running in %s mode: %v", state.Mode, state.StartupErr),
				Duration: time.Since(start),
			}
		}
		return monitoring.ProbeResult{
			Status:   monitoring.StatusUp,
			Details:  state.Mode,
			Duration: time.Since(start),
		}
	})
}
