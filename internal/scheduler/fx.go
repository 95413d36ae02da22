package scheduler

import (
	"go.uber.org/fx"
)

// Module provides the scheduler; starting the loop is up to the
// binary (the monolith runs it in-process, the sweeper runs once).
var Module = fx.Module("scheduler",
	fx.Provide(func(p Params) *Scheduler {
		return New(Config{}, p)
	}),
)
