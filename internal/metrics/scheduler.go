package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SchedulerTicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_ticks_total",
		Help: "Total number of dispatcher ticks started",
	})

	SchedulerAgentsChecked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_agents_checked_total",
		Help: "Total number of agents evaluated by the dispatcher",
	})

	SchedulerAgentsTriggered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_agents_triggered_total",
		Help: "Total number of agents dispatched to the agent server",
	})

	SchedulerAgentsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_agents_skipped_total",
		Help: "Total number of agent evaluations that ended in a skip",
	})

	SchedulerTriggerFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_trigger_failures_total",
		Help: "Total number of external trigger calls that failed",
	})
)
