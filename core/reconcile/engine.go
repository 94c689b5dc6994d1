package reconcile

// Outcome is the full decision for one event: what to write and whether to alert.
type Outcome struct {
	Plan  *Plan  `json:"plan"`
	Alert *Alert `json:"alert,omitempty"`
}

// Engine bundles the planner and the alert trigger.
type Engine struct {
	cfg     Config
	planner *Planner
	trigger AlertTrigger
}

// NewEngine creates an engine from the tuning config.
func NewEngine(cfg Config, opts ...PlannerOption) *Engine {
	return &Engine{
		cfg:     cfg,
		planner: NewPlanner(cfg, opts...),
		trigger: AlertTrigger{Threshold: cfg.AlertThreshold},
	}
}

// Config returns the tuning the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Reconcile plans the event against snap and evaluates the alert threshold.
// It performs no I/O; the caller commits the outcome.
func (e *Engine) Reconcile(in Input, snap *Snapshot) *Outcome {
	plan := e.planner.Plan(in, snap)
	alert := e.trigger.MaybeAlert(in.Observed(), plan.Changes, in.OwnerID, in.DeviceID, in.DetectedAt)
	return &Outcome{Plan: plan, Alert: alert}
}
