package reconcile

import "time"

// ChangeAction tags a change log entry.
type ChangeAction string

const (
	// ChangeAdded marks an observation that entered the inventory.
	ChangeAdded ChangeAction = "added"
	// ChangeRemoved marks an observation that left the inventory.
	ChangeRemoved ChangeAction = "removed"
)

// AlertStatusPending is the initial status of every batch alert.
const AlertStatusPending = "pending"

// DefaultCategory is assigned to observations reported without a category.
const DefaultCategory = "uncategorized"

// Record is one inventory ledger row as seen by the engine.
type Record struct {
	// ID is the opaque record identifier.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// NameNormalized is the lowercased name. It is a hint, never a key.
	NameNormalized string `json:"name_normalized"`

	// Category is the lowercased category. Observations only match records of the same category.
	Category string `json:"category"`

	// Quantity is the current count. Never negative.
	Quantity int `json:"quantity"`

	// LastDetected is the time of the last matched addition.
	LastDetected time.Time `json:"last_detected"`

	// DeviceID is the owning device.
	DeviceID string `json:"device_id"`

	// OwnerID is the owning user.
	OwnerID string `json:"owner_id"`
}

// Observation is one item reported by the vision service as added or removed.
type Observation struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// ChangeEntry is one line of the per-event change log.
type ChangeEntry struct {
	RecordID string       `json:"record_id"`
	Name     string       `json:"name"`
	Category string       `json:"category"`
	Action   ChangeAction `json:"action"`
}

// Alert is a review alert raised when an event carries many observations.
type Alert struct {
	ID        string        `json:"id"`
	OwnerID   string        `json:"owner_id"`
	DeviceID  string        `json:"device_id"`
	Timestamp time.Time     `json:"timestamp"`
	Changes   []ChangeEntry `json:"changes"`
	Status    string        `json:"status"`
}

// MutationType represents the type of ledger mutation.
type MutationType string

const (
	// MutationCreate inserts a new record with quantity 1.
	MutationCreate MutationType = "create"
	// MutationIncrement adds one to the quantity and refreshes last_detected.
	MutationIncrement MutationType = "increment"
	// MutationDecrement subtracts one from the quantity.
	MutationDecrement MutationType = "decrement"
	// MutationDelete removes the record.
	MutationDelete MutationType = "delete"
	// MutationZero sets the quantity to zero and keeps the record.
	MutationZero MutationType = "zero"
)

// Mutation is a planned ledger write.
type Mutation struct {
	// Type specifies the write to perform.
	Type MutationType `json:"type"`

	// RecordID is the target record.
	RecordID string `json:"record_id"`

	// Record holds the full row for MutationCreate only.
	Record *Record `json:"record,omitempty"`

	// DetectedAt is written to last_detected by create and increment.
	DetectedAt time.Time `json:"detected_at"`

	// Observation is the observation that produced this mutation.
	Observation Observation `json:"observation"`

	// Score is the similarity of the matched record; zero for creates.
	Score float64 `json:"score"`
}

// Plan contains the mutations and change log produced for one event.
type Plan struct {
	// Mutations are applied in order inside one transaction.
	Mutations []Mutation `json:"mutations"`

	// Changes is the change log, one entry per resolved observation.
	Changes []ChangeEntry `json:"changes"`

	// Unresolved lists removal observations that matched no record.
	Unresolved []Observation `json:"unresolved"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a plan.
type PlanSummary struct {
	// Observed is len(added)+len(removed), counted before resolution.
	Observed    int `json:"observed"`
	Created     int `json:"created"`
	Incremented int `json:"incremented"`
	Decremented int `json:"decremented"`
	Deleted     int `json:"deleted"`
	Zeroed      int `json:"zeroed"`
	Unresolved  int `json:"unresolved"`
}

// Input is everything the planner needs for one event.
type Input struct {
	Added      []Observation
	Removed    []Observation
	// Discarded counts reported items that could not become observations.
	Discarded  int
	OwnerID    string
	DeviceID   string
	DetectedAt time.Time
}

// Observed returns the raw count of reported items used by the alert threshold.
func (in Input) Observed() int {
	return len(in.Added) + len(in.Removed) + in.Discarded
}
