package reconcile

import (
	"strings"

	"github.com/google/uuid"
)

// Planner turns one event's observations into ordered ledger mutations.
type Planner struct {
	resolver *Resolver
	policy   string
	newID    func() string
}

// PlannerOption customizes a planner.
type PlannerOption func(*Planner)

// WithIDGenerator overrides how ids of created records are minted.
func WithIDGenerator(gen func() string) PlannerOption {
	return func(p *Planner) {
		if gen != nil {
			p.newID = gen
		}
	}
}

// NewPlanner creates a planner from the tuning config.
func NewPlanner(cfg Config, opts ...PlannerOption) *Planner {
	p := &Planner{
		resolver: NewResolver(cfg.MatchThreshold),
		policy:   cfg.RemovalPolicy,
		newID:    uuid.NewString,
	}
	if !cfg.IsValidRemovalPolicy() {
		p.policy = RemovalDelete
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan resolves additions first, then removals, against snap. The snapshot is
// updated in place as each mutation is emitted.
func (p *Planner) Plan(in Input, snap *Snapshot) *Plan {
	plan := &Plan{
		Mutations:  []Mutation{},
		Changes:    []ChangeEntry{},
		Unresolved: []Observation{},
	}
	plan.Summary.Observed = in.Observed()

	for _, obs := range in.Added {
		p.planAdd(plan, obs, in, snap)
	}
	for _, obs := range in.Removed {
		p.planRemove(plan, obs, snap)
	}

	return plan
}

func (p *Planner) planAdd(plan *Plan, obs Observation, in Input, snap *Snapshot) {
	rec, score := p.resolver.Resolve(obs, snap)
	if rec == nil {
		name := strings.TrimSpace(obs.Name)
		rec = &Record{
			ID:             p.newID(),
			Name:           name,
			NameNormalized: strings.ToLower(name),
			Category:       NormalizeCategory(obs.Category),
			Quantity:       1,
			LastDetected:   in.DetectedAt,
			DeviceID:       in.DeviceID,
			OwnerID:        in.OwnerID,
		}
		snap.Append(rec)

		created := *rec
		plan.Mutations = append(plan.Mutations, Mutation{
			Type:        MutationCreate,
			RecordID:    rec.ID,
			Record:      &created,
			DetectedAt:  in.DetectedAt,
			Observation: obs,
		})
		plan.Summary.Created++
	} else {
		rec.Quantity++
		rec.LastDetected = in.DetectedAt
		plan.Mutations = append(plan.Mutations, Mutation{
			Type:        MutationIncrement,
			RecordID:    rec.ID,
			DetectedAt:  in.DetectedAt,
			Observation: obs,
			Score:       score,
		})
		plan.Summary.Incremented++
	}

	plan.Changes = append(plan.Changes, changeFor(rec, ChangeAdded))
}

func (p *Planner) planRemove(plan *Plan, obs Observation, snap *Snapshot) {
	rec, score := p.resolver.Resolve(obs, snap)
	if rec == nil || (p.policy == RemovalZero && rec.Quantity <= 0) {
		plan.Unresolved = append(plan.Unresolved, obs)
		plan.Summary.Unresolved++
		return
	}

	m := Mutation{RecordID: rec.ID, Observation: obs, Score: score}
	entry := changeFor(rec, ChangeRemoved)

	switch {
	case rec.Quantity > 1:
		rec.Quantity--
		m.Type = MutationDecrement
		plan.Summary.Decremented++
	case p.policy == RemovalZero:
		rec.Quantity = 0
		m.Type = MutationZero
		plan.Summary.Zeroed++
	default:
		snap.Remove(rec.ID)
		m.Type = MutationDelete
		plan.Summary.Deleted++
	}

	plan.Mutations = append(plan.Mutations, m)
	plan.Changes = append(plan.Changes, entry)
}

func changeFor(rec *Record, action ChangeAction) ChangeEntry {
	return ChangeEntry{
		RecordID: rec.ID,
		Name:     rec.Name,
		Category: rec.Category,
		Action:   action,
	}
}
