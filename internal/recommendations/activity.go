// internal/recommendations/activity.go
// Recent shopper activity, tolerant of the two user_activities schema variants

package recommendations

import (
	"context"

	"github.com/faycalhabibahmatalbachar/gba/internal/catalog"
	"github.com/faycalhabibahmatalbachar/gba/internal/logging"
)

const activityTable = "user_activities"

// Activity window caps per mode
const (
	DefaultFullActivityCap  = 200
	MaxFullActivityCap      = 500
	DefaultLightActivityCap = 100
	MaxLightActivityCap     = 200
)

var trackedActions = []string{
	string(ActionProductView),
	string(ActionCartAdd),
	string(ActionFavoriteAdd),
	string(ActionCartRemove),
	string(ActionFavoriteRemove),
}

// ActivityQuery is one schema variant of the activity lookup
type ActivityQuery struct {
	Name         string
	ActionColumn string
	// ProductOnly filters entity_type = product
	ProductOnly bool
	// Actions is matched with IN; a single action is matched with eq
	Actions []string
}

// Build renders the variant for one user
func (v ActivityQuery) Build(userID string, limit int) *catalog.Query {
	columns := []string{"entity_id"}
	if v.ProductOnly {
		columns = append(columns, "entity_type")
	}
	columns = append(columns, v.ActionColumn, "created_at")

	q := catalog.From(activityTable).Select(columns...).Eq("user_id", userID)
	if v.ProductOnly {
		q.Eq("entity_type", "product")
	}
	if len(v.Actions) == 1 {
		q.Eq(v.ActionColumn, v.Actions[0])
	} else {
		q.In(v.ActionColumn, v.Actions)
	}
	return q.Order("created_at", true).Limit(limit)
}

// activityVariants lists the lookups in the order they are tried
func activityVariants(mode Mode) []ActivityQuery {
	if mode == ModeLight {
		views := []string{string(ActionProductView)}
		return []ActivityQuery{
			{Name: "action_type", ActionColumn: "action_type", Actions: views},
			{Name: "activity_type", ActionColumn: "activity_type", Actions: views},
		}
	}
	return []ActivityQuery{
		{Name: "action_type", ActionColumn: "action_type", ProductOnly: true, Actions: trackedActions},
		{Name: "activity_type", ActionColumn: "activity_type", ProductOnly: true, Actions: trackedActions},
	}
}

// ActivityCap clamps a requested window for the mode; zero selects the default
func ActivityCap(mode Mode, requested int) int {
	def, hi := DefaultFullActivityCap, MaxFullActivityCap
	if mode == ModeLight {
		def, hi = DefaultLightActivityCap, MaxLightActivityCap
	}
	if requested == 0 {
		requested = def
	}
	return clamp(requested, 1, hi)
}

type attemptOutcome int

const (
	attemptFailed attemptOutcome = iota
	attemptEmpty
	attemptRows
)

func (o attemptOutcome) String() string {
	switch o {
	case attemptRows:
		return "rows"
	case attemptEmpty:
		return "empty"
	default:
		return "failed"
	}
}

type attempt struct {
	variant ActivityQuery
	events  []ActivityEvent
	err     error
}

func (a attempt) outcome() attemptOutcome {
	switch {
	case a.err != nil:
		return attemptFailed
	case len(a.events) == 0:
		return attemptEmpty
	default:
		return attemptRows
	}
}

// ActivityFetcher reads recent events with the shopper's own credentials
type ActivityFetcher struct {
	store catalog.Store
}

// NewActivityFetcher creates a fetcher over store
func NewActivityFetcher(store catalog.Store) *ActivityFetcher {
	return &ActivityFetcher{store: store}
}

// Fetch tries each variant in order and returns the first one yielding qualifying rows.
// Failures are swallowed: when nothing qualifies the result is empty, never an error.
func (f *ActivityFetcher) Fetch(ctx context.Context, userID, token string, mode Mode, limit int) []ActivityEvent {
	store := f.store.WithToken(token)
	limit = ActivityCap(mode, limit)

	for _, variant := range activityVariants(mode) {
		a := f.try(ctx, store, variant, userID, limit)
		activityAttempts.WithLabelValues(variant.Name, a.outcome().String()).Inc()

		switch a.outcome() {
		case attemptRows:
			return a.events
		case attemptFailed:
			logging.Ctx(ctx).Debug().Err(a.err).Str("variant", variant.Name).Msg("activity variant failed")
		}

		if ctx.Err() != nil {
			break
		}
	}
	return []ActivityEvent{}
}

func (f *ActivityFetcher) try(ctx context.Context, store catalog.Store, variant ActivityQuery, userID string, limit int) attempt {
	rows, err := store.Execute(ctx, variant.Build(userID, limit))
	if err != nil {
		return attempt{variant: variant, err: err}
	}

	events := make([]ActivityEvent, 0, len(rows))
	for _, row := range rows {
		if evt, ok := eventFromRow(row); ok {
			events = append(events, evt)
		}
	}
	return attempt{variant: variant, events: events}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
