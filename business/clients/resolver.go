package clients

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"vitalink/domain"
	"vitalink/pkg/debounce"
	"vitalink/pkg/logger"
	"vitalink/pkg/metrics"
)

// State is the resolver's position in its search-or-create flow.
type State string

const (
	StateIdle           State = "idle"
	StateSearching      State = "searching"
	StateResultsShown   State = "results_shown"
	StateNoResultsShown State = "no_results_shown"
	StateBound          State = "bound"
)

const (
	resolverQuiescence = 500 * time.Millisecond
	resolverTimeout    = 10 * time.Second
)

var (
	ErrAlreadyBound  = errors.New("a client is already bound")
	ErrUnknownResult = errors.New("client is not in the current search results")
)

// Directory is the client-directory surface the resolver consumes.
type Directory interface {
	SearchClients(ctx context.Context, practitionerID uint, term string) ([]domain.ClientSummary, error)
	CreateClient(ctx context.Context, practitionerID uint, input CreateClientInput) (domain.ClientSummary, error)
}

// Resolver turns free-text typing into a single bound client identity:
// Idle → Searching → {ResultsShown | NoResultsShown} → Bound. Queries shorter
// than two characters never leave Idle; a directory lookup fires only after
// 500 ms of typing quiescence, and a superseded lookup's result is discarded.
// A directory failure degrades to NoResultsShown rather than raising.
type Resolver struct {
	mu             sync.Mutex
	dir            Directory
	practitionerID uint
	deb            *debounce.Debouncer

	state   State
	query   string
	results []domain.ClientSummary
	binding *domain.ClientBinding
}

type ResolverOption func(*Resolver)

// WithResolverQuiescence overrides the debounce window; tests shrink it.
func WithResolverQuiescence(window time.Duration) ResolverOption {
	return func(r *Resolver) {
		r.deb = debounce.New(window)
	}
}

func NewResolver(dir Directory, practitionerID uint, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		dir:            dir,
		practitionerID: practitionerID,
		deb:            debounce.New(resolverQuiescence),
		state:          StateIdle,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Type records a keystroke in the client search box. While a client is bound
// the box is inert; binding changes only through Clear.
func (r *Resolver) Type(query string) {
	r.mu.Lock()

	if r.state == StateBound {
		r.mu.Unlock()
		return
	}

	r.query = query

	term := strings.TrimSpace(query)
	if len([]rune(term)) < minSearchLength {
		r.state = StateIdle
		r.results = nil
		r.mu.Unlock()
		r.deb.Cancel()
		return
	}

	r.state = StateSearching
	r.mu.Unlock()

	r.deb.Trigger(func(gen uint64) {
		r.search(term, gen)
	})
}

func (r *Resolver) search(term string, gen uint64) {
	metrics.ClientSearchTotal.Inc()

	ctx, cancel := context.WithTimeout(context.Background(), resolverTimeout)
	defer cancel()

	results, err := r.dir.SearchClients(ctx, r.practitionerID, term)

	if !r.deb.Live(gen) {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// A keystroke or Clear may have superseded this lookup between the check
	// above and taking the lock.
	if !r.deb.Live(gen) {
		return
	}

	// The user may have bound a client while this lookup was in flight.
	if r.state == StateBound {
		return
	}

	if err != nil {
		logger.Warn("client search failed", "term", term, "error", err)
		r.results = nil
		r.state = StateNoResultsShown
		return
	}

	if len(results) == 0 {
		r.results = nil
		r.state = StateNoResultsShown
		return
	}

	r.results = results
	r.state = StateResultsShown
}

// Select binds one of the currently shown results, clearing the query.
func (r *Resolver) Select(clientID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateBound {
		return ErrAlreadyBound
	}

	for _, result := range r.results {
		if result.ID == clientID {
			r.bindLocked(result)
			return nil
		}
	}

	return ErrUnknownResult
}

// Create submits the create-client form. Field-scoped validation errors come
// back as FieldErrors without changing state; on success the new client is
// bound directly.
func (r *Resolver) Create(ctx context.Context, input CreateClientInput) (domain.ClientBinding, error) {
	r.mu.Lock()
	if r.state == StateBound {
		r.mu.Unlock()
		return domain.ClientBinding{}, ErrAlreadyBound
	}
	r.mu.Unlock()

	summary, err := r.dir.CreateClient(ctx, r.practitionerID, input)
	if err != nil {
		return domain.ClientBinding{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.bindLocked(summary)

	return *r.binding, nil
}

// Clear discards the binding and returns to Idle.
func (r *Resolver) Clear() {
	r.mu.Lock()
	r.binding = nil
	r.results = nil
	r.query = ""
	r.state = StateIdle
	r.mu.Unlock()

	r.deb.Cancel()
}

// Restore seeds the binding from a stored record (edit mode). A zero client
// id carries no identity to bind, so the resolver stays Idle and the client
// must be resolved again through search or create.
func (r *Resolver) Restore(binding domain.ClientBinding) {
	if binding.ClientID == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.binding = &binding
	r.state = StateBound
	r.query = ""
	r.results = nil
}

func (r *Resolver) bindLocked(summary domain.ClientSummary) {
	r.binding = &domain.ClientBinding{
		ClientID:    summary.ID,
		DisplayName: summary.DisplayName(),
		Email:       summary.Email,
	}
	r.state = StateBound
	r.query = ""
	r.results = nil
	r.deb.Cancel()
}

func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

// Binding returns the bound client, if any.
func (r *Resolver) Binding() (domain.ClientBinding, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.binding == nil {
		return domain.ClientBinding{}, false
	}

	return *r.binding, true
}

// Snapshot is the renderable resolver state.
type Snapshot struct {
	State     State                  `json:"state"`
	Query     string                 `json:"query"`
	Results   []domain.ClientSummary `json:"results"`
	Binding   *domain.ClientBinding  `json:"binding,omitempty"`
	CanCreate bool                   `json:"can_create"`
}

func (r *Resolver) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		State:     r.state,
		Query:     r.query,
		Results:   append([]domain.ClientSummary(nil), r.results...),
		CanCreate: r.state == StateNoResultsShown,
	}
	if r.binding != nil {
		b := *r.binding
		snap.Binding = &b
	}

	return snap
}
