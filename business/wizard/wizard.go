package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"vitalink/business/catalog"
	"vitalink/business/clients"
	"vitalink/business/recommendation"
	"vitalink/domain"
	"vitalink/pkg/logger"
	"vitalink/pkg/metrics"
)

// Step is one of the wizard's three ordered screens.
type Step int

const (
	StepSelect Step = 1
	StepDetail Step = 2
	StepClient Step = 3
)

type StepStatus string

const (
	StepCompleted StepStatus = "completed"
	StepActive    StepStatus = "active"
	StepUpcoming  StepStatus = "upcoming"
)

var stepLabels = map[Step]string{
	StepSelect: "Select products",
	StepDetail: "Dosage & protocol",
	StepClient: "Client & confirm",
}

var (
	ErrEmptySelection   = errors.New("select at least one product before continuing")
	ErrInvalidProtocol  = errors.New("protocol name is required")
	ErrNoClientBound    = errors.New("bind a client before submitting")
	ErrNotAtFinalStep   = errors.New("complete the previous steps before submitting")
	ErrSubmitInFlight   = errors.New("a submission is already in progress")
	ErrAtFinalStep      = errors.New("already at the final step")
	ErrAlreadySubmitted = errors.New("recommendation already submitted")
)

// RecommendationStore is the persistence surface the wizard submits to.
type RecommendationStore interface {
	Create(ctx context.Context, input recommendation.CreateInput) (domain.Recommendation, error)
}

// Session is one practitioner's in-progress recommendation: a catalog index,
// a selection, a protocol draft and a client resolver, driven through three
// gated steps. Sessions live only in memory; abandoning one discards it.
//
// The catalog index and the resolver carry their own locks because debounce
// timers complete on other goroutines; the session mutex covers the
// selection, the draft and the step cursor.
type Session struct {
	mu sync.Mutex

	id             string
	practitionerID uint
	createdAt      time.Time
	touchedAt      time.Time

	catalog   *catalog.SearchIndex
	selection *SelectionSet
	draft     ProtocolDraft
	resolver  *clients.Resolver

	step         Step
	submitting   bool
	submitted    bool
	submitErrMsg string
	result       *SubmitResult

	// editRecordID is set when the session was opened to edit a stored
	// record. The selection is deliberately NOT restored: the catalog has no
	// way to rehydrate exact items by id, so Step 1 starts empty even though
	// the record had line items.
	editRecordID uint64

	store    RecommendationStore
	storeURL string
}

type SubmitResult struct {
	Recommendation domain.Recommendation `json:"recommendation"`
	CartLink       string                `json:"cart_link"`
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) PractitionerID() uint {
	return s.practitionerID
}

func (s *Session) touch() {
	s.mu.Lock()
	s.touchedAt = time.Now()
	s.mu.Unlock()
}

// --- catalog step ---

func (s *Session) SearchCatalog(term string) {
	s.touch()
	s.catalog.Search(term)
}

func (s *Session) FilterCatalog(category string) {
	s.touch()
	s.catalog.FilterByCategory(category)
}

func (s *Session) CatalogPage(page int) catalog.PageView {
	s.touch()
	s.catalog.SetPage(page)
	return s.catalog.View()
}

func (s *Session) CatalogView() catalog.PageView {
	return s.catalog.View()
}

func (s *Session) CatalogCategories() []string {
	return s.catalog.Categories()
}

// ToggleProduct looks the product up in the current fetched set and toggles
// it in the selection. It reports whether the item is selected afterwards.
func (s *Session) ToggleProduct(productID uint64) (bool, error) {
	s.touch()

	item, ok := s.catalog.Find(productID)
	if !ok {
		return false, errors.New("product is not in the current catalog results")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitted {
		return false, ErrAlreadySubmitted
	}

	return s.selection.Toggle(item), nil
}

// EntryUpdate carries the mutable per-item fields; nil means unchanged.
type EntryUpdate struct {
	Quantity    *int
	DailyDosage *string
	Notes       *string
}

func (s *Session) UpdateEntry(productID uint64, update EntryUpdate) error {
	s.touch()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitted {
		return ErrAlreadySubmitted
	}

	if update.Quantity != nil {
		if err := s.selection.SetQuantity(productID, *update.Quantity); err != nil {
			return err
		}
	}
	if update.DailyDosage != nil {
		if err := s.selection.SetDailyDosage(productID, *update.DailyDosage); err != nil {
			return err
		}
	}
	if update.Notes != nil {
		if err := s.selection.SetNotes(productID, *update.Notes); err != nil {
			return err
		}
	}

	return nil
}

// --- protocol step ---

func (s *Session) SetProtocol(name, description string) error {
	s.touch()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitted {
		return ErrAlreadySubmitted
	}

	s.draft = ProtocolDraft{Name: name, Description: description}

	return nil
}

// --- client step ---

func (s *Session) SearchClient(query string) {
	s.touch()
	s.resolver.Type(query)
}

func (s *Session) SelectClient(clientID uint64) error {
	s.touch()
	return s.resolver.Select(clientID)
}

func (s *Session) CreateClient(ctx context.Context, input clients.CreateClientInput) (domain.ClientBinding, error) {
	s.touch()
	return s.resolver.Create(ctx, input)
}

func (s *Session) ClearClient() {
	s.touch()
	s.resolver.Clear()
}

func (s *Session) ClientState() clients.Snapshot {
	return s.resolver.Snapshot()
}

// --- step transitions ---

// Next advances one step. Forward transitions are gated: leaving Step 1
// requires a non-empty selection, leaving Step 2 a valid protocol draft.
func (s *Session) Next() error {
	s.touch()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitted {
		return ErrAlreadySubmitted
	}

	switch s.step {
	case StepSelect:
		if s.selection.IsEmpty() {
			return ErrEmptySelection
		}
		s.step = StepDetail
	case StepDetail:
		if !s.draft.IsValid() {
			return ErrInvalidProtocol
		}
		s.step = StepClient
	default:
		return ErrAtFinalStep
	}

	return nil
}

// Back always succeeds and never discards state.
func (s *Session) Back() {
	s.touch()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step > StepSelect {
		s.step--
	}
}

type StepIndicator struct {
	Step   int        `json:"step"`
	Label  string     `json:"label"`
	Status StepStatus `json:"status"`
}

func (s *Session) indicatorLocked() []StepIndicator {
	indicators := make([]StepIndicator, 0, 3)
	for step := StepSelect; step <= StepClient; step++ {
		status := StepUpcoming
		switch {
		case s.submitted || step < s.step:
			status = StepCompleted
		case step == s.step:
			status = StepActive
		}
		indicators = append(indicators, StepIndicator{
			Step:   int(step),
			Label:  stepLabels[step],
			Status: status,
		})
	}

	return indicators
}

// --- submission ---

// Submit builds the creation payload from the current state and persists it
// through the recommendation store. The session lock is released around the
// store call so polling and edits keep working while the write is in flight;
// a second Submit during that window is refused. On failure the wizard stays
// at Step 3 with everything intact so the practitioner can retry; on success
// the cart link is the completion artifact.
func (s *Session) Submit(ctx context.Context) (SubmitResult, error) {
	s.touch()

	s.mu.Lock()

	if s.submitted {
		s.mu.Unlock()
		return SubmitResult{}, ErrAlreadySubmitted
	}
	if s.submitting {
		s.mu.Unlock()
		return SubmitResult{}, ErrSubmitInFlight
	}
	if s.step != StepClient {
		s.mu.Unlock()
		return SubmitResult{}, ErrNotAtFinalStep
	}

	binding, bound := s.resolver.Binding()
	if !bound {
		s.mu.Unlock()
		return SubmitResult{}, ErrNoClientBound
	}
	if s.selection.IsEmpty() {
		s.mu.Unlock()
		return SubmitResult{}, ErrEmptySelection
	}
	if !s.draft.IsValid() {
		s.mu.Unlock()
		return SubmitResult{}, ErrInvalidProtocol
	}

	entries := s.selection.Entries()

	input := recommendation.CreateInput{
		PractitionerID: s.practitionerID,
		ClientID:       binding.ClientID,
		Name:           s.draft.Name,
		Description:    s.draft.Description,
		Items:          make([]recommendation.LineItemInput, 0, len(entries)),
	}
	for _, entry := range entries {
		input.Items = append(input.Items, recommendation.LineItemInput{
			ProductID:   entry.Item.ID,
			VariantID:   entry.Item.VariantID,
			Name:        entry.Item.Title,
			ImageURL:    entry.Item.ImageURL,
			Quantity:    entry.Quantity,
			DailyDosage: entry.DailyDosage,
			Notes:       entry.Notes,
			UnitPrice:   entry.Item.Price,
		})
	}

	s.submitting = true
	s.mu.Unlock()

	rec, err := s.store.Create(ctx, input)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.submitting = false

	if err != nil {
		s.submitErrMsg = err.Error()
		metrics.WizardSubmissionFailures.Inc()
		logger.Error("wizard submission failed", "session_id", s.id, "error", err)
		return SubmitResult{}, fmt.Errorf("failed to submit recommendation: %w", err)
	}

	s.submitted = true
	s.submitErrMsg = ""
	s.result = &SubmitResult{
		Recommendation: rec,
		CartLink:       BuildCartLink(s.storeURL, entries),
	}
	metrics.WizardSubmissions.Inc()
	logger.Info("recommendation submitted",
		"session_id", s.id,
		"recommendation_id", rec.ID,
		"client_id", rec.ClientID,
		"total_price", rec.TotalPrice,
	)

	return *s.result, nil
}

// --- snapshot ---

// View is the full renderable session state.
type View struct {
	ID                string           `json:"id"`
	Step              int              `json:"step"`
	Steps             []StepIndicator  `json:"steps"`
	Catalog           catalog.PageView `json:"catalog"`
	Selection         []SelectionEntry `json:"selection"`
	Total             float64          `json:"total"`
	Protocol          ProtocolDraft    `json:"protocol"`
	Client            clients.Snapshot `json:"client"`
	Submitted         bool             `json:"submitted"`
	SubmitError       string           `json:"submit_error,omitempty"`
	Result            *SubmitResult    `json:"result,omitempty"`
	EditOf            uint64           `json:"edit_of,omitempty"`
	SelectionRestored bool             `json:"selection_restored"`
}

func (s *Session) Snapshot() View {
	catalogView := s.catalog.View()
	clientSnap := s.resolver.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()

	return View{
		ID:        s.id,
		Step:      int(s.step),
		Steps:     s.indicatorLocked(),
		Catalog:   catalogView,
		Selection: s.selection.Entries(),
		Total:     s.selection.Total(),
		Protocol:  s.draft,
		Client:    clientSnap,
		Submitted: s.submitted,
		SubmitError: s.submitErrMsg,
		Result:    s.result,
		EditOf:    s.editRecordID,
		// Edit mode cannot rehydrate catalog items by id, so a reloaded
		// record always reports an unrestored selection.
		SelectionRestored: false,
	}
}
