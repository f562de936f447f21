package liveboard

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxCards is the number of metric cards the board accepts.
const DefaultMaxCards = 3

// LoadingPlaceholder marks a tool call that was accepted but has not yet
// resolved into a committed widget.
type LoadingPlaceholder struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"type"`
	Title     string    `json:"title,omitempty"`
	StartedAt time.Time `json:"startedAt"`
	seq       uint64
}

// ReportMeta is the report header singleton.
type ReportMeta struct {
	Name        string     `json:"reportName,omitempty"`
	GeneratedAt *time.Time `json:"generatedAt,omitempty"`
}

// Snapshot is a consistent copy of the store contents.
type Snapshot struct {
	Widgets []Widget             `json:"widgets"`
	Loading []LoadingPlaceholder `json:"loading"`
	Report  ReportMeta           `json:"report"`
}

// CommitReason explains the outcome of Store.Commit.
type CommitReason string

const (
	CommitAdded     CommitReason = "added"
	CommitDuplicate CommitReason = "duplicate"
	CommitCardLimit CommitReason = "card_limit"
	CommitInvalid   CommitReason = "invalid"
	// CommitStale means the placeholder was cleared by a reset while the
	// call was in flight.
	CommitStale CommitReason = "stale"
)

// CommitResult reports whether a widget was appended to the store.
type CommitResult struct {
	Added  bool
	Reason CommitReason
}

type dedupKey struct {
	kind  Kind
	title string
}

// Store is the single source of truth for committed widgets and in-flight
// loading placeholders. All mutations are serialized by one mutex and no
// method suspends while holding it.
type Store struct {
	mu       sync.Mutex
	widgets  []Widget
	index    map[dedupKey]string
	cards    int
	loading  map[string]LoadingPlaceholder
	seq      uint64
	report   ReportMeta
	maxCards int
	now      func() time.Time
	newID    func() string
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithMaxCards lowers the metric card cap. Values outside
// 1..DefaultMaxCards are ignored; the board never holds more than three cards.
func WithMaxCards(n int) StoreOption {
	return func(s *Store) {
		if n > 0 && n <= DefaultMaxCards {
			s.maxCards = n
		}
	}
}

// WithStoreClock injects the clock used for placeholder timestamps.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore builds an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		index:    make(map[dedupKey]string),
		loading:  make(map[string]LoadingPlaceholder),
		maxCards: DefaultMaxCards,
		now:      time.Now,
		newID: func() string {
			return "loading-" + uuid.NewString()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BeginLoading registers a placeholder and returns its id.
func (s *Store) BeginLoading(kind Kind, title string) string {
	id := s.newID()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.loading[id] = LoadingPlaceholder{
		ID:        id,
		Kind:      kind,
		Title:     title,
		StartedAt: s.now(),
		seq:       s.seq,
	}
	return id
}

// Commit appends w unless it duplicates an existing (kind, title) pair or
// exceeds the card cap. The placeholder is removed in the same critical
// section whatever the outcome. A non-empty loadingID that is no longer
// registered belongs to a call that outlived a reset, and w is dropped.
func (s *Store) Commit(w Widget, loadingID string) CommitResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loadingID != "" {
		if _, ok := s.loading[loadingID]; !ok {
			return CommitResult{Reason: CommitStale}
		}
		delete(s.loading, loadingID)
	}

	if !w.Valid() || w.ID == "" {
		return CommitResult{Reason: CommitInvalid}
	}
	key := dedupKey{kind: w.Kind, title: w.Title}
	if _, exists := s.index[key]; exists {
		return CommitResult{Reason: CommitDuplicate}
	}
	if w.Kind == KindCard && s.cards >= s.maxCards {
		return CommitResult{Reason: CommitCardLimit}
	}
	s.widgets = append(s.widgets, w)
	s.index[key] = w.ID
	if w.Kind == KindCard {
		s.cards++
	}
	return CommitResult{Added: true, Reason: CommitAdded}
}

// Discard removes a placeholder without committing anything.
func (s *Store) Discard(loadingID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.loading[loadingID]; !ok {
		return false
	}
	delete(s.loading, loadingID)
	return true
}

// SetReportName stores the report name; later calls overwrite earlier ones.
func (s *Store) SetReportName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report.Name = name
}

// TouchGeneratedAt records the report timestamp the first time it is called
// after a reset and reports whether it was set.
func (s *Store) TouchGeneratedAt(at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.report.GeneratedAt != nil {
		return false
	}
	ts := at.UTC().Truncate(time.Millisecond)
	s.report.GeneratedAt = &ts
	return true
}

// Reset clears widgets, placeholders and report metadata.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.widgets = nil
	s.index = make(map[dedupKey]string)
	s.cards = 0
	s.loading = make(map[string]LoadingPlaceholder)
	s.report = ReportMeta{}
}

// Snapshot copies the current state. Loading placeholders are ordered by
// the time their calls started.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Widgets: append([]Widget(nil), s.widgets...),
		Loading: make([]LoadingPlaceholder, 0, len(s.loading)),
		Report:  s.report,
	}
	if s.report.GeneratedAt != nil {
		ts := *s.report.GeneratedAt
		snap.Report.GeneratedAt = &ts
	}
	for _, p := range s.loading {
		snap.Loading = append(snap.Loading, p)
	}
	sort.Slice(snap.Loading, func(i, j int) bool {
		return snap.Loading[i].seq < snap.Loading[j].seq
	})
	return snap
}

// Pending returns the number of in-flight placeholders.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loading)
}

// Len returns the number of committed widgets.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.widgets)
}
