package liveboard

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PinnedDashboardsKey is the storage key of the pinned dashboard list.
const PinnedDashboardsKey = "liveboard.pinnedDashboards"

// PinnedDashboard is a saved copy of the board.
type PinnedDashboard struct {
	ID         string
	Name       string
	Widgets    []Widget
	CreatedAt  time.Time
	ReportName string
}

type wirePin struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Widgets    []Widget `json:"widgets"`
	CreatedAt  string   `json:"createdAt"`
	ReportName string   `json:"reportName,omitempty"`
}

// MarshalJSON writes createdAt as an ISO-8601 string with milliseconds.
func (p PinnedDashboard) MarshalJSON() ([]byte, error) {
	widgets := p.Widgets
	if widgets == nil {
		widgets = []Widget{}
	}
	return json.Marshal(wirePin{
		ID:         p.ID,
		Name:       p.Name,
		Widgets:    widgets,
		CreatedAt:  FormatTimestamp(p.CreatedAt),
		ReportName: p.ReportName,
	})
}

func (p *PinnedDashboard) UnmarshalJSON(b []byte) error {
	var in wirePin
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	created, err := ParseTimestamp(in.CreatedAt)
	if err != nil {
		return err
	}
	*p = PinnedDashboard{
		ID:         in.ID,
		Name:       in.Name,
		Widgets:    in.Widgets,
		CreatedAt:  created,
		ReportName: in.ReportName,
	}
	return nil
}

// PinStore saves board snapshots into a Storage under PinnedDashboardsKey.
type PinStore struct {
	mu      sync.Mutex
	storage Storage
	key     string
	now     func() time.Time
}

// NewPinStore builds a pin store over storage. A nil storage keeps pins in memory.
func NewPinStore(storage Storage) *PinStore {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return &PinStore{
		storage: storage,
		key:     PinnedDashboardsKey,
		now:     time.Now,
	}
}

// Pin saves the snapshot's widgets. The name is the report name or
// "Dashboard N" where N counts the pins including this one.
func (s *PinStore) Pin(ctx context.Context, snap Snapshot) (PinnedDashboard, error) {
	if len(snap.Widgets) == 0 {
		return PinnedDashboard{}, ErrEmptyDashboard
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pins, err := s.load(ctx)
	if err != nil {
		return PinnedDashboard{}, err
	}
	name := snap.Report.Name
	if name == "" {
		name = fmt.Sprintf("Dashboard %d", len(pins)+1)
	}
	pin := PinnedDashboard{
		ID:         "pin-" + uuid.NewString(),
		Name:       name,
		Widgets:    append([]Widget(nil), snap.Widgets...),
		CreatedAt:  s.now().UTC().Truncate(time.Millisecond),
		ReportName: snap.Report.Name,
	}
	if err := s.save(ctx, append(pins, pin)); err != nil {
		return PinnedDashboard{}, err
	}
	return pin, nil
}

// List returns pinned dashboards in pin order.
func (s *PinStore) List(ctx context.Context) ([]PinnedDashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Get fetches one pinned dashboard.
func (s *PinStore) Get(ctx context.Context, id string) (PinnedDashboard, error) {
	pins, err := s.List(ctx)
	if err != nil {
		return PinnedDashboard{}, err
	}
	for _, p := range pins {
		if p.ID == id {
			return p, nil
		}
	}
	return PinnedDashboard{}, fmt.Errorf("%w: %s", ErrPinNotFound, id)
}

// Delete removes a pinned dashboard.
func (s *PinStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pins, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := pins[:0]
	found := false
	for _, p := range pins {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrPinNotFound, id)
	}
	return s.save(ctx, kept)
}

func (s *PinStore) load(ctx context.Context) ([]PinnedDashboard, error) {
	data, ok, err := s.storage.Load(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("liveboard: load pinned dashboards: %w", err)
	}
	if !ok || len(data) == 0 {
		return []PinnedDashboard{}, nil
	}
	var pins []PinnedDashboard
	if err := json.Unmarshal(data, &pins); err != nil {
		return nil, fmt.Errorf("liveboard: decode pinned dashboards: %w", err)
	}
	return pins, nil
}

func (s *PinStore) save(ctx context.Context, pins []PinnedDashboard) error {
	if pins == nil {
		pins = []PinnedDashboard{}
	}
	data, err := json.Marshal(pins)
	if err != nil {
		return fmt.Errorf("liveboard: encode pinned dashboards: %w", err)
	}
	if err := s.storage.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("liveboard: save pinned dashboards: %w", err)
	}
	return nil
}
