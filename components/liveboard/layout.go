package liveboard

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// SlotState describes what a layout slot shows.
type SlotState string

const (
	SlotWidget  SlotState = "widget"
	SlotLoading SlotState = "loading"
	SlotEmpty   SlotState = "empty"
)

// Row codes of the fixed dashboard layout.
const (
	RowOverview     = "overview"
	RowDistribution = "distribution"
	RowTrend        = "trend"
	RowDetail       = "detail"
)

const cardSlots = 3

// Slot is one position in the fixed layout.
type Slot struct {
	Name         string    `json:"name"`
	Kind         Kind      `json:"kind"`
	State        SlotState `json:"state"`
	Widget       *Widget   `json:"widget,omitempty"`
	LoadingID    string    `json:"loadingId,omitempty"`
	LoadingTitle string    `json:"loadingTitle,omitempty"`
}

// Row groups slots rendered side by side.
type Row struct {
	Code  string `json:"code"`
	Slots []Slot `json:"slots"`
}

// RenderPlan is the render-ready view of a store snapshot.
type RenderPlan struct {
	Rows   []Row      `json:"rows"`
	Report ReportMeta `json:"report"`
	// Overflow lists committed widgets that have no slot in the layout.
	Overflow    []string `json:"overflow,omitempty"`
	Fingerprint string   `json:"fingerprint"`
}

// Slot looks up a slot by name.
func (p RenderPlan) Slot(name string) (Slot, bool) {
	for _, row := range p.Rows {
		for _, slot := range row.Slots {
			if slot.Name == name {
				return slot, true
			}
		}
	}
	return Slot{}, false
}

// Reconcile maps committed widgets and loading placeholders onto the fixed
// four-row layout: three cards, pie + bar, line, table. The first committed
// widget of a kind wins its slot; a slot without one shows the earliest
// placeholder of that kind, or stays empty.
func Reconcile(snap Snapshot) RenderPlan {
	committed := make(map[Kind][]Widget)
	for _, w := range snap.Widgets {
		committed[w.Kind] = append(committed[w.Kind], w)
	}
	pending := make(map[Kind][]LoadingPlaceholder)
	for _, p := range snap.Loading {
		pending[p.Kind] = append(pending[p.Kind], p)
	}

	plan := RenderPlan{Report: snap.Report}

	overview := Row{Code: RowOverview}
	cards := committed[KindCard]
	loadingCards := pending[KindCard]
	for i := 0; i < cardSlots; i++ {
		slot := Slot{Name: cardSlotName(i), Kind: KindCard, State: SlotEmpty}
		if i < len(cards) {
			fillWidget(&slot, cards[i])
		} else if j := i - len(cards); j < len(loadingCards) {
			fillLoading(&slot, loadingCards[j])
		}
		overview.Slots = append(overview.Slots, slot)
	}
	plan.Rows = append(plan.Rows,
		overview,
		Row{Code: RowDistribution, Slots: []Slot{
			singleSlot("pie", KindPieChart, committed, pending),
			singleSlot("bar", KindBarChart, committed, pending),
		}},
		Row{Code: RowTrend, Slots: []Slot{singleSlot("line", KindLineChart, committed, pending)}},
		Row{Code: RowDetail, Slots: []Slot{singleSlot("table", KindTable, committed, pending)}},
	)

	for _, kind := range Kinds() {
		limit := 1
		if kind == KindCard {
			limit = cardSlots
		}
		for i, w := range committed[kind] {
			if i >= limit {
				plan.Overflow = append(plan.Overflow, w.ID)
			}
		}
	}

	plan.Fingerprint = planFingerprint(plan)
	return plan
}

func cardSlotName(i int) string {
	return "card_" + string(rune('1'+i))
}

func singleSlot(name string, kind Kind, committed map[Kind][]Widget, pending map[Kind][]LoadingPlaceholder) Slot {
	slot := Slot{Name: name, Kind: kind, State: SlotEmpty}
	if ws := committed[kind]; len(ws) > 0 {
		fillWidget(&slot, ws[0])
	} else if ps := pending[kind]; len(ps) > 0 {
		fillLoading(&slot, ps[0])
	}
	return slot
}

func fillWidget(slot *Slot, w Widget) {
	slot.State = SlotWidget
	slot.Widget = &w
}

func fillLoading(slot *Slot, p LoadingPlaceholder) {
	slot.State = SlotLoading
	slot.LoadingID = p.ID
	slot.LoadingTitle = p.Title
}

// planFingerprint hashes what a painter would draw: slot states, widget ids
// and payloads, placeholder ids and the report header. Overflow widgets are
// invisible and do not contribute. A plan that cannot be encoded gets a
// unique fingerprint so it always reads as changed.
func planFingerprint(plan RenderPlan) string {
	visible := struct {
		Rows   []Row      `json:"rows"`
		Report ReportMeta `json:"report"`
	}{Rows: plan.Rows, Report: plan.Report}
	sum, err := contentHash(visible)
	if err != nil {
		return "unhashable-" + uuid.NewString()
	}
	return sum
}

func contentHash(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("liveboard: hash content: %w", err)
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:]), nil
}

// Reconciler remembers the last plan fingerprint so callers can skip
// repainting when nothing visible changed.
type Reconciler struct {
	mu   sync.Mutex
	last string
}

// NewReconciler builds a change-tracking reconciler.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Update reconciles snap and reports whether the plan differs from the
// previous call.
func (r *Reconciler) Update(snap Snapshot) (RenderPlan, bool) {
	plan := Reconcile(snap)
	r.mu.Lock()
	defer r.mu.Unlock()
	changed := plan.Fingerprint != r.last
	r.last = plan.Fingerprint
	return plan, changed
}
