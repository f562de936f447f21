package liveboard

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TriggerSource records who opened a prompt.
type TriggerSource string

const (
	TriggerAI     TriggerSource = "ai"
	TriggerManual TriggerSource = "manual"
)

// PromptState is the lifecycle state of a human-in-the-loop prompt.
type PromptState string

const (
	PromptIdle     PromptState = "idle"
	PromptAwaiting PromptState = "awaiting_response"
	PromptResolved PromptState = "resolved"
)

// Prompt is a preference form waiting for (or answered by) the user.
type Prompt struct {
	ID             string         `json:"id"`
	Context        string         `json:"context,omitempty"`
	RequiredFields []string       `json:"requiredFields"`
	Source         TriggerSource  `json:"source"`
	State          PromptState    `json:"state"`
	Values         map[string]any `json:"values,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	ResolvedAt     *time.Time     `json:"resolvedAt,omitempty"`
}

// RespondFunc delivers a resolved AI prompt back to the conversation.
type RespondFunc func(ctx context.Context, prompt Prompt) error

// PromptBroker runs the idle -> awaiting_response -> resolved state machine.
// Prompts never time out; an unanswered prompt stays awaiting until it is
// submitted or the broker is reset.
type PromptBroker struct {
	mu      sync.Mutex
	prompts map[string]*Prompt
	// submitting guards prompts whose preferences are being saved.
	submitting map[string]bool
	respond    RespondFunc
	prefs      PreferenceStore
	profile    string
	now        func() time.Time
}

// NewPromptBroker builds a broker that saves submissions into prefs.
func NewPromptBroker(prefs PreferenceStore, respond RespondFunc) *PromptBroker {
	if prefs == nil {
		prefs = NewInMemoryPreferenceStore()
	}
	return &PromptBroker{
		prompts:    make(map[string]*Prompt),
		submitting: make(map[string]bool),
		respond:    respond,
		prefs:      prefs,
		profile:    DefaultProfile,
		now:        time.Now,
	}
}

// Open moves a new prompt into awaiting_response.
func (b *PromptBroker) Open(source TriggerSource, purpose string, fields []string) Prompt {
	if len(fields) == 0 {
		fields = DefaultPreferenceFields
	}
	if source != TriggerManual {
		source = TriggerAI
	}
	p := &Prompt{
		ID:             "prompt-" + uuid.NewString(),
		Context:        purpose,
		RequiredFields: append([]string(nil), fields...),
		Source:         source,
		State:          PromptAwaiting,
		CreatedAt:      b.now().UTC(),
	}
	b.mu.Lock()
	b.prompts[p.ID] = p
	b.mu.Unlock()
	return p.clone()
}

// Submit resolves an awaiting prompt. Every required field must be present.
// Preferences are saved before the prompt is resolved, so a failed save
// leaves it awaiting and the user can submit again. AI-triggered prompts are
// answered through the respond callback; manual prompts are finalized locally.
func (b *PromptBroker) Submit(ctx context.Context, id string, values map[string]any) (Prompt, error) {
	b.mu.Lock()
	p, ok := b.prompts[id]
	if !ok {
		b.mu.Unlock()
		return Prompt{}, fmt.Errorf("%w: %s", ErrUnknownPrompt, id)
	}
	if p.State == PromptResolved || b.submitting[id] {
		b.mu.Unlock()
		return Prompt{}, fmt.Errorf("%w: %s", ErrPromptResolved, id)
	}
	for _, field := range p.RequiredFields {
		if v, ok := values[field]; !ok || v == nil {
			b.mu.Unlock()
			return Prompt{}, fmt.Errorf("%w: %q", ErrMissingPreference, field)
		}
	}
	b.submitting[id] = true
	purpose := p.Context
	b.mu.Unlock()

	copied := make(map[string]any, len(values))
	for k, v := range values {
		copied[k] = v
	}
	resolvedAt := b.now().UTC()
	err := b.prefs.SavePreferences(ctx, b.profile, Preferences{
		Values:    copied,
		Context:   purpose,
		UpdatedAt: resolvedAt,
	})

	b.mu.Lock()
	delete(b.submitting, id)
	if err != nil {
		b.mu.Unlock()
		return Prompt{}, fmt.Errorf("liveboard: save preferences: %w", err)
	}
	p, ok = b.prompts[id]
	if !ok {
		b.mu.Unlock()
		return Prompt{}, fmt.Errorf("%w: %s", ErrUnknownPrompt, id)
	}
	p.State = PromptResolved
	p.ResolvedAt = &resolvedAt
	p.Values = copied
	out := p.clone()
	b.mu.Unlock()

	if out.Source == TriggerAI && b.respond != nil {
		if err := b.respond(ctx, out); err != nil {
			return out, fmt.Errorf("liveboard: respond to prompt %s: %w", id, err)
		}
	}
	return out, nil
}

// Prompt fetches a prompt by id.
func (b *PromptBroker) Prompt(id string) (Prompt, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.prompts[id]
	if !ok {
		return Prompt{}, false
	}
	return p.clone(), true
}

// Awaiting lists prompts still waiting for the user, oldest first.
func (b *PromptBroker) Awaiting() []Prompt {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Prompt
	for _, p := range b.prompts {
		if p.State == PromptAwaiting {
			out = append(out, p.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// State is awaiting_response while any prompt is open, idle otherwise.
func (b *PromptBroker) State() PromptState {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.prompts {
		if p.State == PromptAwaiting {
			return PromptAwaiting
		}
	}
	return PromptIdle
}

// Preferences returns what has been submitted so far.
func (b *PromptBroker) Preferences(ctx context.Context) (Preferences, error) {
	return b.prefs.Preferences(ctx, b.profile)
}

// Reset forgets every prompt.
func (b *PromptBroker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prompts = make(map[string]*Prompt)
}

func (p *Prompt) clone() Prompt {
	out := *p
	out.RequiredFields = append([]string(nil), p.RequiredFields...)
	if p.Values != nil {
		out.Values = make(map[string]any, len(p.Values))
		for k, v := range p.Values {
			out.Values[k] = v
		}
	}
	if p.ResolvedAt != nil {
		ts := *p.ResolvedAt
		out.ResolvedAt = &ts
	}
	return out
}
