package screen

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	appErrors "github.com/vortechdev/enilai-gateway/pkg/errors"
)

// Phase is the list-fetch state of a screen.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseLoading    Phase = "loading"
	PhaseLoaded     Phase = "loaded"
	PhaseLoadFailed Phase = "load_failed"
)

// SubmitPhase is the nested submission state.
type SubmitPhase string

const (
	SubmitIdle      SubmitPhase = "idle"
	SubmitInFlight  SubmitPhase = "submitting"
	SubmitSucceeded SubmitPhase = "succeeded"
	SubmitFailed    SubmitPhase = "failed"
)

// Gateway is the screen's view of the upstream client, already bound to the
// owning session's token.
type Gateway interface {
	GetList(ctx context.Context, path string) (json.RawMessage, error)
	Post(ctx context.Context, path string, body interface{}) (json.RawMessage, error)
	Put(ctx context.Context, path string, body interface{}) (json.RawMessage, error)
	Delete(ctx context.Context, path string) error
}

// Toast is a transient confirmation message that expires on its own.
type Toast struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Snapshot is the serializable view of a screen handed to the shell.
type Snapshot struct {
	Entity        string              `json:"entity"`
	Phase         Phase               `json:"phase"`
	Submit        SubmitPhase         `json:"submit"`
	Records       []Record            `json:"records"`
	Refs          map[string][]Record `json:"refs,omitempty"`
	Draft         Draft               `json:"draft"`
	Mode          string              `json:"mode"`
	EditID        string              `json:"edit_id,omitempty"`
	PendingDelete string              `json:"pending_delete,omitempty"`
	Error         string              `json:"error,omitempty"`
	Toast         *Toast              `json:"toast,omitempty"`
}

// Screen orchestrates one resource screen for one session: list state, form
// draft, edit mode, two-step delete and the duplicate guard. All mutation is
// serialized behind the mutex; network calls happen outside it.
type Screen struct {
	cfg      Config
	gateway  Gateway
	logger   *zap.Logger
	toastTTL time.Duration
	now      func() time.Time

	mu            sync.Mutex
	phase         Phase
	submit        SubmitPhase
	records       []Record
	refs          map[string][]Record
	draft         Draft
	editID        string
	pendingDelete string
	inlineError   string
	toast         *Toast

	// generation guards against a stale fetch committing over a newer one
	// after the caller has navigated or refreshed.
	generation uint64
}

// New constructs an idle screen bound to a session's gateway caller.
func New(cfg Config, gateway Gateway, toastTTL time.Duration, logger *zap.Logger) *Screen {
	if logger == nil {
		logger = zap.NewNop()
	}
	if toastTTL <= 0 {
		toastTTL = 3 * time.Second
	}
	return &Screen{
		cfg:      cfg,
		gateway:  gateway,
		logger:   logger,
		toastTTL: toastTTL,
		now:      time.Now,
		phase:    PhaseIdle,
		submit:   SubmitIdle,
		records:  []Record{},
		refs:     map[string][]Record{},
		draft:    Draft{},
	}
}

// Load fetches the main list and every reference list in parallel and
// replaces the screen's lists wholesale. The batch is all-or-nothing: one
// failure marks the whole load failed. A load that finishes after a newer
// one started is discarded.
func (s *Screen) Load(ctx context.Context) error {
	s.mu.Lock()
	s.phase = PhaseLoading
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	var records []Record
	refs := make(map[string][]Record, len(s.cfg.Refs))
	var refsMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := s.gateway.GetList(gctx, s.cfg.Path)
		if err != nil {
			return err
		}
		decoded, err := s.cfg.Decode(raw)
		if err != nil {
			return err
		}
		records = decoded
		return nil
	})
	for _, ref := range s.cfg.Refs {
		ref := ref
		g.Go(func() error {
			raw, err := s.gateway.GetList(gctx, ref.Path)
			if err != nil {
				return err
			}
			decoded, err := ref.Decode(raw)
			if err != nil {
				return err
			}
			refsMu.Lock()
			refs[ref.Name] = decoded
			refsMu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		// A newer load superseded this one; drop the result either way.
		return nil
	}

	if err != nil {
		s.phase = PhaseLoadFailed
		s.inlineError = s.cfg.Messages.LoadFailed
		s.logger.Warn("screen load failed",
			zap.String("entity", s.cfg.Entity),
			zap.Error(err))
		return err
	}

	s.records = records
	s.refs = refs
	s.inlineError = ""
	s.phase = PhaseLoaded
	return nil
}

// SetDraft merges field values into the form draft. Unknown fields are
// rejected so the shell cannot smuggle payload keys past the field schema.
func (s *Screen) SetDraft(fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name := range fields {
		if !s.knownField(name) {
			return appErrors.Clone(appErrors.ErrValidation, "unknown field: "+name)
		}
	}
	for name, value := range fields {
		s.draft[name] = value
	}
	return nil
}

// BeginEdit copies the target record's fields into the draft and flips the
// screen into edit mode. Only one record can be edited at a time.
func (s *Screen) BeginEdit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.findRecord(id)
	if record == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "record not found")
	}
	s.editID = id
	s.draft = s.cfg.FromRecord(record)
	s.inlineError = ""
	return nil
}

// CancelEdit clears the draft and returns to create mode.
func (s *Screen) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editID = ""
	s.draft = Draft{}
}

// Submit validates the draft, applies the duplicate guard, and dispatches a
// create or update. The duplicate guard rejects locally, without any network
// call; it is a UX nicety, not a consistency guarantee. On success the draft
// resets, a toast is shown, and the list is re-fetched in full. On failure
// the draft is left intact for correction.
func (s *Screen) Submit(ctx context.Context) error {
	s.mu.Lock()

	editing := s.editID != ""
	editID := s.editID

	for _, field := range s.cfg.Fields {
		required := field.Required
		if editing {
			required = field.RequiredOnEdit
		}
		if required && strings.TrimSpace(s.draft[field.Name]) == "" {
			s.inlineError = s.cfg.Messages.MissingFields
			s.submit = SubmitFailed
			s.mu.Unlock()
			return appErrors.Clone(appErrors.ErrValidation, s.cfg.Messages.MissingFields)
		}
	}

	if s.cfg.Validate != nil {
		if err := s.cfg.Validate(s.draft, editing); err != nil {
			appErr := appErrors.FromError(err)
			s.inlineError = appErr.Message
			s.submit = SubmitFailed
			s.mu.Unlock()
			return err
		}
	}

	if s.cfg.UniqueKey != nil && s.cfg.DraftKey != nil {
		key := s.cfg.DraftKey(s.draft)
		for _, record := range s.records {
			if editing && record.RecordID() == editID {
				continue
			}
			if key != "" && strings.EqualFold(s.cfg.UniqueKey(record), key) {
				s.inlineError = s.cfg.Messages.Duplicate
				s.submit = SubmitFailed
				s.mu.Unlock()
				return appErrors.Clone(appErrors.ErrDuplicate, s.cfg.Messages.Duplicate)
			}
		}
	}

	payload := s.cfg.Payload(s.draft, editing)
	s.submit = SubmitInFlight
	s.inlineError = ""
	s.mu.Unlock()

	var err error
	if editing {
		_, err = s.gateway.Put(ctx, s.cfg.Path+"/"+editID, payload)
	} else {
		_, err = s.gateway.Post(ctx, s.cfg.Path, payload)
	}

	s.mu.Lock()
	if err != nil {
		appErr := appErrors.FromError(err)
		message := appErr.Message
		if appErr.Code != appErrors.ErrUpstream.Code || message == "" {
			message = s.cfg.Messages.SaveFailed
		}
		s.inlineError = message
		s.submit = SubmitFailed
		s.mu.Unlock()
		return err
	}

	if editing {
		s.showToastLocked(s.cfg.Messages.Updated)
	} else {
		s.showToastLocked(s.cfg.Messages.Created)
	}
	s.draft = Draft{}
	s.editID = ""
	s.inlineError = ""
	s.submit = SubmitSucceeded
	s.mu.Unlock()

	// The list is only trusted again after a full re-fetch.
	return s.Load(ctx)
}

// BeginDelete marks a record for deletion, pending explicit confirmation.
func (s *Screen) BeginDelete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findRecord(id) == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "record not found")
	}
	s.pendingDelete = id
	return nil
}

// CancelDelete dismisses the confirmation without touching anything else.
func (s *Screen) CancelDelete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingDelete = ""
}

// ConfirmDelete issues the DELETE for the pending record. The upstream is
// never called without a preceding BeginDelete. The confirmation closes in
// both outcomes; failures surface as an inline error.
func (s *Screen) ConfirmDelete(ctx context.Context) error {
	s.mu.Lock()
	id := s.pendingDelete
	if id == "" {
		s.mu.Unlock()
		return appErrors.Clone(appErrors.ErrValidation, "no delete pending confirmation")
	}
	s.pendingDelete = ""
	s.mu.Unlock()

	if err := s.gateway.Delete(ctx, s.cfg.Path+"/"+id); err != nil {
		s.mu.Lock()
		s.inlineError = s.cfg.Messages.DeleteFailed
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.showToastLocked(s.cfg.Messages.Deleted)
	s.inlineError = ""
	s.mu.Unlock()

	return s.Load(ctx)
}

// Snapshot returns a copy of the screen state. Expired toasts are dropped
// here, which is what makes them transient.
func (s *Screen) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.toast != nil && s.now().After(s.toast.ExpiresAt) {
		s.toast = nil
	}

	records := make([]Record, len(s.records))
	copy(records, s.records)

	refs := make(map[string][]Record, len(s.refs))
	for name, list := range s.refs {
		copied := make([]Record, len(list))
		copy(copied, list)
		refs[name] = copied
	}

	draft := make(Draft, len(s.draft))
	for k, v := range s.draft {
		draft[k] = v
	}

	mode := "create"
	if s.editID != "" {
		mode = "edit"
	}

	var toast *Toast
	if s.toast != nil {
		copied := *s.toast
		toast = &copied
	}

	return Snapshot{
		Entity:        s.cfg.Entity,
		Phase:         s.phase,
		Submit:        s.submit,
		Records:       records,
		Refs:          refs,
		Draft:         draft,
		Mode:          mode,
		EditID:        s.editID,
		PendingDelete: s.pendingDelete,
		Error:         s.inlineError,
		Toast:         toast,
	}
}

func (s *Screen) showToastLocked(message string) {
	s.toast = &Toast{Message: message, ExpiresAt: s.now().Add(s.toastTTL)}
}

func (s *Screen) findRecord(id string) Record {
	for _, record := range s.records {
		if record.RecordID() == id {
			return record
		}
	}
	return nil
}

func (s *Screen) knownField(name string) bool {
	for _, field := range s.cfg.Fields {
		if field.Name == name {
			return true
		}
	}
	return false
}
