package screen

import (
	"encoding/json"

	"github.com/vortechdev/enilai-gateway/internal/models"
	appErrors "github.com/vortechdev/enilai-gateway/pkg/errors"
)

// Record is the minimal shape the orchestrator needs from a resource row.
type Record interface {
	RecordID() string
}

// Draft is the ephemeral form state mirrored between gateway and shell. It
// backs both create and edit; edit mode is flagged by the screen, not the
// draft.
type Draft map[string]string

// Field describes one draft field and when it must be filled.
type Field struct {
	Name           string
	Required       bool
	RequiredOnEdit bool
}

// RefSpec names a dependent reference list fetched alongside the main list
// (majors for the class form, classes for the student form, and so on).
type RefSpec struct {
	Name   string
	Path   string
	Decode func(json.RawMessage) ([]Record, error)
}

// Messages holds the user-facing strings for one screen. The wording follows
// the shipped UI, which speaks Indonesian.
type Messages struct {
	Created       string
	Updated       string
	Deleted       string
	Duplicate     string
	MissingFields string
	LoadFailed    string
	SaveFailed    string
	DeleteFailed  string
}

// Config parameterizes the shared CRUD orchestrator for one entity. Every
// resource screen in the application is an instance of this one pattern.
type Config struct {
	Entity string
	Path   string
	Roles  []models.Role

	Fields []Field
	Refs   []RefSpec

	Decode func(json.RawMessage) ([]Record, error)

	// UniqueKey/DraftKey implement the best-effort client-side duplicate
	// guard. Nil disables the check for the screen.
	UniqueKey func(Record) string
	DraftKey  func(Draft) string

	// FromRecord seeds the draft when a row enters edit mode.
	FromRecord func(Record) Draft

	// Payload builds the create/update request body from the draft.
	Payload func(d Draft, editing bool) map[string]interface{}

	// Validate applies screen-specific rules beyond required fields.
	Validate func(d Draft, editing bool) error

	Messages Messages
}

// decodeListAs adapts a concrete model slice decoder to the Record interface.
func decodeListAs[T Record](raw json.RawMessage) ([]Record, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to decode upstream list")
	}
	records := make([]Record, len(items))
	for i := range items {
		records[i] = items[i]
	}
	return records, nil
}
