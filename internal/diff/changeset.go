package diff

import "github.com/everstacklabs/modelpick/internal/catalog"

// ChangeSet is the difference between two catalog snapshots.
type ChangeSet struct {
	New             []ModelChange
	Updated         []ModelUpdate
	Removed         []ModelChange
	PossibleRenames []RenamePair
	Unchanged       int
}

// ModelChange represents a model that appeared or disappeared.
type ModelChange struct {
	ID    string
	Model *catalog.Model
}

// ModelUpdate represents a model present in both snapshots with field changes.
type ModelUpdate struct {
	ID      string
	Model   *catalog.Model
	Changes []FieldChange
}

// FieldChange records one changed field.
type FieldChange struct {
	Field    string
	OldValue any
	NewValue any
}

// RenamePair represents a possible rename (old id disappeared, new id appeared).
type RenamePair struct {
	OldID  string
	NewID  string
	Reason string // e.g., "same hugging_face_id"
}

// HasChanges reports whether the snapshots differ.
func (cs *ChangeSet) HasChanges() bool {
	return len(cs.New) > 0 || len(cs.Updated) > 0 || len(cs.Removed) > 0
}

// TotalChanged returns the count of new + updated models.
func (cs *ChangeSet) TotalChanged() int {
	return len(cs.New) + len(cs.Updated)
}

// Repriced returns the updates that touch prompt or completion pricing.
func (cs *ChangeSet) Repriced() []ModelUpdate {
	var out []ModelUpdate
	for _, u := range cs.Updated {
		for _, c := range u.Changes {
			if c.Field == "pricing.prompt" || c.Field == "pricing.completion" {
				out = append(out, u)
				break
			}
		}
	}
	return out
}
