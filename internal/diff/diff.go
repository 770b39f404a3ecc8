package diff

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/everstacklabs/modelpick/internal/catalog"
)

// Options controls diff behavior.
type Options struct {
	// TrackName enables reporting display name changes. OpenRouter edits names
	// often, so they are ignored by default.
	TrackName bool
}

// Compute compares the previous snapshot against a freshly fetched one.
// Entries keep the order of the snapshot they come from.
func Compute(old, fresh catalog.Catalog, opts Options) *ChangeSet {
	cs := &ChangeSet{}

	oldIdx := old.Index()
	freshSet := make(map[string]bool, len(fresh))

	for i := range fresh {
		m := &fresh[i]
		freshSet[m.ID] = true

		j, exists := oldIdx[m.ID]
		if !exists {
			cs.New = append(cs.New, ModelChange{ID: m.ID, Model: m})
			continue
		}

		changes := computeFieldChanges(&old[j], m, opts)
		if len(changes) > 0 {
			cs.Updated = append(cs.Updated, ModelUpdate{ID: m.ID, Model: m, Changes: changes})
		} else {
			cs.Unchanged++
		}
	}

	var disappeared []ModelChange
	for i := range old {
		if !freshSet[old[i].ID] {
			disappeared = append(disappeared, ModelChange{ID: old[i].ID, Model: &old[i]})
		}
	}

	cs.PossibleRenames = detectRenames(cs.New, disappeared)
	cs.Removed = disappeared

	return cs
}

func computeFieldChanges(old, fresh *catalog.Model, opts Options) []FieldChange {
	var changes []FieldChange
	add := func(field string, o, n any) {
		changes = append(changes, FieldChange{Field: field, OldValue: o, NewValue: n})
	}

	if opts.TrackName && old.Name != fresh.Name {
		add("name", old.Name, fresh.Name)
	}

	if !samePrice(old.Pricing.Prompt, fresh.Pricing.Prompt) {
		add("pricing.prompt", old.Pricing.Prompt, fresh.Pricing.Prompt)
	}
	if !samePrice(old.Pricing.Completion, fresh.Pricing.Completion) {
		add("pricing.completion", old.Pricing.Completion, fresh.Pricing.Completion)
	}

	if old.ContextLength != fresh.ContextLength {
		add("context_length", old.ContextLength, fresh.ContextLength)
	}
	if old.IsModerated() != fresh.IsModerated() {
		add("top_provider.is_moderated", old.IsModerated(), fresh.IsModerated())
	}

	// Parameters: symmetric set diff (detect both additions and removals).
	if !equalStringSets(old.SupportedParameters, fresh.SupportedParameters) {
		add("supported_parameters", old.SupportedParameters, fresh.SupportedParameters)
	}

	if !equalStringSets(old.Architecture.InputModalities, fresh.Architecture.InputModalities) {
		add("architecture.input_modalities", old.Architecture.InputModalities, fresh.Architecture.InputModalities)
	}
	if !equalStringSets(old.Architecture.OutputModalities, fresh.Architecture.OutputModalities) {
		add("architecture.output_modalities", old.Architecture.OutputModalities, fresh.Architecture.OutputModalities)
	}

	return changes
}

// samePrice compares decimal strings numerically so "0.000001" equals "1e-6".
// Unparseable values fall back to string comparison.
func samePrice(a, b string) bool {
	da, errA := decimal.NewFromString(a)
	db, errB := decimal.NewFromString(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return da.Equal(db)
}

// equalStringSets compares two string slices ignoring order and duplicates.
func equalStringSets(a, b []string) bool {
	sa := dedupSorted(a)
	sb := dedupSorted(b)
	if len(sa) != len(sb) {
		return false
	}
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

func dedupSorted(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	n := 0
	for i, s := range out {
		if i > 0 && s == out[n-1] {
			continue
		}
		out[n] = s
		n++
	}
	return out[:n]
}

// detectRenames pairs disappeared and new models that point at the same
// Hugging Face repository or carry the same display name.
func detectRenames(newModels, disappeared []ModelChange) []RenamePair {
	var renames []RenamePair

	for _, newM := range newModels {
		for _, oldM := range disappeared {
			switch {
			case newM.Model.HuggingFaceID != "" && newM.Model.HuggingFaceID == oldM.Model.HuggingFaceID:
				renames = append(renames, RenamePair{OldID: oldM.ID, NewID: newM.ID, Reason: "same hugging_face_id"})
			case newM.Model.Name != "" && newM.Model.Name == oldM.Model.Name:
				renames = append(renames, RenamePair{OldID: oldM.ID, NewID: newM.ID, Reason: "same name"})
			}
		}
	}

	return renames
}
