package catalog

import "fmt"

// Catalog is a snapshot of the remote catalog in the order it was returned.
// Order carries no meaning for selection.
type Catalog []Model

// IDs returns the model ids in catalog order.
func (c Catalog) IDs() []string {
	ids := make([]string, len(c))
	for i := range c {
		ids[i] = c[i].ID
	}
	return ids
}

// Find returns the model with the given id.
func (c Catalog) Find(id string) (*Model, bool) {
	for i := range c {
		if c[i].ID == id {
			return &c[i], true
		}
	}
	return nil, false
}

// Index maps model ids to their position in the catalog.
func (c Catalog) Index() map[string]int {
	idx := make(map[string]int, len(c))
	for i := range c {
		idx[c[i].ID] = i
	}
	return idx
}

// CheckUnique returns a SchemaError for the first id that appears twice.
func (c Catalog) CheckUnique() error {
	seen := make(map[string]int, len(c))
	for i := range c {
		if first, ok := seen[c[i].ID]; ok {
			return &SchemaError{
				Index:   i,
				ModelID: c[i].ID,
				Field:   "id",
				Msg:     fmt.Sprintf("duplicate id, first seen at record %d", first),
			}
		}
		seen[c[i].ID] = i
	}
	return nil
}
