package diff

import (
	"fmt"
	"strings"
)

// RenderSummary generates a plain-text report of a changeset. Returns an
// empty string when nothing changed.
func RenderSummary(cs *ChangeSet) string {
	if cs == nil || !cs.HasChanges() {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%d new, %d updated, %d removed, %d unchanged\n",
		len(cs.New), len(cs.Updated), len(cs.Removed), cs.Unchanged)

	if len(cs.New) > 0 {
		b.WriteString("\nNew:\n")
		for _, m := range cs.New {
			fmt.Fprintf(&b, "  + %s (prompt %s, completion %s, context %d)\n",
				m.ID, m.Model.Pricing.Prompt, m.Model.Pricing.Completion, m.Model.ContextLength)
		}
	}

	if len(cs.Updated) > 0 {
		b.WriteString("\nUpdated:\n")
		for _, u := range cs.Updated {
			fmt.Fprintf(&b, "  ~ %s\n", u.ID)
			for _, c := range u.Changes {
				fmt.Fprintf(&b, "      %s: %v -> %v\n", c.Field, c.OldValue, c.NewValue)
			}
		}
	}

	if len(cs.Removed) > 0 {
		b.WriteString("\nRemoved:\n")
		for _, m := range cs.Removed {
			fmt.Fprintf(&b, "  - %s\n", m.ID)
		}
	}

	if len(cs.PossibleRenames) > 0 {
		b.WriteString("\nPossible renames:\n")
		for _, r := range cs.PossibleRenames {
			fmt.Fprintf(&b, "  %s -> %s (%s)\n", r.OldID, r.NewID, r.Reason)
		}
	}

	return b.String()
}
