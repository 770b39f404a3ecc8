package validate

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/everstacklabs/modelpick/internal/catalog"
)

// Severity classifies validation issues.
type Severity int

const (
	SeverityError   Severity = iota // Rejects the record
	SeverityWarning                 // Reported but the record is kept
)

// Issue represents a single validation problem.
type Issue struct {
	Severity Severity
	Index    int // record position in the catalog
	Model    string
	Field    string
	Message  string
}

func (i Issue) String() string {
	sev := "ERROR"
	if i.Severity == SeverityWarning {
		sev = "WARN"
	}
	model := i.Model
	if model == "" {
		model = fmt.Sprintf("#%d", i.Index)
	}
	return fmt.Sprintf("[%s] %s: %s: %s", sev, model, i.Field, i.Message)
}

// Result holds all validation issues.
type Result struct {
	Issues []Issue
}

// HasErrors returns true if there are any blocking errors.
func (r *Result) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only error-severity issues.
func (r *Result) Errors() []Issue {
	var errs []Issue
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			errs = append(errs, i)
		}
	}
	return errs
}

// Warnings returns only warning-severity issues.
func (r *Result) Warnings() []Issue {
	var warns []Issue
	for _, i := range r.Issues {
		if i.Severity == SeverityWarning {
			warns = append(warns, i)
		}
	}
	return warns
}

// Err converts the first error-severity issue into a *catalog.SchemaError.
// Returns nil when the result has no errors.
func (r *Result) Err() error {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return &catalog.SchemaError{
				Index:   i.Index,
				ModelID: i.Model,
				Field:   i.Field,
				Msg:     i.Message,
			}
		}
	}
	return nil
}

// Known modality values (warn on unknown, don't block).
var knownModalities = map[string]bool{
	"text":  true,
	"image": true,
	"audio": true,
	"video": true,
	"file":  true,
}

// ValidateModel checks a single decoded record. index is its position in the
// response and is only used for reporting.
func ValidateModel(m *catalog.Model, index int) *Result {
	r := &Result{}
	add := func(sev Severity, field, msg string) {
		r.Issues = append(r.Issues, Issue{sev, index, m.ID, field, msg})
	}

	// Required fields
	if m.ID == "" {
		add(SeverityError, "id", "required field is empty")
	}
	if m.Name == "" {
		add(SeverityError, "name", "required field is empty")
	}
	if m.ContextLength <= 0 {
		add(SeverityError, "context_length", fmt.Sprintf("must be positive, got %d", m.ContextLength))
	}
	checkPrice(add, SeverityError, "pricing.prompt", m.Pricing.Prompt, true)
	checkPrice(add, SeverityError, "pricing.completion", m.Pricing.Completion, true)

	// Auxiliary prices never take part in selection.
	aux := []struct{ field, value string }{
		{"pricing.image", m.Pricing.Image},
		{"pricing.request", m.Pricing.Request},
		{"pricing.input_cache_read", m.Pricing.InputCacheRead},
		{"pricing.input_cache_write", m.Pricing.InputCacheWrite},
		{"pricing.web_search", m.Pricing.WebSearch},
		{"pricing.internal_reasoning", m.Pricing.InternalReasoning},
	}
	for _, a := range aux {
		checkPrice(add, SeverityWarning, a.field, a.value, false)
	}

	if tp := m.TopProvider.ContextLength; tp != nil && m.ContextLength > 0 && *tp > m.ContextLength {
		add(SeverityWarning, "top_provider.context_length",
			fmt.Sprintf("value %d exceeds context_length %d", *tp, m.ContextLength))
	}

	// Modality taxonomy
	for _, mod := range m.Architecture.InputModalities {
		if !knownModalities[mod] {
			add(SeverityWarning, "architecture.input_modalities", fmt.Sprintf("unknown modality %q", mod))
		}
	}
	for _, mod := range m.Architecture.OutputModalities {
		if !knownModalities[mod] {
			add(SeverityWarning, "architecture.output_modalities", fmt.Sprintf("unknown modality %q", mod))
		}
	}

	return r
}

func checkPrice(add func(Severity, string, string), sev Severity, field, value string, required bool) {
	if value == "" {
		if required {
			add(sev, field, "required field is empty")
		}
		return
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		add(sev, field, fmt.Sprintf("invalid decimal %q", value))
		return
	}
	// Routers such as openrouter/auto publish "-1" for variable pricing.
	if d.IsNegative() {
		add(SeverityWarning, field, fmt.Sprintf("negative price %s", value))
	}
}

// ValidateCatalog validates every record and checks id uniqueness.
func ValidateCatalog(c catalog.Catalog) *Result {
	r := &Result{}
	for i := range c {
		r.Issues = append(r.Issues, ValidateModel(&c[i], i).Issues...)
	}
	r.Issues = append(r.Issues, DuplicateIDs(c)...)
	return r
}

// DuplicateIDs reports every record whose id was already used by an earlier
// record. Empty ids are skipped.
func DuplicateIDs(c catalog.Catalog) []Issue {
	var issues []Issue
	seen := make(map[string]int, len(c))
	for i := range c {
		id := c[i].ID
		if id == "" {
			continue
		}
		if first, ok := seen[id]; ok {
			issues = append(issues, Issue{SeverityError, i, id, "id",
				fmt.Sprintf("duplicate id, first seen at record %d", first)})
			continue
		}
		seen[id] = i
	}
	return issues
}

// FormatResult formats validation results for display.
func FormatResult(r *Result) string {
	if len(r.Issues) == 0 {
		return "Validation passed: no issues found."
	}

	var b strings.Builder
	errors := r.Errors()
	warnings := r.Warnings()

	if len(errors) > 0 {
		b.WriteString(fmt.Sprintf("Errors (%d):\n", len(errors)))
		for _, e := range errors {
			b.WriteString(fmt.Sprintf("  %s\n", e))
		}
	}

	if len(warnings) > 0 {
		b.WriteString(fmt.Sprintf("Warnings (%d):\n", len(warnings)))
		for _, w := range warnings {
			b.WriteString(fmt.Sprintf("  %s\n", w))
		}
	}

	return b.String()
}
