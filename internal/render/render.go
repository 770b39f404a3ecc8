// Package render formats selected models for the terminal.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/everstacklabs/modelpick/internal/catalog"
)

// Format is an output format name.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatText  Format = "text"
	FormatBrief Format = "brief"
)

// Formats lists the accepted format names.
var Formats = []Format{FormatJSON, FormatYAML, FormatText, FormatBrief}

// NoMatch is printed by the text formats when the list is empty.
const NoMatch = "No model found matching the requirements"

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", &catalog.ConfigError{
		Field: "output",
		Msg:   fmt.Sprintf("unknown format %q (want json, yaml, text or brief)", s),
	}
}

// Write renders models to w in the given format.
func Write(w io.Writer, format Format, models []catalog.Model) error {
	if models == nil {
		models = []catalog.Model{}
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(models)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(models); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatText:
		return writeText(w, models)
	case FormatBrief:
		return writeBrief(w, models)
	default:
		_, err := ParseFormat(string(format))
		return err
	}
}

func writeText(w io.Writer, models []catalog.Model) error {
	if len(models) == 0 {
		_, err := fmt.Fprintln(w, NoMatch)
		return err
	}

	var b strings.Builder
	for i := range models {
		m := &models[i]
		fmt.Fprintf(&b, "%d. %s (ID: %s)\n", i+1, m.Name, m.ID)
		fmt.Fprintf(&b, "  - Model size: %s\n", ParamSize(m.Name))
		fmt.Fprintf(&b, "  - Context length: %d\n", m.ContextLength)
		fmt.Fprintf(&b, "  - Pricing: %s per prompt token, %s per completion token\n",
			m.Pricing.Prompt, m.Pricing.Completion)
		fmt.Fprintf(&b, "  - Supported parameters: %s\n", strings.Join(m.SupportedParameters, ", "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeBrief(w io.Writer, models []catalog.Model) error {
	if len(models) == 0 {
		_, err := fmt.Fprintln(w, NoMatch)
		return err
	}

	var b strings.Builder
	for i := range models {
		fmt.Fprintf(&b, "%d. %s (ID: %s)\n", i+1, models[i].Name, models[i].ID)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Parameter count embedded in display names, e.g. "Llama 3.1 70B Instruct".
var paramSizeRe = regexp.MustCompile(`\s(\d+(?:\.\d+)?B)\s`)

// ParamSize extracts the parameter count from a model name, or "N/A".
func ParamSize(name string) string {
	if m := paramSizeRe.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return "N/A"
}

// FilterByName keeps models whose name contains substr, ignoring case.
// An empty substr keeps everything.
func FilterByName(models []catalog.Model, substr string) []catalog.Model {
	if substr == "" {
		return models
	}
	needle := strings.ToLower(substr)
	out := make([]catalog.Model, 0, len(models))
	for _, m := range models {
		if strings.Contains(strings.ToLower(m.Name), needle) {
			out = append(out, m)
		}
	}
	return out
}
