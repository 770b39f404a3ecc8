// Package selector filters and ranks catalog models against caller requirements.
package selector

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/everstacklabs/modelpick/internal/catalog"
)

// Requirements constrain which models are eligible. Every field is optional;
// a zero value leaves that dimension unconstrained.
type Requirements struct {
	// MaxCostPerToken bounds the average of prompt and completion price.
	MaxCostPerToken *decimal.Decimal `json:"max_cost_per_token,omitempty" yaml:"max_cost_per_token,omitempty"`
	MinContextLength *int `json:"min_context_length,omitempty" yaml:"min_context_length,omitempty"`
	// RequiredFeatures must all appear in supported_parameters.
	RequiredFeatures         []string `json:"required_features,omitempty" yaml:"required_features,omitempty"`
	RequiredInputModalities  []string `json:"required_input_modalities,omitempty" yaml:"required_input_modalities,omitempty"`
	RequiredOutputModalities []string `json:"required_output_modalities,omitempty" yaml:"required_output_modalities,omitempty"`
	// PreferUnmoderated excludes moderated models outright.
	PreferUnmoderated bool     `json:"prefer_unmoderated,omitempty" yaml:"prefer_unmoderated,omitempty"`
	ExcludeModelIDs   []string `json:"exclude_model_ids,omitempty" yaml:"exclude_model_ids,omitempty"`
	// ForceRefresh overrides the caller's refresh default when set.
	ForceRefresh *bool `json:"force_refresh,omitempty" yaml:"force_refresh,omitempty"`
}

// RefreshOr returns ForceRefresh, or def when it is unset.
func (r Requirements) RefreshOr(def bool) bool {
	if r.ForceRefresh == nil {
		return def
	}
	return *r.ForceRefresh
}

// Validate rejects bounds that can never be met.
func (r Requirements) Validate() error {
	if r.MaxCostPerToken != nil && r.MaxCostPerToken.IsNegative() {
		return &catalog.ConfigError{
			Field: "max_cost_per_token",
			Msg:   fmt.Sprintf("must not be negative, got %s", r.MaxCostPerToken),
		}
	}
	if r.MinContextLength != nil && *r.MinContextLength < 0 {
		return &catalog.ConfigError{
			Field: "min_context_length",
			Msg:   fmt.Sprintf("must not be negative, got %d", *r.MinContextLength),
		}
	}
	return nil
}

// MaxCost returns a pointer to d for use in Requirements literals.
func MaxCost(d decimal.Decimal) *decimal.Decimal { return &d }

// MinContext returns a pointer to n for use in Requirements literals.
func MinContext(n int) *int { return &n }

// Refresh returns a pointer to b for use in Requirements literals.
func Refresh(b bool) *bool { return &b }

// LogValue renders only the constraints that are set.
func (r Requirements) LogValue() slog.Value {
	var attrs []slog.Attr
	if r.MaxCostPerToken != nil {
		attrs = append(attrs, slog.String("max_cost_per_token", r.MaxCostPerToken.String()))
	}
	if r.MinContextLength != nil {
		attrs = append(attrs, slog.Int("min_context_length", *r.MinContextLength))
	}
	if len(r.RequiredFeatures) > 0 {
		attrs = append(attrs, slog.Any("features", r.RequiredFeatures))
	}
	if len(r.RequiredInputModalities) > 0 {
		attrs = append(attrs, slog.Any("input_modalities", r.RequiredInputModalities))
	}
	if len(r.RequiredOutputModalities) > 0 {
		attrs = append(attrs, slog.Any("output_modalities", r.RequiredOutputModalities))
	}
	if r.PreferUnmoderated {
		attrs = append(attrs, slog.Bool("prefer_unmoderated", true))
	}
	if len(r.ExcludeModelIDs) > 0 {
		attrs = append(attrs, slog.Any("exclude", r.ExcludeModelIDs))
	}
	if r.ForceRefresh != nil {
		attrs = append(attrs, slog.Bool("force_refresh", *r.ForceRefresh))
	}
	return slog.GroupValue(attrs...)
}
