package catalog

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Model is one entry of the remote model catalog.
// Field names and JSON tags follow the /models response schema.
type Model struct {
	ID                  string         `json:"id" yaml:"id"`
	Name                string         `json:"name" yaml:"name"`
	Created             int64          `json:"created" yaml:"created"`
	Description         string         `json:"description" yaml:"description"`
	Architecture        Architecture   `json:"architecture" yaml:"architecture"`
	TopProvider         TopProvider    `json:"top_provider" yaml:"top_provider"`
	Pricing             Pricing        `json:"pricing" yaml:"pricing"`
	ContextLength       int            `json:"context_length" yaml:"context_length"`
	HuggingFaceID       string         `json:"hugging_face_id,omitempty" yaml:"hugging_face_id,omitempty"`
	PerRequestLimits    map[string]any `json:"per_request_limits,omitempty" yaml:"per_request_limits,omitempty"`
	SupportedParameters []string       `json:"supported_parameters" yaml:"supported_parameters"`
}

// Architecture describes what a model consumes and produces.
type Architecture struct {
	Modality         string   `json:"modality,omitempty" yaml:"modality,omitempty"`
	InputModalities  []string `json:"input_modalities" yaml:"input_modalities"`
	OutputModalities []string `json:"output_modalities" yaml:"output_modalities"`
	Tokenizer        *string  `json:"tokenizer,omitempty" yaml:"tokenizer,omitempty"`
	InstructType     *string  `json:"instruct_type,omitempty" yaml:"instruct_type,omitempty"`
}

// TopProvider holds information about the provider serving the model.
type TopProvider struct {
	IsModerated         bool `json:"is_moderated" yaml:"is_moderated"`
	ContextLength       *int `json:"context_length,omitempty" yaml:"context_length,omitempty"`
	MaxCompletionTokens *int `json:"max_completion_tokens,omitempty" yaml:"max_completion_tokens,omitempty"`
}

// Pricing holds per-token and auxiliary costs as decimal strings (USD).
// Prompt and Completion are required; the rest default to "0".
type Pricing struct {
	Prompt            string `json:"prompt" yaml:"prompt"`
	Completion        string `json:"completion" yaml:"completion"`
	Image             string `json:"image" yaml:"image"`
	Request           string `json:"request" yaml:"request"`
	InputCacheRead    string `json:"input_cache_read" yaml:"input_cache_read"`
	InputCacheWrite   string `json:"input_cache_write" yaml:"input_cache_write"`
	WebSearch         string `json:"web_search" yaml:"web_search"`
	InternalReasoning string `json:"internal_reasoning" yaml:"internal_reasoning"`
}

// IsModerated reports whether the top provider applies content moderation.
func (m *Model) IsModerated() bool {
	return m.TopProvider.IsModerated
}

// Supports reports whether param is one of the model's supported parameters.
func (m *Model) Supports(param string) bool {
	return slices.Contains(m.SupportedParameters, param)
}

// AcceptsInput reports whether the model takes the given input modality.
func (a *Architecture) AcceptsInput(modality string) bool {
	return slices.Contains(a.InputModalities, modality)
}

// ProducesOutput reports whether the model emits the given output modality.
func (a *Architecture) ProducesOutput(modality string) bool {
	return slices.Contains(a.OutputModalities, modality)
}

// ApplyDefaults fills unset auxiliary prices with "0".
func (p *Pricing) ApplyDefaults() {
	for _, f := range []*string{
		&p.Image, &p.Request, &p.InputCacheRead,
		&p.InputCacheWrite, &p.WebSearch, &p.InternalReasoning,
	} {
		if *f == "" {
			*f = "0"
		}
	}
}

// PromptCost parses the per-token prompt price.
func (p *Pricing) PromptCost() (decimal.Decimal, error) {
	return decimal.NewFromString(p.Prompt)
}

// CompletionCost parses the per-token completion price.
func (p *Pricing) CompletionCost() (decimal.Decimal, error) {
	return decimal.NewFromString(p.Completion)
}

// TotalCost returns prompt + completion.
func (p *Pricing) TotalCost() (decimal.Decimal, error) {
	prompt, err := p.PromptCost()
	if err != nil {
		return decimal.Zero, &SchemaError{Index: -1, Field: "pricing.prompt", Msg: "invalid decimal " + quote(p.Prompt), Err: err}
	}
	completion, err := p.CompletionCost()
	if err != nil {
		return decimal.Zero, &SchemaError{Index: -1, Field: "pricing.completion", Msg: "invalid decimal " + quote(p.Completion), Err: err}
	}
	return prompt.Add(completion), nil
}

// AverageCost returns (prompt + completion) / 2.
func (p *Pricing) AverageCost() (decimal.Decimal, error) {
	total, err := p.TotalCost()
	if err != nil {
		return decimal.Zero, err
	}
	return total.Div(decimal.NewFromInt(2)), nil
}
