package catalog

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPricingTotalCostIsExact(t *testing.T) {
	p := Pricing{Prompt: "0.0000001", Completion: "0.0000002"}

	got, err := p.TotalCost()
	if err != nil {
		t.Fatalf("TotalCost: %v", err)
	}
	want := decimal.RequireFromString("0.0000003")
	if !got.Equal(want) {
		t.Errorf("TotalCost() = %s, want %s", got, want)
	}
}

func TestPricingAverageCost(t *testing.T) {
	tests := []struct {
		prompt, completion string
		want               string
	}{
		{"0", "0", "0"},
		{"0.000001", "0.000003", "0.000002"},
		{"0.0000007", "0.0000007", "0.0000007"},
		{"1", "2", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.prompt+"+"+tt.completion, func(t *testing.T) {
			p := Pricing{Prompt: tt.prompt, Completion: tt.completion}
			got, err := p.AverageCost()
			if err != nil {
				t.Fatalf("AverageCost: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("AverageCost(%q, %q) = %s, want %s", tt.prompt, tt.completion, got, tt.want)
			}
		})
	}
}

func TestPricingInvalidDecimal(t *testing.T) {
	tests := []struct {
		name  string
		p     Pricing
		field string
	}{
		{"bad prompt", Pricing{Prompt: "free", Completion: "0"}, "pricing.prompt"},
		{"empty completion", Pricing{Prompt: "0", Completion: ""}, "pricing.completion"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.p.TotalCost()
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SchemaError, got %v", err)
			}
			if se.Field != tt.field {
				t.Errorf("Field = %q, want %q", se.Field, tt.field)
			}
		})
	}
}

func TestPricingApplyDefaults(t *testing.T) {
	p := Pricing{Prompt: "0.1", Completion: "0.2", WebSearch: "0.004"}
	p.ApplyDefaults()

	for name, v := range map[string]string{
		"image":              p.Image,
		"request":            p.Request,
		"input_cache_read":   p.InputCacheRead,
		"input_cache_write":  p.InputCacheWrite,
		"internal_reasoning": p.InternalReasoning,
	} {
		if v != "0" {
			t.Errorf("%s = %q, want \"0\"", name, v)
		}
	}
	if p.WebSearch != "0.004" {
		t.Errorf("web_search = %q, want it preserved", p.WebSearch)
	}
	if p.Prompt != "0.1" || p.Completion != "0.2" {
		t.Error("required prices must not be touched")
	}
}

func TestMembershipHelpers(t *testing.T) {
	m := Model{
		ID:                  "a",
		SupportedParameters: []string{"tools", "temperature"},
		Architecture: Architecture{
			InputModalities:  []string{"text", "image"},
			OutputModalities: []string{"text"},
		},
		TopProvider: TopProvider{IsModerated: true},
	}

	if !m.Supports("tools") || m.Supports("top_k") {
		t.Error("Supports mismatch")
	}
	if !m.Architecture.AcceptsInput("image") || m.Architecture.AcceptsInput("audio") {
		t.Error("AcceptsInput mismatch")
	}
	if !m.Architecture.ProducesOutput("text") || m.Architecture.ProducesOutput("image") {
		t.Error("ProducesOutput mismatch")
	}
	if !m.IsModerated() {
		t.Error("IsModerated = false, want true")
	}
}

func TestCatalogCheckUnique(t *testing.T) {
	c := Catalog{{ID: "a"}, {ID: "b"}, {ID: "a"}}

	err := c.CheckUnique()
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
	if se.Index != 2 || se.ModelID != "a" || se.Field != "id" {
		t.Errorf("unexpected error %+v", se)
	}

	if err := (Catalog{{ID: "a"}, {ID: "b"}}).CheckUnique(); err != nil {
		t.Errorf("unique catalog: %v", err)
	}
}

func TestCatalogFind(t *testing.T) {
	c := Catalog{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}

	m, ok := c.Find("b")
	if !ok || m.Name != "B" {
		t.Errorf("Find(b) = %v, %v", m, ok)
	}
	if _, ok := c.Find("z"); ok {
		t.Error("Find(z) should miss")
	}
	if got := c.IDs(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("IDs() = %v", got)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ConfigError{Field: "api_key", Msg: "not set"}, "configuration: api_key: not set"},
		{&TransportError{URL: "http://x/models", StatusCode: 401}, "GET http://x/models: status 401"},
		{&TransportError{URL: "http://x/models", StatusCode: 500, Body: "boom"}, "GET http://x/models: status 500: boom"},
		{&TransportError{URL: "http://x/models", Err: errors.New("refused")}, "GET http://x/models: refused"},
		{&SchemaError{Index: 3, Field: "name", Msg: "required field is empty"}, "schema: record 3: name: required field is empty"},
		{&SchemaError{Index: 3, ModelID: "m", Field: "name", Msg: "x"}, `schema: model "m": name: x`},
		{&SchemaError{Index: -1, Msg: "bad body"}, "schema: record: bad body"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestTransportErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&TransportError{URL: "u", Err: cause})
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}
