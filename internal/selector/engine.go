package selector

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/everstacklabs/modelpick/internal/catalog"
)

// Engine applies Requirements to a catalog. It holds no state besides its
// logger and is safe for concurrent use.
type Engine struct {
	log *slog.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-model decisions.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var two = decimal.NewFromInt(2)

// Filter returns the models satisfying every constraint in req, in input
// order. The result is never nil. A model whose prompt or completion price
// cannot be parsed fails the call with a *catalog.SchemaError.
func (e *Engine) Filter(models []catalog.Model, req Requirements) (catalog.Catalog, error) {
	excluded := make(map[string]bool, len(req.ExcludeModelIDs))
	for _, id := range req.ExcludeModelIDs {
		excluded[id] = true
	}

	// avg <= max is checked as prompt+completion <= 2*max to stay exact.
	var costCap decimal.Decimal
	if req.MaxCostPerToken != nil {
		costCap = req.MaxCostPerToken.Mul(two)
	}

	out := make(catalog.Catalog, 0, len(models))
	for i := range models {
		m := &models[i]

		if excluded[m.ID] {
			e.reject(m, "excluded")
			continue
		}

		if req.MaxCostPerToken != nil {
			total, err := m.Pricing.TotalCost()
			if err != nil {
				return nil, schemaErr(err, i, m.ID)
			}
			if total.GreaterThan(costCap) {
				e.reject(m, "cost", "average", total.Div(two).String(), "max", req.MaxCostPerToken.String())
				continue
			}
		}

		if req.MinContextLength != nil && m.ContextLength < *req.MinContextLength {
			e.reject(m, "context_length", "have", m.ContextLength, "want", *req.MinContextLength)
			continue
		}

		if f, ok := firstMissing(req.RequiredFeatures, m.Supports); ok {
			e.reject(m, "feature", "missing", f)
			continue
		}
		if mod, ok := firstMissing(req.RequiredInputModalities, m.Architecture.AcceptsInput); ok {
			e.reject(m, "input_modality", "missing", mod)
			continue
		}
		if mod, ok := firstMissing(req.RequiredOutputModalities, m.Architecture.ProducesOutput); ok {
			e.reject(m, "output_modality", "missing", mod)
			continue
		}

		if req.PreferUnmoderated && m.IsModerated() {
			e.reject(m, "moderated")
			continue
		}

		out = append(out, *m)
	}

	e.log.Debug("models filtered", "candidates", len(models), "matched", len(out))
	return out, nil
}

// Rank orders models by prompt + completion price, cheapest first. The sort is
// stable: equal totals keep their input order.
func (e *Engine) Rank(models []catalog.Model) (catalog.Catalog, error) {
	type ranked struct {
		total decimal.Decimal
		model catalog.Model
	}

	rs := make([]ranked, len(models))
	for i := range models {
		total, err := models[i].Pricing.TotalCost()
		if err != nil {
			return nil, schemaErr(err, i, models[i].ID)
		}
		rs[i] = ranked{total: total, model: models[i]}
	}

	slices.SortStableFunc(rs, func(a, b ranked) int {
		return a.total.Cmp(b.total)
	})

	out := make(catalog.Catalog, len(rs))
	for i := range rs {
		out[i] = rs[i].model
	}
	return out, nil
}

// SelectBest returns the cheapest model satisfying req, or nil when none does.
func (e *Engine) SelectBest(models []catalog.Model, req Requirements) (*catalog.Model, error) {
	top, err := e.SelectTop(models, req, 1)
	if err != nil {
		return nil, err
	}
	if len(top) == 0 {
		e.log.Debug("no model matched requirements")
		return nil, nil
	}
	best := top[0]
	e.log.Debug("model selected", "model", best.ID)
	return &best, nil
}

// SelectTop returns up to limit of the cheapest models satisfying req.
// limit <= 0 returns every match.
func (e *Engine) SelectTop(models []catalog.Model, req Requirements, limit int) (catalog.Catalog, error) {
	filtered, err := e.Filter(models, req)
	if err != nil {
		return nil, err
	}
	ranked, err := e.Rank(filtered)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (e *Engine) reject(m *catalog.Model, reason string, attrs ...any) {
	e.log.Debug("model rejected", append([]any{"model", m.ID, "reason", reason}, attrs...)...)
}

// firstMissing returns the first wanted value for which has reports false.
func firstMissing(wanted []string, has func(string) bool) (string, bool) {
	for _, w := range wanted {
		if !has(w) {
			return w, true
		}
	}
	return "", false
}

func schemaErr(err error, index int, id string) error {
	var se *catalog.SchemaError
	if errors.As(err, &se) {
		return se.ForModel(index, id)
	}
	return err
}
