package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/everstacklabs/modelpick/internal/catalog"
	"github.com/everstacklabs/modelpick/internal/config"
	"github.com/everstacklabs/modelpick/internal/render"
	"github.com/everstacklabs/modelpick/internal/selector"
)

// autoRouter is OpenRouter's meta-model that routes to other models.
const autoRouter = "openrouter/auto"

func selectCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Select the cheapest models matching the given requirements",
		Example: `  modelpick select --max-cost 0.00001 --min-context 8000 --features tools \
    --prefer-unmoderated --limit 10 --output brief --name-filter llama`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.closer.Close()

			req, err := buildRequirements(cmd, a.cfg.Selection)
			if err != nil {
				return err
			}

			output := a.cfg.Selection.Output
			if cmd.Flags().Changed("output") {
				output = mustString(cmd, "output")
			}
			format, err := render.ParseFormat(output)
			if err != nil {
				return err
			}

			limit := a.cfg.Selection.Limit
			if cmd.Flags().Changed("limit") {
				limit, _ = cmd.Flags().GetInt("limit")
			}

			a.log.Debug("model selection requirements", "requirements", req)

			c := a.client()
			var models catalog.Catalog
			if one, _ := cmd.Flags().GetBool("one"); one {
				m, err := c.SelectOne(cmd.Context(), req)
				if err != nil {
					return err
				}
				if m != nil {
					models = catalog.Catalog{*m}
				}
			} else {
				models, err = c.SelectMany(cmd.Context(), req, limit)
				if err != nil {
					return err
				}
			}

			// Applied after ranking and limiting, so it can shrink the result.
			models = render.FilterByName(models, mustString(cmd, "name-filter"))

			if err := render.Write(cmd.OutOrStdout(), format, models); err != nil {
				return err
			}

			a.log.Info("models selected", "count", len(models))
			if failEmpty, _ := cmd.Flags().GetBool("fail-empty"); failEmpty && len(models) == 0 {
				return errNoMatch
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.String("max-cost", "0", "Maximum average cost per token (0 for no limit)")
	f.Int("min-context", 8000, "Minimum context length required")
	f.StringSlice("features", nil, "Comma-separated list of required features")
	f.StringSlice("input-mods", []string{"text"}, "Comma-separated list of input modalities")
	f.StringSlice("output-mods", []string{"text"}, "Comma-separated list of output modalities")
	f.Bool("prefer-unmoderated", false, "Exclude moderated models")
	f.Int("limit", 0, "Maximum number of models to return (0 for all)")
	f.String("output", "json", "Output format (json, yaml, text, brief)")
	f.Bool("no-auto", true, "Filter out the openrouter/auto router model")
	f.String("name-filter", "", "Only keep models whose name contains this text")
	f.StringSlice("exclude", nil, "Model ids to exclude")
	f.Bool("one", false, "Return only the single best model")
	f.Bool("refresh", true, "Fetch a fresh catalog instead of reusing a cached one")
	f.Bool("fail-empty", false, "Exit with status 5 when nothing matches")

	return cmd
}

// buildRequirements merges command flags over the configured selection
// defaults. A flag only wins when it was set explicitly.
func buildRequirements(cmd *cobra.Command, sel config.SelectionConfig) (selector.Requirements, error) {
	fl := cmd.Flags()

	maxCost := sel.MaxCost
	if fl.Changed("max-cost") {
		maxCost, _ = fl.GetString("max-cost")
	}
	minContext := sel.MinContext
	if fl.Changed("min-context") {
		minContext, _ = fl.GetInt("min-context")
	}
	features := sel.Features
	if fl.Changed("features") {
		features, _ = fl.GetStringSlice("features")
	}
	inputs := sel.InputModalities
	if fl.Changed("input-mods") {
		inputs, _ = fl.GetStringSlice("input-mods")
	}
	outputs := sel.OutputModalities
	if fl.Changed("output-mods") {
		outputs, _ = fl.GetStringSlice("output-mods")
	}
	preferUnmoderated := sel.PreferUnmoderated
	if fl.Changed("prefer-unmoderated") {
		preferUnmoderated, _ = fl.GetBool("prefer-unmoderated")
	}
	exclude := sel.ExcludeModels
	if fl.Changed("exclude") {
		exclude, _ = fl.GetStringSlice("exclude")
	}
	noAuto, _ := fl.GetBool("no-auto")
	refresh, _ := fl.GetBool("refresh")

	req := selector.Requirements{
		RequiredFeatures:         cleanList(features),
		RequiredInputModalities:  cleanList(inputs),
		RequiredOutputModalities: cleanList(outputs),
		PreferUnmoderated:        preferUnmoderated,
		ExcludeModelIDs:          withAutoRouter(cleanList(exclude), noAuto),
		ForceRefresh:             selector.Refresh(refresh),
	}

	cost, err := parseMaxCost(maxCost)
	if err != nil {
		return selector.Requirements{}, err
	}
	req.MaxCostPerToken = cost

	if minContext > 0 {
		req.MinContextLength = selector.MinContext(minContext)
	}

	if err := req.Validate(); err != nil {
		return selector.Requirements{}, err
	}
	return req, nil
}

// parseMaxCost treats an empty or zero cap as "no limit".
func parseMaxCost(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, &catalog.ConfigError{Field: "max_cost", Msg: fmt.Sprintf("invalid decimal %q", s)}
	}
	if d.IsZero() {
		return nil, nil
	}
	return &d, nil
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func withAutoRouter(ids []string, exclude bool) []string {
	has := slices.Contains(ids, autoRouter)
	switch {
	case exclude && !has:
		return append(ids, autoRouter)
	case !exclude && has:
		return slices.DeleteFunc(ids, func(id string) bool { return id == autoRouter })
	}
	return ids
}
