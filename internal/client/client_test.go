package client

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everstacklabs/modelpick/internal/cache"
	"github.com/everstacklabs/modelpick/internal/catalog"
	"github.com/everstacklabs/modelpick/internal/diff"
	"github.com/everstacklabs/modelpick/internal/selector"
)

type fakeFetcher struct {
	calls  atomic.Int32
	models catalog.Catalog
	err    error
}

func (f *fakeFetcher) Fetch(context.Context) (catalog.Catalog, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.models, nil
}

func model(id, prompt, completion string, ctx int) catalog.Model {
	return catalog.Model{
		ID:            id,
		Name:          id,
		ContextLength: ctx,
		Pricing:       catalog.Pricing{Prompt: prompt, Completion: completion},
		Architecture: catalog.Architecture{
			InputModalities:  []string{"text"},
			OutputModalities: []string{"text"},
		},
	}
}

func abc() catalog.Catalog {
	return catalog.Catalog{
		model("C", "0.000003", "0", 8000),
		model("A", "0.000001", "0", 8000),
		model("B", "0.000002", "0", 8000),
	}
}

func TestSelectManyLimit(t *testing.T) {
	f := &fakeFetcher{models: abc()}
	c := New(f)

	got, err := c.SelectMany(context.Background(), selector.Requirements{}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, got.IDs())
}

func TestSelectOneNoMatch(t *testing.T) {
	f := &fakeFetcher{models: abc()}
	c := New(f)

	got, err := c.SelectOne(context.Background(), selector.Requirements{MinContextLength: selector.MinContext(100_000)})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSelectOneDefaultsToRefresh(t *testing.T) {
	f := &fakeFetcher{models: abc()}
	c := New(f)

	_, err := c.SelectOne(context.Background(), selector.Requirements{})
	require.NoError(t, err)
	_, err = c.SelectOne(context.Background(), selector.Requirements{})
	require.NoError(t, err)

	assert.Equal(t, int32(2), f.calls.Load())
}

func TestSelectOneWithoutRefreshIsIdempotent(t *testing.T) {
	f := &fakeFetcher{models: abc()}
	c := New(f)
	req := selector.Requirements{ForceRefresh: selector.Refresh(false)}

	first, err := c.SelectOne(context.Background(), req)
	require.NoError(t, err)
	second, err := c.SelectOne(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int32(1), f.calls.Load())
	require.NotNil(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, "A", first.ID)
}

func TestSelectManyDefaultsToCache(t *testing.T) {
	f := &fakeFetcher{models: abc()}
	c := New(f)

	for range 3 {
		_, err := c.SelectMany(context.Background(), selector.Requirements{}, 0)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), f.calls.Load())

	_, err := c.SelectMany(context.Background(), selector.Requirements{ForceRefresh: selector.Refresh(true)}, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestClearCacheThenFetchOnce(t *testing.T) {
	f := &fakeFetcher{models: abc()}
	c := New(f)
	req := selector.Requirements{ForceRefresh: selector.Refresh(false)}

	_, err := c.SelectOne(context.Background(), req)
	require.NoError(t, err)

	c.ClearCache()
	_, err = c.SelectOne(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int32(2), f.calls.Load())
}

func TestRefreshAndModels(t *testing.T) {
	f := &fakeFetcher{models: abc()}
	c := New(f)

	require.NoError(t, c.Refresh(context.Background()))
	models, err := c.Models(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, []string{"C", "A", "B"}, models.IDs())
}

func TestFetchErrorsPropagate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		as   func(error) bool
	}{
		{"transport", &catalog.TransportError{URL: "u", StatusCode: 500}, func(err error) bool {
			var te *catalog.TransportError
			return errors.As(err, &te)
		}},
		{"schema", &catalog.SchemaError{Index: 3, Field: "name", Msg: "required field is empty"}, func(err error) bool {
			var se *catalog.SchemaError
			return errors.As(err, &se)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&fakeFetcher{err: tt.err})

			m, err := c.SelectOne(context.Background(), selector.Requirements{})
			assert.Nil(t, m)
			assert.True(t, tt.as(err), "unexpected error %v", err)

			ms, err := c.SelectMany(context.Background(), selector.Requirements{}, 1)
			assert.Nil(t, ms)
			assert.True(t, tt.as(err))

			assert.True(t, tt.as(c.Refresh(context.Background())))
		})
	}
}

func TestFailedRefreshKeepsServingSnapshot(t *testing.T) {
	f := &fakeFetcher{models: abc()}
	c := New(f)
	require.NoError(t, c.Refresh(context.Background()))

	f.err = &catalog.TransportError{URL: "u"}
	require.Error(t, c.Refresh(context.Background()))

	got, err := c.SelectMany(context.Background(), selector.Requirements{}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, got.IDs())
}

func TestCostAndContextBounds(t *testing.T) {
	models := catalog.Catalog{
		model("cheap-small", "0.0000001", "0.0000001", 4096),
		model("cheap-big", "0.0000005", "0.0000015", 128000),
		model("pricey-big", "0.00001", "0.00003", 200000),
	}
	c := New(&fakeFetcher{models: models})
	req := selector.Requirements{
		MaxCostPerToken:  selector.MaxCost(decimal.RequireFromString("0.000001")),
		MinContextLength: selector.MinContext(8000),
	}

	got, err := c.SelectMany(context.Background(), req, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"cheap-big"}, got.IDs())
}

func TestCacheOptionsReachCache(t *testing.T) {
	var changes int
	f := &fakeFetcher{models: abc()}
	c := New(f, WithCacheOptions(cache.WithChangeObserver(func(*diff.ChangeSet) { changes++ })))

	require.NoError(t, c.Refresh(context.Background()))
	f.models = append(abc(), model("D", "0", "0", 8000))
	require.NoError(t, c.Refresh(context.Background()))

	assert.Equal(t, 1, changes)
}
