package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchable(t *testing.T) {
	tests := []struct {
		version  string
		provider string
		ok       bool
	}{
		{version: "RSV", provider: BibleGateway, ok: true},
		{version: "kjv", provider: BibleGateway, ok: true},
		{version: "REV", provider: REV},
		{version: "bsb", provider: BibleHub},
		{version: "LXX", provider: BibleServer},
		{version: " KJVA ", provider: APIBible},
	}
	for _, tc := range tests {
		t.Run(tc.version, func(t *testing.T) {
			provider, ok := Searchable(tc.version)
			assert.Equal(t, tc.provider, provider)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestRouterDispatchesByProvider(t *testing.T) {
	var gotVersion string
	r := NewRouter()
	r.Register(BibleGateway, SearchFunc(func(_ context.Context, version, _ string) ([]Record, error) {
		gotVersion = version
		return []Record{{Key: "John 3:16"}}, nil
	}))

	records, err := r.Search(context.Background(), " esv", "love")
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "ESV", gotVersion)

	_, err = r.Search(context.Background(), "NHEB", "love")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSearcher))
}

func TestCachedSearcher(t *testing.T) {
	calls := 0
	next := SearchFunc(func(_ context.Context, _, query string) ([]Record, error) {
		calls++
		if query == "none" {
			return nil, nil
		}
		if query == "fail" {
			return nil, errors.New("backend down")
		}
		return []Record{{Key: "Gen 1:1", Title: "Genesis 1:1", Text: "In the beginning"}}, nil
	})
	c := NewCachedSearcher(next, time.Minute, zerolog.Nop())
	ctx := context.Background()

	first, err := c.Search(ctx, "RSV", "Beginning")
	require.NoError(t, err)
	first[0].Text = "mutated"

	second, err := c.Search(ctx, "rsv", " beginning ")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "In the beginning", second[0].Text)

	missing, err := c.Search(ctx, "RSV", "none")
	require.NoError(t, err)
	assert.Nil(t, missing)
	missing, err = c.Search(ctx, "RSV", "none")
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.Equal(t, 2, calls)

	_, err = c.Search(ctx, "RSV", "fail")
	require.Error(t, err)
	_, err = c.Search(ctx, "RSV", "fail")
	require.Error(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, 2, c.Len())
}
