package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Record is one search hit: a provider-defined key (usually the reference),
// a display title and the verse text.
type Record struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Searcher runs a scripture search. A nil slice with a nil error means the
// backend answered with no results object at all; callers treat that
// differently from an empty, non-nil slice.
type Searcher interface {
	Search(ctx context.Context, version, query string) ([]Record, error)
}

type SearchFunc func(ctx context.Context, version, query string) ([]Record, error)

func (f SearchFunc) Search(ctx context.Context, version, query string) ([]Record, error) {
	return f(ctx, version, query)
}

const (
	BibleGateway = "BibleGateway"
	BibleHub     = "BibleHub"
	BibleServer  = "BibleServer"
	APIBible     = "API.Bible"
	REV          = "REV"
)

var ErrNoSearcher = errors.New("providers: no searcher registered")

// searchless lists the versions whose provider has no search endpoint.
var searchless = map[string]string{
	"BSB":  BibleHub,
	"NHEB": BibleHub,
	"WBT":  BibleHub,
	"LUT":  BibleServer,
	"LXX":  BibleServer,
	"SLT":  BibleServer,
	"KJVA": APIBible,
	"REV":  REV,
}

// ProviderFor returns the provider serving version.
func ProviderFor(version string) string {
	if p, ok := searchless[normalizeVersion(version)]; ok {
		return p
	}
	return BibleGateway
}

// Searchable reports whether version can be searched. When it cannot, the
// provider name is returned for the error message.
func Searchable(version string) (provider string, ok bool) {
	provider = ProviderFor(version)
	return provider, provider == BibleGateway
}

// Router dispatches a search to the searcher registered for the version's provider.
type Router struct {
	searchers map[string]Searcher
}

func NewRouter() *Router {
	return &Router{searchers: make(map[string]Searcher)}
}

func (r *Router) Register(provider string, s Searcher) {
	r.searchers[provider] = s
}

func (r *Router) Search(ctx context.Context, version, query string) ([]Record, error) {
	provider := ProviderFor(version)
	s, ok := r.searchers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSearcher, provider)
	}
	return s.Search(ctx, normalizeVersion(version), query)
}

func normalizeVersion(version string) string {
	return strings.ToUpper(strings.TrimSpace(version))
}
