package paging

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"biblebot/internal/lang"
	"biblebot/internal/providers"
)

const (
	SearchPageSize = 6
	SearchMaxPages = 100
	// MaxRecordLength is the exclusive upper bound, in characters, on a
	// record body that can be shown.
	MaxRecordLength = 700
)

var (
	ErrUnsupportedProvider = errors.New("paging: search not supported for provider")
	ErrNoResults           = errors.New("paging: provider returned no results object")
)

type UnsupportedProviderError struct {
	Version  string
	Provider string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("search not supported for %s (%s)", e.Version, e.Provider)
}

func (e *UnsupportedProviderError) Unwrap() error {
	return ErrUnsupportedProvider
}

// VersionLister supplies the display strings for every known version.
type VersionLister interface {
	ListVersions(ctx context.Context) ([]string, error)
}

type Paginator struct {
	display  Display
	searcher providers.Searcher
	versions VersionLister
}

func New(display Display, searcher providers.Searcher, versions VersionLister) *Paginator {
	return &Paginator{display: display, searcher: searcher, versions: versions}
}

// Search runs query against the version's provider and pages the hits.
//
// A version whose provider cannot search yields an error-level Result along
// with an *UnsupportedProviderError. A provider answering with no results
// object yields ErrNoResults and a zero Result.
func (p *Paginator) Search(ctx context.Context, version, query string, t *lang.Table) (Result, error) {
	if provider, ok := providers.Searchable(version); !ok {
		return Result{Level: LevelError, Message: t.SearchNotSupported(provider)},
			&UnsupportedProviderError{Version: version, Provider: provider}
	}
	records, err := p.searcher.Search(ctx, version, query)
	if err != nil {
		return Result{}, fmt.Errorf("search %s: %w", version, err)
	}
	if records == nil {
		return Result{}, ErrNoResults
	}
	return SearchPages(records, query, t, p.display), nil
}

// SearchPages lays records out SearchPageSize to a page, at most
// SearchMaxPages pages. Page boundaries cover the whole result set; records
// whose body reaches MaxRecordLength keep their slot but are not shown.
func SearchPages(records []providers.Record, query string, t *lang.Table, d Display) Result {
	spans := bounds(len(records), SearchPageSize, SearchMaxPages)
	pages := make([]Page, 0, len(spans))
	oversized := 0
	for i, span := range spans {
		page := Page{
			Title:       fmt.Sprintf("%s \"%s\"", t.SearchResults(), query),
			Description: t.PageOf(i+1, len(spans)),
			Color:       d.Color,
			Footer:      d.footer(),
		}
		if len(records) == 0 {
			page.Title = t.NothingFound(query)
			page.Description = ""
		}
		for _, r := range records[span[0]:span[1]] {
			if utf8.RuneCountInString(r.Text) >= MaxRecordLength {
				oversized++
				continue
			}
			page.Fields = append(page.Fields, Field{Name: r.Title, Value: r.Text})
		}
		pages = append(pages, page)
	}

	res := wrap(pages)
	res.Oversized = oversized
	res.Dropped = len(records) - spans[len(spans)-1][1]
	return res
}
