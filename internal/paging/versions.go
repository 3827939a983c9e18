package paging

import (
	"context"
	"fmt"
	"strings"

	"biblebot/internal/lang"
)

const VersionsPageSize = 25

// Versions pages every version the registry knows. The result is always
// paged, even when it fits on one page.
func (p *Paginator) Versions(ctx context.Context, t *lang.Table) (Result, error) {
	entries, err := p.versions.ListVersions(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list versions: %w", err)
	}
	return VersionPages(entries, t, p.display), nil
}

func VersionPages(entries []string, t *lang.Table, d Display) Result {
	spans := bounds(len(entries), VersionsPageSize, 0)
	pages := make([]Page, 0, len(spans))
	for i, span := range spans {
		var body strings.Builder
		for _, entry := range entries[span[0]:span[1]] {
			body.WriteString(entry)
			body.WriteByte('\n')
		}
		page := Page{
			Title:       d.CommandPrefix + t.Commands.Versions + " - " + t.PageOf(i+1, len(spans)),
			Description: body.String(),
			Color:       d.Color,
			Footer:      d.footer(),
		}
		if len(entries) == 0 {
			page.Description = t.NothingFound(d.CommandPrefix + t.Commands.Versions)
		}
		pages = append(pages, page)
	}
	return Result{Level: LevelInfo, Paged: true, Pages: pages}
}
