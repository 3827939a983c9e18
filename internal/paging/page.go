// Package paging splits search results and version listings into display pages.
//
// Page boundaries are computed up front and every page is a slice of an
// immutable input sequence; nothing is consumed while pages are built.
package paging

import (
	"encoding/json"
	"fmt"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "err"
)

// Display carries the constants stamped on every page.
type Display struct {
	BotName       string
	Version       string
	IconURL       string
	Color         int
	CommandPrefix string
}

func (d Display) footer() Footer {
	text := d.BotName
	if d.Version != "" {
		text = fmt.Sprintf("%s %s", d.BotName, d.Version)
	}
	return Footer{Text: text, IconURL: d.IconURL}
}

type Footer struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type Page struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields,omitempty"`
	Color       int     `json:"color"`
	Footer      Footer  `json:"footer"`
}

// Result is the envelope handed to a renderer. Exactly one of Message, Page
// or Pages is meaningful: Message for errors, Page for a single info page,
// Pages when Paged is set.
type Result struct {
	Level   Level
	Message string
	Page    *Page
	Paged   bool
	Pages   []Page

	// Oversized counts records on the pages that were hidden for exceeding
	// the body limit.
	Oversized int
	// Dropped counts records past the page cap.
	Dropped int
}

func (r Result) Truncated() bool {
	return r.Dropped > 0
}

// All returns every page in display order regardless of the envelope shape.
func (r Result) All() []Page {
	if r.Paged {
		return r.Pages
	}
	if r.Page != nil {
		return []Page{*r.Page}
	}
	return nil
}

func (r Result) MarshalJSON() ([]byte, error) {
	switch {
	case r.Paged:
		return json.Marshal(struct {
			Level Level  `json:"level"`
			Paged bool   `json:"paged"`
			Pages []Page `json:"pages"`
		}{r.Level, true, r.Pages})
	case r.Page != nil:
		return json.Marshal(struct {
			Level   Level `json:"level"`
			Message *Page `json:"message"`
		}{r.Level, r.Page})
	default:
		return json.Marshal(struct {
			Level   Level  `json:"level"`
			Message string `json:"message"`
		}{r.Level, r.Message})
	}
}

// bounds returns the [start, end) index pairs splitting n items into pages
// of size. There is always at least one page; maxPages caps the count when
// positive.
func bounds(n, size, maxPages int) [][2]int {
	total := (n + size - 1) / size
	if total < 1 {
		total = 1
	}
	if maxPages > 0 && total > maxPages {
		total = maxPages
	}
	out := make([][2]int, total)
	for i := range out {
		start := min(i*size, n)
		out[i] = [2]int{start, min(start+size, n)}
	}
	return out
}

func wrap(pages []Page) Result {
	if len(pages) == 1 {
		return Result{Level: LevelInfo, Page: &pages[0]}
	}
	return Result{Level: LevelInfo, Paged: true, Pages: pages}
}
