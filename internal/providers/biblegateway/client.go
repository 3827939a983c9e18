// Package biblegateway searches BibleGateway's quick-search pages.
package biblegateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"biblebot/internal/providers"
)

const (
	DefaultBaseURL   = "https://www.biblegateway.com"
	defaultTimeout   = 15 * time.Second
	resultsPerSearch = 5000
	userAgent        = "biblebot (+https://github.com/biblebot)"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// Search fetches every hit for query in version. It returns a nil slice when
// the response carries no result list at all.
func (c *Client) Search(ctx context.Context, version, query string) ([]providers.Record, error) {
	params := url.Values{}
	params.Set("quicksearch", query)
	params.Set("version", version)
	params.Set("resultspp", fmt.Sprint(resultsPerSearch))
	endpoint := c.baseURL + "/quicksearch/?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("biblegateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("biblegateway: unexpected status %d", resp.StatusCode)
	}
	return parseResults(resp.Body)
}

func parseResults(r io.Reader) ([]providers.Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("biblegateway: parse html: %w", err)
	}

	list := doc.Find(".search-result-list")
	if list.Length() == 0 {
		return nil, nil
	}

	records := []providers.Record{}
	seen := map[string]bool{}
	list.Find(".bible-item").Each(func(_ int, item *goquery.Selection) {
		title := collapse(item.Find(".bible-item-title").First().Text())
		if title == "" || seen[title] {
			return
		}
		body := item.Find(".bible-item-text").First().Clone()
		body.Find(".bible-item-extras, sup, h3").Remove()
		text := collapse(body.Text())
		if text == "" {
			return
		}
		seen[title] = true
		records = append(records, providers.Record{Key: title, Title: title, Text: text})
	})
	return records, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
