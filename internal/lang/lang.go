// Package lang loads the bot's localization tables and renders their messages.
//
// Tables are YAML files embedded at build time. Callers never substitute
// placeholders themselves; each message has a typed method on Table.
package lang

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultLanguage = "english"

//go:embed locales/*.yaml
var localeFS embed.FS

var ErrUnknownLanguage = errors.New("lang: unknown language")

type Commands struct {
	Search   string `yaml:"search"`
	Versions string `yaml:"versions"`
	Version  string `yaml:"version"`
	Language string `yaml:"language"`
}

type Table struct {
	Name     string   `yaml:"name"`
	Commands Commands `yaml:"commands"`

	SearchResultsText      string `yaml:"searchResults"`
	PageOfText             string `yaml:"pageOf"`
	NothingFoundText       string `yaml:"nothingFound"`
	SearchNotSupportedText string `yaml:"searchNotSupported"`
	VersionCurrentText     string `yaml:"versionCurrent"`
	VersionSetText         string `yaml:"versionSet"`
	VersionUnknownText     string `yaml:"versionUnknown"`
	LanguageCurrentText    string `yaml:"languageCurrent"`
	LanguageSetText        string `yaml:"languageSet"`
	LanguageUnknownText    string `yaml:"languageUnknown"`
	RateLimitedText        string `yaml:"rateLimited"`
	SearchFailedText       string `yaml:"searchFailed"`
}

func (t *Table) SearchResults() string {
	return t.SearchResultsText
}

// PageOf renders the position indicator for page num (1-based) of total.
func (t *Table) PageOf(num, total int) string {
	return fill(t.PageOfText, "num", strconv.Itoa(num), "total", strconv.Itoa(total))
}

func (t *Table) NothingFound(query string) string {
	return fill(t.NothingFoundText, "query", query)
}

// SearchNotSupported names the localized search command and the provider
// that cannot serve it.
func (t *Table) SearchNotSupported(provider string) string {
	return fill(t.SearchNotSupportedText, "search", t.Commands.Search, "provider", provider)
}

func (t *Table) VersionCurrent(version string) string {
	return fill(t.VersionCurrentText, "version", version)
}

func (t *Table) VersionSet(version string) string {
	return fill(t.VersionSetText, "version", version)
}

func (t *Table) VersionUnknown(version, prefix string) string {
	return fill(t.VersionUnknownText, "version", version, "versions", prefix+t.Commands.Versions)
}

func (t *Table) LanguageCurrent(language string) string {
	return fill(t.LanguageCurrentText, "language", language)
}

func (t *Table) LanguageSet(language string) string {
	return fill(t.LanguageSetText, "language", language)
}

func (t *Table) LanguageUnknown(language string) string {
	return fill(t.LanguageUnknownText, "language", language)
}

func (t *Table) RateLimited(seconds int) string {
	return fill(t.RateLimitedText, "seconds", strconv.Itoa(seconds))
}

func (t *Table) SearchFailed() string {
	return t.SearchFailedText
}

func fill(tmpl string, pairs ...string) string {
	args := make([]string, 0, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		args = append(args, "<"+pairs[i]+">", pairs[i+1])
	}
	return strings.NewReplacer(args...).Replace(tmpl)
}

func (t *Table) validate() error {
	required := map[string]string{
		"name":               t.Name,
		"searchResults":      t.SearchResultsText,
		"pageOf":             t.PageOfText,
		"nothingFound":       t.NothingFoundText,
		"searchNotSupported": t.SearchNotSupportedText,
		"commands.search":    t.Commands.Search,
		"commands.versions":  t.Commands.Versions,
	}
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("lang: %q is missing %s", t.Name, key)
		}
	}
	return nil
}

// Catalog holds every loaded table keyed by language name.
type Catalog struct {
	tables map[string]*Table
}

// Load parses the embedded locale tables.
func Load() (*Catalog, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, err
	}
	c := &Catalog{tables: make(map[string]*Table, len(entries))}
	for _, entry := range entries {
		raw, err := localeFS.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			return nil, err
		}
		if err := c.Add(raw); err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
	}
	if _, ok := c.tables[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("lang: default table %q not found", DefaultLanguage)
	}
	return c, nil
}

// MustLoad is Load for package init and tests.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Add parses one YAML table and registers it, replacing any table of the same name.
func (c *Catalog) Add(raw []byte) error {
	var t Table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return fmt.Errorf("lang: parse table: %w", err)
	}
	t.Name = strings.ToLower(strings.TrimSpace(t.Name))
	if err := t.validate(); err != nil {
		return err
	}
	c.tables[t.Name] = &t
	return nil
}

func (c *Catalog) Lookup(name string) (*Table, error) {
	t, ok := c.tables[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
	}
	return t, nil
}

// Get returns the named table, falling back to the default language.
func (c *Catalog) Get(name string) *Table {
	if t, err := c.Lookup(name); err == nil {
		return t
	}
	return c.tables[DefaultLanguage]
}

func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
