// Package commands turns prefixed chat messages into paging results.
package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"biblebot/internal/audit"
	"biblebot/internal/lang"
	"biblebot/internal/paging"
	"biblebot/internal/store"
)

const (
	Search   = "search"
	Versions = "versions"
	Version  = "version"
	Language = "language"
)

var ErrUnknownCommand = errors.New("commands: unknown command")

// Request is one inbound message with the command prefix already removed.
type Request struct {
	UserID    string
	ChannelID string
	GuildID   string
	Text      string
}

type PreferenceStore interface {
	Preferences(ctx context.Context, userID string) (store.Preferences, error)
	SetVersion(ctx context.Context, userID, abbv string) (store.Version, error)
	SetLanguage(ctx context.Context, userID, language string) error
}

type Router struct {
	paginator *paging.Paginator
	prefs     PreferenceStore
	catalog   *lang.Catalog
	prefix    string
	audit     *audit.Logger
	log       zerolog.Logger
}

type Options struct {
	Paginator     *paging.Paginator
	Preferences   PreferenceStore
	Catalog       *lang.Catalog
	CommandPrefix string
	Audit         *audit.Logger
	Logger        zerolog.Logger
}

func NewRouter(opts Options) *Router {
	return &Router{
		paginator: opts.Paginator,
		prefs:     opts.Preferences,
		catalog:   opts.Catalog,
		prefix:    opts.CommandPrefix,
		audit:     opts.Audit,
		log:       opts.Logger,
	}
}

// Accepts reports whether req.Text names a command Handle would run, in the
// user's language or in English.
func (r *Router) Accepts(ctx context.Context, req Request) bool {
	_, err := r.parse(ctx, req)
	return err == nil
}

// Handle runs the command in req.Text. Messages that are not a known
// command return ErrUnknownCommand. Failures a user can act on come back as
// error-level results, not errors.
func (r *Router) Handle(ctx context.Context, req Request) (paging.Result, error) {
	c, err := r.parse(ctx, req)
	if err != nil {
		return paging.Result{}, err
	}

	var res paging.Result
	switch c.name {
	case Search:
		res = r.search(ctx, c.prefs.Version, c.args, c.table)
	case Versions:
		res, err = r.paginator.Versions(ctx, c.table)
	case Version:
		res, err = r.version(ctx, req.UserID, c.prefs.Version, c.args, c.table)
	case Language:
		res, err = r.language(ctx, req.UserID, c.table, c.args)
	}
	if err != nil {
		r.log.Error().Err(err).Str("user", req.UserID).Str("command", c.name).Msg("command failed")
		return paging.Result{}, err
	}

	r.record(ctx, req, c.name, c.args, res)
	return res, nil
}

type parsed struct {
	name  string
	args  string
	prefs store.Preferences
	table *lang.Table
}

func (r *Router) parse(ctx context.Context, req Request) (parsed, error) {
	name, args := splitCommand(req.Text)
	if name == "" {
		return parsed{}, ErrUnknownCommand
	}

	prefs, err := r.prefs.Preferences(ctx, req.UserID)
	if err != nil {
		return parsed{}, err
	}
	table := r.catalog.Get(prefs.Language)

	cmd := resolve(name, table)
	if cmd == "" || (cmd == Search && args == "") {
		return parsed{}, ErrUnknownCommand
	}
	return parsed{name: cmd, args: args, prefs: prefs, table: table}, nil
}

func (r *Router) search(ctx context.Context, version, query string, table *lang.Table) paging.Result {
	res, err := r.paginator.Search(ctx, version, query, table)
	var unsupported *paging.UnsupportedProviderError
	switch {
	case err == nil:
		if res.Truncated() {
			r.log.Warn().Str("version", version).Str("query", query).Int("dropped", res.Dropped).Msg("search results truncated at page cap")
		}
		return res
	case errors.As(err, &unsupported):
		return res
	case errors.Is(err, paging.ErrNoResults):
		r.log.Warn().Str("version", version).Str("query", query).Msg("search provider returned no results object")
	default:
		r.log.Error().Err(err).Str("version", version).Str("query", query).Msg("search failed")
	}
	return paging.Result{Level: paging.LevelError, Message: table.SearchFailed()}
}

func (r *Router) version(ctx context.Context, userID, current, arg string, table *lang.Table) (paging.Result, error) {
	if arg == "" {
		return info(table.VersionCurrent(current)), nil
	}
	v, err := r.prefs.SetVersion(ctx, userID, arg)
	if errors.Is(err, store.ErrNotFound) {
		return failure(table.VersionUnknown(strings.ToUpper(arg), r.prefix)), nil
	}
	if err != nil {
		return paging.Result{}, err
	}
	return info(table.VersionSet(v.Display())), nil
}

func (r *Router) language(ctx context.Context, userID string, table *lang.Table, arg string) (paging.Result, error) {
	if arg == "" {
		return info(table.LanguageCurrent(table.Name)), nil
	}
	next, err := r.catalog.Lookup(arg)
	if err != nil {
		return failure(table.LanguageUnknown(arg)), nil
	}
	if err := r.prefs.SetLanguage(ctx, userID, next.Name); err != nil {
		return paging.Result{}, err
	}
	return info(next.LanguageSet(next.Name)), nil
}

func (r *Router) record(ctx context.Context, req Request, cmd, args string, res paging.Result) {
	level := audit.LevelInfo
	if res.Level == paging.LevelError {
		level = audit.LevelErr
	}
	err := r.audit.LogInteraction(ctx, audit.Interaction{
		Level:     level,
		UserID:    req.UserID,
		ChannelID: req.ChannelID,
		GuildID:   req.GuildID,
		Command:   cmd,
		Message:   args,
	})
	if err != nil {
		r.log.Warn().Err(err).Msg("interaction log write failed")
	}
}

func info(msg string) paging.Result {
	return paging.Result{Level: paging.LevelInfo, Message: msg}
}

func failure(msg string) paging.Result {
	return paging.Result{Level: paging.LevelError, Message: msg}
}

func splitCommand(text string) (name, args string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}
	name, args, _ = strings.Cut(text, " ")
	return strings.ToLower(name), strings.TrimSpace(args)
}

// resolve maps a localized or English command name to its canonical name.
func resolve(name string, table *lang.Table) string {
	switch name {
	case Search, strings.ToLower(table.Commands.Search):
		return Search
	case Versions, strings.ToLower(table.Commands.Versions):
		return Versions
	case Version, strings.ToLower(table.Commands.Version):
		return Version
	case Language, strings.ToLower(table.Commands.Language):
		return Language
	}
	return ""
}
