package discord

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"biblebot/internal/commands"
	"biblebot/internal/config"
	"biblebot/internal/lang"
	"biblebot/internal/paging"
)

type fakeMessenger struct {
	sent      []*discordgo.MessageSend
	responses []*discordgo.InteractionResponse
}

func (f *fakeMessenger) ChannelMessageSendComplex(_ string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, data)
	return &discordgo.Message{}, nil
}

func (f *fakeMessenger) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.responses = append(f.responses, resp)
	return nil
}

type handlerFunc func(ctx context.Context, req commands.Request) (paging.Result, error)

func (f handlerFunc) Handle(ctx context.Context, req commands.Request) (paging.Result, error) {
	return f(ctx, req)
}

var knownCommands = map[string]bool{"search": true, "versions": true, "version": true, "broken": true}

func (f handlerFunc) Accepts(_ context.Context, req commands.Request) bool {
	name, _, _ := strings.Cut(req.Text, " ")
	return knownCommands[name]
}

func testPages(n int) []paging.Page {
	pages := make([]paging.Page, n)
	for i := range pages {
		pages[i] = paging.Page{Title: "page " + string(rune('A'+i)), Color: 303102, Footer: paging.Footer{Text: "BibleBot v9"}}
	}
	return pages
}

func newTestBot(t *testing.T, cfg config.Config, h Handler) *Bot {
	t.Helper()
	return newBot(cfg, h, lang.MustLoad(), zerolog.Nop())
}

func message(user, content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   content,
		Author:    &discordgo.User{ID: user},
	}}
}

func TestNormalizeInboundMessage(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		prefix string
		want   string
	}{
		{name: "plain content with no prefix", input: "versions", want: "versions"},
		{name: "command prefix message", input: "+search  love ", prefix: "+", want: "search  love"},
		{name: "non prefixed ignored", input: "John 3:16", prefix: "+", want: ""},
		{name: "empty", input: "", prefix: "+", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeInboundMessage(tc.input, tc.prefix)
			if got != tc.want {
				t.Fatalf("normalizeInboundMessage() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCustomIDRoundTrip(t *testing.T) {
	session, index, ok := parseCustomID(customID("abc", 4, "next"))
	if !ok || session != "abc" || index != 4 {
		t.Fatalf("unexpected parse: %q %d %v", session, index, ok)
	}
	for _, bad := range []string{"", "page:abc:1", "page::1:x", "other:abc:1:x", "page:abc:one:x"} {
		if _, _, ok := parseCustomID(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestNavComponentsDisableEnds(t *testing.T) {
	row := navComponents("s", 0, 3)[0].(discordgo.ActionsRow)
	prev := row.Components[0].(discordgo.Button)
	at := row.Components[1].(discordgo.Button)
	next := row.Components[2].(discordgo.Button)
	if !prev.Disabled || next.Disabled {
		t.Fatalf("first page: prev disabled=%v next disabled=%v", prev.Disabled, next.Disabled)
	}
	if at.Label != "1/3" {
		t.Fatalf("unexpected position label %q", at.Label)
	}
	if _, idx, _ := parseCustomID(next.CustomID); idx != 1 {
		t.Fatalf("next should target page 1, got %d", idx)
	}

	row = navComponents("s", 2, 3)[0].(discordgo.ActionsRow)
	if !row.Components[2].(discordgo.Button).Disabled {
		t.Fatal("last page should disable next")
	}
}

func TestHandleMessageSinglePage(t *testing.T) {
	var got commands.Request
	bot := newTestBot(t, config.Default(), handlerFunc(func(_ context.Context, req commands.Request) (paging.Result, error) {
		got = req
		p := testPages(1)[0]
		p.Fields = []paging.Field{{Name: "John 3:16", Value: "For God so loved"}}
		return paging.Result{Level: paging.LevelInfo, Page: &p}, nil
	}))
	m := &fakeMessenger{}

	bot.handleMessage(m, message("u1", "+search loved"))

	if got.Text != "search loved" || got.UserID != "u1" || got.GuildID != "g1" {
		t.Fatalf("unexpected request: %+v", got)
	}
	if len(m.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(m.sent))
	}
	embed := m.sent[0].Embeds[0]
	if embed.Title != "page A" || len(embed.Fields) != 1 || embed.Fields[0].Name != "John 3:16" {
		t.Fatalf("unexpected embed: %+v", embed)
	}
	if embed.Footer == nil || embed.Footer.Text != "BibleBot v9" {
		t.Fatalf("unexpected footer: %+v", embed.Footer)
	}
	if len(m.sent[0].Components) != 0 {
		t.Fatal("single page should not carry navigation")
	}
	if m.sent[0].Reference == nil || m.sent[0].Reference.MessageID != "m1" {
		t.Fatal("expected reply reference to the command message")
	}
}

func TestHandleMessagePagedAndNavigate(t *testing.T) {
	bot := newTestBot(t, config.Default(), handlerFunc(func(context.Context, commands.Request) (paging.Result, error) {
		return paging.Result{Level: paging.LevelInfo, Paged: true, Pages: testPages(3)}, nil
	}))
	m := &fakeMessenger{}
	bot.handleMessage(m, message("u1", "+versions"))

	if len(m.sent) != 1 || len(m.sent[0].Components) != 1 {
		t.Fatalf("expected paged message with navigation, got %+v", m.sent)
	}
	row := m.sent[0].Components[0].(discordgo.ActionsRow)
	nextID := row.Components[2].(discordgo.Button).CustomID

	press := func(user, id string) *discordgo.InteractionResponse {
		bot.handleInteraction(m, &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			Type:   discordgo.InteractionMessageComponent,
			Data:   discordgo.MessageComponentInteractionData{CustomID: id},
			Member: &discordgo.Member{User: &discordgo.User{ID: user}},
		}})
		return m.responses[len(m.responses)-1]
	}

	resp := press("u1", nextID)
	if resp.Type != discordgo.InteractionResponseUpdateMessage {
		t.Fatalf("expected update, got %v", resp.Type)
	}
	if resp.Data.Embeds[0].Title != "page B" {
		t.Fatalf("expected second page, got %q", resp.Data.Embeds[0].Title)
	}

	resp = press("u2", nextID)
	if resp.Type != discordgo.InteractionResponseDeferredMessageUpdate {
		t.Fatalf("other users should not page someone else's results, got %v", resp.Type)
	}

	resp = press("u1", "page:expired:1:next")
	if resp.Type != discordgo.InteractionResponseUpdateMessage || len(resp.Data.Components) != 0 {
		t.Fatalf("expired session should clear navigation, got %+v", resp)
	}
}

func TestHandleMessageFiltering(t *testing.T) {
	calls := 0
	h := handlerFunc(func(context.Context, commands.Request) (paging.Result, error) {
		calls++
		return paging.Result{}, commands.ErrUnknownCommand
	})
	cfg := config.Default()
	cfg.Discord.AllowChannels = []string{"c1"}
	bot := newTestBot(t, cfg, h)
	m := &fakeMessenger{}

	bot.handleMessage(m, message("u1", "no prefix"))
	botMsg := message("u1", "+search x")
	botMsg.Author.Bot = true
	bot.handleMessage(m, botMsg)
	other := message("u1", "+search x")
	other.ChannelID = "c2"
	bot.handleMessage(m, other)
	if calls != 0 {
		t.Fatalf("filtered messages reached the handler %d times", calls)
	}

	bot.handleMessage(m, message("u1", "+pray"))
	if calls != 0 || len(m.sent) != 0 {
		t.Fatalf("unknown command should be silent, calls=%d sent=%d", calls, len(m.sent))
	}

	bot.handleMessage(m, message("u1", "+search x"))
	if calls != 1 || len(m.sent) != 0 {
		t.Fatalf("ErrUnknownCommand from the handler should be silent, calls=%d sent=%d", calls, len(m.sent))
	}
}

func TestHandleMessageRateLimited(t *testing.T) {
	cfg := config.Default()
	cfg.Discord.RateLimitPerMin = 1
	bot := newTestBot(t, cfg, handlerFunc(func(context.Context, commands.Request) (paging.Result, error) {
		return paging.Result{Level: paging.LevelInfo, Message: "ok"}, nil
	}))
	m := &fakeMessenger{}

	bot.handleMessage(m, message("u1", "+version"))
	bot.handleMessage(m, message("u1", "+version"))
	if len(m.sent) != 2 {
		t.Fatalf("expected two replies, got %d", len(m.sent))
	}
	limited := m.sent[1].Embeds[0]
	if !strings.HasPrefix(limited.Description, "Slow down a little") || limited.Color != errorColor {
		t.Fatalf("unexpected rate limit reply: %+v", limited)
	}
}

func TestUnknownCommandsDoNotSpendRateLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Discord.RateLimitPerMin = 1
	bot := newTestBot(t, cfg, handlerFunc(func(context.Context, commands.Request) (paging.Result, error) {
		return paging.Result{Level: paging.LevelInfo, Message: "ok"}, nil
	}))
	m := &fakeMessenger{}

	bot.handleMessage(m, message("u1", "+hello"))
	bot.handleMessage(m, message("u1", "+hello there"))
	bot.handleMessage(m, message("u1", "+version"))
	if len(m.sent) != 1 {
		t.Fatalf("expected one reply, got %d", len(m.sent))
	}
	if got := m.sent[0].Embeds[0].Description; got != "ok" {
		t.Fatalf("known command was limited by chatter: %q", got)
	}
}

func TestPageEmbedTitleLimit(t *testing.T) {
	long := strings.Repeat("ä", 300)
	e := pageEmbed(paging.Page{Title: long})
	if n := utf8.RuneCountInString(e.Title); n != maxEmbedTitle {
		t.Fatalf("expected %d characters, got %d", maxEmbedTitle, n)
	}
	if !strings.HasSuffix(e.Title, "…") || !strings.HasPrefix(e.Title, "ää") {
		t.Fatalf("unexpected truncated title %q", e.Title)
	}

	short := `Search results for "light"`
	if got := pageEmbed(paging.Page{Title: short}).Title; got != short {
		t.Fatalf("short titles must pass through, got %q", got)
	}
	exact := strings.Repeat("a", maxEmbedTitle)
	if got := pageEmbed(paging.Page{Title: exact}).Title; got != exact {
		t.Fatal("a title at the limit must not be truncated")
	}
}

func TestHandleMessageErrors(t *testing.T) {
	bot := newTestBot(t, config.Default(), handlerFunc(func(_ context.Context, req commands.Request) (paging.Result, error) {
		if req.Text == "broken" {
			return paging.Result{}, errors.New("database is locked")
		}
		return paging.Result{Level: paging.LevelError, Message: "not supported"}, nil
	}))
	m := &fakeMessenger{}

	bot.handleMessage(m, message("u1", "+search grace"))
	bot.handleMessage(m, message("u1", "+broken"))
	if len(m.sent) != 2 {
		t.Fatalf("expected two replies, got %d", len(m.sent))
	}
	if e := m.sent[0].Embeds[0]; e.Description != "not supported" || e.Color != errorColor {
		t.Fatalf("unexpected error reply: %+v", e)
	}
	if e := m.sent[1].Embeds[0]; e.Description != "Search is unavailable right now." {
		t.Fatalf("unexpected failure reply: %+v", e)
	}
}
