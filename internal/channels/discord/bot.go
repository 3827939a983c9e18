package discord

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"biblebot/internal/channels/chat"
	"biblebot/internal/commands"
	"biblebot/internal/config"
	"biblebot/internal/lang"
	"biblebot/internal/paging"
)

const (
	defaultCommandTimeout = 30 * time.Second
	errorColor            = 0xD7263D
	// maxEmbedTitle is Discord's limit on embed titles, in characters.
	maxEmbedTitle = 256
)

// Handler runs one prefixed command. Accepts must be cheap; it gates rate
// limiting.
type Handler interface {
	Accepts(ctx context.Context, req commands.Request) bool
	Handle(ctx context.Context, req commands.Request) (paging.Result, error)
}

// messenger is the slice of *discordgo.Session the bot talks through.
type messenger interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

type Bot struct {
	cfg      config.DiscordConfig
	display  paging.Display
	table    *lang.Table
	allow    *chat.Allowlist
	limiter  *chat.RateLimiter
	handler  Handler
	sessions *sessionStore
	session  *discordgo.Session
	log      zerolog.Logger

	closeOnce sync.Once
}

func New(cfg config.Config, handler Handler, catalog *lang.Catalog, log zerolog.Logger) (*Bot, error) {
	token := cfg.DiscordToken()
	if token == "" {
		return nil, errors.New("discord token is required")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	b := newBot(cfg, handler, catalog, log)
	b.session = s
	s.AddHandler(b.onReady)
	s.AddHandler(b.onMessage)
	s.AddHandler(b.onInteraction)
	s.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent
	return b, nil
}

func newBot(cfg config.Config, handler Handler, catalog *lang.Catalog, log zerolog.Logger) *Bot {
	return &Bot{
		cfg:      cfg.Discord,
		display:  cfg.PagingDisplay(),
		table:    catalog.Get(cfg.Language.Default),
		allow:    chat.NewAllowlist(cfg.Discord.AllowGuilds, cfg.Discord.AllowChannels, cfg.Discord.AllowUsers),
		limiter:  chat.NewRateLimiter(cfg.Discord.RateLimitPerMin, time.Minute),
		handler:  handler,
		sessions: newSessionStore(cfg.PageTimeout()),
		log:      log.With().Str("component", "discord").Logger(),
	}
}

func (b *Bot) Start() error {
	return b.session.Open()
}

func (b *Bot) Stop() error {
	var err error
	b.closeOnce.Do(func() { err = b.session.Close() })
	return err
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	shard := 0
	if r.Shard != nil {
		shard = r.Shard[0]
	}
	b.log.Info().Int("shard", shard+1).Int("guilds", len(r.Guilds)).Msg("initialization complete")
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.handleMessage(s, m)
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.handleInteraction(s, i)
}

func (b *Bot) handleMessage(s messenger, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	content := normalizeInboundMessage(strings.TrimSpace(m.Content), b.display.CommandPrefix)
	if content == "" {
		return
	}
	if !b.allow.MessageAllowed(m.GuildID, m.ChannelID, m.Author.ID) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultCommandTimeout)
	defer cancel()
	req := commands.Request{
		UserID:    m.Author.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Text:      content,
	}
	if !b.handler.Accepts(ctx, req) {
		return
	}
	if err := b.limiter.Reserve(m.Author.ID+":"+m.ChannelID, "user"); err != nil {
		var rle *chat.RateLimitError
		seconds := 1
		if errors.As(err, &rle) {
			seconds = rle.RetryAfterSeconds
		}
		b.reply(s, m, b.messageEmbed(paging.LevelError, b.table.RateLimited(seconds)), nil)
		return
	}

	res, err := b.handler.Handle(ctx, req)
	if errors.Is(err, commands.ErrUnknownCommand) {
		return
	}
	log := b.log.With().Str("user", m.Author.ID).Str("channel", m.ChannelID).Str("command", content).Logger()
	if err != nil {
		log.Error().Err(err).Msg("command failed")
		b.reply(s, m, b.messageEmbed(paging.LevelError, b.table.SearchFailed()), nil)
		return
	}
	log.Debug().Str("level", string(res.Level)).Bool("paged", res.Paged).Msg("command handled")
	b.sendResult(s, m, res)
}

func (b *Bot) sendResult(s messenger, m *discordgo.MessageCreate, res paging.Result) {
	pages := res.All()
	switch {
	case len(pages) == 0:
		b.reply(s, m, b.messageEmbed(res.Level, res.Message), nil)
	case len(pages) == 1:
		b.reply(s, m, pageEmbed(pages[0]), nil)
	default:
		id := b.sessions.put(m.Author.ID, pages)
		b.reply(s, m, pageEmbed(pages[0]), navComponents(id, 0, len(pages)))
	}
}

func (b *Bot) reply(s messenger, m *discordgo.MessageCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	_, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
		Reference:  m.Reference(),
	})
	if err != nil {
		b.log.Warn().Err(err).Str("channel", m.ChannelID).Msg("send failed")
	}
}

func (b *Bot) handleInteraction(s messenger, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	id, index, ok := parseCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}

	resp := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredMessageUpdate}
	sess, found := b.sessions.get(id)
	switch {
	case !found:
		resp = &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{Components: []discordgo.MessageComponent{}},
		}
	case sess.owner == interactionUserID(i) && index >= 0 && index < len(sess.pages):
		resp = &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Embeds:     []*discordgo.MessageEmbed{pageEmbed(sess.pages[index])},
				Components: navComponents(id, index, len(sess.pages)),
			},
		}
	}
	if err := s.InteractionRespond(i.Interaction, resp); err != nil {
		b.log.Warn().Err(err).Str("session", id).Msg("page update failed")
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func (b *Bot) messageEmbed(level paging.Level, msg string) *discordgo.MessageEmbed {
	color := b.display.Color
	if level == paging.LevelError {
		color = errorColor
	}
	return &discordgo.MessageEmbed{
		Description: msg,
		Color:       color,
		Footer:      footerEmbed(b.display.BotName+" "+b.display.Version, b.display.IconURL),
	}
}

func pageEmbed(p paging.Page) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       truncateRunes(p.Title, maxEmbedTitle),
		Description: p.Description,
		Color:       p.Color,
		Footer:      footerEmbed(p.Footer.Text, p.Footer.IconURL),
	}
	for _, f := range p.Fields {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return e
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-1]) + "…"
}

func footerEmbed(text, icon string) *discordgo.MessageEmbedFooter {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return &discordgo.MessageEmbedFooter{Text: text, IconURL: icon}
}

func normalizeInboundMessage(content, commandPrefix string) string {
	if content == "" {
		return ""
	}
	if commandPrefix == "" {
		return strings.TrimSpace(content)
	}
	if !strings.HasPrefix(content, commandPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(content, commandPrefix))
}
