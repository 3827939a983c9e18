package discord

import (
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"biblebot/internal/paging"
)

const customIDPrefix = "page"

type pageSession struct {
	owner string
	pages []paging.Page
}

// sessionStore keeps paged results alive for button navigation until they
// expire.
type sessionStore struct {
	c *cache.Cache
}

func newSessionStore(ttl time.Duration) *sessionStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &sessionStore{c: cache.New(ttl, ttl)}
}

func (s *sessionStore) put(owner string, pages []paging.Page) string {
	id := uuid.NewString()
	s.c.SetDefault(id, &pageSession{owner: owner, pages: pages})
	return id
}

func (s *sessionStore) get(id string) (*pageSession, bool) {
	v, ok := s.c.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*pageSession), true
}

// customID encodes the target page; role keeps ids unique within a row.
func customID(session string, index int, role string) string {
	return strings.Join([]string{customIDPrefix, session, strconv.Itoa(index), role}, ":")
}

func parseCustomID(id string) (session string, index int, ok bool) {
	parts := strings.Split(id, ":")
	if len(parts) != 4 || parts[0] != customIDPrefix || parts[1] == "" {
		return "", 0, false
	}
	index, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, false
	}
	return parts[1], index, true
}

// navComponents builds the previous/next row for page index of total.
// Buttons at either end are disabled.
func navComponents(session string, index, total int) []discordgo.MessageComponent {
	prev := max(index-1, 0)
	next := min(index+1, total-1)
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "◀",
				Style:    discordgo.SecondaryButton,
				CustomID: customID(session, prev, "prev"),
				Disabled: index == 0,
			},
			discordgo.Button{
				Label:    strconv.Itoa(index+1) + "/" + strconv.Itoa(total),
				Style:    discordgo.SecondaryButton,
				CustomID: customID(session, index, "at"),
				Disabled: true,
			},
			discordgo.Button{
				Label:    "▶",
				Style:    discordgo.SecondaryButton,
				CustomID: customID(session, next, "next"),
				Disabled: index >= total-1,
			},
		}},
	}
}
