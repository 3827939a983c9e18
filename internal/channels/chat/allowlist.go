package chat

import "strings"

// Allowlist gates inbound messages by guild, channel and user. An empty set
// admits everyone at that level.
type Allowlist struct {
	guilds   map[string]struct{}
	channels map[string]struct{}
	users    map[string]struct{}
}

func NewAllowlist(guildIDs, channelIDs, userIDs []string) *Allowlist {
	return &Allowlist{
		guilds:   toSet(guildIDs),
		channels: toSet(channelIDs),
		users:    toSet(userIDs),
	}
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

func admits(set map[string]struct{}, id string) bool {
	if len(set) == 0 {
		return true
	}
	_, ok := set[id]
	return ok
}

// GuildAllowed treats direct messages (empty guild id) as allowed only when
// no guild restriction is configured.
func (a *Allowlist) GuildAllowed(guildID string) bool {
	return admits(a.guilds, guildID)
}

func (a *Allowlist) ChannelAllowed(channelID string) bool {
	return admits(a.channels, channelID)
}

func (a *Allowlist) UserAllowed(userID string) bool {
	return admits(a.users, userID)
}

func (a *Allowlist) MessageAllowed(guildID, channelID, userID string) bool {
	if a == nil {
		return true
	}
	return a.GuildAllowed(guildID) && a.ChannelAllowed(channelID) && a.UserAllowed(userID)
}
