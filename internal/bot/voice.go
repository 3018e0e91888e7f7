package bot

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Dmetrikx/neesa/internal/discord"
)

// VoiceTransport opens voice connections
type VoiceTransport interface {
	JoinVoice(guildID, channelID string) (discord.VoiceLink, error)
}

// VoiceEvent is a voice presence change for one user in one guild.
// An empty channel ID means "not in voice".
type VoiceEvent struct {
	UserID          string
	GuildID         string
	BeforeChannelID string
	ChannelID       string
}

// guildVoice holds the single connection record for a guild. mu serializes
// every teardown/establish sequence for that guild.
type guildVoice struct {
	mu   sync.Mutex
	link discord.VoiceLink
}

// VoiceFollower keeps the bot in the same voice channel as the target user,
// holding at most one connection per guild
type VoiceFollower struct {
	transport VoiceTransport
	targetID  string
	logger    *slog.Logger

	mu     sync.Mutex
	guilds map[string]*guildVoice
	closed bool
}

// NewVoiceFollower creates a follower for targetID. An empty targetID disables it.
func NewVoiceFollower(transport VoiceTransport, targetID string, logger *slog.Logger) *VoiceFollower {
	return &VoiceFollower{
		transport: transport,
		targetID:  targetID,
		logger:    logger,
		guilds:    make(map[string]*guildVoice),
	}
}

// Enabled reports whether a target is configured
func (f *VoiceFollower) Enabled() bool {
	return f.targetID != ""
}

// TargetID returns the followed user
func (f *VoiceFollower) TargetID() string {
	return f.targetID
}

// guild returns the record for guildID, creating it on first use.
// Records are never removed from the map so that a goroutine holding one
// always sees the same mutex as later events for the guild.
func (f *VoiceFollower) guild(guildID string) *guildVoice {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	g, ok := f.guilds[guildID]
	if !ok {
		g = &guildVoice{}
		f.guilds[guildID] = g
	}
	return g
}

func (f *VoiceFollower) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// HandleVoiceState applies one voice presence change. Events for anyone other
// than the target are ignored. Transport failures are logged and leave the guild
// without a connection until the next event.
func (f *VoiceFollower) HandleVoiceState(ctx context.Context, ev VoiceEvent) {
	if !f.Enabled() || ev.UserID != f.targetID || ev.GuildID == "" {
		return
	}
	// A leave with no cached previous state arrives with both channels empty
	// and still has to reach the teardown below.
	if ev.ChannelID != "" && ev.BeforeChannelID == ev.ChannelID {
		return
	}

	g := f.guild(ev.GuildID)
	if g == nil {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	// Close may have drained this guild while we waited for the lock
	if f.isClosed() {
		return
	}

	logger := f.logger.With("guild_id", ev.GuildID, "user_id", ev.UserID)

	// Already where the target is; happens when the previous state was not cached
	if g.link != nil && ev.ChannelID != "" && g.link.ChannelID() == ev.ChannelID {
		return
	}

	if g.link != nil {
		old := g.link.ChannelID()
		if err := g.link.Disconnect(); err != nil {
			logger.ErrorContext(ctx, "failed to leave voice channel",
				"channel_id", old,
				"error", err)
		} else {
			logger.InfoContext(ctx, "left voice channel", "channel_id", old)
		}
		g.link = nil
	}

	if ev.ChannelID == "" {
		return
	}

	link, err := f.transport.JoinVoice(ev.GuildID, ev.ChannelID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to join voice channel",
			"channel_id", ev.ChannelID,
			"error", err)
		return
	}
	g.link = link
	logger.InfoContext(ctx, "joined voice channel", "channel_id", ev.ChannelID)
}

// Connection returns the active link in guildID, or nil
func (f *VoiceFollower) Connection(guildID string) discord.VoiceLink {
	f.mu.Lock()
	g, ok := f.guilds[guildID]
	f.mu.Unlock()
	if !ok {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.link
}

// Close disconnects every active link concurrently. Events arriving afterwards are ignored.
func (f *VoiceFollower) Close(ctx context.Context) error {
	f.mu.Lock()
	f.closed = true
	guilds := make(map[string]*guildVoice, len(f.guilds))
	for id, g := range f.guilds {
		guilds[id] = g
	}
	f.mu.Unlock()

	eg, ctx := errgroup.WithContext(ctx)
	for guildID, g := range guilds {
		eg.Go(func() error {
			g.mu.Lock()
			defer g.mu.Unlock()

			if g.link == nil {
				return nil
			}
			link := g.link
			g.link = nil
			if err := link.Disconnect(); err != nil {
				f.logger.ErrorContext(ctx, "failed to leave voice channel on shutdown",
					"guild_id", guildID,
					"channel_id", link.ChannelID(),
					"error", err)
				return err
			}
			return nil
		})
	}
	return eg.Wait()
}
