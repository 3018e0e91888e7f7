package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/Dmetrikx/neesa/internal/ai"
	"github.com/Dmetrikx/neesa/internal/config"
	"github.com/Dmetrikx/neesa/internal/discord"
	"github.com/Dmetrikx/neesa/internal/logging"
	"github.com/Dmetrikx/neesa/internal/persona"
)

// Bot represents the Discord bot
type Bot struct {
	session    discord.Session
	dispatcher *Dispatcher
	voice      *VoiceFollower
	config     *config.Config
	logger     *slog.Logger

	// ctx is the parent of every handler context; Close cancels it
	ctx    context.Context
	cancel context.CancelFunc
}

// NewBot creates a new bot instance
func NewBot(cfg *config.Config, logger *slog.Logger) (*Bot, error) {
	session, err := discord.NewDiscordSession(cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	p := persona.Default()
	if cfg.PersonaFile != "" {
		p, err = persona.Load(cfg.PersonaFile)
		if err != nil {
			return nil, fmt.Errorf("error loading persona: %w", err)
		}
	}

	apiKey, model := cfg.BackendCredentials()
	backend, err := ai.NewBackend(context.Background(), ai.Options{
		Provider:  cfg.Backend,
		APIKey:    apiKey,
		Model:     model,
		Timeout:   cfg.AITimeout,
		MaxTokens: cfg.AIMaxTokens,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating AI backend: %w", err)
	}

	bot := newBot(session, backend, p, cfg, logger)

	session.AddHandler(bot.readyHandler)
	session.AddHandler(bot.messageHandler)
	session.AddHandler(bot.voiceStateHandler)
	session.AddHandler(bot.guildCreateHandler)

	return bot, nil
}

func newBot(session discord.Session, backend ai.Backend, p *persona.Template, cfg *config.Config, logger *slog.Logger) *Bot {
	trigger := NewTriggerConfig(cfg.TriggerPrefix, cfg.TriggerKeywords, cfg.AllowedAuthorIDs)
	dispatcher := NewDispatcher(session, backend, p, trigger, DispatchOptions{
		ReplyMode:      cfg.ReplyMode,
		MinReplyLength: cfg.MinReplyLength,
		Humanizer:      Humanizer{Min: cfg.HumanizeDelayMin, Max: cfg.HumanizeDelayMax},
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	return &Bot{
		session:    session,
		dispatcher: dispatcher,
		voice:      NewVoiceFollower(session, cfg.TargetUserID, logger),
		config:     cfg,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	err := b.session.Open()
	if err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	user, err := b.session.User("@me")
	if err != nil {
		return fmt.Errorf("error obtaining account details: %w", err)
	}

	b.logger.InfoContext(ctx, "bot started",
		"username", user.Username,
		"user_id", user.ID,
		"trigger_prefix", b.config.TriggerPrefix,
		"reply_mode", b.config.ReplyMode)

	if b.voice.Enabled() {
		b.logger.InfoContext(ctx, "following user", "target_id", b.voice.TargetID())
	} else {
		b.logger.InfoContext(ctx, "voice follow disabled, TARGET_ID not set")
	}

	return nil
}

// Close stops event handling, leaves every voice channel and closes the session
func (b *Bot) Close(ctx context.Context) error {
	b.logger.InfoContext(ctx, "closing bot session")
	b.cancel()

	ctx, cancel := context.WithTimeout(ctx, VoiceCloseTimeout)
	defer cancel()
	if err := b.voice.Close(ctx); err != nil {
		b.logger.WarnContext(ctx, "voice shutdown incomplete", "error", err)
	}

	return b.session.Close()
}

// eventContext returns the context and logger for one event. The returned
// done func recovers panics and must be deferred by the handler.
func (b *Bot) eventContext(event string) (context.Context, *slog.Logger, func()) {
	logger := b.logger.With("event", event, "event_id", uuid.NewString())
	ctx := logging.WithLogger(b.ctx, logger)

	return ctx, logger, func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "recovered from panic in event handler", "panic", r)
		}
	}
}

// readyHandler logs the identity the gateway session is running as
func (b *Bot) readyHandler(_ *discordgo.Session, r *discordgo.Ready) {
	ctx, logger, done := b.eventContext("ready")
	defer done()

	if r.User == nil {
		return
	}
	logger.InfoContext(ctx, "logged in",
		"username", r.User.Username,
		"user_id", r.User.ID,
		"guilds", len(r.Guilds))
}

// messageHandler hands each new message to the dispatcher
func (b *Bot) messageHandler(_ *discordgo.Session, m *discordgo.MessageCreate) {
	ctx, _, done := b.eventContext("message_create")
	defer done()

	if m.Message == nil {
		return
	}
	b.dispatcher.Dispatch(ctx, m.Message)
}

// voiceStateHandler feeds voice presence changes to the follower
func (b *Bot) voiceStateHandler(_ *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.VoiceState == nil || !b.voice.Enabled() || v.UserID != b.voice.TargetID() {
		return
	}

	ctx, logger, done := b.eventContext("voice_state_update")
	defer done()

	ev := VoiceEvent{
		UserID:    v.UserID,
		GuildID:   v.GuildID,
		ChannelID: v.ChannelID,
	}
	if v.BeforeUpdate != nil {
		ev.BeforeChannelID = v.BeforeUpdate.ChannelID
	}

	logger.DebugContext(ctx, "target voice state changed",
		"guild_id", ev.GuildID,
		"before_channel_id", ev.BeforeChannelID,
		"channel_id", ev.ChannelID)
	b.voice.HandleVoiceState(ctx, ev)
}

// guildCreateHandler joins the target's channel if they were already in voice
// when the guild became available
func (b *Bot) guildCreateHandler(_ *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Guild == nil || !b.voice.Enabled() {
		return
	}

	ctx, _, done := b.eventContext("guild_create")
	defer done()

	for _, vs := range g.VoiceStates {
		if vs == nil || vs.UserID != b.voice.TargetID() || vs.ChannelID == "" {
			continue
		}
		if b.voice.Connection(g.ID) != nil {
			return
		}
		b.voice.HandleVoiceState(ctx, VoiceEvent{
			UserID:    vs.UserID,
			GuildID:   g.ID,
			ChannelID: vs.ChannelID,
		})
		return
	}
}
