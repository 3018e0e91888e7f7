package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Dmetrikx/neesa/internal/ai"
	"github.com/Dmetrikx/neesa/internal/config"
	"github.com/Dmetrikx/neesa/internal/discord"
	"github.com/Dmetrikx/neesa/internal/logging"
	"github.com/Dmetrikx/neesa/internal/persona"
)

// DispatchOptions tune how replies are produced and delivered
type DispatchOptions struct {
	ReplyMode      string
	MinReplyLength int
	Humanizer      Humanizer
}

// Dispatcher answers qualifying chat messages with backend-generated text
type Dispatcher struct {
	session discord.Session
	backend ai.Backend
	persona *persona.Template
	trigger TriggerConfig
	opts    DispatchOptions
	logger  *slog.Logger
}

// NewDispatcher creates a Dispatcher
func NewDispatcher(session discord.Session, backend ai.Backend, p *persona.Template, trigger TriggerConfig, opts DispatchOptions, logger *slog.Logger) *Dispatcher {
	if opts.ReplyMode == "" {
		opts.ReplyMode = config.ReplyModeReply
	}
	if opts.MinReplyLength <= 0 {
		opts.MinReplyLength = DefaultMinReplyLength
	}
	return &Dispatcher{
		session: session,
		backend: backend,
		persona: p,
		trigger: trigger,
		opts:    opts,
		logger:  logger,
	}
}

// Dispatch handles one inbound message. It never returns an error: backend
// failures become persona fallback lines and send failures are logged.
func (d *Dispatcher) Dispatch(ctx context.Context, m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot || m.Author.ID == d.selfID() {
		return
	}

	prompt, ok := d.trigger.Match(m.Author.ID, m.Content)
	if !ok {
		return
	}

	logger := logging.FromContext(ctx, d.logger).With(
		"guild_id", m.GuildID,
		"channel_id", m.ChannelID,
		"user_id", m.Author.ID)

	logger.InfoContext(ctx, "dispatching prompt",
		"username", m.Author.Username,
		"prompt_length", len(prompt))

	if err := d.opts.Humanizer.Wait(ctx); err != nil {
		return
	}

	// Typing is cosmetic
	if err := d.session.ChannelTyping(m.ChannelID); err != nil {
		logger.DebugContext(ctx, "failed to send typing indicator", "error", err)
	}

	reply := d.respond(ctx, logger, m, prompt)

	if err := d.opts.Humanizer.Wait(ctx); err != nil {
		return
	}
	d.deliver(ctx, logger, m, reply)
}

// respond returns the text to post: backend output, or a fallback line
func (d *Dispatcher) respond(ctx context.Context, logger *slog.Logger, m *discordgo.Message, prompt string) string {
	req, err := d.persona.Request(prompt, displayName(m))
	if err != nil {
		logger.ErrorContext(ctx, "failed to build prompt", "error", err)
		return d.persona.Fallback(ai.KindUnknown)
	}

	start := time.Now()
	text, err := d.backend.Generate(ctx, req)
	if err != nil {
		kind := ai.Classify(err)
		logger.ErrorContext(ctx, "AI request failed",
			"backend", d.backend.Name(),
			"model", d.backend.Model(),
			"error_kind", kind.String(),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return d.persona.Fallback(kind)
	}

	clean, ok := Sanitize(text, d.opts.MinReplyLength)
	if !ok {
		logger.WarnContext(ctx, "backend output rejected",
			"backend", d.backend.Name(),
			"output_length", len(text))
		return d.persona.Filler()
	}

	logger.InfoContext(ctx, "AI request completed",
		"backend", d.backend.Name(),
		"model", d.backend.Model(),
		"duration_ms", time.Since(start).Milliseconds(),
		"reply_length", len(clean))
	return clean
}

// deliver posts text in Discord-sized chunks. The first chunk quotes the
// original message in reply mode; the rest are plain posts.
func (d *Dispatcher) deliver(ctx context.Context, logger *slog.Logger, m *discordgo.Message, text string) {
	for i, chunk := range splitMessage(text, MaxDiscordMessageLength) {
		var err error
		if i == 0 && d.opts.ReplyMode == config.ReplyModeReply {
			_, err = d.session.ChannelMessageSendReply(m.ChannelID, chunk, m.Reference())
		} else {
			_, err = d.session.ChannelMessageSend(m.ChannelID, chunk)
		}
		if err != nil {
			logger.ErrorContext(ctx, "failed to send message chunk",
				"chunk_index", i,
				"error", err)
			return
		}
	}
}

func (d *Dispatcher) selfID() string {
	state := d.session.GetState()
	if state == nil || state.User == nil {
		return ""
	}
	return state.User.ID
}
