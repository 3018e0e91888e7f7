package discord

import (
	"github.com/bwmarrin/discordgo"
)

// Session defines the interface for Discord session operations
type Session interface {
	// Open opens a websocket connection to Discord
	Open() error

	// Close closes the websocket connection to Discord
	Close() error

	// User returns the current user
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)

	// ChannelMessageSend sends a message to a channel
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)

	// ChannelMessageSendReply sends a message quoting another message
	ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)

	// ChannelTyping shows the typing indicator in a channel
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error

	// AddHandler adds an event handler
	AddHandler(handler interface{}) func()

	// GetState returns the session state
	GetState() *discordgo.State

	// JoinVoice connects the bot to a voice channel
	JoinVoice(guildID, channelID string) (VoiceLink, error)
}

// DiscordSession wraps discordgo.Session to implement the Session interface
type DiscordSession struct {
	*discordgo.Session
}

// NewDiscordSession creates a new DiscordSession wrapper
func NewDiscordSession(token string) (*DiscordSession, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildVoiceStates

	return &DiscordSession{Session: session}, nil
}

// GetState returns the session state
func (d *DiscordSession) GetState() *discordgo.State {
	return d.State
}

// JoinVoice joins channelID in guildID, unmuted and undeafened
func (d *DiscordSession) JoinVoice(guildID, channelID string) (VoiceLink, error) {
	vc, err := d.ChannelVoiceJoin(guildID, channelID, false, false)

	// discordgo returns the registered connection even when the handshake times out
	var conn voiceConn
	if vc != nil {
		conn = vc
	}
	return newVoiceLink(conn, channelID, err)
}
