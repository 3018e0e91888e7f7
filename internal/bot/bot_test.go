package bot

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/Dmetrikx/neesa/internal/config"
	"github.com/Dmetrikx/neesa/internal/persona"
)

func testConfig() *config.Config {
	return &config.Config{
		DiscordToken:   "token",
		TargetUserID:   "T",
		Backend:        config.BackendPuter,
		TriggerPrefix:  "?!",
		ReplyMode:      config.ReplyModeReply,
		MinReplyLength: 2,
	}
}

func TestMessageHandler(t *testing.T) {
	session := newMockSession()
	backend := &mockBackend{text: "hiii"}
	b := newBot(session, backend, persona.Default(), testConfig(), testLogger())

	b.messageHandler(nil, &discordgo.MessageCreate{Message: testMessage("u1", "?!hello")})
	b.messageHandler(nil, &discordgo.MessageCreate{Message: testMessage("u1", "hello")})
	b.messageHandler(nil, &discordgo.MessageCreate{})

	if backend.calls() != 1 {
		t.Errorf("backend calls = %d, want 1", backend.calls())
	}
	if sent := session.sent(); len(sent) != 1 || sent[0].content != "hiii" {
		t.Errorf("sent = %+v", sent)
	}
}

func TestMessageHandlerRecoversPanic(t *testing.T) {
	session := newMockSession()
	b := newBot(session, &mockBackend{text: "hiii"}, persona.Default(), testConfig(), testLogger())
	b.dispatcher = nil

	// A nil dispatcher panics inside the handler; the handler must swallow it
	b.messageHandler(nil, &discordgo.MessageCreate{Message: testMessage("u1", "?!hello")})
}

func TestVoiceStateHandler(t *testing.T) {
	session := newMockSession()
	b := newBot(session, &mockBackend{}, persona.Default(), testConfig(), testLogger())

	join := &discordgo.VoiceStateUpdate{VoiceState: &discordgo.VoiceState{UserID: "T", GuildID: "G", ChannelID: "C1"}}
	b.voiceStateHandler(nil, join)

	other := &discordgo.VoiceStateUpdate{VoiceState: &discordgo.VoiceState{UserID: "U", GuildID: "G", ChannelID: "C9"}}
	b.voiceStateHandler(nil, other)

	move := &discordgo.VoiceStateUpdate{
		VoiceState:   &discordgo.VoiceState{UserID: "T", GuildID: "G", ChannelID: "C2"},
		BeforeUpdate: &discordgo.VoiceState{UserID: "T", GuildID: "G", ChannelID: "C1"},
	}
	b.voiceStateHandler(nil, move)

	if link := b.voice.Connection("G"); link == nil || link.ChannelID() != "C2" {
		t.Fatalf("Connection(G) = %v, want C2", link)
	}
	if len(session.joins) != 2 {
		t.Errorf("joins = %v, want 2", session.joins)
	}

	leave := &discordgo.VoiceStateUpdate{
		VoiceState:   &discordgo.VoiceState{UserID: "T", GuildID: "G"},
		BeforeUpdate: &discordgo.VoiceState{UserID: "T", GuildID: "G", ChannelID: "C2"},
	}
	b.voiceStateHandler(nil, leave)
	if b.voice.Connection("G") != nil {
		t.Error("Connection(G) after leave != nil")
	}
}

func TestGuildCreateHandlerCatchUp(t *testing.T) {
	session := newMockSession()
	b := newBot(session, &mockBackend{}, persona.Default(), testConfig(), testLogger())

	gc := &discordgo.GuildCreate{Guild: &discordgo.Guild{
		ID: "G",
		VoiceStates: []*discordgo.VoiceState{
			{UserID: "U", ChannelID: "C9"},
			{UserID: "T", ChannelID: "C1"},
		},
	}}
	b.guildCreateHandler(nil, gc)
	b.guildCreateHandler(nil, gc)

	if len(session.joins) != 1 || session.joins[0] != "G/C1" {
		t.Errorf("joins = %v, want [G/C1]", session.joins)
	}
}

func TestBotStartClose(t *testing.T) {
	session := newMockSession()
	b := newBot(session, &mockBackend{}, persona.Default(), testConfig(), testLogger())
	ctx := context.Background()

	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	b.voice.HandleVoiceState(ctx, VoiceEvent{UserID: "T", GuildID: "G", ChannelID: "C1"})
	link := b.voice.Connection("G").(*mockVoiceLink)

	if err := b.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if link.disconnects != 1 {
		t.Errorf("disconnects = %d, want 1", link.disconnects)
	}
	if b.ctx.Err() == nil {
		t.Error("handler context not cancelled by Close()")
	}
}
