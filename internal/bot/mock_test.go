package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/Dmetrikx/neesa/internal/ai"
	"github.com/Dmetrikx/neesa/internal/discord"
)

const testBotID = "bot-id"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sentMessage struct {
	channelID string
	content   string
	reference *discordgo.MessageReference
}

// mockDiscordSession is a mock implementation for testing
type mockDiscordSession struct {
	mu           sync.Mutex
	sentMessages []sentMessage
	typing       int
	typingErr    error
	sendErr      error
	handlers     []interface{}

	// voice bookkeeping
	joinErr   error
	joins     []string
	active    map[string]int
	maxActive int
}

func newMockSession() *mockDiscordSession {
	return &mockDiscordSession{active: make(map[string]int)}
}

func (m *mockDiscordSession) Open() error {
	return nil
}

func (m *mockDiscordSession) Close() error {
	return nil
}

func (m *mockDiscordSession) User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error) {
	return &discordgo.User{ID: testBotID, Username: "neesa"}, nil
}

func (m *mockDiscordSession) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.sentMessages = append(m.sentMessages, sentMessage{channelID: channelID, content: content})
	return &discordgo.Message{ID: "msg-id", ChannelID: channelID, Content: content}, nil
}

func (m *mockDiscordSession) ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.sentMessages = append(m.sentMessages, sentMessage{channelID: channelID, content: content, reference: reference})
	return &discordgo.Message{ID: "msg-id", ChannelID: channelID, Content: content}, nil
}

func (m *mockDiscordSession) ChannelTyping(channelID string, options ...discordgo.RequestOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.typing++
	return m.typingErr
}

func (m *mockDiscordSession) AddHandler(handler interface{}) func() {
	m.handlers = append(m.handlers, handler)
	return func() {}
}

func (m *mockDiscordSession) GetState() *discordgo.State {
	state := discordgo.NewState()
	state.User = &discordgo.User{ID: testBotID}
	return state
}

func (m *mockDiscordSession) JoinVoice(guildID, channelID string) (discord.VoiceLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.joinErr != nil {
		return nil, m.joinErr
	}
	m.joins = append(m.joins, guildID+"/"+channelID)
	m.active[guildID]++
	if m.active[guildID] > m.maxActive {
		m.maxActive = m.active[guildID]
	}
	return &mockVoiceLink{session: m, guildID: guildID, channelID: channelID}, nil
}

func (m *mockDiscordSession) sent() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.sentMessages...)
}

type mockVoiceLink struct {
	session       *mockDiscordSession
	guildID       string
	channelID     string
	disconnectErr error
	disconnects   int
}

func (l *mockVoiceLink) ChannelID() string {
	return l.channelID
}

func (l *mockVoiceLink) Disconnect() error {
	l.session.mu.Lock()
	defer l.session.mu.Unlock()
	l.disconnects++
	l.session.active[l.guildID]--
	return l.disconnectErr
}

// mockBackend returns a fixed text or error and records requests
type mockBackend struct {
	mu       sync.Mutex
	text     string
	err      error
	requests []ai.Request
}

func (b *mockBackend) Name() string  { return "mock" }
func (b *mockBackend) Model() string { return "mock-1" }

func (b *mockBackend) Generate(ctx context.Context, req ai.Request) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, req)
	return b.text, b.err
}

func (b *mockBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

var errBoom = errors.New("boom")
