package bot

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Dmetrikx/neesa/internal/ai"
	"github.com/Dmetrikx/neesa/internal/config"
	"github.com/Dmetrikx/neesa/internal/persona"
)

func newTestDispatcher(session *mockDiscordSession, backend *mockBackend, opts DispatchOptions) *Dispatcher {
	trigger := NewTriggerConfig("?!", nil, []string{"dorian"})
	return NewDispatcher(session, backend, persona.Default(), trigger, opts, testLogger())
}

func testMessage(authorID, content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   content,
		Author:    &discordgo.User{ID: authorID, Username: authorID},
	}
}

func TestDispatchTriggerScenario(t *testing.T) {
	tests := []struct {
		name       string
		msg        *discordgo.Message
		wantCalled bool
		wantPrompt string
	}{
		{"prefix with prompt", testMessage("u1", "?!hello"), true, "u1 says: hello"},
		{"prefix only", testMessage("u1", "?!"), false, ""},
		{"no trigger", testMessage("u1", "hello"), false, ""},
		{"allow-listed author", testMessage("dorian", "hello"), true, "dorian says: hello"},
		{"own message", testMessage(testBotID, "?!hello"), false, ""},
		{"automated account", func() *discordgo.Message {
			m := testMessage("other-bot", "?!hello")
			m.Author.Bot = true
			return m
		}(), false, ""},
		{"no author", &discordgo.Message{ChannelID: "c1", Content: "?!hello"}, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := newMockSession()
			backend := &mockBackend{text: "hiii babe"}
			d := newTestDispatcher(session, backend, DispatchOptions{})

			d.Dispatch(context.Background(), tt.msg)

			if got := backend.calls() > 0; got != tt.wantCalled {
				t.Fatalf("backend called = %v, want %v", got, tt.wantCalled)
			}
			sent := session.sent()
			if !tt.wantCalled {
				if len(sent) != 0 || session.typing != 0 {
					t.Errorf("non-qualifying message produced %d sends, %d typing", len(sent), session.typing)
				}
				return
			}
			if backend.requests[0].Prompt != tt.wantPrompt {
				t.Errorf("prompt = %q, want %q", backend.requests[0].Prompt, tt.wantPrompt)
			}
			if !strings.Contains(backend.requests[0].System, "Neesa") {
				t.Errorf("system prompt missing persona: %q", backend.requests[0].System)
			}
			if len(sent) != 1 || sent[0].content != "hiii babe" {
				t.Errorf("sent = %+v, want one reply %q", sent, "hiii babe")
			}
		})
	}
}

func TestDispatchReplyModes(t *testing.T) {
	t.Run("reply quotes the original", func(t *testing.T) {
		session := newMockSession()
		d := newTestDispatcher(session, &mockBackend{text: "hiii"}, DispatchOptions{ReplyMode: config.ReplyModeReply})
		d.Dispatch(context.Background(), testMessage("u1", "?!hey"))

		sent := session.sent()
		if len(sent) != 1 || sent[0].reference == nil || sent[0].reference.MessageID != "m1" {
			t.Fatalf("sent = %+v, want a reply to m1", sent)
		}
	})

	t.Run("send posts plainly", func(t *testing.T) {
		session := newMockSession()
		d := newTestDispatcher(session, &mockBackend{text: "hiii"}, DispatchOptions{ReplyMode: config.ReplyModeSend})
		d.Dispatch(context.Background(), testMessage("u1", "?!hey"))

		sent := session.sent()
		if len(sent) != 1 || sent[0].reference != nil {
			t.Fatalf("sent = %+v, want a plain post", sent)
		}
	})

	t.Run("long reply only quotes first chunk", func(t *testing.T) {
		session := newMockSession()
		long := strings.Repeat("omg ", MaxDiscordMessageLength)
		d := newTestDispatcher(session, &mockBackend{text: long}, DispatchOptions{})
		d.Dispatch(context.Background(), testMessage("u1", "?!talk a lot"))

		sent := session.sent()
		if len(sent) < 2 {
			t.Fatalf("sent %d messages, want several chunks", len(sent))
		}
		if sent[0].reference == nil {
			t.Error("first chunk is not a reply")
		}
		for i, m := range sent[1:] {
			if m.reference != nil {
				t.Errorf("chunk %d is a reply, want plain post", i+1)
			}
		}
	})
}

func TestDispatchBackendErrors(t *testing.T) {
	p := persona.Default()

	tests := []struct {
		name string
		err  error
		want []string
	}{
		{"rate limit", errors.New("Groq: rate limit reached for model"), p.Fallbacks.RateLimited},
		{"quota", errors.New("You exceeded your current quota"), p.Fallbacks.RateLimited},
		{"api key", errors.New("Incorrect API key provided: sk-xxx"), p.Fallbacks.Unauthorized},
		{"unauthorized", errors.New("401 Unauthorized"), p.Fallbacks.Unauthorized},
		{"status carried", ai.NewAPIError("Puter", 429, "call failed", errBoom), p.Fallbacks.RateLimited},
		{"unknown", errors.New("connection reset by peer"), p.Fallbacks.Unknown},
		{"timeout", context.DeadlineExceeded, p.Fallbacks.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := newMockSession()
			d := newTestDispatcher(session, &mockBackend{err: tt.err}, DispatchOptions{})
			d.Dispatch(context.Background(), testMessage("u1", "?!hello"))

			sent := session.sent()
			if len(sent) != 1 {
				t.Fatalf("sent %d messages, want 1", len(sent))
			}
			if !slices.Contains(tt.want, sent[0].content) {
				t.Errorf("sent %q, want one of %v", sent[0].content, tt.want)
			}
			if strings.Contains(sent[0].content, tt.err.Error()) {
				t.Errorf("raw error leaked to channel: %q", sent[0].content)
			}
		})
	}
}

func TestDispatchSanitizesOutput(t *testing.T) {
	p := persona.Default()

	tests := []struct {
		name     string
		output   string
		wantText string
	}{
		{"empty", "", ""},
		{"whitespace", " ", ""},
		{"timing artifact", "0.000001234567", ""},
		{"single character", "k", ""},
		{"normal text", "babyyyy hiii 💕", "babyyyy hiii 💕"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := newMockSession()
			d := newTestDispatcher(session, &mockBackend{text: tt.output}, DispatchOptions{})
			d.Dispatch(context.Background(), testMessage("u1", "?!hello"))

			sent := session.sent()
			if len(sent) != 1 {
				t.Fatalf("sent %d messages, want 1", len(sent))
			}
			if tt.wantText != "" {
				if sent[0].content != tt.wantText {
					t.Errorf("sent %q, want %q", sent[0].content, tt.wantText)
				}
				return
			}
			if !slices.Contains(p.Fallbacks.Filler, sent[0].content) {
				t.Errorf("sent %q, want a filler line", sent[0].content)
			}
		})
	}
}

func TestDispatchIgnoresTypingFailure(t *testing.T) {
	session := newMockSession()
	session.typingErr = errBoom
	d := newTestDispatcher(session, &mockBackend{text: "still here"}, DispatchOptions{})
	d.Dispatch(context.Background(), testMessage("u1", "?!hello"))

	if sent := session.sent(); len(sent) != 1 || sent[0].content != "still here" {
		t.Errorf("sent = %+v, want reply despite typing failure", sent)
	}
}

func TestDispatchSendFailureDoesNotPanic(t *testing.T) {
	session := newMockSession()
	session.sendErr = errBoom
	d := newTestDispatcher(session, &mockBackend{text: "hello there"}, DispatchOptions{})
	d.Dispatch(context.Background(), testMessage("u1", "?!hello"))
}

func TestDispatchCancelledDuringDelay(t *testing.T) {
	session := newMockSession()
	backend := &mockBackend{text: "hiii"}
	d := newTestDispatcher(session, backend, DispatchOptions{Humanizer: Humanizer{Min: time.Hour, Max: time.Hour}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Dispatch(ctx, testMessage("u1", "?!hello"))

	if backend.calls() != 0 || len(session.sent()) != 0 {
		t.Error("dispatch continued after context cancellation")
	}
}
