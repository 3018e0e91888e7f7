package discord

import (
	"errors"
	"fmt"
)

// VoiceLink is an established voice connection in one guild
type VoiceLink interface {
	// ChannelID is the channel the link was opened on
	ChannelID() string

	// Disconnect tears the connection down
	Disconnect() error
}

// voiceConn is the part of *discordgo.VoiceConnection a link needs
type voiceConn interface {
	Disconnect() error
}

type voiceLink struct {
	conn      voiceConn
	channelID string
}

// newVoiceLink wraps the result of a join. A failed join that still left a
// connection behind is disconnected so the guild is not held half-open.
func newVoiceLink(conn voiceConn, channelID string, joinErr error) (VoiceLink, error) {
	if joinErr != nil {
		if conn != nil {
			if err := conn.Disconnect(); err != nil {
				return nil, errors.Join(joinErr, fmt.Errorf("failed to release voice connection: %w", err))
			}
		}
		return nil, joinErr
	}
	if conn == nil {
		return nil, fmt.Errorf("join returned no voice connection for channel %s", channelID)
	}
	return &voiceLink{conn: conn, channelID: channelID}, nil
}

func (l *voiceLink) ChannelID() string {
	return l.channelID
}

func (l *voiceLink) Disconnect() error {
	return l.conn.Disconnect()
}
