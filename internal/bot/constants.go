package bot

import "time"

// Discord limits and dispatch defaults
const (
	MaxDiscordMessageLength = 2000
	DefaultMinReplyLength   = 2
	VoiceCloseTimeout       = 10 * time.Second
)
