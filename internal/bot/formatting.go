package bot

import (
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

// splitMessage cuts text into chunks of at most limit runes, preferring to break
// after a newline, then after a space. Concatenating the chunks gives back text.
func splitMessage(text string, limit int) []string {
	var chunks []string
	for text != "" {
		if utf8.RuneCountInString(text) <= limit {
			chunks = append(chunks, text)
			break
		}

		window := text[:runeOffset(text, limit)]
		cut := strings.LastIndex(window, "\n")
		if cut <= 0 {
			cut = strings.LastIndex(window, " ")
		}
		if cut <= 0 {
			cut = len(window)
		} else {
			cut++
		}

		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	return chunks
}

// runeOffset returns the byte offset of the n-th rune in s
func runeOffset(s string, n int) int {
	i := 0
	for offset := range s {
		if i == n {
			return offset
		}
		i++
	}
	return len(s)
}

// displayName picks the name a persona should address: guild nickname, then
// global name, then username
func displayName(m *discordgo.Message) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author == nil {
		return ""
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}
