// Package persona holds the character the bot speaks as: the system prompt sent
// to the backend, the template wrapping each user prompt, and the canned lines
// used when the backend fails or returns junk.
package persona

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/Dmetrikx/neesa/internal/ai"
)

// Fallbacks are fixed user-facing lines, one list per situation
type Fallbacks struct {
	Filler       []string `yaml:"filler"`
	RateLimited  []string `yaml:"rate_limited"`
	Unauthorized []string `yaml:"unauthorized"`
	Malformed    []string `yaml:"malformed"`
	Unknown      []string `yaml:"unknown"`
}

// Template combines a fixed persona description with the user's prompt.
// It is immutable once built.
type Template struct {
	Name         string    `yaml:"name"`
	System       string    `yaml:"system"`
	UserTemplate string    `yaml:"user_template"`
	Fallbacks    Fallbacks `yaml:"fallbacks"`

	user *template.Template
}

type userData struct {
	Prompt string
	Name   string
}

// Default returns the built-in Neesa persona
func Default() *Template {
	t := &Template{
		Name:         "Neesa",
		System:       neesaSystem,
		UserTemplate: defaultUserTemplate,
		Fallbacks: Fallbacks{
			Filler: []string{
				"hehe what 😳",
				"babe i literally blanked 😭💕",
				"omg say that again~ ✨",
			},
			RateLimited: []string{
				"too many ppl talking to me rn 😵‍💫 try again in a sec~",
			},
			Unauthorized: []string{
				"someone messed up my brain key 🔪 tell the admin pls",
			},
			Malformed: []string{
				"i couldn't even read that babe 😭 say it differently",
			},
			Unknown: []string{
				"ai error :( try again",
			},
		},
	}
	// The built-in template is a constant; a parse failure is a programming error.
	if err := t.compile(); err != nil {
		panic(err)
	}
	return t
}

// Load reads a YAML persona file. Fields missing from the file keep the
// built-in Neesa values.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read persona file: %w", err)
	}

	t := Default()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse persona file %s: %w", path, err)
	}

	if strings.TrimSpace(t.System) == "" {
		return nil, fmt.Errorf("persona file %s: system prompt is empty", path)
	}
	if err := t.compile(); err != nil {
		return nil, fmt.Errorf("persona file %s: %w", path, err)
	}
	// Parsing accepts unknown fields such as {{.Foo}}; only execution rejects them
	if _, err := t.Render("hello", "someone"); err != nil {
		return nil, fmt.Errorf("persona file %s: %w", path, err)
	}
	return t, nil
}

func (t *Template) compile() error {
	tmpl, err := template.New("user").Option("missingkey=zero").Parse(t.UserTemplate)
	if err != nil {
		return fmt.Errorf("invalid user_template: %w", err)
	}
	t.user = tmpl
	return nil
}

// Render interpolates the prompt and the author's display name into the user template
func (t *Template) Render(prompt, displayName string) (string, error) {
	var buf bytes.Buffer
	if err := t.user.Execute(&buf, userData{Prompt: prompt, Name: displayName}); err != nil {
		return "", fmt.Errorf("failed to render user template: %w", err)
	}
	return buf.String(), nil
}

// Request builds the backend request for one prompt
func (t *Template) Request(prompt, displayName string) (ai.Request, error) {
	user, err := t.Render(prompt, displayName)
	if err != nil {
		return ai.Request{}, err
	}
	return ai.Request{System: t.System, Prompt: user}, nil
}

// Fallback returns the canned line for a failure category
func (t *Template) Fallback(kind ai.ErrorKind) string {
	var lines []string
	switch kind {
	case ai.KindRateLimited:
		lines = t.Fallbacks.RateLimited
	case ai.KindUnauthorized:
		lines = t.Fallbacks.Unauthorized
	case ai.KindMalformedRequest:
		lines = t.Fallbacks.Malformed
	}
	if len(lines) == 0 {
		lines = t.Fallbacks.Unknown
	}
	return pick(lines, "ai error :( try again")
}

// Filler returns a line to send instead of unusable backend output
func (t *Template) Filler() string {
	return pick(t.Fallbacks.Filler, "hehe what 😳")
}

func pick(lines []string, def string) string {
	if len(lines) == 0 {
		return def
	}
	return lines[rand.IntN(len(lines))]
}
