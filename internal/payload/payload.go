// Package payload renders the JSON body every attempt of a run sends.
package payload

import (
	"fmt"
	"regexp"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
)

const (
	DefaultContent   = "Hello, world!"
	DefaultUsername  = "Webhook Tester"
	DefaultAvatarURL = "https://example.com/avatar.png"
)

var json = jsoniter.ConfigFastest

// rawTemplate is the unescaped body older releases produced.
const rawTemplate = `{"content": "${content}", "username": "${username}", "avatar_url": "${avatar_url}"}`

// varPattern matches ${name} placeholders.
var varPattern = regexp.MustCompile(`\$\{([a-z_]+)\}`)

// Message is the webhook body. Field order is the wire order.
type Message struct {
	Content   string `json:"content" yaml:"content"`
	Username  string `json:"username" yaml:"username"`
	AvatarURL string `json:"avatar_url" yaml:"avatar_url"`
}

// DefaultMessage returns the values used when nothing else is configured.
func DefaultMessage() Message {
	return Message{
		Content:   DefaultContent,
		Username:  DefaultUsername,
		AvatarURL: DefaultAvatarURL,
	}
}

// Builder renders message bodies. The zero value renders escaped JSON with no defaults.
type Builder struct {
	Defaults Message
	// Raw substitutes values verbatim, without JSON escaping.
	Raw bool
}

// NewBuilder creates a Builder that falls back to DefaultMessage.
func NewBuilder(raw bool) *Builder {
	return &Builder{Defaults: DefaultMessage(), Raw: raw}
}

// Render returns the body for the given values. Empty values fall back to the
// builder defaults. Render is pure: equal inputs give byte-identical output.
func (b *Builder) Render(content, username, avatarURL string) ([]byte, error) {
	msg := Message{
		Content:   orDefault(content, b.Defaults.Content),
		Username:  orDefault(username, b.Defaults.Username),
		AvatarURL: orDefault(avatarURL, b.Defaults.AvatarURL),
	}
	if b.Raw {
		return RenderRaw(msg), nil
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return body, nil
}

// RenderRaw interpolates msg into the legacy template without escaping.
// Quotes or backslashes in the values produce invalid JSON.
func RenderRaw(msg Message) []byte {
	values := map[string]string{
		"content":    msg.Content,
		"username":   msg.Username,
		"avatar_url": msg.AvatarURL,
	}
	out := varPattern.ReplaceAllStringFunc(rawTemplate, func(match string) string {
		return values[match[2:len(match)-1]]
	})
	return []byte(out)
}

// Valid reports whether body is well-formed JSON.
func Valid(body []byte) bool {
	return gjson.ValidBytes(body)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
