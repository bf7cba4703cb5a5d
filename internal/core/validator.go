package core

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/vovakirdan/presence-relay/internal/proto"
	"github.com/vovakirdan/presence-relay/internal/utils"
)

// Validator turns raw client frames into commands. Every rejection is silent:
// Validate reports false and the frame is dropped.
type Validator struct {
	limits Limits
}

// NewValidator builds a validator enforcing limits.
func NewValidator(limits Limits) *Validator {
	return &Validator{limits: limits}
}

type fields map[string]json.RawMessage

// Validate parses raw on behalf of s. Rate-gated commands stamp the matching
// timestamp on s when accepted.
func (v *Validator) Validate(s *Session, raw []byte, now time.Time) (*Command, bool) {
	if len(raw) > v.limits.MaxPayloadBytes {
		return nil, false
	}
	if !utf8.Valid(raw) {
		return nil, false
	}

	var f fields
	if err := json.Unmarshal(raw, &f); err != nil || f == nil {
		return nil, false
	}
	typ, ok := f.str("type")
	if !ok {
		return nil, false
	}

	switch typ {
	case proto.InboundTypeJoin:
		return v.join(s, f), true
	case proto.InboundTypePosition, proto.InboundTypePositionAlt:
		if !s.LastPositionAt.IsZero() && now.Sub(s.LastPositionAt) < v.limits.PositionInterval {
			return nil, false
		}
		cmd := &Command{Kind: CommandPosition}
		v.attributes(cmd, f)
		touch(&s.LastPositionAt, now)
		return cmd, true
	case proto.InboundTypeChat:
		if !s.LastChatAt.IsZero() && now.Sub(s.LastChatAt) < v.limits.ChatInterval {
			return nil, false
		}
		cmd, ok := v.chat(s, f)
		if !ok {
			return nil, false
		}
		touch(&s.LastChatAt, now)
		return cmd, true
	case proto.InboundTypeLeave:
		return &Command{Kind: CommandLeave}, true
	default:
		return nil, false
	}
}

func (v *Validator) join(s *Session, f fields) *Command {
	cmd := &Command{Kind: CommandJoin}

	name, _ := f.str("name")
	cmd.Name = sanitizeName(name, v.limits.MaxNameLen)
	if cmd.Name == "" {
		cmd.Name = fallbackName(s.ID)
	}

	room, _ := f.str("room")
	cmd.Room = sanitizeName(room, v.limits.MaxRoomLen)
	if cmd.Room == "" {
		cmd.Room = DefaultRoom
	}

	v.attributes(cmd, f)
	return cmd
}

func (v *Validator) chat(s *Session, f fields) (*Command, bool) {
	text, _ := f.str("text")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}

	name, _ := f.str("name")
	name = sanitizeName(name, v.limits.MaxNameLen)
	switch {
	case name != "":
	case s.Name != "":
		name = s.Name
	default:
		name = fallbackName(s.ID)
	}

	return &Command{
		Kind: CommandChat,
		Name: name,
		Text: truncate(text, v.limits.MaxChatLen),
	}, true
}

// attributes reads the optional display fields shared by join and position updates.
func (v *Validator) attributes(cmd *Command, f fields) {
	cmd.X = f.num("x")
	cmd.Y = f.num("y")
	cmd.Size = f.num("size")

	if color, ok := f.scalar("color"); ok {
		color = truncate(strings.TrimSpace(color), v.limits.MaxColorLen)
		cmd.Color = &color
	}
	if avatar, ok := f.str("avatar"); ok {
		avatar = truncate(strings.TrimSpace(avatar), v.limits.MaxAvatarLen)
		cmd.Avatar = &avatar
	}
}

func (f fields) raw(key string) (json.RawMessage, bool) {
	raw, ok := f[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

// str returns the field only when it is a JSON string.
func (f fields) str(key string) (string, bool) {
	raw, ok := f.raw(key)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// num returns the field only when it is a finite JSON number.
func (f fields) num(key string) *float64 {
	raw, ok := f.raw(key)
	if !ok {
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	return &n
}

// scalar coerces a string, number or boolean field to its string form.
func (f fields) scalar(key string) (string, bool) {
	if s, ok := f.str(key); ok {
		return s, true
	}
	if n := f.num(key); n != nil {
		return strconv.FormatFloat(*n, 'f', -1, 64), true
	}
	raw, ok := f.raw(key)
	if !ok {
		return "", false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return "", false
	}
	return strconv.FormatBool(b), true
}

func fallbackName(id string) string {
	return "Player-" + utils.ShortSuffix(id, 4)
}

// sanitizeName trims, strips control characters and caps s at limit runes.
func sanitizeName(s string, limit int) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(truncate(strings.TrimSpace(s), limit))
}

// truncate caps s at limit runes.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit])
}
