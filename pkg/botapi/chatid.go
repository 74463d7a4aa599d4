package botapi

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidChatID is returned by ParseChatID for input that is neither an
// integer nor an @username.
var ErrInvalidChatID = errors.New("botapi: invalid chat id")

// ChatID identifies the target of a call: a numeric chat identifier, or the
// @username of a public channel or supergroup. The zero value addresses
// nothing.
type ChatID struct {
	id       int64
	username string
}

// ChatByID addresses a chat by its numeric identifier.
func ChatByID(id int64) ChatID {
	return ChatID{id: id}
}

// ChatByUsername addresses a channel or supergroup by username. The leading
// "@" is optional.
func ChatByUsername(username string) ChatID {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return ChatID{}
	}
	return ChatID{username: "@" + username}
}

// ParseChatID accepts "-1001234567890" or "@channel".
func ParseChatID(s string) (ChatID, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "@") {
		if c := ChatByUsername(s); !c.IsZero() {
			return c, nil
		}
		return ChatID{}, ErrInvalidChatID
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id == 0 {
		return ChatID{}, ErrInvalidChatID
	}
	return ChatByID(id), nil
}

// IsZero reports whether c addresses no chat.
func (c ChatID) IsZero() bool { return c.id == 0 && c.username == "" }

// Username returns the @username, or "" for a numeric chat id.
func (c ChatID) Username() string { return c.username }

// ID returns the numeric chat id, or 0 for a username.
func (c ChatID) ID() int64 { return c.id }

// String renders the value sent in form fields and query strings.
func (c ChatID) String() string {
	if c.username != "" {
		return c.username
	}
	return strconv.FormatInt(c.id, 10)
}

// MarshalJSON encodes a numeric id as a JSON number and a username as a
// string, as the Bot API expects.
func (c ChatID) MarshalJSON() ([]byte, error) {
	if c.username != "" {
		return json.Marshal(c.username)
	}
	return []byte(strconv.FormatInt(c.id, 10)), nil
}
