package botapi

import (
	"fmt"
	"reflect"
)

// Edit methods that address a message either inline or by chat and message id.
const (
	MethodEditMessageText        = "editMessageText"
	MethodEditMessageCaption     = "editMessageCaption"
	MethodEditMessageReplyMarkup = "editMessageReplyMarkup"
)

// editRequired lists the string arguments each edit method takes after the
// message address.
var editRequired = map[string][]string{
	MethodEditMessageText:        {"text"},
	MethodEditMessageCaption:     {"caption"},
	MethodEditMessageReplyMarkup: nil,
}

// MessageRef addresses a message for the edit methods. Build it with
// ByInlineID or ByChatAndMessage.
type MessageRef struct {
	InlineMessageID string
	ChatID          ChatID
	MessageID       int
}

// ByInlineID addresses a message sent via inline mode.
func ByInlineID(inlineMessageID string) MessageRef {
	return MessageRef{InlineMessageID: inlineMessageID}
}

// ByChatAndMessage addresses a message by chat and message identifier.
func ByChatAndMessage(chatID ChatID, messageID int) MessageRef {
	return MessageRef{ChatID: chatID, MessageID: messageID}
}

// params returns the addressing fields of ref.
func (r MessageRef) params(method string) (Params, error) {
	inline := r.InlineMessageID != ""
	direct := !r.ChatID.IsZero() || r.MessageID != 0
	switch {
	case inline && direct:
		return nil, &ShapeError{Method: method, Reason: "both inline and chat/message addressing set"}
	case inline:
		return Params{"inline_message_id": r.InlineMessageID}, nil
	case !r.ChatID.IsZero() && r.MessageID != 0:
		return Params{"chat_id": r.ChatID, "message_id": r.MessageID}, nil
	default:
		return nil, &ShapeError{Method: method, Reason: "no message address"}
	}
}

// ResolveEditArgs maps positional arguments of an edit method onto its
// payload. Two layouts are accepted:
//
//	inlineMessageID, <required strings>[, options]
//	chatID, messageID, <required strings>[, options]
//
// editMessageText requires text, editMessageCaption requires caption and
// editMessageReplyMarkup requires nothing. The inline layout is tried first.
// Options may be an Options or a map[string]any. Anything else yields a
// *ShapeError.
func ResolveEditArgs(method string, args ...any) (Params, Options, error) {
	required, ok := editRequired[method]
	if !ok {
		return nil, nil, &ShapeError{Method: method, Reason: "not an edit method"}
	}
	if payload, opts, ok := resolveInline(required, args); ok {
		return payload, opts, nil
	}
	if payload, opts, ok := resolveDirect(required, args); ok {
		return payload, opts, nil
	}
	return nil, nil, &ShapeError{Method: method, Reason: fmt.Sprintf("%d argument(s)", len(args))}
}

func resolveInline(required []string, args []any) (Params, Options, bool) {
	lead := 1 + len(required)
	rest, ok := splitOptions(args, lead)
	if !ok {
		return nil, nil, false
	}
	id, ok := args[0].(string)
	if !ok || id == "" {
		return nil, nil, false
	}
	payload := Params{"inline_message_id": id}
	for i, name := range required {
		s, ok := args[1+i].(string)
		if !ok {
			return nil, nil, false
		}
		payload[name] = s
	}
	return payload, rest, true
}

func resolveDirect(required []string, args []any) (Params, Options, bool) {
	lead := 2 + len(required)
	rest, ok := splitOptions(args, lead)
	if !ok {
		return nil, nil, false
	}
	if isMapping(args[0]) || isMapping(args[1]) {
		return nil, nil, false
	}
	chatID, ok := chatIdentifier(args[0])
	if !ok {
		return nil, nil, false
	}
	messageID, ok := integer(args[1])
	if !ok {
		return nil, nil, false
	}
	payload := Params{"chat_id": chatID, "message_id": messageID}
	for i, name := range required {
		s, ok := args[2+i].(string)
		if !ok {
			return nil, nil, false
		}
		payload[name] = s
	}
	return payload, rest, true
}

// splitOptions checks that args holds lead values, optionally followed by one
// options mapping, and returns that mapping.
func splitOptions(args []any, lead int) (Options, bool) {
	switch len(args) {
	case lead:
		return nil, true
	case lead + 1:
		switch opts := args[lead].(type) {
		case Options:
			return opts, true
		case map[string]any:
			return Options(opts), true
		case nil:
			return nil, true
		}
	}
	return nil, false
}

func isMapping(v any) bool {
	if v == nil {
		return false
	}
	kind := reflect.TypeOf(v).Kind()
	return kind == reflect.Map || kind == reflect.Struct
}

// chatIdentifier accepts an integer chat id or a string (@channelusername).
func chatIdentifier(v any) (any, bool) {
	if s, ok := v.(string); ok {
		return s, s != ""
	}
	return integer(v)
}

func integer(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	}
	return 0, false
}
