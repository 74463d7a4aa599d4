package main

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/flemzord/botapi/pkg/botapi"
)

func TestParseOpts(t *testing.T) {
	t.Parallel()

	opts, err := parseOpts([]string{
		"parse_mode=HTML",
		"disable_notification=true",
		"reply_to_message_id=42",
		`reply_markup={"inline_keyboard":[[{"text":"ok","callback_data":"x"}]]}`,
		"caption=a=b",
	})
	if err != nil {
		t.Fatalf("parseOpts: %v", err)
	}

	if opts["parse_mode"] != "HTML" {
		t.Errorf("parse_mode = %v", opts["parse_mode"])
	}
	if opts["disable_notification"] != true {
		t.Errorf("disable_notification = %#v, want true", opts["disable_notification"])
	}
	if opts["reply_to_message_id"] != json.Number("42") {
		t.Errorf("reply_to_message_id = %#v, want json.Number 42", opts["reply_to_message_id"])
	}
	if _, ok := opts["reply_markup"].(map[string]any); !ok {
		t.Errorf("reply_markup = %T, want decoded object", opts["reply_markup"])
	}
	if opts["caption"] != "a=b" {
		t.Errorf("caption = %v, want split on first '=' only", opts["caption"])
	}
}

func TestParseOpts_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"novalue", "=x"} {
		if _, err := parseOpts([]string{in}); err == nil {
			t.Errorf("parseOpts(%q) should fail", in)
		}
	}
	if opts, err := parseOpts(nil); err != nil || opts != nil {
		t.Errorf("parseOpts(nil) = %v, %v", opts, err)
	}
}

func TestParseID(t *testing.T) {
	t.Parallel()

	if id, err := parseID("chat_id", "-1001234567890"); err != nil || id != -1001234567890 {
		t.Errorf("parseID = %d, %v", id, err)
	}
	if _, err := parseID("chat_id", "@channel"); err == nil {
		t.Error("expected error for non-numeric id")
	}
}

func TestParseChat(t *testing.T) {
	t.Parallel()

	if c, err := parseChat("chat_id", "@channel"); err != nil || c != botapi.ChatByUsername("channel") {
		t.Errorf("parseChat(@channel) = %v, %v", c, err)
	}
	if c, err := parseChat("chat_id", "-100"); err != nil || c != botapi.ChatByID(-100) {
		t.Errorf("parseChat(-100) = %v, %v", c, err)
	}
	if _, err := parseChat("chat_id", "channel"); err == nil || !strings.Contains(err.Error(), "@username") {
		t.Errorf("parseChat(channel) error = %v", err)
	}
}

func TestEditArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method string
		raw    []string
		want   []any
	}{
		{botapi.MethodEditMessageText, []string{"abc123", "hello"}, []any{"abc123", "hello"}},
		{botapi.MethodEditMessageText, []string{"42", "99", "hello"}, []any{int64(42), int64(99), "hello"}},
		{botapi.MethodEditMessageText, []string{"42", "99", "123"}, []any{int64(42), int64(99), "123"}},
		{botapi.MethodEditMessageCaption, []string{"@news", "7", "new caption"}, []any{"@news", int64(7), "new caption"}},
		{botapi.MethodEditMessageReplyMarkup, []string{"42", "99"}, []any{int64(42), int64(99)}},
		{botapi.MethodEditMessageReplyMarkup, []string{"inline-id"}, []any{"inline-id"}},
	}

	for _, tt := range tests {
		got := editArgs(tt.method, tt.raw)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("editArgs(%s, %v) = %#v, want %#v", tt.method, tt.raw, got, tt.want)
		}
		if _, _, err := botapi.ResolveEditArgs(tt.method, got...); err != nil {
			t.Errorf("ResolveEditArgs(%s, %#v): %v", tt.method, got, err)
		}
	}
}

func TestPrintJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := printJSON(&buf, map[string]int{"n": 1}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{\n  \"n\": 1\n}\n" {
		t.Errorf("output = %q", buf.String())
	}
}
