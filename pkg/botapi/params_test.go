package botapi

import (
	"encoding/json"
	"testing"
)

func TestFormatValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "hello", "hello"},
		{"bool", true, "true"},
		{"int", 30, "30"},
		{"int64", int64(-1001234567890), "-1001234567890"},
		{"float", 48.8566, "48.8566"},
		{"json number", json.Number("12"), "12"},
		{"slice", []string{"message"}, `["message"]`},
		{"map", map[string]any{"force_reply": true}, `{"force_reply":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := formatValue(tt.in)
			if err != nil {
				t.Fatalf("formatValue() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatValue_Unencodable(t *testing.T) {
	t.Parallel()
	if _, err := formatValue(map[string]any{"c": make(chan int)}); err == nil {
		t.Error("expected error for a channel value")
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	got := merge(Params{"chat_id": 1, "text": "a"}, Options{"text": "b", "parse_mode": "HTML"})
	if len(got) != 3 || got["text"] != "b" || got["chat_id"] != 1 {
		t.Errorf("merge() = %v", got)
	}
	if got := merge(nil, nil); got == nil || len(got) != 0 {
		t.Errorf("merge(nil, nil) = %v, want empty map", got)
	}
}

func TestQueryValues(t *testing.T) {
	t.Parallel()

	values, err := queryValues(map[string]any{"offset": 10, "allowed_updates": []string{"message"}})
	if err != nil {
		t.Fatalf("queryValues() error: %v", err)
	}
	if got := values.Encode(); got != "allowed_updates=%5B%22message%22%5D&offset=10" {
		t.Errorf("Encode() = %q", got)
	}
}
