package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/flemzord/botapi/pkg/botapi"
	"github.com/spf13/cobra"
)

// addOptFlag registers the repeatable --opt key=value flag.
func addOptFlag(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("opt", "o", nil, "Optional field key=value (value parsed as JSON when valid); repeatable")
}

// optsFrom reads --opt values from cmd.
func optsFrom(cmd *cobra.Command) (botapi.Options, error) {
	raw, _ := cmd.Flags().GetStringArray("opt")
	return parseOpts(raw)
}

// parseOpts turns key=value pairs into Options. A value that is valid JSON
// is decoded (numbers stay exact); anything else is kept as a string.
func parseOpts(pairs []string) (botapi.Options, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	opts := make(botapi.Options, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --opt %q (want key=value)", pair)
		}
		opts[key] = parseValue(value)
	}
	return opts, nil
}

func parseValue(s string) any {
	if !json.Valid([]byte(s)) {
		return s
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return s
	}
	return v
}

// parseChat parses a numeric chat identifier or an @channelusername.
func parseChat(kind, s string) (botapi.ChatID, error) {
	chat, err := botapi.ParseChatID(s)
	if err != nil {
		return botapi.ChatID{}, fmt.Errorf("invalid %s %q: must be an integer or @username", kind, s)
	}
	return chat, nil
}

// parseID parses a user or message identifier.
func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", kind, s)
	}
	return id, nil
}

// editArgs converts positional arguments for ResolveEditArgs: the leading
// identifiers become int64 when numeric, the trailing required strings
// (text or caption) stay strings whatever they contain.
func editArgs(method string, raw []string) []any {
	trailing := 1
	if method == botapi.MethodEditMessageReplyMarkup {
		trailing = 0
	}
	args := make([]any, len(raw))
	for i, s := range raw {
		if i < len(raw)-trailing {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				args[i] = n
				continue
			}
		}
		args[i] = s
	}
	return args
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
