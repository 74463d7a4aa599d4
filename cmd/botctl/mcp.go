package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/flemzord/botapi/internal/gateway"
	"github.com/flemzord/botapi/internal/security"
	"github.com/flemzord/botapi/pkg/botapi"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Expose the bot as MCP tools over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout. Each tool maps to one
Bot API method. Logs go to stderr.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().String("metrics-addr", "", "Serve /metrics and /health on this address")

	cmd.RunE = withRuntime(func(ctx context.Context, rt *runtime, _ []string) error {
		addr, _ := cmd.Flags().GetString("metrics-addr")
		if addr == "" {
			addr = rt.cfg.Telemetry.MetricsAddr
		}
		if addr != "" {
			if err := rt.startGateway(ctx, gateway.Config{Bind: addr}); err != nil {
				return err
			}
		}

		tools, err := newBotTools(rt)
		if err != nil {
			return err
		}
		s := newMCPServer(tools)
		rt.logger.Info("mcp server ready", "transport", "stdio")
		return server.ServeStdio(s)
	})
	return cmd
}

// botTools implements the MCP tool handlers on top of a client.
type botTools struct {
	client   *botapi.Client
	redactor *security.Redactor
	limiter  *security.RateLimiter
	urls     *security.URLFilter
}

// newBotTools gives the tools their own client: remote media named by a tool
// caller is downloaded through the URL filter's guarded transport.
func newBotTools(rt *runtime) (*botTools, error) {
	urls := security.NewURLFilter(security.URLFilterConfig{
		AllowDomains: rt.cfg.MCP.MediaAllowDomains,
		DenyDomains:  rt.cfg.MCP.MediaDenyDomains,
	})
	client, err := rt.newClient(botapi.WithFetchClient(urls.HTTPClient(rt.cfg.Timeout)))
	if err != nil {
		return nil, err
	}
	return &botTools{
		client:   client,
		redactor: rt.redactor,
		limiter:  security.NewRateLimiter(rt.cfg.MCP.ToolCallsPerMin, time.Minute),
		urls:     urls,
	}, nil
}

// limited rejects calls once a tool exceeds its per-minute budget.
func (t *botTools) limited(name string, next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := t.limiter.Allow(name); err != nil {
			return mcp.NewToolResultError(name + ": " + err.Error()), nil
		}
		return next(ctx, req)
	}
}

func newMCPServer(t *botTools) *server.MCPServer {
	s := server.NewMCPServer("botctl", version, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("get_me",
		mcp.WithDescription("Return the bot's own Telegram user"),
	), t.limited("get_me", t.getMe))

	s.AddTool(mcp.NewTool("get_chat",
		mcp.WithDescription("Return details about a chat"),
		mcp.WithString("chat_id", mcp.Required(), mcp.Description("Chat identifier or @channelusername")),
	), t.limited("get_chat", t.getChat))

	s.AddTool(mcp.NewTool("send_message",
		mcp.WithDescription("Send a text message to a chat"),
		mcp.WithString("chat_id", mcp.Required(), mcp.Description("Target chat identifier or @channelusername")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Message text")),
		mcp.WithString("parse_mode", mcp.Description("Markdown, MarkdownV2 or HTML")),
	), t.limited("send_message", t.sendMessage))

	s.AddTool(mcp.NewTool("send_media",
		mcp.WithDescription("Send a photo, audio, voice, sticker, document or video by URL or file_id"),
		mcp.WithString("chat_id", mcp.Required(), mcp.Description("Target chat identifier or @channelusername")),
		mcp.WithString("kind", mcp.Required(), mcp.Enum("photo", "audio", "voice", "sticker", "document", "video")),
		mcp.WithString("media", mcp.Required(), mcp.Description("http(s) URL or file_id")),
		mcp.WithString("caption", mcp.Description("Optional caption")),
	), t.limited("send_media", t.sendMedia))

	s.AddTool(mcp.NewTool("edit_message_text",
		mcp.WithDescription("Replace the text of a message, addressed by inline_message_id or chat_id + message_id"),
		mcp.WithString("text", mcp.Required(), mcp.Description("New text")),
		mcp.WithString("inline_message_id", mcp.Description("Inline message identifier")),
		mcp.WithString("chat_id", mcp.Description("Chat of the message")),
		mcp.WithNumber("message_id", mcp.Description("Message identifier")),
	), t.limited("edit_message_text", t.editMessageText))

	s.AddTool(mcp.NewTool("get_updates",
		mcp.WithDescription("Fetch pending updates"),
		mcp.WithNumber("offset", mcp.Description("First update identifier to return")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of updates")),
	), t.limited("get_updates", t.getUpdates))

	return s
}

// chatArg reads chat_id as either a JSON number or a string holding an
// integer or @username.
func chatArg(req mcp.CallToolRequest, required bool) (botapi.ChatID, error) {
	switch v := req.GetArguments()["chat_id"].(type) {
	case nil:
		if required {
			return botapi.ChatID{}, errors.New("required argument \"chat_id\" not found")
		}
		return botapi.ChatID{}, nil
	case float64:
		if v == 0 || v != math.Trunc(v) {
			return botapi.ChatID{}, fmt.Errorf("%w: %v", botapi.ErrInvalidChatID, v)
		}
		return botapi.ChatByID(int64(v)), nil
	case string:
		return botapi.ParseChatID(v)
	default:
		return botapi.ChatID{}, fmt.Errorf("%w: unexpected type %T", botapi.ErrInvalidChatID, v)
	}
}

func (t *botTools) getMe(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	me, err := t.client.GetMe(ctx)
	return t.result(me, err)
}

func (t *botTools) getChat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chatID, err := chatArg(req, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	chat, err := t.client.GetChat(ctx, chatID)
	return t.result(chat, err)
}

func (t *botTools) sendMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chatID, err := chatArg(req, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var opts botapi.Options
	if mode := req.GetString("parse_mode", ""); mode != "" {
		opts = botapi.Options{"parse_mode": mode}
	}
	msg, err := t.client.SendMessage(ctx, chatID, text, opts)
	return t.result(msg, err)
}

func (t *botTools) sendMedia(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chatID, err := chatArg(req, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	kind, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	media, err := req.RequireString("media")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Never read local files on behalf of a tool caller.
	file := botapi.FileID(media)
	if parsed := botapi.ParseInputFile(media); parsed.IsRemote() {
		if t.urls != nil {
			if err := t.urls.Check(media); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
		}
		file = parsed
	}

	var opts botapi.Options
	if caption := req.GetString("caption", ""); caption != "" {
		opts = botapi.Options{"caption": caption}
	}
	msg, err := t.client.SendMedia(ctx, botapi.MediaRequest{
		Kind:    botapi.MediaKind(kind),
		ChatID:  chatID,
		File:    file,
		Options: opts,
	})
	return t.result(msg, err)
}

func (t *botTools) editMessageText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var ref botapi.MessageRef
	if id := req.GetString("inline_message_id", ""); id != "" {
		ref.InlineMessageID = id
	}
	chatID, err := chatArg(req, false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ref.ChatID = chatID
	if messageID := req.GetFloat("message_id", 0); messageID != 0 {
		ref.MessageID = int(messageID)
	}

	msg, err := t.client.EditMessageText(ctx, ref, text, nil)
	if err == nil && msg == nil {
		return mcp.NewToolResultText("true"), nil
	}
	return t.result(msg, err)
}

func (t *botTools) getUpdates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := botapi.Options{}
	if offset := req.GetFloat("offset", 0); offset != 0 {
		opts["offset"] = int64(offset)
	}
	if limit := req.GetFloat("limit", 0); limit != 0 {
		opts["limit"] = int(limit)
	}
	updates, err := t.client.GetUpdates(ctx, opts)
	return t.result(updates, err)
}

// result renders v as JSON text, or err as a tool error with secrets removed.
func (t *botTools) result(v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(t.redactor.Redact(err.Error())), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
