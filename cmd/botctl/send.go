package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/flemzord/botapi/pkg/botapi"
	"github.com/spf13/cobra"
)

func sendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send messages and media",
	}

	cmd.AddCommand(
		sendSub("message <chat_id> <text>", "Send a text message", 2, func(ctx context.Context, rt *runtime, chatID botapi.ChatID, args []string, opts botapi.Options) (any, error) {
			return rt.client.SendMessage(ctx, chatID, args[0], opts)
		}),
		sendSub("action <chat_id> <action>", "Broadcast a chat action such as typing", 2, func(ctx context.Context, rt *runtime, chatID botapi.ChatID, args []string, _ botapi.Options) (any, error) {
			return true, rt.client.SendChatAction(ctx, chatID, args[0])
		}),
		sendSub("forward <chat_id> <from_chat_id> <message_id>", "Forward a message", 3, func(ctx context.Context, rt *runtime, chatID botapi.ChatID, args []string, _ botapi.Options) (any, error) {
			from, err := parseChat("from_chat_id", args[0])
			if err != nil {
				return nil, err
			}
			messageID, err := parseID("message_id", args[1])
			if err != nil {
				return nil, err
			}
			return rt.client.ForwardMessage(ctx, chatID, from, int(messageID))
		}),
		sendSub("location <chat_id> <latitude> <longitude>", "Send a point on the map", 3, func(ctx context.Context, rt *runtime, chatID botapi.ChatID, args []string, opts botapi.Options) (any, error) {
			lat, lon, err := parseCoordinates(args[0], args[1])
			if err != nil {
				return nil, err
			}
			return rt.client.SendLocation(ctx, chatID, lat, lon, opts)
		}),
		sendSub("venue <chat_id> <latitude> <longitude> <title> <address>", "Send a venue", 5, func(ctx context.Context, rt *runtime, chatID botapi.ChatID, args []string, opts botapi.Options) (any, error) {
			lat, lon, err := parseCoordinates(args[0], args[1])
			if err != nil {
				return nil, err
			}
			return rt.client.SendVenue(ctx, chatID, lat, lon, args[2], args[3], opts)
		}),
		sendSub("contact <chat_id> <phone_number> <first_name>", "Send a phone contact", 3, func(ctx context.Context, rt *runtime, chatID botapi.ChatID, args []string, opts botapi.Options) (any, error) {
			return rt.client.SendContact(ctx, chatID, args[0], args[1], opts)
		}),
	)

	for _, kind := range []botapi.MediaKind{
		botapi.MediaPhoto,
		botapi.MediaAudio,
		botapi.MediaVoice,
		botapi.MediaSticker,
		botapi.MediaDocument,
		botapi.MediaVideo,
	} {
		cmd.AddCommand(sendMediaCmd(kind))
	}
	return cmd
}

type sendFunc func(ctx context.Context, rt *runtime, chatID botapi.ChatID, args []string, opts botapi.Options) (any, error)

// sendSub builds a send subcommand whose first argument is the chat id.
func sendSub(use, short string, nargs int, fn sendFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
	}
	addOptFlag(cmd)
	cmd.RunE = withRuntime(func(ctx context.Context, rt *runtime, args []string) error {
		chatID, err := parseChat("chat_id", args[0])
		if err != nil {
			return err
		}
		opts, err := optsFrom(cmd)
		if err != nil {
			return err
		}
		result, err := fn(ctx, rt, chatID, args[1:], opts)
		if err != nil {
			return err
		}
		return printJSON(rt.out, result)
	})
	return cmd
}

// sendMediaCmd uploads a local file, relays a URL, or reuses a file_id.
func sendMediaCmd(kind botapi.MediaKind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(kind) + " <chat_id> <path|url|file_id>",
		Short: fmt.Sprintf("Send a %s (local path, http(s) URL or file_id)", kind),
		Args:  cobra.ExactArgs(2),
	}
	addOptFlag(cmd)
	cmd.Flags().Bool("file-id", false, "Treat the argument as a file_id even if a file of that name exists")
	cmd.Flags().String("method", "", "Override the API method (e.g. sendAnimation)")

	cmd.RunE = withRuntime(func(ctx context.Context, rt *runtime, args []string) error {
		chatID, err := parseChat("chat_id", args[0])
		if err != nil {
			return err
		}
		opts, err := optsFrom(cmd)
		if err != nil {
			return err
		}

		file := botapi.ParseInputFile(args[1])
		if forceID, _ := cmd.Flags().GetBool("file-id"); forceID {
			file = botapi.FileID(args[1])
		}
		method, _ := cmd.Flags().GetString("method")

		msg, err := rt.client.SendMedia(ctx, botapi.MediaRequest{
			Kind:    kind,
			ChatID:  chatID,
			File:    file,
			Options: opts,
			Method:  method,
		})
		if err != nil {
			return err
		}
		return printJSON(rt.out, msg)
	})
	return cmd
}

func parseCoordinates(latS, lonS string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latS, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q", latS)
	}
	lon, err := strconv.ParseFloat(lonS, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q", lonS)
	}
	return lat, lon, nil
}
