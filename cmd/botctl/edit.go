package main

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/flemzord/botapi/pkg/botapi"
	"github.com/spf13/cobra"
)

func editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit sent messages",
		Long: `Edit a message addressed either by inline_message_id or by chat_id and
message_id. The layout is detected from the arguments:

  botctl edit text <inline_message_id> <text>
  botctl edit text <chat_id|@channel> <message_id> <text>`,
	}
	cmd.AddCommand(
		editSub("text", botapi.MethodEditMessageText, "Edit the text of a message"),
		editSub("caption", botapi.MethodEditMessageCaption, "Edit the caption of a media message"),
		editSub("markup", botapi.MethodEditMessageReplyMarkup, "Edit only the inline keyboard"),
	)
	return cmd
}

func editSub(name, method, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name + " <ids...> [value]",
		Short: short,
		Args:  cobra.RangeArgs(1, 3),
	}
	addOptFlag(cmd)
	cmd.Flags().String("markup", "", "reply_markup as JSON")

	cmd.RunE = withRuntime(func(ctx context.Context, rt *runtime, raw []string) error {
		opts, err := optsFrom(cmd)
		if err != nil {
			return err
		}
		if markup, _ := cmd.Flags().GetString("markup"); markup != "" {
			var v any
			if err := json.Unmarshal([]byte(markup), &v); err != nil {
				return fmt.Errorf("invalid --markup: %w", err)
			}
			if opts == nil {
				opts = botapi.Options{}
			}
			opts["reply_markup"] = v
		}

		args := editArgs(method, raw)
		if len(opts) > 0 {
			args = append(args, map[string]any(maps.Clone(opts)))
		}

		msg, err := rt.client.EditMessageArgs(ctx, method, args...)
		if err != nil {
			return err
		}
		if msg == nil {
			// Inline messages report success without the edited message.
			return printJSON(rt.out, true)
		}
		return printJSON(rt.out, msg)
	})
	return cmd
}
