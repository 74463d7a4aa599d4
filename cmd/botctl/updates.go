package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/flemzord/botapi/pkg/botapi"
	"github.com/spf13/cobra"
)

func callbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "callback",
		Short: "Callback query operations",
	}
	answer := &cobra.Command{
		Use:   "answer <callback_query_id>",
		Short: "Answer a callback query (text, show_alert, url via --opt)",
		Args:  cobra.ExactArgs(1),
	}
	addOptFlag(answer)
	answer.RunE = withRuntime(func(ctx context.Context, rt *runtime, args []string) error {
		opts, err := optsFrom(answer)
		if err != nil {
			return err
		}
		if err := rt.client.AnswerCallbackQuery(ctx, args[0], opts); err != nil {
			return err
		}
		return printJSON(rt.out, true)
	})
	cmd.AddCommand(answer)
	return cmd
}

func inlineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inline",
		Short: "Inline query operations",
	}
	answer := &cobra.Command{
		Use:   "answer <inline_query_id> <results_json>",
		Short: "Answer an inline query with a JSON array of results",
		Args:  cobra.ExactArgs(2),
	}
	addOptFlag(answer)
	answer.RunE = withRuntime(func(ctx context.Context, rt *runtime, args []string) error {
		var results []any
		if err := json.Unmarshal([]byte(args[1]), &results); err != nil {
			return fmt.Errorf("invalid results: %w", err)
		}
		opts, err := optsFrom(answer)
		if err != nil {
			return err
		}
		if err := rt.client.AnswerInlineQuery(ctx, args[0], results, opts); err != nil {
			return err
		}
		return printJSON(rt.out, true)
	})
	cmd.AddCommand(answer)
	return cmd
}

func updatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "updates",
		Short: "Fetch pending updates (getUpdates)",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().Int64("offset", 0, "Identifier of the first update to return")
	cmd.Flags().Int("limit", 0, "Maximum number of updates (1-100)")
	cmd.Flags().Int("timeout", 0, "Long polling timeout in seconds")

	cmd.RunE = withRuntime(func(ctx context.Context, rt *runtime, _ []string) error {
		opts := botapi.Options{}
		if v, _ := cmd.Flags().GetInt64("offset"); cmd.Flags().Changed("offset") {
			opts["offset"] = v
		}
		if v, _ := cmd.Flags().GetInt("limit"); cmd.Flags().Changed("limit") {
			opts["limit"] = v
		}
		if v, _ := cmd.Flags().GetInt("timeout"); cmd.Flags().Changed("timeout") {
			opts["timeout"] = v
		}
		updates, err := rt.client.GetUpdates(ctx, opts)
		if err != nil {
			return err
		}
		return printJSON(rt.out, updates)
	})
	return cmd
}

func webhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Manage the webhook integration",
	}

	set := &cobra.Command{
		Use:   "set <url>",
		Short: "Register a webhook URL",
		Args:  cobra.ExactArgs(1),
	}
	set.Flags().String("secret", "", "secret_token Telegram echoes in X-Telegram-Bot-Api-Secret-Token")
	addOptFlag(set)
	set.RunE = withRuntime(func(ctx context.Context, rt *runtime, args []string) error {
		opts, err := optsFrom(set)
		if err != nil {
			return err
		}
		if secret, _ := set.Flags().GetString("secret"); secret != "" {
			if opts == nil {
				opts = botapi.Options{}
			}
			opts["secret_token"] = secret
		}
		if err := rt.client.SetWebhook(ctx, args[0], opts); err != nil {
			return err
		}
		return printJSON(rt.out, true)
	})

	del := &cobra.Command{
		Use:   "delete",
		Short: "Remove the webhook and return to getUpdates",
		Args:  cobra.NoArgs,
		RunE: withRuntime(func(ctx context.Context, rt *runtime, _ []string) error {
			if err := rt.client.DeleteWebhook(ctx); err != nil {
				return err
			}
			return printJSON(rt.out, true)
		}),
	}

	cmd.AddCommand(set, del)
	return cmd
}

func photosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photos <user_id>",
		Short: "List a user's profile pictures",
		Args:  cobra.ExactArgs(1),
	}
	addOptFlag(cmd)
	cmd.RunE = withRuntime(func(ctx context.Context, rt *runtime, args []string) error {
		userID, err := parseID("user_id", args[0])
		if err != nil {
			return err
		}
		opts, err := optsFrom(cmd)
		if err != nil {
			return err
		}
		photos, err := rt.client.GetUserProfilePhotos(ctx, userID, opts)
		if err != nil {
			return err
		}
		return printJSON(rt.out, photos)
	})
	return cmd
}

// fileInfo pairs getFile's answer with its download URL.
type fileInfo struct {
	*botapi.File
	URL string `json:"url,omitempty"`
}

func fileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "file <file_id>",
		Short: "Resolve a file_id to its metadata and download URL",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(func(ctx context.Context, rt *runtime, args []string) error {
			f, err := rt.client.GetFile(ctx, args[0])
			if err != nil {
				return err
			}
			info := fileInfo{File: f}
			if f != nil && f.FilePath != "" {
				info.URL = rt.client.FileURL(f.FilePath)
			}
			return printJSON(rt.out, info)
		}),
	}
}
