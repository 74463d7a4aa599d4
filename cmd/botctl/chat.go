package main

import (
	"context"

	"github.com/flemzord/botapi/pkg/botapi"
	"github.com/spf13/cobra"
)

func meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the bot's own user (getMe)",
		Args:  cobra.NoArgs,
		RunE: withRuntime(func(ctx context.Context, rt *runtime, _ []string) error {
			me, err := rt.client.GetMe(ctx)
			if err != nil {
				return err
			}
			return printJSON(rt.out, me)
		}),
	}
}

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Inspect and manage chats",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <chat_id>",
			Short: "Show chat details",
			Args:  cobra.ExactArgs(1),
			RunE: withRuntime(func(ctx context.Context, rt *runtime, args []string) error {
				chatID, err := parseChat("chat_id", args[0])
				if err != nil {
					return err
				}
				chat, err := rt.client.GetChat(ctx, chatID)
				if err != nil {
					return err
				}
				return printJSON(rt.out, chat)
			}),
		},
		&cobra.Command{
			Use:   "admins <chat_id>",
			Short: "List chat administrators",
			Args:  cobra.ExactArgs(1),
			RunE: withRuntime(func(ctx context.Context, rt *runtime, args []string) error {
				chatID, err := parseChat("chat_id", args[0])
				if err != nil {
					return err
				}
				admins, err := rt.client.GetChatAdministrators(ctx, chatID)
				if err != nil {
					return err
				}
				return printJSON(rt.out, admins)
			}),
		},
		&cobra.Command{
			Use:   "count <chat_id>",
			Short: "Print the number of chat members",
			Args:  cobra.ExactArgs(1),
			RunE: withRuntime(func(ctx context.Context, rt *runtime, args []string) error {
				chatID, err := parseChat("chat_id", args[0])
				if err != nil {
					return err
				}
				n, err := rt.client.GetChatMembersCount(ctx, chatID)
				if err != nil {
					return err
				}
				return printJSON(rt.out, n)
			}),
		},
		chatUserCmd("member <chat_id> <user_id>", "Show one chat member", func(ctx context.Context, rt *runtime, chatID botapi.ChatID, userID int64) error {
			member, err := rt.client.GetChatMember(ctx, chatID, userID)
			if err != nil {
				return err
			}
			return printJSON(rt.out, member)
		}),
		chatUserCmd("kick <chat_id> <user_id>", "Ban a user from the chat", func(ctx context.Context, rt *runtime, chatID botapi.ChatID, userID int64) error {
			if err := rt.client.KickChatMember(ctx, chatID, userID); err != nil {
				return err
			}
			return printJSON(rt.out, true)
		}),
		chatUserCmd("unban <chat_id> <user_id>", "Lift a ban", func(ctx context.Context, rt *runtime, chatID botapi.ChatID, userID int64) error {
			if err := rt.client.UnbanChatMember(ctx, chatID, userID); err != nil {
				return err
			}
			return printJSON(rt.out, true)
		}),
		&cobra.Command{
			Use:   "leave <chat_id>",
			Short: "Make the bot leave a chat",
			Args:  cobra.ExactArgs(1),
			RunE: withRuntime(func(ctx context.Context, rt *runtime, args []string) error {
				chatID, err := parseChat("chat_id", args[0])
				if err != nil {
					return err
				}
				if err := rt.client.LeaveChat(ctx, chatID); err != nil {
					return err
				}
				return printJSON(rt.out, true)
			}),
		},
	)
	return cmd
}

func chatUserCmd(use, short string, fn func(ctx context.Context, rt *runtime, chatID botapi.ChatID, userID int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: withRuntime(func(ctx context.Context, rt *runtime, args []string) error {
			chatID, err := parseChat("chat_id", args[0])
			if err != nil {
				return err
			}
			userID, err := parseID("user_id", args[1])
			if err != nil {
				return err
			}
			return fn(ctx, rt, chatID, userID)
		}),
	}
}
