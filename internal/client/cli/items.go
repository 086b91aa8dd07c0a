package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/spf13/cobra"
)

func newAddCmd(a *App) *cobra.Command {
	var (
		topic    string
		favorite bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store a new secret",
		Long:  "Store a new secret under a topic name. The secret is prompted without echo.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			topic = strings.TrimSpace(topic)
			if topic == "" {
				if topic, err = a.prompt.GetSimpleText("Topic"); err != nil {
					return err
				}
			}
			secret, err := a.prompt.GetHidden("Secret")
			if err != nil {
				return err
			}
			if secret == "" {
				return errors.New("secret is required")
			}

			ctx, cancel := a.callCtx(cmd)
			defer cancel()

			item, err := a.client.CreateItem(ctx, topic, secret, favorite)
			if err != nil {
				return err
			}
			a.printf("Stored %q (id %s)\n", item.TopicName, item.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&topic, "topic", "t", "", "topic name (prompted when empty)")
	cmd.Flags().BoolVarP(&favorite, "favorite", "f", false, "mark as favorite")
	return cmd
}

func newListCmd(a *App) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored topics, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.callCtx(cmd)
			defer cancel()

			items, err := a.client.ListItems(ctx)
			if err != nil {
				return err
			}
			if output != formatTable {
				return a.encode(output, items)
			}
			return a.itemsTable(items)
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}

func newDeleteCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a stored secret",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.callCtx(cmd)
			defer cancel()

			if err := a.client.DeleteItem(ctx, args[0]); err != nil {
				return err
			}
			a.printf("Deleted %s\n", args[0])
			return nil
		},
	}
}

func newRevealCmd(a *App) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "reveal <id>",
		Short: "Reveal a secret after answering the security questions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var answers [common.SecurityAnswerCount]string
			var err error
			for i := range answers {
				if answers[i], err = a.prompt.GetHidden(fmt.Sprintf("Security answer %d", i+1)); err != nil {
					return err
				}
			}

			ctx, cancel := a.callCtx(cmd)
			defer cancel()

			secret, err := a.client.RetrieveSecret(ctx, args[0], answers)
			if err != nil {
				return err
			}
			if output != formatTable {
				return a.encode(output, secret)
			}
			a.printf("Topic:    %s\nPassword: %s\n", secret.TopicName, secret.Password)
			return nil
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}
