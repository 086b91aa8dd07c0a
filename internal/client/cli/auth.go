package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/passvault/internal/client/client"
	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/spf13/cobra"
)

func newRegisterCmd(a *App) *cobra.Command {
	var userName string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an account with a login password and three security answers.
The answers are case-insensitive and are asked again whenever a secret is revealed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := a.userName(userName)
			if err != nil {
				return err
			}
			password, err := a.prompt.GetNewPassword("Password")
			if err != nil {
				return err
			}

			var answers [common.SecurityAnswerCount]string
			for i := range answers {
				if answers[i], err = a.prompt.GetHidden(fmt.Sprintf("Security answer %d", i+1)); err != nil {
					return err
				}
			}

			ctx, cancel := a.callCtx(cmd)
			defer cancel()

			account, token, err := a.client.Register(ctx, name, password, answers)
			if err != nil {
				return err
			}
			if err := a.saveToken(token); err != nil {
				return err
			}
			a.printf("Registered and logged in as %s\n", account.UserName)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userName, "username", "u", "", "username (prompted when empty)")
	return cmd
}

func newLoginCmd(a *App) *cobra.Command {
	var userName string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := a.userName(userName)
			if err != nil {
				return err
			}
			password, err := a.prompt.GetHidden("Password")
			if err != nil {
				return err
			}

			ctx, cancel := a.callCtx(cmd)
			defer cancel()

			account, token, err := a.client.Login(ctx, name, password)
			if err != nil {
				return err
			}
			if err := a.saveToken(token); err != nil {
				return err
			}
			a.printf("Logged in as %s\n", account.UserName)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userName, "username", "u", "", "username (prompted when empty)")
	return cmd
}

func newLogoutCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.callCtx(cmd)
			defer cancel()

			// the local token is dropped even when the server rejects it
			err := a.client.Logout(ctx)
			if err != nil && !errors.Is(err, client.ErrUnauthorized) {
				return err
			}
			if err := a.clearToken(); err != nil {
				return err
			}
			a.printf("Logged out\n")
			return nil
		},
	}
}

func newMeCmd(a *App) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.callCtx(cmd)
			defer cancel()

			account, err := a.client.Me(ctx)
			if err != nil {
				return err
			}
			if output != formatTable {
				return a.encode(output, account)
			}
			a.printf("Username: %s\nID:       %s\nCreated:  %s\n", account.UserName, account.ID, formatTime(account.CreatedAt))
			return nil
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}

func newPingCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.callCtx(cmd)
			defer cancel()

			if err := a.client.Ping(ctx); err != nil {
				return err
			}
			a.printf("OK\n")
			return nil
		},
	}
}

func (a *App) userName(flagValue string) (string, error) {
	name := strings.TrimSpace(flagValue)
	if name != "" {
		return name, nil
	}
	name, err := a.prompt.GetSimpleText("Username")
	if err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("username is required")
	}
	return name, nil
}
