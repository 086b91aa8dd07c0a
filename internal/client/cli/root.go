package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/passvault/internal/client/client"
	"github.com/dmitrijs2005/passvault/internal/client/config"
	"github.com/dmitrijs2005/passvault/internal/filex"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Dialer opens the API client for a loaded configuration.
type Dialer func(cfg *config.Config) (client.Client, error)

// DialGRPC is the production Dialer.
func DialGRPC(cfg *config.Config) (client.Client, error) {
	return client.NewGRPCClient(cfg.ServerAddress)
}

// App carries the state shared by every command of one invocation.
type App struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	dial    Dialer
	client  client.Client
	prompt  *Prompter
	out     io.Writer
}

// NewRootCmd builds the passvault command tree reading prompts from in and
// writing results to out.
func NewRootCmd(in io.Reader, out io.Writer, dial Dialer) *cobra.Command {
	a := &App{
		v:      viper.New(),
		dial:   dial,
		prompt: NewPrompter(in, out),
		out:    out,
	}

	root := &cobra.Command{
		Use:   "passvault",
		Short: "Store secrets behind your password and three security answers",
		Long: `passvault keeps named secrets on a passvault server. Listing shows only
topic names; revealing a secret requires all three security answers.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	root.SetIn(in)
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.passvault.yaml)")
	flags.StringP("server", "s", "", "server gRPC address (host:port)")
	flags.String("token-file", "", "file holding the session token")
	flags.Duration("timeout", 0, "per-request timeout")

	a.bindFlag(root, config.KeyServerAddress, "server")
	a.bindFlag(root, config.KeyTokenFile, "token-file")
	a.bindFlag(root, config.KeyTimeout, "timeout")

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newMeCmd(a),
		newAddCmd(a),
		newListCmd(a),
		newDeleteCmd(a),
		newRevealCmd(a),
		newPingCmd(a),
	)
	return root
}

func (a *App) bindFlag(root *cobra.Command, key, name string) {
	if err := a.v.BindPFlag(key, root.PersistentFlags().Lookup(name)); err != nil {
		panic(fmt.Sprintf("failed to bind %s flag: %v", name, err))
	}
}

func (a *App) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
		return nil
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	c, err := a.dial(cfg)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.ServerAddress, err)
	}
	a.client = c

	token, err := filex.ReadTrimmed(cfg.TokenFile)
	if err != nil {
		return err
	}
	c.SetToken(token)
	return nil
}

func (a *App) teardown(*cobra.Command, []string) error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

// callCtx bounds one server call by the configured timeout.
func (a *App) callCtx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, a.cfg.Timeout)
}

func (a *App) saveToken(token string) error {
	return filex.WritePrivate(a.cfg.TokenFile, []byte(token+"\n"))
}

func (a *App) clearToken() error {
	return filex.RemoveIfExists(a.cfg.TokenFile)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
