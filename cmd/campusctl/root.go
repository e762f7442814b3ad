package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yigit/campushub/internal/pkg/logger"
	"github.com/yigit/campushub/internal/pkg/session"
)

const (
	apiURLKey    = "api-url"
	tokenFileKey = "token-file"
	verboseKey   = "verbose"

	defaultAPIURL = "http://localhost:8080"
)

// cli carries the viper instance shared by every command
type cli struct {
	v      *viper.Viper
	out    io.Writer
	logger zerolog.Logger
}

func newRootCommand() *cobra.Command {
	app := &cli{v: viper.New(), out: os.Stdout}

	root := &cobra.Command{
		Use:           "campusctl",
		Short:         "Command line client for the CampusHub API",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String(apiURLKey, defaultAPIURL, "Base URL of the CampusHub API (env CAMPUSCTL_API_URL)")
	flags.String(tokenFileKey, "", "Where the session token is stored (default ~/.campusctl/token)")
	flags.BoolP(verboseKey, "v", false, "Log HTTP session activity to stderr")

	root.AddCommand(
		app.signupCommand(),
		app.loginCommand(),
		app.whoamiCommand(),
		app.profileCommand(),
		app.logoutCommand(),
		app.watchCommand(),
	)
	return root
}

// init resolves configuration: flags, then CAMPUSCTL_* env, then
// ~/.campusctl.yaml, then defaults.
func (a *cli) init(cmd *cobra.Command) error {
	a.out = cmd.OutOrStdout()

	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	a.v.SetEnvPrefix("campusctl")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if home, err := os.UserHomeDir(); err == nil {
		a.v.AddConfigPath(home)
		a.v.SetDefault(tokenFileKey, filepath.Join(home, ".campusctl", "token"))
	}
	a.v.SetConfigName(".campusctl")
	a.v.SetConfigType("yaml")
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	level := logger.WarnLevel
	if a.v.GetBool(verboseKey) {
		level = logger.DebugLevel
	}
	a.logger = logger.Configure(logger.Config{
		Level:   level,
		Pretty:  true,
		Output:  cmd.ErrOrStderr(),
		Service: "campusctl",
	})
	return nil
}

func (a *cli) client() (*session.Client, error) {
	tokenFile := a.v.GetString(tokenFileKey)
	if tokenFile == "" {
		return nil, errors.New("no token file location: set --token-file")
	}
	return session.NewClient(
		a.v.GetString(apiURLKey),
		session.WithTokenStore(session.NewFileTokenStore(tokenFile)),
		session.WithLogger(a.logger),
	), nil
}

func (a *cli) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
