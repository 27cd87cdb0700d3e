package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/eringen/pubfs"
	"github.com/eringen/pubfs/internal/logging"
)

// configKeys lists every pubfs.SiteConfig key so that PUBFS_* environment
// variables reach Unmarshal even when no config file mentions them.
var configKeys = []string{
	"name", "url", "description", "author",
	"addr", "content_dir", "timezone",
	"page_size", "feed_max_entries", "highlight_style",
	"disable_watch", "watch_delay",
	"admin_password", "session_secret", "cookie_secure",
	"shutdown_timeout", "concurrency_limit", "max_connections",
	"log_level", "log_format",
}

// cli carries the state shared by every subcommand.
type cli struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "pubfs",
		Short: "A file-backed blog engine",
		Long: `pubfs turns a directory of markdown posts into a live site with
RSS and Atom feeds. Edits on disk show up without a restart.

Configuration is read from .pubfs.yml, PUBFS_* environment variables
and flags, in increasing order of precedence.

Quick Start:
  pubfs new "Hello world"     Create posts/hello-world.md
  pubfs build                 Check every post
  pubfs serve                 Serve the site on :3000`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initConfig()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default is .pubfs.yml, can also use PUBFS_CONFIG_FILE env var)")
	flags.StringP("content-dir", "d", "posts", "directory holding the post sources")
	flags.StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", logging.FormatConsole, "log format (console, json)")
	c.bind("content_dir", flags.Lookup("content-dir"))
	c.bind("log_level", flags.Lookup("log-level"))
	c.bind("log_format", flags.Lookup("log-format"))

	root.AddCommand(
		c.serveCmd(),
		c.buildCmd(),
		c.newCmd(),
		c.cssCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) bind(key string, flag *pflag.Flag) {
	if err := c.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind %s: %v", key, err))
	}
}

// initConfig resolves the config file: the --config flag, then
// PUBFS_CONFIG_FILE, then .pubfs.yml in the working directory. A missing
// default file is not an error.
func (c *cli) initConfig() error {
	v := c.v
	explicit := true
	if c.cfgFile != "" {
		v.SetConfigFile(c.cfgFile)
	} else if envConfigFile := os.Getenv("PUBFS_CONFIG_FILE"); envConfigFile != "" {
		v.SetConfigFile(envConfigFile)
	} else {
		explicit = false
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".pubfs")
	}

	v.SetEnvPrefix("PUBFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// siteConfig decodes the merged configuration.
func (c *cli) siteConfig() (pubfs.SiteConfig, error) {
	var cfg pubfs.SiteConfig
	if err := c.v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func (c *cli) logger() (*zap.Logger, error) {
	return logging.New(c.v.GetString("log_level"), c.v.GetString("log_format"))
}
