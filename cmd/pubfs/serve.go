package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/pubfs"
)

func (c *cli) serveCmd() *cobra.Command {
	var staticDir string
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Serve the site and reload posts as they change",
		Long: `Serve the site over HTTP. The content directory is watched and every
change is rebuilt in the background; requests keep seeing the previous
version until the new one is complete.

Examples:
  pubfs serve
  pubfs serve --addr :8080 --url https://blog.example.com
  pubfs serve --no-watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.siteConfig()
			if err != nil {
				return err
			}
			logger, err := c.logger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app := pubfs.New(cfg, pubfs.ViewFuncs{}, pubfs.WithLogger(logger), pubfs.WithStaticDir(staticDir))
			if err := app.Start(ctx); err != nil {
				logger.Error("server stopped", zap.Error(err))
				return err
			}
			logger.Info("goodbye")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("addr", ":3000", "address to listen on")
	flags.String("url", "", "canonical site URL used in feeds and links")
	flags.Bool("no-watch", false, "do not reload posts when files change")
	flags.Duration("watch-delay", 0, "quiet period before a change is rebuilt")
	flags.StringVar(&staticDir, "static-dir", "public", "directory served under /public/")
	c.bind("addr", flags.Lookup("addr"))
	c.bind("url", flags.Lookup("url"))
	c.bind("disable_watch", flags.Lookup("no-watch"))
	c.bind("watch_delay", flags.Lookup("watch-delay"))
	return cmd
}
