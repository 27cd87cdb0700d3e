package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/pubfs/content"
	"github.com/eringen/pubfs/markdown"
)

func (c *cli) buildCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:     "build",
		Aliases: []string{"b", "check"},
		Short:   "Build every post once and report the ones that fail",
		Long: `Build every post the way the server would and print a summary.
The command exits with an error when any post is excluded, which makes it
usable as a pre-publish check.`,
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

			loc, err := time.LoadLocation(orDefault(cfg.Timezone, "UTC"))
			if err != nil {
				return fmt.Errorf("timezone: %w", err)
			}
			renderer := markdown.New(markdown.WithHighlighters(markdown.NewHighlighters(orDefault(cfg.HighlightStyle, markdown.DefaultStyle))))
			store := content.NewStore(orDefault(cfg.ContentDir, "posts"),
				&content.Builder{Renderer: renderer, Options: content.LoadOptions{Location: loc}},
				content.WithLogger(logger.Named("content")),
			)
			return runBuild(cmd.Context(), cmd.OutOrStdout(), store, verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list every post")
	return cmd
}

func runBuild(ctx context.Context, w io.Writer, store *content.Store, verbose bool) error {
	out, err := store.Refresh(ctx, nil)
	if err != nil {
		return err
	}
	idx, err := store.Snapshot()
	if err != nil {
		return err
	}

	if verbose {
		for _, p := range idx.All() {
			status := "published"
			if p.Draft {
				status = "draft"
			}
			fmt.Fprintf(w, "  %-10s %s  %s\n", status, p.Date.Format("2006-01-02"), p.Slug)
		}
	}
	drafts := idx.Len() - len(idx.Published())
	fmt.Fprintf(w, "%d posts (%d published, %d drafts), %d tags, built in %s\n",
		idx.Len(), len(idx.Published()), drafts, len(idx.Tags()), out.Duration.Round(time.Millisecond))

	if len(out.Excluded) == 0 {
		return nil
	}
	fmt.Fprintf(w, "%d excluded:\n", len(out.Excluded))
	for _, x := range out.Excluded {
		fmt.Fprintf(w, "  %s\n", x.Error())
	}
	return fmt.Errorf("%d sources excluded", len(out.Excluded))
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
