package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/pubfs/content"
	"github.com/eringen/pubfs/scaffold"
)

// newPost holds the options of `pubfs new`.
type newPost struct {
	dir   string
	title string
	tags  []string
	draft bool
	force bool
	now   time.Time
}

func (c *cli) newCmd() *cobra.Command {
	var (
		opts    newPost
		publish bool
	)
	cmd := &cobra.Command{
		Use:     "new <title>",
		Aliases: []string{"n"},
		Short:   "Create a new post file",
		Long: `Create a post in the content directory with a header filled in.
The file name is derived from the title.

Examples:
  pubfs new "Hello world"
  pubfs new "Notes on fsnotify" --tags go,linux --publish`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.siteConfig()
			if err != nil {
				return err
			}
			loc, err := time.LoadLocation(orDefault(cfg.Timezone, "UTC"))
			if err != nil {
				return fmt.Errorf("timezone: %w", err)
			}
			opts.dir = orDefault(cfg.ContentDir, "posts")
			opts.title = strings.Join(args, " ")
			opts.now = time.Now().In(loc).Truncate(time.Second)
			opts.draft = !publish

			path, err := opts.create()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  created %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&opts.tags, "tags", "t", nil, "comma-separated tags")
	cmd.Flags().BoolVar(&publish, "publish", false, "create the post as published instead of draft")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func (n newPost) create() (string, error) {
	slug := content.Slugify(n.title)
	if slug == "" {
		return "", fmt.Errorf("title %q has no characters usable in a file name", n.title)
	}
	path := filepath.Join(n.dir, slug+".md")

	// Check if the file already exists.
	if _, err := os.Stat(path); err == nil && !n.force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	raw, err := scaffold.RenderPost(scaffold.Post{
		Title: n.title,
		Date:  n.now,
		Tags:  n.tags,
		Draft: n.draft,
	})
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(n.dir, 0o755); err != nil {
		return "", err
	}
	// Write to a temporary name first so a watching server never reads a
	// half-written post.
	tmp, err := os.CreateTemp(n.dir, "."+slug+"-*.tmp")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	return path, nil
}
