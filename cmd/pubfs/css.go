package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/spf13/cobra"

	"github.com/eringen/pubfs/markdown"
)

func (c *cli) cssCmd() *cobra.Command {
	var (
		output string
		list   bool
	)
	cmd := &cobra.Command{
		Use:   "css",
		Short: "Write the stylesheet for highlighted code blocks",
		Long: `Write the CSS rules for the classes emitted in highlighted code blocks.
The server also serves this stylesheet at /public/highlight.css.

Examples:
  pubfs css > public/highlight.css
  pubfs css --style monokai -o public/highlight.css
  pubfs css --list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(styles.Names(), "\n"))
				return nil
			}
			style := c.v.GetString("highlight_style")
			if style == "" {
				style = markdown.DefaultStyle
			}
			if _, ok := styles.Registry[style]; !ok {
				return fmt.Errorf("unknown style %q (see pubfs css --list)", style)
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return markdown.NewHighlighters(style).WriteCSS(w)
		},
	}
	cmd.Flags().StringP("style", "s", markdown.DefaultStyle, "chroma style name")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	cmd.Flags().BoolVar(&list, "list", false, "list the available styles")
	c.bind("highlight_style", cmd.Flags().Lookup("style"))
	return cmd
}
