package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/rumorlens/internal/extract"
)

// tagCmd represents the tag command
var tagCmd = &cobra.Command{
	Use:   "tag <text>",
	Short: "Run the transfer keyword heuristic on one post",
	Long: `Tag reports whether a post contains any transfer keyword, without
calling the LLM. Useful for checking a custom keyword list.

Example:
  rumorlens tag "Chelsea are in advanced talks with Brighton for Caicedo"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		text := strings.Join(args, " ")
		if cfg.Input.UnescapeHTML {
			text = extract.NormalizeText(text)
		}

		tagger := extract.NewTagger(cfg.Tagger.Keywords...)
		out := cmd.OutOrStdout()
		if kw := tagger.Match(text); kw != "" {
			fmt.Fprintf(out, "looks_like_move: true (matched %q)\n", kw)
		} else {
			fmt.Fprintln(out, "looks_like_move: false")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tagCmd)
}
