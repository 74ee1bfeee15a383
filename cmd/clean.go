package cmd

import (
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/abhisek/menuquiz/internal/menutext"
	"github.com/abhisek/menuquiz/internal/ui/theme"
)

var cleanCmd = &cobra.Command{
	Use:   "clean <menu-file>",
	Short: "Normalize menu text or PDF and print the cleaned text (use - for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readMenu(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}

		essential, _ := cmd.Flags().GetBool("essential")
		var (
			text    string
			reduced bool
		)
		if essential {
			text = menutext.ExtractEssential(menutext.Normalize(raw))
			reduced = true
		} else {
			p := menutext.Prepare(raw)
			text, reduced = p.Text, p.Essential
		}

		fmt.Fprintln(cmd.OutOrStdout(), text)

		if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
			return nil
		}
		before, after := utf8.RuneCountInString(raw), utf8.RuneCountInString(text)
		stderr := cmd.ErrOrStderr()
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, theme.Field("Original", fmt.Sprintf("%d chars, ~%d tokens", before, menutext.EstimateTokens(raw))))
		fmt.Fprintln(stderr, theme.Field("Cleaned", fmt.Sprintf("%d chars, ~%d tokens", after, menutext.EstimateTokens(text))))
		if before > 0 {
			fmt.Fprintln(stderr, theme.Field("Reduction", fmt.Sprintf("%.0f%%", float64(before-after)/float64(before)*100)))
		}
		if reduced {
			fmt.Fprintln(stderr, theme.Hint.Render("Reduced to essential lines."))
		}
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolP("essential", "e", false, "Always reduce to essential lines")
	cleanCmd.Flags().BoolP("quiet", "q", false, "Do not print statistics")
}
