package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/menuquiz/internal/catalog"
	"github.com/abhisek/menuquiz/internal/quizgen"
	"github.com/abhisek/menuquiz/internal/ui/theme"
)

var generateCmd = &cobra.Command{
	Use:   "generate <menu-file>",
	Short: "Generate questions from a menu text or PDF file (use - for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		menu, err := readMenu(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}

		params := quizgen.GenerateParams{MenuText: menu}
		params.Role, _ = cmd.Flags().GetString("role")
		params.Area, _ = cmd.Flags().GetString("area")
		params.Language, _ = cmd.Flags().GetString("lang")
		params.QuestionCount, _ = cmd.Flags().GetInt("count")
		params.Categories, _ = cmd.Flags().GetStringSlice("categories")
		params.QuestionTypes, _ = cmd.Flags().GetStringSlice("types")
		params.Difficulty, _ = cmd.Flags().GetString("difficulty")

		req, err := quizgen.ResolveRequest(catalog.Default(), cfg.Generation, params)
		if err != nil {
			return err
		}

		svc, err := newServices(ctx, cmd, true)
		if err != nil {
			return err
		}
		defer svc.Close()

		res, err := svc.generator.Generate(ctx, req)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if path, _ := cmd.Flags().GetString("output"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			out = f
		}

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return fmt.Errorf("write questions: %w", err)
			}
		case "text":
			printQuestions(out, res)
		default:
			return fmt.Errorf("unknown format %q (want json or text)", format)
		}

		if len(res.Questions) < res.Requested {
			fmt.Fprintln(cmd.ErrOrStderr(), theme.Warn.Render(
				fmt.Sprintf("Only %d of %d questions could be generated.", len(res.Questions), res.Requested)))
		}
		return nil
	},
}

func printQuestions(w io.Writer, res *quizgen.Result) {
	fmt.Fprintln(w, theme.Title.Render(fmt.Sprintf("%d questions", len(res.Questions))))
	fmt.Fprintln(w, theme.Field("Run", res.RunID))
	fmt.Fprintln(w, theme.Field("Attempts", res.Attempts))
	if res.Source.Truncated {
		fmt.Fprintln(w, theme.Hint.Render("Menu text was truncated to fit the prompt."))
	}
	fmt.Fprintln(w)

	for i, q := range res.Questions {
		var b strings.Builder
		fmt.Fprintf(&b, "%s\n", theme.Title.Render(fmt.Sprintf("%d. %s", i+1, q.Text)))
		fmt.Fprintf(&b, "%s\n", theme.Hint.Render(fmt.Sprintf("%s · %s · %s", q.Category, q.Type, q.Difficulty)))
		for _, o := range q.Options {
			if o.Correct {
				fmt.Fprintf(&b, "\n%s", theme.Correct.Render("✓ "+o.Text))
			} else {
				fmt.Fprintf(&b, "\n%s", theme.Incorrect.Render("  "+o.Text))
			}
		}
		fmt.Fprintln(w, theme.Card.Render(b.String()))
	}
}

func init() {
	generateCmd.Flags().StringP("role", "r", "", "Target role (see `menuquiz roles`)")
	generateCmd.Flags().StringP("area", "a", "", "Area, for roles split into areas")
	generateCmd.Flags().StringP("lang", "l", "", "Question language (default es)")
	generateCmd.Flags().IntP("count", "n", 0, "Number of questions (default from config)")
	generateCmd.Flags().StringSlice("categories", nil, "Restrict to these category IDs")
	generateCmd.Flags().StringSlice("types", nil, "Restrict to these question types")
	generateCmd.Flags().String("difficulty", "", "Ask for a single difficulty level")
	generateCmd.Flags().StringP("format", "f", "json", "Output format: json or text")
	generateCmd.Flags().StringP("output", "o", "", "Write output to a file instead of stdout")
	_ = generateCmd.MarkFlagRequired("role")
}
