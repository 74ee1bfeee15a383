package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/menuquiz/internal/catalog"
	"github.com/abhisek/menuquiz/internal/ui/theme"
)

var rolesCmd = &cobra.Command{
	Use:   "roles [role]",
	Short: "List roles, or show the areas and categories of one role",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := catalog.Default()
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			t := theme.Table("Role", "Name", "Areas")
			for _, r := range cat.Roles {
				areas := "-"
				if r.HasAreas() {
					areas = fmt.Sprint(len(r.Areas))
				}
				t.Row(r.ID, r.Name, areas)
			}
			fmt.Fprintln(out, t)
			return nil
		}

		role, err := cat.Role(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, theme.Title.Render(role.Name))
		if role.Description != "" {
			fmt.Fprintln(out, theme.Hint.Render(role.Description))
		}
		fmt.Fprintln(out)

		if !role.HasAreas() {
			fmt.Fprintln(out, entryTable("Category", role.Categories))
			return nil
		}

		area, _ := cmd.Flags().GetString("area")
		if area == "" {
			t := theme.Table("Area", "Name", "Description")
			for _, a := range role.Areas {
				t.Row(a.ID, a.Name, a.Description)
			}
			fmt.Fprintln(out, t)
			return nil
		}
		sel, err := cat.Resolve(role.ID, area, nil)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, theme.Field("Area", sel.Area.Name))
		fmt.Fprintln(out, entryTable("Category", sel.Categories))
		return nil
	},
}

func entryTable(kind string, entries []catalog.Entry) fmt.Stringer {
	t := theme.Table(kind, "Name")
	for _, e := range entries {
		t.Row(e.ID, e.Name)
	}
	return t
}

func init() {
	rolesCmd.Flags().StringP("area", "a", "", "Show the categories of one area")
}
