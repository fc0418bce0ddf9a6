package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tOgg1/trackline/internal/models"
	"github.com/tOgg1/trackline/internal/store"
	"github.com/tOgg1/trackline/internal/timescale"
)

func newProjectsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage timeline projects",
	}

	cmd.AddCommand(
		newProjectsListCmd(a),
		newProjectsCreateCmd(a),
		newProjectsDeleteCmd(a),
		newProjectsRenameCmd(a),
	)

	return cmd
}

func newProjectsListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.database()
			if err != nil {
				return err
			}

			projects, err := store.NewProjectRepository(db).List(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				payload, err := json.MarshalIndent(projects, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(payload))
				return nil
			}

			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects. Create one with: trackline projects create <name>")
				return nil
			}

			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				rows = append(rows, []string{
					p.Name,
					fmt.Sprintf("%d", len(p.Video)+len(p.Text)+len(p.Sound)),
					formatSeconds(projectLength(p)),
					p.UpdatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			return writeTable(cmd.OutOrStdout(), []string{"NAME", "CLIPS", "LENGTH", "UPDATED"}, rows)
		},
	}
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func newProjectsCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.database()
			if err != nil {
				return err
			}

			project := models.NewProject("", args[0])
			if err := store.NewProjectRepository(db).Create(cmd.Context(), project); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s)\n", project.Name, project.ID)
			return nil
		},
	}
}

func newProjectsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a project and its render jobs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.database()
			if err != nil {
				return err
			}

			repo := store.NewProjectRepository(db)
			project, err := repo.GetByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := repo.Delete(cmd.Context(), project.ID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", project.Name)
			return nil
		},
	}
}

func newProjectsRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name> <new-name>",
		Short: "Rename a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.database()
			if err != nil {
				return err
			}

			repo := store.NewProjectRepository(db)
			project, err := repo.GetByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			project.Name = args[1]
			if err := repo.Save(cmd.Context(), project); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", args[0], args[1])
			return nil
		},
	}
}

// resolveProject looks a project up by name.
func resolveProject(ctx context.Context, a *app, name string) (*models.Project, *store.ProjectRepository, error) {
	db, err := a.database()
	if err != nil {
		return nil, nil, err
	}
	repo := store.NewProjectRepository(db)
	project, err := repo.GetByName(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	return project, repo, nil
}

// projectLength is the furthest clip end across all three collections, in
// base pixels.
func projectLength(p *models.Project) float64 {
	end := 0.0
	for _, c := range p.Video {
		if e := c.Position + c.Duration; e > end {
			end = e
		}
	}
	for _, c := range p.Text {
		if e := c.Position + c.Duration; e > end {
			end = e
		}
	}
	for _, c := range p.Sound {
		if e := c.Position + c.Duration; e > end {
			end = e
		}
	}
	return end
}

func formatSeconds(base float64) string {
	d := time.Duration(timescale.BaseToSeconds(base) * float64(time.Second))
	return fmt.Sprintf("%d:%05.2f", int(d.Minutes()), d.Seconds()-60*float64(int(d.Minutes())))
}
