package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tOgg1/trackline/internal/jobs"
	"github.com/tOgg1/trackline/internal/render"
	"github.com/tOgg1/trackline/internal/store"
)

func newRenderCmd(a *app) *cobra.Command {
	var outDir string
	var wait bool

	cmd := &cobra.Command{
		Use:   "render <name>",
		Short: "Queue a render job for a project",
		Long:  "Queue a render job composing the project's timeline into an export document. With --wait the command runs the job watcher until the job finishes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			project, _, err := resolveProject(ctx, a, args[0])
			if err != nil {
				return err
			}

			// Refuse up front rather than queueing a job that can only fail.
			if err := jobs.ValidateRenderable(projectLength(project)); err != nil {
				return err
			}

			db, err := a.database()
			if err != nil {
				return err
			}
			renders := store.NewJobRepository(db)

			job := &jobs.Job{ProjectID: project.ID}
			if err := renders.Create(ctx, job); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queued render job %s\n", job.ID)

			if !wait {
				return nil
			}

			if outDir == "" {
				outDir = filepath.Join(a.cfg.Global.DataDir, "renders")
			}
			processor := render.NewProcessor(store.NewProjectRepository(db), renders, outDir)

			watcher := jobs.NewWatcher(jobs.WatcherConfig{
				RunningInterval: a.cfg.Jobs.RunningInterval,
				QueuedInterval:  a.cfg.Jobs.QueuedInterval,
				MaxConcurrent:   a.cfg.Jobs.MaxConcurrent,
			}, renders, processor)

			if err := watcher.Start(ctx); err != nil {
				return err
			}
			defer watcher.Stop()

			ticker := time.NewTicker(a.cfg.Jobs.RunningInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
				}

				current, err := renders.Get(ctx, job.ID)
				if err != nil {
					return err
				}
				if !current.State.Terminal() {
					continue
				}

				if current.State == jobs.StateFailed {
					return fmt.Errorf("render failed: %s", current.Error)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s to %s\n", project.Name, processor.OutputPath(project.Name))
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default is <data-dir>/renders)")
	cmd.Flags().BoolVar(&wait, "wait", true, "run the job watcher until the render finishes")
	return cmd
}

func newJobsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List render jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.database()
			if err != nil {
				return err
			}

			all, err := store.NewJobRepository(db).List(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				payload, err := json.MarshalIndent(all, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(payload))
				return nil
			}

			if len(all) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No render jobs.")
				return nil
			}

			rows := make([][]string, 0, len(all))
			for _, job := range all {
				errText := job.Error
				if errText == "" {
					errText = "-"
				}
				rows = append(rows, []string{
					job.ID,
					job.ProjectID,
					string(job.State),
					fmt.Sprintf("%.0f%%", job.Progress*100),
					errText,
				})
			}
			return writeTable(cmd.OutOrStdout(), []string{"ID", "PROJECT", "STATE", "PROGRESS", "ERROR"}, rows)
		},
	}
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}
