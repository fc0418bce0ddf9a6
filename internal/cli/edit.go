package cli

import (
	"github.com/spf13/cobra"

	"github.com/tOgg1/trackline/internal/store"
	"github.com/tOgg1/trackline/internal/tui"
)

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <name>",
		Short: "Open a project in the timeline editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, _, err := resolveProject(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}

			db, err := a.database()
			if err != nil {
				return err
			}

			return tui.Run(project, store.NewProjectRepository(db), tui.Config{
				Theme:            a.cfg.TUI.Theme,
				RefreshInterval:  a.cfg.TUI.RefreshInterval,
				AutosaveInterval: a.cfg.Timeline.AutosaveInterval,
				ShowWaveforms:    a.cfg.TUI.ShowWaveforms,
				CompactMode:      a.cfg.TUI.CompactMode,
			})
		},
	}
}
