package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pixelpusher829/jammming/internal/models"
	"github.com/pixelpusher829/jammming/internal/shared"
	"github.com/pixelpusher829/jammming/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive playlist builder.
//
// Takes an optional draft ID argument; without one a fresh draft named
// "New Playlist" is created.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(cmd.String("config")); err != nil {
		return err
	}
	if err := r.requireDrafts(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/jammming-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	r.manager.Bootstrap(ctx, "")
	go r.manager.Watch(ctx)

	var draft *models.Draft
	if id := cmd.StringArg("id"); id != "" {
		if draft, err = r.drafts.Get(id); err != nil {
			return err
		}
	} else {
		draft = &models.Draft{DraftID: shared.GenerateID(), Name: "New Playlist"}
		if err := r.drafts.Create(draft); err != nil {
			return fmt.Errorf("failed to create draft: %w", err)
		}
	}

	model := ui.NewModel(ctx, r.catalog, r.engine, r.drafts, draft)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
