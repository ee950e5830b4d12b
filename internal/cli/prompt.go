package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/dmitrijs2005/shelfsync/internal/conflict"
)

// TerminalConfirmer asks the user to pick a side of a conflict with a
// two-option terminal form. It satisfies conflict.Confirmer.
type TerminalConfirmer struct{}

func (TerminalConfirmer) Confirm(ctx context.Context, req conflict.ConfirmRequest) (bool, error) {
	var takeRemote bool

	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("%q changed in two places", req.Title)).
			Description(fmt.Sprintf("local:  %s\nremote: %s", req.LocalSummary, req.RemoteSummary)).
			Affirmative("Take remote").
			Negative("Keep local").
			Value(&takeRemote),
	))

	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return takeRemote, nil
}

// TerminalUpgradePrompter shows a single dismissable "upgrade required"
// notice. It satisfies engine.UpgradePrompter.
type TerminalUpgradePrompter struct{}

func (TerminalUpgradePrompter) PresentUpgradePrompt(ctx context.Context) error {
	var ack bool

	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Cloud syncing requires an upgraded plan").
			Description("The remote store refused the operation. Upgrade your plan to keep syncing this library.").
			Affirmative("OK").
			Negative("Later").
			Value(&ack),
	))

	return form.RunWithContext(ctx)
}
