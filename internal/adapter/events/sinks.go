package events

import (
	"context"

	"palma-lending/internal/core/domain"
	"palma-lending/internal/core/ports"

	"github.com/rs/zerolog"
)

// JournalListener stores every event in journal.
func JournalListener(journal ports.EventJournal) Listener {
	return func(ctx context.Context, event *domain.Event) error {
		return journal.Create(ctx, event)
	}
}

// LogListener writes each event to log. It never fails.
func LogListener(log zerolog.Logger) Listener {
	return func(_ context.Context, event *domain.Event) error {
		e := log.Info().
			Str("event_id", event.ID.String()).
			Str("type", string(event.Type)).
			Str("account", event.Account.Hex()).
			Str("asset", event.Asset.Hex()).
			Str("amount", event.Amount.Dec())
		if event.Target != nil {
			e = e.Str("target", event.Target.Hex())
		}
		if event.DebtAsset != nil {
			e = e.Str("debt_asset", event.DebtAsset.Hex())
		}
		e.Msg("ledger event")
		return nil
	}
}
