package postgres

import (
	"context"
	"fmt"
	"time"

	"palma-lending/internal/core/domain"
	"palma-lending/pkg/wad"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
)

// MaxEventPage caps ListByAccount.
const MaxEventPage = 500

// EventJournal implements ports.EventJournal. Amounts are stored as
// NUMERIC(78,0) and exchanged as decimal text.
type EventJournal struct {
	pool Pool
}

// NewEventJournal creates a new EventJournal.
func NewEventJournal(pool Pool) *EventJournal {
	return &EventJournal{pool: pool}
}

// Create inserts one event.
func (r *EventJournal) Create(ctx context.Context, e *domain.Event) error {
	query := `INSERT INTO ledger_events
		(id, event_type, account, asset, amount, target, debt_asset, debt_repaid, protocol_cut, created_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8::numeric, $9::numeric, $10)`

	_, err := r.pool.Exec(ctx, query,
		e.ID, string(e.Type), e.Account.Hex(), e.Asset.Hex(), wad.String(e.Amount),
		addressPtr(e.Target), addressPtr(e.DebtAsset), amountPtr(e.DebtRepaid), amountPtr(e.ProtocolCut),
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger event: %w", err)
	}
	return nil
}

// ListByAccount returns the newest events where account acted or was
// liquidated, newest first.
func (r *EventJournal) ListByAccount(ctx context.Context, account domain.Account, limit int) ([]domain.Event, error) {
	if limit <= 0 || limit > MaxEventPage {
		limit = MaxEventPage
	}

	query := `SELECT id::text, event_type, account, asset, amount::text, target, debt_asset,
			debt_repaid::text, protocol_cut::text, created_at
		FROM ledger_events
		WHERE account = $1 OR target = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, account.Hex(), limit)
	if err != nil {
		return nil, fmt.Errorf("query ledger events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var (
			rawID                   string
			eventType, acct, asset  string
			amount                  string
			target, debtAsset       *string
			debtRepaid, protocolCut *string
			createdAt               time.Time
		)
		if err := rows.Scan(&rawID, &eventType, &acct, &asset, &amount, &target, &debtAsset,
			&debtRepaid, &protocolCut, &createdAt); err != nil {
			return nil, fmt.Errorf("scan ledger event: %w", err)
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("scan ledger event id: %w", err)
		}

		e := domain.Event{
			ID:        id,
			Type:      domain.EventType(eventType),
			Account:   common.HexToAddress(acct),
			Asset:     common.HexToAddress(asset),
			CreatedAt: createdAt,
		}
		if e.Amount, err = wad.ParseAmount(amount); err != nil {
			return nil, fmt.Errorf("event %s: %w", id, err)
		}
		e.Target = parseAddressPtr(target)
		e.DebtAsset = parseAddressPtr(debtAsset)
		if e.DebtRepaid, err = parseAmountPtr(debtRepaid); err != nil {
			return nil, fmt.Errorf("event %s: %w", id, err)
		}
		if e.ProtocolCut, err = parseAmountPtr(protocolCut); err != nil {
			return nil, fmt.Errorf("event %s: %w", id, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger events: %w", err)
	}
	return events, nil
}

func addressPtr(a *common.Address) *string {
	if a == nil {
		return nil
	}
	s := a.Hex()
	return &s
}

func amountPtr(v *uint256.Int) *string {
	if v == nil {
		return nil
	}
	s := v.Dec()
	return &s
}

func parseAddressPtr(s *string) *common.Address {
	if s == nil {
		return nil
	}
	a := common.HexToAddress(*s)
	return &a
}

func parseAmountPtr(s *string) (*uint256.Int, error) {
	if s == nil {
		return nil, nil
	}
	return wad.ParseAmount(*s)
}
