package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dhamen.org/internal/claim"
)

const claimColumns = `id, type, contract_id, provider_id, adherent_id, insurer_id,
	total_amount, covered_amount, copay_amount, fraud_score, status, notes,
	created_at, validated_at, updated_at`

// Claims is the pg-backed claim repository the state machine callers load
// from and persist to.
type Claims struct {
	db *sql.DB
}

// Claims returns the claim store view of s.
func (s *Store) Claims() *Claims { return &Claims{db: s.db} }

func (c *Claims) Get(ctx context.Context, id string) (*claim.Claim, error) {
	row := c.db.QueryRowContext(ctx,
		`select `+claimColumns+` from claims where id = $1`, id)

	var (
		rec         claim.Claim
		notes       sql.NullString
		validatedAt sql.NullTime
	)
	err := row.Scan(
		&rec.ID, &rec.Type, &rec.ContractID, &rec.ProviderID, &rec.AdherentID,
		&rec.InsurerID, &rec.TotalAmount, &rec.CoveredAmount, &rec.CopayAmount,
		&rec.FraudScore, &rec.Status, &notes,
		&rec.CreatedAt, &validatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, claim.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.Notes = notes.String
	rec.ValidatedAt = validatedAt.Time
	return &rec, nil
}

// UpdateStatus persists the from -> to transition. The update is guarded on
// the expected current status, so a racing writer that got there first makes
// this one fail with claim.ErrStatusConflict instead of clobbering it.
func (c *Claims) UpdateStatus(ctx context.Context, id string, from, to claim.Status, at time.Time) error {
	res, err := c.db.ExecContext(ctx, `
		update claims
		set status = $3, validated_at = coalesce(validated_at, $4), updated_at = $4
		where id = $1 and status = $2
	`, id, from, to, at)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either the claim is gone or its status moved under us.
		var exists bool
		if err := c.db.QueryRowContext(ctx,
			`select exists(select 1 from claims where id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return claim.ErrNotFound
		}
		return claim.ErrStatusConflict
	}
	return nil
}
