package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// EncounterLogRepository persists completed encounter summaries.
// Survivor and casualty lists are stored as JSONB.
type EncounterLogRepository struct {
	db *pgxpool.Pool
}

// NewEncounterLogRepository creates an EncounterLogRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewEncounterLogRepository(db *pgxpool.Pool) *EncounterLogRepository {
	return &EncounterLogRepository{db: db}
}

// Append stores entry. Appending an entry whose ID already exists is a no-op.
//
// Precondition: entry.ID must be a UUID; entry.CampaignID must reference a campaign.
func (r *EncounterLogRepository) Append(ctx context.Context, entry combat.LogEntry) error {
	survivors := entry.Survivors
	if survivors == nil {
		survivors = []combat.Survivor{}
	}
	defeated := entry.Defeated
	if defeated == nil {
		defeated = []combat.Casualty{}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO encounter_logs (id, campaign_id, ended_at, rounds, survivors, defeated)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		entry.ID, entry.CampaignID, entry.EndedAt, entry.Rounds, survivors, defeated,
	)
	if err != nil {
		return fmt.Errorf("inserting encounter log: %w", err)
	}
	return nil
}

// Recent returns up to limit entries for campaignID, most recent first.
// A limit of 0 returns every entry.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *EncounterLogRepository) Recent(ctx context.Context, campaignID int64, limit int) ([]combat.LogEntry, error) {
	query := `
		SELECT id::text, campaign_id, ended_at, rounds, survivors, defeated
		FROM encounter_logs WHERE campaign_id = $1
		ORDER BY ended_at DESC, id`
	args := []any{campaignID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing encounter logs: %w", err)
	}
	defer rows.Close()

	out := make([]combat.LogEntry, 0)
	for rows.Next() {
		var e combat.LogEntry
		if err := rows.Scan(&e.ID, &e.CampaignID, &e.EndedAt, &e.Rounds, &e.Survivors, &e.Defeated); err != nil {
			return nil, fmt.Errorf("scanning encounter log row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
