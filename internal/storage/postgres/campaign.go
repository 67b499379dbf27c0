package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/skirmish/internal/game/campaign"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// CampaignRepository provides campaign persistence and the combat-active flag.
type CampaignRepository struct {
	db *pgxpool.Pool
}

// NewCampaignRepository creates a CampaignRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCampaignRepository(db *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create inserts a campaign.
//
// Postcondition: Returns the campaign with ID set, or campaign.ErrNameTaken.
func (r *CampaignRepository) Create(ctx context.Context, name string) (*campaign.Campaign, error) {
	c := &campaign.Campaign{Name: name}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO campaigns (name) VALUES ($1)
		RETURNING id, name, combat_active, created_at`,
		name,
	).Scan(&c.ID, &c.Name, &c.CombatActive, &c.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, campaign.ErrNameTaken
		}
		return nil, fmt.Errorf("inserting campaign: %w", err)
	}
	return c, nil
}

// GetByID retrieves a campaign by its primary key.
//
// Postcondition: Returns the Campaign or campaign.ErrNotFound.
func (r *CampaignRepository) GetByID(ctx context.Context, id int64) (*campaign.Campaign, error) {
	var c campaign.Campaign
	err := r.db.QueryRow(ctx, `
		SELECT id, name, combat_active, created_at FROM campaigns WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.CombatActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, campaign.ErrNotFound
		}
		return nil, fmt.Errorf("querying campaign: %w", err)
	}
	return &c, nil
}

// GetByName retrieves a campaign by its unique name.
//
// Postcondition: Returns the Campaign or campaign.ErrNotFound.
func (r *CampaignRepository) GetByName(ctx context.Context, name string) (*campaign.Campaign, error) {
	var c campaign.Campaign
	err := r.db.QueryRow(ctx, `
		SELECT id, name, combat_active, created_at FROM campaigns WHERE name = $1`,
		name,
	).Scan(&c.ID, &c.Name, &c.CombatActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, campaign.ErrNotFound
		}
		return nil, fmt.Errorf("querying campaign: %w", err)
	}
	return &c, nil
}

// SetCombatActive raises or clears the campaign's combat flag.
//
// Postcondition: Returns nil on success, campaign.ErrNotFound if no row updated.
func (r *CampaignRepository) SetCombatActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE campaigns SET combat_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("setting combat flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return campaign.ErrNotFound
	}
	return nil
}

// IsCombatActive reports the campaign's combat flag.
//
// Postcondition: Returns the flag or campaign.ErrNotFound.
func (r *CampaignRepository) IsCombatActive(ctx context.Context, id int64) (bool, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return c.CombatActive, nil
}

// Signal binds the combat flag of one campaign to the encounter engine.
func (r *CampaignRepository) Signal(campaignID int64) combat.CombatSignal {
	return campaignSignal{repo: r, id: campaignID}
}

type campaignSignal struct {
	repo *CampaignRepository
	id   int64
}

func (s campaignSignal) SetCombatActive(ctx context.Context, active bool) error {
	return s.repo.SetCombatActive(ctx, s.id, active)
}
