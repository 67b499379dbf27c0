package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/skirmish/internal/game/character"
)

const characterColumns = `id, campaign_id, name, class, level, player,
	max_hp, current_hp, armor_class, initiative_modifier, created_at, updated_at`

// CharacterRepository is the persistent party roster.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

func scanCharacter(row pgx.Row) (*character.Character, error) {
	var c character.Character
	err := row.Scan(
		&c.ID, &c.CampaignID, &c.Name, &c.Class, &c.Level, &c.Player,
		&c.MaxHP, &c.CurrentHP, &c.ArmorClass, &c.InitiativeModifier,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new character and returns it with ID and timestamps set.
//
// Precondition: c.CampaignID must reference an existing campaign.
// Postcondition: Returns the created character with ID set, or
// character.ErrNameTaken when the campaign already has a character by that name.
func (r *CharacterRepository) Create(ctx context.Context, c *character.Character) (*character.Character, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	out, err := scanCharacter(r.db.QueryRow(ctx, `
		INSERT INTO characters
			(campaign_id, name, class, level, player, max_hp, current_hp, armor_class, initiative_modifier)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING `+characterColumns,
		c.CampaignID, c.Name, c.Class, c.Level, c.Player,
		c.MaxHP, c.CurrentHP, c.ArmorClass, c.InitiativeModifier,
	))
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, character.ErrNameTaken
		}
		return nil, fmt.Errorf("inserting character: %w", err)
	}
	return out, nil
}

// ListByCampaign returns the party for campaignID, ordered by creation.
//
// Precondition: campaignID must be > 0.
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CharacterRepository) ListByCampaign(ctx context.Context, campaignID int64) ([]*character.Character, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+characterColumns+`
		FROM characters WHERE campaign_id = $1 ORDER BY created_at ASC, id ASC`,
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	chars := make([]*character.Character, 0)
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		chars = append(chars, c)
	}
	return chars, rows.Err()
}

// GetByID retrieves a character by its primary key.
//
// Precondition: id must be > 0.
// Postcondition: Returns the Character or character.ErrNotFound.
func (r *CharacterRepository) GetByID(ctx context.Context, id int64) (*character.Character, error) {
	c, err := scanCharacter(r.db.QueryRow(ctx, `
		SELECT `+characterColumns+` FROM characters WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, character.ErrNotFound
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	return c, nil
}

// WriteCurrentHP stores the hit points a character finished an encounter with.
// The value is clamped to [0, max_hp] in SQL so a stale encounter cannot
// violate the table constraint.
//
// Precondition: id must be > 0.
// Postcondition: Returns nil on success, character.ErrNotFound if no row updated.
func (r *CharacterRepository) WriteCurrentHP(ctx context.Context, id int64, hp int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE characters
		SET current_hp = LEAST(GREATEST($2, 0), max_hp), updated_at = NOW()
		WHERE id = $1`,
		id, hp,
	)
	if err != nil {
		return fmt.Errorf("writing character hp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return character.ErrNotFound
	}
	return nil
}
