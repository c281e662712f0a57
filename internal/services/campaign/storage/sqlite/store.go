// Package sqlite persists created campaigns in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/impulso-music/impulso/internal/platform/storage/sqlitemigrate"
	"github.com/impulso-music/impulso/internal/services/campaign/domain/wizard"
	"github.com/impulso-music/impulso/internal/services/campaign/storage"
	"github.com/impulso-music/impulso/internal/services/campaign/storage/sqlite/migrations"
)

// Store implements storage.CampaignStore on SQLite.
type Store struct {
	db *sql.DB
}

// Open opens the database at path, applies migrations, and returns a store.
// Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(db, migrations.Files()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply campaign migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

const campaignColumns = `id, user_id, platform, track_id, track_name, artist_name,
artwork_url, genre, language, moods, observation,
subtotal_cents, fee_cents, discount_cents, final_cents, coupon_code,
payment_status, created_at, updated_at`

// PutCampaign inserts or replaces a campaign record.
func (s *Store) PutCampaign(ctx context.Context, record storage.CampaignRecord) error {
	moods, err := json.Marshal(record.Moods)
	if err != nil {
		return fmt.Errorf("encode campaign moods: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT OR REPLACE INTO campaigns (`+campaignColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.UserID,
		record.Platform.Label(),
		record.TrackID,
		record.TrackName,
		record.ArtistName,
		record.ArtworkURL,
		record.Genre,
		record.Language,
		string(moods),
		record.Observation,
		record.SubtotalCents,
		record.FeeCents,
		record.DiscountCents,
		record.FinalCents,
		record.CouponCode,
		string(record.PaymentStatus),
		record.CreatedAt.UTC().UnixMilli(),
		record.UpdatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("store campaign %s: %w", record.ID, err)
	}
	return nil
}

// GetCampaign fetches one campaign by id.
func (s *Store) GetCampaign(ctx context.Context, campaignID string) (storage.CampaignRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = ?`, campaignID)
	record, err := scanCampaign(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.CampaignRecord{}, storage.ErrNotFound
		}
		return storage.CampaignRecord{}, fmt.Errorf("fetch campaign %s: %w", campaignID, err)
	}
	return record, nil
}

// ListCampaignsByUser returns a user's campaigns, most recent first.
func (s *Store) ListCampaignsByUser(ctx context.Context, userID string) ([]storage.CampaignRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list campaigns for user %s: %w", userID, err)
	}
	defer rows.Close()

	var records []storage.CampaignRecord
	for rows.Next() {
		record, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaign rows: %w", err)
	}
	return records, nil
}

// UpdatePaymentStatus moves a campaign to a new payment status.
func (s *Store) UpdatePaymentStatus(ctx context.Context, campaignID string, status storage.PaymentStatus, updatedAt time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE campaigns SET payment_status = ?, updated_at = ? WHERE id = ?`,
		string(status), updatedAt.UTC().UnixMilli(), campaignID)
	if err != nil {
		return fmt.Errorf("update payment status for campaign %s: %w", campaignID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check payment status update for campaign %s: %w", campaignID, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (storage.CampaignRecord, error) {
	var (
		record          storage.CampaignRecord
		platform        string
		moods           string
		status          string
		createdAtMillis int64
		updatedAtMillis int64
	)
	err := row.Scan(
		&record.ID,
		&record.UserID,
		&platform,
		&record.TrackID,
		&record.TrackName,
		&record.ArtistName,
		&record.ArtworkURL,
		&record.Genre,
		&record.Language,
		&moods,
		&record.Observation,
		&record.SubtotalCents,
		&record.FeeCents,
		&record.DiscountCents,
		&record.FinalCents,
		&record.CouponCode,
		&status,
		&createdAtMillis,
		&updatedAtMillis,
	)
	if err != nil {
		return storage.CampaignRecord{}, err
	}

	parsed, err := wizard.PlatformFromLabel(platform)
	if err != nil {
		return storage.CampaignRecord{}, fmt.Errorf("decode campaign platform: %w", err)
	}
	record.Platform = parsed
	if err := json.Unmarshal([]byte(moods), &record.Moods); err != nil {
		return storage.CampaignRecord{}, fmt.Errorf("decode campaign moods: %w", err)
	}
	record.PaymentStatus = storage.PaymentStatus(status)
	record.CreatedAt = time.UnixMilli(createdAtMillis).UTC()
	record.UpdatedAt = time.UnixMilli(updatedAtMillis).UTC()
	return record, nil
}
