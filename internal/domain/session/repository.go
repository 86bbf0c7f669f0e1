package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressRepository is the GORM-backed ProgressStore. One row per
// (session token, progress key); the payload is the JSON recovery blob.
type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

type progressModel struct {
	SessionToken string    `gorm:"column:session_token;primaryKey"`
	Key          string    `gorm:"column:key;primaryKey"`
	Payload      []byte    `gorm:"column:payload"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (progressModel) TableName() string { return "funnel_progress" }

// AutoMigrate creates the funnel_progress table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&progressModel{})
}

func (r *ProgressRepository) Save(ctx context.Context, token, funnelID string, rec *ProgressRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	m := progressModel{
		SessionToken: token,
		Key:          ProgressKey(funnelID),
		Payload:      payload,
		UpdatedAt:    time.Now(),
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_token"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		log.Printf("progress_save_failed token=%s key=%s error=%q", token, m.Key, err)
	}
	return err
}

func (r *ProgressRepository) Load(ctx context.Context, token, funnelID string) (*ProgressRecord, error) {
	var m progressModel
	err := r.db.WithContext(ctx).
		Where("session_token = ? AND key = ?", token, ProgressKey(funnelID)).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec ProgressRecord
	if err := json.Unmarshal(m.Payload, &rec); err != nil {
		// Malformed rows are treated as a cache miss and dropped so the
		// next save starts clean.
		log.Printf("progress_payload_malformed token=%s key=%s error=%q", token, m.Key, err)
		_ = r.Clear(ctx, token, funnelID)
		return nil, nil
	}
	return &rec, nil
}

func (r *ProgressRepository) Clear(ctx context.Context, token, funnelID string) error {
	return r.db.WithContext(ctx).
		Where("session_token = ? AND key = ?", token, ProgressKey(funnelID)).
		Delete(&progressModel{}).Error
}

// DeleteStale removes progress rows older than the cutoff. Abandoned
// sessions never clear their own rows, so a cleanup job calls this.
func (r *ProgressRepository) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("updated_at < ?", olderThan).
		Delete(&progressModel{})
	return res.RowsAffected, res.Error
}
