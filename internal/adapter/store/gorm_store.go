package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"adforge/internal/domain/entity"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type campaignRow struct {
	ID            string         `gorm:"primaryKey;type:varchar(36)"`
	OwnerID       string         `gorm:"not null;index:idx_campaigns_owner_created,priority:1"`
	CampaignType  string         `gorm:"not null"`
	OutputMode    string         `gorm:"not null"`
	UserContext   datatypes.JSON `gorm:"not null"`
	Payload       datatypes.JSON `gorm:"not null"`
	Advisories    datatypes.JSON
	Model         string
	PromptVersion string
	CreatedAt     time.Time `gorm:"not null;index:idx_campaigns_owner_created,priority:2"`
}

func (campaignRow) TableName() string { return "campaigns" }

// GormStore persists campaigns in a SQL database with JSON columns.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// OpenPostgres connects to PostgreSQL with a quiet gorm logger.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return db, nil
}

func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&campaignRow{})
}

func (s *GormStore) Save(ctx context.Context, rec *entity.CampaignRecord) error {
	row, err := toRow(rec)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(row).Error
}

func (s *GormStore) Get(ctx context.Context, ownerID, id string) (*entity.CampaignRecord, error) {
	var row campaignRow
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromRow(&row)
}

func (s *GormStore) List(ctx context.Context, ownerID string, limit int) ([]*entity.CampaignRecord, error) {
	var rows []campaignRow
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*entity.CampaignRecord, 0, len(rows))
	for i := range rows {
		rec, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *GormStore) Delete(ctx context.Context, ownerID, id string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&campaignRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return entity.ErrResourceNotFound
	}
	return nil
}

func toRow(rec *entity.CampaignRecord) (*campaignRow, error) {
	uc, err := json.Marshal(rec.UserContext)
	if err != nil {
		return nil, fmt.Errorf("encode user context: %w", err)
	}
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	advisories, err := json.Marshal(rec.Advisories)
	if err != nil {
		return nil, fmt.Errorf("encode advisories: %w", err)
	}
	return &campaignRow{
		ID:            rec.ID,
		OwnerID:       rec.OwnerID,
		CampaignType:  string(rec.CampaignType),
		OutputMode:    rec.OutputMode,
		UserContext:   datatypes.JSON(uc),
		Payload:       datatypes.JSON(payload),
		Advisories:    datatypes.JSON(advisories),
		Model:         rec.Model,
		PromptVersion: rec.PromptVersion,
		CreatedAt:     rec.CreatedAt,
	}, nil
}

func fromRow(row *campaignRow) (*entity.CampaignRecord, error) {
	rec := &entity.CampaignRecord{
		ID:            row.ID,
		OwnerID:       row.OwnerID,
		CampaignType:  entity.CampaignType(row.CampaignType),
		OutputMode:    row.OutputMode,
		Model:         row.Model,
		PromptVersion: row.PromptVersion,
		CreatedAt:     row.CreatedAt.UTC(),
	}
	if err := json.Unmarshal(row.UserContext, &rec.UserContext); err != nil {
		return nil, fmt.Errorf("decode user context of %s: %w", row.ID, err)
	}
	if err := json.Unmarshal(row.Payload, &rec.Payload); err != nil {
		return nil, fmt.Errorf("decode payload of %s: %w", row.ID, err)
	}
	if len(row.Advisories) > 0 {
		if err := json.Unmarshal(row.Advisories, &rec.Advisories); err != nil {
			return nil, fmt.Errorf("decode advisories of %s: %w", row.ID, err)
		}
	}
	return rec, nil
}
