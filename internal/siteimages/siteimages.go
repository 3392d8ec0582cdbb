// Package siteimages maps site placement keys (hero banner, about portrait,
// product shots) to image URLs so the pages stay editable from the back
// office.
package siteimages

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/pastures"
)

// SiteImage is one placement assignment. PlacementKey is the stable handle
// pages look up by.
type SiteImage struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PlacementKey string    `gorm:"uniqueIndex;not null" json:"placement_key"`
	URL          string    `gorm:"not null" json:"url"`
	AltText      string    `json:"alt_text,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store persists placement assignments.
type Store interface {
	Get(ctx context.Context, key string) (*SiteImage, error)
	Upsert(ctx context.Context, image *SiteImage) (*SiteImage, error)
	List(ctx context.Context) ([]SiteImage, error)
}

// GormStore implements Store on PostgreSQL via gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a site-image store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates the site_images table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&SiteImage{}); err != nil {
		return fmt.Errorf("migrate site_images table: %w", err)
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, key string) (*SiteImage, error) {
	var image SiteImage
	err := s.db.WithContext(ctx).Where("placement_key = ?", key).First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pastures.ErrNotFound
		}
		return nil, err
	}
	return &image, nil
}

// Upsert writes the assignment for image.PlacementKey, replacing any existing
// row for that key.
func (s *GormStore) Upsert(ctx context.Context, image *SiteImage) (*SiteImage, error) {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "placement_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"url", "alt_text", "updated_at"}),
	}).Create(image).Error
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, image.PlacementKey)
}

func (s *GormStore) List(ctx context.Context) ([]SiteImage, error) {
	var images []SiteImage
	if err := s.db.WithContext(ctx).Order("placement_key").Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}
