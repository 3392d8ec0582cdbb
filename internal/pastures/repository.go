package pastures

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Repository defines data access for pastures and their ledgers.
type Repository interface {
	CreatePasture(ctx context.Context, pasture *Pasture) error
	GetPasture(ctx context.Context, id uint) (*Pasture, error)
	ListPastures(ctx context.Context) ([]Pasture, error)
	UpdatePasture(ctx context.Context, pasture *Pasture) error
	DeletePasture(ctx context.Context, id uint) error

	StartRotation(ctx context.Context, rotation *GrazingRotation) error
	GetRotation(ctx context.Context, id uint) (*GrazingRotation, error)
	UpdateRotation(ctx context.Context, rotation *GrazingRotation) error
	ListRotations(ctx context.Context, pastureID *uint) ([]GrazingRotation, error)

	StartRestPeriod(ctx context.Context, rest *PastureRestPeriod) error
	GetRestPeriod(ctx context.Context, id uint) (*PastureRestPeriod, error)
	UpdateRestPeriod(ctx context.Context, rest *PastureRestPeriod) error
	ListRestPeriods(ctx context.Context, pastureID *uint) ([]PastureRestPeriod, error)

	CreateObservation(ctx context.Context, obs *PastureObservation) error
	ListObservations(ctx context.Context, pastureID *uint) ([]PastureObservation, error)

	GetPropertyMap(ctx context.Context) (*PropertyMap, error)
	SavePropertyMap(ctx context.Context, pm *PropertyMap) error
}

// GormRepository implements Repository on PostgreSQL via gorm.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a pasture repository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Migrate creates the pasture tables plus the partial unique indexes that
// enforce at most one current rotation and one active rest period per
// pasture. gorm cannot express partial indexes through tags, so they are
// issued as raw statements.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Pasture{},
		&GrazingRotation{},
		&PastureRestPeriod{},
		&PastureObservation{},
		&PropertyMap{},
	); err != nil {
		return fmt.Errorf("migrate pasture tables: %w", err)
	}

	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_one_current_rotation
			ON grazing_rotations (pasture_id) WHERE is_current`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_one_active_rest
			ON pasture_rest_periods (pasture_id) WHERE is_active`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create partial index: %w", err)
		}
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return err
	}
}

// =====================================================
// Pastures
// =====================================================

func (r *GormRepository) CreatePasture(ctx context.Context, pasture *Pasture) error {
	if err := r.db.WithContext(ctx).Create(pasture).Error; err != nil {
		return fmt.Errorf("create pasture: %w", translate(err))
	}
	return nil
}

func (r *GormRepository) GetPasture(ctx context.Context, id uint) (*Pasture, error) {
	var pasture Pasture
	if err := r.db.WithContext(ctx).First(&pasture, id).Error; err != nil {
		return nil, fmt.Errorf("get pasture %d: %w", id, translate(err))
	}
	return &pasture, nil
}

func (r *GormRepository) ListPastures(ctx context.Context) ([]Pasture, error) {
	var pastures []Pasture
	if err := r.db.WithContext(ctx).Order("id").Find(&pastures).Error; err != nil {
		return nil, fmt.Errorf("list pastures: %w", translate(err))
	}
	return pastures, nil
}

func (r *GormRepository) UpdatePasture(ctx context.Context, pasture *Pasture) error {
	if err := r.db.WithContext(ctx).Save(pasture).Error; err != nil {
		return fmt.Errorf("update pasture %d: %w", pasture.ID, translate(err))
	}
	return nil
}

// DeletePasture removes the pasture and its entire ledger history in one
// transaction. The cascade decision is recorded in DESIGN.md.
func (r *GormRepository) DeletePasture(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pasture_id = ?", id).Delete(&GrazingRotation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("pasture_id = ?", id).Delete(&PastureRestPeriod{}).Error; err != nil {
			return err
		}
		if err := tx.Where("pasture_id = ?", id).Delete(&PastureObservation{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Pasture{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete pasture %d: %w", id, translate(err))
	}
	return nil
}

// =====================================================
// Grazing rotations
// =====================================================

// StartRotation clears any existing current rotation for the pasture and
// inserts the new one in a single transaction. The partial unique index is
// the backstop should two sessions race past the clear step.
func (r *GormRepository) StartRotation(ctx context.Context, rotation *GrazingRotation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&GrazingRotation{}).
			Where("pasture_id = ? AND is_current", rotation.PastureID).
			Update("is_current", false).Error; err != nil {
			return err
		}
		rotation.IsCurrent = true
		return tx.Create(rotation).Error
	})
	if err != nil {
		return fmt.Errorf("start rotation for pasture %d: %w", rotation.PastureID, translate(err))
	}
	return nil
}

func (r *GormRepository) GetRotation(ctx context.Context, id uint) (*GrazingRotation, error) {
	var rotation GrazingRotation
	if err := r.db.WithContext(ctx).First(&rotation, id).Error; err != nil {
		return nil, fmt.Errorf("get rotation %d: %w", id, translate(err))
	}
	return &rotation, nil
}

func (r *GormRepository) UpdateRotation(ctx context.Context, rotation *GrazingRotation) error {
	if err := r.db.WithContext(ctx).Save(rotation).Error; err != nil {
		return fmt.Errorf("update rotation %d: %w", rotation.ID, translate(err))
	}
	return nil
}

func (r *GormRepository) ListRotations(ctx context.Context, pastureID *uint) ([]GrazingRotation, error) {
	q := r.db.WithContext(ctx).Order("start_date DESC, id DESC")
	if pastureID != nil {
		q = q.Where("pasture_id = ?", *pastureID)
	}
	var rotations []GrazingRotation
	if err := q.Find(&rotations).Error; err != nil {
		return nil, fmt.Errorf("list rotations: %w", translate(err))
	}
	return rotations, nil
}

// =====================================================
// Rest periods
// =====================================================

// StartRestPeriod mirrors StartRotation with is_active/actual_end_date.
func (r *GormRepository) StartRestPeriod(ctx context.Context, rest *PastureRestPeriod) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&PastureRestPeriod{}).
			Where("pasture_id = ? AND is_active", rest.PastureID).
			Update("is_active", false).Error; err != nil {
			return err
		}
		rest.IsActive = true
		return tx.Create(rest).Error
	})
	if err != nil {
		return fmt.Errorf("start rest period for pasture %d: %w", rest.PastureID, translate(err))
	}
	return nil
}

func (r *GormRepository) GetRestPeriod(ctx context.Context, id uint) (*PastureRestPeriod, error) {
	var rest PastureRestPeriod
	if err := r.db.WithContext(ctx).First(&rest, id).Error; err != nil {
		return nil, fmt.Errorf("get rest period %d: %w", id, translate(err))
	}
	return &rest, nil
}

func (r *GormRepository) UpdateRestPeriod(ctx context.Context, rest *PastureRestPeriod) error {
	if err := r.db.WithContext(ctx).Save(rest).Error; err != nil {
		return fmt.Errorf("update rest period %d: %w", rest.ID, translate(err))
	}
	return nil
}

func (r *GormRepository) ListRestPeriods(ctx context.Context, pastureID *uint) ([]PastureRestPeriod, error) {
	q := r.db.WithContext(ctx).Order("start_date DESC, id DESC")
	if pastureID != nil {
		q = q.Where("pasture_id = ?", *pastureID)
	}
	var rests []PastureRestPeriod
	if err := q.Find(&rests).Error; err != nil {
		return nil, fmt.Errorf("list rest periods: %w", translate(err))
	}
	return rests, nil
}

// =====================================================
// Observations
// =====================================================

func (r *GormRepository) CreateObservation(ctx context.Context, obs *PastureObservation) error {
	if err := r.db.WithContext(ctx).Create(obs).Error; err != nil {
		return fmt.Errorf("create observation: %w", translate(err))
	}
	return nil
}

func (r *GormRepository) ListObservations(ctx context.Context, pastureID *uint) ([]PastureObservation, error) {
	q := r.db.WithContext(ctx).Order("observation_date DESC, id DESC")
	if pastureID != nil {
		q = q.Where("pasture_id = ?", *pastureID)
	}
	var observations []PastureObservation
	if err := q.Find(&observations).Error; err != nil {
		return nil, fmt.Errorf("list observations: %w", translate(err))
	}
	return observations, nil
}

// =====================================================
// Property map
// =====================================================

func (r *GormRepository) GetPropertyMap(ctx context.Context) (*PropertyMap, error) {
	var pm PropertyMap
	err := r.db.WithContext(ctx).Order("id").First(&pm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get property map: %w", err)
	}
	return &pm, nil
}

// SavePropertyMap upserts the singleton row: update when one exists,
// otherwise insert.
func (r *GormRepository) SavePropertyMap(ctx context.Context, pm *PropertyMap) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing PropertyMap
		err := tx.Order("id").First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(pm).Error
		}
		if err != nil {
			return err
		}
		pm.ID = existing.ID
		pm.CreatedAt = existing.CreatedAt
		return tx.Save(pm).Error
	})
	if err != nil {
		return fmt.Errorf("save property map: %w", err)
	}
	return nil
}
