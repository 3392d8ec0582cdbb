package inventory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/pastures"
)

// ListFilter narrows list queries. Nil fields match everything.
type ListFilter struct {
	IsAvailable *bool
	Category    string
	Species     string
}

// Repository stores listings.
type Repository interface {
	CreateAnimal(ctx context.Context, animal *Animal) error
	GetAnimal(ctx context.Context, id uint) (*Animal, error)
	ListAnimals(ctx context.Context, filter ListFilter) ([]Animal, error)
	UpdateAnimal(ctx context.Context, animal *Animal) error
	DeleteAnimal(ctx context.Context, id uint) error

	CreateProduct(ctx context.Context, product *Product) error
	GetProduct(ctx context.Context, id uint) (*Product, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]Product, error)
	UpdateProduct(ctx context.Context, product *Product) error
	DeleteProduct(ctx context.Context, id uint) error
}

// GormRepository implements Repository on PostgreSQL via gorm.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates an inventory repository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Migrate creates the inventory tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Animal{}, &Product{}); err != nil {
		return fmt.Errorf("migrate inventory tables: %w", err)
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pastures.ErrNotFound
	}
	return err
}

func (r *GormRepository) CreateAnimal(ctx context.Context, animal *Animal) error {
	return r.db.WithContext(ctx).Create(animal).Error
}

func (r *GormRepository) GetAnimal(ctx context.Context, id uint) (*Animal, error) {
	var animal Animal
	if err := r.db.WithContext(ctx).First(&animal, id).Error; err != nil {
		return nil, translate(err)
	}
	return &animal, nil
}

func (r *GormRepository) ListAnimals(ctx context.Context, filter ListFilter) ([]Animal, error) {
	query := r.db.WithContext(ctx).Order("id")
	if filter.IsAvailable != nil {
		query = query.Where("is_available = ?", *filter.IsAvailable)
	}
	if filter.Species != "" {
		query = query.Where("species = ?", filter.Species)
	}
	var animals []Animal
	if err := query.Find(&animals).Error; err != nil {
		return nil, err
	}
	return animals, nil
}

func (r *GormRepository) UpdateAnimal(ctx context.Context, animal *Animal) error {
	result := r.db.WithContext(ctx).Model(&Animal{}).Where("id = ?", animal.ID).Updates(animal)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pastures.ErrNotFound
	}
	return nil
}

func (r *GormRepository) DeleteAnimal(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&Animal{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pastures.ErrNotFound
	}
	return nil
}

func (r *GormRepository) CreateProduct(ctx context.Context, product *Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *GormRepository) GetProduct(ctx context.Context, id uint) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *GormRepository) ListProducts(ctx context.Context, filter ListFilter) ([]Product, error) {
	query := r.db.WithContext(ctx).Order("id")
	if filter.IsAvailable != nil {
		query = query.Where("is_available = ?", *filter.IsAvailable)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	var products []Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GormRepository) UpdateProduct(ctx context.Context, product *Product) error {
	result := r.db.WithContext(ctx).Model(&Product{}).Where("id = ?", product.ID).Updates(product)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pastures.ErrNotFound
	}
	return nil
}

func (r *GormRepository) DeleteProduct(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pastures.ErrNotFound
	}
	return nil
}
