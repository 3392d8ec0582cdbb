package inventory

import (
	"context"

	"go.uber.org/zap"

	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/pastures"
)

// Service implements listing management on top of the repository.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates an inventory service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreateAnimal(ctx context.Context, animal *Animal) (*Animal, error) {
	if animal.Name == "" {
		return nil, &pastures.ValidationError{Field: "name", Reason: "required"}
	}
	if animal.Species == "" {
		return nil, &pastures.ValidationError{Field: "species", Reason: "required"}
	}
	if err := s.repo.CreateAnimal(ctx, animal); err != nil {
		return nil, err
	}
	s.logger.Info("animal listed", zap.Uint("id", animal.ID), zap.String("species", animal.Species))
	return animal, nil
}

func (s *Service) GetAnimal(ctx context.Context, id uint) (*Animal, error) {
	return s.repo.GetAnimal(ctx, id)
}

func (s *Service) ListAnimals(ctx context.Context, filter ListFilter) ([]Animal, error) {
	return s.repo.ListAnimals(ctx, filter)
}

func (s *Service) UpdateAnimal(ctx context.Context, id uint, animal *Animal) (*Animal, error) {
	animal.ID = id
	if err := s.repo.UpdateAnimal(ctx, animal); err != nil {
		return nil, err
	}
	return s.repo.GetAnimal(ctx, id)
}

func (s *Service) DeleteAnimal(ctx context.Context, id uint) error {
	return s.repo.DeleteAnimal(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, product *Product) (*Product, error) {
	if product.Name == "" {
		return nil, &pastures.ValidationError{Field: "name", Reason: "required"}
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info("product listed", zap.Uint("id", product.ID), zap.String("category", product.Category))
	return product, nil
}

func (s *Service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, filter ListFilter) ([]Product, error) {
	return s.repo.ListProducts(ctx, filter)
}

func (s *Service) UpdateProduct(ctx context.Context, id uint, product *Product) (*Product, error) {
	product.ID = id
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	return s.repo.DeleteProduct(ctx, id)
}
