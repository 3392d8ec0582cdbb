package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/pastures"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateAnimal(ctx context.Context, animal *Animal) error {
	return m.Called(ctx, animal).Error(0)
}

func (m *MockRepository) GetAnimal(ctx context.Context, id uint) (*Animal, error) {
	args := m.Called(ctx, id)
	animal, _ := args.Get(0).(*Animal)
	return animal, args.Error(1)
}

func (m *MockRepository) ListAnimals(ctx context.Context, filter ListFilter) ([]Animal, error) {
	args := m.Called(ctx, filter)
	animals, _ := args.Get(0).([]Animal)
	return animals, args.Error(1)
}

func (m *MockRepository) UpdateAnimal(ctx context.Context, animal *Animal) error {
	return m.Called(ctx, animal).Error(0)
}

func (m *MockRepository) DeleteAnimal(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) CreateProduct(ctx context.Context, product *Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockRepository) GetProduct(ctx context.Context, id uint) (*Product, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*Product)
	return product, args.Error(1)
}

func (m *MockRepository) ListProducts(ctx context.Context, filter ListFilter) ([]Product, error) {
	args := m.Called(ctx, filter)
	products, _ := args.Get(0).([]Product)
	return products, args.Error(1)
}

func (m *MockRepository) UpdateProduct(ctx context.Context, product *Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockRepository) DeleteProduct(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func TestCreateAnimal_RequiresNameAndSpecies(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, zap.NewNop())

	_, err := service.CreateAnimal(context.Background(), &Animal{Species: "goat"})
	assert.True(t, pastures.IsValidation(err))

	_, err = service.CreateAnimal(context.Background(), &Animal{Name: "Clover"})
	assert.True(t, pastures.IsValidation(err))

	repo.AssertNotCalled(t, "CreateAnimal")
}

func TestCreateAnimal_Persists(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, zap.NewNop())

	animal := &Animal{Name: "Clover", Species: "goat", Breed: "Kiko"}
	repo.On("CreateAnimal", mock.Anything, animal).Return(nil)

	created, err := service.CreateAnimal(context.Background(), animal)
	require.NoError(t, err)
	assert.Equal(t, "Clover", created.Name)
	repo.AssertExpectations(t)
}

func TestListAnimals_PassesFilterThrough(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, zap.NewNop())

	avail := true
	filter := ListFilter{IsAvailable: &avail, Species: "goat"}
	repo.On("ListAnimals", mock.Anything, filter).Return([]Animal{{ID: 1, Name: "Clover", Species: "goat"}}, nil)

	animals, err := service.ListAnimals(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, animals, 1)
	assert.Equal(t, "Clover", animals[0].Name)
}

func TestCreateProduct_RequiresName(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, zap.NewNop())

	_, err := service.CreateProduct(context.Background(), &Product{Category: "meat"})
	assert.True(t, pastures.IsValidation(err))
	repo.AssertNotCalled(t, "CreateProduct")
}

func TestUpdateProduct_ReturnsFreshRow(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, zap.NewNop())

	price := 12.50
	product := &Product{Name: "Goat milk soap", Price: &price}
	repo.On("UpdateProduct", mock.Anything, mock.MatchedBy(func(p *Product) bool {
		return p.ID == 3
	})).Return(nil)
	repo.On("GetProduct", mock.Anything, uint(3)).Return(&Product{ID: 3, Name: "Goat milk soap", Price: &price}, nil)

	updated, err := service.UpdateProduct(context.Background(), 3, product)
	require.NoError(t, err)
	assert.Equal(t, uint(3), updated.ID)
	repo.AssertExpectations(t)
}
