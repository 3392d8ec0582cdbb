package pastures

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hollowbrook-farm/farm-portal/farm-portal-backend/pkg/geo"
)

// memoryRepository is an in-memory Repository used to exercise full
// lifecycles without a database. StartRotation/StartRestPeriod reproduce the
// clear-then-insert contract of the gorm implementation.
type memoryRepository struct {
	nextID    uint
	pastures  map[uint]*Pasture
	rotations map[uint]*GrazingRotation
	rests     map[uint]*PastureRestPeriod
	obs       map[uint]*PastureObservation
	property  *PropertyMap
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		nextID:    1,
		pastures:  make(map[uint]*Pasture),
		rotations: make(map[uint]*GrazingRotation),
		rests:     make(map[uint]*PastureRestPeriod),
		obs:       make(map[uint]*PastureObservation),
	}
}

func (r *memoryRepository) id() uint {
	id := r.nextID
	r.nextID++
	return id
}

func (r *memoryRepository) CreatePasture(_ context.Context, p *Pasture) error {
	p.ID = r.id()
	cp := *p
	r.pastures[p.ID] = &cp
	return nil
}

func (r *memoryRepository) GetPasture(_ context.Context, id uint) (*Pasture, error) {
	p, ok := r.pastures[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryRepository) ListPastures(_ context.Context) ([]Pasture, error) {
	var out []Pasture
	for id := uint(0); id < r.nextID; id++ {
		if p, ok := r.pastures[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memoryRepository) UpdatePasture(_ context.Context, p *Pasture) error {
	if _, ok := r.pastures[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	r.pastures[p.ID] = &cp
	return nil
}

func (r *memoryRepository) DeletePasture(_ context.Context, id uint) error {
	if _, ok := r.pastures[id]; !ok {
		return ErrNotFound
	}
	delete(r.pastures, id)
	for rid, rot := range r.rotations {
		if rot.PastureID == id {
			delete(r.rotations, rid)
		}
	}
	for rid, rest := range r.rests {
		if rest.PastureID == id {
			delete(r.rests, rid)
		}
	}
	for oid, o := range r.obs {
		if o.PastureID == id {
			delete(r.obs, oid)
		}
	}
	return nil
}

func (r *memoryRepository) StartRotation(_ context.Context, rotation *GrazingRotation) error {
	for _, existing := range r.rotations {
		if existing.PastureID == rotation.PastureID && existing.IsCurrent {
			existing.IsCurrent = false
		}
	}
	rotation.ID = r.id()
	cp := *rotation
	r.rotations[rotation.ID] = &cp
	return nil
}

func (r *memoryRepository) GetRotation(_ context.Context, id uint) (*GrazingRotation, error) {
	rot, ok := r.rotations[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rot
	return &cp, nil
}

func (r *memoryRepository) UpdateRotation(_ context.Context, rotation *GrazingRotation) error {
	if _, ok := r.rotations[rotation.ID]; !ok {
		return ErrNotFound
	}
	cp := *rotation
	r.rotations[rotation.ID] = &cp
	return nil
}

func (r *memoryRepository) ListRotations(_ context.Context, pastureID *uint) ([]GrazingRotation, error) {
	var out []GrazingRotation
	for id := uint(0); id < r.nextID; id++ {
		rot, ok := r.rotations[id]
		if !ok {
			continue
		}
		if pastureID != nil && rot.PastureID != *pastureID {
			continue
		}
		out = append(out, *rot)
	}
	return out, nil
}

func (r *memoryRepository) StartRestPeriod(_ context.Context, rest *PastureRestPeriod) error {
	for _, existing := range r.rests {
		if existing.PastureID == rest.PastureID && existing.IsActive {
			existing.IsActive = false
		}
	}
	rest.ID = r.id()
	cp := *rest
	r.rests[rest.ID] = &cp
	return nil
}

func (r *memoryRepository) GetRestPeriod(_ context.Context, id uint) (*PastureRestPeriod, error) {
	rest, ok := r.rests[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rest
	return &cp, nil
}

func (r *memoryRepository) UpdateRestPeriod(_ context.Context, rest *PastureRestPeriod) error {
	if _, ok := r.rests[rest.ID]; !ok {
		return ErrNotFound
	}
	cp := *rest
	r.rests[rest.ID] = &cp
	return nil
}

func (r *memoryRepository) ListRestPeriods(_ context.Context, pastureID *uint) ([]PastureRestPeriod, error) {
	var out []PastureRestPeriod
	for id := uint(0); id < r.nextID; id++ {
		rest, ok := r.rests[id]
		if !ok {
			continue
		}
		if pastureID != nil && rest.PastureID != *pastureID {
			continue
		}
		out = append(out, *rest)
	}
	return out, nil
}

func (r *memoryRepository) CreateObservation(_ context.Context, obs *PastureObservation) error {
	obs.ID = r.id()
	cp := *obs
	r.obs[obs.ID] = &cp
	return nil
}

func (r *memoryRepository) ListObservations(_ context.Context, pastureID *uint) ([]PastureObservation, error) {
	var out []PastureObservation
	for id := uint(0); id < r.nextID; id++ {
		o, ok := r.obs[id]
		if !ok {
			continue
		}
		if pastureID != nil && o.PastureID != *pastureID {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (r *memoryRepository) GetPropertyMap(_ context.Context) (*PropertyMap, error) {
	if r.property == nil {
		return nil, nil
	}
	cp := *r.property
	return &cp, nil
}

func (r *memoryRepository) SavePropertyMap(_ context.Context, pm *PropertyMap) error {
	if r.property != nil {
		pm.ID = r.property.ID
	} else {
		pm.ID = r.id()
	}
	cp := *pm
	r.property = &cp
	return nil
}

func statusOf(t *testing.T, service *Service, pastureID uint) Status {
	t.Helper()
	details, err := service.ListPasturesWithDetails(context.Background())
	require.NoError(t, err)
	for _, d := range details {
		if d.ID == pastureID {
			return d.Status
		}
	}
	t.Fatalf("pasture %d missing from details", pastureID)
	return ""
}

func TestPastureLifecycle(t *testing.T) {
	repo := newMemoryRepository()
	service := NewService(repo, zap.NewNop())
	ctx := context.Background()

	// Create with no geometry: no area.
	pasture, err := service.CreatePasture(ctx, &CreatePastureRequest{Name: "North Field"})
	require.NoError(t, err)

	acres, err := service.ComputeArea(ctx, pasture.ID)
	require.NoError(t, err)
	assert.Nil(t, acres)

	// Draw a 4-vertex rectangle: positive acreage.
	_, err = service.ReplaceShape(ctx, pasture.ID, &ShapeData{
		Type: ShapePolygon,
		Coordinates: []geo.Point{
			{-85.4201, 36.1002},
			{-85.4189, 36.1002},
			{-85.4189, 36.1011},
			{-85.4201, 36.1011},
		},
	})
	require.NoError(t, err)

	acres, err = service.ComputeArea(ctx, pasture.ID)
	require.NoError(t, err)
	require.NotNil(t, acres)
	assert.Greater(t, *acres, 0.0)

	// Geometry round-trips untouched.
	stored, err := service.GetPasture(ctx, pasture.ID)
	require.NoError(t, err)
	shape, err := stored.Shape()
	require.NoError(t, err)
	assert.Equal(t, geo.Point{-85.4201, 36.1002}, shape.Coordinates[0])

	// Start grazing.
	rotation, err := service.StartRotation(ctx, pasture.ID, &StartRotationRequest{AnimalType: "Goats"})
	require.NoError(t, err)
	assert.Equal(t, StatusGrazing, statusOf(t, service, pasture.ID))

	// End it: back to Available, no rest period implied.
	_, err = service.EndRotation(ctx, rotation.ID, &EndRotationRequest{})
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, statusOf(t, service, pasture.ID))

	rests, err := service.ListRestPeriods(ctx, &pasture.ID)
	require.NoError(t, err)
	assert.Empty(t, rests)
}

func TestStartRotation_AtMostOneCurrentPerPasture(t *testing.T) {
	repo := newMemoryRepository()
	service := NewService(repo, zap.NewNop())
	ctx := context.Background()

	pasture, err := service.CreatePasture(ctx, &CreatePastureRequest{Name: "South Field"})
	require.NoError(t, err)
	other, err := service.CreatePasture(ctx, &CreatePastureRequest{Name: "West Field"})
	require.NoError(t, err)

	for _, animal := range []string{"Goats", "Cattle", "Sheep", "Goats"} {
		_, err := service.StartRotation(ctx, pasture.ID, &StartRotationRequest{AnimalType: animal})
		require.NoError(t, err)
	}
	_, err = service.StartRotation(ctx, other.ID, &StartRotationRequest{AnimalType: "Goats"})
	require.NoError(t, err)

	rotations, err := service.ListRotations(ctx, &pasture.ID)
	require.NoError(t, err)
	assert.Len(t, rotations, 4)

	current := 0
	for _, r := range rotations {
		if r.IsCurrent {
			current++
		}
	}
	assert.Equal(t, 1, current)
}

func TestRestPeriodLifecycle(t *testing.T) {
	repo := newMemoryRepository()
	service := NewService(repo, zap.NewNop())
	ctx := context.Background()

	pasture, err := service.CreatePasture(ctx, &CreatePastureRequest{Name: "Creek Bottom"})
	require.NoError(t, err)

	rest, err := service.StartRestPeriod(ctx, pasture.ID, &StartRestRequest{
		StartDate:       time.Now().AddDate(0, 0, -10),
		Reason:          "overgrazed",
		RecoveryActions: []string{"reseed", "drag harrow"},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusResting, statusOf(t, service, pasture.ID))

	var actions []string
	require.NoError(t, json.Unmarshal(rest.RecoveryActions, &actions))
	assert.Equal(t, []string{"reseed", "drag harrow"}, actions)

	details, err := service.ListPasturesWithDetails(ctx)
	require.NoError(t, err)
	require.NotNil(t, details[0].DaysResting)
	assert.Equal(t, 10, *details[0].DaysResting)

	ended, err := service.EndRestPeriod(ctx, rest.ID, &EndRestRequest{})
	require.NoError(t, err)
	assert.False(t, ended.IsActive)
	require.NotNil(t, ended.ActualEndDate)
	assert.Equal(t, StatusAvailable, statusOf(t, service, pasture.ID))
}

func TestDeletePasture_CascadesLedger(t *testing.T) {
	repo := newMemoryRepository()
	service := NewService(repo, zap.NewNop())
	ctx := context.Background()

	pasture, err := service.CreatePasture(ctx, &CreatePastureRequest{Name: "Old Orchard"})
	require.NoError(t, err)
	_, err = service.StartRotation(ctx, pasture.ID, &StartRotationRequest{AnimalType: "Goats"})
	require.NoError(t, err)
	_, err = service.AddObservation(ctx, pasture.ID, &AddObservationRequest{Notes: "thistle patch"})
	require.NoError(t, err)

	require.NoError(t, service.DeletePasture(ctx, pasture.ID))

	rotations, err := service.ListRotations(ctx, &pasture.ID)
	require.NoError(t, err)
	assert.Empty(t, rotations)

	observations, err := service.ListObservations(ctx, &pasture.ID)
	require.NoError(t, err)
	assert.Empty(t, observations)

	_, err = service.GetPasture(ctx, pasture.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPropertyMap_UpsertKeepsSingleRow(t *testing.T) {
	repo := newMemoryRepository()
	service := NewService(repo, zap.NewNop())
	ctx := context.Background()

	zoom := 15
	first := &PropertyMap{Name: "Hollowbrook Farm", MapZoom: &zoom}
	_, err := service.SavePropertyMap(ctx, first)
	require.NoError(t, err)

	zoom16 := 16
	second := &PropertyMap{Name: "Hollowbrook Farm", MapZoom: &zoom16}
	_, err = service.SavePropertyMap(ctx, second)
	require.NoError(t, err)

	pm, err := service.GetPropertyMap(ctx)
	require.NoError(t, err)
	require.NotNil(t, pm)
	assert.Equal(t, first.ID, pm.ID)
	require.NotNil(t, pm.MapZoom)
	assert.Equal(t, 16, *pm.MapZoom)
}
