package pastures

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"hollowbrook-farm/farm-portal/farm-portal-backend/pkg/geo"
)

// Service implements pasture management on top of the repository.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a pasture service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// CreatePastureRequest carries the fields accepted on create.
type CreatePastureRequest struct {
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Shape            *ShapeData        `json:"shape_data"`
	AreaSize         *float64          `json:"area_size"`
	AreaUnit         AreaUnit          `json:"area_unit"`
	QualityRating    *int              `json:"quality_rating"`
	ForageType       string            `json:"forage_type"`
	WaterSource      bool              `json:"water_source"`
	ShadeAvailable   bool              `json:"shade_available"`
	FencingType      string            `json:"fencing_type"`
	FencingCondition *FencingCondition `json:"fencing_condition"`
	Notes            string            `json:"notes"`
	CustomFields     *CustomFields     `json:"custom_fields"`
}

// UpdatePastureRequest carries a partial update; nil fields stay unchanged.
// CustomFields, when present, replaces the whole map.
type UpdatePastureRequest struct {
	Name             *string           `json:"name"`
	Description      *string           `json:"description"`
	Shape            *ShapeData        `json:"shape_data"`
	AreaSize         *float64          `json:"area_size"`
	AreaUnit         *AreaUnit         `json:"area_unit"`
	QualityRating    *int              `json:"quality_rating"`
	ForageType       *string           `json:"forage_type"`
	WaterSource      *bool             `json:"water_source"`
	ShadeAvailable   *bool             `json:"shade_available"`
	FencingType      *string           `json:"fencing_type"`
	FencingCondition *FencingCondition `json:"fencing_condition"`
	Notes            *string           `json:"notes"`
	CustomFields     *CustomFields     `json:"custom_fields"`
	IsActive         *bool             `json:"is_active"`
}

// CreatePasture validates and stores a new pasture. Name is the only
// required field; geometry may arrive later from the map editor.
func (s *Service) CreatePasture(ctx context.Context, req *CreatePastureRequest) (*Pasture, error) {
	if req.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "required"}
	}

	pasture := &Pasture{
		Name:             req.Name,
		Description:      req.Description,
		AreaSize:         req.AreaSize,
		AreaUnit:         req.AreaUnit,
		QualityRating:    req.QualityRating,
		ForageType:       req.ForageType,
		WaterSource:      req.WaterSource,
		ShadeAvailable:   req.ShadeAvailable,
		FencingType:      req.FencingType,
		FencingCondition: req.FencingCondition,
		Notes:            req.Notes,
		IsActive:         true,
	}
	if err := pasture.SetShape(req.Shape); err != nil {
		return nil, err
	}
	if req.CustomFields != nil {
		if err := pasture.SetFields(*req.CustomFields); err != nil {
			return nil, err
		}
	}

	if err := s.repo.CreatePasture(ctx, pasture); err != nil {
		return nil, err
	}
	s.logger.Info("pasture created", zap.Uint("pasture_id", pasture.ID), zap.String("name", pasture.Name))
	return pasture, nil
}

// GetPasture returns one pasture by id.
func (s *Service) GetPasture(ctx context.Context, id uint) (*Pasture, error) {
	return s.repo.GetPasture(ctx, id)
}

// ListPastures returns all pastures.
func (s *Service) ListPastures(ctx context.Context) ([]Pasture, error) {
	return s.repo.ListPastures(ctx)
}

// UpdatePasture applies a partial update.
func (s *Service) UpdatePasture(ctx context.Context, id uint, req *UpdatePastureRequest) (*Pasture, error) {
	pasture, err := s.repo.GetPasture(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, &ValidationError{Field: "name", Reason: "required"}
		}
		pasture.Name = *req.Name
	}
	if req.Description != nil {
		pasture.Description = *req.Description
	}
	if req.Shape != nil {
		if err := pasture.SetShape(req.Shape); err != nil {
			return nil, err
		}
	}
	if req.AreaSize != nil {
		pasture.AreaSize = req.AreaSize
	}
	if req.AreaUnit != nil {
		pasture.AreaUnit = *req.AreaUnit
	}
	if req.QualityRating != nil {
		pasture.QualityRating = req.QualityRating
	}
	if req.ForageType != nil {
		pasture.ForageType = *req.ForageType
	}
	if req.WaterSource != nil {
		pasture.WaterSource = *req.WaterSource
	}
	if req.ShadeAvailable != nil {
		pasture.ShadeAvailable = *req.ShadeAvailable
	}
	if req.FencingType != nil {
		pasture.FencingType = *req.FencingType
	}
	if req.FencingCondition != nil {
		pasture.FencingCondition = req.FencingCondition
	}
	if req.Notes != nil {
		pasture.Notes = *req.Notes
	}
	if req.CustomFields != nil {
		if err := pasture.SetFields(*req.CustomFields); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		pasture.IsActive = *req.IsActive
	}

	if err := s.repo.UpdatePasture(ctx, pasture); err != nil {
		return nil, err
	}
	return pasture, nil
}

// ReplaceShape swaps in a redrawn geometry, leaving everything else alone.
func (s *Service) ReplaceShape(ctx context.Context, id uint, shape *ShapeData) (*Pasture, error) {
	return s.UpdatePasture(ctx, id, &UpdatePastureRequest{Shape: shape})
}

// DeletePasture removes a pasture and its ledger history.
func (s *Service) DeletePasture(ctx context.Context, id uint) error {
	if err := s.repo.DeletePasture(ctx, id); err != nil {
		return err
	}
	s.logger.Info("pasture deleted", zap.Uint("pasture_id", id))
	return nil
}

// ComputeArea returns the pasture's geometry area in acres, or nil when the
// geometry is undrawn, non-polygonal, or has fewer than 3 vertices.
func (s *Service) ComputeArea(ctx context.Context, id uint) (*float64, error) {
	pasture, err := s.repo.GetPasture(ctx, id)
	if err != nil {
		return nil, err
	}
	shape, err := pasture.Shape()
	if err != nil {
		return nil, err
	}
	if shape == nil || shape.Type != ShapePolygon {
		return nil, nil
	}
	return geo.RingAreaAcres(shape.Coordinates), nil
}

// =====================================================
// Rotation / rest ledger
// =====================================================

// StartRotationRequest begins a grazing period.
type StartRotationRequest struct {
	StartDate           time.Time        `json:"start_date"`
	AnimalType          string           `json:"animal_type"`
	AnimalCount         *int             `json:"animal_count"`
	GrazingPressure     *GrazingPressure `json:"grazing_pressure"`
	PastureQualityStart *int             `json:"pasture_quality_start"`
	Notes               string           `json:"notes"`
}

// EndRotationRequest closes a grazing period.
type EndRotationRequest struct {
	EndDate           time.Time `json:"end_date"`
	PastureQualityEnd *int      `json:"pasture_quality_end"`
	Notes             string    `json:"notes"`
}

// StartRotation opens a new current rotation for the pasture; any prior
// current rotation is closed out of "current" transactionally.
func (s *Service) StartRotation(ctx context.Context, pastureID uint, req *StartRotationRequest) (*GrazingRotation, error) {
	if req.AnimalType == "" {
		return nil, &ValidationError{Field: "animal_type", Reason: "required"}
	}
	if _, err := s.repo.GetPasture(ctx, pastureID); err != nil {
		return nil, err
	}

	start := req.StartDate
	if start.IsZero() {
		start = s.now()
	}
	rotation := &GrazingRotation{
		PastureID:           pastureID,
		StartDate:           start,
		IsCurrent:           true,
		AnimalType:          req.AnimalType,
		AnimalCount:         req.AnimalCount,
		GrazingPressure:     req.GrazingPressure,
		PastureQualityStart: req.PastureQualityStart,
		Notes:               req.Notes,
	}
	if err := s.repo.StartRotation(ctx, rotation); err != nil {
		return nil, err
	}
	s.logger.Info("rotation started",
		zap.Uint("pasture_id", pastureID),
		zap.String("animal_type", req.AnimalType))
	return rotation, nil
}

// EndRotation closes a rotation. It never deletes the row and never starts a
// rest period; resting is a separate explicit action.
func (s *Service) EndRotation(ctx context.Context, rotationID uint, req *EndRotationRequest) (*GrazingRotation, error) {
	rotation, err := s.repo.GetRotation(ctx, rotationID)
	if err != nil {
		return nil, err
	}

	end := req.EndDate
	if end.IsZero() {
		end = s.now()
	}
	rotation.EndDate = &end
	rotation.PastureQualityEnd = req.PastureQualityEnd
	rotation.IsCurrent = false
	if req.Notes != "" {
		rotation.Notes = req.Notes
	}

	if err := s.repo.UpdateRotation(ctx, rotation); err != nil {
		return nil, err
	}
	s.logger.Info("rotation ended", zap.Uint("rotation_id", rotationID))
	return rotation, nil
}

// ListRotations returns the rotation ledger, optionally scoped to a pasture.
func (s *Service) ListRotations(ctx context.Context, pastureID *uint) ([]GrazingRotation, error) {
	return s.repo.ListRotations(ctx, pastureID)
}

// StartRestRequest begins a rest period.
type StartRestRequest struct {
	StartDate       time.Time  `json:"start_date"`
	PlannedEndDate  *time.Time `json:"planned_end_date"`
	Reason          string     `json:"reason"`
	RecoveryActions []string   `json:"recovery_actions"`
	Notes           string     `json:"notes"`
}

// EndRestRequest closes a rest period.
type EndRestRequest struct {
	ActualEndDate time.Time `json:"actual_end_date"`
	Notes         string    `json:"notes"`
}

// StartRestPeriod opens a new active rest period for the pasture.
func (s *Service) StartRestPeriod(ctx context.Context, pastureID uint, req *StartRestRequest) (*PastureRestPeriod, error) {
	if _, err := s.repo.GetPasture(ctx, pastureID); err != nil {
		return nil, err
	}

	start := req.StartDate
	if start.IsZero() {
		start = s.now()
	}
	rest := &PastureRestPeriod{
		PastureID:      pastureID,
		StartDate:      start,
		PlannedEndDate: req.PlannedEndDate,
		Reason:         req.Reason,
		IsActive:       true,
		Notes:          req.Notes,
	}
	if len(req.RecoveryActions) > 0 {
		raw, err := json.Marshal(req.RecoveryActions)
		if err != nil {
			return nil, err
		}
		rest.RecoveryActions = datatypes.JSON(raw)
	}

	if err := s.repo.StartRestPeriod(ctx, rest); err != nil {
		return nil, err
	}
	s.logger.Info("rest period started", zap.Uint("pasture_id", pastureID))
	return rest, nil
}

// EndRestPeriod closes a rest period.
func (s *Service) EndRestPeriod(ctx context.Context, restID uint, req *EndRestRequest) (*PastureRestPeriod, error) {
	rest, err := s.repo.GetRestPeriod(ctx, restID)
	if err != nil {
		return nil, err
	}

	end := req.ActualEndDate
	if end.IsZero() {
		end = s.now()
	}
	rest.ActualEndDate = &end
	rest.IsActive = false
	if req.Notes != "" {
		rest.Notes = req.Notes
	}

	if err := s.repo.UpdateRestPeriod(ctx, rest); err != nil {
		return nil, err
	}
	s.logger.Info("rest period ended", zap.Uint("rest_period_id", restID))
	return rest, nil
}

// ListRestPeriods returns the rest ledger, optionally scoped to a pasture.
func (s *Service) ListRestPeriods(ctx context.Context, pastureID *uint) ([]PastureRestPeriod, error) {
	return s.repo.ListRestPeriods(ctx, pastureID)
}

// AddObservationRequest appends a condition log entry.
type AddObservationRequest struct {
	ObservationDate     time.Time `json:"observation_date"`
	QualityRating       *int      `json:"quality_rating"`
	ForageHeight        *float64  `json:"forage_height"`
	MoistureLevel       string    `json:"moisture_level"`
	WeedPressure        string    `json:"weed_pressure"`
	BareSpotsPercentage *float64  `json:"bare_spots_percentage"`
	NeedsReseeding      bool      `json:"needs_reseeding"`
	NeedsMowing         bool      `json:"needs_mowing"`
	NeedsFertilizing    bool      `json:"needs_fertilizing"`
	Photos              []string  `json:"photos"`
	Notes               string    `json:"notes"`
	ObservedBy          string    `json:"observed_by"`
}

// AddObservation appends to the observation log.
func (s *Service) AddObservation(ctx context.Context, pastureID uint, req *AddObservationRequest) (*PastureObservation, error) {
	if _, err := s.repo.GetPasture(ctx, pastureID); err != nil {
		return nil, err
	}

	date := req.ObservationDate
	if date.IsZero() {
		date = s.now()
	}
	obs := &PastureObservation{
		PastureID:           pastureID,
		ObservationDate:     date,
		QualityRating:       req.QualityRating,
		ForageHeight:        req.ForageHeight,
		MoistureLevel:       req.MoistureLevel,
		WeedPressure:        req.WeedPressure,
		BareSpotsPercentage: req.BareSpotsPercentage,
		NeedsReseeding:      req.NeedsReseeding,
		NeedsMowing:         req.NeedsMowing,
		NeedsFertilizing:    req.NeedsFertilizing,
		Notes:               req.Notes,
		ObservedBy:          req.ObservedBy,
	}
	if len(req.Photos) > 0 {
		raw, err := json.Marshal(req.Photos)
		if err != nil {
			return nil, err
		}
		obs.Photos = datatypes.JSON(raw)
	}

	if err := s.repo.CreateObservation(ctx, obs); err != nil {
		return nil, err
	}
	return obs, nil
}

// ListObservations returns the observation log, optionally scoped to a pasture.
func (s *Service) ListObservations(ctx context.Context, pastureID *uint) ([]PastureObservation, error) {
	return s.repo.ListObservations(ctx, pastureID)
}

// =====================================================
// Property map
// =====================================================

// GetPropertyMap returns the singleton farm record, or nil when none exists.
func (s *Service) GetPropertyMap(ctx context.Context) (*PropertyMap, error) {
	return s.repo.GetPropertyMap(ctx)
}

// SavePropertyMap upserts the singleton farm record.
func (s *Service) SavePropertyMap(ctx context.Context, pm *PropertyMap) (*PropertyMap, error) {
	if err := s.repo.SavePropertyMap(ctx, pm); err != nil {
		return nil, err
	}
	return pm, nil
}

// =====================================================
// Derived state
// =====================================================

// ListPasturesWithDetails joins the pasture table against both ledgers and
// the observation log, recomputing the view model from scratch. O(pastures ×
// ledger rows) — fine at farm scale.
func (s *Service) ListPasturesWithDetails(ctx context.Context) ([]PastureWithDetails, error) {
	pastures, err := s.repo.ListPastures(ctx)
	if err != nil {
		return nil, err
	}
	rotations, err := s.repo.ListRotations(ctx, nil)
	if err != nil {
		return nil, err
	}
	rests, err := s.repo.ListRestPeriods(ctx, nil)
	if err != nil {
		return nil, err
	}
	observations, err := s.repo.ListObservations(ctx, nil)
	if err != nil {
		return nil, err
	}

	now := s.now()
	details := make([]PastureWithDetails, 0, len(pastures))
	for i := range pastures {
		d, err := s.derive(&pastures[i], rotations, rests, observations, now)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, nil
}

// derive resolves one pasture's view model against the full ledgers.
func (s *Service) derive(
	pasture *Pasture,
	rotations []GrazingRotation,
	rests []PastureRestPeriod,
	observations []PastureObservation,
	now time.Time,
) (*PastureWithDetails, error) {
	d := &PastureWithDetails{Pasture: *pasture, Status: StatusAvailable}

	// Current rotation: at most one per the invariant; should the data
	// predate the constraint, the lowest id wins deterministically.
	for i := range rotations {
		r := &rotations[i]
		if r.PastureID != pasture.ID || !r.IsCurrent {
			continue
		}
		if d.CurrentRotation == nil || r.ID < d.CurrentRotation.ID {
			d.CurrentRotation = r
		}
	}

	for i := range rests {
		rp := &rests[i]
		if rp.PastureID != pasture.ID || !rp.IsActive {
			continue
		}
		if d.RestPeriod == nil || rp.ID < d.RestPeriod.ID {
			d.RestPeriod = rp
		}
	}
	if d.RestPeriod != nil {
		days := int(now.Sub(d.RestPeriod.StartDate).Hours() / 24)
		d.DaysResting = &days
	}

	for i := range observations {
		o := &observations[i]
		if o.PastureID != pasture.ID {
			continue
		}
		if d.LastObservation == nil || o.ObservationDate.After(d.LastObservation.ObservationDate) {
			d.LastObservation = o
		}
	}

	fields, err := pasture.Fields()
	if err != nil {
		return nil, err
	}
	switch {
	case fields.HasStatus(offLimitsStatus):
		d.Status = StatusOffLimits
	case d.CurrentRotation != nil:
		d.Status = StatusGrazing
	case d.RestPeriod != nil:
		d.Status = StatusResting
	}

	d.NeedsAttention = pasture.QualityRating != nil && *pasture.QualityRating < 3
	return d, nil
}
