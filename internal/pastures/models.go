package pastures

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"hollowbrook-farm/farm-portal/farm-portal-backend/pkg/geo"
)

// AreaUnit is the unit of a manually entered pasture size. Only acres are
// ever computed from geometry; the other units are accepted but never derived.
type AreaUnit string

const (
	UnitAcres        AreaUnit = "acres"
	UnitSquareFeet   AreaUnit = "sq_ft"
	UnitSquareMeters AreaUnit = "sq_meters"
)

// FencingCondition rates pasture fencing.
type FencingCondition string

const (
	FencingExcellent   FencingCondition = "Excellent"
	FencingGood        FencingCondition = "Good"
	FencingFair        FencingCondition = "Fair"
	FencingPoor        FencingCondition = "Poor"
	FencingNeedsRepair FencingCondition = "Needs Repair"
)

// GrazingPressure describes stocking intensity for a rotation.
type GrazingPressure string

const (
	PressureLight     GrazingPressure = "Light"
	PressureModerate  GrazingPressure = "Moderate"
	PressureHeavy     GrazingPressure = "Heavy"
	PressureIntensive GrazingPressure = "Intensive"
)

// Status is the single display status derived for a pasture.
type Status string

const (
	StatusOffLimits Status = "Off Limits"
	StatusGrazing   Status = "Currently Grazing"
	StatusResting   Status = "Resting"
	StatusAvailable Status = "Available"
)

// offLimitsStatus is the custom-field value that overrides every derived status.
const offLimitsStatus = "Off Limits"

const (
	ShapePolygon = "polygon"
	ShapeSVG     = "svg"
)

// ShapeData is the persisted geometry union: a lng/lat polygon ring or a raw
// SVG path. An absent shape means the geometry has not been drawn yet.
type ShapeData struct {
	Type        string      `json:"type"`
	Coordinates []geo.Point `json:"coordinates,omitempty"`
	SVGPath     string      `json:"svg_path,omitempty"`
}

// CustomFields holds the ad hoc pasture attributes as a typed struct for the
// keys actually used, plus a residual map for anything else so unknown keys
// survive a read-modify-write cycle.
type CustomFields struct {
	Statuses       []string
	GrazingAnimals []string
	Extra          map[string]json.RawMessage
}

// MarshalJSON writes the known keys alongside the residual ones.
func (c CustomFields) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(c.Extra)+2)
	for k, v := range c.Extra {
		out[k] = v
	}
	if c.Statuses != nil {
		raw, err := json.Marshal(c.Statuses)
		if err != nil {
			return nil, err
		}
		out["statuses"] = raw
	}
	if c.GrazingAnimals != nil {
		raw, err := json.Marshal(c.GrazingAnimals)
		if err != nil {
			return nil, err
		}
		out["grazingAnimals"] = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON lifts the known keys out of the open map. The original data
// contains both "grazingAnimals" and the misspelled "grazingAnginals"; both
// decode into GrazingAnimals, with the correct spelling winning.
func (c *CustomFields) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = CustomFields{Extra: make(map[string]json.RawMessage)}
	for k, v := range raw {
		switch k {
		case "statuses":
			if err := json.Unmarshal(v, &c.Statuses); err != nil {
				return fmt.Errorf("custom_fields.statuses: %w", err)
			}
		case "grazingAnimals":
			if err := json.Unmarshal(v, &c.GrazingAnimals); err != nil {
				return fmt.Errorf("custom_fields.grazingAnimals: %w", err)
			}
		case "grazingAnginals":
			if c.GrazingAnimals == nil {
				if err := json.Unmarshal(v, &c.GrazingAnimals); err != nil {
					return fmt.Errorf("custom_fields.grazingAnginals: %w", err)
				}
			}
		default:
			c.Extra[k] = v
		}
	}
	return nil
}

// HasStatus reports whether an explicit status value is present.
func (c CustomFields) HasStatus(status string) bool {
	for _, s := range c.Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Pasture is a named, geometrically bounded grazing area.
type Pasture struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	Name             string            `gorm:"not null" json:"name"`
	Description      string            `json:"description,omitempty"`
	ShapeData        datatypes.JSON    `json:"shape_data,omitempty"`
	AreaSize         *float64          `json:"area_size,omitempty"`
	AreaUnit         AreaUnit          `json:"area_unit,omitempty"`
	QualityRating    *int              `json:"quality_rating,omitempty"`
	ForageType       string            `json:"forage_type,omitempty"`
	WaterSource      bool              `json:"water_source"`
	ShadeAvailable   bool              `json:"shade_available"`
	FencingType      string            `json:"fencing_type,omitempty"`
	FencingCondition *FencingCondition `json:"fencing_condition,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	CustomFields     datatypes.JSON    `json:"custom_fields,omitempty"`
	IsActive         bool              `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Shape decodes the geometry column. Returns nil when no geometry is drawn.
func (p *Pasture) Shape() (*ShapeData, error) {
	if len(p.ShapeData) == 0 {
		return nil, nil
	}
	var shape ShapeData
	if err := json.Unmarshal(p.ShapeData, &shape); err != nil {
		return nil, fmt.Errorf("decode shape_data for pasture %d: %w", p.ID, err)
	}
	return &shape, nil
}

// SetShape replaces the geometry column.
func (p *Pasture) SetShape(shape *ShapeData) error {
	if shape == nil {
		p.ShapeData = nil
		return nil
	}
	raw, err := json.Marshal(shape)
	if err != nil {
		return fmt.Errorf("encode shape_data: %w", err)
	}
	p.ShapeData = datatypes.JSON(raw)
	return nil
}

// Fields decodes the custom-fields column. Missing column decodes to an
// empty struct.
func (p *Pasture) Fields() (CustomFields, error) {
	var fields CustomFields
	if len(p.CustomFields) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(p.CustomFields, &fields); err != nil {
		return fields, fmt.Errorf("decode custom_fields for pasture %d: %w", p.ID, err)
	}
	return fields, nil
}

// SetFields replaces the custom-fields column wholesale. Callers that want to
// preserve unrelated keys must read-merge-write.
func (p *Pasture) SetFields(fields CustomFields) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode custom_fields: %w", err)
	}
	p.CustomFields = datatypes.JSON(raw)
	return nil
}

// GrazingRotation is a ledger entry covering one grazing period on a pasture.
// Rows are never deleted by the end operation; the open-ended row carries
// IsCurrent.
type GrazingRotation struct {
	ID                  uint             `gorm:"primaryKey" json:"id"`
	PastureID           uint             `gorm:"not null;index" json:"pasture_id"`
	StartDate           time.Time        `gorm:"not null" json:"start_date"`
	EndDate             *time.Time       `json:"end_date,omitempty"`
	IsCurrent           bool             `json:"is_current"`
	AnimalType          string           `json:"animal_type,omitempty"`
	AnimalCount         *int             `json:"animal_count,omitempty"`
	GrazingPressure     *GrazingPressure `json:"grazing_pressure,omitempty"`
	PastureQualityStart *int             `json:"pasture_quality_start,omitempty"`
	PastureQualityEnd   *int             `json:"pasture_quality_end,omitempty"`
	Notes               string           `json:"notes,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// PastureRestPeriod is a ledger entry covering one deliberate rest of a
// pasture, symmetric to GrazingRotation with IsActive/ActualEndDate.
type PastureRestPeriod struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	PastureID       uint           `gorm:"not null;index" json:"pasture_id"`
	StartDate       time.Time      `gorm:"not null" json:"start_date"`
	PlannedEndDate  *time.Time     `json:"planned_end_date,omitempty"`
	ActualEndDate   *time.Time     `json:"actual_end_date,omitempty"`
	Reason          string         `json:"reason,omitempty"`
	RecoveryActions datatypes.JSON `json:"recovery_actions,omitempty"`
	IsActive        bool           `json:"is_active"`
	Notes           string         `json:"notes,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// PastureObservation is an append-only field-condition log entry.
type PastureObservation struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	PastureID           uint           `gorm:"not null;index" json:"pasture_id"`
	ObservationDate     time.Time      `gorm:"not null" json:"observation_date"`
	QualityRating       *int           `json:"quality_rating,omitempty"`
	ForageHeight        *float64       `json:"forage_height,omitempty"`
	MoistureLevel       string         `json:"moisture_level,omitempty"`
	WeedPressure        string         `json:"weed_pressure,omitempty"`
	BareSpotsPercentage *float64       `json:"bare_spots_percentage,omitempty"`
	NeedsReseeding      bool           `json:"needs_reseeding"`
	NeedsMowing         bool           `json:"needs_mowing"`
	NeedsFertilizing    bool           `json:"needs_fertilizing"`
	Photos              datatypes.JSON `json:"photos,omitempty"`
	Notes               string         `json:"notes,omitempty"`
	ObservedBy          string         `json:"observed_by,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
}

// PropertyMap is the singleton farm boundary record. The table holds zero or
// one row and is always written through an upsert.
type PropertyMap struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `json:"name,omitempty"`
	TotalArea    *float64       `json:"total_area,omitempty"`
	AreaUnit     AreaUnit       `json:"area_unit,omitempty"`
	BoundaryData datatypes.JSON `json:"boundary_data,omitempty"`
	MapCenterLng *float64       `json:"map_center_lng,omitempty"`
	MapCenterLat *float64       `json:"map_center_lat,omitempty"`
	MapZoom      *int           `json:"map_zoom,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Boundary decodes the boundary geometry. Returns nil when undrawn.
func (m *PropertyMap) Boundary() (*ShapeData, error) {
	if len(m.BoundaryData) == 0 {
		return nil, nil
	}
	var shape ShapeData
	if err := json.Unmarshal(m.BoundaryData, &shape); err != nil {
		return nil, fmt.Errorf("decode boundary_data: %w", err)
	}
	return &shape, nil
}

// SetBoundary replaces the boundary geometry.
func (m *PropertyMap) SetBoundary(shape *ShapeData) error {
	if shape == nil {
		m.BoundaryData = nil
		return nil
	}
	raw, err := json.Marshal(shape)
	if err != nil {
		return fmt.Errorf("encode boundary_data: %w", err)
	}
	m.BoundaryData = datatypes.JSON(raw)
	return nil
}

// PastureWithDetails is the derived view model, recomputed on every fetch and
// never persisted.
type PastureWithDetails struct {
	Pasture
	CurrentRotation *GrazingRotation    `json:"current_rotation,omitempty"`
	RestPeriod      *PastureRestPeriod  `json:"rest_period,omitempty"`
	DaysResting     *int                `json:"days_resting,omitempty"`
	LastObservation *PastureObservation `json:"last_observation,omitempty"`
	Status          Status              `json:"status"`
	NeedsAttention  bool                `json:"needs_attention"`
}
