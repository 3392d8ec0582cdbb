// Package mapview builds the map overlay consumed by the dashboard map and
// routes geometry edits back to the stores. It is the only package allowed to
// convert between the storage order [lng,lat] and the map-library order
// [lat,lng].
package mapview

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/pastures"
	"hollowbrook-farm/farm-portal/farm-portal-backend/pkg/geo"
)

// BoundaryLayerID identifies the property-boundary polygon on the map.
const BoundaryLayerID = "boundary"

const pastureLayerPrefix = "pasture-"

// LatLng is a [latitude, longitude] pair in map-library order.
type LatLng [2]float64

// toMapOrder converts a storage ring to map-library order. This function and
// fromMapOrder are the entire boundary contract; nothing else may swap.
func toMapOrder(ring []geo.Point) []LatLng {
	out := make([]LatLng, len(ring))
	for i, p := range ring {
		out[i] = LatLng{p.Lat(), p.Lng()}
	}
	return out
}

// fromMapOrder converts a map-library ring back to storage order.
func fromMapOrder(ring []LatLng) []geo.Point {
	out := make([]geo.Point, len(ring))
	for i, p := range ring {
		out[i] = geo.Point{p[1], p[0]}
	}
	return out
}

// PastureLayerID returns the stable layer id attached to a pasture polygon,
// replacing the old vertex-count matching heuristic.
func PastureLayerID(pastureID uint) string {
	return fmt.Sprintf("%s%d", pastureLayerPrefix, pastureID)
}

// ParsePastureLayerID inverts PastureLayerID.
func ParsePastureLayerID(layerID string) (uint, bool) {
	raw, ok := strings.CutPrefix(layerID, pastureLayerPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// Feature is one pasture polygon on the overlay.
type Feature struct {
	LayerID   string          `json:"layer_id"`
	PastureID uint            `json:"pasture_id"`
	Name      string          `json:"name"`
	Status    pastures.Status `json:"status"`
	Color     string          `json:"color"`
	Ring      []LatLng        `json:"ring"`
	Acres     *float64        `json:"acres,omitempty"`
}

// Boundary is the optional property-boundary polygon.
type Boundary struct {
	LayerID string   `json:"layer_id"`
	Name    string   `json:"name,omitempty"`
	Ring    []LatLng `json:"ring"`
}

// Overlay is the full map payload.
type Overlay struct {
	Boundary *Boundary `json:"boundary,omitempty"`
	Features []Feature `json:"features"`
	Center   *LatLng   `json:"center,omitempty"`
	Zoom     *int      `json:"zoom,omitempty"`
}

// Service builds overlays and applies geometry edits.
type Service struct {
	pastures *pastures.Service
	logger   *zap.Logger
}

// NewService creates a mapview service.
func NewService(pastureService *pastures.Service, logger *zap.Logger) *Service {
	return &Service{pastures: pastureService, logger: logger}
}

// statusColor maps a derived pasture state to its overlay color. Off-limits
// and needs-attention override the base status colors.
func statusColor(d *pastures.PastureWithDetails) string {
	switch {
	case d.Status == pastures.StatusOffLimits:
		return "gray"
	case d.NeedsAttention:
		return "red"
	case d.Status == pastures.StatusGrazing:
		return "green"
	case d.Status == pastures.StatusResting:
		return "blue"
	default:
		return "yellow"
	}
}

// BuildOverlay assembles the full overlay from the derived pasture state and
// the property map. Pastures without polygon geometry are skipped; they have
// nothing to draw.
func (s *Service) BuildOverlay(ctx context.Context) (*Overlay, error) {
	details, err := s.pastures.ListPasturesWithDetails(ctx)
	if err != nil {
		return nil, err
	}

	overlay := &Overlay{Features: []Feature{}}
	for i := range details {
		d := &details[i]
		shape, err := d.Shape()
		if err != nil {
			return nil, err
		}
		if shape == nil || shape.Type != pastures.ShapePolygon {
			continue
		}
		overlay.Features = append(overlay.Features, Feature{
			LayerID:   PastureLayerID(d.ID),
			PastureID: d.ID,
			Name:      d.Name,
			Status:    d.Status,
			Color:     statusColor(d),
			Ring:      toMapOrder(shape.Coordinates),
			Acres:     geo.RingAreaAcres(shape.Coordinates),
		})
	}

	pm, err := s.pastures.GetPropertyMap(ctx)
	if err != nil {
		return nil, err
	}
	if pm != nil {
		boundary, err := pm.Boundary()
		if err != nil {
			return nil, err
		}
		if boundary != nil && boundary.Type == pastures.ShapePolygon {
			overlay.Boundary = &Boundary{
				LayerID: BoundaryLayerID,
				Name:    pm.Name,
				Ring:    toMapOrder(boundary.Coordinates),
			}
		}
		if pm.MapCenterLat != nil && pm.MapCenterLng != nil {
			center := LatLng{*pm.MapCenterLat, *pm.MapCenterLng}
			overlay.Center = &center
		}
		overlay.Zoom = pm.MapZoom
	}

	return overlay, nil
}

// Geometry edit targets for newly drawn polygons.
const (
	TargetBoundary = "boundary"
	TargetPasture  = "pasture"
)

// GeometryUpdate routes a drawn or edited polygon. Edits to existing layers
// carry LayerID; new draws carry Target plus, for a new pasture, a Name.
type GeometryUpdate struct {
	LayerID string   `json:"layer_id"`
	Target  string   `json:"target"`
	Name    string   `json:"name"`
	Ring    []LatLng `json:"ring"`
}

// GeometryResult reports where the polygon landed.
type GeometryResult struct {
	LayerID   string   `json:"layer_id"`
	PastureID *uint    `json:"pasture_id,omitempty"`
	Acres     *float64 `json:"acres,omitempty"`
}

// ApplyGeometry persists an edited or newly drawn polygon to the matching
// store: the property-map upsert for the boundary layer, a shape replacement
// for an existing pasture layer, or a new pasture for a fresh draw.
func (s *Service) ApplyGeometry(ctx context.Context, update *GeometryUpdate) (*GeometryResult, error) {
	ring := fromMapOrder(update.Ring)
	shape := &pastures.ShapeData{Type: pastures.ShapePolygon, Coordinates: ring}

	switch {
	case update.LayerID == BoundaryLayerID || update.Target == TargetBoundary:
		pm, err := s.pastures.GetPropertyMap(ctx)
		if err != nil {
			return nil, err
		}
		if pm == nil {
			pm = &pastures.PropertyMap{}
		}
		if err := pm.SetBoundary(shape); err != nil {
			return nil, err
		}
		if _, err := s.pastures.SavePropertyMap(ctx, pm); err != nil {
			return nil, err
		}
		s.logger.Info("property boundary updated", zap.Int("vertices", len(ring)))
		return &GeometryResult{LayerID: BoundaryLayerID, Acres: geo.RingAreaAcres(ring)}, nil

	case update.LayerID != "":
		pastureID, ok := ParsePastureLayerID(update.LayerID)
		if !ok {
			return nil, &pastures.ValidationError{Field: "layer_id", Reason: "unknown layer"}
		}
		if _, err := s.pastures.ReplaceShape(ctx, pastureID, shape); err != nil {
			return nil, err
		}
		s.logger.Info("pasture geometry replaced", zap.Uint("pasture_id", pastureID))
		return &GeometryResult{
			LayerID:   update.LayerID,
			PastureID: &pastureID,
			Acres:     geo.RingAreaAcres(ring),
		}, nil

	case update.Target == TargetPasture:
		pasture, err := s.pastures.CreatePasture(ctx, &pastures.CreatePastureRequest{
			Name:  update.Name,
			Shape: shape,
		})
		if err != nil {
			return nil, err
		}
		return &GeometryResult{
			LayerID:   PastureLayerID(pasture.ID),
			PastureID: &pasture.ID,
			Acres:     geo.RingAreaAcres(ring),
		}, nil

	default:
		return nil, &pastures.ValidationError{Field: "target", Reason: "must be boundary or pasture"}
	}
}

// DeleteGeometry removes the polygon behind a layer: clearing the boundary or
// deleting the pasture (with its ledger).
func (s *Service) DeleteGeometry(ctx context.Context, layerID string) error {
	if layerID == BoundaryLayerID {
		pm, err := s.pastures.GetPropertyMap(ctx)
		if err != nil {
			return err
		}
		if pm == nil {
			return pastures.ErrNotFound
		}
		if err := pm.SetBoundary(nil); err != nil {
			return err
		}
		_, err = s.pastures.SavePropertyMap(ctx, pm)
		return err
	}

	pastureID, ok := ParsePastureLayerID(layerID)
	if !ok {
		return &pastures.ValidationError{Field: "layer_id", Reason: "unknown layer"}
	}
	return s.pastures.DeletePasture(ctx, pastureID)
}
