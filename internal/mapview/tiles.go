package mapview

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/pastures"
	"hollowbrook-farm/farm-portal/farm-portal-backend/pkg/geo"
)

// TileSource is a named slippy-map tile server. URLTemplate carries {z}, {x},
// and {y} placeholders.
type TileSource struct {
	Name        string `json:"name"`
	URLTemplate string `json:"url_template"`
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"max_zoom"`
}

// TileURL expands the template for one tile.
func (s TileSource) TileURL(t Tile) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(t.Z),
		"{x}", strconv.Itoa(t.X),
		"{y}", strconv.Itoa(t.Y),
	)
	return r.Replace(s.URLTemplate)
}

// Tile addresses one slippy-map tile.
type Tile struct {
	Z, X, Y int
}

// tileCoord maps a point to its tile at the given zoom using the standard
// slippy-map formulas.
func tileCoord(p geo.Point, zoom int) (x, y int) {
	n := float64(int(1) << zoom)
	x = int(math.Floor((p.Lng() + 180.0) / 360.0 * n))
	latRad := p.Lat() * math.Pi / 180.0
	y = int(math.Floor((1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n))

	max := int(n) - 1
	x = clampTile(x, max)
	y = clampTile(y, max)
	return x, y
}

func clampTile(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// EnumerateTiles lists every tile covering the ring's bounding box at the
// given zoom. A degenerate ring yields nothing.
func EnumerateTiles(ring []geo.Point, zoom int) []Tile {
	if len(ring) == 0 {
		return nil
	}

	minX, minY := tileCoord(ring[0], zoom)
	maxX, maxY := minX, minY
	for _, p := range ring[1:] {
		x, y := tileCoord(p, zoom)
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}

	tiles := make([]Tile, 0, (maxX-minX+1)*(maxY-minY+1))
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			tiles = append(tiles, Tile{Z: zoom, X: x, Y: y})
		}
	}
	return tiles
}

// Prefetcher warms a tile cache by fetching the tiles covering the property
// boundary. It runs on a schedule from cmd and never sits on a request path.
type Prefetcher struct {
	pastures *pastures.Service
	source   TileSource
	zooms    []int
	maxTiles int
	client   *http.Client
	logger   *zap.Logger
}

// NewPrefetcher creates a warmer over the given source. maxTiles caps the
// whole batch across all zoom levels.
func NewPrefetcher(pastureService *pastures.Service, source TileSource, zooms []int, maxTiles int, logger *zap.Logger) *Prefetcher {
	return &Prefetcher{
		pastures: pastureService,
		source:   source,
		zooms:    zooms,
		maxTiles: maxTiles,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

// Run fetches one bounded batch. Individual tile failures are logged and
// skipped; only a missing boundary or a store failure aborts the run.
func (p *Prefetcher) Run(ctx context.Context) error {
	pm, err := p.pastures.GetPropertyMap(ctx)
	if err != nil {
		return fmt.Errorf("load property map: %w", err)
	}
	if pm == nil {
		p.logger.Info("tile prefetch skipped, no property map configured")
		return nil
	}
	boundary, err := pm.Boundary()
	if err != nil {
		return err
	}
	if boundary == nil || boundary.Type != pastures.ShapePolygon || len(boundary.Coordinates) == 0 {
		p.logger.Info("tile prefetch skipped, no boundary drawn")
		return nil
	}

	var batch []Tile
	for _, zoom := range p.zooms {
		if zoom > p.source.MaxZoom && p.source.MaxZoom > 0 {
			continue
		}
		batch = append(batch, EnumerateTiles(boundary.Coordinates, zoom)...)
	}
	if p.maxTiles > 0 && len(batch) > p.maxTiles {
		batch = batch[:p.maxTiles]
	}

	fetched := 0
	for _, tile := range batch {
		if ctx.Err() != nil {
			break
		}
		if err := p.fetch(ctx, tile); err != nil {
			p.logger.Warn("tile fetch failed",
				zap.Int("z", tile.Z), zap.Int("x", tile.X), zap.Int("y", tile.Y),
				zap.Error(err))
			continue
		}
		fetched++
	}

	p.logger.Info("tile prefetch complete",
		zap.String("source", p.source.Name),
		zap.Int("requested", len(batch)),
		zap.Int("fetched", fetched))
	return nil
}

func (p *Prefetcher) fetch(ctx context.Context, tile Tile) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.source.TileURL(tile), nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tile server returned %d", resp.StatusCode)
	}
	return nil
}
