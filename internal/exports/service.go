// Package exports renders per-pasture grazing and observation history as
// Excel or PDF files for back-office record keeping.
package exports

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/pastures"
	"hollowbrook-farm/farm-portal/farm-portal-backend/pkg/storage"
)

// Format selects the output file type.
type Format string

const (
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
)

const (
	contentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF   = "application/pdf"
)

// Result is one rendered export. When the file was uploaded to object storage
// DownloadURL is set and Bytes is empty; otherwise Bytes streams back to the
// caller.
type Result struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Bytes       []byte `json:"-"`
	DownloadURL string `json:"download_url,omitempty"`
}

// HistorySource is the slice of the pasture service the exporter reads from.
type HistorySource interface {
	GetPasture(ctx context.Context, id uint) (*pastures.Pasture, error)
	ComputeArea(ctx context.Context, id uint) (*float64, error)
	ListRotations(ctx context.Context, pastureID *uint) ([]pastures.GrazingRotation, error)
	ListRestPeriods(ctx context.Context, pastureID *uint) ([]pastures.PastureRestPeriod, error)
	ListObservations(ctx context.Context, pastureID *uint) ([]pastures.PastureObservation, error)
}

// Service builds exports over the pasture store.
type Service struct {
	pastures HistorySource
	store    storage.ObjectStore
	urlTTL   time.Duration
	logger   *zap.Logger
}

// NewService creates an export service. store may be nil; exports then stream
// back as attachments instead of landing in a bucket.
func NewService(pastureService HistorySource, store storage.ObjectStore, logger *zap.Logger) *Service {
	return &Service{
		pastures: pastureService,
		store:    store,
		urlTTL:   15 * time.Minute,
		logger:   logger,
	}
}

// ExportPastureHistory renders one pasture's full history in the requested
// format.
func (s *Service) ExportPastureHistory(ctx context.Context, pastureID uint, format Format) (*Result, error) {
	data, err := s.loadHistory(ctx, pastureID)
	if err != nil {
		return nil, err
	}

	var (
		content     []byte
		contentType string
	)
	switch format {
	case FormatExcel:
		content, err = buildExcel(data)
		contentType = contentTypeExcel
	case FormatPDF:
		content, err = buildPDF(data)
		contentType = contentTypePDF
	default:
		return nil, &pastures.ValidationError{Field: "format", Reason: "must be xlsx or pdf"}
	}
	if err != nil {
		return nil, fmt.Errorf("render %s export for pasture %d: %w", format, pastureID, err)
	}

	result := &Result{
		FileName:    fmt.Sprintf("pasture-%d-history-%s.%s", pastureID, time.Now().Format("2006-01-02"), format),
		ContentType: contentType,
	}

	if s.store == nil {
		result.Bytes = content
		return result, nil
	}

	key := fmt.Sprintf("exports/%s/%s", uuid.New().String(), result.FileName)
	if err := s.store.Upload(ctx, key, contentType, bytes.NewReader(content)); err != nil {
		return nil, err
	}
	url, err := s.store.PresignedURL(ctx, key, s.urlTTL)
	if err != nil {
		return nil, err
	}
	result.DownloadURL = url
	s.logger.Info("export uploaded",
		zap.Uint("pasture_id", pastureID),
		zap.String("format", string(format)),
		zap.String("key", key))
	return result, nil
}

func (s *Service) loadHistory(ctx context.Context, pastureID uint) (*historyData, error) {
	pasture, err := s.pastures.GetPasture(ctx, pastureID)
	if err != nil {
		return nil, err
	}
	acres, err := s.pastures.ComputeArea(ctx, pastureID)
	if err != nil {
		return nil, err
	}
	rotations, err := s.pastures.ListRotations(ctx, &pastureID)
	if err != nil {
		return nil, err
	}
	restPeriods, err := s.pastures.ListRestPeriods(ctx, &pastureID)
	if err != nil {
		return nil, err
	}
	observations, err := s.pastures.ListObservations(ctx, &pastureID)
	if err != nil {
		return nil, err
	}
	return &historyData{
		Pasture:      pasture,
		Acres:        acres,
		Rotations:    rotations,
		RestPeriods:  restPeriods,
		Observations: observations,
	}, nil
}
