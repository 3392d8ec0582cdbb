package exports

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/pastures"
)

func fixtureHistory() *historyData {
	rating := 4
	acres := 12.45
	count := 18
	ended := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)
	return &historyData{
		Pasture: &pastures.Pasture{
			ID:            7,
			Name:          "North Field",
			ForageType:    "fescue",
			WaterSource:   true,
			QualityRating: &rating,
		},
		Acres: &acres,
		Rotations: []pastures.GrazingRotation{
			{
				PastureID:   7,
				StartDate:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
				EndDate:     &ended,
				AnimalType:  "Goats",
				AnimalCount: &count,
			},
			{
				PastureID:  7,
				StartDate:  time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
				AnimalType: "Cattle",
				IsCurrent:  true,
			},
		},
		RestPeriods: []pastures.PastureRestPeriod{
			{PastureID: 7, StartDate: time.Date(2026, 4, 21, 0, 0, 0, 0, time.UTC), Reason: "reseeding", IsActive: false},
		},
		Observations: []pastures.PastureObservation{
			{PastureID: 7, ObservationDate: time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), QualityRating: &rating, MoistureLevel: "adequate"},
		},
	}
}

func TestBuildExcel_SheetsAndRows(t *testing.T) {
	content, err := buildExcel(fixtureHistory())
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	sheets := file.GetSheetList()
	assert.Contains(t, sheets, "Summary")
	assert.Contains(t, sheets, "Grazing Rotations")
	assert.Contains(t, sheets, "Rest Periods")
	assert.Contains(t, sheets, "Observations")

	rows, err := file.GetRows("Grazing Rotations")
	require.NoError(t, err)
	// Header plus two ledger rows.
	require.Len(t, rows, 3)
	assert.Equal(t, "Goats", rows[1][2])
	assert.Equal(t, "Cattle", rows[2][2])

	summary, err := file.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "North Field"}, summary[1][:2])
}

func TestBuildPDF_ProducesDocument(t *testing.T) {
	content, err := buildPDF(fixtureHistory())
	require.NoError(t, err)
	require.NotEmpty(t, content)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))
}

// =====================================================
// Service
// =====================================================

type stubSource struct {
	data *historyData
}

func (s *stubSource) GetPasture(context.Context, uint) (*pastures.Pasture, error) {
	return s.data.Pasture, nil
}

func (s *stubSource) ComputeArea(context.Context, uint) (*float64, error) {
	return s.data.Acres, nil
}

func (s *stubSource) ListRotations(context.Context, *uint) ([]pastures.GrazingRotation, error) {
	return s.data.Rotations, nil
}

func (s *stubSource) ListRestPeriods(context.Context, *uint) ([]pastures.PastureRestPeriod, error) {
	return s.data.RestPeriods, nil
}

func (s *stubSource) ListObservations(context.Context, *uint) ([]pastures.PastureObservation, error) {
	return s.data.Observations, nil
}

type stubStore struct {
	keys []string
}

func (s *stubStore) Upload(_ context.Context, key, _ string, body io.Reader) error {
	s.keys = append(s.keys, key)
	_, err := io.Copy(io.Discard, body)
	return err
}

func (s *stubStore) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://files.example.com/" + key, nil
}

func TestExportPastureHistory_StreamsWithoutStore(t *testing.T) {
	service := NewService(&stubSource{data: fixtureHistory()}, nil, zap.NewNop())

	result, err := service.ExportPastureHistory(context.Background(), 7, FormatExcel)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Bytes)
	assert.Empty(t, result.DownloadURL)
	assert.True(t, strings.HasSuffix(result.FileName, ".xlsx"))
	assert.Equal(t, contentTypeExcel, result.ContentType)
}

func TestExportPastureHistory_UploadsWhenStoreConfigured(t *testing.T) {
	store := &stubStore{}
	service := NewService(&stubSource{data: fixtureHistory()}, store, zap.NewNop())

	result, err := service.ExportPastureHistory(context.Background(), 7, FormatPDF)
	require.NoError(t, err)
	assert.Empty(t, result.Bytes)
	require.Len(t, store.keys, 1)
	assert.True(t, strings.HasPrefix(store.keys[0], "exports/"))
	assert.Equal(t, "https://files.example.com/"+store.keys[0], result.DownloadURL)
}

func TestExportPastureHistory_RejectsUnknownFormat(t *testing.T) {
	service := NewService(&stubSource{data: fixtureHistory()}, nil, zap.NewNop())

	_, err := service.ExportPastureHistory(context.Background(), 7, "docx")
	assert.True(t, pastures.IsValidation(err))
}
