package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medikart/pos-engine/internal/domain/models"
)

type fakeJournal struct {
	records []models.SaleRecord
}

func (f *fakeJournal) SaveSale(_ context.Context, record models.SaleRecord) error {
	f.records = append(f.records, record)
	return nil
}

func (f *fakeJournal) ListSalesBetween(_ context.Context, start, end time.Time) ([]models.SaleRecord, error) {
	var out []models.SaleRecord
	for _, record := range f.records {
		if !record.RecordedAt.Before(start) && record.RecordedAt.Before(end) {
			out = append(out, record)
		}
	}
	return out, nil
}

type fakeSheet struct {
	ranges []string
	rows   [][]interface{}
}

func (f *fakeSheet) AppendRows(_ context.Context, sheetRange string, rows [][]interface{}) error {
	f.ranges = append(f.ranges, sheetRange)
	f.rows = append(f.rows, rows...)
	return nil
}

func saleLine(productID, name, qty string, state models.LineState) models.SaleLineRecord {
	return models.SaleLineRecord{
		LineID:      "line-" + productID,
		ProductID:   productID,
		ProductName: name,
		Qty:         qty,
		State:       string(state),
	}
}

func TestBuildDailySummary(t *testing.T) {
	day := time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC)

	journal := &fakeJournal{records: []models.SaleRecord{
		{
			Reference:  "INV-1",
			Completed:  true,
			RecordedAt: day.Add(-2 * time.Hour),
			Lines: []models.SaleLineRecord{
				saleLine("P1", "Paracetamol", "2", models.LineStateCommitted),
				saleLine("P2", "Ibuprofen", "1", models.LineStateCommitted),
			},
		},
		{
			Reference:  "INV-2",
			Completed:  false,
			RecordedAt: day.Add(-1 * time.Hour),
			Lines: []models.SaleLineRecord{
				saleLine("P1", "Paracetamol", "3", models.LineStateCommitted),
				saleLine("P3", "Aspirin", "5", models.LineStateFailed),
			},
		},
		{
			// Previous day, must not count.
			Reference:  "INV-0",
			Completed:  true,
			RecordedAt: day.Add(-30 * time.Hour),
			Lines: []models.SaleLineRecord{
				saleLine("P1", "Paracetamol", "9", models.LineStateCommitted),
			},
		},
	}}

	svc := NewService(journal, nil, nil)
	summary, err := svc.BuildDailySummary(context.Background(), day)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Sales)
	require.Len(t, summary.Products, 2)

	assert.Equal(t, "P1", summary.Products[0].ProductID)
	assert.Equal(t, "5", summary.Products[0].TotalQty)
	assert.Equal(t, 2, summary.Products[0].LineCount)

	assert.Equal(t, "P2", summary.Products[1].ProductID)
	assert.Equal(t, "1", summary.Products[1].TotalQty)
}

func TestExportDailySummary(t *testing.T) {
	day := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	journal := &fakeJournal{records: []models.SaleRecord{
		{
			Reference:  "INV-1",
			Completed:  true,
			RecordedAt: day,
			Lines: []models.SaleLineRecord{
				saleLine("P1", "Paracetamol", "4", models.LineStateCommitted),
			},
		},
	}}

	t.Run("appends one row per product", func(t *testing.T) {
		sheet := &fakeSheet{}
		svc := NewService(journal, sheet, nil)

		require.NoError(t, svc.ExportDailySummary(context.Background(), day))

		require.Len(t, sheet.rows, 1)
		assert.Equal(t, []interface{}{"2026-08-29", "P1", "Paracetamol", "4", 1, 1}, sheet.rows[0])
		require.Len(t, sheet.ranges, 1)
		assert.Equal(t, salesWriteRange, sheet.ranges[0])
	})

	t.Run("succeeds without a configured sheet", func(t *testing.T) {
		svc := NewService(journal, nil, nil)
		assert.NoError(t, svc.ExportDailySummary(context.Background(), day))
	})
}
