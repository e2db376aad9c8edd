package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/medikart/pos-engine/internal/domain/models"
	"github.com/medikart/pos-engine/internal/repository/mongodb"
	sheetsrepo "github.com/medikart/pos-engine/internal/repository/sheets"
)

const (
	dateLayout      = "2006-01-02"
	salesWriteRange = "Sales!A:F"
)

// Service aggregates the sales journal into daily summaries and exports
// them to a spreadsheet when one is configured.
type Service struct {
	journal mongodb.Repository
	sheets  sheetsrepo.Repository
	logger  *zap.Logger
}

// NewService wires a reporting service. The sheets repository may be nil;
// summaries are then only logged.
func NewService(journal mongodb.Repository, sheets sheetsrepo.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{journal: journal, sheets: sheets, logger: logger}
}

// BuildDailySummary aggregates committed quantities per product for the
// calendar day containing the given instant (in its location).
func (s *Service) BuildDailySummary(ctx context.Context, day time.Time) (models.DailySalesSummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	records, err := s.journal.ListSalesBetween(ctx, start, end)
	if err != nil {
		return models.DailySalesSummary{}, fmt.Errorf("load sales journal: %w", err)
	}

	type productTotal struct {
		name  string
		qty   decimal.Decimal
		lines int
	}
	totals := make(map[string]*productTotal)

	for _, record := range records {
		for _, line := range record.Lines {
			if line.State != string(models.LineStateCommitted) {
				continue
			}
			qty, err := decimal.NewFromString(line.Qty)
			if err != nil {
				s.logger.Debug("skip sale line with invalid quantity",
					zap.String("reference", record.Reference),
					zap.String("qty", line.Qty),
					zap.Error(err))
				continue
			}

			total, ok := totals[line.ProductID]
			if !ok {
				total = &productTotal{name: line.ProductName}
				totals[line.ProductID] = total
			}
			total.qty = total.qty.Add(qty)
			total.lines++
			if total.name == "" {
				total.name = line.ProductName
			}
		}
	}

	summary := models.DailySalesSummary{
		Day:   start,
		Sales: len(records),
	}
	for productID, total := range totals {
		summary.Products = append(summary.Products, models.ProductSalesTotal{
			ProductID:   productID,
			ProductName: total.name,
			TotalQty:    total.qty.String(),
			LineCount:   total.lines,
		})
	}
	sort.Slice(summary.Products, func(i, j int) bool {
		return summary.Products[i].ProductID < summary.Products[j].ProductID
	})

	return summary, nil
}

// ExportDailySummary builds the summary for the given day and appends one
// row per product to the sales sheet. Without a configured sheet the
// summary is logged and the call succeeds.
func (s *Service) ExportDailySummary(ctx context.Context, day time.Time) error {
	summary, err := s.BuildDailySummary(ctx, day)
	if err != nil {
		return err
	}

	s.logger.Info("daily sales summary",
		zap.String("day", summary.Day.Format(dateLayout)),
		zap.Int("sales", summary.Sales),
		zap.Int("products", len(summary.Products)))

	if s.sheets == nil {
		return nil
	}

	rows := make([][]interface{}, 0, len(summary.Products))
	for _, product := range summary.Products {
		rows = append(rows, []interface{}{
			summary.Day.Format(dateLayout),
			product.ProductID,
			product.ProductName,
			product.TotalQty,
			product.LineCount,
			summary.Sales,
		})
	}

	if err := s.sheets.AppendRows(ctx, salesWriteRange, rows); err != nil {
		return fmt.Errorf("export daily summary: %w", err)
	}
	return nil
}
