package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"snack-shop/libs"
	"snack-shop/models"
)

type ReportMailer interface {
	Send(to, subject, body string, attachments ...libs.Attachment) error
}

type ReportService struct {
	orders *OrderService
	mailer ReportMailer
}

func NewReportService(orders *OrderService, mailer ReportMailer) *ReportService {
	return &ReportService{orders: orders, mailer: mailer}
}

// ExportCSV renders a history report with a UTF-8 BOM so spreadsheet
// tools pick the right encoding for table labels.
func (s *ReportService) ExportCSV(report models.HistoryReport) ([]byte, error) {
	loc := s.orders.Location()
	var buf bytes.Buffer
	buf.WriteString("\ufeff")

	w := csv.NewWriter(&buf)
	rows := [][]string{{"created_at", "table_number", "order_id", "items", "total_price"}}
	for _, o := range report.Orders {
		rows = append(rows, []string{
			o.CreatedAt.In(loc).Format("2006-01-02 15:04:05"),
			o.TableNumber,
			o.ID,
			ItemSummary(o.Items),
			formatAmount(o.TotalPrice),
		})
	}
	rows = append(rows, []string{"", "", "", "total_revenue", formatAmount(report.TotalRevenue)})

	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ReportService) EmailReport(ctx context.Context, to string, start, end time.Time) error {
	if s.mailer == nil {
		return fmt.Errorf("email is not configured")
	}
	report := s.orders.History(start, end)
	data, err := s.ExportCSV(report)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	name := ReportFilename(report.Start, report.End)
	subject := fmt.Sprintf("Sales report %s", strings.TrimSuffix(name, ".csv"))
	body := fmt.Sprintf("<p>%d paid orders, revenue %s.</p>", len(report.Orders), formatAmount(report.TotalRevenue))
	return s.mailer.Send(to, subject, body, libs.Attachment{Name: name, Data: data})
}

func ReportFilename(start, end time.Time) string {
	return fmt.Sprintf("sales_%s_%s.csv", start.Format("20060102"), end.Format("20060102"))
}

// ItemSummary renders items as "Name xN, Name xN".
func ItemSummary(items []models.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", item.Name, item.Quantity))
	}
	return strings.Join(parts, ", ")
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
