package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
	"github.com/yeremiapane/comanda-app/apperrors"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/utils"
)

var salesSheetHeader = []string{"Tab", "Table", "Waiter", "Payment", "Closed at", "Discount", "Total"}

// ExportService renders reports and receipts as files.
type ExportService struct {
	reports *ReportService
	tabs    *TabEngine
}

func NewExportService(reports *ReportService, tabs *TabEngine) *ExportService {
	return &ExportService{reports: reports, tabs: tabs}
}

// SalesWorkbook writes the sales report of a period as an XLSX workbook with
// a detail sheet and a per-day summary sheet.
func (s *ExportService) SalesWorkbook(ctx context.Context, tenantID string, p Period) ([]byte, error) {
	report, err := s.reports.SalesReport(ctx, tenantID, p)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sales"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("create sheet: %w", err))
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	for i, h := range salesSheetHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(salesSheetHeader), 1)
	f.SetCellStyle(sheet, "A1", last, headerStyle)

	row := 2
	for _, d := range report.Details {
		payment := ""
		if d.PaymentMethod != nil {
			payment = string(*d.PaymentMethod)
		}
		closed := ""
		if d.ClosedAt != nil {
			closed = d.ClosedAt.Format("2006-01-02 15:04")
		}
		discount, _ := d.Discount.Float64()
		total, _ := d.TotalAmount.Float64()
		values := []interface{}{d.TabCode, d.TableNumber, d.WaiterName, payment, closed, discount, total}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}
		row++
	}
	revenue, _ := report.TotalRevenue.Float64()
	f.SetCellValue(sheet, fmt.Sprintf("F%d", row), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("G%d", row), revenue)
	f.SetCellStyle(sheet, "F2", fmt.Sprintf("G%d", row), moneyStyle)
	f.SetColWidth(sheet, "A", "G", 16)

	const daily = "Daily"
	if _, err := f.NewSheet(daily); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("create sheet: %w", err))
	}
	f.SetCellValue(daily, "A1", "Date")
	f.SetCellValue(daily, "B1", "Total")
	f.SetCellStyle(daily, "A1", "B1", headerStyle)
	for i, day := range report.DailyTotals {
		total, _ := day.Total.Float64()
		f.SetCellValue(daily, fmt.Sprintf("A%d", i+2), day.Date)
		f.SetCellValue(daily, fmt.Sprintf("B%d", i+2), total)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("write workbook: %w", err))
	}
	return buf.Bytes(), nil
}

// TabReceipt renders the receipt of a closed tab as a PDF.
func (s *ExportService) TabReceipt(ctx context.Context, tenantID, tabID string) ([]byte, error) {
	tab, err := s.tabs.GetTab(ctx, tenantID, tabID)
	if err != nil {
		return nil, err
	}
	if tab.Status != models.TabClosed {
		return nil, apperrors.Conflict("tab %s is %s, receipts are issued for closed tabs", tab.Code, tab.Status)
	}

	pdf := fpdf.New("P", "mm", "A5", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Comanda "+tab.Code, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr("Comanda "+tab.Code), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	table, waiter := "-", "-"
	if tab.Table != nil {
		table = fmt.Sprintf("%d", tab.Table.Number)
	}
	if tab.Waiter != nil {
		waiter = tab.Waiter.Name
	}
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Mesa %s  |  Garçom %s", table, waiter)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, receiptPeriod(tab), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(12, 6, "Qtd", "B", 0, "L", false, 0, "")
	pdf.CellFormat(68, 6, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 6, tr("Unitário"), "B", 0, "R", false, 0, "")
	pdf.CellFormat(23, 6, "Total", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, order := range tab.Orders {
		if order.Status == models.OrderCancelled {
			continue
		}
		for _, item := range order.Items {
			if item.Status == models.OrderCancelled {
				continue
			}
			name := item.MenuItemID
			if item.MenuItem != nil {
				name = item.MenuItem.Name
			}
			pdf.CellFormat(12, 5, fmt.Sprintf("%d", item.Quantity), "", 0, "L", false, 0, "")
			pdf.CellFormat(68, 5, tr(name), "", 0, "L", false, 0, "")
			pdf.CellFormat(25, 5, tr(utils.FormatCurrencyBRL(item.UnitPrice)), "", 0, "R", false, 0, "")
			pdf.CellFormat(23, 5, tr(utils.FormatCurrencyBRL(item.TotalPrice)), "", 1, "R", false, 0, "")
		}
	}
	pdf.Ln(2)

	subtotal := itemsTotal(tab.Orders)
	summary := [][2]string{
		{"Subtotal", utils.FormatCurrencyBRL(subtotal)},
		{"Desconto", utils.FormatCurrencyBRL(tab.Discount)},
		{"Total", utils.FormatCurrencyBRL(tab.TotalAmount)},
	}
	for i, line := range summary {
		if i == len(summary)-1 {
			pdf.SetFont("Helvetica", "B", 11)
		}
		pdf.CellFormat(105, 6, line[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(23, 6, tr(line[1]), "", 1, "R", false, 0, "")
	}
	if tab.PaymentMethod != nil {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 6, "Pagamento: "+string(*tab.PaymentMethod), "", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("render receipt: %w", err))
	}
	return buf.Bytes(), nil
}

func receiptPeriod(tab *models.Tab) string {
	out := tab.OpenedAt.Format("02/01/2006 15:04")
	if tab.ClosedAt != nil {
		out += " - " + tab.ClosedAt.Format("15:04")
	}
	return out
}
