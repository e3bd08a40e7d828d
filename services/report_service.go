package services

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/comanda-app/apperrors"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/store"
)

const (
	dayLayout      = "2006-01-02"
	topProductsMax = 5
	topWaitersMax  = 3
	chartDays      = 7
)

type DayTotal struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

type ProductSales struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Quantity   int             `json:"quantity"`
	Total      decimal.Decimal `json:"total"`
}

type WaiterSales struct {
	WaiterID      string          `json:"waiter_id"`
	WaiterName    string          `json:"waiter_name"`
	TabsCount     int             `json:"tabs_count"`
	Total         decimal.Decimal `json:"total"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

type LowStockAlert struct {
	StockItemID string          `json:"stock_item_id"`
	Name        string          `json:"name"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
}

type StaleTab struct {
	TabID       string    `json:"tab_id"`
	Code        string    `json:"code"`
	TableNumber int       `json:"table_number"`
	OpenedAt    time.Time `json:"opened_at"`
}

type Dashboard struct {
	SalesToday     decimal.Decimal `json:"sales_today"`
	SalesWeek      decimal.Decimal `json:"sales_week"`
	SalesMonth     decimal.Decimal `json:"sales_month"`
	OrdersCount    int             `json:"orders_count"`
	AverageTicket  decimal.Decimal `json:"average_ticket"`
	OccupiedTables int64           `json:"occupied_tables"`
	SalesChart     []DayTotal      `json:"sales_chart"`
	TopProducts    []ProductSales  `json:"top_products"`
	TopWaiters     []WaiterSales   `json:"top_waiters"`
	LowStockAlerts []LowStockAlert `json:"low_stock_alerts"`
	StaleTabs      []StaleTab      `json:"stale_tabs"`
}

type PaymentTotal struct {
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Total         decimal.Decimal      `json:"total"`
}

type SalesDetail struct {
	TabID         string                `json:"tab_id"`
	TabCode       string                `json:"tab_code"`
	TableNumber   int                   `json:"table_number"`
	WaiterName    string                `json:"waiter_name"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	Discount      decimal.Decimal       `json:"discount"`
	PaymentMethod *models.PaymentMethod `json:"payment_method"`
	ClosedAt      *time.Time            `json:"closed_at"`
}

type SalesReport struct {
	From            *time.Time      `json:"from"`
	To              *time.Time      `json:"to"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalOrders     int             `json:"total_orders"`
	TabsCount       int             `json:"tabs_count"`
	AverageTicket   decimal.Decimal `json:"average_ticket"`
	TotalsByPayment []PaymentTotal  `json:"totals_by_payment"`
	DailyTotals     []DayTotal      `json:"daily_totals"`
	Details         []SalesDetail   `json:"details"`
}

type Period struct {
	From *time.Time
	To   *time.Time
}

func (p Period) validate() error {
	if p.From != nil && p.To != nil && p.To.Before(*p.From) {
		return apperrors.InvalidInput("end date is before start date")
	}
	return nil
}

// ReportService aggregates closed tabs and orders for the dashboard and the
// reports. It writes nothing.
type ReportService struct {
	engine
	staleAfter time.Duration
}

func NewReportService(s store.Store, staleAfter time.Duration) *ReportService {
	if staleAfter <= 0 {
		staleAfter = 2 * time.Hour
	}
	return &ReportService{engine: newEngine(s, nil), staleAfter: staleAfter}
}

func (s *ReportService) Dashboard(ctx context.Context, tenantID string) (*Dashboard, error) {
	now := s.now()
	dayStart := startOfDay(now)
	weekStart := startOfWeek(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	staleBefore := now.Add(-s.staleAfter)

	d := &Dashboard{
		SalesToday:     decimal.Zero,
		SalesWeek:      decimal.Zero,
		SalesMonth:     decimal.Zero,
		AverageTicket:  decimal.Zero,
		TopProducts:    []ProductSales{},
		TopWaiters:     []WaiterSales{},
		LowStockAlerts: []LowStockAlert{},
		StaleTabs:      []StaleTab{},
	}
	err := s.store.Read(ctx, tenantID, func(repo store.Repository) error {
		closed, err := repo.ListTabs(store.TabFilter{Status: models.TabClosed})
		if err != nil {
			return err
		}
		chart := make(map[string]decimal.Decimal, chartDays)
		chartStart := dayStart.AddDate(0, 0, -(chartDays - 1))
		revenue := decimal.Zero
		for _, tab := range closed {
			revenue = revenue.Add(tab.TotalAmount)
			if tab.ClosedAt == nil {
				continue
			}
			at := tab.ClosedAt.In(now.Location())
			if !at.Before(dayStart) {
				d.SalesToday = d.SalesToday.Add(tab.TotalAmount)
			}
			if !at.Before(weekStart) {
				d.SalesWeek = d.SalesWeek.Add(tab.TotalAmount)
			}
			if !at.Before(monthStart) {
				d.SalesMonth = d.SalesMonth.Add(tab.TotalAmount)
			}
			if !at.Before(chartStart) {
				key := at.Format(dayLayout)
				chart[key] = chart[key].Add(tab.TotalAmount)
			}
		}
		d.AverageTicket = average(revenue, len(closed))
		for i := chartDays - 1; i >= 0; i-- {
			key := dayStart.AddDate(0, 0, -i).Format(dayLayout)
			d.SalesChart = append(d.SalesChart, DayTotal{Date: key, Total: chart[key]})
		}

		waiters := waiterSales(closed)
		if len(waiters) > topWaitersMax {
			waiters = waiters[:topWaitersMax]
		}
		d.TopWaiters = waiters

		orders, err := repo.ListOrders(store.OrderFilter{})
		if err != nil {
			return err
		}
		d.OrdersCount = len(orders)
		products, err := productSales(repo, orders, "")
		if err != nil {
			return err
		}
		if len(products) > topProductsMax {
			products = products[:topProductsMax]
		}
		d.TopProducts = products

		if d.OccupiedTables, err = repo.CountTables(models.TableOccupied); err != nil {
			return err
		}

		low, err := repo.ListStockItems(true)
		if err != nil {
			return err
		}
		for _, item := range low {
			d.LowStockAlerts = append(d.LowStockAlerts, LowStockAlert{
				StockItemID: item.ID,
				Name:        item.Name,
				Unit:        item.Unit,
				Quantity:    item.Quantity,
				MinQuantity: item.MinQuantity,
			})
		}

		stale, err := repo.ListTabs(store.TabFilter{Status: models.TabOpen, OpenedBefore: &staleBefore})
		if err != nil {
			return err
		}
		for _, tab := range stale {
			st := StaleTab{TabID: tab.ID, Code: tab.Code, OpenedAt: tab.OpenedAt}
			if tab.Table != nil {
				st.TableNumber = tab.Table.Number
			}
			d.StaleTabs = append(d.StaleTabs, st)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// SalesReport summarises the tabs closed within the period.
func (s *ReportService) SalesReport(ctx context.Context, tenantID string, p Period) (*SalesReport, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	r := &SalesReport{
		From:            p.From,
		To:              p.To,
		TotalRevenue:    decimal.Zero,
		AverageTicket:   decimal.Zero,
		TotalsByPayment: []PaymentTotal{},
		DailyTotals:     []DayTotal{},
		Details:         []SalesDetail{},
	}
	err := s.store.Read(ctx, tenantID, func(repo store.Repository) error {
		tabs, err := repo.ListTabs(store.TabFilter{
			Status:     models.TabClosed,
			ClosedFrom: p.From,
			ClosedTo:   p.To,
			WithOrders: true,
		})
		if err != nil {
			return err
		}
		sort.SliceStable(tabs, func(i, j int) bool {
			return closedAt(tabs[i]).After(closedAt(tabs[j]))
		})

		byPayment := make(map[models.PaymentMethod]decimal.Decimal)
		byDay := make(map[string]decimal.Decimal)
		for _, tab := range tabs {
			r.TotalRevenue = r.TotalRevenue.Add(tab.TotalAmount)
			r.TotalOrders += len(tab.Orders)
			if tab.PaymentMethod != nil {
				byPayment[*tab.PaymentMethod] = byPayment[*tab.PaymentMethod].Add(tab.TotalAmount)
			}
			if tab.ClosedAt != nil {
				key := tab.ClosedAt.Format(dayLayout)
				byDay[key] = byDay[key].Add(tab.TotalAmount)
			}
			detail := SalesDetail{
				TabID:         tab.ID,
				TabCode:       tab.Code,
				TotalAmount:   tab.TotalAmount,
				Discount:      tab.Discount,
				PaymentMethod: tab.PaymentMethod,
				ClosedAt:      tab.ClosedAt,
			}
			if tab.Table != nil {
				detail.TableNumber = tab.Table.Number
			}
			if tab.Waiter != nil {
				detail.WaiterName = tab.Waiter.Name
			}
			r.Details = append(r.Details, detail)
		}
		r.TabsCount = len(tabs)
		r.AverageTicket = average(r.TotalRevenue, len(tabs))

		for _, method := range []models.PaymentMethod{models.PaymentCash, models.PaymentPix, models.PaymentDebit, models.PaymentCredit} {
			if total, ok := byPayment[method]; ok {
				r.TotalsByPayment = append(r.TotalsByPayment, PaymentTotal{PaymentMethod: method, Total: total})
			}
		}
		for day, total := range byDay {
			r.DailyTotals = append(r.DailyTotals, DayTotal{Date: day, Total: total})
		}
		sort.Slice(r.DailyTotals, func(i, j int) bool { return r.DailyTotals[i].Date < r.DailyTotals[j].Date })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ProductsReport ranks menu items by quantity sold in orders placed within
// the period, optionally within one category.
func (s *ReportService) ProductsReport(ctx context.Context, tenantID string, p Period, categoryID string) ([]ProductSales, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	var out []ProductSales
	err := s.store.Read(ctx, tenantID, func(repo store.Repository) error {
		orders, err := repo.ListOrders(store.OrderFilter{From: p.From, To: p.To})
		if err != nil {
			return err
		}
		out, err = productSales(repo, orders, categoryID)
		return err
	})
	return out, err
}

// WaitersReport ranks waiters by the revenue of the tabs they closed.
func (s *ReportService) WaitersReport(ctx context.Context, tenantID string, p Period) ([]WaiterSales, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	var out []WaiterSales
	err := s.store.Read(ctx, tenantID, func(repo store.Repository) error {
		tabs, err := repo.ListTabs(store.TabFilter{Status: models.TabClosed, ClosedFrom: p.From, ClosedTo: p.To})
		if err != nil {
			return err
		}
		out = waiterSales(tabs)
		return nil
	})
	return out, err
}

func productSales(repo store.Repository, orders []models.Order, categoryID string) ([]ProductSales, error) {
	categories, err := repo.ListCategories()
	if err != nil {
		return nil, err
	}
	categoryNames := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	byItem := make(map[string]*ProductSales)
	var order []string
	for _, o := range orders {
		if o.Status == models.OrderCancelled {
			continue
		}
		for _, item := range o.Items {
			if item.Status == models.OrderCancelled || item.MenuItem == nil {
				continue
			}
			if categoryID != "" && item.MenuItem.CategoryID != categoryID {
				continue
			}
			entry, ok := byItem[item.MenuItemID]
			if !ok {
				entry = &ProductSales{
					MenuItemID: item.MenuItemID,
					Name:       item.MenuItem.Name,
					Category:   categoryNames[item.MenuItem.CategoryID],
					Total:      decimal.Zero,
				}
				byItem[item.MenuItemID] = entry
				order = append(order, item.MenuItemID)
			}
			entry.Quantity += item.Quantity
			entry.Total = entry.Total.Add(item.TotalPrice)
		}
	}

	out := make([]ProductSales, 0, len(order))
	for _, id := range order {
		out = append(out, *byItem[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity > out[j].Quantity })
	return out, nil
}

func waiterSales(tabs []models.Tab) []WaiterSales {
	byWaiter := make(map[string]*WaiterSales)
	var order []string
	for _, tab := range tabs {
		entry, ok := byWaiter[tab.WaiterID]
		if !ok {
			entry = &WaiterSales{WaiterID: tab.WaiterID, Total: decimal.Zero}
			if tab.Waiter != nil {
				entry.WaiterName = tab.Waiter.Name
			}
			byWaiter[tab.WaiterID] = entry
			order = append(order, tab.WaiterID)
		}
		entry.TabsCount++
		entry.Total = entry.Total.Add(tab.TotalAmount)
	}

	out := make([]WaiterSales, 0, len(order))
	for _, id := range order {
		entry := byWaiter[id]
		entry.AverageTicket = average(entry.Total, entry.TabsCount)
		out = append(out, *entry)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return out
}

func average(total decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n))).Round(2)
}

func closedAt(tab models.Tab) time.Time {
	if tab.ClosedAt == nil {
		return time.Time{}
	}
	return *tab.ClosedAt
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	d := startOfDay(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
