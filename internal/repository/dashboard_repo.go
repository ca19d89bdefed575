package repository

import (
	"context"
	"time"

	"go-shoeroom/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DashboardRepository interface {
	GetDashboardStats(ctx context.Context, lowStockThreshold int) (*DashboardStats, error)
	GetSalesByDay(ctx context.Context, startDate, endDate time.Time) ([]SalesData, error)
}

// SalesData untuk chart data
type SalesData struct {
	Date    string          `json:"date"`
	Units   int             `json:"units"`
	Revenue decimal.Decimal `json:"revenue"`
}

// DashboardStats untuk overview stats
type DashboardStats struct {
	TotalProducts  int64           `json:"totalProducts"`
	LowStockCount  int64           `json:"lowStockCount"`
	TotalValuation decimal.Decimal `json:"totalValuation"`
	InvoiceCount   int64           `json:"invoiceCount"`
	InvoicedAmount decimal.Decimal `json:"invoicedAmount"`
}

type dashboardRepo struct {
	db *gorm.DB
}

func NewDashboardRepo(db *gorm.DB) DashboardRepository {
	return &dashboardRepo{db}
}

func (r *dashboardRepo) GetDashboardStats(ctx context.Context, lowStockThreshold int) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, translate("count products", err)
	}
	if err := db.Model(&model.Product{}).Where("stock <= ?", lowStockThreshold).Count(&stats.LowStockCount).Error; err != nil {
		return nil, translate("count low stock", err)
	}
	if err := db.Model(&model.Invoice{}).Count(&stats.InvoiceCount).Error; err != nil {
		return nil, translate("count invoices", err)
	}

	// Valuation and invoiced amount are summed in Go to keep decimal precision
	// independent of the SQL dialect.
	var products []model.Product
	if err := db.Select("price", "stock").Find(&products).Error; err != nil {
		return nil, translate("sum valuation", err)
	}
	for _, p := range products {
		stats.TotalValuation = stats.TotalValuation.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Stock))))
	}

	var invoices []model.Invoice
	if err := db.Select("total_amount").Find(&invoices).Error; err != nil {
		return nil, translate("sum invoices", err)
	}
	for _, inv := range invoices {
		stats.InvoicedAmount = stats.InvoicedAmount.Add(inv.TotalAmount)
	}

	return &stats, nil
}

// GetSalesByDay aggregates invoice lines per calendar day (UTC), oldest first.
func (r *dashboardRepo) GetSalesByDay(ctx context.Context, startDate, endDate time.Time) ([]SalesData, error) {
	var invoices []model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Order("created_at ASC").
		Find(&invoices).Error
	if err != nil {
		return nil, translate("sales by day", err)
	}

	results := []SalesData{}
	index := map[string]int{}
	for _, inv := range invoices {
		day := inv.CreatedAt.UTC().Format("2006-01-02")
		i, ok := index[day]
		if !ok {
			i = len(results)
			index[day] = i
			results = append(results, SalesData{Date: day})
		}
		for _, it := range inv.Items {
			results[i].Units += it.Quantity
			results[i].Revenue = results[i].Revenue.Add(it.LineTotal())
		}
	}
	return results, nil
}
