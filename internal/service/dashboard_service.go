package service

import (
	"context"
	"time"

	"go-shoeroom/internal/repository"
)

type DashboardService interface {
	GetSalesByDay(ctx context.Context, days int) ([]repository.SalesData, error)
	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
}

type dashboardService struct {
	repo              repository.DashboardRepository
	lowStockThreshold int
}

func NewDashboardService(repo repository.DashboardRepository, lowStockThreshold int) DashboardService {
	return &dashboardService{repo: repo, lowStockThreshold: lowStockThreshold}
}

func (s *dashboardService) GetSalesByDay(ctx context.Context, days int) ([]repository.SalesData, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	data, err := s.repo.GetSalesByDay(ctx, startDate, endDate)
	return data, storeError(err)
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	stats, err := s.repo.GetDashboardStats(ctx, s.lowStockThreshold)
	return stats, storeError(err)
}
