package service

import (
	"context"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/shopspring/decimal"
)

// DashboardResponse aggregates the landing-page counters.
type DashboardResponse struct {
	Users          int64            `json:"users"`
	Materials      int64            `json:"materials"`
	Products       int64            `json:"products"`
	Orders         int64            `json:"orders"`
	OrdersByStatus map[string]int64 `json:"orders_by_status"`
	StockValue     string           `json:"stock_value"` // Σ material cost × stock
}

type DashboardService interface {
	GetDashboard(ctx context.Context) (*DashboardResponse, error)
}

type dashboardService struct {
	userRepo     repository.UserRepository
	materialRepo repository.MaterialRepository
	productRepo  repository.ProductRepository
	orderRepo    repository.OrderRepository
}

func NewDashboardService(
	userRepo repository.UserRepository,
	materialRepo repository.MaterialRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
) DashboardService {
	return &dashboardService{
		userRepo:     userRepo,
		materialRepo: materialRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context) (*DashboardResponse, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	materialCount, err := s.materialRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	statusCounts := make(map[string]int64, 3)
	for _, status := range []model.OrderStatus{model.OrderStatusPending, model.OrderStatusInProgress, model.OrderStatusCompleted} {
		statusCounts[string(status)] = byStatus[status]
	}

	materials, err := s.materialRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	stockValue := decimal.Zero
	for _, m := range materials {
		stockValue = stockValue.Add(m.Cost.Mul(m.Stock))
	}

	return &DashboardResponse{
		Users:          users,
		Materials:      materialCount,
		Products:       products,
		Orders:         orders,
		OrdersByStatus: statusCounts,
		StockValue:     stockValue.StringFixed(2),
	}, nil
}
