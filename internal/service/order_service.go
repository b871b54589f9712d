package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/pricing"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderProductRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gte=0"`
}

type OrderLeftoverRequest struct {
	MaterialID string `json:"material_id" binding:"required"`
	Quantity   string `json:"quantity" binding:"required"`
}

type CreateOrderRequest struct {
	OrderNumber string                 `json:"order_number" binding:"required"`
	Status      string                 `json:"status"`
	Products    []OrderProductRequest  `json:"products"`
	Leftovers   []OrderLeftoverRequest `json:"leftovers"`
}

type UpdateOrderRequest struct {
	OrderNumber string                 `json:"order_number" binding:"required"`
	Status      string                 `json:"status" binding:"required"`
	Products    []OrderProductRequest  `json:"products"`
	Leftovers   []OrderLeftoverRequest `json:"leftovers"`
}

type OrderProductResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type OrderLeftoverResponse struct {
	MaterialID string `json:"material_id"`
	Quantity   string `json:"quantity"`
}

type OrderResponse struct {
	ID          string                  `json:"id"`
	OrderNumber string                  `json:"order_number"`
	Products    []OrderProductResponse  `json:"products"`
	Status      string                  `json:"status"`
	TotalCost   string                  `json:"total_cost"`
	Leftovers   []OrderLeftoverResponse `json:"leftovers"`
	CreatedAt   string                  `json:"created_at"`
	CompletedAt *string                 `json:"completed_at,omitempty"`
}

// OrderCostResponse is the live recomputation of an order's cost from
// current prices, returned next to the stored snapshot for comparison.
type OrderCostResponse struct {
	OrderID      string `json:"order_id"`
	SnapshotCost string `json:"snapshot_cost"`
	CurrentCost  string `json:"current_cost"`
}

type OrderService interface {
	ListOrders(ctx context.Context, page, limit int, status string) ([]OrderResponse, int64, error)
	GetOrderByID(ctx context.Context, id string) (*OrderResponse, error)
	CreateOrder(ctx context.Context, actorID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error)
	UpdateOrder(ctx context.Context, actorID uuid.UUID, id string, req UpdateOrderRequest) (*OrderResponse, error)
	DeleteOrder(ctx context.Context, actorID uuid.UUID, id string) error
	Cost(ctx context.Context, id string) (*OrderCostResponse, error)
	ExportRows(ctx context.Context) ([][]string, error)
}

type orderService struct {
	repo         repository.OrderRepository
	productRepo  repository.ProductRepository
	materialRepo repository.MaterialRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewOrderService(
	repo repository.OrderRepository,
	productRepo repository.ProductRepository,
	materialRepo repository.MaterialRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) OrderService {
	return &orderService{
		repo:         repo,
		productRepo:  productRepo,
		materialRepo: materialRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

func mapOrderToResponse(o *model.Order) *OrderResponse {
	products := make([]OrderProductResponse, 0, len(o.Products))
	for _, line := range o.Products {
		products = append(products, OrderProductResponse{
			ProductID: line.ProductID.String(),
			Quantity:  line.Quantity,
		})
	}
	leftovers := make([]OrderLeftoverResponse, 0, len(o.Leftovers))
	for _, line := range o.Leftovers {
		leftovers = append(leftovers, OrderLeftoverResponse{
			MaterialID: line.MaterialID.String(),
			Quantity:   line.Quantity.String(),
		})
	}

	res := &OrderResponse{
		ID:          o.ID.String(),
		OrderNumber: o.OrderNumber,
		Products:    products,
		Status:      string(o.Status),
		TotalCost:   o.TotalCost.String(),
		Leftovers:   leftovers,
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
	}
	if o.CompletedAt != nil {
		completed := o.CompletedAt.Format(time.RFC3339)
		res.CompletedAt = &completed
	}
	return res
}

func buildOrderLines(products []OrderProductRequest, leftovers []OrderLeftoverRequest) ([]model.OrderProduct, []model.OrderLeftover, error) {
	productLines := make([]model.OrderProduct, 0, len(products))
	for i, line := range products {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid product_id at line %d", apperr.ErrValidation, i+1)
		}
		if line.Quantity < 0 {
			return nil, nil, fmt.Errorf("%w: quantity cannot be negative", apperr.ErrValidation)
		}
		productLines = append(productLines, model.OrderProduct{
			ProductID: productID,
			Quantity:  line.Quantity,
			Position:  i,
		})
	}

	leftoverLines := make([]model.OrderLeftover, 0, len(leftovers))
	for i, line := range leftovers {
		materialID, err := uuid.Parse(line.MaterialID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid material_id at leftover line %d", apperr.ErrValidation, i+1)
		}
		qty, err := parseNonNegative("leftover quantity", line.Quantity)
		if err != nil {
			return nil, nil, err
		}
		leftoverLines = append(leftoverLines, model.OrderLeftover{
			MaterialID: materialID,
			Quantity:   qty,
			Position:   i,
		})
	}

	return productLines, leftoverLines, nil
}

// snapshotIndexes loads the product and material snapshots the resolver
// joins against when the cost snapshot is (re)computed.
func (s *orderService) snapshotIndexes(ctx context.Context) (pricing.ProductIndex, pricing.MaterialIndex, error) {
	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load products: %w", err)
	}
	materials, err := s.materialRepo.ListAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load materials: %w", err)
	}
	return pricing.IndexProducts(products), pricing.IndexMaterials(materials), nil
}

func (s *orderService) ListOrders(ctx context.Context, page, limit int, status string) ([]OrderResponse, int64, error) {
	if status != "" && !model.OrderStatus(status).Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, status)
	}

	orders, total, err := s.repo.List(ctx, page, limit, model.OrderStatus(status))
	if err != nil {
		return nil, 0, err
	}

	res := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		res = append(res, *mapOrderToResponse(&orders[i]))
	}
	return res, total, nil
}

func (s *orderService) GetOrderByID(ctx context.Context, id string) (*OrderResponse, error) {
	order, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapOrderToResponse(order), nil
}

func (s *orderService) CreateOrder(ctx context.Context, actorID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	status := model.OrderStatusPending
	if req.Status != "" {
		status = model.OrderStatus(req.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, req.Status)
		}
	}

	productLines, leftoverLines, err := buildOrderLines(req.Products, req.Leftovers)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		OrderNumber: req.OrderNumber,
		Products:    productLines,
		Status:      status,
		Leftovers:   leftoverLines,
	}

	// Cost snapshot: resolved once at write time from current prices and
	// stored on the row. Future material price edits leave it untouched.
	products, materials, err := s.snapshotIndexes(ctx)
	if err != nil {
		return nil, err
	}
	order.TotalCost = pricing.OrderCost(*order, products, materials)

	if status == model.OrderStatusCompleted {
		now := time.Now()
		order.CompletedAt = &now
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return s.writeAudit(txCtx, actorID, model.ActionCreateOrder, order, req)
	})
	if err != nil {
		return nil, err
	}

	s.hub.Notify("order", "created", order.ID.String())
	return mapOrderToResponse(order), nil
}

func (s *orderService) UpdateOrder(ctx context.Context, actorID uuid.UUID, id string, req UpdateOrderRequest) (*OrderResponse, error) {
	order, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	status := model.OrderStatus(req.Status)
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, req.Status)
	}

	productLines, leftoverLines, err := buildOrderLines(req.Products, req.Leftovers)
	if err != nil {
		return nil, err
	}
	for i := range productLines {
		productLines[i].OrderID = order.ID
	}
	for i := range leftoverLines {
		leftoverLines[i].OrderID = order.ID
	}

	// CompletedAt tracks the current status: set on entering completed,
	// cleared when an edit moves the order back out of it.
	if status == model.OrderStatusCompleted && order.Status != model.OrderStatusCompleted {
		now := time.Now()
		order.CompletedAt = &now
	} else if status != model.OrderStatusCompleted {
		order.CompletedAt = nil
	}

	order.OrderNumber = req.OrderNumber
	order.Status = status
	order.Products = productLines
	order.Leftovers = leftoverLines

	// Edits retake the cost snapshot against current prices.
	products, materials, err := s.snapshotIndexes(ctx)
	if err != nil {
		return nil, err
	}
	order.TotalCost = pricing.OrderCost(*order, products, materials)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, order); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		return s.writeAudit(txCtx, actorID, model.ActionUpdateOrder, order, req)
	})
	if err != nil {
		return nil, err
	}

	s.hub.Notify("order", "updated", order.ID.String())
	return mapOrderToResponse(order), nil
}

func (s *orderService) DeleteOrder(ctx context.Context, actorID uuid.UUID, id string) error {
	order, err := s.findOrder(ctx, id)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, order.ID); err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		return s.writeAudit(txCtx, actorID, model.ActionDeleteOrder, order, map[string]interface{}{"deleted": true})
	})
	if err != nil {
		return err
	}

	s.hub.Notify("order", "deleted", id)
	return nil
}

// Cost returns the stored snapshot together with a fresh resolution against
// current prices. The snapshot stays authoritative; the live value exists so
// the UI can show drift after material price changes.
func (s *orderService) Cost(ctx context.Context, id string) (*OrderCostResponse, error) {
	order, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	products, materials, err := s.snapshotIndexes(ctx)
	if err != nil {
		return nil, err
	}

	return &OrderCostResponse{
		OrderID:      order.ID.String(),
		SnapshotCost: order.TotalCost.String(),
		CurrentCost:  pricing.OrderCost(*order, products, materials).String(),
	}, nil
}

// ExportRows renders orders as CSV rows with the stored cost snapshot.
func (s *orderService) ExportRows(ctx context.Context) ([][]string, error) {
	orders, _, err := s.repo.List(ctx, 1, pageAll, "")
	if err != nil {
		return nil, err
	}

	rows := [][]string{{"id", "order_number", "status", "total_cost", "products", "created_at", "completed_at"}}
	for _, o := range orders {
		completed := ""
		if o.CompletedAt != nil {
			completed = o.CompletedAt.Format(time.RFC3339)
		}
		rows = append(rows, []string{
			o.ID.String(),
			o.OrderNumber,
			string(o.Status),
			o.TotalCost.StringFixed(2),
			fmt.Sprintf("%d", len(o.Products)),
			o.CreatedAt.Format(time.RFC3339),
			completed,
		})
	}
	return rows, nil
}

// pageAll is a limit large enough to cover any realistic export.
const pageAll = 1_000_000

func (s *orderService) findOrder(ctx context.Context, id string) (*model.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid order id", apperr.ErrValidation)
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return order, nil
}

func (s *orderService) writeAudit(ctx context.Context, actorID uuid.UUID, action string, order *model.Order, payload interface{}) error {
	var uid *uuid.UUID
	if actorID != uuid.Nil {
		uid = &actorID
	}

	details, _ := json.Marshal(payload)
	entry := &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   order.ID.String(),
		EntityName: order.OrderNumber,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
