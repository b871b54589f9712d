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

type ProductMaterialRequest struct {
	MaterialID string `json:"material_id" binding:"required"`
	Quantity   string `json:"quantity" binding:"required"`
}

type CreateProductRequest struct {
	Name      string                   `json:"name" binding:"required"`
	Materials []ProductMaterialRequest `json:"materials"`
}

type UpdateProductRequest struct {
	Name      string                   `json:"name" binding:"required"`
	Materials []ProductMaterialRequest `json:"materials"`
}

type ProductMaterialResponse struct {
	MaterialID string `json:"material_id"`
	Quantity   string `json:"quantity"`
}

type ProductResponse struct {
	ID        string                    `json:"id"`
	Name      string                    `json:"name"`
	Materials []ProductMaterialResponse `json:"materials"`
	Cost      string                    `json:"cost"` // resolved from current material prices
	CreatedAt string                    `json:"created_at"`
}

type ProductService interface {
	ListProducts(ctx context.Context, page, limit int, search string) ([]ProductResponse, int64, error)
	GetProductByID(ctx context.Context, id string) (*ProductResponse, error)
	CreateProduct(ctx context.Context, actorID uuid.UUID, req CreateProductRequest) (*ProductResponse, error)
	UpdateProduct(ctx context.Context, actorID uuid.UUID, id string, req UpdateProductRequest) (*ProductResponse, error)
	DeleteProduct(ctx context.Context, actorID uuid.UUID, id string) error
	ExportRows(ctx context.Context) ([][]string, error)
}

type productService struct {
	repo         repository.ProductRepository
	materialRepo repository.MaterialRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewProductService(
	repo repository.ProductRepository,
	materialRepo repository.MaterialRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) ProductService {
	return &productService{
		repo:         repo,
		materialRepo: materialRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

// buildBOMLines validates and converts request lines, preserving their order.
// Material ids must be well-formed uuids but are NOT checked for existence:
// the store tolerates dangling references and the resolver skips them.
func buildBOMLines(lines []ProductMaterialRequest) ([]model.ProductMaterial, error) {
	out := make([]model.ProductMaterial, 0, len(lines))
	for i, line := range lines {
		materialID, err := uuid.Parse(line.MaterialID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid material_id at line %d", apperr.ErrValidation, i+1)
		}
		qty, err := parseNonNegative("quantity", line.Quantity)
		if err != nil {
			return nil, err
		}
		out = append(out, model.ProductMaterial{
			MaterialID: materialID,
			Quantity:   qty,
			Position:   i,
		})
	}
	return out, nil
}

func (s *productService) mapToResponse(p *model.Product, materials pricing.MaterialIndex) *ProductResponse {
	lines := make([]ProductMaterialResponse, 0, len(p.Materials))
	for _, line := range p.Materials {
		lines = append(lines, ProductMaterialResponse{
			MaterialID: line.MaterialID.String(),
			Quantity:   line.Quantity.String(),
		})
	}
	return &ProductResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Materials: lines,
		Cost:      pricing.ProductCost(*p, materials).String(),
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

func (s *productService) materialIndex(ctx context.Context) (pricing.MaterialIndex, error) {
	materials, err := s.materialRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load materials: %w", err)
	}
	return pricing.IndexMaterials(materials), nil
}

func (s *productService) ListProducts(ctx context.Context, page, limit int, search string) ([]ProductResponse, int64, error) {
	products, total, err := s.repo.List(ctx, page, limit, search)
	if err != nil {
		return nil, 0, err
	}

	materials, err := s.materialIndex(ctx)
	if err != nil {
		return nil, 0, err
	}

	res := make([]ProductResponse, 0, len(products))
	for i := range products {
		res = append(res, *s.mapToResponse(&products[i], materials))
	}
	return res, total, nil
}

func (s *productService) GetProductByID(ctx context.Context, id string) (*ProductResponse, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid product id", apperr.ErrValidation)
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	materials, err := s.materialIndex(ctx)
	if err != nil {
		return nil, err
	}
	return s.mapToResponse(product, materials), nil
}

func (s *productService) CreateProduct(ctx context.Context, actorID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	lines, err := buildBOMLines(req.Materials)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:      req.Name,
		Materials: lines,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, product); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return s.writeAudit(txCtx, actorID, model.ActionCreateProduct, product, req)
	})
	if err != nil {
		return nil, err
	}

	materials, err := s.materialIndex(ctx)
	if err != nil {
		return nil, err
	}

	s.hub.Notify("product", "created", product.ID.String())
	return s.mapToResponse(product, materials), nil
}

func (s *productService) UpdateProduct(ctx context.Context, actorID uuid.UUID, id string, req UpdateProductRequest) (*ProductResponse, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid product id", apperr.ErrValidation)
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	lines, err := buildBOMLines(req.Materials)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].ProductID = product.ID
	}

	product.Name = req.Name
	product.Materials = lines

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, product); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		return s.writeAudit(txCtx, actorID, model.ActionUpdateProduct, product, req)
	})
	if err != nil {
		return nil, err
	}

	materials, err := s.materialIndex(ctx)
	if err != nil {
		return nil, err
	}

	s.hub.Notify("product", "updated", product.ID.String())
	return s.mapToResponse(product, materials), nil
}

// DeleteProduct removes the product and its BOM lines. Orders referencing it
// keep their rows; those lines resolve to zero cost afterwards.
func (s *productService) DeleteProduct(ctx context.Context, actorID uuid.UUID, id string) error {
	productID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid product id", apperr.ErrValidation)
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %s", apperr.ErrNotFound, id)
		}
		return fmt.Errorf("database error: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, productID); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return s.writeAudit(txCtx, actorID, model.ActionDeleteProduct, product, map[string]interface{}{"deleted": true})
	})
	if err != nil {
		return err
	}

	s.hub.Notify("product", "deleted", id)
	return nil
}

// ExportRows renders products as CSV rows with their current resolved cost.
func (s *productService) ExportRows(ctx context.Context) ([][]string, error) {
	products, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	materials, err := s.materialIndex(ctx)
	if err != nil {
		return nil, err
	}

	rows := [][]string{{"id", "name", "materials", "cost", "created_at"}}
	for _, p := range products {
		rows = append(rows, []string{
			p.ID.String(),
			p.Name,
			fmt.Sprintf("%d", len(p.Materials)),
			pricing.ProductCost(p, materials).StringFixed(2),
			p.CreatedAt.Format(time.RFC3339),
		})
	}
	return rows, nil
}

func (s *productService) writeAudit(ctx context.Context, actorID uuid.UUID, action string, product *model.Product, payload interface{}) error {
	var uid *uuid.UUID
	if actorID != uuid.Nil {
		uid = &actorID
	}

	details, _ := json.Marshal(payload)
	entry := &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   product.ID.String(),
		EntityName: product.Name,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
