package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Decimal request fields arrive as strings so malformed numbers are rejected
// at the boundary instead of being silently coerced.
type CreateMaterialRequest struct {
	Name  string `json:"name" binding:"required"`
	Cost  string `json:"cost" binding:"required"`
	Unit  string `json:"unit" binding:"required"`
	Stock string `json:"stock"`
}

type UpdateMaterialRequest struct {
	Name  string `json:"name" binding:"required"`
	Cost  string `json:"cost" binding:"required"`
	Unit  string `json:"unit" binding:"required"`
	Stock string `json:"stock"`
}

type MaterialResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Cost      string `json:"cost"`
	Unit      string `json:"unit"`
	Stock     string `json:"stock"`
	CreatedAt string `json:"created_at"`
}

type MaterialService interface {
	ListMaterials(ctx context.Context, page, limit int, search string) ([]MaterialResponse, int64, error)
	GetMaterialByID(ctx context.Context, id string) (*MaterialResponse, error)
	CreateMaterial(ctx context.Context, actorID uuid.UUID, req CreateMaterialRequest) (*MaterialResponse, error)
	UpdateMaterial(ctx context.Context, actorID uuid.UUID, id string, req UpdateMaterialRequest) (*MaterialResponse, error)
	DeleteMaterial(ctx context.Context, actorID uuid.UUID, id string) error
	ExportRows(ctx context.Context) ([][]string, error)
}

type materialService struct {
	repo      repository.MaterialRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	hub       *ws.Hub
}

func NewMaterialService(
	repo repository.MaterialRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) MaterialService {
	return &materialService{repo: repo, auditRepo: auditRepo, txManager: txManager, hub: hub}
}

func mapMaterialToResponse(m *model.Material) *MaterialResponse {
	return &MaterialResponse{
		ID:        m.ID.String(),
		Name:      m.Name,
		Cost:      m.Cost.String(),
		Unit:      m.Unit,
		Stock:     m.Stock.String(),
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

// parseNonNegative parses a decimal field and rejects negative values.
func parseNonNegative(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid %s", apperr.ErrValidation, field)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s cannot be negative", apperr.ErrValidation, field)
	}
	return d, nil
}

func (s *materialService) ListMaterials(ctx context.Context, page, limit int, search string) ([]MaterialResponse, int64, error) {
	materials, total, err := s.repo.List(ctx, page, limit, search)
	if err != nil {
		return nil, 0, err
	}

	res := make([]MaterialResponse, 0, len(materials))
	for i := range materials {
		res = append(res, *mapMaterialToResponse(&materials[i]))
	}
	return res, total, nil
}

func (s *materialService) GetMaterialByID(ctx context.Context, id string) (*MaterialResponse, error) {
	materialID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid material id", apperr.ErrValidation)
	}

	material, err := s.repo.FindByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: material %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return mapMaterialToResponse(material), nil
}

func (s *materialService) CreateMaterial(ctx context.Context, actorID uuid.UUID, req CreateMaterialRequest) (*MaterialResponse, error) {
	cost, err := parseNonNegative("cost", req.Cost)
	if err != nil {
		return nil, err
	}
	stock, err := parseNonNegative("stock", req.Stock)
	if err != nil {
		return nil, err
	}

	material := &model.Material{
		Name:  req.Name,
		Cost:  cost,
		Unit:  req.Unit,
		Stock: stock,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, material); err != nil {
			return fmt.Errorf("failed to create material: %w", err)
		}
		return s.writeAudit(txCtx, actorID, model.ActionCreateMaterial, material, req)
	})
	if err != nil {
		return nil, err
	}

	s.hub.Notify("material", "created", material.ID.String())
	return mapMaterialToResponse(material), nil
}

func (s *materialService) UpdateMaterial(ctx context.Context, actorID uuid.UUID, id string, req UpdateMaterialRequest) (*MaterialResponse, error) {
	materialID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid material id", apperr.ErrValidation)
	}

	material, err := s.repo.FindByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: material %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	cost, err := parseNonNegative("cost", req.Cost)
	if err != nil {
		return nil, err
	}
	stock, err := parseNonNegative("stock", req.Stock)
	if err != nil {
		return nil, err
	}

	material.Name = req.Name
	material.Cost = cost
	material.Unit = req.Unit
	material.Stock = stock

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, material); err != nil {
			return fmt.Errorf("failed to update material: %w", err)
		}
		return s.writeAudit(txCtx, actorID, model.ActionUpdateMaterial, material, req)
	})
	if err != nil {
		return nil, err
	}

	s.hub.Notify("material", "updated", material.ID.String())
	return mapMaterialToResponse(material), nil
}

// DeleteMaterial removes the material only. Products and orders referencing
// it keep their rows; the pricing resolver treats those references as worth
// zero from now on.
func (s *materialService) DeleteMaterial(ctx context.Context, actorID uuid.UUID, id string) error {
	materialID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid material id", apperr.ErrValidation)
	}

	material, err := s.repo.FindByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: material %s", apperr.ErrNotFound, id)
		}
		return fmt.Errorf("database error: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, materialID); err != nil {
			return fmt.Errorf("failed to delete material: %w", err)
		}
		return s.writeAudit(txCtx, actorID, model.ActionDeleteMaterial, material, map[string]interface{}{"deleted": true})
	})
	if err != nil {
		return err
	}

	s.hub.Notify("material", "deleted", id)
	return nil
}

// ExportRows renders all materials as CSV rows (header first). Costs are
// rounded to two decimals here because export is a display surface.
func (s *materialService) ExportRows(ctx context.Context) ([][]string, error) {
	materials, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	rows := [][]string{{"id", "name", "cost", "unit", "stock", "created_at"}}
	for _, m := range materials {
		rows = append(rows, []string{
			m.ID.String(),
			m.Name,
			m.Cost.StringFixed(2),
			m.Unit,
			m.Stock.String(),
			m.CreatedAt.Format(time.RFC3339),
		})
	}
	return rows, nil
}

func (s *materialService) writeAudit(ctx context.Context, actorID uuid.UUID, action string, material *model.Material, payload interface{}) error {
	var uid *uuid.UUID
	if actorID != uuid.Nil {
		uid = &actorID
	}

	details, _ := json.Marshal(payload)
	entry := &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   material.ID.String(),
		EntityName: material.Name,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
