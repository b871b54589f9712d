package service

import (
	"context"
	"testing"

	"backend/internal/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMaterialService(repo *fakeMaterialRepo) MaterialService {
	return NewMaterialService(repo, &fakeAuditRepo{}, fakeTxManager{}, nil)
}

func TestCreateMaterialRejectsNegativeCost(t *testing.T) {
	svc := newMaterialService(&fakeMaterialRepo{})
	_, err := svc.CreateMaterial(context.Background(), uuid.New(), CreateMaterialRequest{
		Name: "steel", Cost: "-1.50", Unit: "kg",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateMaterialRejectsMalformedDecimal(t *testing.T) {
	svc := newMaterialService(&fakeMaterialRepo{})
	_, err := svc.CreateMaterial(context.Background(), uuid.New(), CreateMaterialRequest{
		Name: "steel", Cost: "two fifty", Unit: "kg",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestMaterialUpdateRoundTrip(t *testing.T) {
	repo := &fakeMaterialRepo{}
	svc := newMaterialService(repo)
	actor := uuid.New()

	created, err := svc.CreateMaterial(context.Background(), actor, CreateMaterialRequest{
		Name: "steel", Cost: "2.50", Unit: "m", Stock: "100",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateMaterial(context.Background(), actor, created.ID, UpdateMaterialRequest{
		Name: "stainless steel", Cost: "3.75", Unit: "m", Stock: "80",
	})
	require.NoError(t, err)
	assert.Equal(t, "3.75", updated.Cost)

	// list() contains exactly the updated entity for that id, no duplicates.
	list, total, err := svc.ListMaterials(context.Background(), 1, 20, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "stainless steel", list[0].Name)
}

func TestDeleteMaterialNotFoundLeavesStoreUnchanged(t *testing.T) {
	repo := &fakeMaterialRepo{}
	svc := newMaterialService(repo)
	actor := uuid.New()

	_, err := svc.CreateMaterial(context.Background(), actor, CreateMaterialRequest{
		Name: "steel", Cost: "2.50", Unit: "m",
	})
	require.NoError(t, err)

	err = svc.DeleteMaterial(context.Background(), actor, uuid.New().String())
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Len(t, repo.materials, 1)
}

func TestMaterialExportRowsHaveHeaderAndDisplayPrecision(t *testing.T) {
	repo := &fakeMaterialRepo{}
	svc := newMaterialService(repo)

	_, err := svc.CreateMaterial(context.Background(), uuid.New(), CreateMaterialRequest{
		Name: "steel", Cost: "2.5", Unit: "m", Stock: "3",
	})
	require.NoError(t, err)

	rows, err := svc.ExportRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "name", "cost", "unit", "stock", "created_at"}, rows[0])
	assert.Equal(t, "2.50", rows[1][2], "export rounds cost to two display decimals")
}
