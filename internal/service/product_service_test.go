package service

import (
	"context"
	"testing"

	"backend/internal/apperr"
	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductService(repo *fakeProductRepo, materials *fakeMaterialRepo) ProductService {
	return NewProductService(repo, materials, &fakeAuditRepo{}, fakeTxManager{}, nil)
}

func seedMaterial(t *testing.T, repo *fakeMaterialRepo, name, cost string) uuid.UUID {
	t.Helper()
	m := model.Material{
		ID:   uuid.New(),
		Name: name,
		Cost: decimal.RequireFromString(cost),
		Unit: "kg",
	}
	require.NoError(t, repo.Create(context.Background(), &m))
	return m.ID
}

func TestCreateProductResolvesCostFromMaterials(t *testing.T) {
	materials := &fakeMaterialRepo{}
	steel := seedMaterial(t, materials, "steel", "2.50")
	paint := seedMaterial(t, materials, "paint", "1.00")

	svc := newProductService(&fakeProductRepo{}, materials)
	created, err := svc.CreateProduct(context.Background(), uuid.New(), CreateProductRequest{
		Name: "frame",
		Materials: []ProductMaterialRequest{
			{MaterialID: steel.String(), Quantity: "3"},
			{MaterialID: paint.String(), Quantity: "0.5"},
		},
	})
	require.NoError(t, err)

	// 2.50*3 + 1.00*0.5 = 8.00
	assert.True(t, decimal.RequireFromString("8.00").Equal(decimal.RequireFromString(created.Cost)),
		"cost %s", created.Cost)
	require.Len(t, created.Materials, 2)
	assert.Equal(t, steel.String(), created.Materials[0].MaterialID)
}

func TestCreateProductRejectsBadMaterialLine(t *testing.T) {
	svc := newProductService(&fakeProductRepo{}, &fakeMaterialRepo{})

	_, err := svc.CreateProduct(context.Background(), uuid.New(), CreateProductRequest{
		Name:      "frame",
		Materials: []ProductMaterialRequest{{MaterialID: "not-a-uuid", Quantity: "1"}},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	materials := &fakeMaterialRepo{}
	steel := seedMaterial(t, materials, "steel", "2.50")
	svc = newProductService(&fakeProductRepo{}, materials)
	_, err = svc.CreateProduct(context.Background(), uuid.New(), CreateProductRequest{
		Name:      "frame",
		Materials: []ProductMaterialRequest{{MaterialID: steel.String(), Quantity: "-2"}},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestProductWithDanglingMaterialCostsOnlyKnownLines(t *testing.T) {
	materials := &fakeMaterialRepo{}
	steel := seedMaterial(t, materials, "steel", "2.50")

	svc := newProductService(&fakeProductRepo{}, materials)
	created, err := svc.CreateProduct(context.Background(), uuid.New(), CreateProductRequest{
		Name: "frame",
		Materials: []ProductMaterialRequest{
			{MaterialID: steel.String(), Quantity: "3"},
			{MaterialID: uuid.NewString(), Quantity: "10"}, // no such material
		},
	})
	require.NoError(t, err)

	// The dangling line is kept but contributes nothing.
	require.Len(t, created.Materials, 2)
	assert.True(t, decimal.RequireFromString("7.50").Equal(decimal.RequireFromString(created.Cost)),
		"cost %s", created.Cost)
}

func TestUpdateProductReplacesBOM(t *testing.T) {
	materials := &fakeMaterialRepo{}
	steel := seedMaterial(t, materials, "steel", "2.50")
	paint := seedMaterial(t, materials, "paint", "1.00")

	repo := &fakeProductRepo{}
	svc := newProductService(repo, materials)
	actor := uuid.New()

	created, err := svc.CreateProduct(context.Background(), actor, CreateProductRequest{
		Name:      "frame",
		Materials: []ProductMaterialRequest{{MaterialID: steel.String(), Quantity: "3"}},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(context.Background(), actor, created.ID, UpdateProductRequest{
		Name:      "painted frame",
		Materials: []ProductMaterialRequest{{MaterialID: paint.String(), Quantity: "2"}},
	})
	require.NoError(t, err)

	require.Len(t, updated.Materials, 1)
	assert.Equal(t, paint.String(), updated.Materials[0].MaterialID)
	assert.True(t, decimal.RequireFromString("2.00").Equal(decimal.RequireFromString(updated.Cost)),
		"cost %s", updated.Cost)

	// Still exactly one stored product.
	_, total, err := svc.ListProducts(context.Background(), 1, 20, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestGetProductCostTracksCurrentPrices(t *testing.T) {
	materials := &fakeMaterialRepo{}
	steel := seedMaterial(t, materials, "steel", "2.50")

	svc := newProductService(&fakeProductRepo{}, materials)
	created, err := svc.CreateProduct(context.Background(), uuid.New(), CreateProductRequest{
		Name:      "frame",
		Materials: []ProductMaterialRequest{{MaterialID: steel.String(), Quantity: "3"}},
	})
	require.NoError(t, err)

	// Raise the material price; the product cost is derived, not stored.
	m, err := materials.FindByID(context.Background(), steel)
	require.NoError(t, err)
	m.Cost = decimal.RequireFromString("10.00")
	require.NoError(t, materials.Update(context.Background(), m))

	got, err := svc.GetProductByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("30.00").Equal(decimal.RequireFromString(got.Cost)),
		"cost %s", got.Cost)
}

func TestDeleteProductNotFound(t *testing.T) {
	repo := &fakeProductRepo{}
	svc := newProductService(repo, &fakeMaterialRepo{})

	err := svc.DeleteProduct(context.Background(), uuid.New(), uuid.NewString())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Empty(t, repo.products)
}

func TestProductExportRowsIncludeHeaderAndCost(t *testing.T) {
	materials := &fakeMaterialRepo{}
	steel := seedMaterial(t, materials, "steel", "2.50")

	svc := newProductService(&fakeProductRepo{}, materials)
	_, err := svc.CreateProduct(context.Background(), uuid.New(), CreateProductRequest{
		Name:      "frame",
		Materials: []ProductMaterialRequest{{MaterialID: steel.String(), Quantity: "3"}},
	})
	require.NoError(t, err)

	rows, err := svc.ExportRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "name", "materials", "cost", "created_at"}, rows[0])
	assert.Equal(t, "frame", rows[1][1])
	assert.Equal(t, "7.50", rows[1][3])
}
