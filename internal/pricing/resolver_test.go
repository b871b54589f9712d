package pricing

import (
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func material(cost string) model.Material {
	return model.Material{ID: uuid.New(), Name: "material", Cost: dec(cost), Unit: "m"}
}

func productOf(lines ...model.ProductMaterial) model.Product {
	return model.Product{ID: uuid.New(), Name: "product", Materials: lines}
}

func TestProductCostEmptyBillOfMaterials(t *testing.T) {
	p := productOf()
	got := ProductCost(p, MaterialIndex{})
	assert.True(t, got.IsZero(), "empty bill of materials must cost 0, got %s", got)
}

func TestProductCostSumsWeightedLines(t *testing.T) {
	m1 := material("2.50")
	m2 := material("0.75")
	idx := IndexMaterials([]model.Material{m1, m2})

	p := productOf(
		model.ProductMaterial{MaterialID: m1.ID, Quantity: dec("3")},
		model.ProductMaterial{MaterialID: m2.ID, Quantity: dec("4")},
	)

	// 2.50*3 + 0.75*4 = 10.50
	assert.True(t, dec("10.50").Equal(ProductCost(p, idx)))
}

func TestProductCostSkipsDanglingMaterial(t *testing.T) {
	m1 := material("2.50")
	idx := IndexMaterials([]model.Material{m1})

	p := productOf(
		model.ProductMaterial{MaterialID: m1.ID, Quantity: dec("3")},
		model.ProductMaterial{MaterialID: uuid.New(), Quantity: dec("100")}, // deleted material
	)

	// The dangling line contributes exactly 0, not an error.
	assert.True(t, dec("7.50").Equal(ProductCost(p, idx)))
}

func TestOrderCostScenario(t *testing.T) {
	// Material{cost:2.50,unit:"m"}, Product{materials:[{m1,qty:3}]} => 7.50,
	// Order{products:[{p1,qty:2}]} => 15.00.
	m1 := material("2.50")
	materials := IndexMaterials([]model.Material{m1})

	p1 := productOf(model.ProductMaterial{MaterialID: m1.ID, Quantity: dec("3")})
	products := IndexProducts([]model.Product{p1})

	require.True(t, dec("7.50").Equal(ProductCost(p1, materials)))

	order := model.Order{Products: []model.OrderProduct{{ProductID: p1.ID, Quantity: 2}}}
	assert.True(t, dec("15.00").Equal(OrderCost(order, products, materials)))
}

func TestOrderCostEmptyOrder(t *testing.T) {
	got := OrderCost(model.Order{}, ProductIndex{}, MaterialIndex{})
	assert.True(t, got.IsZero())
}

func TestOrderCostSkipsDanglingProduct(t *testing.T) {
	m1 := material("2.50")
	materials := IndexMaterials([]model.Material{m1})
	p1 := productOf(model.ProductMaterial{MaterialID: m1.ID, Quantity: dec("1")})
	products := IndexProducts([]model.Product{p1})

	order := model.Order{Products: []model.OrderProduct{
		{ProductID: uuid.New(), Quantity: 9}, // deleted product: contributes 0
		{ProductID: p1.ID, Quantity: 2},
	}}

	assert.True(t, dec("5.00").Equal(OrderCost(order, products, materials)))
}

func TestOrderCostLinearInLineQuantity(t *testing.T) {
	m1 := material("1.25")
	materials := IndexMaterials([]model.Material{m1})
	p1 := productOf(model.ProductMaterial{MaterialID: m1.ID, Quantity: dec("2")})
	products := IndexProducts([]model.Product{p1})

	single := OrderCost(model.Order{Products: []model.OrderProduct{{ProductID: p1.ID, Quantity: 3}}}, products, materials)
	double := OrderCost(model.Order{Products: []model.OrderProduct{{ProductID: p1.ID, Quantity: 6}}}, products, materials)

	assert.True(t, single.Mul(decimal.NewFromInt(2)).Equal(double), "doubling a line quantity must double its contribution")
}

func TestResolversDoNotMutateInputs(t *testing.T) {
	m1 := material("2.00")
	materials := IndexMaterials([]model.Material{m1})
	p1 := productOf(model.ProductMaterial{MaterialID: m1.ID, Quantity: dec("5")})
	products := IndexProducts([]model.Product{p1})
	order := model.Order{Products: []model.OrderProduct{{ProductID: p1.ID, Quantity: 1}}}

	before := p1.Materials[0].Quantity
	_ = OrderCost(order, products, materials)
	_ = ProductCost(p1, materials)

	assert.True(t, before.Equal(p1.Materials[0].Quantity))
	assert.True(t, m1.Cost.Equal(materials[m1.ID].Cost))
}
