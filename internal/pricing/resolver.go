// Package pricing computes derived costs by joining orders, products and
// materials. Both resolvers are pure: they never touch the database, never
// mutate their inputs and are deterministic for a given snapshot.
package pricing

import (
	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaterialIndex maps material id to the material row of a store snapshot.
type MaterialIndex map[uuid.UUID]model.Material

// ProductIndex maps product id to the product row (with its bill of materials).
type ProductIndex map[uuid.UUID]model.Product

// IndexMaterials builds a MaterialIndex from a store snapshot.
func IndexMaterials(materials []model.Material) MaterialIndex {
	idx := make(MaterialIndex, len(materials))
	for _, m := range materials {
		idx[m.ID] = m
	}
	return idx
}

// IndexProducts builds a ProductIndex from a store snapshot.
func IndexProducts(products []model.Product) ProductIndex {
	idx := make(ProductIndex, len(products))
	for _, p := range products {
		idx[p.ID] = p
	}
	return idx
}

// ProductCost sums material unit cost times line quantity over the product's
// bill of materials. A line whose MaterialID is absent from the index
// contributes zero: deleting a Material must not break products that still
// reference it. An empty bill of materials costs zero.
func ProductCost(product model.Product, materials MaterialIndex) decimal.Decimal {
	cost := decimal.Zero
	for _, line := range product.Materials {
		material, ok := materials[line.MaterialID]
		if !ok {
			continue
		}
		cost = cost.Add(material.Cost.Mul(line.Quantity))
	}
	return cost
}

// OrderCost is the two-level fan-out join: each order line multiplies the
// entire resolved product cost by the line quantity. Lines referencing an
// unknown ProductID contribute zero, mirroring ProductCost's policy. No
// rounding is applied; display precision is the presentation layer's concern.
func OrderCost(order model.Order, products ProductIndex, materials MaterialIndex) decimal.Decimal {
	cost := decimal.Zero
	for _, line := range order.Products {
		product, ok := products[line.ProductID]
		if !ok {
			continue
		}
		unit := ProductCost(product, materials)
		cost = cost.Add(unit.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return cost
}
