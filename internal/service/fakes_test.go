package service

import (
	"context"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes. They implement the repository interfaces over
// slices so service logic can be tested without a database. Mutations keep
// insertion order, matching the repositories' creation-order listing.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeAuditRepo struct {
	entries []model.AuditLog
}

func (f *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) List(_ context.Context, _, _ int, filter repository.AuditFilter) ([]model.AuditLog, int64, error) {
	var out []model.AuditLog
	for _, e := range f.entries {
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.EntityID != "" && e.EntityID != filter.EntityID {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

type fakeUserRepo struct {
	users []model.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	for _, u := range f.users {
		if u.Email == user.Email || u.ID == user.ID {
			return gorm.ErrDuplicatedKey
		}
	}
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for i := range f.users {
		if f.users[i].Email == email {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) List(_ context.Context, page, limit int) ([]model.User, int64, error) {
	return f.users, int64(len(f.users)), nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	for i := range f.users {
		if f.users[i].ID == user.ID {
			f.users[i] = *user
			return nil
		}
	}
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range f.users {
		if f.users[i].ID == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

type fakeMaterialRepo struct {
	materials []model.Material
}

func (f *fakeMaterialRepo) Create(_ context.Context, m *model.Material) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	f.materials = append(f.materials, *m)
	return nil
}

func (f *fakeMaterialRepo) Update(_ context.Context, m *model.Material) error {
	for i := range f.materials {
		if f.materials[i].ID == m.ID {
			f.materials[i] = *m
			return nil
		}
	}
	f.materials = append(f.materials, *m)
	return nil
}

func (f *fakeMaterialRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range f.materials {
		if f.materials[i].ID == id {
			f.materials = append(f.materials[:i], f.materials[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeMaterialRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Material, error) {
	for i := range f.materials {
		if f.materials[i].ID == id {
			m := f.materials[i]
			return &m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMaterialRepo) List(_ context.Context, page, limit int, search string) ([]model.Material, int64, error) {
	return f.materials, int64(len(f.materials)), nil
}

func (f *fakeMaterialRepo) ListAll(_ context.Context) ([]model.Material, error) {
	return f.materials, nil
}

func (f *fakeMaterialRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.materials)), nil
}

type fakeProductRepo struct {
	products []model.Product
}

func (f *fakeProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.products = append(f.products, *p)
	return nil
}

func (f *fakeProductRepo) Update(_ context.Context, p *model.Product) error {
	for i := range f.products {
		if f.products[i].ID == p.ID {
			f.products[i] = *p
			return nil
		}
	}
	f.products = append(f.products, *p)
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range f.products {
		if f.products[i].ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	for i := range f.products {
		if f.products[i].ID == id {
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProductRepo) List(_ context.Context, page, limit int, search string) ([]model.Product, int64, error) {
	return f.products, int64(len(f.products)), nil
}

func (f *fakeProductRepo) ListAll(_ context.Context) ([]model.Product, error) {
	return f.products, nil
}

func (f *fakeProductRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.products)), nil
}

type fakeOrderRepo struct {
	orders []model.Order
}

func (f *fakeOrderRepo) Create(_ context.Context, o *model.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	f.orders = append(f.orders, *o)
	return nil
}

func (f *fakeOrderRepo) Update(_ context.Context, o *model.Order) error {
	for i := range f.orders {
		if f.orders[i].ID == o.ID {
			f.orders[i] = *o
			return nil
		}
	}
	f.orders = append(f.orders, *o)
	return nil
}

func (f *fakeOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders = append(f.orders[:i], f.orders[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	for i := range f.orders {
		if f.orders[i].ID == id {
			o := f.orders[i]
			return &o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) List(_ context.Context, page, limit int, status model.OrderStatus) ([]model.Order, int64, error) {
	if status == "" {
		return f.orders, int64(len(f.orders)), nil
	}
	var filtered []model.Order
	for _, o := range f.orders {
		if o.Status == status {
			filtered = append(filtered, o)
		}
	}
	return filtered, int64(len(filtered)), nil
}

func (f *fakeOrderRepo) CountByStatus(_ context.Context) (map[model.OrderStatus]int64, error) {
	counts := make(map[model.OrderStatus]int64)
	for _, o := range f.orders {
		counts[o.Status]++
	}
	return counts, nil
}

func (f *fakeOrderRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.orders)), nil
}
