package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmstock-api/internal/domain"
	"github.com/jhoicas/farmstock-api/internal/domain/entity"
	"github.com/jhoicas/farmstock-api/internal/domain/repository"
)

var (
	_ repository.ItemRepository     = (*ItemRepo)(nil)
	_ repository.LocationRepository = (*LocationRepo)(nil)
	_ repository.BalanceRepository  = (*BalanceRepo)(nil)
	_ repository.MovementRepository = (*MovementRepo)(nil)
	_ repository.RequestRepository  = (*RequestRepo)(nil)
)

// ItemRepo ítems en memoria.
type ItemRepo struct{ run runFunc }

func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	return r.run(true, func(t *tx) error {
		if err := t.store.fail(OpItemCreate, item); err != nil {
			return err
		}
		if _, ok := t.st.items[item.ID]; ok {
			return domain.ErrInvalidInput
		}
		t.st.items[item.ID] = copyItem(item)
		return nil
	})
}

func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	var out *entity.Item
	err := r.run(false, func(t *tx) error {
		if i, ok := t.st.items[id]; ok {
			out = copyItem(i)
		}
		return nil
	})
	return out, err
}

func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	return r.run(true, func(t *tx) error {
		if err := t.store.fail(OpItemUpdate, item); err != nil {
			return err
		}
		if _, ok := t.st.items[item.ID]; !ok {
			return domain.ErrItemNotFound
		}
		t.st.items[item.ID] = copyItem(item)
		return nil
	})
}

func (r *ItemRepo) List(ctx context.Context, limit, offset int) ([]*entity.Item, error) {
	var out []*entity.Item
	err := r.run(false, func(t *tx) error {
		all := make([]*entity.Item, 0, len(t.st.items))
		for _, i := range t.st.items {
			all = append(all, copyItem(i))
		}
		sort.Slice(all, func(a, b int) bool {
			if all[a].Name != all[b].Name {
				return all[a].Name < all[b].Name
			}
			return all[a].ID < all[b].ID
		})
		out = page(all, limit, offset)
		return nil
	})
	return out, err
}

func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	return r.run(true, func(t *tx) error {
		item, ok := t.st.items[id]
		if !ok {
			return domain.ErrItemNotFound
		}
		if hasMovements(t.st, id) || hasRequestLines(t.st, id) {
			return &domain.ReferenceConflictError{ItemID: id, ItemName: item.Name, Reason: "tiene movimientos o solicitudes"}
		}
		delete(t.st.items, id)
		for k := range t.st.balances {
			if k.ItemID == id {
				delete(t.st.balances, k)
			}
		}
		return nil
	})
}

func (r *ItemRepo) HasMovements(ctx context.Context, id string) (bool, error) {
	var out bool
	err := r.run(false, func(t *tx) error {
		out = hasMovements(t.st, id)
		return nil
	})
	return out, err
}

func hasMovements(st *state, itemID string) bool {
	for _, m := range st.movements {
		if m.ItemID == itemID {
			return true
		}
	}
	return false
}

func hasRequestLines(st *state, itemID string) bool {
	for _, req := range st.requests {
		for _, l := range req.Lines {
			if l.ItemID == itemID {
				return true
			}
		}
	}
	return false
}

// LocationRepo ubicaciones sembradas.
type LocationRepo struct{ run runFunc }

func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	var out *entity.Location
	err := r.run(false, func(t *tx) error {
		if l, ok := t.st.locations[id]; ok {
			c := *l
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *LocationRepo) GetByCode(ctx context.Context, code string) (*entity.Location, error) {
	var out *entity.Location
	err := r.run(false, func(t *tx) error {
		for _, l := range t.st.locations {
			if l.Code == code {
				c := *l
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *LocationRepo) List(ctx context.Context) ([]*entity.Location, error) {
	var out []*entity.Location
	err := r.run(false, func(t *tx) error {
		for _, l := range t.st.locations {
			c := *l
			out = append(out, &c)
		}
		sort.Slice(out, func(a, b int) bool { return out[a].Code < out[b].Code })
		return nil
	})
	return out, err
}

func (r *LocationRepo) Seed(ctx context.Context, loc *entity.Location) error {
	return r.run(true, func(t *tx) error {
		for _, l := range t.st.locations {
			if l.Code == loc.Code {
				return nil
			}
		}
		c := *loc
		t.st.locations[c.ID] = &c
		return nil
	})
}

// BalanceRepo saldos por (ítem, ubicación).
type BalanceRepo struct{ run runFunc }

func (r *BalanceRepo) Get(ctx context.Context, itemID, locationID string) (*entity.Balance, error) {
	var out *entity.Balance
	err := r.run(false, func(t *tx) error {
		if b, ok := t.st.balances[entity.BalanceKey{ItemID: itemID, LocationID: locationID}]; ok {
			c := *b
			out = &c
			return nil
		}
		out = entity.EmptyBalance(itemID, locationID)
		return nil
	})
	return out, err
}

// GetForUpdate crea la fila si no existe. El aislamiento lo da el mutex de transacción.
func (r *BalanceRepo) GetForUpdate(ctx context.Context, itemID, locationID string) (*entity.Balance, error) {
	var out *entity.Balance
	err := r.run(true, func(t *tx) error {
		key := entity.BalanceKey{ItemID: itemID, LocationID: locationID}
		b, ok := t.st.balances[key]
		if !ok {
			b = entity.EmptyBalance(itemID, locationID)
			t.st.balances[key] = b
		}
		c := *b
		out = &c
		return nil
	})
	return out, err
}

func (r *BalanceRepo) Save(ctx context.Context, balance *entity.Balance) error {
	return r.run(true, func(t *tx) error {
		if err := t.store.fail(OpBalanceSave, balance); err != nil {
			return err
		}
		key := balance.Key()
		var version int64
		if prev, ok := t.st.balances[key]; ok {
			version = prev.Version
		}
		balance.Version = version + 1
		c := *balance
		t.st.balances[key] = &c
		return nil
	})
}

func (r *BalanceRepo) ListByLocation(ctx context.Context, locationID string) ([]*entity.Balance, error) {
	return r.list(func(k entity.BalanceKey) bool { return k.LocationID == locationID })
}

func (r *BalanceRepo) ListByItem(ctx context.Context, itemID string) ([]*entity.Balance, error) {
	return r.list(func(k entity.BalanceKey) bool { return k.ItemID == itemID })
}

func (r *BalanceRepo) list(match func(entity.BalanceKey) bool) ([]*entity.Balance, error) {
	out := []*entity.Balance{}
	err := r.run(false, func(t *tx) error {
		for k, b := range t.st.balances {
			if match(k) {
				c := *b
				out = append(out, &c)
			}
		}
		sort.Slice(out, func(a, b int) bool { return out[a].Key().Less(out[b].Key()) })
		return nil
	})
	return out, err
}

// MovementRepo libro de movimientos; solo agrega.
type MovementRepo struct{ run runFunc }

func (r *MovementRepo) Create(ctx context.Context, movement *entity.Movement) error {
	return r.run(true, func(t *tx) error {
		if err := t.store.fail(OpMovementCreate, movement); err != nil {
			return err
		}
		c := *movement
		t.st.movements = append(t.st.movements, &c)
		return nil
	})
}

func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	var out *entity.Movement
	err := r.run(false, func(t *tx) error {
		for _, m := range t.st.movements {
			if m.ID == id {
				c := *m
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	var out []*entity.Movement
	err := r.run(false, func(t *tx) error {
		all := []*entity.Movement{}
		for _, m := range t.st.movements {
			if !matchMovement(m, f) {
				continue
			}
			c := *m
			all = append(all, &c)
		}
		sortMovements(all)
		out = page(all, f.Limit, f.Offset)
		return nil
	})
	return out, err
}

func (r *MovementRepo) Totals(ctx context.Context, itemID, locationID string, from, to time.Time) (repository.MovementTotals, error) {
	totals := repository.MovementTotals{Opening: decimal.Zero, In: decimal.Zero, Out: decimal.Zero}
	err := r.run(false, func(t *tx) error {
		for _, m := range t.st.movements {
			if m.ItemID != itemID || m.LocationID != locationID {
				continue
			}
			switch {
			case m.EffectiveAt.Before(from):
				totals.Opening = totals.Opening.Add(m.SignedQuantity())
			case m.EffectiveAt.After(to):
			case m.Direction == entity.DirectionIn:
				totals.In = totals.In.Add(m.Quantity)
			default:
				totals.Out = totals.Out.Add(m.Quantity)
			}
		}
		return nil
	})
	return totals, err
}

func matchMovement(m *entity.Movement, f repository.MovementFilter) bool {
	if f.ItemID != "" && m.ItemID != f.ItemID {
		return false
	}
	if f.LocationID != "" && m.LocationID != f.LocationID {
		return false
	}
	if f.ReferenceType != "" && m.Reference.Type != f.ReferenceType {
		return false
	}
	if f.ReferenceID != "" && m.Reference.ID != f.ReferenceID {
		return false
	}
	if f.From != nil && m.EffectiveAt.Before(*f.From) {
		return false
	}
	if f.To != nil && m.EffectiveAt.After(*f.To) {
		return false
	}
	return true
}

func sortMovements(list []*entity.Movement) {
	sort.SliceStable(list, func(a, b int) bool {
		x, y := list[a], list[b]
		if !x.EffectiveAt.Equal(y.EffectiveAt) {
			return x.EffectiveAt.Before(y.EffectiveAt)
		}
		if !x.CreatedAt.Equal(y.CreatedAt) {
			return x.CreatedAt.Before(y.CreatedAt)
		}
		return x.ID < y.ID
	})
}

// RequestRepo solicitudes con sus líneas.
type RequestRepo struct{ run runFunc }

func (r *RequestRepo) Create(ctx context.Context, request *entity.Request) error {
	return r.run(true, func(t *tx) error {
		if err := t.store.fail(OpRequestCreate, request); err != nil {
			return err
		}
		if _, ok := t.st.requests[request.ID]; ok {
			return domain.ErrInvalidInput
		}
		t.st.requests[request.ID] = copyRequest(request)
		return nil
	})
}

func (r *RequestRepo) GetByID(ctx context.Context, id string) (*entity.Request, error) {
	var out *entity.Request
	err := r.run(false, func(t *tx) error {
		if req, ok := t.st.requests[id]; ok {
			out = copyRequest(req)
		}
		return nil
	})
	return out, err
}

func (r *RequestRepo) GetForUpdate(ctx context.Context, id string) (*entity.Request, error) {
	return r.GetByID(ctx, id)
}

func (r *RequestRepo) Update(ctx context.Context, request *entity.Request) error {
	return r.run(true, func(t *tx) error {
		if err := t.store.fail(OpRequestUpdate, request); err != nil {
			return err
		}
		prev, ok := t.st.requests[request.ID]
		if !ok {
			return domain.ErrNotFound
		}
		c := copyRequest(request)
		c.Lines = prev.Lines
		t.st.requests[request.ID] = c
		return nil
	})
}

func (r *RequestRepo) UpdateLine(ctx context.Context, line *entity.RequestLine) error {
	return r.run(true, func(t *tx) error {
		if err := t.store.fail(OpLineUpdate, line); err != nil {
			return err
		}
		req, ok := t.st.requests[line.RequestID]
		if !ok {
			return domain.ErrNotFound
		}
		for i, l := range req.Lines {
			if l.ID == line.ID {
				c := *line
				req.Lines[i] = &c
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

func (r *RequestRepo) List(ctx context.Context, f repository.RequestFilter) ([]*entity.Request, error) {
	var out []*entity.Request
	err := r.run(false, func(t *tx) error {
		all := []*entity.Request{}
		for _, req := range t.st.requests {
			if f.Kind != "" && req.Kind != f.Kind {
				continue
			}
			if f.Status != "" && req.Status != f.Status {
				continue
			}
			all = append(all, copyRequest(req))
		}
		sort.Slice(all, func(a, b int) bool {
			if !all[a].CreatedAt.Equal(all[b].CreatedAt) {
				return all[a].CreatedAt.After(all[b].CreatedAt)
			}
			return all[a].ID < all[b].ID
		})
		out = page(all, f.Limit, f.Offset)
		return nil
	})
	return out, err
}
