package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Inventario-minero/internal/domain"
	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
)

var (
	_ repository.CompanyRepository   = companyRepo{}
	_ repository.ProductRepository   = productRepo{}
	_ repository.WarehouseRepository = warehouseRepo{}
	_ repository.StockRepository     = stockRepo{}
	_ repository.KardexRepository    = kardexRepo{}
	_ repository.CostLotRepository   = lotRepo{}
	_ repository.MovementRepository  = movementRepo{}
	_ repository.SequenceRepository  = sequenceRepo{}
)

type companyRepo struct{ v view }

func (r companyRepo) Create(_ context.Context, c *entity.Company) error {
	return r.v.write(func(st *state) error {
		st.companies[c.ID] = *c
		return nil
	})
}

func (r companyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	var out *entity.Company
	r.v.read(func(st *state) {
		if c, ok := st.companies[id]; ok {
			out = &c
		}
	})
	return out, nil
}

type productRepo struct{ v view }

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.v.write(func(st *state) error {
		for _, other := range st.products {
			if other.CompanyID == p.CompanyID && other.SKU == p.SKU {
				return domain.NewValidationError("sku", "ya existe en la empresa")
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.v.read(func(st *state) {
		if p, ok := st.products[id]; ok {
			out = &p
		}
	})
	return out, nil
}

func (r productRepo) GetByCompanyAndSKU(_ context.Context, companyID, sku string) (*entity.Product, error) {
	var out *entity.Product
	r.v.read(func(st *state) {
		for _, p := range st.products {
			if p.CompanyID == companyID && p.SKU == sku {
				out = &p
				return
			}
		}
	})
	return out, nil
}

func (r productRepo) Update(_ context.Context, p *entity.Product) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.products[p.ID]; !ok {
			return domain.ErrNotFound
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r productRepo) ListWithMinimum(_ context.Context, companyID string) ([]*entity.Product, error) {
	var out []*entity.Product
	r.v.read(func(st *state) {
		for _, p := range st.products {
			if p.CompanyID == companyID && !p.Retired && p.MinimumStock.IsPositive() {
				out = append(out, &p)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

type warehouseRepo struct{ v view }

func (r warehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	return r.v.write(func(st *state) error {
		st.warehouses[w.ID] = *w
		return nil
	})
}

func (r warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	r.v.read(func(st *state) {
		if w, ok := st.warehouses[id]; ok {
			out = &w
		}
	})
	return out, nil
}

func (r warehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.warehouses[w.ID]; !ok {
			return domain.ErrNotFound
		}
		st.warehouses[w.ID] = *w
		return nil
	})
}

type stockRepo struct{ v view }

func (r stockRepo) Get(_ context.Context, key entity.BalanceKey) (*entity.StockBalance, error) {
	var out *entity.StockBalance
	r.v.read(func(st *state) {
		if b, ok := st.balances[key]; ok {
			out = &b
		}
	})
	if out == nil {
		out = entity.NewStockBalance(key.CompanyID, key.ProductID, key.WarehouseID)
	}
	return out, nil
}

func (r stockRepo) GetForUpdate(_ context.Context, key entity.BalanceKey) (*entity.StockBalance, error) {
	var out entity.StockBalance
	err := r.v.write(func(st *state) error {
		b, ok := st.balances[key]
		if !ok {
			b = *entity.NewStockBalance(key.CompanyID, key.ProductID, key.WarehouseID)
			st.balances[key] = b
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r stockRepo) Save(_ context.Context, b *entity.StockBalance) error {
	return r.v.write(func(st *state) error {
		cur, ok := st.balances[b.Key()]
		if ok && cur.Version != b.Version {
			return domain.ErrConcurrencyConflict
		}
		b.Version++
		st.balances[b.Key()] = *b
		return nil
	})
}

type kardexRepo struct{ v view }

func (r kardexRepo) Append(_ context.Context, e *entity.KardexEntry) error {
	return r.v.write(func(st *state) error {
		st.kardexSeq++
		e.Seq = st.kardexSeq
		st.kardexIdx[e.ID] = len(st.kardex)
		st.kardex = append(st.kardex, *e)
		return nil
	})
}

func (r kardexRepo) GetByID(_ context.Context, companyID, id string) (*entity.KardexEntry, error) {
	var out *entity.KardexEntry
	r.v.read(func(st *state) {
		if i, ok := st.kardexIdx[id]; ok && st.kardex[i].CompanyID == companyID {
			e := st.kardex[i]
			out = &e
		}
	})
	return out, nil
}

func (r kardexRepo) ListByMovement(_ context.Context, companyID, movementID string) ([]*entity.KardexEntry, error) {
	var out []*entity.KardexEntry
	r.v.read(func(st *state) {
		for i := range st.kardex {
			e := st.kardex[i]
			if e.CompanyID == companyID && e.MovementID == movementID {
				out = append(out, &e)
			}
		}
	})
	return out, nil
}

func (r kardexRepo) List(_ context.Context, f repository.KardexFilter) ([]*entity.KardexEntry, error) {
	var out []*entity.KardexEntry
	r.v.read(func(st *state) {
		for i := range st.kardex {
			e := st.kardex[i]
			if e.CompanyID != f.CompanyID {
				continue
			}
			if f.ProductID != "" && e.ProductID != f.ProductID {
				continue
			}
			if f.WarehouseID != "" && e.WarehouseID != f.WarehouseID {
				continue
			}
			if f.From != nil && e.OccurredAt.Before(*f.From) {
				continue
			}
			if f.To != nil && e.OccurredAt.After(*f.To) {
				continue
			}
			if f.After != nil && !kardexAfter(e, *f.After) {
				continue
			}
			out = append(out, &e)
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.Before(out[j].OccurredAt)
		}
		return out[i].Seq < out[j].Seq
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func kardexAfter(e entity.KardexEntry, c repository.KardexCursor) bool {
	if e.OccurredAt.Equal(c.OccurredAt) {
		return e.Seq > c.Seq
	}
	return e.OccurredAt.After(c.OccurredAt)
}

type lotRepo struct{ v view }

func (r lotRepo) Create(_ context.Context, l *entity.CostLot) error {
	return r.v.write(func(st *state) error {
		st.lotSeq++
		l.Seq = st.lotSeq
		st.lots[l.ID] = *l
		return nil
	})
}

func (r lotRepo) ListOpen(_ context.Context, key entity.BalanceKey) ([]*entity.CostLot, error) {
	var out []*entity.CostLot
	r.v.read(func(st *state) {
		for _, l := range st.lots {
			if l.CompanyID == key.CompanyID && l.ProductID == key.ProductID &&
				l.WarehouseID == key.WarehouseID && l.IsOpen() {
				out = append(out, &l)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReceivedAt.Equal(out[j].ReceivedAt) {
			return out[i].ReceivedAt.Before(out[j].ReceivedAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}

func (r lotRepo) GetByKardexEntry(_ context.Context, companyID, kardexEntryID string) (*entity.CostLot, error) {
	var out *entity.CostLot
	r.v.read(func(st *state) {
		for _, l := range st.lots {
			if l.CompanyID == companyID && l.KardexEntryID == kardexEntryID {
				out = &l
				return
			}
		}
	})
	return out, nil
}

func (r lotRepo) UpdateRemaining(_ context.Context, l *entity.CostLot) error {
	return r.v.write(func(st *state) error {
		cur, ok := st.lots[l.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.RemainingQuantity = l.RemainingQuantity
		st.lots[l.ID] = cur
		return nil
	})
}

type movementRepo struct{ v view }

func cloneMovement(m entity.Movement) entity.Movement {
	m.Lines = append([]entity.MovementLine(nil), m.Lines...)
	return m
}

func (r movementRepo) Create(_ context.Context, m *entity.Movement) error {
	return r.v.write(func(st *state) error {
		st.movements[m.ID] = cloneMovement(*m)
		return nil
	})
}

func (r movementRepo) GetByID(_ context.Context, companyID, id string) (*entity.Movement, error) {
	var out *entity.Movement
	r.v.read(func(st *state) {
		if m, ok := st.movements[id]; ok && m.CompanyID == companyID {
			m = cloneMovement(m)
			out = &m
		}
	})
	return out, nil
}

func (r movementRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Movement, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r movementRepo) MarkVoided(_ context.Context, m *entity.Movement) error {
	return r.v.write(func(st *state) error {
		cur, ok := st.movements[m.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Status = m.Status
		cur.VoidedBy = m.VoidedBy
		cur.VoidedAt = m.VoidedAt
		st.movements[m.ID] = cur
		return nil
	})
}

type sequenceRepo struct{ v view }

func (r sequenceRepo) LockCounter(_ context.Context, companyID, prefix string, year int) (int64, error) {
	var n int64
	err := r.v.write(func(st *state) error {
		k := seqKey{companyID, prefix, year}
		if _, ok := st.counters[k]; !ok {
			st.counters[k] = 0
		}
		n = st.counters[k]
		return nil
	})
	return n, err
}

func (r sequenceRepo) MaxIssued(_ context.Context, companyID, prefix string, year int) (int64, error) {
	var n int64
	k := seqKey{companyID, prefix, year}
	r.v.read(func(st *state) {
		for _, iss := range st.issued {
			if iss.seqKey == k && iss.seq > n {
				n = iss.seq
			}
		}
	})
	return n, nil
}

func (r sequenceRepo) Exists(_ context.Context, companyID, number string) (bool, error) {
	var ok bool
	r.v.read(func(st *state) {
		_, ok = st.issued[issuedKey{companyID, number}]
	})
	return ok, nil
}

func (r sequenceRepo) Reserve(_ context.Context, companyID, prefix string, year int, seq int64, number string) error {
	return r.v.write(func(st *state) error {
		ik := issuedKey{companyID, number}
		if _, ok := st.issued[ik]; ok {
			return domain.ErrDuplicateNumber
		}
		k := seqKey{companyID, prefix, year}
		st.issued[ik] = issuedNumber{seqKey: k, seq: seq}
		if seq > st.counters[k] {
			st.counters[k] = seq
		}
		return nil
	})
}
