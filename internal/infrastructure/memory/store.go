// Package memory implementa todos los puertos de repositorio en memoria con semántica transaccional:
// las transacciones se serializan y trabajan sobre una copia del estado que solo se publica al confirmar.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Inventario-minero/internal/domain/entity"
	"github.com/jhoicas/Inventario-minero/internal/domain/repository"
)

type seqKey struct {
	companyID string
	prefix    string
	year      int
}

type issuedKey struct {
	companyID string
	number    string
}

type issuedNumber struct {
	seqKey
	seq int64
}

// state instantánea completa. Los valores de los mapas no se mutan en sitio: cada escritura
// guarda una copia nueva, por eso clonar solo copia los mapas.
type state struct {
	companies  map[string]entity.Company
	products   map[string]entity.Product
	warehouses map[string]entity.Warehouse
	balances   map[entity.BalanceKey]entity.StockBalance

	kardex    []entity.KardexEntry
	kardexIdx map[string]int
	kardexSeq int64

	lots   map[string]entity.CostLot
	lotSeq int64

	movements map[string]entity.Movement
	counters  map[seqKey]int64
	issued    map[issuedKey]issuedNumber

	quotations     map[string]entity.Quotation
	purchaseOrders map[string]entity.PurchaseOrder
	requisitions   map[string]entity.Requisition
	exitVouchers   map[string]entity.ExitVoucher
	eppAssignments map[string]entity.EppAssignment
	equipment      map[string]entity.EquipmentPrestable
	loans          map[string]entity.EquipmentLoan
}

func newState() *state {
	return &state{
		companies:      map[string]entity.Company{},
		products:       map[string]entity.Product{},
		warehouses:     map[string]entity.Warehouse{},
		balances:       map[entity.BalanceKey]entity.StockBalance{},
		kardexIdx:      map[string]int{},
		lots:           map[string]entity.CostLot{},
		movements:      map[string]entity.Movement{},
		counters:       map[seqKey]int64{},
		issued:         map[issuedKey]issuedNumber{},
		quotations:     map[string]entity.Quotation{},
		purchaseOrders: map[string]entity.PurchaseOrder{},
		requisitions:   map[string]entity.Requisition{},
		exitVouchers:   map[string]entity.ExitVoucher{},
		eppAssignments: map[string]entity.EppAssignment{},
		equipment:      map[string]entity.EquipmentPrestable{},
		loans:          map[string]entity.EquipmentLoan{},
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	return &state{
		companies:  copyMap(s.companies),
		products:   copyMap(s.products),
		warehouses: copyMap(s.warehouses),
		balances:   copyMap(s.balances),
		// Capacidad recortada: un append de la transacción nunca escribe sobre el arreglo confirmado.
		kardex:         s.kardex[:len(s.kardex):len(s.kardex)],
		kardexIdx:      copyMap(s.kardexIdx),
		kardexSeq:      s.kardexSeq,
		lots:           copyMap(s.lots),
		lotSeq:         s.lotSeq,
		movements:      copyMap(s.movements),
		counters:       copyMap(s.counters),
		issued:         copyMap(s.issued),
		quotations:     copyMap(s.quotations),
		purchaseOrders: copyMap(s.purchaseOrders),
		requisitions:   copyMap(s.requisitions),
		exitVouchers:   copyMap(s.exitVouchers),
		eppAssignments: copyMap(s.eppAssignments),
		equipment:      copyMap(s.equipment),
		loans:          copyMap(s.loans),
	}
}

// view acceso al estado: dentro de una transacción o directo sobre el estado confirmado.
type view interface {
	read(fn func(st *state))
	write(fn func(st *state) error) error
}

// txView estado de trabajo de una transacción (el Store ya tiene el turno exclusivo).
type txView struct{ st *state }

func (v txView) read(fn func(st *state))              { fn(v.st) }
func (v txView) write(fn func(st *state) error) error { return fn(v.st) }

// storeView fuera de transacción: lecturas sobre la última instantánea confirmada, escrituras
// como transacciones de una sola operación.
type storeView struct{ s *Store }

func (v storeView) read(fn func(st *state)) {
	v.s.mu.RLock()
	cur := v.s.cur
	v.s.mu.RUnlock()
	fn(cur)
}

func (v storeView) write(fn func(st *state) error) error {
	return v.s.commit(func(st *state) ([]func(), error) { return nil, fn(st) })
}

// Store almacén en memoria. Implementa inventory.Store.
type Store struct {
	txMu sync.Mutex   // serializa transacciones
	mu   sync.RWMutex // protege cur
	cur  *state
}

// New almacén vacío.
func New() *Store {
	return &Store{cur: newState()}
}

// Run ejecuta fn en una transacción: si fn falla nada de lo escrito es visible.
// Las funciones registradas con AfterCommit se ejecutan tras publicar el estado.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(func(st *state) ([]func(), error) {
		var hooks []func()
		repos := reposFor(txView{st: st}).WithAfterCommit(func(f func()) { hooks = append(hooks, f) })
		err := fn(repos)
		return hooks, err
	})
}

func (s *Store) commit(fn func(st *state) ([]func(), error)) error {
	s.txMu.Lock()
	s.mu.RLock()
	work := s.cur.clone()
	s.mu.RUnlock()

	hooks, err := fn(work)
	if err != nil {
		s.txMu.Unlock()
		return err
	}
	s.mu.Lock()
	s.cur = work
	s.mu.Unlock()
	s.txMu.Unlock()

	for _, h := range hooks {
		h()
	}
	return nil
}

// Repos repositorios fuera de transacción.
func (s *Store) Repos() repository.Repos {
	return reposFor(storeView{s: s})
}

func reposFor(v view) repository.Repos {
	return repository.Repos{
		Companies:      companyRepo{v},
		Products:       productRepo{v},
		Warehouses:     warehouseRepo{v},
		Balances:       stockRepo{v},
		Kardex:         kardexRepo{v},
		Lots:           lotRepo{v},
		Movements:      movementRepo{v},
		Sequences:      sequenceRepo{v},
		Quotations:     quotationRepo{v},
		PurchaseOrders: purchaseOrderRepo{v},
		Requisitions:   requisitionRepo{v},
		ExitVouchers:   exitVoucherRepo{v},
		EppAssignments: eppRepo{v},
		Equipment:      equipmentRepo{v},
		Loans:          loanRepo{v},
	}
}
