// Package memory implementa los repositorios sobre un estado en memoria con
// transacciones por copia: Run trabaja sobre un clon y lo publica solo si fn no falla.
// Las transacciones se serializan con un único mutex.
package memory

import (
	"context"
	"sync"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
)

type state struct {
	products    map[string]*entity.Product
	productIDs  []string
	variants    map[string]*entity.Variant
	variantIDs  []string
	movements   []*entity.InventoryMovement
	sales       map[string]*entity.Sale
	saleIDs     []string
	customers   map[string]*entity.Customer
	customerIDs []string
	purchases   map[string]*entity.Purchase
	purchaseIDs []string
	suppliers   map[string]*entity.Supplier
	supplierIDs []string
	sequences   map[string]int64
	settings    *entity.CompanySettings
	users       map[string]*entity.User
}

func newState() *state {
	return &state{
		products:  map[string]*entity.Product{},
		variants:  map[string]*entity.Variant{},
		sales:     map[string]*entity.Sale{},
		customers: map[string]*entity.Customer{},
		purchases: map[string]*entity.Purchase{},
		suppliers: map[string]*entity.Supplier{},
		sequences: map[string]int64{},
		users:     map[string]*entity.User{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = copyProduct(v)
	}
	for k, v := range s.variants {
		c.variants[k] = copyVariant(v)
	}
	c.movements = make([]*entity.InventoryMovement, len(s.movements))
	for i, m := range s.movements {
		c.movements[i] = copyMovement(m)
	}
	for k, v := range s.sales {
		c.sales[k] = copySale(v)
	}
	for k, v := range s.customers {
		cc := *v
		c.customers[k] = &cc
	}
	for k, v := range s.purchases {
		c.purchases[k] = copyPurchase(v)
	}
	for k, v := range s.suppliers {
		cc := *v
		c.suppliers[k] = &cc
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	for k, v := range s.users {
		cc := *v
		c.users[k] = &cc
	}
	if s.settings != nil {
		cc := *s.settings
		c.settings = &cc
	}
	c.productIDs = append([]string(nil), s.productIDs...)
	c.variantIDs = append([]string(nil), s.variantIDs...)
	c.saleIDs = append([]string(nil), s.saleIDs...)
	c.customerIDs = append([]string(nil), s.customerIDs...)
	c.purchaseIDs = append([]string(nil), s.purchaseIDs...)
	c.supplierIDs = append([]string(nil), s.supplierIDs...)
	return c
}

// access ejecuta fn sobre el estado: en transacción, el clon sin bloquear; fuera, el estado vivo bajo el mutex.
type access func(fn func(st *state) error) error

// Store almacén en memoria. Implementa repository.TxRunner.
type Store struct {
	mu sync.Mutex
	st *state
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{st: newState()}
}

// Repos devuelve repositorios fuera de transacción (cada llamada toma el mutex).
func (s *Store) Repos() repository.Repos {
	return newRepos(func(fn func(st *state) error) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn(s.st)
	})
}

// Run implementa repository.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(r repository.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(newRepos(func(f func(st *state) error) error { return f(work) })); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

var _ repository.TxRunner = (*Store)(nil)

func newRepos(a access) repository.Repos {
	return repository.Repos{
		Products:  &productRepo{a},
		Variants:  &variantRepo{a},
		Movements: &movementRepo{a},
		Sales:     &saleRepo{a},
		Customers: &customerRepo{a},
		Purchases: &purchaseRepo{a},
		Suppliers: &supplierRepo{a},
		Sequences: &sequenceRepo{a},
		Settings:  &settingsRepo{a},
		Users:     &userRepo{a},
		Reports:   &reportRepo{a},
	}
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

func copyProduct(p *entity.Product) *entity.Product {
	c := *p
	c.Variants = nil
	return &c
}

func copyVariant(v *entity.Variant) *entity.Variant {
	c := *v
	return &c
}

func copyMovement(m *entity.InventoryMovement) *entity.InventoryMovement {
	c := *m
	return &c
}

func copySale(s *entity.Sale) *entity.Sale {
	c := *s
	c.Customer = nil
	c.Items = make([]*entity.SaleItem, len(s.Items))
	for i, it := range s.Items {
		ic := *it
		c.Items[i] = &ic
	}
	return &c
}

func copyPurchase(p *entity.Purchase) *entity.Purchase {
	c := *p
	c.Supplier = nil
	c.Items = make([]*entity.PurchaseItem, len(p.Items))
	for i, it := range p.Items {
		ic := *it
		c.Items[i] = &ic
	}
	return &c
}
