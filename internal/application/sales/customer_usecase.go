package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
)

// CustomerUseCase alta y listado de clientes.
type CustomerUseCase struct {
	repo repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo}
}

// Create crea un cliente.
func (uc *CustomerUseCase) Create(ctx context.Context, in dto.CustomerInfo) (*dto.CustomerResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("nombre del cliente requerido: %w", domain.ErrInvalidInput)
	}
	c := &entity.Customer{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCustomerResponse(c), nil
}

// List clientes más recientes primero.
func (uc *CustomerUseCase) List(ctx context.Context, search string, limit int) ([]dto.CustomerResponse, error) {
	list, err := uc.repo.List(ctx, search, dto.ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toCustomerResponse(c))
	}
	return out, nil
}

// resolveCustomer usa el cliente indicado por ID, o el que coincide en nombre y teléfono,
// o crea uno nuevo.
func resolveCustomer(ctx context.Context, r repository.Repos, in dto.CustomerInfo, now time.Time) (*entity.Customer, error) {
	if in.ID != "" {
		c, err := r.Customers.GetByID(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("cliente %s: %w", in.ID, domain.ErrNotFound)
		}
		return c, nil
	}
	name, phone := strings.TrimSpace(in.Name), strings.TrimSpace(in.Phone)
	c, err := r.Customers.FindByNameAndPhone(ctx, name, phone)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}
	c = &entity.Customer{
		ID:        uuid.New().String(),
		Name:      name,
		Phone:     phone,
		Address:   strings.TrimSpace(in.Address),
		CreatedAt: now,
	}
	if err := r.Customers.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
	}
}
