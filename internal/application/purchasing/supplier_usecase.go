package purchasing

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

// SupplierUseCase alta y listado de proveedores.
type SupplierUseCase struct {
	repo repository.SupplierRepository
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo}
}

// Create crea un proveedor.
func (uc *SupplierUseCase) Create(ctx context.Context, in dto.SupplierInfo) (*dto.SupplierResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("nombre del proveedor requerido: %w", domain.ErrInvalidInput)
	}
	s := newSupplier(in, time.Now().UTC())
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

// List proveedores más recientes primero.
func (uc *SupplierUseCase) List(ctx context.Context, search string, limit int) ([]dto.SupplierResponse, error) {
	list, err := uc.repo.List(ctx, search, dto.ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *toSupplierResponse(s))
	}
	return out, nil
}

// resolveSupplier busca el proveedor por nombre y teléfono. Si existe completa contacto y
// dirección vacíos con los datos recibidos; si no, lo crea.
func resolveSupplier(ctx context.Context, r repository.Repos, in dto.SupplierInfo, now time.Time) (*entity.Supplier, error) {
	name, phone := strings.TrimSpace(in.Name), strings.TrimSpace(in.Phone)
	s, err := r.Suppliers.FindByNameAndPhone(ctx, name, phone)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = newSupplier(in, now)
		if err := r.Suppliers.Create(ctx, s); err != nil {
			return nil, err
		}
		return s, nil
	}

	changed := false
	if contact := strings.TrimSpace(in.Contact); s.Contact == "" && contact != "" {
		s.Contact = contact
		changed = true
	}
	if address := strings.TrimSpace(in.Address); s.Address == "" && address != "" {
		s.Address = address
		changed = true
	}
	if changed {
		if err := r.Suppliers.Update(ctx, s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func newSupplier(in dto.SupplierInfo, now time.Time) *entity.Supplier {
	return &entity.Supplier{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		Contact:   strings.TrimSpace(in.Contact),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		CreatedAt: now,
	}
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:        s.ID,
		Name:      s.Name,
		Contact:   s.Contact,
		Phone:     s.Phone,
		Address:   s.Address,
		CreatedAt: s.CreatedAt,
	}
}
