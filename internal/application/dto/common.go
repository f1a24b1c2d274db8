package dto

import (
	"fmt"
	"time"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
)

// Límites de listados.
const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// ClampLimit aplica el límite por defecto y el máximo permitido.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessageResponse respuesta simple con mensaje.
type MessageResponse struct {
	Message string `json:"message"`
}

// ParseDateRange interpreta start/end como fechas YYYY-MM-DD (UTC). end es inclusivo:
// el límite superior devuelto es el inicio del día siguiente.
func ParseDateRange(start, end string) (from, to *time.Time, err error) {
	if start != "" {
		t, err := time.Parse(time.DateOnly, start)
		if err != nil {
			return nil, nil, fmt.Errorf("start_date %q: %w", start, domain.ErrInvalidInput)
		}
		from = &t
	}
	if end != "" {
		t, err := time.Parse(time.DateOnly, end)
		if err != nil {
			return nil, nil, fmt.Errorf("end_date %q: %w", end, domain.ErrInvalidInput)
		}
		t = t.AddDate(0, 0, 1)
		to = &t
	}
	return from, to, nil
}
