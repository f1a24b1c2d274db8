package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrVariantNotFound    = fmt.Errorf("variante no encontrada: %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("usuario no encontrado: %w", ErrNotFound)
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidQuantity    = errors.New("cantidad inválida")
	ErrInvalidStatus      = errors.New("estado inválido")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
)
