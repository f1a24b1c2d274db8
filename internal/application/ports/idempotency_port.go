package ports

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
)

// IdempotencyStore reserva claves Idempotency-Key para no crear dos veces el mismo documento.
type IdempotencyStore interface {
	// Claim reserva la clave. Si ya existía devuelve claimed=false y el valor guardado
	// ("" mientras la primera petición sigue en curso).
	Claim(ctx context.Context, key string, ttl time.Duration) (claimed bool, value string, err error)
	// Complete asocia la clave al ID del documento creado.
	Complete(ctx context.Context, key, value string, ttl time.Duration) error
	// Release libera la clave cuando la creación falló.
	Release(ctx context.Context, key string) error
}

// Guard ejecuta create una sola vez por clave. Si la clave ya se completó devuelve el ID
// guardado con replayed=true; si otra petición con la misma clave sigue en curso, ErrConflict.
// Sin store o sin clave, create se ejecuta directamente. Si el store falla se continúa sin él.
func Guard(ctx context.Context, store IdempotencyStore, key string, ttl time.Duration, create func() (string, error)) (id string, replayed bool, err error) {
	if store == nil || key == "" {
		id, err = create()
		return id, false, err
	}
	claimed, value, err := store.Claim(ctx, key, ttl)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("idempotencia no disponible, se continúa sin reserva")
		id, err = create()
		return id, false, err
	}
	if !claimed {
		if value == "" {
			return "", false, fmt.Errorf("petición %q en curso: %w", key, domain.ErrConflict)
		}
		return value, true, nil
	}
	id, err = create()
	if err != nil {
		if rerr := store.Release(ctx, key); rerr != nil {
			log.Warn().Err(rerr).Str("key", key).Msg("no se pudo liberar la clave de idempotencia")
		}
		return "", false, err
	}
	if cerr := store.Complete(ctx, key, id, ttl); cerr != nil {
		log.Warn().Err(cerr).Str("key", key).Msg("no se pudo completar la clave de idempotencia")
	}
	return id, false, nil
}
