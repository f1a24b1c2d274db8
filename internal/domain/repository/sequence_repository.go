package repository

import "context"

// Tipos de secuencia documental.
const (
	SequenceInvoice  = "INV"
	SequencePurchase = "PO"
)

// SequenceRepository contadores por (tipo, año) para numerar documentos.
type SequenceRepository interface {
	// Next incrementa y devuelve el siguiente valor; bloquea el contador hasta el fin de la transacción.
	Next(ctx context.Context, kind string, year int) (int64, error)
	// Current devuelve el último valor emitido (0 si no hay ninguno).
	Current(ctx context.Context, kind string, year int) (int64, error)
}
