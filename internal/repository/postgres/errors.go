package postgres

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/luischz/inventario_ventas/internal/domain"
)

// Postgres error codes that mean the transaction lost a race with a
// concurrent one and the whole operation can be retried.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// mapSQLError translates conflict-class Postgres errors into ErrRetryable so
// callers can distinguish them from permanent storage failures.
func mapSQLError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
			return fmt.Errorf("%w: %v", domain.ErrRetryable, err)
		}
	}
	return err
}
