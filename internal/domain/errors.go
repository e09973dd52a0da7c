package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the operational core. Handlers map these to HTTP
// statuses with errors.Is; services wrap them with context (plate, space,
// shift id) so the message is displayable without re-querying.
var (
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrVehicleAlreadyParked = errors.New("vehicle already parked")
	ErrVehicleNotParked     = errors.New("vehicle not parked")
	ErrSpaceUnavailable     = errors.New("space unavailable")
	ErrSpaceOccupied        = errors.New("space occupied")
	ErrShiftAlreadyOpen     = errors.New("shift already open")
	ErrNoTariffConfigured   = errors.New("no tariff configured")
	ErrBackendUnavailable   = errors.New("backend unavailable")
)

// Validationf wraps ErrValidation with a user-correctable detail message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}
