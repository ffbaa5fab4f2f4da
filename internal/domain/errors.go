package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrTransient         = errors.New("error transitorio de almacenamiento")
	ErrInternal          = errors.New("error interno")
)

// InsufficientStockError indica que una salida dejaría el stock en negativo.
// Es un error de validación de negocio: errors.Is coincide con ErrInsufficientStock y ErrInvalidInput.
type InsufficientStockError struct {
	ProductID   string
	WarehouseID string
	Available   int64
	Requested   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s en bodega %s: disponible=%d, solicitado=%d",
		e.ProductID, e.WarehouseID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock || target == ErrInvalidInput
}

// InvalidTransitionError se devuelve al intentar mover una transacción fuera de un estado terminal
// o hacia un estado que no es sucesor legal.
type InvalidTransitionError struct {
	TransactionID string
	From          string
	To            string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transacción %s: no se permite pasar de %s a %s", e.TransactionID, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition || target == ErrInvalidInput
}

// Invalid construye un error de validación con detalle.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFound construye un ErrNotFound con el tipo de recurso y su identificador.
func NotFound(resource, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, resource, id)
}

// IsRetryable indica si la operación completa puede reintentarse sin intervención del usuario
// (colisión de número de referencia o fallo transitorio de la BD).
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrInsufficientStock) {
		return false
	}
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrTransient)
}
