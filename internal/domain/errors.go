package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidQuantity   = errors.New("cantidad inválida: debe ser mayor que cero")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrItemNotFound      = errors.New("ítem no encontrado")
	ErrLocationNotFound  = errors.New("ubicación no encontrada")
	ErrInvalidTransition = errors.New("transición de estado inválida")
	ErrAlreadyFulfilled  = errors.New("la solicitud ya fue completada")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrReferenceConflict = errors.New("el recurso está referenciado por movimientos")
	ErrTransientStore    = errors.New("falla transitoria del almacenamiento, reintente")
)

// InsufficientStockError detalla un faltante: qué ítem, en qué ubicación, cuánto se pidió y cuánto hay.
// errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientStockError struct {
	ItemID       string
	ItemName     string
	LocationID   string
	LocationCode string
	Requested    decimal.Decimal
	Available    decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente de %s en %s: solicitado %s, disponible %s",
		e.ItemName, e.LocationCode, e.Requested.String(), e.Available.String())
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Shortfall cantidad faltante para cubrir lo solicitado.
func (e *InsufficientStockError) Shortfall() decimal.Decimal {
	return e.Requested.Sub(e.Available)
}

// TransitionError transición rechazada por el estado de origen de la solicitud.
// Siempre coincide con ErrInvalidTransition; además con ErrAlreadyFulfilled cuando se intenta
// completar una solicitud que ya está en su estado final de éxito.
type TransitionError struct {
	RequestID  string
	Transition string
	From       string
	Fulfilled  bool
}

func (e *TransitionError) Error() string {
	if e.Fulfilled {
		return fmt.Sprintf("solicitud %s ya completada (%s): no se puede %s", e.RequestID, e.From, e.Transition)
	}
	return fmt.Sprintf("solicitud %s: transición %s no permitida desde %s", e.RequestID, e.Transition, e.From)
}

func (e *TransitionError) Is(target error) bool {
	if target == ErrInvalidTransition {
		return true
	}
	return e.Fulfilled && target == ErrAlreadyFulfilled
}

// ReferenceConflictError el ítem tiene movimientos y no admite el cambio pedido.
type ReferenceConflictError struct {
	ItemID   string
	ItemName string
	Reason   string
}

func (e *ReferenceConflictError) Error() string {
	return fmt.Sprintf("ítem %s (%s) referenciado por movimientos: %s", e.ItemName, e.ItemID, e.Reason)
}

func (e *ReferenceConflictError) Is(target error) bool {
	return target == ErrReferenceConflict
}

// Transient envuelve un error de infraestructura reintentable (serialización, deadlock, conexión).
func Transient(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrTransientStore, err)
}
