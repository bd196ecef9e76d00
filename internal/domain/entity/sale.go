package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la orden.
const (
	SaleStatusPending    = "Pending"
	SaleStatusProcessing = "Processing"
	SaleStatusCompleted  = "Completed"
	SaleStatusCancelled  = "Cancelled"
)

// Estados de pago.
const (
	PaymentStatusPaid   = "Paid"
	PaymentStatusUnpaid = "Unpaid"
)

// Sale cabecera de una venta. Total se calcula de las líneas al crear y después
// solo cambia por corrección administrativa explícita.
type Sale struct {
	ID            int64
	SaleNumber    string
	CustomerName  string
	Contact       string
	PaymentMethod string
	PaymentStatus string
	Total         decimal.Decimal
	Status        string
	Address       *string
	CreatedAt     time.Time
	CreatedBy     string
}

// SaleItem línea de venta. Nombre, marca y precio son copia del catálogo al momento
// de la venta: cambios posteriores de precio no alteran ventas pasadas.
type SaleItem struct {
	ID          int64
	SaleID      int64
	ProductID   string
	ProductName string
	Brand       string
	UnitPrice   decimal.Decimal
	Quantity    int
	Subtotal    decimal.Decimal
}

// IsFinalized indica si la orden está en un estado terminal.
func (s *Sale) IsFinalized() bool {
	return IsFinalStatus(s.Status)
}

// IsFinalStatus Completed y Cancelled son terminales.
func IsFinalStatus(status string) bool {
	return status == SaleStatusCompleted || status == SaleStatusCancelled
}

// ValidSaleStatus reporta si status es uno de los estados conocidos.
func ValidSaleStatus(status string) bool {
	switch status {
	case SaleStatusPending, SaleStatusProcessing, SaleStatusCompleted, SaleStatusCancelled:
		return true
	}
	return false
}

// ValidPaymentStatus reporta si status es Paid o Unpaid.
func ValidPaymentStatus(status string) bool {
	return status == PaymentStatusPaid || status == PaymentStatusUnpaid
}

// CanTransition valida el paso de un estado a otro.
// Pending → Processing | Completed | Cancelled; Processing → Completed | Cancelled.
// Repetir el estado actual no es transición y se acepta mientras no sea terminal.
func CanTransition(from, to string) bool {
	if from == "" {
		from = SaleStatusPending
	}
	if IsFinalStatus(from) {
		return false
	}
	if from == to {
		return true
	}
	switch from {
	case SaleStatusPending:
		return to == SaleStatusProcessing || to == SaleStatusCompleted || to == SaleStatusCancelled
	case SaleStatusProcessing:
		return to == SaleStatusCompleted || to == SaleStatusCancelled
	}
	return false
}

// SaleUpdate actualización parcial: cada campo nil queda sin tocar.
type SaleUpdate struct {
	CustomerName  *string
	Contact       *string
	PaymentMethod *string
	PaymentStatus *string
	Total         *decimal.Decimal
	Status        *string
	Address       *string
}

// IsEmpty indica que no se suministró ningún campo.
func (u SaleUpdate) IsEmpty() bool {
	return u.CustomerName == nil && u.Contact == nil && u.PaymentMethod == nil &&
		u.PaymentStatus == nil && u.Total == nil && u.Status == nil && u.Address == nil
}
