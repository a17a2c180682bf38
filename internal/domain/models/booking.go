package models

import "github.com/shopspring/decimal"

// BookingPaymentStatus is the payment flag the booking module displays
type BookingPaymentStatus string

const (
	BookingUnpaid BookingPaymentStatus = "unpaid"
	BookingPaid   BookingPaymentStatus = "paid"
)

// Booking is the slice of a booking this service reads and writes.
// Bookings are owned by the booking module.
type Booking struct {
	ID            string
	HotelID       string
	TotalPrice    decimal.Decimal
	PaymentStatus BookingPaymentStatus
}

// PaymentMethod selects which gateway flow a booking payment uses
type PaymentMethod string

const (
	PaymentMethodQR    PaymentMethod = "qr"
	PaymentMethodPayOS PaymentMethod = "payos"
)

// BookingPaymentInstructions is what a guest needs to complete a payment
type BookingPaymentInstructions struct {
	PaymentID   string
	TxRef       string
	OrderCode   int64
	Amount      decimal.Decimal
	Method      PaymentMethod
	QRImage     string // data URL or hosted image
	QRCode      string // raw EMV payload
	CheckoutURL string
}
