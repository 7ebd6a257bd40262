// Package portal serves the patient-facing read surface. A patient user is
// linked to a clinic's patient record by email; users without a clinic or a
// matching record see empty lists, never errors.
package portal

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is the portal view of a booking, with the doctor's name
// joined in place of the raw doctor ID.
type Appointment struct {
	ID         uuid.UUID `json:"id"`
	Date       time.Time `json:"date"`
	Time       string    `json:"time"`
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	Reason     *string   `json:"reason,omitempty"`
	DoctorName string    `json:"doctorName"`
}

// Invoice is the portal view of a bill.
type Invoice struct {
	ID            uuid.UUID  `json:"id"`
	InvoiceNumber string     `json:"invoiceNumber"`
	Amount        float64    `json:"amount"`
	Status        string     `json:"status"`
	DueDate       time.Time  `json:"dueDate"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Stats backs the portal home screen counters.
type Stats struct {
	UpcomingAppointments int `json:"upcomingAppointments"`
	TotalConsultations   int `json:"totalConsultations"`
	PendingInvoices      int `json:"pendingInvoices"`
}
