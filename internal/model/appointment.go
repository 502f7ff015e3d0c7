package model

import "time"

// StatusScheduled is the literal status the reconciliation fallback query
// matches when looking for a replacement appointment.
const StatusScheduled = "scheduled"

// StatusClass is the canonical classification of an appointment status.
type StatusClass string

const (
	StatusClassActive  StatusClass = "active"
	StatusClassClosed  StatusClass = "closed"
	StatusClassUnknown StatusClass = "unknown"
)

// Appointment statuses arrive from two overlapping vocabularies (English and
// Portuguese). Classification happens here, in one place, instead of ad hoc
// string-set checks at call sites.
var statusClasses = map[string]StatusClass{
	StatusScheduled: StatusClassActive,
	"confirmed":     StatusClassActive,
	"rescheduled":   StatusClassActive,
	"agendado":      StatusClassActive,
	"confirmado":    StatusClassActive,
	"remarcado":     StatusClassActive,
	"reagendado":    StatusClassActive,
	"reprogramado":  StatusClassActive,

	"attended":  StatusClassClosed,
	"cancelled": StatusClassClosed,
	"no_show":   StatusClassClosed,
	"atendido":  StatusClassClosed,
	"cancelado": StatusClassClosed,
	"faltou":    StatusClassClosed,
	"falta":     StatusClassClosed,
}

// ClassifyStatus maps a raw appointment status onto its canonical class.
// Unrecognized strings classify as unknown and never touch the lead cache.
func ClassifyStatus(status string) StatusClass {
	if class, ok := statusClasses[status]; ok {
		return class
	}
	return StatusClassUnknown
}

// Appointment is a scheduled visit referencing a lead. LeadID is nullable
// because an appointment may reference a different contact kind; those rows
// are stored but never reconciled.
type Appointment struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	OrganizationID  string    `gorm:"index;size:36;not null" json:"organization_id"`
	LeadID          *string   `gorm:"index;size:36" json:"lead_id"`
	AppointmentDate time.Time `gorm:"not null" json:"appointment_date"`
	Status          string    `gorm:"size:32;not null" json:"status"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

// DateOnly strips the time portion of the appointment timestamp; the lead
// cache stores dates, not times.
func (a *Appointment) DateOnly() time.Time {
	y, m, d := a.AppointmentDate.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, a.AppointmentDate.Location())
}
