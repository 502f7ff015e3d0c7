package model

import "time"

// Temperature is the coarse engagement tier of a lead.
type Temperature string

const (
	TemperatureNovo    Temperature = "novo"
	TemperatureQuente  Temperature = "quente"
	TemperatureMorno   Temperature = "morno" // only set manually; no shipped rule targets it
	TemperatureFrio    Temperature = "frio"
	TemperaturePerdido Temperature = "perdido"
)

// Temperatures lists every valid temperature in reporting order.
var Temperatures = []Temperature{
	TemperatureNovo,
	TemperatureQuente,
	TemperatureMorno,
	TemperatureFrio,
	TemperaturePerdido,
}

// Valid reports whether t is a known temperature value.
func (t Temperature) Valid() bool {
	switch t {
	case TemperatureNovo, TemperatureQuente, TemperatureMorno, TemperatureFrio, TemperaturePerdido:
		return true
	}
	return false
}

// HotSubstatus is the finer-grained state of a "quente" lead. Empty means none.
type HotSubstatus string

const (
	SubstatusEmConversa         HotSubstatus = "em_conversa"
	SubstatusAguardandoResposta HotSubstatus = "aguardando_resposta"
	SubstatusEmNegociacao       HotSubstatus = "em_negociacao"
	SubstatusFollowUpAgendado   HotSubstatus = "follow_up_agendado"
)

// Valid reports whether s is a known sub-status. The empty value is valid.
func (s HotSubstatus) Valid() bool {
	switch s {
	case "", SubstatusEmConversa, SubstatusAguardandoResposta, SubstatusEmNegociacao, SubstatusFollowUpAgendado:
		return true
	}
	return false
}

// Lead represents a tracked contact in the pipeline.
//
// Scheduled and AppointmentDate are a derived cache over the lead's
// appointments; the store keeps them consistent on every appointment
// mutation. Invariant: Scheduled is true iff AppointmentDate is set.
type Lead struct {
	ID                string       `gorm:"primaryKey;size:36" json:"id"`
	OrganizationID    string       `gorm:"index;size:36;not null" json:"organization_id"`
	Name              string       `gorm:"size:256;not null" json:"name"`
	Phone             string       `gorm:"size:32" json:"phone"`
	Temperature       Temperature  `gorm:"size:16;not null" json:"temperature"`
	HotSubstatus      HotSubstatus `gorm:"size:32;not null;default:''" json:"hot_substatus"`
	Scheduled         bool         `gorm:"not null" json:"scheduled"`
	AppointmentDate   *time.Time   `json:"appointment_date"`
	LastInteractionAt *time.Time   `gorm:"index" json:"last_interaction_at"`
	CreatedAt         time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"not null" json:"updated_at"`
}

// InteractionAnchor returns the timestamp rule timers compare against:
// the last interaction when one exists, otherwise the creation time.
func (l *Lead) InteractionAnchor() time.Time {
	if l.LastInteractionAt != nil {
		return *l.LastInteractionAt
	}
	return l.CreatedAt
}
