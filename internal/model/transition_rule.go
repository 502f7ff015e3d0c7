package model

import "time"

// TriggerEvent selects which timer semantics a rule evaluates under.
type TriggerEvent string

const (
	// TriggerInactivityTimer matches leads idle past the threshold,
	// falling back to creation time when no interaction was recorded.
	TriggerInactivityTimer TriggerEvent = "inactivity_timer"
	// TriggerSubstatusTimeout behaves like the inactivity timer but is
	// meant to be paired with a from_substatus filter.
	TriggerSubstatusTimeout TriggerEvent = "substatus_timeout"
	// TriggerNoResponse matches only leads with a recorded interaction
	// older than the threshold; it presumes a prior contact happened.
	TriggerNoResponse TriggerEvent = "no_response"
)

// Valid reports whether e is a known trigger event.
func (e TriggerEvent) Valid() bool {
	switch e {
	case TriggerInactivityTimer, TriggerSubstatusTimeout, TriggerNoResponse:
		return true
	}
	return false
}

// TransitionRule is a tenant-defined policy moving leads between
// temperature/sub-status states after a period of inactivity. Rules are
// read-only to the engine and always scoped to one organization.
type TransitionRule struct {
	ID             string       `gorm:"primaryKey;size:36" json:"id"`
	OrganizationID string       `gorm:"index;size:36;not null" json:"organization_id"`
	Name           string       `gorm:"size:256;not null" json:"name"`
	Priority       int          `gorm:"not null" json:"priority"`
	Active         bool         `gorm:"not null" json:"active"`
	TriggerEvent   TriggerEvent `gorm:"size:32;not null" json:"trigger_event"`

	FromTemperature Temperature  `gorm:"size:16;not null;default:''" json:"from_temperature"`
	FromSubstatus   HotSubstatus `gorm:"size:32;not null;default:''" json:"from_substatus"`
	TimerMinutes    int          `gorm:"not null" json:"timer_minutes"`

	ActionSetTemperature Temperature  `gorm:"size:16;not null;default:''" json:"action_set_temperature"`
	ActionClearSubstatus bool         `gorm:"not null" json:"action_clear_substatus"`
	ActionSetSubstatus   HotSubstatus `gorm:"size:32;not null;default:''" json:"action_set_substatus"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// ActionPlan is the resolved effect of a rule on a matched lead. The three
// loosely-typed action columns collapse into this one place so illegal
// combinations cannot leak into writes.
type ActionPlan struct {
	// Temperature is the new temperature, or empty for no change.
	Temperature Temperature
	// ClearSubstatus empties the sub-status. Wins over Substatus.
	ClearSubstatus bool
	// Substatus is the new sub-status, or empty for no change.
	Substatus HotSubstatus
}

// Plan resolves the rule's action columns. A rule cooling a lead to frio
// always clears the sub-status: frio and a non-empty sub-status must never
// coexist, regardless of what the rule's other action fields say.
func (r *TransitionRule) Plan() ActionPlan {
	plan := ActionPlan{Temperature: r.ActionSetTemperature}
	if r.ActionClearSubstatus {
		plan.ClearSubstatus = true
	} else if r.ActionSetSubstatus != "" {
		plan.Substatus = r.ActionSetSubstatus
	}
	if r.ActionSetTemperature == TemperatureFrio {
		plan.ClearSubstatus = true
		plan.Substatus = ""
	}
	return plan
}

// Threshold returns the cutoff instant for this rule's timer relative to now.
func (r *TransitionRule) Threshold(now time.Time) time.Time {
	return now.Add(-time.Duration(r.TimerMinutes) * time.Minute)
}
