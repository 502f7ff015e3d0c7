package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leo-o93/sorrija-crm-odontologico-sub001/internal/model"
)

// The lead's scheduled/appointment_date fields are a cache over the
// appointments table. Every mutation below recomputes them inside the same
// transaction as the appointment write, so a reconciliation failure rolls
// the whole mutation back instead of leaving the lead silently stale.

// CreateAppointment stores a new appointment and reconciles the owning lead.
func (s *gormStore) CreateAppointment(ctx context.Context, appt *model.Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(appt).Error; err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}
		if appt.LeadID == nil {
			return nil
		}
		if model.ClassifyStatus(appt.Status) == model.StatusClassActive {
			date := appt.DateOnly()
			return setLeadSchedule(tx, *appt.LeadID, &date)
		}
		return nil
	})
}

func (s *gormStore) AppointmentByID(ctx context.Context, id string) (model.Appointment, error) {
	var appt model.Appointment
	if err := s.db.WithContext(ctx).First(&appt, "id = ?", id).Error; err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}

func (s *gormStore) AppointmentsByOrganization(ctx context.Context, orgID string) ([]model.Appointment, error) {
	var appts []model.Appointment
	if err := s.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("appointment_date ASC").
		Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appts, nil
}

// UpdateAppointment saves the modified appointment and reconciles the owning
// lead based on the resulting status.
func (s *gormStore) UpdateAppointment(ctx context.Context, appt *model.Appointment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(appt).Error; err != nil {
			return fmt.Errorf("failed to update appointment: %w", err)
		}
		if appt.LeadID == nil {
			return nil
		}
		switch model.ClassifyStatus(appt.Status) {
		case model.StatusClassActive:
			date := appt.DateOnly()
			return setLeadSchedule(tx, *appt.LeadID, &date)
		case model.StatusClassClosed:
			return reconcileFromRemaining(tx, *appt.LeadID, appt.ID)
		default:
			// Unrecognized status: the lead cache is left untouched.
			return nil
		}
	})
}

// DeleteAppointment removes the appointment and reconciles the owning lead
// against whatever scheduled appointments remain.
func (s *gormStore) DeleteAppointment(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var appt model.Appointment
		if err := tx.First(&appt, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Appointment{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete appointment: %w", err)
		}
		if appt.LeadID == nil {
			return nil
		}
		return reconcileFromRemaining(tx, *appt.LeadID, "")
	})
}

// reconcileFromRemaining points the lead at its earliest remaining
// appointment with the literal status "scheduled", or clears the cache when
// none remains. The narrow status match (not the full active set) mirrors
// the established reconciliation behavior; see DESIGN.md.
func reconcileFromRemaining(tx *gorm.DB, leadID, excludeApptID string) error {
	q := tx.Where("lead_id = ? AND status = ?", leadID, model.StatusScheduled)
	if excludeApptID != "" {
		q = q.Where("id <> ?", excludeApptID)
	}

	var next model.Appointment
	err := q.Order("appointment_date ASC").First(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return setLeadSchedule(tx, leadID, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to find replacement appointment: %w", err)
	}
	date := next.DateOnly()
	return setLeadSchedule(tx, leadID, &date)
}

// setLeadSchedule writes the lead's cached scheduling fields. A nil date
// clears them; a non-nil date marks the lead as scheduled for that day.
func setLeadSchedule(tx *gorm.DB, leadID string, date *time.Time) error {
	updates := map[string]any{
		"scheduled":        date != nil,
		"appointment_date": date,
		"updated_at":       time.Now().UTC(),
	}
	if err := tx.Model(&model.Lead{}).Where("id = ?", leadID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update lead %s scheduling fields: %w", leadID, err)
	}
	return nil
}
