package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leo-o93/sorrija-crm-odontologico-sub001/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	// Leads
	CreateLead(ctx context.Context, lead *model.Lead) error
	LeadByID(ctx context.Context, id string) (model.Lead, error)
	LeadsByOrganization(ctx context.Context, orgID string) ([]model.Lead, error)
	RecordInteraction(ctx context.Context, leadID string, at time.Time) error
	TemperatureCounts(ctx context.Context, orgID string) (map[model.Temperature]int64, error)

	// Transition rules
	CreateRule(ctx context.Context, rule *model.TransitionRule) error
	RulesByOrganization(ctx context.Context, orgID string) ([]model.TransitionRule, error)
	ActiveRules(ctx context.Context) ([]model.TransitionRule, error)
	CandidateLeads(ctx context.Context, rule model.TransitionRule, threshold time.Time) ([]model.Lead, error)
	ApplyRuleActions(ctx context.Context, rule model.TransitionRule, leadIDs []string, now time.Time) error

	// Appointments. Mutations reconcile the owning lead's scheduling
	// fields in the same transaction.
	CreateAppointment(ctx context.Context, appt *model.Appointment) error
	AppointmentByID(ctx context.Context, id string) (model.Appointment, error)
	AppointmentsByOrganization(ctx context.Context, orgID string) ([]model.Appointment, error)
	UpdateAppointment(ctx context.Context, appt *model.Appointment) error
	DeleteAppointment(ctx context.Context, id string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) CreateLead(ctx context.Context, lead *model.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.Temperature == "" {
		lead.Temperature = model.TemperatureNovo
	}
	if err := s.db.WithContext(ctx).Create(lead).Error; err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

func (s *gormStore) LeadByID(ctx context.Context, id string) (model.Lead, error) {
	var lead model.Lead
	if err := s.db.WithContext(ctx).First(&lead, "id = ?", id).Error; err != nil {
		return model.Lead{}, err
	}
	return lead, nil
}

func (s *gormStore) LeadsByOrganization(ctx context.Context, orgID string) ([]model.Lead, error) {
	var leads []model.Lead
	if err := s.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, nil
}

// RecordInteraction stamps a lead's last contact time, restarting its rule timers.
func (s *gormStore) RecordInteraction(ctx context.Context, leadID string, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&model.Lead{}).
		Where("id = ?", leadID).
		Updates(map[string]any{
			"last_interaction_at": at,
			"updated_at":          at,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to record interaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TemperatureCounts aggregates leads per temperature for one organization.
// Every temperature appears in the result, zero-valued when unused, so the
// reporting surface shows morno even though no rule targets it.
func (s *gormStore) TemperatureCounts(ctx context.Context, orgID string) (map[model.Temperature]int64, error) {
	type aggRow struct {
		Temperature model.Temperature
		Total       int64
	}
	var rows []aggRow
	if err := s.db.WithContext(ctx).
		Model(&model.Lead{}).
		Select("temperature, COUNT(*) as total").
		Where("organization_id = ?", orgID).
		Group("temperature").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate lead temperatures: %w", err)
	}

	counts := make(map[model.Temperature]int64, len(model.Temperatures))
	for _, t := range model.Temperatures {
		counts[t] = 0
	}
	for _, r := range rows {
		counts[r.Temperature] = r.Total
	}
	return counts, nil
}
