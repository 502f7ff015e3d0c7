package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/leo-o93/sorrija-crm-odontologico-sub001/internal/model"
)

// newTestDB creates an isolated in-memory SQLite database with migrations applied.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&model.Lead{}, &model.Appointment{}, &model.TransitionRule{}))
	return db
}

func seedLead(t *testing.T, db *gorm.DB, lead model.Lead) model.Lead {
	t.Helper()
	if lead.ID == "" {
		lead.ID = fmt.Sprintf("lead-%d", time.Now().UnixNano())
	}
	if lead.Temperature == "" {
		lead.Temperature = model.TemperatureNovo
	}
	require.NoError(t, db.Create(&lead).Error)
	return lead
}

func getLead(t *testing.T, db *gorm.DB, id string) model.Lead {
	t.Helper()
	var lead model.Lead
	require.NoError(t, db.First(&lead, "id = ?", id).Error)
	return lead
}

func leadID(id string) *string { return &id }

func TestCreateAppointment_ActiveStatusSchedulesLead(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	lead := seedLead(t, db, model.Lead{ID: "l1", OrganizationID: "org-1", Name: "Maria"})

	appt := model.Appointment{
		OrganizationID:  "org-1",
		LeadID:          leadID(lead.ID),
		AppointmentDate: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Status:          "scheduled",
	}
	require.NoError(t, s.CreateAppointment(ctx, &appt))
	assert.NotEmpty(t, appt.ID)

	got := getLead(t, db, lead.ID)
	assert.True(t, got.Scheduled)
	require.NotNil(t, got.AppointmentDate)
	assert.True(t, got.AppointmentDate.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)),
		"appointment_date should hold the date portion only, got %v", got.AppointmentDate)
}

func TestCreateAppointment_PortugueseActiveStatus(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	lead := seedLead(t, db, model.Lead{ID: "l1", OrganizationID: "org-1", Name: "João"})

	appt := model.Appointment{
		OrganizationID:  "org-1",
		LeadID:          leadID(lead.ID),
		AppointmentDate: time.Date(2025, 4, 1, 14, 30, 0, 0, time.UTC),
		Status:          "agendado",
	}
	require.NoError(t, s.CreateAppointment(ctx, &appt))

	got := getLead(t, db, lead.ID)
	assert.True(t, got.Scheduled)
	require.NotNil(t, got.AppointmentDate)
	assert.True(t, got.AppointmentDate.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))
}

func TestCreateAppointment_NonActiveStatusLeavesLead(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	lead := seedLead(t, db, model.Lead{ID: "l1", OrganizationID: "org-1", Name: "Ana"})

	for _, status := range []string{"cancelado", "attended", "limbo"} {
		appt := model.Appointment{
			OrganizationID:  "org-1",
			LeadID:          leadID(lead.ID),
			AppointmentDate: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
			Status:          status,
		}
		require.NoError(t, s.CreateAppointment(ctx, &appt))
	}

	got := getLead(t, db, lead.ID)
	assert.False(t, got.Scheduled)
	assert.Nil(t, got.AppointmentDate)
}

func TestCreateAppointment_WithoutLeadReference(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)

	appt := model.Appointment{
		OrganizationID:  "org-1",
		AppointmentDate: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Status:          "scheduled",
	}
	require.NoError(t, s.CreateAppointment(context.Background(), &appt))
}

func TestUpdateAppointment_ActiveStatusReschedulesLead(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	lead := seedLead(t, db, model.Lead{ID: "l1", OrganizationID: "org-1", Name: "Maria"})
	appt := model.Appointment{
		OrganizationID:  "org-1",
		LeadID:          leadID(lead.ID),
		AppointmentDate: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Status:          "scheduled",
	}
	require.NoError(t, s.CreateAppointment(ctx, &appt))

	appt.AppointmentDate = time.Date(2025, 3, 20, 11, 0, 0, 0, time.UTC)
	appt.Status = "rescheduled"
	require.NoError(t, s.UpdateAppointment(ctx, &appt))

	got := getLead(t, db, lead.ID)
	assert.True(t, got.Scheduled)
	require.NotNil(t, got.AppointmentDate)
	assert.True(t, got.AppointmentDate.Equal(time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)))
}

func TestUpdateAppointment_ClosedFallsBackToEarliestScheduled(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	lead := seedLead(t, db, model.Lead{ID: "l1", OrganizationID: "org-1", Name: "Maria"})

	first := model.Appointment{
		OrganizationID:  "org-1",
		LeadID:          leadID(lead.ID),
		AppointmentDate: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Status:          "scheduled",
	}
	require.NoError(t, s.CreateAppointment(ctx, &first))
	second := model.Appointment{
		OrganizationID:  "org-1",
		LeadID:          leadID(lead.ID),
		AppointmentDate: time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC),
		Status:          "scheduled",
	}
	require.NoError(t, s.CreateAppointment(ctx, &second))

	first.Status = "attended"
	require.NoError(t, s.UpdateAppointment(ctx, &first))

	got := getLead(t, db, lead.ID)
	assert.True(t, got.Scheduled)
	require.NotNil(t, got.AppointmentDate)
	assert.True(t, got.AppointmentDate.Equal(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)))
}

// The fallback query matches the literal status "scheduled" only: an
// appointment sitting in a broader active status such as "confirmado" does
// not count as a replacement. This mirrors the established reconciliation
// behavior; see DESIGN.md before changing it.
func TestUpdateAppointment_ClosedIgnoresBroaderActiveStatuses(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	lead := seedLead(t, db, model.Lead{ID: "l1", OrganizationID: "org-1", Name: "Maria"})

	first := model.Appointment{
		OrganizationID:  "org-1",
		LeadID:          leadID(lead.ID),
		AppointmentDate: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Status:          "scheduled",
	}
	require.NoError(t, s.CreateAppointment(ctx, &first))
	second := model.Appointment{
		OrganizationID:  "org-1",
		LeadID:          leadID(lead.ID),
		AppointmentDate: time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC),
		Status:          "confirmado",
	}
	require.NoError(t, s.CreateAppointment(ctx, &second))

	first.Status = "cancelled"
	require.NoError(t, s.UpdateAppointment(ctx, &first))

	got := getLead(t, db, lead.ID)
	assert.False(t, got.Scheduled)
	assert.Nil(t, got.AppointmentDate)
}

func TestUpdateAppointment_UnknownStatusLeavesLead(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	lead := seedLead(t, db, model.Lead{ID: "l1", OrganizationID: "org-1", Name: "Maria"})
	appt := model.Appointment{
		OrganizationID:  "org-1",
		LeadID:          leadID(lead.ID),
		AppointmentDate: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Status:          "scheduled",
	}
	require.NoError(t, s.CreateAppointment(ctx, &appt))

	appt.Status = "limbo"
	require.NoError(t, s.UpdateAppointment(ctx, &appt))

	got := getLead(t, db, lead.ID)
	assert.True(t, got.Scheduled, "unrecognized status must not touch the lead cache")
	require.NotNil(t, got.AppointmentDate)
	assert.True(t, got.AppointmentDate.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))
}

func TestDeleteAppointment_WithRemainder(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	lead := seedLead(t, db, model.Lead{ID: "l1", OrganizationID: "org-1", Name: "Maria"})

	first := model.Appointment{
		OrganizationID:  "org-1",
		LeadID:          leadID(lead.ID),
		AppointmentDate: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Status:          "scheduled",
	}
	require.NoError(t, s.CreateAppointment(ctx, &first))
	second := model.Appointment{
		OrganizationID:  "org-1",
		LeadID:          leadID(lead.ID),
		AppointmentDate: time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC),
		Status:          "scheduled",
	}
	require.NoError(t, s.CreateAppointment(ctx, &second))

	require.NoError(t, s.DeleteAppointment(ctx, first.ID))

	got := getLead(t, db, lead.ID)
	assert.True(t, got.Scheduled)
	require.NotNil(t, got.AppointmentDate)
	assert.True(t, got.AppointmentDate.Equal(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)))
}

func TestDeleteAppointment_NoRemainder(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	lead := seedLead(t, db, model.Lead{ID: "l1", OrganizationID: "org-1", Name: "Maria"})
	appt := model.Appointment{
		OrganizationID:  "org-1",
		LeadID:          leadID(lead.ID),
		AppointmentDate: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Status:          "scheduled",
	}
	require.NoError(t, s.CreateAppointment(ctx, &appt))
	require.True(t, getLead(t, db, lead.ID).Scheduled)

	require.NoError(t, s.DeleteAppointment(ctx, appt.ID))

	got := getLead(t, db, lead.ID)
	assert.False(t, got.Scheduled)
	assert.Nil(t, got.AppointmentDate)

	var count int64
	require.NoError(t, db.Model(&model.Appointment{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestDeleteAppointment_NotFound(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)

	err := s.DeleteAppointment(context.Background(), "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRecordInteraction(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	lead := seedLead(t, db, model.Lead{ID: "l1", OrganizationID: "org-1", Name: "Maria"})
	at := time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.RecordInteraction(ctx, lead.ID, at))

	got := getLead(t, db, lead.ID)
	require.NotNil(t, got.LastInteractionAt)
	assert.True(t, got.LastInteractionAt.Equal(at))

	err := s.RecordInteraction(ctx, "missing", at)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTemperatureCounts(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	seedLead(t, db, model.Lead{ID: "l1", OrganizationID: "org-1", Name: "a", Temperature: model.TemperatureQuente})
	seedLead(t, db, model.Lead{ID: "l2", OrganizationID: "org-1", Name: "b", Temperature: model.TemperatureQuente})
	seedLead(t, db, model.Lead{ID: "l3", OrganizationID: "org-1", Name: "c", Temperature: model.TemperatureMorno})
	// Another tenant's lead must not leak into the report.
	seedLead(t, db, model.Lead{ID: "l4", OrganizationID: "org-2", Name: "d", Temperature: model.TemperatureQuente})

	counts, err := s.TemperatureCounts(ctx, "org-1")
	require.NoError(t, err)

	assert.Equal(t, int64(2), counts[model.TemperatureQuente])
	assert.Equal(t, int64(1), counts[model.TemperatureMorno])
	assert.Equal(t, int64(0), counts[model.TemperatureNovo])
	assert.Equal(t, int64(0), counts[model.TemperatureFrio])
	assert.Equal(t, int64(0), counts[model.TemperaturePerdido])
	assert.Len(t, counts, len(model.Temperatures))
}

func TestCandidateLeads_TenantIsolation(t *testing.T) {
	db := newTestDB(t)
	s := NewGormStore(db)
	ctx := context.Background()

	old := time.Now().UTC().Add(-2 * time.Hour)
	seedLead(t, db, model.Lead{
		ID: "other-org", OrganizationID: "org-2", Name: "x",
		Temperature: model.TemperatureQuente, LastInteractionAt: &old,
	})

	rule := model.TransitionRule{
		ID: "r1", OrganizationID: "org-1", Name: "cooldown", Active: true,
		TriggerEvent: model.TriggerInactivityTimer, TimerMinutes: 60,
		FromTemperature: model.TemperatureQuente, ActionSetTemperature: model.TemperatureFrio,
	}
	leads, err := s.CandidateLeads(ctx, rule, rule.Threshold(time.Now().UTC()))
	require.NoError(t, err)
	assert.Empty(t, leads, "a rule must never see another organization's leads")
}
