package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leo-o93/sorrija-crm-odontologico-sub001/internal/model"
)

func (s *gormStore) CreateRule(ctx context.Context, rule *model.TransitionRule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("failed to create transition rule: %w", err)
	}
	return nil
}

func (s *gormStore) RulesByOrganization(ctx context.Context, orgID string) ([]model.TransitionRule, error) {
	var rules []model.TransitionRule
	if err := s.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("priority ASC, id ASC").
		Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to list transition rules: %w", err)
	}
	return rules, nil
}

// ActiveRules loads every active rule across organizations, ordered by
// priority ascending with the id as a stable tie-breaker.
func (s *gormStore) ActiveRules(ctx context.Context) ([]model.TransitionRule, error) {
	var rules []model.TransitionRule
	if err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("priority ASC, id ASC").
		Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to load active transition rules: %w", err)
	}
	return rules, nil
}

// CandidateLeads fetches the leads a rule may act on, scoped to the rule's
// organization. The time filter here is a coarse SQL cut; callers must
// re-check each candidate's actual anchor timestamp because the
// fallback-to-created_at comparison cannot be expressed in this query.
func (s *gormStore) CandidateLeads(ctx context.Context, rule model.TransitionRule, threshold time.Time) ([]model.Lead, error) {
	q := s.db.WithContext(ctx).Where("organization_id = ?", rule.OrganizationID)

	if rule.FromTemperature != "" {
		q = q.Where("temperature = ?", rule.FromTemperature)
	}
	if rule.FromSubstatus != "" {
		q = q.Where("hot_substatus = ?", rule.FromSubstatus)
	} else if rule.TriggerEvent == model.TriggerInactivityTimer && rule.FromTemperature == model.TemperatureQuente {
		// Leads already awaiting a reply are handled by dedicated rules;
		// the generic inactivity sweep must not pick them up.
		q = q.Where("hot_substatus <> ?", model.SubstatusAguardandoResposta)
	}

	switch rule.TriggerEvent {
	case model.TriggerNoResponse:
		// "No response" presumes a prior interaction; leads that were
		// never contacted are intentionally not matched.
		q = q.Where("last_interaction_at < ?", threshold)
	default:
		q = q.Where("(last_interaction_at < ? OR last_interaction_at IS NULL)", threshold)
	}

	var leads []model.Lead
	if err := q.Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("failed to query candidate leads: %w", err)
	}
	return leads, nil
}

// ApplyRuleActions writes the rule's resolved action plan to every matched
// lead in one batch, always touching updated_at.
func (s *gormStore) ApplyRuleActions(ctx context.Context, rule model.TransitionRule, leadIDs []string, now time.Time) error {
	if len(leadIDs) == 0 {
		return nil
	}

	plan := rule.Plan()
	updates := map[string]any{"updated_at": now}
	if plan.Temperature != "" {
		updates["temperature"] = plan.Temperature
	}
	if plan.ClearSubstatus {
		updates["hot_substatus"] = ""
	} else if plan.Substatus != "" {
		updates["hot_substatus"] = plan.Substatus
	}

	if err := s.db.WithContext(ctx).
		Model(&model.Lead{}).
		Where("id IN ?", leadIDs).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to apply rule %s to %d leads: %w", rule.ID, len(leadIDs), err)
	}
	return nil
}
