package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/leo-o93/sorrija-crm-odontologico-sub001/config"
	"github.com/leo-o93/sorrija-crm-odontologico-sub001/internal/model"
	"github.com/leo-o93/sorrija-crm-odontologico-sub001/internal/store"
)

// Service is the transition rule engine. Each run loads every active rule,
// partitions them by organization, and applies them in priority order
// against the lead store. Runs are serialized by a mutex so an overlapping
// trigger (timer tick plus HTTP call, or two timer fires) can never
// interleave with a run in progress.
type Service struct {
	cfg    *config.Config
	store  store.Store
	logger *log.Logger
	mu     sync.Mutex
}

// NewService creates and initializes a new engine service.
func NewService(cfg *config.Config, s store.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		cfg:    cfg,
		store:  s,
		logger: logger,
	}
}

// Report summarizes one engine run.
type Report struct {
	Success                bool     `json:"success"`
	OrganizationsProcessed int      `json:"organizations_processed"`
	RulesApplied           int      `json:"rules_applied"`
	TransitionsMade        int      `json:"transitions_made"`
	SubstatusesCleared     int      `json:"substatuses_cleared"`
	Errors                 []string `json:"errors,omitempty"`
}

// Run starts the engine on a fixed interval until the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Engine.Enabled {
		s.logger.Println("Transition rule engine is disabled. Not starting.")
		return
	}
	s.logger.Printf("Starting transition rule engine (interval %s)...", s.cfg.Engine.Interval)

	ticker := time.NewTicker(s.cfg.Engine.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			report := s.RunOnce(ctx)
			if len(report.Errors) > 0 {
				s.logger.Printf("engine run finished with %d errors: %v", len(report.Errors), report.Errors)
			}
			if report.TransitionsMade > 0 || report.SubstatusesCleared > 0 {
				s.logger.Printf("engine run: %d transitions, %d substatuses cleared across %d organizations",
					report.TransitionsMade, report.SubstatusesCleared, report.OrganizationsProcessed)
			}
		case <-ctx.Done():
			s.logger.Println("Transition rule engine stopping.")
			return
		}
	}
}

// RunOnce performs a single engine run against current database contents.
// A failure to load the rule set yields an unsuccessful report with zero
// effect; per-rule failures are collected in the report's error list and do
// not stop evaluation of the remaining rules or organizations.
func (s *Service) RunOnce(ctx context.Context) Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	var report Report

	rules, err := s.store.ActiveRules(ctx)
	if err != nil {
		s.logger.Printf("engine: loading transition rules: %v", err)
		report.Errors = append(report.Errors, fmt.Sprintf("loading transition rules: %v", err))
		return report
	}
	report.Success = true
	if len(rules) == 0 {
		// A tenant base with no rules configured is a normal outcome.
		return report
	}

	// Partition by organization, preserving priority order within each
	// and iterating organizations in a stable order.
	byOrg := make(map[string][]model.TransitionRule)
	var orgIDs []string
	for _, r := range rules {
		if _, ok := byOrg[r.OrganizationID]; !ok {
			orgIDs = append(orgIDs, r.OrganizationID)
		}
		byOrg[r.OrganizationID] = append(byOrg[r.OrganizationID], r)
	}
	sort.Strings(orgIDs)

	for _, orgID := range orgIDs {
		report.OrganizationsProcessed++
		// Rules run sequentially: a later rule must observe the writes of
		// an earlier one, so a lead can cascade through several
		// transitions within a single run.
		for _, rule := range byOrg[orgID] {
			s.applyRule(ctx, now, rule, &report)
		}
	}
	return report
}

func (s *Service) applyRule(ctx context.Context, now time.Time, rule model.TransitionRule, report *Report) {
	threshold := rule.Threshold(now)

	candidates, err := s.store.CandidateLeads(ctx, rule, threshold)
	if err != nil {
		report.Errors = append(report.Errors,
			fmt.Sprintf("rule %q (%s): querying candidates: %v", rule.Name, rule.ID, err))
		return
	}

	// The SQL filter cannot express the fallback to created_at, so every
	// candidate is re-checked against its actual anchor timestamp.
	matched := candidates[:0]
	for _, lead := range candidates {
		if lead.InteractionAnchor().Before(threshold) {
			matched = append(matched, lead)
		}
	}
	if len(matched) == 0 {
		return
	}

	plan := rule.Plan()
	ids := make([]string, 0, len(matched))
	transitions, cleared := 0, 0
	for _, lead := range matched {
		ids = append(ids, lead.ID)
		if plan.Temperature != "" && lead.Temperature != plan.Temperature {
			transitions++
		}
		if plan.ClearSubstatus && lead.HotSubstatus != "" {
			cleared++
		}
	}

	if err := s.store.ApplyRuleActions(ctx, rule, ids, now); err != nil {
		report.Errors = append(report.Errors,
			fmt.Sprintf("rule %q (%s): applying actions: %v", rule.Name, rule.ID, err))
		return
	}

	report.RulesApplied++
	report.TransitionsMade += transitions
	report.SubstatusesCleared += cleared
}
