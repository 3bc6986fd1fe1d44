package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/buildcost/buildcost/internal/adapter/otel"
	"github.com/buildcost/buildcost/internal/domain"
	"github.com/buildcost/buildcost/internal/domain/review"
	"github.com/buildcost/buildcost/internal/port/cache"
	"github.com/buildcost/buildcost/internal/port/database"
)

const resolutionKeyPrefix = "resolve:task-category:"

// maxReviewerLookups bounds the concurrent role-category fan-out during
// resolution.
const maxReviewerLookups = 8

// ConfigService handles review configuration business logic, including
// resolution of the ready-to-assign view used by task creation.
type ConfigService struct {
	store   database.Store
	cache   cache.Cache
	ttl     time.Duration
	metrics *otel.Metrics
}

// NewConfigService creates a new ConfigService. cache may be nil to disable
// resolution caching; metrics may be nil.
func NewConfigService(store database.Store, c cache.Cache, ttl time.Duration, metrics *otel.Metrics) *ConfigService {
	return &ConfigService{store: store, cache: c, ttl: ttl, metrics: metrics}
}

// List returns a page of configurations with steps and bound categories.
func (s *ConfigService) List(ctx context.Context, page domain.PageRequest) (*domain.Page[review.Configuration], error) {
	return s.store.ListConfigs(ctx, page)
}

// Get returns a configuration by ID.
func (s *ConfigService) Get(ctx context.Context, id string) (*review.Configuration, error) {
	return s.store.GetConfig(ctx, id)
}

// Create creates a configuration with its initial steps and category
// bindings in one transaction.
func (s *ConfigService) Create(ctx context.Context, req *review.CreateConfigRequest) (*review.Configuration, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	cfg, err := s.store.CreateConfig(ctx, *req)
	if err != nil {
		return nil, err
	}
	s.invalidateFor(ctx, cfg)
	return cfg, nil
}

// Update applies partial updates. A present category list is a full
// replacement of the binding set.
func (s *ConfigService) Update(ctx context.Context, id string, req review.UpdateConfigRequest) (*review.Configuration, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Invalidate both the old and the new binding sets.
	if old, err := s.store.GetConfig(ctx, id); err == nil {
		s.invalidateFor(ctx, old)
	}
	cfg, err := s.store.UpdateConfig(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.invalidateFor(ctx, cfg)
	return cfg, nil
}

// Delete removes a configuration. Configurations still bound to a task
// category or referenced by materialized reviews are refused.
func (s *ConfigService) Delete(ctx context.Context, id string) error {
	if old, err := s.store.GetConfig(ctx, id); err == nil {
		s.invalidateFor(ctx, old)
	}
	return s.store.DeleteConfig(ctx, id)
}

// SetSteps atomically replaces the configuration's step list.
func (s *ConfigService) SetSteps(ctx context.Context, id string, req *review.SetStepsRequest) (*review.Configuration, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	cfg, err := s.store.SetConfigSteps(ctx, id, req.Steps)
	if err != nil {
		return nil, err
	}
	s.invalidateFor(ctx, cfg)
	return cfg, nil
}

// ResolveByTaskCategory builds the ready-to-assign view for the
// configuration bound to a task category: the ordered steps with the users
// eligible to review each one. Results are cached per task category.
func (s *ConfigService) ResolveByTaskCategory(ctx context.Context, taskCategoryID string) (*review.ResolvedConfiguration, error) {
	start := time.Now()
	ctx, span := otel.StartResolutionSpan(ctx, taskCategoryID)
	defer span.End()

	key := resolutionKeyPrefix + taskCategoryID
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var cached review.ResolvedConfiguration
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	cfg, err := s.store.GetConfigByTaskCategory(ctx, taskCategoryID)
	if err != nil {
		return nil, err
	}

	resolved, err := s.resolve(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(resolved); err == nil {
			if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
				slog.Warn("cache resolution", "taskCategoryId", taskCategoryID, "error", err)
			}
		}
	}
	if s.metrics != nil {
		s.metrics.ResolutionDuration.Record(ctx, time.Since(start).Seconds())
	}
	return resolved, nil
}

// InvalidateResolution drops the cached resolution for one task category.
func (s *ConfigService) InvalidateResolution(ctx context.Context, taskCategoryID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, resolutionKeyPrefix+taskCategoryID); err != nil {
		slog.Warn("invalidate resolution", "taskCategoryId", taskCategoryID, "error", err)
	}
}

// resolve expands each configured step with its eligible reviewers. Role
// lookups fan out concurrently, bounded by maxReviewerLookups.
func (s *ConfigService) resolve(ctx context.Context, cfg *review.Configuration) (*review.ResolvedConfiguration, error) {
	resolved := &review.ResolvedConfiguration{
		ID:       cfg.ID,
		Name:     cfg.Name,
		Code:     cfg.Code,
		IsActive: cfg.IsActive,
		Steps:    make([]review.ResolvedStep, 0, len(cfg.Steps)),
	}

	// One reviewer lookup per distinct role category across all steps.
	reviewersByRole := make(map[string][]review.Reviewer)
	for _, step := range cfg.Steps {
		if step.Template == nil {
			continue
		}
		for _, rb := range step.Template.Roles {
			reviewersByRole[rb.RoleCategoryID] = nil
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxReviewerLookups)
	results := make(chan struct {
		roleID    string
		reviewers []review.Reviewer
	}, len(reviewersByRole))

	for roleID := range reviewersByRole {
		g.Go(func() error {
			reviewers, err := s.store.FindReviewersByRoleCategory(gctx, roleID)
			if err != nil {
				return err
			}
			results <- struct {
				roleID    string
				reviewers []review.Reviewer
			}{roleID, reviewers}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(results)
	for r := range results {
		reviewersByRole[r.roleID] = r.reviewers
	}

	// Only active templates whose primary role has at least one eligible
	// reviewer are surfaced; anything else would produce an unassignable stage.
	for _, step := range cfg.Steps {
		tpl := step.Template
		if tpl == nil || !tpl.IsActive || len(tpl.Roles) == 0 {
			continue
		}
		if len(reviewersByRole[tpl.Roles[0].RoleCategoryID]) == 0 {
			continue
		}
		rs := review.ResolvedStep{
			StepTemplateID:    step.TemplateID,
			StepName:          tpl.Name,
			StepOrder:         step.StepOrder,
			IsRequired:        step.IsRequired,
			RoleID:            tpl.Roles[0].RoleCategoryID,
			RoleName:          tpl.Roles[0].RoleName,
			EligibleReviewers: []review.Reviewer{},
		}
		for _, rb := range tpl.Roles {
			rs.EligibleReviewers = append(rs.EligibleReviewers, reviewersByRole[rb.RoleCategoryID]...)
		}
		resolved.Steps = append(resolved.Steps, rs)
	}
	return resolved, nil
}

// invalidateFor drops cached resolutions for every category bound to cfg.
func (s *ConfigService) invalidateFor(ctx context.Context, cfg *review.Configuration) {
	for _, cat := range cfg.Categories {
		s.InvalidateResolution(ctx, cat.ID)
	}
}
