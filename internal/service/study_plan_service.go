package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/study-planner-api/internal/dto"
	"github.com/noah-isme/study-planner-api/internal/planner"
	"github.com/noah-isme/study-planner-api/pkg/cache"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

const planCacheNamespace = "plan"

// StudyPlanConfig bounds the work accepted per call.
type StudyPlanConfig struct {
	MaxDays          int
	MaxSubjects      int
	MaxBatch         int
	BatchConcurrency int
	Timeout          time.Duration
	CacheTTL         time.Duration
}

// StudyPlanService validates requests and drives the allocation engine.
type StudyPlanService struct {
	validator *validator.Validate
	cache     *CacheService
	metrics   *MetricsService
	exporter  *PlanExporter
	logger    *zap.Logger
	cfg       StudyPlanConfig
	run       func(*planner.Input) *dto.StudyPlanResponse
}

// NewStudyPlanService constructs the service. cache, metrics and exporter may be nil.
// A nil validate gets a private validator that reports json field names; a
// supplied one is used as is.
func NewStudyPlanService(validate *validator.Validate, cache *CacheService, metrics *MetricsService, exporter *PlanExporter, logger *zap.Logger, cfg StudyPlanConfig) *StudyPlanService {
	if validate == nil {
		validate = validator.New()
		validate.RegisterTagNameFunc(jsonFieldName)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if exporter == nil {
		exporter = NewPlanExporter(nil, nil)
	}
	if cfg.MaxDays <= 0 {
		cfg.MaxDays = 730
	}
	if cfg.MaxSubjects <= 0 {
		cfg.MaxSubjects = 64
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = 16
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &StudyPlanService{
		validator: validate,
		cache:     cache,
		metrics:   metrics,
		exporter:  exporter,
		logger:    logger,
		cfg:       cfg,
		run:       planner.Run,
	}
}

// Generate builds the plan for req. The boolean reports a cache hit.
func (s *StudyPlanService) Generate(ctx context.Context, req dto.StudyPlanRequest) (*dto.StudyPlanResponse, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, contextError(err)
	}
	in, err := s.prepare(req)
	if err != nil {
		s.metrics.ObservePlan(OutcomeInvalid, 0, 0)
		return nil, false, err
	}

	key, keyErr := cache.Fingerprint(planCacheNamespace, cacheable(req))
	if keyErr != nil {
		s.logger.Warn("plan fingerprint failed", zap.Error(keyErr))
	}
	if keyErr == nil {
		var cached dto.StudyPlanResponse
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			s.logger.Debug("plan served from cache", zap.String("key", key))
			return &cached, true, nil
		}
	}

	start := time.Now()
	plan, err := s.runWithTimeout(ctx, in)
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.ObservePlan(OutcomeTimeout, elapsed, 0)
		s.logger.Warn("plan generation aborted",
			zap.Int("days", in.DayCount()),
			zap.Int("subjects", len(in.Subjects)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return nil, false, err
	}

	outcome := OutcomeComplete
	if plan.InsufficientTime {
		outcome = OutcomeInsufficient
	}
	s.metrics.ObservePlan(outcome, elapsed, unallocatedHours(plan))
	s.logger.Info("plan generated",
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
		zap.Int("subjects", len(in.Subjects)),
		zap.Float64("total_study_hours", plan.TotalStudyHours),
		zap.Bool("insufficient_time", plan.InsufficientTime),
		zap.Duration("elapsed", elapsed),
	)

	if keyErr == nil {
		_ = s.cache.Set(ctx, key, plan, s.cfg.CacheTTL)
	}
	return plan, false, nil
}

// GenerateBatch builds independent plans concurrently. Results keep request
// order; a rejected item carries its detail instead of failing the batch.
func (s *StudyPlanService) GenerateBatch(ctx context.Context, req dto.BatchStudyPlanRequest) (*dto.BatchStudyPlanResponse, error) {
	if len(req.Requests) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "requests must contain at least one plan request")
	}
	if len(req.Requests) > s.cfg.MaxBatch {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("batch accepts at most %d requests", s.cfg.MaxBatch))
	}
	s.metrics.ObserveBatch(len(req.Requests))

	results := make([]dto.BatchStudyPlanItem, len(req.Requests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchConcurrency)
	for i := range req.Requests {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			plan, _, err := s.Generate(gctx, req.Requests[i])
			results[i] = dto.BatchStudyPlanItem{Index: i, Plan: plan}
			if err != nil {
				results[i].Detail = appErrors.FromError(err).Message
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, contextError(err)
	}
	return &dto.BatchStudyPlanResponse{Results: results}, nil
}

// FlushCache drops every cached plan. It reports whether a cache was in use.
func (s *StudyPlanService) FlushCache(ctx context.Context) (bool, error) {
	if !s.cache.Enabled() {
		return false, nil
	}
	if err := s.cache.Invalidate(ctx, planCacheNamespace+":*"); err != nil {
		return true, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to flush plan cache")
	}
	s.logger.Info("plan cache flushed")
	return true, nil
}

// Export generates the plan for req and renders it as csv or pdf.
func (s *StudyPlanService) Export(ctx context.Context, req dto.StudyPlanRequest, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if !s.exporter.Supports(format) {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}
	plan, _, err := s.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	file, err := s.exporter.Render(plan, req, format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return file, nil
}

func (s *StudyPlanService) prepare(req dto.StudyPlanRequest) (*planner.Input, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, describeValidation(err))
	}
	if len(req.Subjects) > s.cfg.MaxSubjects {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("at most %d subjects are supported", s.cfg.MaxSubjects))
	}

	in, err := planner.Normalize(req)
	if err != nil {
		var vErr *planner.ValidationError
		if errors.As(err, &vErr) {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, vErr.Error())
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read plan request")
	}
	if in.DayCount() > s.cfg.MaxDays {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("plans may span at most %d days", s.cfg.MaxDays))
	}
	return in, nil
}

func (s *StudyPlanService) runWithTimeout(ctx context.Context, in *planner.Input) (*dto.StudyPlanResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	done := make(chan *dto.StudyPlanResponse, 1)
	go func() {
		done <- s.run(in)
	}()

	select {
	case plan := <-done:
		return plan, nil
	case <-ctx.Done():
		return nil, contextError(ctx.Err())
	}
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return appErrors.Wrap(err, appErrors.ErrTimeout.Code, appErrors.ErrTimeout.Status, appErrors.ErrTimeout.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "plan generation cancelled")
}

// cacheable drops fields that never influence the plan so they do not split the cache.
func cacheable(req dto.StudyPlanRequest) dto.StudyPlanRequest {
	req.UserProfile = dto.UserProfile{}
	return req
}

func unallocatedHours(plan *dto.StudyPlanResponse) float64 {
	var total float64
	for _, t := range plan.UnallocatedTopics {
		total += t.HoursRemaining
	}
	return total
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// describeValidation renders the first field error as "path failed tag".
func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid payload"
	}
	fe := fieldErrs[0]
	path := fe.Namespace()
	if i := strings.Index(path, "."); i >= 0 {
		path = path[i+1:]
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed %s=%s", path, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", path, fe.Tag())
}
