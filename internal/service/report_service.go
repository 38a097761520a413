package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/shifa-care/shifa-api/internal/dto"
	"github.com/shifa-care/shifa-api/internal/geo"
	"github.com/shifa-care/shifa-api/internal/models"
	"github.com/shifa-care/shifa-api/internal/observability"
	"github.com/shifa-care/shifa-api/internal/store"
)

// StatusFilterAll selects every report regardless of lifecycle state.
const StatusFilterAll = "all"

var (
	// ErrUnknownGovernorate indicates the governorate matches no registry
	// entry. Reports are validated at write time so a typo cannot silently
	// drop out of every region count.
	ErrUnknownGovernorate = errors.New("governorate does not match any registered region")
	// ErrInvalidTransition indicates the report cannot move to the requested
	// state. Transitions only run forward: pending -> processing -> resolved.
	ErrInvalidTransition = errors.New("invalid report status transition")
	// ErrReportNotFound indicates the referenced report does not exist.
	ErrReportNotFound = errors.New("report not found")
)

// nextStatus is the explicit transition table for the report state machine.
var nextStatus = map[string]string{
	models.ReportStatusPending:    models.ReportStatusProcessing,
	models.ReportStatusProcessing: models.ReportStatusResolved,
}

// ReportService drives the bounded lifecycle of shortage reports. Every
// mutation round-trips through the document store and re-enters the
// monitoring core via the reports subscription.
type ReportService interface {
	Create(ctx context.Context, actor string, payload dto.ReportCreateRequest) (dto.ReportResponse, error)
	Advance(ctx context.Context, actor, id string) (dto.ReportResponse, error)
	Remove(ctx context.Context, actor, id string) error
	Get(ctx context.Context, id string) (dto.ReportResponse, error)
	List(ctx context.Context, status string) ([]dto.ReportResponse, error)
}

type reportService struct {
	docs      store.Store
	audit     AuditRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewReportService constructs the lifecycle service.
func NewReportService(docs store.Store, audit AuditRecorder, validate *validator.Validate, logger zerolog.Logger) ReportService {
	return &reportService{
		docs:      docs,
		audit:     audit,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "report_service").Logger(),
		tracer:    otel.Tracer("github.com/shifa-care/shifa-api/internal/service/report"),
	}
}

func (s *reportService) Create(ctx context.Context, actor string, payload dto.ReportCreateRequest) (dto.ReportResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ReportResponse{}, err
	}

	governorate := strings.TrimSpace(payload.Governorate)
	if !geo.Valid(governorate) {
		return dto.ReportResponse{}, fmt.Errorf("%w: %q", ErrUnknownGovernorate, governorate)
	}

	hospital := strings.TrimSpace(s.sanitizer.Sanitize(payload.Hospital))
	drug := strings.TrimSpace(s.sanitizer.Sanitize(payload.Drug))
	if hospital == "" || drug == "" {
		return dto.ReportResponse{}, fmt.Errorf("hospital and drug must not be empty after sanitization")
	}

	spanCtx, span := s.tracer.Start(ctx, "reports.create", trace.WithAttributes(
		attribute.String("report.governorate", governorate),
		attribute.String("report.priority", payload.Priority),
	))
	defer span.End()

	fields := store.Document{
		"governorate": governorate,
		"hospital":    hospital,
		"drug":        drug,
		"priority":    payload.Priority,
		"status":      models.ReportStatusPending,
	}

	id, err := s.docs.Create(spanCtx, store.CollectionReports, fields)
	if err != nil {
		span.RecordError(err)
		return dto.ReportResponse{}, err
	}

	s.audit.Record(AuditEntry{
		Actor:  actor,
		Action: fmt.Sprintf("reported shortage of %s in %s", drug, governorate),
		Type:   models.ActivityTypeWarning,
		Metadata: map[string]interface{}{
			"report_id": id,
			"priority":  payload.Priority,
		},
	})
	observability.ReportTransitionsTotal().WithLabelValues("", models.ReportStatusPending).Inc()

	report, err := s.fetchByID(spanCtx, id)
	if err != nil {
		// The write itself succeeded; serve the response from the payload.
		s.logger.Warn().Err(err).Str("report_id", id).Msg("failed to read back created report")
		return dto.ReportResponse{ID: id, Governorate: governorate, Hospital: hospital, Drug: drug, Priority: payload.Priority, Status: models.ReportStatusPending}, nil
	}
	return dto.NewReportResponse(report), nil
}

func (s *reportService) Advance(ctx context.Context, actor, id string) (dto.ReportResponse, error) {
	spanCtx, span := s.tracer.Start(ctx, "reports.advance", trace.WithAttributes(
		attribute.String("report.id", id),
	))
	defer span.End()

	report, err := s.fetchByID(spanCtx, id)
	if err != nil {
		span.RecordError(err)
		return dto.ReportResponse{}, err
	}

	current := report.String("status")
	next, ok := nextStatus[current]
	if !ok {
		return dto.ReportResponse{}, fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, current)
	}

	if err := s.docs.Update(spanCtx, store.CollectionReports, id, store.Document{"status": next}); err != nil {
		span.RecordError(err)
		if errors.Is(err, store.ErrNotFound) {
			return dto.ReportResponse{}, ErrReportNotFound
		}
		return dto.ReportResponse{}, err
	}

	s.audit.Record(AuditEntry{
		Actor:  actor,
		Action: fmt.Sprintf("moved shortage report for %s to %s", report.String("drug"), next),
		Type:   activityTypeForStatus(next),
		Metadata: map[string]interface{}{
			"report_id": id,
			"from":      current,
			"to":        next,
		},
	})
	observability.ReportTransitionsTotal().WithLabelValues(current, next).Inc()

	report["status"] = next
	return dto.NewReportResponse(report), nil
}

func (s *reportService) Remove(ctx context.Context, actor, id string) error {
	spanCtx, span := s.tracer.Start(ctx, "reports.remove", trace.WithAttributes(
		attribute.String("report.id", id),
	))
	defer span.End()

	report, err := s.fetchByID(spanCtx, id)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if err := s.docs.Delete(spanCtx, store.CollectionReports, id); err != nil {
		span.RecordError(err)
		if errors.Is(err, store.ErrNotFound) {
			return ErrReportNotFound
		}
		return err
	}

	s.audit.Record(AuditEntry{
		Actor:  actor,
		Action: fmt.Sprintf("deleted shortage report for %s in %s", report.String("drug"), report.String("governorate")),
		Type:   models.ActivityTypeDefault,
		Metadata: map[string]interface{}{
			"report_id": id,
		},
	})
	return nil
}

func (s *reportService) Get(ctx context.Context, id string) (dto.ReportResponse, error) {
	report, err := s.fetchByID(ctx, id)
	if err != nil {
		return dto.ReportResponse{}, err
	}
	return dto.NewReportResponse(report), nil
}

func (s *reportService) List(ctx context.Context, status string) ([]dto.ReportResponse, error) {
	query := store.Query{Collection: store.CollectionReports, OrderBy: "created_at", Descending: true}

	docs, err := s.docs.Fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	return dto.NewReportResponseSlice(FilterReportsByStatus(docs, status)), nil
}

func (s *reportService) fetchByID(ctx context.Context, id string) (store.Document, error) {
	docs, err := s.docs.Fetch(ctx, store.Query{Collection: store.CollectionReports}.Where("id", id))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrReportNotFound
	}
	return docs[0], nil
}

// FilterReportsByStatus is a pure in-memory view over the resident reports
// snapshot. It never round-trips to the document store.
func FilterReportsByStatus(docs []store.Document, status string) []store.Document {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" || status == StatusFilterAll {
		return docs
	}

	filtered := make([]store.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.String("status") == status {
			filtered = append(filtered, doc)
		}
	}
	return filtered
}

func activityTypeForStatus(status string) string {
	switch status {
	case models.ReportStatusResolved:
		return models.ActivityTypeSuccess
	case models.ReportStatusProcessing:
		return models.ActivityTypeInfo
	default:
		return models.ActivityTypeDefault
	}
}
