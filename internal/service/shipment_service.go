package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/shifa-care/shifa-api/internal/dto"
	"github.com/shifa-care/shifa-api/internal/models"
	"github.com/shifa-care/shifa-api/internal/store"
)

// ErrShipmentNotFound indicates the referenced shipment does not exist.
var ErrShipmentNotFound = errors.New("shipment not found")

// ShipmentService manages medicine deliveries. The delivered state always
// implies progress 100.
type ShipmentService interface {
	Create(ctx context.Context, actor string, payload dto.ShipmentCreateRequest) (dto.ShipmentResponse, error)
	UpdateProgress(ctx context.Context, actor, id string, payload dto.ShipmentProgressRequest) (dto.ShipmentResponse, error)
	List(ctx context.Context) ([]dto.ShipmentResponse, error)
}

type shipmentService struct {
	docs      store.Store
	audit     AuditRecorder
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewShipmentService constructs the shipment service.
func NewShipmentService(docs store.Store, audit AuditRecorder, validate *validator.Validate, logger zerolog.Logger) ShipmentService {
	return &shipmentService{
		docs:      docs,
		audit:     audit,
		validator: validate,
		logger:    logger.With().Str("component", "shipment_service").Logger(),
	}
}

func (s *shipmentService) Create(ctx context.Context, actor string, payload dto.ShipmentCreateRequest) (dto.ShipmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ShipmentResponse{}, err
	}

	fields := store.Document{
		"driver":   strings.TrimSpace(payload.Driver),
		"from":     strings.TrimSpace(payload.From),
		"to":       strings.TrimSpace(payload.To),
		"eta":      strings.TrimSpace(payload.ETA),
		"status":   models.ShipmentStatusTransit,
		"progress": 0,
	}

	id, err := s.docs.Create(ctx, store.CollectionShipments, fields)
	if err != nil {
		return dto.ShipmentResponse{}, err
	}

	s.audit.Record(AuditEntry{
		Actor:    actor,
		Action:   fmt.Sprintf("dispatched shipment from %s to %s", fields.String("from"), fields.String("to")),
		Type:     models.ActivityTypeInfo,
		Metadata: map[string]interface{}{"shipment_id": id},
	})

	fields["id"] = id
	return dto.NewShipmentResponse(fields), nil
}

func (s *shipmentService) UpdateProgress(ctx context.Context, actor, id string, payload dto.ShipmentProgressRequest) (dto.ShipmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ShipmentResponse{}, err
	}

	fields := store.Document{}
	if payload.Progress != nil {
		fields["progress"] = clampProgress(*payload.Progress)
	}
	if payload.Status != "" {
		fields["status"] = payload.Status
	}
	if len(fields) == 0 {
		return dto.ShipmentResponse{}, fmt.Errorf("no fields to update")
	}

	// delivered implies progress 100, whatever the caller sent
	if payload.Status == models.ShipmentStatusDelivered {
		fields["progress"] = 100
	}

	if err := s.docs.Update(ctx, store.CollectionShipments, id, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return dto.ShipmentResponse{}, ErrShipmentNotFound
		}
		return dto.ShipmentResponse{}, err
	}

	doc, err := s.fetchByID(ctx, id)
	if err != nil {
		return dto.ShipmentResponse{}, err
	}

	switch payload.Status {
	case "":
		// progress-only updates stay out of the feed
	case models.ShipmentStatusDelivered:
		s.audit.Record(AuditEntry{
			Actor:    actor,
			Action:   fmt.Sprintf("shipment to %s delivered", doc.String("to")),
			Type:     models.ActivityTypeSuccess,
			Metadata: map[string]interface{}{"shipment_id": id},
		})
	default:
		kind := models.ActivityTypeInfo
		if payload.Status == models.ShipmentStatusDelayed {
			kind = models.ActivityTypeWarning
		}
		s.audit.Record(AuditEntry{
			Actor:    actor,
			Action:   fmt.Sprintf("shipment to %s marked %s", doc.String("to"), payload.Status),
			Type:     kind,
			Metadata: map[string]interface{}{"shipment_id": id},
		})
	}

	return dto.NewShipmentResponse(doc), nil
}

func (s *shipmentService) List(ctx context.Context) ([]dto.ShipmentResponse, error) {
	docs, err := s.docs.Fetch(ctx, store.Query{Collection: store.CollectionShipments, OrderBy: "created_at", Descending: true})
	if err != nil {
		return nil, err
	}
	return dto.NewShipmentResponseSlice(docs), nil
}

func (s *shipmentService) fetchByID(ctx context.Context, id string) (store.Document, error) {
	docs, err := s.docs.Fetch(ctx, store.Query{Collection: store.CollectionShipments}.Where("id", id))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrShipmentNotFound
	}
	return docs[0], nil
}

func clampProgress(progress int) int {
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}
