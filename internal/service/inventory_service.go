package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/shifa-care/shifa-api/internal/dto"
	"github.com/shifa-care/shifa-api/internal/models"
	"github.com/shifa-care/shifa-api/internal/store"
)

// ErrMedicineNotFound indicates the referenced inventory item does not exist.
var ErrMedicineNotFound = errors.New("medicine not found")

// InventoryService manages the medicines collection on behalf of
// administrators.
type InventoryService interface {
	Create(ctx context.Context, actor string, payload dto.MedicineCreateRequest) (dto.MedicineResponse, error)
	Update(ctx context.Context, actor, id string, payload dto.MedicineUpdateRequest) (dto.MedicineResponse, error)
	Remove(ctx context.Context, actor, id string) error
	List(ctx context.Context) ([]dto.MedicineResponse, error)
}

type inventoryService struct {
	docs      store.Store
	audit     AuditRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewInventoryService constructs the inventory service.
func NewInventoryService(docs store.Store, audit AuditRecorder, validate *validator.Validate, logger zerolog.Logger) InventoryService {
	return &inventoryService{
		docs:      docs,
		audit:     audit,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "inventory_service").Logger(),
	}
}

// StockStatus labels a stock level for the dashboard: 0 is out of stock,
// anything under the shortage threshold is low, the rest is good.
func StockStatus(stock int) string {
	switch {
	case stock <= 0:
		return models.StockStatusOut
	case stock < models.LowStockThreshold:
		return models.StockStatusLow
	default:
		return models.StockStatusGood
	}
}

func (s *inventoryService) Create(ctx context.Context, actor string, payload dto.MedicineCreateRequest) (dto.MedicineResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MedicineResponse{}, err
	}

	name := strings.TrimSpace(s.sanitizer.Sanitize(payload.Name))
	if name == "" {
		return dto.MedicineResponse{}, fmt.Errorf("medicine name must not be empty after sanitization")
	}

	fields := store.Document{
		"name":     name,
		"category": strings.TrimSpace(payload.Category),
		"stock":    payload.Stock,
		"unit":     strings.TrimSpace(payload.Unit),
		"expiry":   strings.TrimSpace(payload.Expiry),
	}

	id, err := s.docs.Create(ctx, store.CollectionMedicines, fields)
	if err != nil {
		return dto.MedicineResponse{}, err
	}

	s.audit.Record(AuditEntry{
		Actor:    actor,
		Action:   fmt.Sprintf("added medicine %s", name),
		Type:     models.ActivityTypeSuccess,
		Metadata: map[string]interface{}{"medicine_id": id},
	})

	fields["id"] = id
	return dto.NewMedicineResponse(fields, StockStatus(payload.Stock)), nil
}

func (s *inventoryService) Update(ctx context.Context, actor, id string, payload dto.MedicineUpdateRequest) (dto.MedicineResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MedicineResponse{}, err
	}

	fields := store.Document{}
	if payload.Name != nil {
		name := strings.TrimSpace(s.sanitizer.Sanitize(*payload.Name))
		if name == "" {
			return dto.MedicineResponse{}, fmt.Errorf("medicine name must not be empty after sanitization")
		}
		fields["name"] = name
	}
	if payload.Category != nil {
		fields["category"] = strings.TrimSpace(*payload.Category)
	}
	if payload.Stock != nil {
		fields["stock"] = *payload.Stock
	}
	if payload.Unit != nil {
		fields["unit"] = strings.TrimSpace(*payload.Unit)
	}
	if payload.Expiry != nil {
		fields["expiry"] = strings.TrimSpace(*payload.Expiry)
	}
	if len(fields) == 0 {
		return dto.MedicineResponse{}, fmt.Errorf("no fields to update")
	}

	if err := s.docs.Update(ctx, store.CollectionMedicines, id, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return dto.MedicineResponse{}, ErrMedicineNotFound
		}
		return dto.MedicineResponse{}, err
	}

	doc, err := s.fetchByID(ctx, id)
	if err != nil {
		return dto.MedicineResponse{}, err
	}

	s.audit.Record(AuditEntry{
		Actor:    actor,
		Action:   fmt.Sprintf("updated medicine %s", doc.String("name")),
		Type:     models.ActivityTypeInfo,
		Metadata: map[string]interface{}{"medicine_id": id},
	})

	return dto.NewMedicineResponse(doc, StockStatus(doc.Int("stock"))), nil
}

func (s *inventoryService) Remove(ctx context.Context, actor, id string) error {
	doc, err := s.fetchByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.docs.Delete(ctx, store.CollectionMedicines, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMedicineNotFound
		}
		return err
	}

	s.audit.Record(AuditEntry{
		Actor:    actor,
		Action:   fmt.Sprintf("removed medicine %s", doc.String("name")),
		Type:     models.ActivityTypeWarning,
		Metadata: map[string]interface{}{"medicine_id": id},
	})
	return nil
}

func (s *inventoryService) List(ctx context.Context) ([]dto.MedicineResponse, error) {
	docs, err := s.docs.Fetch(ctx, store.Query{Collection: store.CollectionMedicines, OrderBy: "created_at", Descending: true})
	if err != nil {
		return nil, err
	}

	out := make([]dto.MedicineResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, dto.NewMedicineResponse(doc, StockStatus(doc.Int("stock"))))
	}
	return out, nil
}

func (s *inventoryService) fetchByID(ctx context.Context, id string) (store.Document, error) {
	docs, err := s.docs.Fetch(ctx, store.Query{Collection: store.CollectionMedicines}.Where("id", id))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrMedicineNotFound
	}
	return docs[0], nil
}
