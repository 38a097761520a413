package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shifa-care/shifa-api/internal/dto"
	"github.com/shifa-care/shifa-api/internal/models"
	"github.com/shifa-care/shifa-api/internal/store"
)

func newInventoryService(docs store.Store, audit AuditRecorder) InventoryService {
	return NewInventoryService(docs, audit, validator.New(validator.WithRequiredStructEnabled()), testLogger())
}

func TestStockStatusLabels(t *testing.T) {
	assert.Equal(t, models.StockStatusOut, StockStatus(0))
	assert.Equal(t, models.StockStatusOut, StockStatus(-5))
	assert.Equal(t, models.StockStatusLow, StockStatus(1))
	assert.Equal(t, models.StockStatusLow, StockStatus(49))
	assert.Equal(t, models.StockStatusGood, StockStatus(50))
	assert.Equal(t, models.StockStatusGood, StockStatus(500))
}

func TestInventoryCreate(t *testing.T) {
	docs := newMemoryStore()
	audit := &recordingAudit{}
	svc := newInventoryService(docs, audit)

	medicine, err := svc.Create(context.Background(), "admin-1", dto.MedicineCreateRequest{
		Name: "Paracetamol 500mg", Category: "Analgesic", Stock: 30, Unit: "box",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, medicine.ID)
	assert.Equal(t, models.StockStatusLow, medicine.StockStatus)

	entries := audit.recorded()
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActivityTypeSuccess, entries[0].Type)
}

func TestInventoryCreateRejectsEmptyName(t *testing.T) {
	svc := newInventoryService(newMemoryStore(), &recordingAudit{})

	_, err := svc.Create(context.Background(), "admin-1", dto.MedicineCreateRequest{Name: "<i></i>ab", Stock: 1})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "admin-1", dto.MedicineCreateRequest{Name: "x", Stock: 1})
	assert.Error(t, err, "single character names fail validation")
}

func TestInventoryUpdatePartialFields(t *testing.T) {
	docs := newMemoryStore()
	svc := newInventoryService(docs, &recordingAudit{})

	created, err := svc.Create(context.Background(), "admin-1", dto.MedicineCreateRequest{Name: "Insulin", Stock: 10})
	require.NoError(t, err)

	stock := 120
	updated, err := svc.Update(context.Background(), "admin-1", created.ID, dto.MedicineUpdateRequest{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, 120, updated.Stock)
	assert.Equal(t, models.StockStatusGood, updated.StockStatus)
	assert.Equal(t, "Insulin", updated.Name)
}

func TestInventoryUpdateRejectsEmptyPayload(t *testing.T) {
	svc := newInventoryService(newMemoryStore(), &recordingAudit{})

	_, err := svc.Update(context.Background(), "admin-1", "some-id", dto.MedicineUpdateRequest{})
	assert.Error(t, err)
}

func TestInventoryUpdateMissingMedicine(t *testing.T) {
	svc := newInventoryService(newMemoryStore(), &recordingAudit{})

	stock := 5
	_, err := svc.Update(context.Background(), "admin-1", "absent", dto.MedicineUpdateRequest{Stock: &stock})
	assert.ErrorIs(t, err, ErrMedicineNotFound)
}

func TestInventoryRemove(t *testing.T) {
	docs := newMemoryStore()
	svc := newInventoryService(docs, &recordingAudit{})

	created, err := svc.Create(context.Background(), "admin-1", dto.MedicineCreateRequest{Name: "Aspirin", Stock: 3})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), "admin-1", created.ID))
	assert.Empty(t, docs.all(store.CollectionMedicines))

	assert.ErrorIs(t, svc.Remove(context.Background(), "admin-1", created.ID), ErrMedicineNotFound)
}

func TestInventoryListDerivesStockStatus(t *testing.T) {
	docs := newMemoryStore()
	svc := newInventoryService(docs, &recordingAudit{})

	for _, item := range []dto.MedicineCreateRequest{
		{Name: "Out of stock", Stock: 0},
		{Name: "Running low", Stock: 30},
		{Name: "Well stocked", Stock: 500},
	} {
		_, err := svc.Create(context.Background(), "admin-1", item)
		require.NoError(t, err)
	}

	medicines, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, medicines, 3)

	labels := map[string]string{}
	for _, medicine := range medicines {
		labels[medicine.Name] = medicine.StockStatus
	}
	assert.Equal(t, models.StockStatusOut, labels["Out of stock"])
	assert.Equal(t, models.StockStatusLow, labels["Running low"])
	assert.Equal(t, models.StockStatusGood, labels["Well stocked"])
}
