package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shifa-care/shifa-api/internal/config"
	"github.com/shifa-care/shifa-api/internal/handler"
	"github.com/shifa-care/shifa-api/internal/middleware"
	"github.com/shifa-care/shifa-api/internal/models"
	"github.com/shifa-care/shifa-api/internal/router"
	"github.com/shifa-care/shifa-api/internal/service"
	"github.com/shifa-care/shifa-api/internal/store"
)

func setupShipmentApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Shipment{}, &models.ActivityLog{}))

	logger := zerolog.New(io.Discard)
	docs, err := store.NewGormStore(db, nil, logger)
	require.NoError(t, err)

	validate := validator.New(validator.WithRequiredStructEnabled())
	shipmentService := service.NewShipmentService(docs, discardAudit{}, validate, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		ShipmentHandler: handler.NewShipmentHandler(shipmentService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", "admin-1")
			c.Locals("user_role", middleware.RoleAdmin)
			return c.Next()
		},
	})
	return app
}

func patchJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestShipmentHandlerCreate(t *testing.T) {
	app := setupShipmentApp(t)

	resp := postJSON(t, app, "/api/v1/shipments/", map[string]string{
		"driver": "Ahmed Hassan", "from": "Cairo Hub", "to": "Aswan Hospital", "eta": "3 hours",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	data := envelope["data"].(map[string]interface{})
	require.Equal(t, "transit", data["status"])
	require.EqualValues(t, 0, data["progress"])
}

func TestShipmentHandlerDeliveredSnapsProgress(t *testing.T) {
	app := setupShipmentApp(t)

	resp := postJSON(t, app, "/api/v1/shipments/", map[string]string{
		"driver": "Ahmed Hassan", "from": "Cairo Hub", "to": "Aswan Hospital",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decodeEnvelope(t, resp)["data"].(map[string]interface{})
	id := created["id"].(string)

	resp = patchJSON(t, app, "/api/v1/shipments/"+id, map[string]interface{}{
		"status": "delivered", "progress": 40,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := decodeEnvelope(t, resp)["data"].(map[string]interface{})
	require.Equal(t, "delivered", data["status"])
	require.EqualValues(t, 100, data["progress"])
}

func TestShipmentHandlerRejectsUnknownStatus(t *testing.T) {
	app := setupShipmentApp(t)

	resp := postJSON(t, app, "/api/v1/shipments/", map[string]string{
		"driver": "Ahmed Hassan", "from": "Cairo Hub", "to": "Aswan Hospital",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id := decodeEnvelope(t, resp)["data"].(map[string]interface{})["id"].(string)

	resp = patchJSON(t, app, "/api/v1/shipments/"+id, map[string]interface{}{"status": "lost"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestShipmentHandlerUpdateMissing(t *testing.T) {
	app := setupShipmentApp(t)

	resp := patchJSON(t, app, "/api/v1/shipments/absent", map[string]interface{}{"progress": 10})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
