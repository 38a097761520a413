package contract_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/shifa-care/shifa-api/internal/aggregator"
	"github.com/shifa-care/shifa-api/internal/handler"
	"github.com/shifa-care/shifa-api/internal/service"
	"github.com/shifa-care/shifa-api/internal/store"
)

const badgeSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["success", "data"],
	"properties": {
		"success": {"const": true},
		"data": {
			"type": "object",
			"required": ["unread", "capped", "updated_at"],
			"properties": {
				"unread": {"type": "integer", "minimum": 0, "maximum": 99},
				"capped": {"type": "boolean"},
				"updated_at": {"type": "string"}
			}
		}
	}
}`

func TestBadgeContract(t *testing.T) {
	states := aggregator.New(zerolog.Nop())
	badgeService := service.NewBadgeService(states, 99, nil, zerolog.Nop())

	views, stopViews := states.Watch()
	defer stopViews()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	badgeService.Start(ctx, views)

	reports := make([]store.Document, 0, 150)
	for i := 0; i < 150; i++ {
		reports = append(reports, store.Document{"id": "r", "status": "pending"})
	}
	states.Apply(store.CollectionReports, reports)

	require.Eventually(t, func() bool {
		return badgeService.Current().Capped
	}, 2*time.Second, 10*time.Millisecond, "150 pending reports must cap the badge")

	app := fiber.New()
	group := app.Group("/api/v1/badge")
	handler.NewBadgeHandler(badgeService, zerolog.Nop(), time.Second).Register(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/badge/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	schema := compileSchema(t, badgeSchema)
	validateResponse(t, schema, resp)
}
