package dto

import (
	"time"

	"github.com/shifa-care/shifa-api/internal/aggregator"
	"github.com/shifa-care/shifa-api/internal/geo"
)

// DashboardMetricsResponse carries the derived dashboard counters.
type DashboardMetricsResponse struct {
	TotalItems            int       `json:"total_items"`
	CriticalShortageCount int       `json:"critical_shortage_count"`
	TotalStockUnits       int       `json:"total_stock_units"`
	ActiveShipmentCount   int       `json:"active_shipment_count"`
	DelayedShipmentCount  int       `json:"delayed_shipment_count"`
	PendingReportCount    int       `json:"pending_report_count"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// NewDashboardMetricsResponse converts an aggregator view into a DTO.
func NewDashboardMetricsResponse(view aggregator.View) DashboardMetricsResponse {
	return DashboardMetricsResponse{
		TotalItems:            view.Metrics.TotalItems,
		CriticalShortageCount: view.Metrics.CriticalShortageCount,
		TotalStockUnits:       view.Metrics.TotalStockUnits,
		ActiveShipmentCount:   view.Metrics.ActiveShipmentCount,
		DelayedShipmentCount:  view.Metrics.DelayedShipmentCount,
		PendingReportCount:    view.Metrics.PendingReportCount,
		UpdatedAt:             view.UpdatedAt,
	}
}

// RegionStatusResponse is the per-governorate correlation result rendered on
// the shortage map.
type RegionStatusResponse struct {
	Name         string           `json:"name"`
	Lat          float64          `json:"lat"`
	Lng          float64          `json:"lng"`
	Count        int              `json:"count"`
	Severity     string           `json:"severity"`
	Radius       int              `json:"radius"`
	StrokeWeight int              `json:"stroke_weight"`
	Reports      []ReportResponse `json:"reports"`
}

// NewRegionStatusResponseSlice converts correlation output into DTOs.
func NewRegionStatusResponseSlice(statuses []geo.RegionStatus) []RegionStatusResponse {
	out := make([]RegionStatusResponse, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, RegionStatusResponse{
			Name:         status.Region.Name,
			Lat:          status.Region.Lat,
			Lng:          status.Region.Lng,
			Count:        status.Count,
			Severity:     status.Severity,
			Radius:       status.Radius,
			StrokeWeight: status.StrokeWeight,
			Reports:      NewReportResponseSlice(status.Reports),
		})
	}
	return out
}

// BadgeResponse is the compact notification badge shown on every surface.
type BadgeResponse struct {
	Unread    int       `json:"unread"`
	Capped    bool      `json:"capped"`
	UpdatedAt time.Time `json:"updated_at"`
}
