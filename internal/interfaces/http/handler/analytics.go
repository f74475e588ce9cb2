package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	analyticsapp "github.com/sellstream/backend/internal/application/analytics"
	"github.com/sellstream/backend/internal/infrastructure/config"
	"github.com/sellstream/backend/internal/interfaces/http/dto"
	"github.com/sellstream/backend/internal/interfaces/http/middleware"
)

// AnalyticsHandler handles the sales analytics API endpoints
type AnalyticsHandler struct {
	BaseHandler
	service  *analyticsapp.Service
	defaults config.AnalyticsConfig
}

// NewAnalyticsHandler creates a new AnalyticsHandler. The analytics
// config supplies operator defaults for parameters the request leaves
// unset and bounds the batch endpoint.
func NewAnalyticsHandler(service *analyticsapp.Service, defaults config.AnalyticsConfig) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:  service,
		defaults: defaults,
	}
}

// RegisterRoutes registers analytics routes on the API group
func (h *AnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/analytics")
	g.GET("/report", h.GetReport)
	g.POST("/report/batch", h.BuildBatchReport)
	g.GET("/top-products", h.GetTopProducts)
	g.GET("/platform-breakdown", h.GetPlatformBreakdown)
	g.GET("/customer-ltv", h.GetCustomerLTV)
	g.DELETE("/cache", h.InvalidateCache)
}

// ReportQuery are the query parameters accepted by the report endpoint
type ReportQuery struct {
	Period          string `form:"period" binding:"omitempty,oneof=daily weekly monthly quarterly yearly"`
	StartDate       string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate         string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	TopN            int    `form:"top_n" binding:"omitempty,min=1,max=100"`
	ForecastPeriods int    `form:"forecast_periods" binding:"omitempty,min=1,max=24"`
	ForecastWindow  int    `form:"forecast_window" binding:"omitempty,min=1,max=52"`
	Platform        string `form:"platform"`
}

// toRequest builds a service request, filling unset parameters from
// the operator defaults.
func (h *AnalyticsHandler) toRequest(q ReportQuery) analyticsapp.ReportRequest {
	req := analyticsapp.ReportRequest{
		Period:          q.Period,
		StartDate:       parseDate(q.StartDate),
		EndDate:         parseDate(q.EndDate),
		TopN:            q.TopN,
		ForecastPeriods: q.ForecastPeriods,
		ForecastWindow:  q.ForecastWindow,
		Platform:        q.Platform,
	}
	if req.Period == "" {
		req.Period = h.defaults.DefaultPeriod
	}
	if req.TopN == 0 {
		req.TopN = h.defaults.TopN
	}
	if req.ForecastPeriods == 0 {
		req.ForecastPeriods = h.defaults.ForecastPeriods
	}
	if req.ForecastWindow == 0 {
		req.ForecastWindow = h.defaults.ForecastWindow
	}
	return req
}

// BatchReportRequest is the body accepted by the batch report endpoint.
// Records are raw order maps as exported by the platform integrations.
type BatchReportRequest struct {
	Records         []map[string]any `json:"records" binding:"required"`
	Period          string           `json:"period" binding:"omitempty,oneof=daily weekly monthly quarterly yearly"`
	StartDate       string           `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate         string           `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	TopN            int              `json:"top_n" binding:"omitempty,min=1,max=100"`
	ForecastPeriods int              `json:"forecast_periods" binding:"omitempty,min=1,max=24"`
	ForecastWindow  int              `json:"forecast_window" binding:"omitempty,min=1,max=52"`
}

// RankingQuery are the query parameters shared by the ranking endpoints
type RankingQuery struct {
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// GetReport generates the full analytics report over stored orders
func (h *AnalyticsHandler) GetReport(c *gin.Context) {
	var query ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.bindError(c, err)
		return
	}

	report, err := h.service.GenerateReport(c.Request.Context(), h.toRequest(query))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// BuildBatchReport generates a report over raw records posted by the
// caller, without touching storage or the cache
func (h *AnalyticsHandler) BuildBatchReport(c *gin.Context) {
	var req BatchReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	if h.defaults.MaxBatchRecords > 0 && len(req.Records) > h.defaults.MaxBatchRecords {
		h.ErrorWithCode(c, dto.ErrCodePayloadTooLarge,
			fmt.Sprintf("Batch exceeds maximum of %d records", h.defaults.MaxBatchRecords))
		return
	}

	report, err := h.service.BuildReport(c.Request.Context(), req.Records, analyticsapp.ReportRequest{
		Period:          req.Period,
		StartDate:       parseDate(req.StartDate),
		EndDate:         parseDate(req.EndDate),
		TopN:            req.TopN,
		ForecastPeriods: req.ForecastPeriods,
		ForecastWindow:  req.ForecastWindow,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// GetTopProducts returns the revenue-ranked product list
func (h *AnalyticsHandler) GetTopProducts(c *gin.Context) {
	var query RankingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.bindError(c, err)
		return
	}

	products, err := h.service.TopProducts(c.Request.Context(), analyticsapp.RankingRequest{
		StartDate: parseDate(query.StartDate),
		EndDate:   parseDate(query.EndDate),
		Limit:     query.Limit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, products)
}

// GetPlatformBreakdown returns per-platform revenue shares
func (h *AnalyticsHandler) GetPlatformBreakdown(c *gin.Context) {
	var query RankingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.bindError(c, err)
		return
	}

	breakdown, err := h.service.PlatformBreakdown(c.Request.Context(), analyticsapp.RankingRequest{
		StartDate: parseDate(query.StartDate),
		EndDate:   parseDate(query.EndDate),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, breakdown)
}

// GetCustomerLTV returns the spend-ranked customer list. Lifetime value
// covers all stored orders; date filters are deliberately not accepted.
func (h *AnalyticsHandler) GetCustomerLTV(c *gin.Context) {
	var query RankingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.bindError(c, err)
		return
	}

	limit := query.Limit
	if limit == 0 {
		limit = h.defaults.LTVLimit
	}

	customers, err := h.service.CustomerLTV(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customers)
}

// InvalidateCache drops all cached reports
func (h *AnalyticsHandler) InvalidateCache(c *gin.Context) {
	h.service.InvalidateReports(c.Request.Context())
	h.NoContent(c)
}

// bindError renders binding failures: structured details for validator
// errors, a generic bad request otherwise (e.g. malformed JSON).
func (h *AnalyticsHandler) bindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		middleware.HandleValidationError(c, err)
		return
	}
	h.ErrorWithCode(c, dto.ErrCodeInvalidJSON, "Request body or parameters could not be parsed")
}

// parseDate parses a YYYY-MM-DD query value, nil when absent. Format is
// enforced by binding before this runs.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
