package handlers

import (
	"github.com/gin-gonic/gin"

	"fintrack/internal/response"
	"fintrack/internal/services"
)

// DashboardHandler serves the read-only aggregates.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Summary returns balance, totals and breakdowns
// @Summary     Dashboard summary
// @Description Balance is startingBalance + totalIncome - totalExpense over the optional range. The monthly series always covers the last six months.
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       from query string false "Earliest date, inclusive"
// @Param       to   query string false "Latest date, inclusive"
// @Success     200 {object} response.Envelope{data=services.Summary}
// @Failure     400 {object} response.Envelope "Invalid range"
// @Failure     401 {object} response.Envelope "Unauthorized"
// @Router      /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	r, err := parseDateRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.dashboardService.Summary(c.Request.Context(), r)
	if err != nil {
		respondWithError(c, err)
		return
	}

	response.OK(c, summary)
}

// Statistics returns counts, averages and the largest transaction per kind
// @Summary     Dashboard statistics
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Param       from query string false "Earliest date, inclusive"
// @Param       to   query string false "Latest date, inclusive"
// @Success     200 {object} response.Envelope{data=services.Statistics}
// @Failure     400 {object} response.Envelope "Invalid range"
// @Failure     401 {object} response.Envelope "Unauthorized"
// @Router      /dashboard/statistics [get]
func (h *DashboardHandler) Statistics(c *gin.Context) {
	r, err := parseDateRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.dashboardService.Statistics(c.Request.Context(), r)
	if err != nil {
		respondWithError(c, err)
		return
	}

	response.OK(c, stats)
}
