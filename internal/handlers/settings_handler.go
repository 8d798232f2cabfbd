package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fintrack/internal/response"
	"fintrack/internal/services"
)

// SettingsHandler serves the settings singleton.
type SettingsHandler struct {
	settingsService services.SettingsServicer
	auditService    services.AuditServicer
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService services.SettingsServicer, auditService services.AuditServicer) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, auditService: auditService}
}

// UpdateSettingsRequest is a partial update of the settings.
type UpdateSettingsRequest struct {
	StartingBalance *decimal.Decimal `json:"startingBalance" swaggertype:"number"`
	EffectiveSince  *string          `json:"effectiveSince"`
	Description     *string          `json:"description" binding:"omitempty,max=500"`
}

// GetSettings returns the settings, creating the defaults on first read
// @Summary     Get settings
// @Tags        settings
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} response.Envelope{data=models.Settings}
// @Failure     401 {object} response.Envelope "Unauthorized"
// @Router      /settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.GetOrCreate(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	response.OK(c, settings)
}

// UpdateSettings changes the starting balance and related fields
// @Summary     Update settings
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateSettingsRequest true "Fields to change"
// @Success     200 {object} response.Envelope{data=models.Settings}
// @Failure     400 {object} response.Envelope "Invalid input"
// @Failure     401 {object} response.Envelope "Unauthorized"
// @Failure     403 {object} response.Envelope "Admin only"
// @Router      /settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	update := services.SettingsUpdate{
		StartingBalance: req.StartingBalance,
		Description:     req.Description,
	}
	if req.EffectiveSince != nil && *req.EffectiveSince != "" {
		since, _, err := parseFlexibleTime(*req.EffectiveSince)
		if err != nil {
			respondWithError(c, invalidInput(err))
			return
		}
		update.EffectiveSince = &since
	}

	settings, err := h.settingsService.Update(c.Request.Context(), update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), services.AuditEntry{
		UserID:       userID,
		Action:       services.AuditUpdateSettings,
		ResourceType: services.AuditResourceSettings,
		ResourceID:   settings.ID,
		IPAddress:    c.ClientIP(),
		Changes:      map[string]any{"startingBalance": settings.StartingBalance.String()},
	})

	response.OK(c, settings)
}
