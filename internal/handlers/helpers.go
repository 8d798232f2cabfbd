package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/middleware"
	"fintrack/internal/response"
	"fintrack/internal/services"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// respondWithError writes the failure envelope for err.
func respondWithError(c *gin.Context, err error) {
	response.Error(c, err)
}

func invalidInput(err error) error {
	return apperrors.WithMessage(apperrors.ErrValidation, err.Error())
}

const dateOnly = "2006-01-02"

var acceptedTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	dateOnly,
}

// parseFlexibleTime accepts RFC3339, a zone-less timestamp or a bare date.
// Zone-less values are read as UTC. The second result reports a bare date.
func parseFlexibleTime(s string) (time.Time, bool, error) {
	for _, layout := range acceptedTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), layout == dateOnly, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("invalid date %q: use RFC3339 or YYYY-MM-DD", s)
}

// parseDateRange reads the optional from/to query parameters. A bare `to`
// date covers that whole day.
func parseDateRange(c *gin.Context) (services.DateRange, error) {
	var r services.DateRange

	if s := c.Query("from"); s != "" {
		from, _, err := parseFlexibleTime(s)
		if err != nil {
			return r, invalidInput(err)
		}
		r.From = &from
	}

	if s := c.Query("to"); s != "" {
		to, bare, err := parseFlexibleTime(s)
		if err != nil {
			return r, invalidInput(err)
		}
		if bare {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		r.To = &to
	}

	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		return r, apperrors.WithMessage(apperrors.ErrValidation, "from must not be after to")
	}
	return r, nil
}
