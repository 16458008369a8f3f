package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/spa-clinic/internal/domain/reports"
	"github.com/Spok95/spa-clinic/internal/domain/validation"
)

// parseFilter читает from/to (YYYY-MM-DD) и assistant_id/treatment_id;
// отсутствующий параметр или "all" — без ограничения. Даты — полночь в
// часовом поясе клиники.
func parseFilter(c *gin.Context, loc *time.Location) (reports.Filter, error) {
	var f reports.Filter
	if loc == nil {
		loc = time.UTC
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		v := c.Query(p.name)
		if v == "" || v == "all" {
			continue
		}
		t, err := time.ParseInLocation(time.DateOnly, v, loc)
		if err != nil {
			return f, validation.New(p.name, "date", "must be a date in YYYY-MM-DD format")
		}
		*p.dst = &t
	}

	for _, p := range []struct {
		name string
		dst  **int64
	}{{"assistant_id", &f.AssistantID}, {"treatment_id", &f.TreatmentID}} {
		v := c.Query(p.name)
		if v == "" || v == "all" {
			continue
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, validation.New(p.name, "id", "must be a positive integer")
		}
		*p.dst = &id
	}
	return f, nil
}

func (h *Handler) AssignmentsReport(c *gin.Context) {
	f, err := parseFilter(c, h.Location)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	rep, err := h.Reports.Assignments(c.Request.Context(), f)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rep})
}

func (h *Handler) AssignmentSessionsReport(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.Reports.Sessions(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}
