package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kelaskita/timetable-engine/internal/dto"
	"github.com/kelaskita/timetable-engine/internal/models"
	appErrors "github.com/kelaskita/timetable-engine/pkg/errors"
	"github.com/kelaskita/timetable-engine/pkg/export"
	"github.com/kelaskita/timetable-engine/pkg/response"
)

const maxRequestEntities = 512

type scheduleComputer interface {
	ComputeSchedule(ctx context.Context, req dto.ScheduleRequest) (*dto.ScheduleResponse, error)
	Progress() models.ProgressSnapshot
	ClearCache()
	CacheStatus() models.CacheStatus
}

// ScheduleHandler exposes the scheduling engine over HTTP.
type ScheduleHandler struct {
	service scheduleComputer
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(svc scheduleComputer) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// Compute godoc
// @Summary Compute a weekly timetable
// @Description Builds a conflict-free weekly schedule for the supplied teachers, rooms and classes.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleRequest true "Schedule request"
// @Success 200 {object} response.Envelope
// @Router /schedule [post]
func (h *ScheduleHandler) Compute(c *gin.Context) {
	var req dto.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
		return
	}
	if err := validateRequestSize(req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.ComputeSchedule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Progress godoc
// @Summary Current scheduling progress
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule/progress [get]
func (h *ScheduleHandler) Progress(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Progress())
}

// Export godoc
// @Summary Export a computed timetable
// @Description Computes (cache-backed) and streams the timetable as CSV or PDF.
// @Tags Schedule
// @Accept json
// @Produce text/csv
// @Param format query string false "csv or pdf" default(csv)
// @Param payload body dto.ScheduleRequest true "Schedule request"
// @Success 200 {file} binary
// @Router /schedule/export [post]
func (h *ScheduleHandler) Export(c *gin.Context) {
	var req dto.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
		return
	}
	if err := validateRequestSize(req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.ComputeSchedule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	format := c.DefaultQuery("format", "csv")
	switch format {
	case "csv":
		payload, err := export.RenderCSV(result.Schedule)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="timetable.csv"`)
		c.Data(http.StatusOK, "text/csv", payload)
	case "pdf":
		payload, err := export.RenderPDF(result.Schedule, "Weekly Timetable")
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="timetable.pdf"`)
		c.Data(http.StatusOK, "application/pdf", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrUnsupported, fmt.Sprintf("unsupported export format %q", format)))
	}
}

// Sample godoc
// @Summary Run the canned sample request
// @Description Computes a small fixed scenario and reports timing; useful as a smoke check.
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule/sample [get]
func (h *ScheduleHandler) Sample(c *gin.Context) {
	req := sampleRequest()
	start := time.Now()
	result, err := h.service.ComputeSchedule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.SampleRunResponse{
		Schedule:      result.Schedule,
		ExecutionTime: fmt.Sprintf("%.2f seconds", time.Since(start).Seconds()),
		Assignments:   len(result.Schedule),
	})
}

// CacheStatus godoc
// @Summary Schedule cache occupancy
// @Tags Cache
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /cache/status [get]
func (h *ScheduleHandler) CacheStatus(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.CacheStatus())
}

// CacheClear godoc
// @Summary Clear the schedule cache
// @Tags Cache
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /cache/clear [post]
func (h *ScheduleHandler) CacheClear(c *gin.Context) {
	h.service.ClearCache()
	response.JSON(c, http.StatusOK, gin.H{"message": "Cache cleared successfully"})
}

func validateRequestSize(req dto.ScheduleRequest) error {
	if len(req.Teachers) > maxRequestEntities || len(req.Rooms) > maxRequestEntities || len(req.Classes) > maxRequestEntities {
		return appErrors.Clone(appErrors.ErrValidation, "request exceeds supported entity limit")
	}
	return nil
}

func sampleRequest() dto.ScheduleRequest {
	return dto.ScheduleRequest{
		Teachers: []models.Teacher{
			{ID: "T001", Major: "Mathematics", Minor: "Physics"},
			{ID: "T002", Major: "English", Minor: "Literature"},
			{ID: "T003", Major: "Science", Minor: "Biology"},
		},
		Rooms: []models.Room{
			{ID: "R001", Capacity: 30},
			{ID: "R002", Capacity: 25},
		},
		Classes: []models.SubjectClass{
			{ID: "C001", Subject: "Mathematics", TimesPerWeek: 5, Duration: 1},
			{ID: "C002", Subject: "English", TimesPerWeek: 4, Duration: 1},
			{ID: "C003", Subject: "Science", TimesPerWeek: 3, Duration: 1},
		},
		MaxPerDay:  6,
		MaxPerWeek: 30,
		NumShifts:  1,
	}
}
