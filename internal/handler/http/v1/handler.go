package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rafael-ceotto/StormGuard/internal/config"
	"github.com/rafael-ceotto/StormGuard/internal/models"
	"github.com/rafael-ceotto/StormGuard/internal/service"
	"github.com/rafael-ceotto/StormGuard/internal/trigger"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	dispatchService service.DispatchService
	alertService    service.AlertService
	publisher       trigger.Publisher
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
}

func NewHandler(
	dispatchService service.DispatchService,
	alertService service.AlertService,
	publisher trigger.Publisher,
	logger *logrus.Logger,
	cfg *config.Config,
) *Handler {
	return &Handler{
		dispatchService: dispatchService,
		alertService:    alertService,
		publisher:       publisher,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
	}
}

// @Summary Enqueue a prediction
// @Description Queue a prediction for asynchronous dispatch by the trigger worker. Requires API key.
// @Tags Predictions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param prediction body DispatchPredictionRequest true "Prediction record"
// @Success 202 {object} map[string]bool
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /predictions [post]
func (h *Handler) enqueuePrediction(c *gin.Context) {
	log := h.logger.WithField("method", "enqueuePrediction")

	pred, ok := h.bindPrediction(c, log)
	if !ok {
		return
	}

	if err := h.publisher.Publish(c.Request.Context(), pred); err != nil {
		log.WithError(err).Error("Failed to enqueue prediction")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": true})
}

// @Summary Run a dispatch cycle
// @Description Run one synchronous dispatch cycle for a prediction and return the aggregate result. Requires API key.
// @Tags Predictions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param prediction body DispatchPredictionRequest true "Prediction record"
// @Success 200 {object} CycleResultResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /predictions/dispatch [post]
func (h *Handler) dispatchPrediction(c *gin.Context) {
	log := h.logger.WithField("method", "dispatchPrediction")

	pred, ok := h.bindPrediction(c, log)
	if !ok {
		return
	}

	result, err := h.dispatchService.RunCycle(c.Request.Context(), pred)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPrediction) {
			log.WithError(err).Warn("Rejected invalid prediction")
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.WithError(err).Error("Dispatch cycle failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dispatch cycle failed"})
		return
	}
	c.JSON(http.StatusOK, ModelToCycleResultResponse(result))
}

// @Summary List a user's alerts
// @Description Paginated list of a user's alerts, newest first. The X-User-ID header must match the path user.
// @Tags Alerts
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Param limit query int false "Maximum alerts to return" default(100)
// @Param offset query int false "Pagination offset" default(0)
// @Param unread_only query bool false "Only unread alerts" default(false)
// @Success 200 {array} AlertResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts/user/{user_id} [get]
func (h *Handler) listUserAlerts(c *gin.Context) {
	log := h.logger.WithField("method", "listUserAlerts")
	userID := c.Param("user_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	unreadOnly := c.DefaultQuery("unread_only", "false") == "true"

	alerts, err := h.alertService.ListUserAlerts(c.Request.Context(), userID, requesterID(c), limit, offset, unreadOnly)
	if err != nil {
		h.respondAlertError(c, log, err, "Failed to list alerts")
		return
	}
	c.JSON(http.StatusOK, ModelsToAlertResponses(alerts))
}

// @Summary Get alert details
// @Description Get a single alert by its ID. Only the owning user may read it.
// @Tags Alerts
// @Accept json
// @Produce json
// @Param id path string true "Alert ID"
// @Success 200 {object} AlertResponse
// @Failure 400 {object} map[string]string "Invalid alert ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Alert not found"
// @Router /alerts/{id} [get]
func (h *Handler) getAlert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert ID"})
		return
	}
	log := h.logger.WithField("method", "getAlert").WithField("id", id)

	alert, err := h.alertService.GetAlert(c.Request.Context(), id, requesterID(c))
	if err != nil {
		h.respondAlertError(c, log, err, "Failed to get alert")
		return
	}
	c.JSON(http.StatusOK, ModelToAlertResponse(alert))
}

// @Summary Mark alert as read
// @Description Apply the read transition. Marking an already-read alert is a no-op.
// @Tags Alerts
// @Accept json
// @Produce json
// @Param id path string true "Alert ID"
// @Success 200 {object} AlertResponse
// @Failure 400 {object} map[string]string "Invalid alert ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Alert not found"
// @Router /alerts/{id}/read [post]
func (h *Handler) markAlertRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert ID"})
		return
	}
	log := h.logger.WithField("method", "markAlertRead").WithField("id", id)

	alert, err := h.alertService.MarkRead(c.Request.Context(), id, requesterID(c))
	if err != nil {
		h.respondAlertError(c, log, err, "Failed to mark alert read")
		return
	}
	c.JSON(http.StatusOK, ModelToAlertResponse(alert))
}

// @Summary Record alert click
// @Description Apply the clicked transition; clicking implies reading.
// @Tags Alerts
// @Accept json
// @Produce json
// @Param id path string true "Alert ID"
// @Success 200 {object} AlertResponse
// @Failure 400 {object} map[string]string "Invalid alert ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Alert not found"
// @Router /alerts/{id}/click [post]
func (h *Handler) markAlertClicked(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert ID"})
		return
	}
	log := h.logger.WithField("method", "markAlertClicked").WithField("id", id)

	alert, err := h.alertService.MarkClicked(c.Request.Context(), id, requesterID(c))
	if err != nil {
		h.respondAlertError(c, log, err, "Failed to mark alert clicked")
		return
	}
	c.JSON(http.StatusOK, ModelToAlertResponse(alert))
}

// @Summary Delete alert
// @Description Remove an alert record entirely. Only the owning user may delete it.
// @Tags Alerts
// @Accept json
// @Produce json
// @Param id path string true "Alert ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid alert ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Alert not found"
// @Router /alerts/{id} [delete]
func (h *Handler) deleteAlert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert ID"})
		return
	}
	log := h.logger.WithField("method", "deleteAlert").WithField("id", id)

	if err := h.alertService.DeleteAlert(c.Request.Context(), id, requesterID(c)); err != nil {
		h.respondAlertError(c, log, err, "Failed to delete alert")
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Get alert statistics
// @Description Per-user counts of sent, read and clicked alerts with a by-type breakdown.
// @Tags Alerts
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} AlertStatsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts/stats/{user_id} [get]
func (h *Handler) getAlertStats(c *gin.Context) {
	log := h.logger.WithField("method", "getAlertStats")
	userID := c.Param("user_id")

	stats, err := h.alertService.GetStats(c.Request.Context(), userID, requesterID(c))
	if err != nil {
		h.respondAlertError(c, log, err, "Failed to get alert stats")
		return
	}
	c.JSON(http.StatusOK, ModelToStatsResponse(stats))
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// bindPrediction decodes and validates the trigger request body.
func (h *Handler) bindPrediction(c *gin.Context, log *logrus.Entry) (*models.Prediction, bool) {
	var input DispatchPredictionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return nil, false
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return DTOToPrediction(input), true
}

// respondAlertError maps service errors onto HTTP. Not-found and forbidden
// stay distinct; everything else is a 500.
func (h *Handler) respondAlertError(c *gin.Context, log *logrus.Entry, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrAlertNotFound):
		log.WithError(err).Warn(msg)
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
	case errors.Is(err, service.ErrForbidden):
		log.WithError(err).Warn(msg)
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		log.WithError(err).Error(msg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
