package inventory

import (
	"bytes"
	"errors"

	"inventory-ledger/core/logger"
	"inventory-ledger/core/vision"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler handles HTTP requests for the ledger.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the ledger routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/events/object-finalized", h.HandleObjectFinalized)

	group := app.Group("/inventory")
	group.Get("/:deviceId", h.HandleGetInventory)
	group.Get("/:deviceId/export", h.HandleExportInventory)

	app.Get("/alerts", h.HandleListAlerts)
}

// HandleObjectFinalized reconciles the ledger against one uploaded video.
// @Summary Process Uploaded Video
// @Description Analyzes a finalized upload and applies the resulting inventory changes.
// @Tags inventory
// @Accept json
// @Produce json
// @Param event body Event true "Finalized upload"
// @Param dry_run query bool false "Plan without committing"
// @Success 200 {object} Result "Event result"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 502 {object} map[string]string "Analysis Failed"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /events/object-finalized [post]
func (h *Handler) HandleObjectFinalized(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var ev Event
	if err := c.BodyParser(&ev); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid event body"})
	}
	if ev.Bucket == "" || ev.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bucket and name are required"})
	}

	res, err := h.service.HandleEvent(c.UserContext(), ev, Options{DryRun: c.QueryBool("dry_run")})
	if err != nil {
		l.Error("Event processing failed", zap.String("object", ev.Key()), zap.Error(err))
		status := fiber.StatusInternalServerError
		var se *vision.StatusError
		if errors.As(err, &se) || errors.Is(err, vision.ErrServiceReported) {
			status = fiber.StatusBadGateway
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(res)
}

// HandleGetInventory lists the records of a device.
// @Summary Get Device Inventory
// @Description Lists every inventory record of a device in creation order.
// @Tags inventory
// @Produce json
// @Param deviceId path string true "Device ID"
// @Success 200 {array} reconcile.Record "Records"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /inventory/{deviceId} [get]
func (h *Handler) HandleGetInventory(c *fiber.Ctx) error {
	records, err := h.service.Inventory(c.UserContext(), c.Params("deviceId"))
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Inventory lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(records)
}

// HandleExportInventory downloads a device's ledger as a workbook.
// @Summary Export Device Inventory
// @Description Exports inventory records and alerts of a device as an xlsx workbook.
// @Tags inventory
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param deviceId path string true "Device ID"
// @Success 200 {file} file "Workbook"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /inventory/{deviceId}/export [get]
func (h *Handler) HandleExportInventory(c *fiber.Ctx) error {
	deviceID := c.Params("deviceId")

	var buf bytes.Buffer
	if err := h.service.Export(c.UserContext(), deviceID, &buf); err != nil {
		logger.WithRayID(h.logger, c).Error("Inventory export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Attachment("inventory-" + deviceID + ".xlsx")
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(buf.Bytes())
}

// HandleListAlerts lists review alerts.
// @Summary List Alerts
// @Description Lists batch alerts newest first, optionally filtered by device and status.
// @Tags alerts
// @Produce json
// @Param device query string false "Device ID"
// @Param status query string false "Alert status (e.g. pending)"
// @Param limit query int false "Maximum number of alerts"
// @Success 200 {array} reconcile.Alert "Alerts"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /alerts [get]
func (h *Handler) HandleListAlerts(c *fiber.Ctx) error {
	alerts, err := h.service.Alerts(c.UserContext(), AlertFilter{
		DeviceID: c.Query("device"),
		Status:   c.Query("status"),
		Limit:    c.QueryInt("limit", 100),
	})
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Alert lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(alerts)
}
