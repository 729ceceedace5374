package controllers

import (
	"github.com/gofiber/fiber/v2"

	"learnhub/backend/lms"
	"learnhub/backend/logger"
	"learnhub/backend/utils"
)

const (
	recordingStatusEvent = "recording.status"
	recordingReady       = "ready"
)

type RecordingController struct {
	Catalog *lms.Catalog
	Log     *logger.Logger
}

func NewRecordingController(catalog *lms.Catalog, log *logger.Logger) *RecordingController {
	return &RecordingController{Catalog: catalog, Log: log.With("controller", "recording")}
}

// RecordingEvent is the payload the video provider posts when a room's
// recording changes state.
type RecordingEvent struct {
	EventType string `json:"eventType" example:"recording.status"`
	Data      struct {
		Status   string `json:"status" example:"ready"`
		Location string `json:"location" example:"https://cdn.example.com/rec/abc.mp4"`
	} `json:"data"`
	Context struct {
		RoomName string `json:"roomName" example:"crs_7_office-hours"`
	} `json:"context"`
}

// RecordingWebhook godoc
// @Summary Recording webhook
// @Description Attaches a finished recording to the live lesson held in the room. Other events are acknowledged and ignored.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param X-Webhook-Signature header string false "HS256 token signed with the webhook secret"
// @Param input body RecordingEvent true "Event"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /webhooks/recordings [post]
func (rc *RecordingController) RecordingWebhook(c *fiber.Ctx) error {
	var event RecordingEvent
	if err := c.BodyParser(&event); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if event.EventType != recordingStatusEvent || event.Data.Status != recordingReady {
		rc.Log.Debug("recording event ignored", "event", event.EventType, "status", event.Data.Status)
		return utils.OK(c, fiber.Map{"ignored": true})
	}

	lesson, err := rc.Catalog.AttachRecording(c.UserContext(), event.Context.RoomName, event.Data.Location)
	if err != nil {
		rc.Log.Warn("recording not attached", "room", event.Context.RoomName, "error", err)
		return utils.Fail(c, err)
	}
	return utils.OK(c, lesson)
}
