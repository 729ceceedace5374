package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"learnhub/backend/lms"
	"learnhub/backend/middleware"
	"learnhub/backend/utils"
)

type ProgressController struct {
	Tracker *lms.Tracker
}

func NewProgressController(tracker *lms.Tracker) *ProgressController {
	return &ProgressController{Tracker: tracker}
}

// GetCourseProgress godoc
// @Summary Get course progress
// @Description Returns the student's view of a course: ordered lessons, completed lessons, next lesson, grade and review state
// @Tags progress
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param lesson query int false "Index of the lesson to show; out of range values are ignored"
// @Success 200 {object} utils.SuccessResponse{data=lms.Overview}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/progress [get]
func (pc *ProgressController) GetCourseProgress(c *fiber.Ctx) error {
	id, _ := middleware.Identity(c)

	overview, err := pc.Tracker.Overview(c.UserContext(), id.UserID, c.Params("id"))
	if err != nil {
		return utils.Fail(c, err)
	}

	if q := c.Query("lesson"); q != "" {
		if index, err := strconv.Atoi(q); err == nil {
			overview.Focus(index)
		}
	}
	return utils.OK(c, overview)
}

// CompleteLesson godoc
// @Summary Mark lesson complete
// @Description Adds the lesson to the student's completed lessons. Completing a lesson twice changes nothing.
// @Tags progress
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} utils.SuccessResponse{data=lms.Step}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/lessons/{lessonId}/complete [post]
func (pc *ProgressController) CompleteLesson(c *fiber.Ctx) error {
	id, _ := middleware.Identity(c)

	step, err := pc.Tracker.Complete(c.UserContext(), id.UserID, c.Params("id"), c.Params("lessonId"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, step)
}
