package controllers

import (
	"github.com/gofiber/fiber/v2"

	"learnhub/backend/lms"
	"learnhub/backend/middleware"
	"learnhub/backend/utils"
)

type EnrollmentController struct {
	Enrollments *lms.EnrollmentService
}

func NewEnrollmentController(enrollments *lms.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{Enrollments: enrollments}
}

// EnrollRequest defines the request body for an admin enrollment
type EnrollRequest struct {
	StudentID string `json:"student_id" example:"usr_42"`
	CourseID  string `json:"course_id" example:"crs_7"`
}

// EnrollSelf godoc
// @Summary Enroll in course
// @Description Enrolls the calling student in a course
// @Tags enrollment
// @Produce json
// @Param id path string true "Course ID"
// @Success 201 {object} utils.SuccessResponse{data=lms.Enrollment}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/enroll [post]
func (ec *EnrollmentController) EnrollSelf(c *fiber.Ctx) error {
	id, _ := middleware.Identity(c)

	enrollment, err := ec.Enrollments.Enroll(c.UserContext(), id.UserID, c.Params("id"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Created(c, enrollment)
}

// AdminEnroll godoc
// @Summary Enroll a student
// @Description Enrolls any student in any course (admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Param input body EnrollRequest true "Enrollment"
// @Success 201 {object} utils.SuccessResponse{data=lms.Enrollment}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/enrollments [post]
func (ec *EnrollmentController) AdminEnroll(c *fiber.Ctx) error {
	var input EnrollRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	enrollment, err := ec.Enrollments.Enroll(c.UserContext(), input.StudentID, input.CourseID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Created(c, enrollment)
}
