package controllers

import (
	"github.com/gofiber/fiber/v2"

	"learnhub/backend/lms"
	"learnhub/backend/middleware"
	"learnhub/backend/utils"
)

type ReviewsController struct {
	Reviews *lms.ReviewService
}

func NewReviewsController(reviews *lms.ReviewService) *ReviewsController {
	return &ReviewsController{Reviews: reviews}
}

// ReviewRequest defines the request body for a course or lesson review
type ReviewRequest struct {
	Rating  int    `json:"rating" example:"5" minimum:"1" maximum:"5"`
	Comment string `json:"comment" example:"This course was amazing!"`
}

type CourseReviewsResponse struct {
	Summary lms.Summary  `json:"summary"`
	Reviews []lms.Review `json:"reviews"`
}

// AddCourseReview godoc
// @Summary Review a course
// @Description Adds the student's rating and comment for a course they completed. One review per student.
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param input body ReviewRequest true "Review"
// @Success 201 {object} utils.SuccessResponse{data=lms.Review}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/reviews [post]
func (rc *ReviewsController) AddCourseReview(c *fiber.Ctx) error {
	id, _ := middleware.Identity(c)

	var input ReviewRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	review, err := rc.Reviews.SubmitCourseReview(c.UserContext(), id.UserID, c.Params("id"), lms.ReviewInput(input))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Created(c, review)
}

// GetCourseReviews godoc
// @Summary Get course reviews
// @Description Returns every review of a course with the rating summary
// @Tags reviews
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} utils.SuccessResponse{data=CourseReviewsResponse}
// @Security ApiKeyAuth
// @Router /courses/{id}/reviews [get]
func (rc *ReviewsController) GetCourseReviews(c *fiber.Ctx) error {
	reviews, err := rc.Reviews.CourseReviews(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, CourseReviewsResponse{Summary: lms.Summarize(reviews), Reviews: reviews})
}

// GetCourseReviewSummary godoc
// @Summary Get course rating
// @Description Returns the average rating (one decimal, null without reviews) and review count of a course
// @Tags reviews
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} utils.SuccessResponse{data=lms.Summary}
// @Security ApiKeyAuth
// @Router /courses/{id}/reviews/summary [get]
func (rc *ReviewsController) GetCourseReviewSummary(c *fiber.Ctx) error {
	summary, err := rc.Reviews.CourseSummary(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, summary)
}

// AddLessonReview godoc
// @Summary Review a lesson
// @Description Adds the student's rating and comment for one lesson. One review per student and lesson.
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param lessonId path string true "Lesson ID"
// @Param input body ReviewRequest true "Review"
// @Success 201 {object} utils.SuccessResponse{data=lms.Review}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/lessons/{lessonId}/reviews [post]
func (rc *ReviewsController) AddLessonReview(c *fiber.Ctx) error {
	id, _ := middleware.Identity(c)

	var input ReviewRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	review, err := rc.Reviews.SubmitLessonReview(c.UserContext(), id.UserID, c.Params("id"), c.Params("lessonId"), lms.ReviewInput(input))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Created(c, review)
}

// GetLessonReviewSummary godoc
// @Summary Get lesson rating
// @Description Returns the average rating and review count of a lesson
// @Tags reviews
// @Produce json
// @Param id path string true "Course ID"
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} utils.SuccessResponse{data=lms.Summary}
// @Security ApiKeyAuth
// @Router /courses/{id}/lessons/{lessonId}/reviews/summary [get]
func (rc *ReviewsController) GetLessonReviewSummary(c *fiber.Ctx) error {
	summary, err := rc.Reviews.LessonSummary(c.UserContext(), c.Params("lessonId"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, summary)
}
