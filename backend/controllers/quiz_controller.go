package controllers

import (
	"github.com/gofiber/fiber/v2"

	"learnhub/backend/lms"
	"learnhub/backend/middleware"
	"learnhub/backend/utils"
)

type QuizController struct {
	Quizzes *lms.QuizService
}

func NewQuizController(quizzes *lms.QuizService) *QuizController {
	return &QuizController{Quizzes: quizzes}
}

// SubmitQuizRequest maps question index to the chosen option index.
type SubmitQuizRequest struct {
	Answers map[int]int `json:"answers" example:"0:1,1:3"`
}

type QuizResultResponse struct {
	Attempt *lms.QuizAttempt `json:"attempt"`
	Passed  bool             `json:"passed"`
}

// SubmitQuiz godoc
// @Summary Submit quiz answers
// @Description Grades the student's answers to a quiz lesson. Each student gets one attempt per quiz.
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param lessonId path string true "Lesson ID"
// @Param input body SubmitQuizRequest true "Answers"
// @Success 201 {object} utils.SuccessResponse{data=QuizResultResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/lessons/{lessonId}/quiz [post]
func (qc *QuizController) SubmitQuiz(c *fiber.Ctx) error {
	id, _ := middleware.Identity(c)

	var input SubmitQuizRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	attempt, err := qc.Quizzes.Submit(c.UserContext(), id.UserID, c.Params("id"), c.Params("lessonId"), input.Answers)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Created(c, QuizResultResponse{
		Attempt: attempt,
		Passed:  attempt.Result().Passed(qc.Quizzes.PassRatio()),
	})
}

// GetQuizResult godoc
// @Summary Get quiz result
// @Description Returns the student's graded attempt at a quiz lesson
// @Tags quiz
// @Produce json
// @Param id path string true "Course ID"
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} utils.SuccessResponse{data=QuizResultResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/lessons/{lessonId}/quiz [get]
func (qc *QuizController) GetQuizResult(c *fiber.Ctx) error {
	id, _ := middleware.Identity(c)

	attempt, err := qc.Quizzes.Attempt(c.UserContext(), id.UserID, c.Params("id"), c.Params("lessonId"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, QuizResultResponse{
		Attempt: attempt,
		Passed:  attempt.Result().Passed(qc.Quizzes.PassRatio()),
	})
}
