package controllers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"learnhub/backend/lms"
	"learnhub/backend/middleware"
	"learnhub/backend/utils"
)

type CoursesController struct {
	Catalog     *lms.Catalog
	Enrollments *lms.EnrollmentService
	Dashboard   *lms.Dashboard
}

func NewCoursesController(catalog *lms.Catalog, enrollments *lms.EnrollmentService, dashboard *lms.Dashboard) *CoursesController {
	return &CoursesController{Catalog: catalog, Enrollments: enrollments, Dashboard: dashboard}
}

// CourseRequest defines the request body for creating a course
type CourseRequest struct {
	Title       string `json:"title" example:"Intro to Ethics"`
	Description string `json:"description" example:"Eight lessons on moral philosophy"`
}

// LessonRequest defines the request body for adding or replacing a lesson.
// Content is a string for text, video, pdf and live lessons and a list of
// questions for quizzes.
type LessonRequest struct {
	Title   string          `json:"title" example:"What is virtue?"`
	Type    lms.LessonKind  `json:"type" example:"text" enums:"text,video,pdf,live,quiz"`
	Content json.RawMessage `json:"content" swaggertype:"object"`
}

// GetMyCourses godoc
// @Summary Get my courses
// @Description Lists the courses the student is enrolled in with progress, grade and the student's own rating
// @Tags courses
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]lms.StudentCourse}
// @Failure 503 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses [get]
func (cc *CoursesController) GetMyCourses(c *fiber.Ctx) error {
	id, _ := middleware.Identity(c)

	courses, err := cc.Dashboard.StudentCourses(c.UserContext(), id.UserID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, courses)
}

// GetTeacherCourses godoc
// @Summary Get teacher courses
// @Description Lists the calling teacher's courses with student counts and rating summaries
// @Tags teacher
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]lms.TeacherCourse}
// @Failure 503 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /teacher/courses [get]
func (cc *CoursesController) GetTeacherCourses(c *fiber.Ctx) error {
	id, _ := middleware.Identity(c)

	courses, err := cc.Dashboard.TeacherCourses(c.UserContext(), id.UserID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, courses)
}

// GetCourse godoc
// @Summary Get course
// @Description Returns a course with its lessons in order
// @Tags courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} utils.SuccessResponse{data=lms.Course}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id} [get]
func (cc *CoursesController) GetCourse(c *fiber.Ctx) error {
	course, err := cc.Catalog.Course(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.Fail(c, err)
	}
	course.Lessons = course.OrderedLessons()
	return utils.OK(c, course)
}

// CreateCourse godoc
// @Summary Create course
// @Description Creates an empty course owned by the calling teacher
// @Tags teacher
// @Accept json
// @Produce json
// @Param input body CourseRequest true "Course"
// @Success 201 {object} utils.SuccessResponse{data=lms.Course}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /teacher/courses [post]
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	id, _ := middleware.Identity(c)

	var input CourseRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	course, err := cc.Catalog.CreateCourse(c.UserContext(), id.UserID, lms.CourseInput(input))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Created(c, course)
}

// UpdateCourse godoc
// @Summary Update course
// @Description Replaces the title and description of a course the caller teaches
// @Tags teacher
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param input body CourseRequest true "Course"
// @Success 200 {object} utils.SuccessResponse{data=lms.Course}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /teacher/courses/{id} [put]
func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	id, _ := middleware.Identity(c)

	var input CourseRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	course, err := cc.Catalog.UpdateCourse(c.UserContext(), id.UserID, c.Params("id"), lms.CourseInput(input))
	if err != nil {
		return utils.Fail(c, err)
	}
	course.Lessons = course.OrderedLessons()
	return utils.OK(c, course)
}

// AddLesson godoc
// @Summary Add lesson
// @Description Appends a lesson to the end of the course
// @Tags teacher
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param input body LessonRequest true "Lesson"
// @Success 201 {object} utils.SuccessResponse{data=lms.Lesson}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /teacher/courses/{id}/lessons [post]
func (cc *CoursesController) AddLesson(c *fiber.Ctx) error {
	lesson, err := cc.saveLesson(c, "")
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.Created(c, lesson)
}

// UpdateLesson godoc
// @Summary Replace lesson
// @Description Replaces a lesson's title and content keeping its position
// @Tags teacher
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param lessonId path string true "Lesson ID"
// @Param input body LessonRequest true "Lesson"
// @Success 200 {object} utils.SuccessResponse{data=lms.Lesson}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /teacher/courses/{id}/lessons/{lessonId} [put]
func (cc *CoursesController) UpdateLesson(c *fiber.Ctx) error {
	lesson, err := cc.saveLesson(c, c.Params("lessonId"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, lesson)
}

func (cc *CoursesController) saveLesson(c *fiber.Ctx, lessonID string) (*lms.Lesson, error) {
	id, _ := middleware.Identity(c)

	var input LessonRequest
	if err := c.BodyParser(&input); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	content, err := lms.DecodeContent(input.Type, input.Content, "")
	if err != nil {
		return nil, err
	}
	return cc.Catalog.SaveLesson(c.UserContext(), id.UserID, c.Params("id"), lessonID, lms.LessonInput{
		Title:   input.Title,
		Content: content,
	})
}

// GetRoster godoc
// @Summary Get course students
// @Description Lists the students of a course with their progress, grade and course rating
// @Tags teacher
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} utils.SuccessResponse{data=[]lms.RosterEntry}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /teacher/courses/{id}/roster [get]
func (cc *CoursesController) GetRoster(c *fiber.Ctx) error {
	id, _ := middleware.Identity(c)

	roster, err := cc.Enrollments.Roster(c.UserContext(), id.UserID, c.Params("id"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, roster)
}

// SetGrade godoc
// @Summary Grade a student
// @Description Sets the student's course grade on a 0-10 scale
// @Tags teacher
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param studentId path string true "Student ID"
// @Param input body lms.GradeInput true "Grade"
// @Success 200 {object} utils.SuccessResponse{data=lms.Enrollment}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /teacher/courses/{id}/students/{studentId}/grade [put]
func (cc *CoursesController) SetGrade(c *fiber.Ctx) error {
	id, _ := middleware.Identity(c)

	var input lms.GradeInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := lms.Validate("courses.SetGrade", input); err != nil {
		return utils.Fail(c, err)
	}

	enrollment, err := cc.Enrollments.SetGrade(c.UserContext(), id.UserID, c.Params("id"), c.Params("studentId"), *input.Grade)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, enrollment)
}
