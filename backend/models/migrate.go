package models

import "gorm.io/gorm"

// AutoMigrate creates or updates every table the gorm store uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Course{},
		&Lesson{},
		&Enrollment{},
		&QuizAttempt{},
		&CourseReview{},
		&LessonReview{},
	)
}
