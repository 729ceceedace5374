// Package mongostore implements lms.Gateway on MongoDB. Courses are stored as
// one document with their lessons embedded.
package mongostore

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"learnhub/backend/lms"
	"learnhub/backend/logger"
)

type Store struct {
	client        *mongo.Client
	courses       *mongo.Collection
	enrollments   *mongo.Collection
	attempts      *mongo.Collection
	reviews       *mongo.Collection
	lessonReviews *mongo.Collection
	log           *logger.Logger
}

var _ lms.Gateway = (*Store)(nil)

// Connect dials uri, checks the connection and makes sure the unique
// indexes exist.
func Connect(ctx context.Context, uri, dbName string, baseLog *logger.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "mongo connect")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "mongo ping")
	}
	s := New(client, dbName, baseLog)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func New(client *mongo.Client, dbName string, baseLog *logger.Logger) *Store {
	db := client.Database(dbName)
	return &Store{
		client:        client,
		courses:       db.Collection("courses"),
		enrollments:   db.Collection("enrollments"),
		attempts:      db.Collection("quiz_attempts"),
		reviews:       db.Collection("reviews"),
		lessonReviews: db.Collection("lesson_reviews"),
		log:           baseLog.With("store", "mongo"),
	}
}

func (s *Store) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Drop removes the whole database.
func (s *Store) Drop(ctx context.Context) error {
	return s.courses.Database().Drop(ctx)
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := func(keys ...string) mongo.IndexModel {
		d := bson.D{}
		for _, k := range keys {
			d = append(d, bson.E{Key: k, Value: 1})
		}
		return mongo.IndexModel{Keys: d, Options: options.Index().SetUnique(true)}
	}
	plain := func(keys ...string) mongo.IndexModel {
		d := bson.D{}
		for _, k := range keys {
			d = append(d, bson.E{Key: k, Value: 1})
		}
		return mongo.IndexModel{Keys: d}
	}

	indexes := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{s.courses, []mongo.IndexModel{plain("teacher_id")}},
		{s.enrollments, []mongo.IndexModel{unique("student_id", "course_id"), plain("course_id")}},
		{s.attempts, []mongo.IndexModel{unique("student_id", "lesson_id"), plain("student_id", "course_id")}},
		{s.reviews, []mongo.IndexModel{unique("student_id", "course_id"), plain("course_id")}},
		{s.lessonReviews, []mongo.IndexModel{unique("student_id", "lesson_id"), plain("lesson_id"), plain("student_id", "course_id")}},
	}
	for _, ix := range indexes {
		if _, err := ix.coll.Indexes().CreateMany(ctx, ix.models); err != nil {
			return errors.Wrapf(err, "create indexes on %s", ix.coll.Name())
		}
	}
	return nil
}

type lessonDoc struct {
	ID           string         `bson:"id"`
	Title        string         `bson:"title"`
	Type         string         `bson:"type"`
	Content      string         `bson:"content,omitempty"`
	Questions    []lms.Question `bson:"questions,omitempty"`
	RecordingURL string         `bson:"recording_url,omitempty"`
	Order        int            `bson:"order"`
	CreatedAt    time.Time      `bson:"created_at"`
}

type courseDoc struct {
	ID          string      `bson:"_id"`
	Title       string      `bson:"title"`
	Description string      `bson:"description"`
	TeacherID   string      `bson:"teacher_id"`
	Lessons     []lessonDoc `bson:"lessons"`
	CreatedAt   time.Time   `bson:"created_at"`
}

func toLessonDoc(l lms.Lesson) lessonDoc {
	d := lessonDoc{ID: l.ID, Title: l.Title, Type: string(l.Kind()), Order: l.Order, CreatedAt: l.CreatedAt}
	switch c := l.Content.(type) {
	case lms.TextContent:
		d.Content = c.Body
	case lms.VideoContent:
		d.Content = c.URL
	case lms.PDFContent:
		d.Content = c.URL
	case lms.LiveContent:
		d.Content = c.Room
		d.RecordingURL = c.RecordingURL
	case lms.QuizContent:
		d.Questions = c.Questions
	}
	return d
}

func (d lessonDoc) toDomain() (lms.Lesson, error) {
	l := lms.Lesson{ID: d.ID, Title: d.Title, Order: d.Order, CreatedAt: d.CreatedAt}
	switch lms.LessonKind(d.Type) {
	case lms.LessonText:
		l.Content = lms.TextContent{Body: d.Content}
	case lms.LessonVideo:
		l.Content = lms.VideoContent{URL: d.Content}
	case lms.LessonPDF:
		l.Content = lms.PDFContent{URL: d.Content}
	case lms.LessonLive:
		l.Content = lms.LiveContent{Room: d.Content, RecordingURL: d.RecordingURL}
	case lms.LessonQuiz:
		l.Content = lms.QuizContent{Questions: d.Questions}
	default:
		return lms.Lesson{}, errors.Errorf("lesson %s has unknown type %q", d.ID, d.Type)
	}
	return l, nil
}

func (s *Store) GetCourse(ctx context.Context, courseID string) (*lms.Course, error) {
	var doc courseDoc
	err := s.courses.FindOne(ctx, bson.M{"_id": courseID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, lms.ErrCourseNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get course %s", courseID)
	}
	c, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListCoursesByTeacher(ctx context.Context, teacherID string) ([]lms.Course, error) {
	cursor, err := s.courses.Find(ctx, bson.M{"teacher_id": teacherID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, errors.Wrapf(err, "list courses of %s", teacherID)
	}
	defer cursor.Close(ctx)

	var docs []courseDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode courses")
	}
	out := make([]lms.Course, 0, len(docs))
	for _, d := range docs {
		c, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (d courseDoc) toDomain() (lms.Course, error) {
	c := lms.Course{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		TeacherID:   d.TeacherID,
		Lessons:     make([]lms.Lesson, 0, len(d.Lessons)),
		CreatedAt:   d.CreatedAt,
	}
	for _, ld := range d.Lessons {
		l, err := ld.toDomain()
		if err != nil {
			return lms.Course{}, err
		}
		c.Lessons = append(c.Lessons, l)
	}
	return c, nil
}

func (s *Store) SaveCourse(ctx context.Context, course *lms.Course) error {
	doc := courseDoc{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		TeacherID:   course.TeacherID,
		Lessons:     make([]lessonDoc, 0, len(course.Lessons)),
		CreatedAt:   course.CreatedAt,
	}
	for _, l := range course.Lessons {
		doc.Lessons = append(doc.Lessons, toLessonDoc(l))
	}
	_, err := s.courses.ReplaceOne(ctx, bson.M{"_id": course.ID}, doc, options.Replace().SetUpsert(true))
	return errors.Wrapf(err, "save course %s", course.ID)
}

type enrollmentDoc struct {
	ID                 string    `bson:"_id"`
	StudentID          string    `bson:"student_id"`
	CourseID           string    `bson:"course_id"`
	CompletedLessonIDs []string  `bson:"completed_lesson_ids"`
	Grade              *float64  `bson:"grade"`
	EnrolledAt         time.Time `bson:"enrolled_at"`
}

func (d enrollmentDoc) toDomain() lms.Enrollment {
	ids := d.CompletedLessonIDs
	if ids == nil {
		ids = []string{}
	}
	return lms.Enrollment{
		ID:                 d.ID,
		StudentID:          d.StudentID,
		CourseID:           d.CourseID,
		CompletedLessonIDs: ids,
		Grade:              d.Grade,
		EnrolledAt:         d.EnrolledAt,
	}
}

func (s *Store) GetEnrollment(ctx context.Context, studentID, courseID string) (*lms.Enrollment, error) {
	var doc enrollmentDoc
	err := s.enrollments.FindOne(ctx, bson.M{"student_id": studentID, "course_id": courseID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get enrollment")
	}
	e := doc.toDomain()
	return &e, nil
}

func (s *Store) ListEnrollments(ctx context.Context, courseID string) ([]lms.Enrollment, error) {
	return s.findEnrollments(ctx, bson.M{"course_id": courseID})
}

func (s *Store) ListEnrollmentsByStudent(ctx context.Context, studentID string) ([]lms.Enrollment, error) {
	return s.findEnrollments(ctx, bson.M{"student_id": studentID})
}

func (s *Store) findEnrollments(ctx context.Context, filter bson.M) ([]lms.Enrollment, error) {
	cursor, err := s.enrollments.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "enrolled_at", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "list enrollments")
	}
	defer cursor.Close(ctx)

	var docs []enrollmentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode enrollments")
	}
	out := make([]lms.Enrollment, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (s *Store) CreateEnrollment(ctx context.Context, e *lms.Enrollment) error {
	ids := e.CompletedLessonIDs
	if ids == nil {
		ids = []string{}
	}
	doc := enrollmentDoc{
		ID:                 e.ID,
		StudentID:          e.StudentID,
		CourseID:           e.CourseID,
		CompletedLessonIDs: ids,
		Grade:              e.Grade,
		EnrolledAt:         e.EnrolledAt,
	}
	return s.insert(ctx, s.enrollments, doc, lms.ErrDuplicateEnrollment)
}

func (s *Store) UpdateEnrollmentProgress(ctx context.Context, enrollmentID string, completedLessonIDs []string) error {
	if completedLessonIDs == nil {
		completedLessonIDs = []string{}
	}
	return s.updateEnrollment(ctx, enrollmentID, bson.M{"completed_lesson_ids": completedLessonIDs})
}

func (s *Store) SetEnrollmentGrade(ctx context.Context, enrollmentID string, grade float64) error {
	return s.updateEnrollment(ctx, enrollmentID, bson.M{"grade": grade})
}

func (s *Store) updateEnrollment(ctx context.Context, enrollmentID string, set bson.M) error {
	res, err := s.enrollments.UpdateOne(ctx, bson.M{"_id": enrollmentID}, bson.M{"$set": set})
	if err != nil {
		return errors.Wrapf(err, "update enrollment %s", enrollmentID)
	}
	if res.MatchedCount == 0 {
		return lms.ErrEnrollmentNotFound
	}
	return nil
}

type attemptDoc struct {
	ID          string         `bson:"_id"`
	StudentID   string         `bson:"student_id"`
	CourseID    string         `bson:"course_id"`
	LessonID    string         `bson:"lesson_id"`
	Answers     map[string]int `bson:"answers"`
	Correctness []bool         `bson:"correctness"`
	Score       int            `bson:"score"`
	Total       int            `bson:"total"`
	SubmittedAt time.Time      `bson:"submitted_at"`
}

func (d attemptDoc) toDomain() lms.QuizAttempt {
	answers := make(map[int]int, len(d.Answers))
	for k, v := range d.Answers {
		if i, err := strconv.Atoi(k); err == nil {
			answers[i] = v
		}
	}
	return lms.QuizAttempt{
		ID:          d.ID,
		StudentID:   d.StudentID,
		CourseID:    d.CourseID,
		LessonID:    d.LessonID,
		Answers:     answers,
		Correctness: d.Correctness,
		Score:       d.Score,
		Total:       d.Total,
		SubmittedAt: d.SubmittedAt,
	}
}

func (s *Store) SubmitQuizAttempt(ctx context.Context, a *lms.QuizAttempt) error {
	answers := make(map[string]int, len(a.Answers))
	for k, v := range a.Answers {
		answers[strconv.Itoa(k)] = v
	}
	doc := attemptDoc{
		ID:          a.ID,
		StudentID:   a.StudentID,
		CourseID:    a.CourseID,
		LessonID:    a.LessonID,
		Answers:     answers,
		Correctness: a.Correctness,
		Score:       a.Score,
		Total:       a.Total,
		SubmittedAt: a.SubmittedAt,
	}
	return s.insert(ctx, s.attempts, doc, lms.ErrDuplicateAttempt)
}

func (s *Store) GetQuizAttempt(ctx context.Context, studentID, lessonID string) (*lms.QuizAttempt, error) {
	var doc attemptDoc
	err := s.attempts.FindOne(ctx, bson.M{"student_id": studentID, "lesson_id": lessonID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get quiz attempt")
	}
	a := doc.toDomain()
	return &a, nil
}

func (s *Store) ListQuizAttempts(ctx context.Context, studentID, courseID string) ([]lms.QuizAttempt, error) {
	cursor, err := s.attempts.Find(ctx, bson.M{"student_id": studentID, "course_id": courseID})
	if err != nil {
		return nil, errors.Wrap(err, "list quiz attempts")
	}
	defer cursor.Close(ctx)

	var docs []attemptDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode quiz attempts")
	}
	out := make([]lms.QuizAttempt, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

type reviewDoc struct {
	ID        string    `bson:"_id"`
	StudentID string    `bson:"student_id"`
	CourseID  string    `bson:"course_id"`
	LessonID  string    `bson:"lesson_id,omitempty"`
	Rating    int       `bson:"rating"`
	Comment   string    `bson:"comment"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d reviewDoc) toDomain() lms.Review {
	target := d.CourseID
	if d.LessonID != "" {
		target = d.LessonID
	}
	return lms.Review{
		ID:        d.ID,
		StudentID: d.StudentID,
		CourseID:  d.CourseID,
		TargetID:  target,
		Rating:    d.Rating,
		Comment:   d.Comment,
		CreatedAt: d.CreatedAt,
	}
}

func (s *Store) SubmitReview(ctx context.Context, r *lms.Review) error {
	doc := reviewDoc{ID: r.ID, StudentID: r.StudentID, CourseID: r.CourseID, Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt}
	return s.insert(ctx, s.reviews, doc, lms.ErrDuplicateReview)
}

func (s *Store) SubmitLessonReview(ctx context.Context, r *lms.Review) error {
	doc := reviewDoc{ID: r.ID, StudentID: r.StudentID, CourseID: r.CourseID, LessonID: r.TargetID, Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt}
	return s.insert(ctx, s.lessonReviews, doc, lms.ErrDuplicateReview)
}

func (s *Store) ListReviews(ctx context.Context, courseID string) ([]lms.Review, error) {
	return s.findReviews(ctx, s.reviews, bson.M{"course_id": courseID})
}

func (s *Store) ListLessonReviews(ctx context.Context, lessonID string) ([]lms.Review, error) {
	return s.findReviews(ctx, s.lessonReviews, bson.M{"lesson_id": lessonID})
}

func (s *Store) ListStudentLessonReviews(ctx context.Context, studentID, courseID string) ([]lms.Review, error) {
	return s.findReviews(ctx, s.lessonReviews, bson.M{"student_id": studentID, "course_id": courseID})
}

func (s *Store) findReviews(ctx context.Context, coll *mongo.Collection, filter bson.M) ([]lms.Review, error) {
	cursor, err := coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", coll.Name())
	}
	defer cursor.Close(ctx)

	var docs []reviewDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrapf(err, "decode %s", coll.Name())
	}
	out := make([]lms.Review, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// insert relies on the collection's unique index to reject duplicates.
func (s *Store) insert(ctx context.Context, coll *mongo.Collection, doc interface{}, dup error) error {
	_, err := coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return dup
	}
	if err != nil {
		s.log.Error("insert failed", "collection", coll.Name(), "error", err)
		return errors.Wrapf(err, "insert into %s", coll.Name())
	}
	return nil
}
