package api

import "time"

// Course is a catalog entry. Image URLs are normalized by the client
// before the course reaches any screen.
type Course struct {
	ID            int     `json:"id"`
	Slug          string  `json:"slug"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Instructor    string  `json:"instructor"`
	Category      string  `json:"category"`
	Difficulty    string  `json:"difficulty"`
	DurationWeeks int     `json:"duration_weeks"`
	Price         string  `json:"price"`
	Thumbnail     string  `json:"thumbnail"`
	CoverImage    string  `json:"cover_image"`
}

// Section groups an ordered run of lessons within a course.
type Section struct {
	ID      int      `json:"id"`
	Title   string   `json:"title"`
	Order   int      `json:"order"`
	Lessons []Lesson `json:"lessons"`
}

// ContentType enumerates the lesson payload kinds the platform serves.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentVideo ContentType = "video"
	ContentFile  ContentType = "file"
	ContentQuiz  ContentType = "quiz"
)

// Lesson is a single unit of course content. Exactly one of the payload
// fields is populated depending on ContentType.
type Lesson struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	ContentType ContentType `json:"content_type"`
	TextContent string      `json:"text_content"`
	VideoURL    string      `json:"video_url"`
	File        string      `json:"file"`
	Order       int         `json:"order"`
}

// ProgressRecord is the per-lesson completion and notes state for one
// enrollment. The platform stores at most one record per lesson; a lesson
// with no record has not been started.
type ProgressRecord struct {
	ID         int        `json:"id"`
	LessonID   int        `json:"lesson_id"`
	Completed  bool       `json:"completed"`
	Notes      string     `json:"notes"`
	AccessedAt *time.Time `json:"accessed_at,omitempty"`
}

// Enrollment is the server-maintained registration aggregate. The progress
// percentage is authoritative; the client never recomputes it locally.
type Enrollment struct {
	ID                 int     `json:"id"`
	CourseID           int     `json:"course_id"`
	CourseSlug         string  `json:"course_slug"`
	Title              string  `json:"title"`
	Thumbnail          string  `json:"thumbnail"`
	ProgressPercentage float64 `json:"progress_percentage"`
}

// CompleteResult is the response to a mark-complete call: the updated
// record plus, when the server recomputed it, a fresh enrollment snapshot.
type CompleteResult struct {
	ProgressRecord
	Enrollment *Enrollment `json:"enrollment,omitempty"`
}

// TokenPair is issued by the login and register endpoints.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Profile is the authenticated user's identity as the server sees it.
type Profile struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// EnrollResult is the response to an enroll call. AlreadyEnrolled is set
// by the client when the server answered with its "already enrolled"
// message instead of creating a new enrollment.
type EnrollResult struct {
	Message         string `json:"message"`
	EnrollmentID    int    `json:"enrollment_id"`
	AlreadyEnrolled bool   `json:"-"`
}
