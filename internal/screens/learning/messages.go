package learning

import "campus/internal/api"

// learnLoadedMsg is sent when the course tree, progress records, and
// enrollment snapshot have been fetched.
type learnLoadedMsg struct {
	Sections   []api.Section
	Records    []api.ProgressRecord
	Enrollment *api.Enrollment
	Err        error
}

// accessPingDoneMsg reports the outcome of the fire-and-forget access
// ping for a lesson.
type accessPingDoneMsg struct {
	LessonID int
	Err      error
}

// completeDoneMsg is sent when a mark-complete call finishes.
type completeDoneMsg struct {
	LessonID int
	Result   *api.CompleteResult
	Err      error
}

// notesSavedMsg is sent when a notes save finishes. It carries the lesson
// the save was issued for so a late response cannot clobber state for the
// lesson now displayed.
type notesSavedMsg struct {
	LessonID int
	Record   *api.ProgressRecord
	Err      error
}
