// Package progress derives the lesson-viewing state for one course: which
// lesson is current, which are completed, the notes draft, and the cached
// enrollment percentage. Everything here is a pure derivation over the
// collections the API returned; no I/O.
package progress

import "campus/internal/api"

// FlatLesson is a lesson annotated with its section, in flattened
// sequence order.
type FlatLesson struct {
	api.Lesson
	SectionID    int
	SectionTitle string
}

// Flatten concatenates all lessons across sections, preserving section
// order then lesson order within each section. This sequence defines what
// "first incomplete" and "next" mean everywhere else.
func Flatten(sections []api.Section) []FlatLesson {
	var lessons []FlatLesson
	for _, sec := range sections {
		for _, l := range sec.Lessons {
			lessons = append(lessons, FlatLesson{
				Lesson:       l,
				SectionID:    sec.ID,
				SectionTitle: sec.Title,
			})
		}
	}
	return lessons
}

// firstIncomplete returns the ID of the first lesson in sequence order
// with no progress record or an uncompleted one. When every lesson is
// completed it falls back to the first lesson; when the sequence is empty
// it reports none. This tie-break is the resume contract.
func firstIncomplete(lessons []FlatLesson, records map[int]api.ProgressRecord) (int, bool) {
	if len(lessons) == 0 {
		return 0, false
	}
	for _, l := range lessons {
		rec, ok := records[l.ID]
		if !ok || !rec.Completed {
			return l.ID, true
		}
	}
	return lessons[0].ID, true
}

// Tracker holds the view state for one course's lesson sequence.
type Tracker struct {
	lessons []FlatLesson
	records map[int]api.ProgressRecord

	currentID  int
	hasCurrent bool
	notesDraft string

	percentage    float64
	hasPercentage bool

	pendingSaves map[int]bool
}

// NewTracker builds the initial state from the fetched section tree and
// progress records. The current lesson resumes at the first incomplete
// lesson, and its saved notes become the draft.
func NewTracker(sections []api.Section, records []api.ProgressRecord) *Tracker {
	t := &Tracker{
		lessons:      Flatten(sections),
		records:      make(map[int]api.ProgressRecord, len(records)),
		pendingSaves: make(map[int]bool),
	}
	for _, rec := range records {
		t.records[rec.LessonID] = rec
	}
	if id, ok := firstIncomplete(t.lessons, t.records); ok {
		t.currentID = id
		t.hasCurrent = true
		t.notesDraft = t.records[id].Notes
	}
	return t
}

// Lessons returns the flattened sequence.
func (t *Tracker) Lessons() []FlatLesson {
	return t.lessons
}

// Current returns the current lesson, if any.
func (t *Tracker) Current() (FlatLesson, bool) {
	if !t.hasCurrent {
		return FlatLesson{}, false
	}
	for _, l := range t.lessons {
		if l.ID == t.currentID {
			return l, true
		}
	}
	return FlatLesson{}, false
}

// CurrentID returns the current lesson's ID, or 0 when there is none.
func (t *Tracker) CurrentID() int {
	if !t.hasCurrent {
		return 0
	}
	return t.currentID
}

// Select makes lessonID the current lesson and reloads the notes draft
// from its record. Returns false for an ID outside the sequence.
func (t *Tracker) Select(lessonID int) bool {
	found := false
	for _, l := range t.lessons {
		if l.ID == lessonID {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	t.currentID = lessonID
	t.hasCurrent = true
	t.notesDraft = t.records[lessonID].Notes
	return true
}

// IsCompleted reports whether a record exists for lessonID with its
// completed flag set.
func (t *Tracker) IsCompleted(lessonID int) bool {
	rec, ok := t.records[lessonID]
	return ok && rec.Completed
}

// Record returns the progress record for lessonID, if one exists.
func (t *Tracker) Record(lessonID int) (api.ProgressRecord, bool) {
	rec, ok := t.records[lessonID]
	return rec, ok
}

// Upsert merges a server-returned record into the mapping: replace when a
// record for the lesson exists, insert otherwise. Re-upserting an already
// completed record is a no-op in effect, so a repeated mark-complete
// cannot corrupt state.
func (t *Tracker) Upsert(rec api.ProgressRecord) {
	t.records[rec.LessonID] = rec
	if t.hasCurrent && rec.LessonID == t.currentID {
		t.notesDraft = rec.Notes
	}
}

// NotesDraft returns the notes text bound to the current lesson.
func (t *Tracker) NotesDraft() string {
	return t.notesDraft
}

// SetNotesDraft updates the draft as the user types. Nothing is persisted
// until a save round-trips through the API.
func (t *Tracker) SetNotesDraft(text string) {
	t.notesDraft = text
}

// SetPercentage caches the server-authoritative enrollment percentage.
// It is never recomputed locally: the server may weight lessons, so the
// two can legitimately diverge for a moment after a completion.
func (t *Tracker) SetPercentage(p float64) {
	t.percentage = p
	t.hasPercentage = true
}

// Percentage returns the cached enrollment percentage and whether one has
// been seen yet.
func (t *Tracker) Percentage() (float64, bool) {
	return t.percentage, t.hasPercentage
}

// CompletedCount returns how many lessons in the sequence are completed.
func (t *Tracker) CompletedCount() int {
	n := 0
	for _, l := range t.lessons {
		if t.IsCompleted(l.ID) {
			n++
		}
	}
	return n
}

// BeginSave marks a notes save in flight for lessonID. Returns false when
// one is already pending for that lesson; the guard is keyed per lesson
// so a slow save cannot block saves for other lessons.
func (t *Tracker) BeginSave(lessonID int) bool {
	if t.pendingSaves[lessonID] {
		return false
	}
	t.pendingSaves[lessonID] = true
	return true
}

// EndSave clears the pending flag for lessonID.
func (t *Tracker) EndSave(lessonID int) {
	delete(t.pendingSaves, lessonID)
}

// SavePending reports whether a notes save is in flight for lessonID.
func (t *Tracker) SavePending(lessonID int) bool {
	return t.pendingSaves[lessonID]
}
