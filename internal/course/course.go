// Package course defines the core data model for course materials:
// courses, lessons, content chunks, and search results.
package course

import "fmt"

// Course represents a single course with its ordered lessons.
// The title is the globally unique identifier; courses are created once
// during ingestion and immutable afterwards unless re-ingested.
type Course struct {
	Title      string   `json:"title"`
	Link       string   `json:"link,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Lessons    []Lesson `json:"lessons"`
}

// Lesson is a numbered unit within a course. The number is unique
// within its owning course.
type Lesson struct {
	Number int    `json:"lesson_number"`
	Title  string `json:"lesson_title"`
	Link   string `json:"lesson_link,omitempty"`
}

// Chunk is a bounded span of course text plus its attribution, the unit
// indexed for content search. Identified by (CourseTitle, Index); the
// index is strictly increasing from zero within a course.
//
// LessonNumber is nil for content that precedes the first lesson marker.
type Chunk struct {
	Content      string `json:"content"`
	CourseTitle  string `json:"course_title"`
	LessonNumber *int   `json:"lesson_number,omitempty"`
	Index        int    `json:"chunk_index"`
}

// Hit is one ranked result from a content search.
type Hit struct {
	Content      string
	CourseTitle  string
	LessonNumber *int
	Distance     float64
}

// SearchResults is the outcome contract every retrieval call honors:
// an ordered sequence of hits plus an optional data-carried error.
// A failed or empty query never panics and never surfaces a Go error to
// the tool layer; failure is represented as data.
type SearchResults struct {
	Hits []Hit

	// Err is a human-readable error message, empty on success.
	// It is surfaced to the model as explanatory text, not as a fault.
	Err string
}

// IsEmpty reports whether the search produced no hits and no error.
func (r SearchResults) IsEmpty() bool {
	return len(r.Hits) == 0 && r.Err == ""
}

// Failed reports whether the search carries an error.
func (r SearchResults) Failed() bool {
	return r.Err != ""
}

// ErrorResults builds a SearchResults carrying only an error message.
func ErrorResults(format string, args ...any) SearchResults {
	return SearchResults{Err: fmt.Sprintf(format, args...)}
}

// Outline is the full structure of a course as returned by the catalog:
// metadata plus the ordered lesson list.
type Outline struct {
	Title      string
	Link       string
	Instructor string
	Lessons    []Lesson
}
