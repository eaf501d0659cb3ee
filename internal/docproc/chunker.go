package docproc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/coursepilot/coursepilot/internal/course"
)

var (
	// ErrInvalidChunkSize indicates a non-positive chunk size.
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrInvalidOverlap indicates an overlap that is negative or not
	// smaller than the chunk size.
	ErrInvalidOverlap = errors.New("invalid chunk overlap")

	// ErrEmptyDocument indicates a document with no usable content.
	ErrEmptyDocument = errors.New("empty course document")
)

// Chunker splits raw course documents into overlapping content chunks
// with course and lesson metadata attached.
//
// Chunker is safe for concurrent use; all state is immutable after
// construction.
type Chunker struct {
	size    int
	overlap int
	logger  *slog.Logger
}

// NewChunker creates a Chunker with the given target chunk size and
// overlap, both in characters. Configuration is validated here,
// fail-fast, rather than at processing time.
func NewChunker(size, overlap int, logger *slog.Logger) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: must be positive, got %d", ErrInvalidChunkSize, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: must be in [0, %d), got %d", ErrInvalidOverlap, size, overlap)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chunker{size: size, overlap: overlap, logger: logger}, nil
}

// Process parses one course document and produces the Course structure
// plus its ordered chunks. Chunk indices are contiguous and start at
// zero per course; each chunk inherits the course title and, where
// known, the owning lesson number.
//
// filename seeds the course title when the header omits it.
func (c *Chunker) Process(r io.Reader, filename string) (*course.Course, []course.Chunk, error) {
	fallback := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	doc, err := parseDocument(r, fallback)
	if err != nil {
		return nil, nil, err
	}
	if len(doc.bodies) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrEmptyDocument, filename)
	}

	crs := &course.Course{
		Title:      doc.title,
		Link:       doc.link,
		Instructor: doc.instructor,
	}

	var chunks []course.Chunk
	index := 0
	for _, body := range doc.bodies {
		if body.number != nil {
			crs.Lessons = append(crs.Lessons, course.Lesson{
				Number: *body.number,
				Title:  body.title,
				Link:   body.link,
			})
		}

		for _, content := range chunkText(body.text, c.size, c.overlap) {
			chunks = append(chunks, course.Chunk{
				Content:      content,
				CourseTitle:  crs.Title,
				LessonNumber: body.number,
				Index:        index,
			})
			index++
		}
	}

	c.logger.Debug("processed course document",
		"course", crs.Title,
		"lessons", len(crs.Lessons),
		"chunks", len(chunks))

	return crs, chunks, nil
}
