package docproc

import (
	"errors"
	"strings"
	"testing"

	"github.com/coursepilot/coursepilot/internal/log"
)

const sampleDocument = `Course Title: Building Toward Computer Use
Course Link: https://example.com/course
Course Instructor: Colt Steele

Lesson 0: Introduction
Lesson Link: https://example.com/lesson/0
Welcome to the course. This lesson introduces the main ideas. We cover tools and agents.

Lesson 1: Prompting Basics
Lesson Link: https://example.com/lesson/1
Prompting is the art of asking well. Good prompts are specific. Iteration improves results over time.
`

func TestNewChunkerValidation(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr error
	}{
		{name: "valid", size: 800, overlap: 100},
		{name: "zero overlap", size: 800, overlap: 0},
		{name: "zero size", size: 0, overlap: 0, wantErr: ErrInvalidChunkSize},
		{name: "negative size", size: -1, overlap: 0, wantErr: ErrInvalidChunkSize},
		{name: "negative overlap", size: 800, overlap: -1, wantErr: ErrInvalidOverlap},
		{name: "overlap equals size", size: 100, overlap: 100, wantErr: ErrInvalidOverlap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChunker(tt.size, tt.overlap, log.NewNop())
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("NewChunker(%d, %d) = %v, want nil", tt.size, tt.overlap, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewChunker(%d, %d) = %v, want %v", tt.size, tt.overlap, err, tt.wantErr)
			}
		})
	}
}

func TestProcessMetadata(t *testing.T) {
	chunker, err := NewChunker(800, 100, log.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	crs, chunks, err := chunker.Process(strings.NewReader(sampleDocument), "course1_script.txt")
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	if crs.Title != "Building Toward Computer Use" {
		t.Errorf("Title = %q", crs.Title)
	}
	if crs.Link != "https://example.com/course" {
		t.Errorf("Link = %q", crs.Link)
	}
	if crs.Instructor != "Colt Steele" {
		t.Errorf("Instructor = %q", crs.Instructor)
	}

	if len(crs.Lessons) != 2 {
		t.Fatalf("got %d lessons, want 2", len(crs.Lessons))
	}
	if crs.Lessons[0].Number != 0 || crs.Lessons[0].Title != "Introduction" {
		t.Errorf("lesson 0 = %+v", crs.Lessons[0])
	}
	if crs.Lessons[1].Link != "https://example.com/lesson/1" {
		t.Errorf("lesson 1 link = %q", crs.Lessons[1].Link)
	}

	if len(chunks) == 0 {
		t.Fatal("no chunks produced")
	}
	for i, ch := range chunks {
		if ch.Index != i {
			t.Errorf("chunk %d has index %d, want contiguous from zero", i, ch.Index)
		}
		if ch.CourseTitle != crs.Title {
			t.Errorf("chunk %d course title = %q", i, ch.CourseTitle)
		}
		if ch.LessonNumber == nil {
			t.Errorf("chunk %d has nil lesson number", i)
		}
	}
}

func TestProcessMissingHeaderFields(t *testing.T) {
	chunker, err := NewChunker(800, 100, log.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	doc := "Lesson 1: Only Lesson\nSome content here. More content follows.\n"
	crs, chunks, err := chunker.Process(strings.NewReader(doc), "mystery_course.txt")
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	// Missing header degrades to the filename, never fails ingestion.
	if crs.Title != "mystery_course" {
		t.Errorf("Title = %q, want filename fallback", crs.Title)
	}
	if crs.Instructor != "" || crs.Link != "" {
		t.Errorf("missing fields should stay empty, got %+v", crs)
	}
	if len(chunks) == 0 {
		t.Error("expected chunks despite missing header")
	}
}

func TestProcessEmptyDocument(t *testing.T) {
	chunker, err := NewChunker(800, 100, log.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = chunker.Process(strings.NewReader("   \n\n  "), "empty.txt")
	if !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("Process() = %v, want %v", err, ErrEmptyDocument)
	}
}

func TestProcessPreambleHasNoLessonNumber(t *testing.T) {
	chunker, err := NewChunker(800, 100, log.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	doc := `Course Title: Preamble Course

This overview text belongs to no lesson. It still gets indexed.

Lesson 1: Start
Lesson content goes here. It has sentences.
`
	_, chunks, err := chunker.Process(strings.NewReader(doc), "preamble.txt")
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}
	if chunks[0].LessonNumber != nil {
		t.Errorf("preamble chunk lesson number = %v, want nil", *chunks[0].LessonNumber)
	}
	last := chunks[len(chunks)-1]
	if last.LessonNumber == nil || *last.LessonNumber != 1 {
		t.Errorf("lesson chunk number = %v, want 1", last.LessonNumber)
	}
}

func TestChunkTextOverlap(t *testing.T) {
	// Ten uniform sentences, sized so several chunks are produced.
	var b strings.Builder
	for i := 0; i < 10; i++ {
		b.WriteString("This sentence number ")
		b.WriteString(strings.Repeat("x", 20))
		b.WriteString(" fills space. ")
	}

	const size, overlap = 120, 50
	chunks := chunkText(b.String(), size, overlap)
	if len(chunks) < 3 {
		t.Fatalf("got %d chunks, want at least 3", len(chunks))
	}

	for i, ch := range chunks {
		if len(ch) > size+1 {
			t.Errorf("chunk %d length %d exceeds size %d", i, len(ch), size)
		}
		if i == 0 {
			continue
		}
		// The head of each chunk repeats the tail of the previous one,
		// rounded to sentence boundaries.
		firstSentence := splitSentences(ch)[0]
		if !strings.HasSuffix(chunks[i-1], firstSentence) {
			t.Errorf("chunk %d head %q not carried from previous tail %q", i, firstSentence, chunks[i-1])
		}
	}
}

func TestChunkTextZeroOverlapDoesNotRepeat(t *testing.T) {
	text := "One short sentence here. Another short sentence there. A third one follows. And a fourth closes."
	chunks := chunkText(text, 60, 0)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}

	joined := strings.Join(chunks, " ")
	for _, s := range splitSentences(text) {
		if strings.Count(joined, s) != 1 {
			t.Errorf("sentence %q appears %d times, want exactly once", s, strings.Count(joined, s))
		}
	}
}

func TestChunkTextLongSentence(t *testing.T) {
	long := "This single sentence is far longer than the configured chunk size and must not be cut in half " + strings.Repeat("because it keeps going ", 10) + "until it finally ends."
	chunks := chunkText(long, 50, 10)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1 (whole sentence kept)", len(chunks))
	}
	if chunks[0] != strings.Join(strings.Fields(long), " ") {
		t.Error("long sentence was altered")
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "simple",
			in:   "First sentence. Second sentence! Third sentence?",
			want: []string{"First sentence.", "Second sentence!", "Third sentence?"},
		},
		{
			name: "collapses newlines",
			in:   "A sentence split\nacross lines. Another one.",
			want: []string{"A sentence split across lines.", "Another one."},
		},
		{
			name: "empty",
			in:   "  \n ",
			want: nil,
		},
		{
			name: "no terminator",
			in:   "trailing fragment without punctuation",
			want: []string{"trailing fragment without punctuation"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSentences(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("splitSentences() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
