// Package docproc turns raw course documents into a Course structure
// and an ordered sequence of indexed content chunks.
//
// A course document carries an embedded metadata header followed by the
// body:
//
//	Course Title: Building Toward Computer Use
//	Course Link: https://example.com/course
//	Course Instructor: Colt Steele
//
//	Lesson 0: Introduction
//	Lesson Link: https://example.com/lesson/0
//	<lesson content...>
//
// Header parsing is tolerant: a missing field degrades to an empty
// value (or the filename for the title) rather than failing ingestion.
package docproc

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// lessonBody is the raw text of one lesson prior to chunking.
// A nil number marks content that precedes the first lesson marker.
type lessonBody struct {
	number *int
	title  string
	link   string
	text   string
}

// parsedDocument is the result of header and lesson-marker parsing.
type parsedDocument struct {
	title      string
	link       string
	instructor string
	bodies     []lessonBody
}

var (
	courseTitleRe      = regexp.MustCompile(`(?i)^Course Title:\s*(.+)$`)
	courseLinkRe       = regexp.MustCompile(`(?i)^Course Link:\s*(.+)$`)
	courseInstructorRe = regexp.MustCompile(`(?i)^Course Instructor:\s*(.+)$`)
	lessonMarkerRe     = regexp.MustCompile(`(?i)^Lesson\s+(\d+):\s*(.*)$`)
	lessonLinkRe       = regexp.MustCompile(`(?i)^Lesson Link:\s*(.+)$`)
)

// parseDocument reads a course document and extracts metadata plus the
// per-lesson bodies. fallbackTitle is used when the header carries no
// course title (typically the source filename).
func parseDocument(r io.Reader, fallbackTitle string) (*parsedDocument, error) {
	doc := &parsedDocument{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	current := lessonBody{} // preamble before the first lesson marker
	var textLines []string
	inHeader := true

	flush := func() {
		current.text = strings.TrimSpace(strings.Join(textLines, "\n"))
		if current.text != "" || current.number != nil {
			doc.bodies = append(doc.bodies, current)
		}
		textLines = textLines[:0]
	}

	for scanner.Scan() {
		line := scanner.Text()

		if inHeader {
			switch {
			case courseTitleRe.MatchString(line):
				doc.title = strings.TrimSpace(courseTitleRe.FindStringSubmatch(line)[1])
				continue
			case courseLinkRe.MatchString(line):
				doc.link = strings.TrimSpace(courseLinkRe.FindStringSubmatch(line)[1])
				continue
			case courseInstructorRe.MatchString(line):
				doc.instructor = strings.TrimSpace(courseInstructorRe.FindStringSubmatch(line)[1])
				continue
			case strings.TrimSpace(line) == "":
				continue
			}
			// First non-header line ends the header.
			inHeader = false
		}

		if m := lessonMarkerRe.FindStringSubmatch(line); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				// Tolerant parsing: treat an unparseable marker as body text.
				textLines = append(textLines, line)
				continue
			}
			flush()
			current = lessonBody{number: &n, title: strings.TrimSpace(m[2])}
			continue
		}

		if m := lessonLinkRe.FindStringSubmatch(line); m != nil && current.number != nil && current.link == "" {
			current.link = strings.TrimSpace(m[1])
			continue
		}

		textLines = append(textLines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading course document: %w", err)
	}
	flush()

	if doc.title == "" {
		doc.title = fallbackTitle
	}

	return doc, nil
}
