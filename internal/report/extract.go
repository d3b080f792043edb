package report

import (
	"regexp"
	"strings"
)

const (
	// SuccessMarker is printed by the borg backup container once a run completes.
	SuccessMarker = "Backup finished successfully"

	// IncompletePlaceholder is the excerpt of a failed run whose log names no error.
	IncompletePlaceholder = "Backup may be incomplete or the log output is insufficient"

	archiveLabel = "This archive:"
	deletedLabel = "Deleted data:"
)

var (
	archiveNameRe = regexp.MustCompile(`Archive name: ([\w-]+)`)
	startTimeRe   = regexp.MustCompile(`Time \(start\): ([^\n]+)`)
	endTimeRe     = regexp.MustCompile(`Time \(end\): ([^\n]+)`)
	durationRe    = regexp.MustCompile(`Duration: ([^\n]+)`)
	sizeNumberRe  = regexp.MustCompile(`^\d+(\.\d+)?$`)
	sizeUnitRe    = regexp.MustCompile(`^[A-Za-z]+$`)
)

var errorKeywords = []string{"error", "fail", "exception"}

// Report is the outcome of one backup run as read from its log. On success
// only the metric fields are set; on failure only ErrorExcerpt is.
type Report struct {
	Succeeded        bool   `json:"succeeded"`
	ArchiveName      string `json:"archive_name,omitempty"`
	StartTime        string `json:"start_time,omitempty"`
	EndTime          string `json:"end_time,omitempty"`
	Duration         string `json:"duration,omitempty"`
	OriginalSize     string `json:"original_size,omitempty"`
	CompressedSize   string `json:"compressed_size,omitempty"`
	DeduplicatedSize string `json:"deduplicated_size,omitempty"`
	PrunedData       string `json:"pruned_data,omitempty"`
	ErrorExcerpt     string `json:"error_excerpt,omitempty"`
}

// Extract reads a Report out of raw container log text. It never fails:
// fields it cannot locate are left empty.
func Extract(logText string) Report {
	if !strings.Contains(logText, SuccessMarker) {
		return Report{ErrorExcerpt: errorExcerpt(logText)}
	}

	r := Report{
		Succeeded:   true,
		ArchiveName: firstGroup(archiveNameRe, logText),
		StartTime:   restOfLine(firstGroup(startTimeRe, logText)),
		EndTime:     restOfLine(firstGroup(endTimeRe, logText)),
		Duration:    restOfLine(firstGroup(durationRe, logText)),
		PrunedData:  prunedData(logText),
	}

	sizes := archiveSizes(logText)
	for i, dst := range []*string{&r.OriginalSize, &r.CompressedSize, &r.DeduplicatedSize} {
		if i < len(sizes) {
			*dst = sizes[i]
		}
	}
	return r
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

func restOfLine(s string) string {
	return strings.TrimSpace(s)
}

// labelledLine returns what follows label on the first line containing it.
func labelledLine(text, label string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if _, rest, ok := strings.Cut(line, label); ok {
			return rest, true
		}
	}
	return "", false
}

// archiveSizes reads the "This archive:" row of the borg statistics table as
// consecutive "<number> <unit>" pairs: original, compressed, deduplicated.
// Reading stops at the first malformed pair.
func archiveSizes(text string) []string {
	rest, ok := labelledLine(text, archiveLabel)
	if !ok {
		return nil
	}
	tokens := strings.Fields(rest)

	var sizes []string
	for i := 0; i+1 < len(tokens) && len(sizes) < 3; i += 2 {
		num, unit := tokens[i], tokens[i+1]
		if !sizeNumberRe.MatchString(num) || !sizeUnitRe.MatchString(unit) {
			break
		}
		sizes = append(sizes, num+" "+unit)
	}
	return sizes
}

// prunedData returns the "Deleted data:" line after skipping its first two
// whitespace-separated tokens.
func prunedData(text string) string {
	rest, ok := labelledLine(text, deletedLabel)
	if !ok {
		return ""
	}
	rest = strings.TrimLeft(rest, " \t")
	for skip := 0; skip < 2; skip++ {
		i := strings.IndexAny(rest, " \t")
		if i < 0 {
			return ""
		}
		rest = strings.TrimLeft(rest[i:], " \t")
	}
	return restOfLine(rest)
}

func errorExcerpt(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		lower := strings.ToLower(line)
		for _, kw := range errorKeywords {
			if strings.Contains(lower, kw) {
				lines = append(lines, line)
				break
			}
		}
	}
	if len(lines) == 0 {
		return IncompletePlaceholder
	}
	return strings.Join(lines, "\n")
}
