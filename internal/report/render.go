package report

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
	"unicode/utf8"
)

// Format names the markup a Message body is written in.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// CheckTimeLayout is how the check time is printed in message bodies.
const CheckTimeLayout = "2006-01-02 15:04:05"

// unknownCauses are listed when no log could be read at all.
var unknownCauses = []string{
	"The backup container is not running",
	"The container name is misconfigured",
	"Insufficient permissions to read the container logs",
}

// Message is a rendered notification.
type Message struct {
	Title  string
	Body   string
	Format Format
}

// RenderOptions configures a Renderer.
type RenderOptions struct {
	// Label names the backed-up system in titles, e.g. "Nextcloud".
	Label  string
	Format Format
	// MaxLogBytes caps the raw log shown in failure bodies; 0 means no cap.
	MaxLogBytes int
	// Now returns the check time; defaults to time.Now.
	Now func() time.Time
}

type executor interface {
	Execute(w *bytes.Buffer, data any) error
}

// htmlExec and textExec adapt the two template packages to one interface.
type htmlExec struct{ t *htmltemplate.Template }
type textExec struct{ t *texttemplate.Template }

func (e htmlExec) Execute(w *bytes.Buffer, data any) error { return e.t.Execute(w, data) }
func (e textExec) Execute(w *bytes.Buffer, data any) error { return e.t.Execute(w, data) }

type templateSet struct {
	success, failure, unknown executor
}

var templateSets = map[Format]templateSet{
	FormatHTML: {
		success: htmlExec{htmltemplate.Must(htmltemplate.New("success").Parse(htmlSuccess))},
		failure: htmlExec{htmltemplate.Must(htmltemplate.New("failure").Parse(htmlFailure))},
		unknown: htmlExec{htmltemplate.Must(htmltemplate.New("unknown").Parse(htmlUnknown))},
	},
	FormatMarkdown: {
		success: textExec{texttemplate.Must(texttemplate.New("success").Parse(textSuccess))},
		failure: textExec{texttemplate.Must(texttemplate.New("failure").Parse(textFailure))},
		unknown: textExec{texttemplate.Must(texttemplate.New("unknown").Parse(textUnknown))},
	},
}

// Renderer turns Reports into notification Messages.
type Renderer struct {
	opts RenderOptions
	set  templateSet
}

// NewRenderer validates opts and fills in defaults.
func NewRenderer(opts RenderOptions) (*Renderer, error) {
	if opts.Format == "" {
		opts.Format = FormatHTML
	}
	set, ok := templateSets[opts.Format]
	if !ok {
		return nil, fmt.Errorf("unsupported message format %q", opts.Format)
	}
	if opts.Label == "" {
		opts.Label = "Nextcloud"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Renderer{opts: opts, set: set}, nil
}

type view struct {
	Label     string
	CheckedAt string
	Report    Report
	RawLog    string
	Causes    []string
}

func (r *Renderer) view() view {
	return view{
		Label:     r.opts.Label,
		CheckedAt: r.opts.Now().Format(CheckTimeLayout),
		Causes:    unknownCauses,
	}
}

// Render produces the success or failure message for rep. rawLog is shown
// only in failure bodies, truncated to the configured size.
func (r *Renderer) Render(rep Report, rawLog string) (Message, error) {
	v := r.view()
	v.Report = rep
	if r.opts.Format == FormatMarkdown {
		v.Report = escapeReport(rep)
	}

	if rep.Succeeded {
		return r.execute(r.set.success, r.SuccessTitle(), v)
	}
	v.RawLog = Tail(rawLog, r.opts.MaxLogBytes)
	if r.opts.Format == FormatMarkdown {
		v.RawLog = escapeMarkdown(v.RawLog)
	}
	return r.execute(r.set.failure, r.FailureTitle(), v)
}

// RenderUnknown produces the message sent when no log could be obtained.
func (r *Renderer) RenderUnknown() (Message, error) {
	return r.execute(r.set.unknown, r.UnknownTitle(), r.view())
}

func (r *Renderer) SuccessTitle() string { return "✅ " + r.opts.Label + " backup succeeded" }
func (r *Renderer) FailureTitle() string { return "❌ " + r.opts.Label + " backup failed" }
func (r *Renderer) UnknownTitle() string { return "⚠️ " + r.opts.Label + " backup status unknown" }

func (r *Renderer) execute(t executor, title string, v view) (Message, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, v); err != nil {
		return Message{}, fmt.Errorf("render %q: %w", title, err)
	}
	return Message{Title: title, Body: buf.String(), Format: r.opts.Format}, nil
}

// Tail keeps roughly the last limit bytes of text, starting on a line
// boundary, and prefixes a marker when anything was dropped.
func Tail(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	cut := len(text) - limit
	for cut < len(text) && !utf8.RuneStart(text[cut]) {
		cut++
	}
	if i := strings.IndexByte(text[cut:], '\n'); i >= 0 && cut+i+1 < len(text) {
		cut += i + 1
	}
	return fmt.Sprintf("[... %d bytes omitted ...]\n%s", cut, text[cut:])
}

// Backticks become U+02CB so log text cannot close a code block.
var markdownEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "`", "\u02cb")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func escapeReport(r Report) Report {
	r.ArchiveName = escapeMarkdown(r.ArchiveName)
	r.StartTime = escapeMarkdown(r.StartTime)
	r.EndTime = escapeMarkdown(r.EndTime)
	r.Duration = escapeMarkdown(r.Duration)
	r.OriginalSize = escapeMarkdown(r.OriginalSize)
	r.CompressedSize = escapeMarkdown(r.CompressedSize)
	r.DeduplicatedSize = escapeMarkdown(r.DeduplicatedSize)
	r.PrunedData = escapeMarkdown(r.PrunedData)
	r.ErrorExcerpt = escapeMarkdown(r.ErrorExcerpt)
	return r
}
