package console

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/kebairia/backupwatch/internal/notifier"
	"github.com/kebairia/backupwatch/internal/report"
)

const Driver = "console"

var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("213"))

// Notifier prints messages instead of sending them. It renders in the
// format of the driver it stands in for, so a dry run shows the real body.
type Notifier struct {
	out    io.Writer
	format report.Format
}

var _ notifier.Notifier = (*Notifier)(nil)

func New(out io.Writer, format report.Format) *Notifier {
	return &Notifier{out: out, format: format}
}

func (n *Notifier) Name() string { return Driver }

func (n *Notifier) Format() report.Format { return n.format }

func (n *Notifier) Notify(_ context.Context, msg report.Message) error {
	if _, err := fmt.Fprintf(n.out, "%s\n\n%s\n", titleStyle.Render(msg.Title), msg.Body); err != nil {
		return fmt.Errorf("%w: %v", notifier.ErrDeliveryFailed, err)
	}
	return nil
}
