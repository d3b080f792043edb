package notifier

import (
	"context"
	"errors"

	"github.com/kebairia/backupwatch/internal/report"
)

// ErrDeliveryFailed is returned when the service did not accept a message.
var ErrDeliveryFailed = errors.New("notification delivery failed")

// Notifier delivers one rendered message. Implementations make a single
// attempt and do not retry.
type Notifier interface {
	Name() string
	// Format is the body markup the service expects.
	Format() report.Format
	Notify(ctx context.Context, msg report.Message) error
}
