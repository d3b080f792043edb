package logsource

import (
	"context"
	"errors"
)

var (
	// ErrContainerNotFound means the runtime has no container by that name.
	ErrContainerNotFound = errors.New("container not found")
	// ErrLogsUnavailable means the container exists but its logs could not be read.
	ErrLogsUnavailable = errors.New("container logs unavailable")
)

// Source retrieves the full current log text of one backup container.
type Source interface {
	Fetch(ctx context.Context, name string) (string, error)
}

// Unavailable returns a Source whose every Fetch fails with err, for when
// the runtime client itself could not be created.
func Unavailable(err error) Source {
	return unavailable{err: err}
}

type unavailable struct {
	err error
}

func (u unavailable) Fetch(context.Context, string) (string, error) {
	return "", u.err
}
