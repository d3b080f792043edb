package logsource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/kebairia/backupwatch/internal/logger"
)

const DefaultTimeout = 30 * time.Second

// dockerAPI is the slice of the Docker client the source needs.
type dockerAPI interface {
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	Close() error
}

// DockerOption lets you override default settings on a Docker source.
type DockerOption func(*Docker)

// Docker reads container logs from the local container runtime.
type Docker struct {
	cli     dockerAPI
	timeout time.Duration
	log     logger.Logger
}

var _ Source = (*Docker)(nil)

// WithTimeout bounds each Fetch.
func WithTimeout(d time.Duration) DockerOption {
	return func(s *Docker) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l logger.Logger) DockerOption {
	return func(s *Docker) {
		if l != nil {
			s.log = l
		}
	}
}

// NewDocker connects to the runtime named by DOCKER_HOST (or the default
// socket), negotiating the API version.
func NewDocker(opts ...DockerOption) (*Docker, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create container runtime client: %w", err)
	}
	return newDocker(cli, opts...), nil
}

func newDocker(cli dockerAPI, opts ...DockerOption) *Docker {
	d := &Docker{
		cli:     cli,
		timeout: DefaultTimeout,
		log:     logger.Global(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Fetch returns stdout and stderr of the named container as one string.
func (d *Docker) Fetch(ctx context.Context, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	inspect, err := d.cli.ContainerInspect(ctx, name)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return "", fmt.Errorf("%w: %s", ErrContainerNotFound, name)
		}
		return "", fmt.Errorf("%w: inspect %s: %v", ErrLogsUnavailable, name, err)
	}

	rc, err := d.cli.ContainerLogs(ctx, inspect.ID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrLogsUnavailable, name, err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	// TTY containers stream raw bytes; all others use the multiplexed format.
	if inspect.Config != nil && inspect.Config.Tty {
		_, err = io.Copy(&buf, rc)
	} else {
		_, err = stdcopy.StdCopy(&buf, &buf, rc)
	}
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrLogsUnavailable, name, err)
	}

	d.log.Debug("container logs fetched",
		"container", name,
		"id", inspect.ID,
		"bytes", buf.Len(),
	)
	return buf.String(), nil
}

func (d *Docker) Close() error {
	return d.cli.Close()
}
