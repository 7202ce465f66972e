package raw

import (
	"context"
	"sync"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/system"
)

// DockerInformer implements a way to get system-wide information regarding to docker.
type DockerInformer interface {
	Info(ctx context.Context) (system.Info, error)
}

// DockerInspector includes `Informer` and a method to inspect a specific container.
type DockerInspector interface {
	DockerInformer
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
}

// DockerClient defines the required methods to query docker.
type DockerClient interface {
	DockerInspector
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
}

// CachedInfoDockerClient Wraps a DockerClient indefinitely caching Info method first call.
type CachedInfoDockerClient struct {
	DockerClient

	once         sync.Once
	infoResponse system.Info
	infoError    error
}

func (c *CachedInfoDockerClient) Info(ctx context.Context) (system.Info, error) {
	c.once.Do(func() {
		c.infoResponse, c.infoError = c.DockerClient.Info(ctx)
	})
	return c.infoResponse, c.infoError
}

// NewCachedInfoDockerClient returns a client wrapper using the provided one.
func NewCachedInfoDockerClient(c DockerClient) *CachedInfoDockerClient {
	return &CachedInfoDockerClient{DockerClient: c}
}
