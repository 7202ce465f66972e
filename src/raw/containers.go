package raw

import (
	"context"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/newrelic/infra-integrations-sdk/v3/log"
)

const shortContainerIDLength = 12

// ContainerRef identifies one running container.
type ContainerRef struct {
	ID   string
	Name string
	// CgroupParent is the parent set with --cgroup-parent, empty for the engine default.
	CgroupParent string
	// Pid of the container init process, 0 when unknown.
	Pid int
}

// DisplayID returns the short form of the container id.
func (c ContainerRef) DisplayID() string {
	if len(c.ID) > shortContainerIDLength {
		return c.ID[:shortContainerIDLength]
	}
	return c.ID
}

// ContainerLister returns the containers currently running on the host.
type ContainerLister interface {
	List(ctx context.Context) ([]ContainerRef, error)
}

// DockerLister lists running containers through the docker engine API.
type DockerLister struct {
	docker DockerClient
}

func NewDockerLister(docker DockerClient) *DockerLister {
	return &DockerLister{docker: docker}
}

// List returns running containers in engine order. Each container is inspected to learn its
// cgroup parent and init pid, and an inspect failure keeps the container without them.
func (l *DockerLister) List(ctx context.Context) ([]ContainerRef, error) {
	containers, err := l.docker.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, err
	}

	refs := make([]ContainerRef, 0, len(containers))
	for _, c := range containers {
		ref := ContainerRef{ID: c.ID, Name: containerName(c.Names)}

		inspect, err := l.docker.ContainerInspect(ctx, c.ID)
		if err != nil {
			log.Warn("inspecting container %s: %v", ref.DisplayID(), err)
			refs = append(refs, ref)
			continue
		}
		if inspect.ContainerJSONBase != nil {
			if ref.Name == "" {
				ref.Name = strings.TrimPrefix(inspect.Name, "/")
			}
			if inspect.HostConfig != nil {
				ref.CgroupParent = inspect.HostConfig.CgroupParent
			}
			if inspect.State != nil {
				ref.Pid = inspect.State.Pid
			}
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func containerName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.TrimPrefix(names[0], "/")
}
