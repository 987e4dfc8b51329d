package helm

import (
	"context"

	"helm.sh/helm/v3/pkg/release"

	"github.com/helmdeck/helmdeck/pkg/overrides"
)

// Client is the surface of the external helm collaborator. Everything the
// editor needs from helm goes through here so handlers can be tested
// against a fake.
type Client interface {
	ListReleases(ctx context.Context, allNamespaces bool) ([]*release.Release, error)
	GetRelease(namespace, name string) (*release.Release, error)
	GetValues(namespace, name string) (map[string]interface{}, error)
	GetHistory(namespace, name string) ([]*release.Release, error)
	Rollback(namespace, name string, revision int) error
	Upgrade(ctx context.Context, namespace, name, chartRef, version string, assignments []overrides.Assignment) (*release.Release, error)
	GetChartSchema(chartRef, version string) ([]byte, error)
}

var client Client

// SetClient installs the process-wide helm client. Bootstrap installs the
// real one; tests install a fake.
func SetClient(c Client) {
	client = c
}

func MustGetClient() Client {
	if client == nil {
		panic("helm client is not initialized")
	}
	return client
}
