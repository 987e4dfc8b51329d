package helm

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"helm.sh/helm/v3/pkg/release"

	"github.com/helmdeck/helmdeck/pkg/overrides"
)

// FakeClient is an in-memory Client for tests and for running the API
// without a cluster.
type FakeClient struct {
	mu       sync.Mutex
	Releases []*release.Release
	Values   map[string]map[string]interface{} // keyed by namespace/name
	Schemas  map[string][]byte                 // keyed by chartRef

	// Upgrades records every upgrade call in order.
	Upgrades []FakeUpgrade

	// UpgradeErr, when set, fails the next Upgrade call.
	UpgradeErr error
}

type FakeUpgrade struct {
	Namespace   string
	Name        string
	ChartRef    string
	Version     string
	Assignments []overrides.Assignment
	Values      map[string]interface{}
}

var _ Client = (*FakeClient)(nil)

func NewFakeClient() *FakeClient {
	return &FakeClient{
		Values:  map[string]map[string]interface{}{},
		Schemas: map[string][]byte{},
	}
}

func releaseKey(namespace, name string) string {
	return fmt.Sprintf("%s/%s", namespace, name)
}

func (f *FakeClient) ListReleases(ctx context.Context, allNamespaces bool) ([]*release.Release, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*release.Release(nil), f.Releases...), nil
}

func (f *FakeClient) GetRelease(namespace, name string) (*release.Release, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.Releases {
		if r.Namespace == namespace && r.Name == name {
			return r, nil
		}
	}
	return nil, errors.Errorf("release %s not found", releaseKey(namespace, name))
}

func (f *FakeClient) GetValues(namespace, name string) (map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.Values[releaseKey(namespace, name)]; ok {
		return v, nil
	}
	return map[string]interface{}{}, nil
}

func (f *FakeClient) GetHistory(namespace, name string) ([]*release.Release, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var history []*release.Release
	for _, r := range f.Releases {
		if r.Namespace == namespace && r.Name == name {
			history = append(history, r)
		}
	}
	return history, nil
}

func (f *FakeClient) Rollback(namespace, name string, revision int) error {
	return nil
}

func (f *FakeClient) Upgrade(ctx context.Context, namespace, name, chartRef, version string, assignments []overrides.Assignment) (*release.Release, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.UpgradeErr != nil {
		err := f.UpgradeErr
		f.UpgradeErr = nil
		return nil, err
	}

	values, err := overrides.BuildValues(assignments)
	if err != nil {
		return nil, err
	}

	f.Upgrades = append(f.Upgrades, FakeUpgrade{
		Namespace:   namespace,
		Name:        name,
		ChartRef:    chartRef,
		Version:     version,
		Assignments: assignments,
		Values:      values,
	})

	rel := &release.Release{
		Name:      name,
		Namespace: namespace,
		Version:   len(f.Upgrades),
	}
	return rel, nil
}

func (f *FakeClient) GetChartSchema(chartRef, version string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Schemas[chartRef], nil
}
