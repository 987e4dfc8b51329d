package helm

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/release"

	"github.com/helmdeck/helmdeck/pkg/k8sutil"
	"github.com/helmdeck/helmdeck/pkg/logger"
	"github.com/helmdeck/helmdeck/pkg/overrides"
)

type helmClient struct {
	driver   string
	settings *cli.EnvSettings

	mu      sync.Mutex
	configs map[string]*action.Configuration
}

// NewClient builds the real helm collaborator. driver selects helm's
// release storage backend (empty means secrets, same as the helm CLI).
func NewClient(driver string) Client {
	return &helmClient{
		driver:   driver,
		settings: cli.New(),
		configs:  map[string]*action.Configuration{},
	}
}

// configFor returns an action configuration scoped to the given namespace,
// initializing and caching one per namespace.
func (c *helmClient) configFor(namespace string) (*action.Configuration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cfg, ok := c.configs[namespace]; ok {
		return cfg, nil
	}

	cfg := new(action.Configuration)
	getter := k8sutil.HelmRESTClientGetter()
	if err := cfg.Init(getter, namespace, c.driver, logger.Debugf); err != nil {
		return nil, errors.Wrap(err, "failed to init helm action config")
	}

	c.configs[namespace] = cfg
	return cfg, nil
}

func (c *helmClient) ListReleases(ctx context.Context, allNamespaces bool) ([]*release.Release, error) {
	namespace := c.settings.Namespace()
	if allNamespaces {
		namespace = ""
	}

	cfg, err := c.configFor(namespace)
	if err != nil {
		return nil, err
	}

	list := action.NewList(cfg)
	list.AllNamespaces = allNamespaces
	list.All = true
	list.SetStateMask()

	releases, err := list.Run()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list releases")
	}
	return releases, nil
}

func (c *helmClient) GetRelease(namespace, name string) (*release.Release, error) {
	cfg, err := c.configFor(namespace)
	if err != nil {
		return nil, err
	}

	rel, err := action.NewGet(cfg).Run(name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get release")
	}
	return rel, nil
}

func (c *helmClient) GetValues(namespace, name string) (map[string]interface{}, error) {
	cfg, err := c.configFor(namespace)
	if err != nil {
		return nil, err
	}

	get := action.NewGetValues(cfg)
	get.AllValues = true

	values, err := get.Run(name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get release values")
	}
	if values == nil {
		values = map[string]interface{}{}
	}
	return values, nil
}

func (c *helmClient) GetHistory(namespace, name string) ([]*release.Release, error) {
	cfg, err := c.configFor(namespace)
	if err != nil {
		return nil, err
	}

	releases, err := action.NewHistory(cfg).Run(name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get release history")
	}
	return releases, nil
}

func (c *helmClient) Rollback(namespace, name string, revision int) error {
	cfg, err := c.configFor(namespace)
	if err != nil {
		return err
	}

	rollback := action.NewRollback(cfg)
	rollback.Version = revision

	if err := rollback.Run(name); err != nil {
		return errors.Wrapf(err, "failed to rollback release to revision %d", revision)
	}
	return nil
}

func (c *helmClient) Upgrade(ctx context.Context, namespace, name, chartRef, version string, assignments []overrides.Assignment) (*release.Release, error) {
	cfg, err := c.configFor(namespace)
	if err != nil {
		return nil, err
	}

	upgrade := action.NewUpgrade(cfg)
	upgrade.Namespace = namespace
	upgrade.ChartPathOptions.Version = version

	chartPath, err := upgrade.ChartPathOptions.LocateChart(chartRef, c.settings)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to locate chart %s", chartRef)
	}

	ch, err := loader.Load(chartPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load chart %s", chartPath)
	}

	values, err := overrides.BuildValues(assignments)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build values from overrides")
	}

	logger.Infof("upgrading release %s/%s with chart %s", namespace, name, FormatChartname(ch))

	rel, err := upgrade.RunWithContext(ctx, name, ch, values)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upgrade release")
	}
	return rel, nil
}
