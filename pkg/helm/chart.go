package helm

import (
	"fmt"

	"github.com/pkg/errors"
	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
)

// GetChartSchema downloads the chart and returns its values.schema.json
// bytes. A chart without a declared schema returns nil; callers fall back
// to inferring a shape from the release's current values.
func (c *helmClient) GetChartSchema(chartRef, version string) ([]byte, error) {
	pathOptions := action.ChartPathOptions{Version: version}

	chartPath, err := pathOptions.LocateChart(chartRef, c.settings)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to locate chart %s", chartRef)
	}

	ch, err := loader.Load(chartPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load chart %s", chartPath)
	}

	return ch.Schema, nil
}

func FormatChartname(c *chart.Chart) string {
	if c == nil || c.Metadata == nil {
		return "MISSING"
	}
	return fmt.Sprintf("%s-%s", c.Name(), c.Metadata.Version)
}

func FormatAppVersion(c *chart.Chart) string {
	if c == nil || c.Metadata == nil {
		return "MISSING"
	}
	return c.AppVersion()
}
