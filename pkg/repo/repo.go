package repo

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/helmpath"
	helmrepo "helm.sh/helm/v3/pkg/repo"
)

// Entry is one locally configured helm repository.
type Entry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ListRepos returns the repositories configured in helm's local repo file.
// A missing repo file means no repositories, not an error.
func ListRepos(settings *cli.EnvSettings) ([]Entry, error) {
	f, err := helmrepo.LoadFile(settings.RepositoryConfig)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to load repository config")
	}

	entries := make([]Entry, 0, len(f.Repositories))
	for _, r := range f.Repositories {
		entries = append(entries, Entry{Name: r.Name, URL: r.URL})
	}
	return entries, nil
}

// HasRepo reports whether the named repository is configured locally.
func HasRepo(settings *cli.EnvSettings, name string) (bool, error) {
	entries, err := ListRepos(settings)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// ResolveVersion resolves a chart version against the repository's cached
// index; an empty version resolves to the latest.
func ResolveVersion(settings *cli.EnvSettings, repoName, chartName, version string) (string, error) {
	indexPath := filepath.Join(settings.RepositoryCache, helmpath.CacheIndexFile(repoName))

	index, err := helmrepo.LoadIndexFile(indexPath)
	if err != nil {
		return "", errors.Wrapf(err, "failed to load index for repo %s", repoName)
	}

	cv, err := index.Get(chartName, version)
	if err != nil {
		return "", errors.Wrapf(err, "chart %s not found in repo %s", chartName, repoName)
	}
	return cv.Version, nil
}
