package apiserver

import (
	"github.com/pkg/errors"

	"github.com/helmdeck/helmdeck/pkg/helm"
	"github.com/helmdeck/helmdeck/pkg/k8sutil"
	"github.com/helmdeck/helmdeck/pkg/logger"
	"github.com/helmdeck/helmdeck/pkg/schemacache"
	"github.com/helmdeck/helmdeck/pkg/store"
	"github.com/helmdeck/helmdeck/pkg/sweeper"
)

func bootstrap(params APIServerParams) error {
	cfg := params.Config

	store.InitInMemory(store.InitInMemoryStoreOptions{
		Namespace:     cfg.Namespace,
		AllNamespaces: cfg.AllNamespaces,
	})

	// fail fast when the cluster is unreachable; backoff retries us
	clientset, err := k8sutil.GetClientset()
	if err != nil {
		return errors.Wrap(err, "failed to get clientset")
	}
	k8sVersion, err := k8sutil.GetK8sVersion(clientset)
	if err != nil {
		return errors.Wrap(err, "failed to get kubernetes version")
	}
	logger.Infof("connected to kubernetes %s", k8sVersion)

	helm.SetClient(helm.NewClient(cfg.HelmDriver))

	cache, err := schemacache.Open(cfg.GetSchemaCachePath())
	if err != nil {
		return errors.Wrap(err, "failed to open schema cache")
	}
	schemacache.SetCache(cache)

	sessionTTL, err := cfg.SessionTTLDuration()
	if err != nil {
		return err
	}
	schemaCacheMaxAge, err := cfg.SchemaCacheMaxAgeDuration()
	if err != nil {
		return err
	}
	if err := sweeper.Start(sessionTTL, schemaCacheMaxAge); err != nil {
		return errors.Wrap(err, "failed to start sweeper")
	}

	return nil
}
