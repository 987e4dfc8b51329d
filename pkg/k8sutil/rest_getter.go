package k8sutil

import (
	"net/http"
	"net/url"

	meta "k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/cli-runtime/pkg/genericclioptions"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// helmRESTGetter is the RESTClientGetter handed to helm's action
// configuration. It resolves the rest.Config through GetClusterConfig so
// helm calls get the same QPS/Burst settings as our own clientset, and it
// disables HTTP proxying: release storage reads go straight to the API
// server.
type helmRESTGetter struct {
	flags *genericclioptions.ConfigFlags
}

func HelmRESTClientGetter() genericclioptions.RESTClientGetter {
	return &helmRESTGetter{flags: KubernetesConfigFlags}
}

func (g *helmRESTGetter) ToRESTConfig() (*rest.Config, error) {
	cfg, err := GetClusterConfig()
	if err != nil {
		return nil, err
	}
	cfg.Proxy = func(*http.Request) (*url.URL, error) { return nil, nil }
	return cfg, nil
}

func (g *helmRESTGetter) ToDiscoveryClient() (discovery.CachedDiscoveryInterface, error) {
	return g.flags.ToDiscoveryClient()
}

func (g *helmRESTGetter) ToRESTMapper() (meta.RESTMapper, error) {
	return g.flags.ToRESTMapper()
}

func (g *helmRESTGetter) ToRawKubeConfigLoader() clientcmd.ClientConfig {
	return g.flags.ToRawKubeConfigLoader()
}
