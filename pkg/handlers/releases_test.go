package handlers

import (
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	helmchart "helm.sh/helm/v3/pkg/chart"
	helmrelease "helm.sh/helm/v3/pkg/release"

	"github.com/helmdeck/helmdeck/pkg/helm"
	"github.com/helmdeck/helmdeck/pkg/store"
)

func releaseRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/releases", ListReleases).Methods("GET")
	r.HandleFunc("/api/v1/releases/{namespace}/{name}", GetRelease).Methods("GET")
	r.HandleFunc("/api/v1/releases/{namespace}/{name}/values", GetReleaseValues).Methods("GET")
	r.HandleFunc("/api/v1/releases/{namespace}/{name}/history", GetReleaseHistory).Methods("GET")
	r.HandleFunc("/api/v1/releases/{namespace}/{name}/rollback", RollbackRelease).Methods("POST")
	return r
}

func testRelease(namespace, name string, revision int) *helmrelease.Release {
	return &helmrelease.Release{
		Name:      name,
		Namespace: namespace,
		Version:   revision,
		Chart: &helmchart.Chart{
			Metadata: &helmchart.Metadata{
				Name:       "nginx",
				Version:    "15.0.0",
				AppVersion: "1.25.2",
			},
		},
	}
}

func Test_ListReleases(t *testing.T) {
	store.InitInMemory(store.InitInMemoryStoreOptions{Namespace: "default"})
	fake := helm.NewFakeClient()
	fake.Releases = []*helmrelease.Release{
		testRelease("default", "web", 3),
		testRelease("apps", "worker", 1),
	}
	helm.SetClient(fake)

	router := releaseRouter()

	var resp ListReleasesResponse
	rec := doJSON(t, router, "GET", "/api/v1/releases", nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Releases, 2)
	require.Equal(t, "web", resp.Releases[0].Name)
	require.Equal(t, 3, resp.Releases[0].Revision)
	require.Equal(t, "nginx-15.0.0", resp.Releases[0].Chart)
	require.Equal(t, "1.25.2", resp.Releases[0].AppVersion)
}

func Test_GetRelease(t *testing.T) {
	store.InitInMemory(store.InitInMemoryStoreOptions{Namespace: "default"})
	fake := helm.NewFakeClient()
	fake.Releases = []*helmrelease.Release{testRelease("default", "web", 2)}
	helm.SetClient(fake)

	router := releaseRouter()

	var info ReleaseInfo
	rec := doJSON(t, router, "GET", "/api/v1/releases/default/web", nil, &info)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "web", info.Name)
	require.Equal(t, 2, info.Revision)

	rec = doJSON(t, router, "GET", "/api/v1/releases/default/missing", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_GetReleaseValues(t *testing.T) {
	store.InitInMemory(store.InitInMemoryStoreOptions{Namespace: "default"})
	fake := helm.NewFakeClient()
	fake.Values["default/web"] = map[string]interface{}{"replicas": float64(2)}
	helm.SetClient(fake)

	router := releaseRouter()

	var values map[string]interface{}
	rec := doJSON(t, router, "GET", "/api/v1/releases/default/web/values", nil, &values)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(2), values["replicas"])
}

func Test_GetReleaseHistory(t *testing.T) {
	store.InitInMemory(store.InitInMemoryStoreOptions{Namespace: "default"})
	fake := helm.NewFakeClient()
	fake.Releases = []*helmrelease.Release{
		testRelease("default", "web", 1),
		testRelease("default", "web", 2),
	}
	helm.SetClient(fake)

	router := releaseRouter()

	var resp GetReleaseHistoryResponse
	rec := doJSON(t, router, "GET", "/api/v1/releases/default/web/history", nil, &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Revisions, 2)
}

func Test_RollbackRelease(t *testing.T) {
	store.InitInMemory(store.InitInMemoryStoreOptions{Namespace: "default"})
	fake := helm.NewFakeClient()
	fake.Releases = []*helmrelease.Release{testRelease("default", "web", 2)}
	helm.SetClient(fake)

	router := releaseRouter()

	rec := doJSON(t, router, "POST", "/api/v1/releases/default/web/rollback", RollbackReleaseRequest{Revision: 1}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// zero and negative revisions are rejected
	rec = doJSON(t, router, "POST", "/api/v1/releases/default/web/rollback", RollbackReleaseRequest{Revision: 0}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
