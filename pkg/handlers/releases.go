package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	helmrelease "helm.sh/helm/v3/pkg/release"

	"github.com/helmdeck/helmdeck/pkg/helm"
	"github.com/helmdeck/helmdeck/pkg/logger"
	"github.com/helmdeck/helmdeck/pkg/store"
)

type ReleaseInfo struct {
	Name       string `json:"name"`
	Namespace  string `json:"namespace"`
	Revision   int    `json:"revision"`
	Status     string `json:"status"`
	Chart      string `json:"chart"`
	AppVersion string `json:"appVersion"`
	Updated    string `json:"updated,omitempty"`
}

type ListReleasesResponse struct {
	Releases []ReleaseInfo `json:"releases"`
}

type GetReleaseHistoryResponse struct {
	Revisions []ReleaseInfo `json:"revisions"`
}

type RollbackReleaseRequest struct {
	Revision int `json:"revision"`
}

func releaseToInfo(r *helmrelease.Release) ReleaseInfo {
	info := ReleaseInfo{
		Name:      r.Name,
		Namespace: r.Namespace,
		Revision:  r.Version,
		Chart:     helm.FormatChartname(r.Chart),
	}
	if r.Chart != nil {
		info.AppVersion = helm.FormatAppVersion(r.Chart)
	}
	if r.Info != nil {
		info.Status = r.Info.Status.String()
		if !r.Info.LastDeployed.IsZero() {
			info.Updated = r.Info.LastDeployed.String()
		}
	}
	return info
}

func ListReleases(w http.ResponseWriter, r *http.Request) {
	releases, err := helm.MustGetClient().ListReleases(r.Context(), store.GetStore().IsAllNamespaces())
	if err != nil {
		logger.Error(errors.Wrap(err, "failed to list releases"))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	response := ListReleasesResponse{
		Releases: make([]ReleaseInfo, 0, len(releases)),
	}
	for _, rel := range releases {
		response.Releases = append(response.Releases, releaseToInfo(rel))
	}

	JSON(w, http.StatusOK, response)
}

func GetRelease(w http.ResponseWriter, r *http.Request) {
	namespace := mux.Vars(r)["namespace"]
	name := mux.Vars(r)["name"]

	rel, err := helm.MustGetClient().GetRelease(namespace, name)
	if err != nil {
		logger.Error(errors.Wrap(err, "failed to get release"))
		Error(w, http.StatusNotFound, "release not found")
		return
	}

	JSON(w, http.StatusOK, releaseToInfo(rel))
}

func GetReleaseValues(w http.ResponseWriter, r *http.Request) {
	namespace := mux.Vars(r)["namespace"]
	name := mux.Vars(r)["name"]

	values, err := helm.MustGetClient().GetValues(namespace, name)
	if err != nil {
		logger.Error(errors.Wrap(err, "failed to get release values"))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusOK, values)
}

func GetReleaseHistory(w http.ResponseWriter, r *http.Request) {
	namespace := mux.Vars(r)["namespace"]
	name := mux.Vars(r)["name"]

	history, err := helm.MustGetClient().GetHistory(namespace, name)
	if err != nil {
		logger.Error(errors.Wrap(err, "failed to get release history"))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	response := GetReleaseHistoryResponse{
		Revisions: make([]ReleaseInfo, 0, len(history)),
	}
	for _, rel := range history {
		response.Revisions = append(response.Revisions, releaseToInfo(rel))
	}

	JSON(w, http.StatusOK, response)
}

func RollbackRelease(w http.ResponseWriter, r *http.Request) {
	namespace := mux.Vars(r)["namespace"]
	name := mux.Vars(r)["name"]

	var request RollbackReleaseRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		Error(w, http.StatusBadRequest, "failed to decode request body")
		return
	}
	if request.Revision <= 0 {
		Error(w, http.StatusBadRequest, "revision must be a positive integer")
		return
	}

	if err := helm.MustGetClient().Rollback(namespace, name, request.Revision); err != nil {
		logger.Error(errors.Wrapf(err, "failed to rollback release %s/%s", namespace, name))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusOK, map[string]bool{"success": true})
}
