package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"helm.sh/helm/v3/pkg/cli"

	"github.com/helmdeck/helmdeck/pkg/helm"
	"github.com/helmdeck/helmdeck/pkg/logger"
	"github.com/helmdeck/helmdeck/pkg/overrides"
	"github.com/helmdeck/helmdeck/pkg/repo"
	"github.com/helmdeck/helmdeck/pkg/schema"
	"github.com/helmdeck/helmdeck/pkg/schemacache"
	"github.com/helmdeck/helmdeck/pkg/session"
	"github.com/helmdeck/helmdeck/pkg/store"
	"github.com/helmdeck/helmdeck/pkg/valuetree"
)

type CreateSessionRequest struct {
	Namespace    string `json:"namespace"`
	ReleaseName  string `json:"releaseName"`
	ChartRef     string `json:"chartRef"`
	ChartVersion string `json:"chartVersion"`
	RepoName     string `json:"repoName"`
}

type SessionResponse struct {
	SessionID     string       `json:"sessionId"`
	ReleaseName   string       `json:"releaseName"`
	Namespace     string       `json:"namespace"`
	ChartRef      string       `json:"chartRef"`
	ChartVersion  string       `json:"chartVersion"`
	Schema        *schema.Node `json:"schema"`
	SkippedFields []string     `json:"skippedFields,omitempty"`
	Values        interface{}  `json:"values"`
	Dirty         bool         `json:"dirty"`
}

type SetValueRequest struct {
	Path  valuetree.Path  `json:"path"`
	Value json.RawMessage `json:"value"`
}

type AppendItemRequest struct {
	Path valuetree.Path `json:"path"`
}

type RemoveItemRequest struct {
	Path  valuetree.Path `json:"path"`
	Index int            `json:"index"`
}

type GetOverridesResponse struct {
	Overrides []overrides.Assignment `json:"overrides"`
}

type UpgradeSessionResponse struct {
	Revision int `json:"revision"`
}

// CreateSession opens a chart-edit session for a release: it resolves the
// chart's declared schema (from the cache, then from the chart itself),
// falls back to inferring a shape from the release's live values, and
// seeds the editable value tree.
func CreateSession(w http.ResponseWriter, r *http.Request) {
	var request CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		Error(w, http.StatusBadRequest, "failed to decode request body")
		return
	}
	if request.ReleaseName == "" || request.ChartRef == "" {
		Error(w, http.StatusBadRequest, "releaseName and chartRef are required")
		return
	}

	namespace := request.Namespace
	if namespace == "" {
		namespace = store.GetStore().GetNamespace()
	}

	if request.RepoName != "" {
		settings := cli.New()
		known, err := repo.HasRepo(settings, request.RepoName)
		if err != nil {
			logger.Error(errors.Wrap(err, "failed to check helm repositories"))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if !known {
			Error(w, http.StatusBadRequest, fmt.Sprintf("repository %s is not configured", request.RepoName))
			return
		}

		if request.ChartVersion == "" {
			chartName := request.ChartRef
			if i := strings.LastIndex(chartName, "/"); i >= 0 {
				chartName = chartName[i+1:]
			}
			version, err := repo.ResolveVersion(settings, request.RepoName, chartName, "")
			if err != nil {
				logger.Error(errors.Wrap(err, "failed to resolve chart version"))
				Error(w, http.StatusBadRequest, "chart version could not be resolved from the repository index")
				return
			}
			request.ChartVersion = version
		}
	}

	currentValues, err := helm.MustGetClient().GetValues(namespace, request.ReleaseName)
	if err != nil {
		logger.Error(errors.Wrap(err, "failed to get release values"))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	schemaBytes, err := resolveChartSchema(request, namespace)
	if err != nil {
		logger.Error(errors.Wrap(err, "failed to resolve chart schema"))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	node, skipped, err := schema.ParseDocument(schemaBytes)
	if err != nil {
		logger.Error(errors.Wrap(err, "failed to parse chart schema"))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if len(node.Children) == 0 {
		// no declared schema; the release's own values are the shape
		node = schema.InferShape(currentValues)
	}

	sess, err := session.New(request.ReleaseName, namespace, request.ChartRef, request.ChartVersion, node, currentValues)
	if err != nil {
		logger.Error(errors.Wrap(err, "failed to create session"))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	sess.Skipped = skipped

	store.GetStore().AddSession(sess)

	JSON(w, http.StatusCreated, sessionToResponse(sess))
}

// resolveChartSchema returns the raw schema document for the chart, using
// the sqlite cache when warm. Charts without a schema cache an empty
// document so they are not re-downloaded every session.
func resolveChartSchema(request CreateSessionRequest, namespace string) ([]byte, error) {
	cache := schemacache.GetCache()
	key := schemacache.Key{
		ChartName:    request.ChartRef,
		ChartVersion: request.ChartVersion,
		RepoName:     request.RepoName,
		Namespace:    namespace,
	}

	if cache != nil {
		cached, found, err := cache.Get(key)
		if err != nil {
			// a broken cache degrades to a chart download, not a failure
			logger.Warn(errors.Wrap(err, "failed to read schema cache"))
		} else if found {
			return cached, nil
		}
	}

	schemaBytes, err := helm.MustGetClient().GetChartSchema(request.ChartRef, request.ChartVersion)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		if err := cache.Set(key, schemaBytes); err != nil {
			logger.Warnf("failed to write schema cache: %v", err)
		}
	}
	return schemaBytes, nil
}

func sessionToResponse(sess *session.Session) SessionResponse {
	dirty, err := sess.IsDirty()
	if err != nil {
		logger.Error(errors.Wrap(err, "failed to compute session dirty state"))
	}

	return SessionResponse{
		SessionID:     sess.ID,
		ReleaseName:   sess.ReleaseName,
		Namespace:     sess.Namespace,
		ChartRef:      sess.ChartRef,
		ChartVersion:  sess.ChartVersion,
		Schema:        sess.Schema,
		SkippedFields: sess.Skipped,
		Values:        sess.Values(),
		Dirty:         dirty,
	}
}

func sessionFromRequest(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := store.GetStore().GetSession(mux.Vars(r)["sessionId"])
	if !ok {
		Error(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, sessionToResponse(sess))
}

func DeleteSession(w http.ResponseWriter, r *http.Request) {
	store.GetStore().DeleteSession(mux.Vars(r)["sessionId"])
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func SetSessionValue(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	var request SetValueRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		Error(w, http.StatusBadRequest, "failed to decode request body")
		return
	}
	if len(request.Path) == 0 {
		Error(w, http.StatusBadRequest, "path is required")
		return
	}

	var value interface{}
	if len(request.Value) > 0 {
		if err := json.Unmarshal(request.Value, &value); err != nil {
			Error(w, http.StatusBadRequest, "value is not valid JSON")
			return
		}
	}

	if err := sess.SetField(request.Path, value); err != nil {
		writeEditError(w, err)
		return
	}

	JSON(w, http.StatusOK, sessionToResponse(sess))
}

func AppendSessionItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	var request AppendItemRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		Error(w, http.StatusBadRequest, "failed to decode request body")
		return
	}

	if err := sess.AppendItem(request.Path); err != nil {
		writeEditError(w, err)
		return
	}

	JSON(w, http.StatusOK, sessionToResponse(sess))
}

func RemoveSessionItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	var request RemoveItemRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		Error(w, http.StatusBadRequest, "failed to decode request body")
		return
	}

	if err := sess.RemoveItem(request.Path, request.Index); err != nil {
		writeEditError(w, err)
		return
	}

	JSON(w, http.StatusOK, sessionToResponse(sess))
}

func GetSessionOverrides(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	assignments, err := sess.Overrides()
	if err != nil {
		logger.Error(errors.Wrap(err, "failed to flatten session values"))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusOK, GetOverridesResponse{Overrides: assignments})
}

// UpgradeSession flattens the edited tree into override assignments and
// hands them to the helm collaborator. Only one upgrade per session may be
// in flight.
func UpgradeSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	if err := sess.BeginUpgrade(); err != nil {
		if errors.Is(err, session.ErrUpgradeInFlight) {
			Error(w, http.StatusConflict, err.Error())
			return
		}
		logger.Error(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	assignments, err := sess.Overrides()
	if err != nil {
		sess.EndUpgrade(false)
		logger.Error(errors.Wrap(err, "failed to flatten session values"))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	rel, err := helm.MustGetClient().Upgrade(r.Context(), sess.Namespace, sess.ReleaseName, sess.ChartRef, sess.ChartVersion, assignments)
	if err != nil {
		sess.EndUpgrade(false)
		logger.Error(errors.Wrap(err, "failed to upgrade release"))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	sess.EndUpgrade(true)

	JSON(w, http.StatusOK, UpgradeSessionResponse{Revision: rel.Version})
}

// writeEditError maps tree-editor failures onto statuses: invalid paths
// and bad indices are wiring bugs in the caller, not user errors.
func writeEditError(w http.ResponseWriter, err error) {
	logger.Error(err)
	switch {
	case errors.Is(err, valuetree.ErrInvalidPath):
		Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, valuetree.ErrIndexOutOfRange):
		Error(w, http.StatusUnprocessableEntity, err.Error())
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
}
