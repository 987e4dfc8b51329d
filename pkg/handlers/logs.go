package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/helmdeck/helmdeck/pkg/k8sutil"
	"github.com/helmdeck/helmdeck/pkg/logger"
)

// GetReleaseLogs streams the logs of one of a release's pods as plain
// text. With follow=true the response stays open while the pod emits new
// lines; the stream ends when the client disconnects.
func GetReleaseLogs(w http.ResponseWriter, r *http.Request) {
	namespace := mux.Vars(r)["namespace"]
	name := mux.Vars(r)["name"]

	podName := r.URL.Query().Get("pod")
	container := r.URL.Query().Get("container")
	follow := r.URL.Query().Get("follow") == "true"

	var tailLines int64
	if tail := r.URL.Query().Get("tailLines"); tail != "" {
		parsed, err := strconv.ParseInt(tail, 10, 64)
		if err != nil || parsed < 0 {
			Error(w, http.StatusBadRequest, "tailLines must be a non-negative integer")
			return
		}
		tailLines = parsed
	}

	clientset, err := k8sutil.GetClientset()
	if err != nil {
		logger.Error(errors.Wrap(err, "failed to get clientset"))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if podName == "" {
		pods, err := k8sutil.ListReleasePods(r.Context(), clientset, namespace, name)
		if err != nil {
			logger.Error(errors.Wrap(err, "failed to list release pods"))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if len(pods) == 0 {
			Error(w, http.StatusNotFound, "no pods found for release")
			return
		}
		podName = pods[0].Name
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if err := k8sutil.StreamPodLogs(r.Context(), clientset, namespace, podName, container, follow, tailLines, w); err != nil {
		// headers are out the door; log and drop the connection
		logger.Error(errors.Wrapf(err, "failed to stream logs for pod %s", podName))
	}
}
