package handlers

import (
	"net/http"

	"github.com/pkg/errors"
	"helm.sh/helm/v3/pkg/cli"

	"github.com/helmdeck/helmdeck/pkg/logger"
	"github.com/helmdeck/helmdeck/pkg/repo"
)

type ListReposResponse struct {
	Repos []repo.Entry `json:"repos"`
}

func ListRepos(w http.ResponseWriter, r *http.Request) {
	entries, err := repo.ListRepos(cli.New())
	if err != nil {
		logger.Error(errors.Wrap(err, "failed to list helm repositories"))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusOK, ListReposResponse{Repos: entries})
}
