package apiserver

import (
	"context"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/mux"

	"github.com/helmdeck/helmdeck/pkg/buildversion"
	"github.com/helmdeck/helmdeck/pkg/config"
	"github.com/helmdeck/helmdeck/pkg/handlers"
	"github.com/helmdeck/helmdeck/pkg/logger"
	"github.com/helmdeck/helmdeck/pkg/sweeper"
)

type APIServerParams struct {
	Context context.Context
	Config  *config.HelmdeckConfig
}

func Start(params APIServerParams) {
	logger.Infof("helmdeck version %s", buildversion.Version())

	backoffDuration := 10 * time.Second
	bootstrapFn := func() error {
		return bootstrap(params)
	}
	err := backoff.RetryNotify(bootstrapFn, backoff.NewConstantBackOff(backoffDuration), func(err error, d time.Duration) {
		logger.Errorf("failed to bootstrap, retrying in %s: %v", d, err)
	})
	if err != nil {
		logger.Errorf("failed to bootstrap: %v", err)
		return
	}

	r := mux.NewRouter()
	r.Use(handlers.CorsMiddleware)
	r.Use(handlers.LoggingMiddleware)

	r.HandleFunc("/healthz", handlers.Healthz)

	api := r.PathPrefix("/api/v1").Subrouter()

	// releases
	api.HandleFunc("/releases", handlers.ListReleases).Methods("GET")
	api.HandleFunc("/releases/{namespace}/{name}", handlers.GetRelease).Methods("GET")
	api.HandleFunc("/releases/{namespace}/{name}/values", handlers.GetReleaseValues).Methods("GET")
	api.HandleFunc("/releases/{namespace}/{name}/history", handlers.GetReleaseHistory).Methods("GET")
	api.HandleFunc("/releases/{namespace}/{name}/rollback", handlers.RollbackRelease).Methods("POST")
	api.HandleFunc("/releases/{namespace}/{name}/logs", handlers.GetReleaseLogs).Methods("GET")

	// repositories
	api.HandleFunc("/repos", handlers.ListRepos).Methods("GET")

	// edit sessions
	api.HandleFunc("/sessions", handlers.CreateSession).Methods("POST")
	api.HandleFunc("/sessions/{sessionId}", handlers.GetSession).Methods("GET")
	api.HandleFunc("/sessions/{sessionId}", handlers.DeleteSession).Methods("DELETE")
	api.HandleFunc("/sessions/{sessionId}/values", handlers.SetSessionValue).Methods("POST")
	api.HandleFunc("/sessions/{sessionId}/items", handlers.AppendSessionItem).Methods("POST")
	api.HandleFunc("/sessions/{sessionId}/items", handlers.RemoveSessionItem).Methods("DELETE")
	api.HandleFunc("/sessions/{sessionId}/overrides", handlers.GetSessionOverrides).Methods("GET")
	api.HandleFunc("/sessions/{sessionId}/upgrade", handlers.UpgradeSession).Methods("POST")

	srv := &http.Server{
		Handler: r,
		Addr:    params.Config.GetListenAddr(),
	}

	logger.Infof("starting helmdeck API on %s", params.Config.GetListenAddr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		logger.Errorf("server exited: %v", err)
	case <-params.Context.Done():
		logger.Infof("shutting down")
		sweeper.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("failed to shut down cleanly: %v", err)
		}
	}
}
