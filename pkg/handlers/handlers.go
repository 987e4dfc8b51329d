package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/helmdeck/helmdeck/pkg/handlers/types"
	"github.com/helmdeck/helmdeck/pkg/logger"
)

func JSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error(err)
		w.WriteHeader(500)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func Error(w http.ResponseWriter, code int, message string) {
	JSON(w, code, types.ErrorResponse{Error: message})
}
