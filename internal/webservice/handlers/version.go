package handlers

import (
	"net/http"

	"github.com/ubuntu/version-service/internal/constants"
	"github.com/ubuntu/version-service/internal/webservice/metrics"
)

type versionResponse struct {
	Version string `json:"version"`
}

// VersionHandler reports the version of the running service binary.
func VersionHandler(w http.ResponseWriter, r *http.Request) {
	metrics.ApplyLabels(r)

	writeJSON(w, r, http.StatusOK, versionResponse{Version: constants.Version})
}
