package api

import "net/http"

const (
	appName        = "VozNota API"
	appDescription = "API de transcripción de voz con IBM Watson y Cloudant"
)

// RootResponse is the service metadata served at GET /.
type RootResponse struct {
	App         string `json:"app"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Health      string `json:"health"`
}

// Root serves service metadata.
func Root(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, RootResponse{
			App:         appName,
			Version:     version,
			Description: appDescription,
			Health:      "/health",
		})
	}
}
