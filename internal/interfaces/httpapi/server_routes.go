package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func handle(mux *http.ServeMux, pattern string, h http.Handler) {
	mux.Handle(pattern, instrumentRoute(pattern, h))
}

func authorized(verifier TokenVerifier, h http.HandlerFunc) http.Handler {
	return RequireAuth(verifier, h)
}

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, opts RouterOptions) {
	mux.HandleFunc("GET /healthz", handler.Healthz)

	if opts.MetricsEnabled {
		gatherer := opts.MetricsGatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	if !opts.SwaggerEnabled {
		return
	}
	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerMatchRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	handle(mux, "POST /match", authorized(verifier, handler.CreateMatch))
	handle(mux, "GET /match", authorized(verifier, handler.ListMyMatches))
	handle(mux, "GET /match/all-match", authorized(verifier, handler.ListAllMatches))
	handle(mux, "GET /match/{matchId}", authorized(verifier, handler.GetMatchDetail))
	handle(mux, "POST /match/{matchId}", authorized(verifier, handler.UpdateMatchStatus))
	handle(mux, "PUT /match/{matchId}/lineup-image", authorized(verifier, handler.UploadLineupImage))
}

func registerUserRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	handle(mux, "POST /user/register", authorized(verifier, handler.RegisterUser))
	handle(mux, "GET /user/me", authorized(verifier, handler.GetMyProfile))
}

func registerCatalogRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	handle(mux, "GET /club", authorized(verifier, handler.ListClubs))
	handle(mux, "POST /club", authorized(verifier, handler.CreateClub))
	handle(mux, "GET /club/{id}", authorized(verifier, handler.GetClub))
	handle(mux, "PUT /club/{id}", authorized(verifier, handler.UpdateClub))
	handle(mux, "DELETE /club/{id}", authorized(verifier, handler.DeleteClub))

	handle(mux, "GET /player", authorized(verifier, handler.ListPlayerProfiles))
	handle(mux, "GET /player/search", authorized(verifier, handler.SearchPlayerProfiles))
	handle(mux, "GET /player/{id}", authorized(verifier, handler.GetPlayerProfile))
	handle(mux, "PUT /player/{id}", authorized(verifier, handler.UpdatePlayerProfile))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	handle(mux, "POST /internal/match/{matchId}/status",
		RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ReportMatchStatus)))
}
