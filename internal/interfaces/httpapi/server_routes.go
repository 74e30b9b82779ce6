package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/weeks/current", handler.GetCurrentWeek)
	mux.HandleFunc("GET /v1/weeks/{year}/{segment}/{number}", handler.GetWeek)
	mux.HandleFunc("GET /v1/weeks/{year}/{segment}/{number}/lunch", handler.GetWeekLunch)
	mux.HandleFunc("GET /v1/leaderboard", handler.GetLeaderboard)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("PUT /v1/picks", RequireAuth(verifier, http.HandlerFunc(handler.SavePicks)))
	mux.Handle("GET /v1/picks/week/{weekID}", RequireAuth(verifier, http.HandlerFunc(handler.GetWeekPicks)))
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/admin/import/teams", RequireAuth(verifier, RequireAdmin(http.HandlerFunc(handler.ImportTeams))))
	mux.Handle("POST /v1/admin/import/week", RequireAuth(verifier, RequireAdmin(http.HandlerFunc(handler.ImportWeek))))
	mux.Handle("POST /v1/admin/import/season", RequireAuth(verifier, RequireAdmin(http.HandlerFunc(handler.ImportSeason))))
	mux.Handle("POST /v1/admin/backfill/week", RequireAuth(verifier, RequireAdmin(http.HandlerFunc(handler.BackfillWeek))))
	mux.Handle("POST /v1/admin/refresh/live", RequireAuth(verifier, RequireAdmin(http.HandlerFunc(handler.RefreshLive))))
	mux.Handle("POST /v1/admin/users", RequireAuth(verifier, RequireAdmin(http.HandlerFunc(handler.CreateUser))))
	mux.Handle("GET /v1/admin/users", RequireAuth(verifier, RequireAdmin(http.HandlerFunc(handler.ListUsers))))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/sync-live", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncLiveJob)))
	mux.Handle("POST /v1/internal/jobs/sync-schedule", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncScheduleJob)))
}
