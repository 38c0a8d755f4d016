package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerAuthRoutes(mux *http.ServeMux, handler *Handler, auth AuthVerifier) {
	mux.HandleFunc("POST /v1/auth/register", handler.Register)
	mux.HandleFunc("POST /v1/auth/login", handler.Login)
	// Verification accepts GET for convenience alongside the primary POST.
	mux.HandleFunc("POST /v1/auth/verify", handler.VerifyToken)
	mux.HandleFunc("GET /v1/auth/verify", handler.VerifyToken)
	mux.Handle("PUT /v1/auth/profile", RequireAuth(auth, http.HandlerFunc(handler.UpdateProfile)))
}

func registerLeagueRoutes(mux *http.ServeMux, handler *Handler, auth AuthVerifier) {
	mux.Handle("POST /v1/leagues", RequireAuth(auth, http.HandlerFunc(handler.CreateLeague)))
	mux.Handle("GET /v1/leagues", RequireAuth(auth, http.HandlerFunc(handler.ListMyLeagues)))
	mux.Handle("POST /v1/leagues/join", RequireAuth(auth, http.HandlerFunc(handler.JoinLeague)))
	mux.Handle("GET /v1/leagues/{leagueID}", RequireAuth(auth, http.HandlerFunc(handler.GetLeague)))
	mux.Handle("PUT /v1/leagues/{leagueID}", RequireAuth(auth, http.HandlerFunc(handler.UpdateLeague)))
	mux.Handle("DELETE /v1/leagues/{leagueID}", RequireAuth(auth, http.HandlerFunc(handler.DeleteLeague)))
	mux.Handle("POST /v1/leagues/{leagueID}/leave", RequireAuth(auth, http.HandlerFunc(handler.LeaveLeague)))
	mux.Handle("GET /v1/leagues/{leagueID}/members", RequireAuth(auth, http.HandlerFunc(handler.ListLeagueMembers)))
	mux.Handle("POST /v1/leagues/{leagueID}/invite/{username}", RequireAuth(auth, http.HandlerFunc(handler.InviteMember)))
}

// League-scoped routes resolve the tenant from the x-league-id header once,
// in middleware, before any handler runs.
func registerLeagueScopedRoutes(mux *http.ServeMux, handler *Handler, auth AuthVerifier, leagues LeagueResolver) {
	scoped := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(auth, RequireLeague(leagues, h))
	}

	mux.Handle("GET /v1/players", scoped(handler.ListPlayers))
	mux.Handle("PATCH /v1/players/{playerID}/status", scoped(handler.UpdatePlayerStatus))
	mux.Handle("POST /v1/players/import", scoped(handler.ImportPlayers))
	mux.Handle("POST /v1/players/import/batch", scoped(handler.ImportPlayersBatch))
	mux.Handle("GET /v1/players/stats", scoped(handler.GetRosterStats))

	mux.Handle("GET /v1/participants", scoped(handler.ListParticipants))
	mux.Handle("POST /v1/participants", scoped(handler.CreateParticipant))
	mux.Handle("PUT /v1/participants/{participantID}", scoped(handler.UpdateParticipant))
	mux.Handle("DELETE /v1/participants/{participantID}", scoped(handler.DeleteParticipant))
	mux.Handle("POST /v1/participants/{participantID}/assign", scoped(handler.AssignPlayerToParticipant))

	mux.Handle("GET /v1/formations", scoped(handler.ListFormations))
	mux.Handle("POST /v1/formations", scoped(handler.CreateFormation))
	mux.Handle("PUT /v1/formations/{formationID}", scoped(handler.UpdateFormation))
	mux.Handle("DELETE /v1/formations/{formationID}", scoped(handler.DeleteFormation))
	mux.Handle("POST /v1/formations/{formationID}/image", scoped(handler.UploadFormationImage))
	mux.Handle("GET /v1/formations/{formationID}/images", scoped(handler.ListFormationImages))
	mux.Handle("DELETE /v1/formations/{formationID}/images/{imageKey...}", scoped(handler.DeleteFormationImage))
}
