package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/lunchpool/pickem/internal/domain/game"
	"github.com/lunchpool/pickem/internal/domain/season"
	"github.com/lunchpool/pickem/internal/domain/team"
	"github.com/lunchpool/pickem/internal/domain/user"
	"github.com/lunchpool/pickem/internal/domain/week"
	"github.com/lunchpool/pickem/internal/infrastructure/nflstatic"
	"github.com/lunchpool/pickem/internal/infrastructure/repository/memory"
	"github.com/lunchpool/pickem/internal/platform/logging"
	"github.com/lunchpool/pickem/internal/usecase"
)

const (
	testMemberToken = "member-token"
	testAdminToken  = "admin-token"
	testJobToken    = "job-token"
)

type staticVerifier struct {
	principals map[string]user.Principal
}

func (v *staticVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	principal, ok := v.principals[token]
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return principal, nil
}

type routerFixture struct {
	router   http.Handler
	weekID   int64
	gameID   int64
	homeID   int64
	awayID   int64
	memberID int64
}

func newRouterFixture(t *testing.T) routerFixture {
	t.Helper()
	ctx := context.Background()

	teamRepo := memory.NewTeamRepository()
	seasonRepo := memory.NewSeasonRepository()
	weekRepo := memory.NewWeekRepository()
	gameRepo := memory.NewGameRepository()
	pickRepo := memory.NewPickRepository()
	tiebreakerRepo := memory.NewTieBreakerRepository()
	userRepo := memory.NewUserRepository()

	homeID, err := teamRepo.Insert(ctx, team.Team{Abbr: "KC", Name: "Chiefs", Location: "Kansas City", Slug: "kc"})
	if err != nil {
		t.Fatalf("insert home team: %v", err)
	}
	awayID, err := teamRepo.Insert(ctx, team.Team{Abbr: "BUF", Name: "Bills", Location: "Buffalo", Slug: "buf"})
	if err != nil {
		t.Fatalf("insert away team: %v", err)
	}

	seasonID, err := seasonRepo.Insert(ctx, season.Season{Year: 2025, IsActive: true})
	if err != nil {
		t.Fatalf("insert season: %v", err)
	}

	kickoff := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Second)
	weekID, err := weekRepo.Insert(ctx, week.Week{
		SeasonID:       seasonID,
		Number:         1,
		Segment:        week.SegmentRegular,
		FirstKickoffAt: kickoff,
	})
	if err != nil {
		t.Fatalf("insert week: %v", err)
	}

	gameID, err := gameRepo.Insert(ctx, game.Game{
		WeekID:     weekID,
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		StartTime:  kickoff,
		Status:     game.StatusScheduled,
	})
	if err != nil {
		t.Fatalf("insert game: %v", err)
	}

	memberID, err := userRepo.Insert(ctx, user.User{PublicID: "member-1", Username: "pat", DisplayName: "Pat"})
	if err != nil {
		t.Fatalf("insert member: %v", err)
	}
	adminID, err := userRepo.Insert(ctx, user.User{PublicID: "admin-1", Username: "sam", DisplayName: "Sam", IsAdmin: true})
	if err != nil {
		t.Fatalf("insert admin: %v", err)
	}

	logger := logging.NewNop()
	provider := nflstatic.NewProvider()

	outcomeService := usecase.NewOutcomeService(seasonRepo, weekRepo, gameRepo, pickRepo, tiebreakerRepo, userRepo)
	pickService := usecase.NewPickService(weekRepo, gameRepo, pickRepo, tiebreakerRepo, logger)
	teamService := usecase.NewTeamService(teamRepo)
	userService := usecase.NewUserService(userRepo, nil)
	importService := usecase.NewScheduleImportService(provider, teamRepo, seasonRepo, weekRepo, gameRepo, logger)
	liveService := usecase.NewLiveScoreService(provider, gameRepo, seasonRepo, weekRepo, importService, usecase.LiveScoreConfig{}, logger)
	orchestrator := usecase.NewJobOrchestratorService(outcomeService, seasonRepo, gameRepo, importService, liveService, nil, usecase.JobOrchestratorConfig{}, logger)

	handler := NewHandler(outcomeService, pickService, teamService, userService, importService, liveService, orchestrator, logger)
	verifier := &staticVerifier{principals: map[string]user.Principal{
		testMemberToken: {UserID: memberID, Username: "pat", IsAdmin: false},
		testAdminToken:  {UserID: adminID, Username: "sam", IsAdmin: true},
	}}

	router := NewRouter(handler, verifier, logger, false, nil, testJobToken)

	return routerFixture{
		router:   router,
		weekID:   weekID,
		gameID:   gameID,
		homeID:   homeID,
		awayID:   awayID,
		memberID: memberID,
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal envelope: %v (body=%s)", err, rec.Body.String())
	}
	return body
}

func TestRouter_Healthz(t *testing.T) {
	fixture := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	if got, _ := data["status"].(string); got != "ok" {
		t.Fatalf("expected status=ok, got %v", data["status"])
	}
}

func TestRouter_WeekByKeyReturnsGames(t *testing.T) {
	fixture := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/weeks/2025/reg/1", nil)
	rec := httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body=%s)", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	weekObj, _ := data["week"].(map[string]any)
	if got, _ := weekObj["segment"].(string); got != "regular" {
		t.Fatalf("expected segment=regular, got %v", weekObj["segment"])
	}
	games, _ := data["games"].([]any)
	if len(games) != 1 {
		t.Fatalf("expected 1 game, got %d", len(games))
	}
	gameObj, _ := games[0].(map[string]any)
	home, _ := gameObj["home"].(map[string]any)
	if got, _ := home["abbr"].(string); got != "KC" {
		t.Fatalf("expected home abbr KC, got %v", home["abbr"])
	}
}

func TestRouter_UnknownWeekIs404(t *testing.T) {
	fixture := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/weeks/2025/reg/9", nil)
	rec := httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestRouter_SavePicksRequiresAuth(t *testing.T) {
	fixture := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodPut, "/v1/picks", strings.NewReader(`{"week_id":1}`))
	rec := httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	errorObj, _ := body["error"].(map[string]any)
	if got, _ := errorObj["status"].(string); got != "UNAUTHENTICATED" {
		t.Fatalf("expected UNAUTHENTICATED, got %v", errorObj["status"])
	}
}

func TestRouter_SavePicksRoundTrip(t *testing.T) {
	fixture := newRouterFixture(t)

	payload := fmt.Sprintf(`{"week_id":%d,"picks":[{"game_id":%d,"chosen_team_id":%d}],"tiebreaker":41}`,
		fixture.weekID, fixture.gameID, fixture.homeID)
	req := httptest.NewRequest(http.MethodPut, "/v1/picks", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+testMemberToken)
	rec := httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body=%s)", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	if got, _ := data["saved"].(float64); got != 1 {
		t.Fatalf("expected saved=1, got %v", data["saved"])
	}
	if got, _ := data["tiebreaker_saved"].(bool); !got {
		t.Fatalf("expected tiebreaker_saved=true")
	}

	readReq := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/picks/week/%d", fixture.weekID), nil)
	readReq.Header.Set("Authorization", "Bearer "+testMemberToken)
	readRec := httptest.NewRecorder()
	fixture.router.ServeHTTP(readRec, readReq)

	if readRec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body=%s)", readRec.Code, readRec.Body.String())
	}
	readBody := decodeEnvelope(t, readRec)
	readData, _ := readBody["data"].(map[string]any)
	picks, _ := readData["picks"].([]any)
	if len(picks) != 1 {
		t.Fatalf("expected 1 pick, got %d", len(picks))
	}
	if got, _ := readData["tiebreaker"].(float64); got != 41 {
		t.Fatalf("expected tiebreaker=41, got %v", readData["tiebreaker"])
	}
}

func TestRouter_AdminRoutesRejectNonAdmin(t *testing.T) {
	fixture := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+testMemberToken)
	rec := httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRouter_AdminImportTeams(t *testing.T) {
	fixture := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/import/teams", nil)
	req.Header.Set("Authorization", "Bearer "+testAdminToken)
	rec := httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body=%s)", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	inserted, _ := data["inserted"].(float64)
	updated, _ := data["updated"].(float64)
	// KC and BUF are pre-seeded without logos, the static roster fills in the
	// remaining 30 and backfills the seeded rows.
	if inserted != 30 {
		t.Fatalf("expected inserted=30, got %v", inserted)
	}
	if updated != 2 {
		t.Fatalf("expected updated=2, got %v", updated)
	}
}

func TestRouter_InternalJobTokenGate(t *testing.T) {
	fixture := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sync-live", nil)
	req.Header.Set("X-Internal-Job-Token", "wrong")
	rec := httptest.NewRecorder()
	fixture.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}

	okReq := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sync-live", nil)
	okReq.Header.Set("X-Internal-Job-Token", testJobToken)
	okRec := httptest.NewRecorder()
	fixture.router.ServeHTTP(okRec, okReq)

	if okRec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body=%s)", okRec.Code, okRec.Body.String())
	}
	body := decodeEnvelope(t, okRec)
	data, _ := body["data"].(map[string]any)
	if got, _ := data["mode"].(string); got != "live" {
		t.Fatalf("expected mode=live, got %v", data["mode"])
	}
}

func TestRouter_DuplicateTiebreakerIsConflict(t *testing.T) {
	fixture := newRouterFixture(t)

	payload := fmt.Sprintf(`{"week_id":%d,"tiebreaker":33}`, fixture.weekID)
	first := httptest.NewRequest(http.MethodPut, "/v1/picks", strings.NewReader(payload))
	first.Header.Set("Authorization", "Bearer "+testMemberToken)
	firstRec := httptest.NewRecorder()
	fixture.router.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body=%s)", firstRec.Code, firstRec.Body.String())
	}

	second := httptest.NewRequest(http.MethodPut, "/v1/picks", strings.NewReader(payload))
	second.Header.Set("Authorization", "Bearer "+testAdminToken)
	secondRec := httptest.NewRecorder()
	fixture.router.ServeHTTP(secondRec, second)

	if secondRec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d (body=%s)", secondRec.Code, secondRec.Body.String())
	}
	body := decodeEnvelope(t, secondRec)
	errorObj, _ := body["error"].(map[string]any)
	if got, _ := errorObj["status"].(string); got != "ALREADY_EXISTS" {
		t.Fatalf("expected ALREADY_EXISTS, got %v", errorObj["status"])
	}
}

func TestRouter_AuthNotConfigured(t *testing.T) {
	teamRepo := memory.NewTeamRepository()
	teamService := usecase.NewTeamService(teamRepo)
	handler := NewHandler(nil, nil, teamService, nil, nil, nil, nil, logging.NewNop())
	router := NewRouter(handler, nil, logging.NewNop(), false, nil, "")

	req := httptest.NewRequest(http.MethodPut, "/v1/picks", strings.NewReader(`{"week_id":1}`))
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}
