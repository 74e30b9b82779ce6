package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lunchpool/pickem/internal/domain/game"
	"github.com/lunchpool/pickem/internal/domain/team"
	"github.com/lunchpool/pickem/internal/domain/week"
	"github.com/lunchpool/pickem/internal/usecase"
)

type weekDTO struct {
	ID             int64  `json:"id"`
	SeasonID       int64  `json:"season_id"`
	Number         int    `json:"number"`
	Segment        string `json:"segment"`
	FirstKickoffAt string `json:"first_kickoff_at"`
	Locked         bool   `json:"locked"`
}

type gameTeamDTO struct {
	ID       int64  `json:"id"`
	Abbr     string `json:"abbr"`
	Name     string `json:"name"`
	Location string `json:"location"`
	LogoPath string `json:"logo_path,omitempty"`
}

type gameDTO struct {
	ID           int64       `json:"id"`
	StartTime    string      `json:"start_time"`
	Status       string      `json:"status"`
	Home         gameTeamDTO `json:"home"`
	Away         gameTeamDTO `json:"away"`
	HomeScore    int         `json:"home_score"`
	AwayScore    int         `json:"away_score"`
	WinnerTeamID int64       `json:"winner_team_id,omitempty"`
}

type weekGamesDTO struct {
	Week  weekDTO   `json:"week"`
	Games []gameDTO `json:"games"`
}

type leaderboardDTO struct {
	Rows         []usecase.LeaderboardRow `json:"rows"`
	DecidedGames int                      `json:"decided_games"`
}

func (h *Handler) GetCurrentWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentWeek")
	defer span.End()

	current, err := h.outcomeService.CurrentWeek(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "resolve current week failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, weekToDTO(ctx, current))
}

func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWeek")
	defer span.End()

	year, segment, number, err := weekKeyFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	selected, err := h.outcomeService.WeekByKey(ctx, year, number, segment)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	games, err := h.outcomeService.WeekGames(ctx, selected.ID)
	if err != nil {
		h.logger.WarnContext(ctx, "list week games failed", "week_id", selected.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	teams, err := h.teamService.Index(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "index teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]gameDTO, 0, len(games))
	for _, item := range games {
		items = append(items, gameToDTO(ctx, item, teams))
	}

	writeSuccess(ctx, w, http.StatusOK, weekGamesDTO{
		Week:  weekToDTO(ctx, selected),
		Games: items,
	})
}

func (h *Handler) GetWeekLunch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWeekLunch")
	defer span.End()

	year, segment, number, err := weekKeyFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	selected, err := h.outcomeService.WeekByKey(ctx, year, number, segment)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	outcome, err := h.outcomeService.WeeklyLunch(ctx, &selected)
	if err != nil {
		h.logger.WarnContext(ctx, "resolve weekly lunch failed", "week_id", selected.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, outcome)
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	selected, err := h.selectedWeekFromQuery(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, decided, err := h.outcomeService.SeasonLeaderboard(ctx, selected)
	if err != nil {
		h.logger.WarnContext(ctx, "compute leaderboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardDTO{
		Rows:         rows,
		DecidedGames: decided,
	})
}

// selectedWeekFromQuery reads the optional year/segment/number selector. All
// three must be present together; with none the season defaults apply.
func (h *Handler) selectedWeekFromQuery(ctx context.Context, r *http.Request) (*week.Week, error) {
	query := r.URL.Query()
	yearRaw := strings.TrimSpace(query.Get("year"))
	segmentRaw := strings.TrimSpace(query.Get("segment"))
	numberRaw := strings.TrimSpace(query.Get("number"))
	if yearRaw == "" && segmentRaw == "" && numberRaw == "" {
		return nil, nil
	}
	if yearRaw == "" || segmentRaw == "" || numberRaw == "" {
		return nil, fmt.Errorf("%w: year, segment and number must be provided together", usecase.ErrInvalidInput)
	}

	year, err := strconv.Atoi(yearRaw)
	if err != nil || year <= 0 {
		return nil, fmt.Errorf("%w: invalid year parameter", usecase.ErrInvalidInput)
	}
	segment, err := week.ParseSegment(segmentRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	number, err := strconv.Atoi(numberRaw)
	if err != nil || number <= 0 {
		return nil, fmt.Errorf("%w: invalid number parameter", usecase.ErrInvalidInput)
	}

	found, err := h.outcomeService.WeekByKey(ctx, year, number, segment)
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func weekToDTO(ctx context.Context, v week.Week) weekDTO {
	ctx, span := startSpan(ctx, "httpapi.weekToDTO")
	defer span.End()

	return weekDTO{
		ID:             v.ID,
		SeasonID:       v.SeasonID,
		Number:         v.Number,
		Segment:        v.Segment.String(),
		FirstKickoffAt: v.FirstKickoffAt.UTC().Format(time.RFC3339),
		Locked:         v.Locked(time.Now()),
	}
}

func gameToDTO(ctx context.Context, v game.Game, teams map[int64]team.Team) gameDTO {
	ctx, span := startSpan(ctx, "httpapi.gameToDTO")
	defer span.End()

	return gameDTO{
		ID:           v.ID,
		StartTime:    v.StartTime.UTC().Format(time.RFC3339),
		Status:       string(v.Status),
		Home:         gameTeamToDTO(ctx, teams[v.HomeTeamID], v.HomeTeamID),
		Away:         gameTeamToDTO(ctx, teams[v.AwayTeamID], v.AwayTeamID),
		HomeScore:    v.HomeScore,
		AwayScore:    v.AwayScore,
		WinnerTeamID: v.WinnerTeamID(),
	}
}

func gameTeamToDTO(ctx context.Context, v team.Team, fallbackID int64) gameTeamDTO {
	_, span := startSpan(ctx, "httpapi.gameTeamToDTO")
	defer span.End()

	if v.ID == 0 {
		return gameTeamDTO{ID: fallbackID}
	}
	return gameTeamDTO{
		ID:       v.ID,
		Abbr:     v.Abbr,
		Name:     v.Name,
		Location: v.Location,
		LogoPath: v.LogoPath,
	}
}
