package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/lunchpool/pickem/internal/usecase"
)

type pickEntryRequest struct {
	GameID       int64 `json:"game_id" validate:"required,gt=0"`
	ChosenTeamID int64 `json:"chosen_team_id" validate:"required,gt=0"`
}

type savePicksRequest struct {
	WeekID     int64              `json:"week_id" validate:"required,gt=0"`
	Picks      []pickEntryRequest `json:"picks" validate:"dive"`
	TieBreaker *int               `json:"tiebreaker" validate:"omitempty,gte=0"`
}

type pickDTO struct {
	GameID       int64 `json:"game_id"`
	ChosenTeamID int64 `json:"chosen_team_id"`
}

type weekPicksDTO struct {
	WeekID     int64     `json:"week_id"`
	Picks      []pickDTO `json:"picks"`
	TieBreaker *int      `json:"tiebreaker,omitempty"`
}

func (h *Handler) SavePicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SavePicks")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req savePicksRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	selections := make([]usecase.PickSelection, 0, len(req.Picks))
	for _, entry := range req.Picks {
		selections = append(selections, usecase.PickSelection{
			GameID:       entry.GameID,
			ChosenTeamID: entry.ChosenTeamID,
		})
	}

	result, err := h.pickService.SavePicks(ctx, principal, usecase.SavePicksInput{
		WeekID:     req.WeekID,
		Picks:      selections,
		TieBreaker: req.TieBreaker,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "save picks failed", "user_id", principal.UserID, "week_id", req.WeekID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) GetWeekPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWeekPicks")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	weekID, err := int64FromPath(r, "weekID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	picks, err := h.pickService.WeekPicksFor(ctx, principal, weekID)
	if err != nil {
		h.logger.WarnContext(ctx, "load week picks failed", "user_id", principal.UserID, "week_id", weekID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]pickDTO, 0, len(picks.Picks))
	for _, item := range picks.Picks {
		items = append(items, pickDTO{
			GameID:       item.GameID,
			ChosenTeamID: item.ChosenTeamID,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, weekPicksDTO{
		WeekID:     picks.WeekID,
		Picks:      items,
		TieBreaker: picks.TieBreaker,
	})
}
