package httpapi

import (
	"context"
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/lunchpool/pickem/internal/domain/user"
	"github.com/lunchpool/pickem/internal/domain/week"
	"github.com/lunchpool/pickem/internal/usecase"
)

type weekKeyRequest struct {
	Year    int    `json:"year" validate:"required,gte=1920,lte=2200"`
	Number  int    `json:"number" validate:"required,gt=0"`
	Segment string `json:"segment"`
}

type importSeasonRequest struct {
	Year              int  `json:"year" validate:"required,gte=1920,lte=2200"`
	IncludePreseason  bool `json:"include_preseason"`
	IncludePostseason bool `json:"include_postseason"`
	MaxWorkers        int  `json:"max_workers" validate:"omitempty,gte=1,lte=16"`
}

type createUserRequest struct {
	Username    string `json:"username" validate:"required,min=2,max=40"`
	DisplayName string `json:"display_name" validate:"omitempty,max=80"`
	IsAdmin     bool   `json:"is_admin"`
}

type userDTO struct {
	ID          int64  `json:"id"`
	PublicID    string `json:"public_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
}

// segmentOrRegular keeps the admin payloads short: most imports target the
// regular season.
func segmentOrRegular(value string) (week.Segment, error) {
	if value == "" {
		return week.SegmentRegular, nil
	}
	segment, err := week.ParseSegment(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return segment, nil
}

func (h *Handler) ImportTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportTeams")
	defer span.End()

	result, err := h.importService.UpsertTeams(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "import teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ImportWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportWeek")
	defer span.End()

	var req weekKeyRequest
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
	segment, err := segmentOrRegular(req.Segment)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	imported, err := h.importService.ImportWeekSchedule(ctx, req.Year, req.Number, segment)
	if err != nil {
		h.logger.ErrorContext(ctx, "import week failed", "year", req.Year, "week", req.Number, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"imported": imported})
}

func (h *Handler) ImportSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportSeason")
	defer span.End()

	var req importSeasonRequest
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

	summary, err := h.importService.ImportFullSeason(ctx, usecase.ImportFullSeasonInput{
		Year:              req.Year,
		IncludePreseason:  req.IncludePreseason,
		IncludePostseason: req.IncludePostseason,
		MaxWorkers:        req.MaxWorkers,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "import season failed", "year", req.Year, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summary)
}

func (h *Handler) BackfillWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BackfillWeek")
	defer span.End()

	var req weekKeyRequest
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
	segment, err := segmentOrRegular(req.Segment)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.liveScoreService.BackfillWeek(ctx, req.Year, req.Number, segment)
	if err != nil {
		h.logger.ErrorContext(ctx, "backfill week failed", "year", req.Year, "week", req.Number, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RefreshLive(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshLive")
	defer span.End()

	changed, err := h.liveScoreService.RefreshLiveGames(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "refresh live failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"changed": changed})
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateUser")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createUserRequest
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

	created, err := h.userService.Create(ctx, principal, usecase.CreateUserInput{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		IsAdmin:     req.IsAdmin,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create user failed", "username", req.Username, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, userToDTO(ctx, created))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUsers")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	users, err := h.userService.List(ctx, principal)
	if err != nil {
		h.logger.WarnContext(ctx, "list users failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]userDTO, 0, len(users))
	for _, item := range users {
		items = append(items, userToDTO(ctx, item))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func userToDTO(ctx context.Context, v user.User) userDTO {
	_, span := startSpan(ctx, "httpapi.userToDTO")
	defer span.End()

	return userDTO{
		ID:          v.ID,
		PublicID:    v.PublicID,
		Username:    v.Username,
		DisplayName: v.DisplayName,
		IsAdmin:     v.IsAdmin,
	}
}
