package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lunchpool/pickem/internal/domain/week"
	"github.com/lunchpool/pickem/internal/platform/logging"
	"github.com/lunchpool/pickem/internal/usecase"
)

type Handler struct {
	outcomeService   *usecase.OutcomeService
	pickService      *usecase.PickService
	teamService      *usecase.TeamService
	userService      *usecase.UserService
	importService    *usecase.ScheduleImportService
	liveScoreService *usecase.LiveScoreService
	jobOrchestrator  *usecase.JobOrchestratorService
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	outcomeService *usecase.OutcomeService,
	pickService *usecase.PickService,
	teamService *usecase.TeamService,
	userService *usecase.UserService,
	importService *usecase.ScheduleImportService,
	liveScoreService *usecase.LiveScoreService,
	jobOrchestrator *usecase.JobOrchestratorService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		outcomeService:   outcomeService,
		pickService:      pickService,
		teamService:      teamService,
		userService:      userService,
		importService:    importService,
		liveScoreService: liveScoreService,
		jobOrchestrator:  jobOrchestrator,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func weekKeyFromPath(r *http.Request) (int, week.Segment, int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(r.PathValue("year")))
	if err != nil || year <= 0 {
		return 0, 0, 0, fmt.Errorf("%w: invalid year in path", usecase.ErrInvalidInput)
	}

	segment, err := week.ParseSegment(r.PathValue("segment"))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}

	number, err := strconv.Atoi(strings.TrimSpace(r.PathValue("number")))
	if err != nil || number <= 0 {
		return 0, 0, 0, fmt.Errorf("%w: invalid week number in path", usecase.ErrInvalidInput)
	}

	return year, segment, number, nil
}

func int64FromPath(r *http.Request, name string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(r.PathValue(name)), 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: invalid %s in path", usecase.ErrInvalidInput, name)
	}
	return value, nil
}
