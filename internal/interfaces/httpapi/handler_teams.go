package httpapi

import (
	"context"
	"net/http"

	"github.com/lunchpool/pickem/internal/domain/team"
)

type teamDTO struct {
	ID       int64    `json:"id"`
	Abbr     string   `json:"abbr"`
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Slug     string   `json:"slug"`
	AltAbbrs []string `json:"alt_abbrs,omitempty"`
	LogoPath string   `json:"logo_path,omitempty"`
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	teams, err := h.teamService.List(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, item := range teams {
		items = append(items, teamToDTO(ctx, item))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func teamToDTO(ctx context.Context, v team.Team) teamDTO {
	_, span := startSpan(ctx, "httpapi.teamToDTO")
	defer span.End()

	return teamDTO{
		ID:       v.ID,
		Abbr:     v.Abbr,
		Name:     v.Name,
		Location: v.Location,
		Slug:     v.Slug,
		AltAbbrs: append([]string(nil), v.AltAbbrs...),
		LogoPath: v.LogoPath,
	}
}
