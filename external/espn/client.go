package espn

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/lunchpool/pickem/internal/domain/week"
	"github.com/lunchpool/pickem/internal/platform/logging"
	"github.com/lunchpool/pickem/internal/platform/resilience"
	"github.com/lunchpool/pickem/internal/usecase"
	"github.com/valyala/fasthttp"
)

const (
	defaultScoreboardURL = "https://site.api.espn.com/apis/site/v2/sports/football/nfl/scoreboard"
	defaultTeamsURL      = "https://site.api.espn.com/apis/site/v2/sports/football/nfl/teams"
	defaultSummaryURL    = "https://site.api.espn.com/apis/v2/sports/football/nfl/summary"
	maxResponseBytes     = 6 << 20
)

var errESPNTransient = crerr.New("espn transient failure")

// TeamSource supplies the roster when the live API answers with an error or
// an empty list. The static provider satisfies it.
type TeamSource interface {
	Teams(ctx context.Context) ([]usecase.ExternalTeam, error)
}

type ClientConfig struct {
	HTTPClient *http.Client
	// BaseURL rebases every endpoint under one root ({base}/scoreboard,
	// {base}/teams, {base}/summary). Empty keeps the public ESPN hosts.
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	TeamFallback   TeamSource
}

type Client struct {
	httpClient    *http.Client
	fastClient    *fasthttp.Client
	scoreboardURL string
	teamsURL      string
	summaryURL    string
	timeout       time.Duration
	maxRetries    int
	logger        *logging.Logger
	breaker       *resilience.CircuitBreaker
	flight        resilience.SingleFlight
	fallback      TeamSource
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = timeout
	}

	scoreboardURL := defaultScoreboardURL
	teamsURL := defaultTeamsURL
	summaryURL := defaultSummaryURL
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		scoreboardURL = base + "/scoreboard"
		teamsURL = base + "/teams"
		summaryURL = base + "/summary"
	}

	return &Client{
		httpClient: httpClient,
		fastClient: &fasthttp.Client{
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxResponseBytes,
		},
		scoreboardURL: scoreboardURL,
		teamsURL:      teamsURL,
		summaryURL:    summaryURL,
		timeout:       timeout,
		maxRetries:    maxInt(cfg.MaxRetries, 0),
		logger:        logger,
		breaker:       resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		fallback:      cfg.TeamFallback,
	}
}

func (c *Client) Name() string { return "espn" }

// Teams fetches the roster with logo URLs. The answer comes in two shapes
// depending on the endpoint revision; both are handled. An error or an empty
// answer falls back to the static roster when one is configured.
func (c *Client) Teams(ctx context.Context) ([]usecase.ExternalTeam, error) {
	query := url.Values{}
	query.Set("limit", "100")

	var payload map[string]any
	if _, err := c.doJSON(ctx, c.teamsURL, query, &payload); err != nil {
		if c.fallback != nil {
			c.logger.WarnContext(ctx, "espn teams fetch failed, serving static roster", "error", err)
			return c.fallback.Teams(ctx)
		}
		return nil, fmt.Errorf("fetch espn teams: %w", err)
	}

	teams := parseTeams(payload)
	if len(teams) == 0 && c.fallback != nil {
		c.logger.WarnContext(ctx, "espn teams answer was empty, serving static roster")
		return c.fallback.Teams(ctx)
	}

	return teams, nil
}

// WeekSchedule lists the published matchups for one week. Events missing a
// kickoff time or either side are skipped.
func (c *Client) WeekSchedule(ctx context.Context, year int, weekNumber int, segment week.Segment) ([]usecase.ExternalGame, error) {
	events, err := c.fetchScoreboard(ctx, year, weekNumber, segment)
	if err != nil {
		return nil, err
	}

	games := make([]usecase.ExternalGame, 0, len(events))
	for _, event := range events {
		game, ok := parseScoreboardGame(event)
		if !ok {
			continue
		}
		games = append(games, game)
	}

	return games, nil
}

// WeekScoreboard lists per-event state and scores from the same endpoint.
// The reconciler uses it as the coarse fallback when summaries lag.
func (c *Client) WeekScoreboard(ctx context.Context, year int, weekNumber int, segment week.Segment) ([]usecase.ExternalScoreboardEvent, error) {
	events, err := c.fetchScoreboard(ctx, year, weekNumber, segment)
	if err != nil {
		return nil, err
	}

	rows := make([]usecase.ExternalScoreboardEvent, 0, len(events))
	for _, event := range events {
		row, ok := parseScoreboardEvent(event)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// LiveDetail fetches one event summary over the fasthttp client. This is the
// polling hot path, so it makes a single attempt and lets the next poll retry.
// A 404 or 410 answer maps to ErrLiveEventNotFound for the negative cache.
func (c *Client) LiveDetail(ctx context.Context, eventID string) (usecase.LiveSnapshot, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return usecase.LiveSnapshot{}, fmt.Errorf("%w: event id is required", usecase.ErrInvalidInput)
	}

	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "espn circuit breaker rejected request", "state", c.breaker.State())
		return usecase.LiveSnapshot{}, fmt.Errorf("%w: nfl data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	fullURL := c.summaryURL + "?event=" + url.QueryEscape(eventID)
	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.fetchSummary(ctx, fullURL)
		c.recordCircuitResult(reqErr)
		return raw, reqErr
	})
	if err != nil {
		return usecase.LiveSnapshot{}, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return usecase.LiveSnapshot{}, fmt.Errorf("unexpected response payload type %T", out)
	}

	var payload map[string]any
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return usecase.LiveSnapshot{}, fmt.Errorf("decode espn summary event_id=%s: %w", eventID, err)
	}

	snapshot, ok := parseSummary(eventID, payload)
	if !ok {
		return usecase.LiveSnapshot{}, fmt.Errorf("espn summary event_id=%s has no competition header", eventID)
	}

	return snapshot, nil
}

func (c *Client) fetchSummary(ctx context.Context, fullURL string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := c.fastClient.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("%w: fetch espn summary: %v", errESPNTransient, err)
	}

	status := resp.StatusCode()
	switch {
	case status == http.StatusNotFound || status == http.StatusGone:
		return nil, fmt.Errorf("%w: espn summary status=%d", usecase.ErrLiveEventNotFound, status)
	case status >= 200 && status < 300:
		// The response body is pooled; it must be copied before release.
		body := resp.Body()
		out := make([]byte, len(body))
		copy(out, body)
		return out, nil
	case isRetryableStatus(status):
		return nil, fmt.Errorf("%w: espn summary status=%d body=%s", errESPNTransient, status, abbreviateBody(resp.Body()))
	default:
		return nil, fmt.Errorf("espn summary status=%d body=%s", status, abbreviateBody(resp.Body()))
	}
}

// fetchScoreboard tries candidate years [y, y+1] to cover the New Year
// boundary, first with the year parameter and then with dates=YYYY. The first
// answer carrying events wins. All attempts answering empty yields an empty
// slice; the last error surfaces only when no attempt produced an answer.
func (c *Client) fetchScoreboard(ctx context.Context, year int, weekNumber int, segment week.Segment) ([]map[string]any, error) {
	if year <= 0 || weekNumber <= 0 {
		return nil, fmt.Errorf("%w: year and week must be greater than zero", usecase.ErrInvalidInput)
	}
	if !segment.Valid() {
		return nil, fmt.Errorf("%w: invalid season segment %d", usecase.ErrInvalidInput, int(segment))
	}

	var lastErr error
	answered := false
	for _, candidate := range []int{year, year + 1} {
		for _, useDates := range []bool{false, true} {
			query := url.Values{}
			query.Set("week", strconv.Itoa(weekNumber))
			query.Set("seasontype", strconv.Itoa(int(segment)))
			if useDates {
				query.Set("dates", strconv.Itoa(candidate))
			} else {
				query.Set("year", strconv.Itoa(candidate))
			}

			var payload map[string]any
			if _, err := c.doJSON(ctx, c.scoreboardURL, query, &payload); err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				lastErr = err
				c.logger.DebugContext(ctx, "espn scoreboard attempt failed",
					"year", candidate,
					"week", weekNumber,
					"seasontype", int(segment),
					"dates_param", useDates,
					"error", err,
				)
				continue
			}

			answered = true
			events := mapList(payload, "events")
			c.logger.DebugContext(ctx, "espn scoreboard answered",
				"year", candidate,
				"week", weekNumber,
				"seasontype", int(segment),
				"dates_param", useDates,
				"events", len(events),
			)
			if len(events) > 0 {
				return events, nil
			}
		}
	}

	if !answered && lastErr != nil {
		return nil, fmt.Errorf("fetch espn scoreboard year=%d week=%d: %w", year, weekNumber, lastErr)
	}

	c.logger.WarnContext(ctx, "espn scoreboard returned no events",
		"year", year,
		"week", weekNumber,
		"seasontype", int(segment),
	)
	return nil, nil
}

func (c *Client) doJSON(ctx context.Context, endpoint string, query url.Values, target any) ([]byte, error) {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "espn circuit breaker rejected request", "state", c.breaker.State())
		return nil, fmt.Errorf("%w: nfl data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	fullURL := endpoint
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		c.recordCircuitResult(reqErr)
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode espn payload: %w", err)
	}

	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errESPNTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errESPNTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: espn status=%d body=%s", errESPNTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("espn status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("espn request failed")
	}
	c.logger.WarnContext(ctx, "espn request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) recordCircuitResult(err error) {
	if err != nil && isESPNCircuitFailure(err) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func isESPNCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errESPNTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func parseTeams(payload map[string]any) []usecase.ExternalTeam {
	rows := mapList(payload, "teams")
	if len(rows) == 0 {
		if sports := mapList(payload, "sports"); len(sports) > 0 {
			if leagues := mapList(sports[0], "leagues"); len(leagues) > 0 {
				rows = mapList(leagues[0], "teams")
			}
		}
	}

	teams := make([]usecase.ExternalTeam, 0, len(rows))
	for _, row := range rows {
		team := getMap(row, "team")
		if team == nil {
			team = row
		}
		abbr := strings.ToUpper(getString(team, "abbreviation"))
		if abbr == "" {
			continue
		}

		name := firstNonEmpty(getString(team, "name"), getString(team, "displayName"), abbr)
		logoPath := ""
		if logos := mapList(team, "logos"); len(logos) > 0 {
			logoPath = getString(logos[0], "href")
		}

		teams = append(teams, usecase.ExternalTeam{
			Abbr:     abbr,
			Name:     name,
			Location: getString(team, "location"),
			Slug:     strings.ToLower(abbr),
			AltAbbrs: nil,
			LogoPath: logoPath,
		})
	}

	return teams
}

func parseScoreboardGame(event map[string]any) (usecase.ExternalGame, bool) {
	comps := mapList(event, "competitions")
	if len(comps) == 0 {
		return usecase.ExternalGame{}, false
	}
	comp := comps[0]

	dateRaw := firstNonEmpty(getString(comp, "date"), getString(event, "date"))
	start, ok := parseEventTime(dateRaw)
	if !ok {
		return usecase.ExternalGame{}, false
	}

	var homeAbbr, awayAbbr string
	for _, raw := range mapList(comp, "competitors") {
		abbr := strings.ToUpper(getString(getMap(raw, "team"), "abbreviation"))
		switch getString(raw, "homeAway") {
		case "home":
			homeAbbr = abbr
		case "away":
			awayAbbr = abbr
		}
	}
	if homeAbbr == "" || awayAbbr == "" {
		return usecase.ExternalGame{}, false
	}

	return usecase.ExternalGame{
		ProviderGameID: idString(event["id"]),
		HomeAbbr:       homeAbbr,
		AwayAbbr:       awayAbbr,
		StartTime:      start,
	}, true
}

func parseScoreboardEvent(event map[string]any) (usecase.ExternalScoreboardEvent, bool) {
	eventID := idString(event["id"])
	if eventID == "" {
		return usecase.ExternalScoreboardEvent{}, false
	}
	comps := mapList(event, "competitions")
	if len(comps) == 0 {
		return usecase.ExternalScoreboardEvent{}, false
	}
	comp := comps[0]

	row := usecase.ExternalScoreboardEvent{
		EventID: eventID,
		State:   getString(getMap(getMap(comp, "status"), "type"), "state"),
	}
	for _, raw := range mapList(comp, "competitors") {
		score := intPtrValue(raw["score"])
		switch getString(raw, "homeAway") {
		case "home":
			row.HomeScore = score
		case "away":
			row.AwayScore = score
		}
	}

	return row, true
}

// parseSummary maps one event summary onto a LiveSnapshot. Everything past
// the competition header is optional and parsed best effort.
func parseSummary(eventID string, payload map[string]any) (usecase.LiveSnapshot, bool) {
	header := getMap(payload, "header")
	comps := mapList(header, "competitions")
	if len(comps) == 0 {
		return usecase.LiveSnapshot{}, false
	}
	comp := comps[0]

	status := getMap(comp, "status")
	snapshot := usecase.LiveSnapshot{
		EventID:      eventID,
		State:        strings.ToLower(getString(getMap(status, "type"), "state")),
		DisplayClock: getString(status, "displayClock"),
		Period:       intPtrValue(status["period"]),
	}

	var homeAbbr, awayAbbr string
	for _, raw := range mapList(comp, "competitors") {
		abbr := strings.ToUpper(getString(getMap(raw, "team"), "abbreviation"))
		score := intPtrValue(raw["score"])
		timeouts := intPtrValue(raw["timeouts"])
		record := ""
		if records := mapList(raw, "records"); len(records) > 0 {
			record = getString(records[0], "summary")
		}

		switch getString(raw, "homeAway") {
		case "home":
			homeAbbr = abbr
			snapshot.HomeScore = score
			snapshot.HomeTimeouts = timeouts
			snapshot.HomeRecord = record
		case "away":
			awayAbbr = abbr
			snapshot.AwayScore = score
			snapshot.AwayTimeouts = timeouts
			snapshot.AwayRecord = record
		}
	}

	situation := getMap(comp, "situation")
	snapshot.DownDistance = firstNonEmpty(getString(situation, "downDistanceText"), getString(situation, "shortDownDistanceText"))
	snapshot.YardLine = scalarString(situation["yardLine"])
	if redZone, ok := situation["isRedZone"].(bool); ok {
		snapshot.IsRedZone = &redZone
	}
	if possession := strings.ToUpper(getString(situation, "possession")); possession != "" {
		switch possession {
		case homeAbbr:
			snapshot.Possession = "home"
		case awayAbbr:
			snapshot.Possession = "away"
		}
	}
	lastPlay := firstNonEmpty(getString(situation, "lastPlayText"), getString(situation, "lastPlay"))
	if lastPlay == "" {
		lastPlay = getString(getMap(situation, "lastPlay"), "text")
	}

	venue := getMap(comp, "venue")
	snapshot.VenueName = firstNonEmpty(getString(venue, "fullName"), getString(venue, "name"))
	address := getMap(venue, "address")
	snapshot.VenueCity = getString(address, "city")
	snapshot.VenueState = getString(address, "state")

	if broadcasts := mapList(comp, "broadcasts"); len(broadcasts) > 0 {
		names := make([]string, 0, 2)
		for _, raw := range getList(broadcasts[0], "names") {
			if name, ok := raw.(string); ok && strings.TrimSpace(name) != "" {
				names = append(names, name)
			}
		}
		if len(names) > 0 {
			snapshot.Network = strings.Join(names, ", ")
		} else {
			snapshot.Network = firstNonEmpty(getString(broadcasts[0], "shortName"), getString(broadcasts[0], "name"))
		}
	}

	weather := getMap(getMap(payload, "gameInfo"), "weather")
	snapshot.Weather = getString(weather, "displayValue")
	if snapshot.Weather == "" {
		if temp, ok := intValue(weather["temperature"]); ok {
			unit := getString(weather, "unit")
			if unit == "" {
				unit = "F"
			}
			if condition := getString(weather, "condition"); condition != "" {
				snapshot.Weather = fmt.Sprintf("%d°%s %s", temp, unit, condition)
			} else {
				snapshot.Weather = fmt.Sprintf("%d°%s", temp, unit)
			}
		}
	}

	snapshot.Odds = parseOdds(comp, payload)
	snapshot.WinProbHome, snapshot.WinProbAway = parseWinProbability(payload)

	current := getMap(getMap(payload, "drives"), "current")
	if current != nil {
		var playCount, yards *int
		if v, ok := intValue(current["yards"]); ok {
			yards = &v
		}
		playList, isList := current["plays"].([]any)
		if isList {
			n := len(playList)
			playCount = &n
			if yards == nil && len(playList) > 0 {
				total := 0
				for _, rawPlay := range playList {
					if v, ok := intValue(asMap(rawPlay)["yards"]); ok {
						total += v
					}
				}
				yards = &total
			}
		} else if n, ok := intValue(current["plays"]); ok {
			playCount = &n
		}

		switch {
		case playCount != nil && yards != nil:
			snapshot.DriveSummary = fmt.Sprintf("%d plays, %d yds", *playCount, *yards)
		case playCount != nil:
			snapshot.DriveSummary = fmt.Sprintf("%d plays", *playCount)
		case yards != nil:
			snapshot.DriveSummary = fmt.Sprintf("%d yds", *yards)
		}

		if lastPlay == "" && isList && len(playList) > 0 {
			play := asMap(playList[len(playList)-1])
			lastPlay = firstNonEmpty(getString(play, "text"), getString(play, "description"))
		}
	}
	snapshot.LastPlay = lastPlay

	return snapshot, true
}

func parseOdds(comp, payload map[string]any) string {
	var odds map[string]any
	if rows := mapList(comp, "odds"); len(rows) > 0 {
		odds = rows[0]
	}
	if odds == nil {
		if rows := mapList(payload, "pickcenter"); len(rows) > 0 {
			odds = rows[0]
		}
	}
	if odds == nil {
		return ""
	}

	if details := getString(odds, "details"); details != "" {
		return details
	}

	parts := make([]string, 0, 3)
	if spread, ok := floatValue(odds["spread"]); ok {
		parts = append(parts, "Spread "+formatOddsNumber(spread))
	}
	if overUnder, ok := floatValue(odds["overUnder"]); ok {
		parts = append(parts, "O/U "+formatOddsNumber(overUnder))
	}
	if provider := getString(getMap(odds, "provider"), "name"); provider != "" {
		parts = append(parts, provider)
	}

	return strings.Join(parts, " • ")
}

// parseWinProbability prefers the most recent winprobability sample, where
// homeWinPercentage runs 0..1, and falls back to the predictor projections,
// which already run 0..100.
func parseWinProbability(payload map[string]any) (*float64, *float64) {
	if samples := mapList(payload, "winprobability"); len(samples) > 0 {
		if raw, ok := floatValue(samples[len(samples)-1]["homeWinPercentage"]); ok {
			home := roundPercent(raw * 100)
			away := roundPercent(100 - home)
			return &home, &away
		}
	}

	predictor := getMap(payload, "predictor")
	homeProj, okHome := floatValue(getMap(predictor, "homeTeam")["gameProjection"])
	awayProj, okAway := floatValue(getMap(predictor, "awayTeam")["gameProjection"])
	if okHome && okAway {
		home := roundPercent(homeProj)
		away := roundPercent(awayProj)
		return &home, &away
	}

	return nil, nil
}

func parseEventTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04Z07:00"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func getString(src map[string]any, key string) string {
	if src == nil {
		return ""
	}
	value, ok := src[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

func getMap(src map[string]any, key string) map[string]any {
	if src == nil {
		return nil
	}
	return asMap(src[key])
}

func getList(src map[string]any, key string) []any {
	if src == nil {
		return nil
	}
	list, _ := src[key].([]any)
	return list
}

// mapList returns the map-typed entries of a list field, dropping the rest.
func mapList(src map[string]any, key string) []map[string]any {
	raw := getList(src, key)
	if len(raw) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m := asMap(item); m != nil {
			out = append(out, m)
		}
	}
	return out
}

func asMap(raw any) map[string]any {
	m, _ := raw.(map[string]any)
	return m
}

func intValue(raw any) (int, bool) {
	switch typed := raw.(type) {
	case float64:
		return int(typed), true
	case float32:
		return int(typed), true
	case int:
		return typed, true
	case int64:
		return int(typed), true
	case string:
		v, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

func intPtrValue(raw any) *int {
	v, ok := intValue(raw)
	if !ok {
		return nil
	}
	return &v
}

func floatValue(raw any) (float64, bool) {
	switch typed := raw.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	default:
		return 0, false
	}
}

func scalarString(raw any) string {
	switch typed := raw.(type) {
	case string:
		return strings.TrimSpace(typed)
	case float64:
		if typed == math.Trunc(typed) {
			return strconv.FormatInt(int64(typed), 10)
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	default:
		return ""
	}
}

func idString(raw any) string {
	return scalarString(raw)
}

func formatOddsNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func roundPercent(v float64) float64 {
	return math.Round(v*10) / 10
}

func firstNonEmpty(values ...string) string {
	for _, item := range values {
		if strings.TrimSpace(item) != "" {
			return strings.TrimSpace(item)
		}
	}
	return ""
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
