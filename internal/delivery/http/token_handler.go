package http

import (
	"errors"
	"net/http"
	"strconv"

	"golang-dex-token-analyzer/internal/dto"
	"golang-dex-token-analyzer/internal/repository"
	"golang-dex-token-analyzer/internal/service"
	"golang-dex-token-analyzer/pkg/logger"

	"github.com/labstack/echo/v4"
)

// TokenHandler handles HTTP requests for analyzed tokens.
type TokenHandler struct {
	queryService   service.TokenQueryService
	updaterService service.TokenUpdaterService
	taskService    service.TokenTaskService
	logger         *logger.Logger
}

// NewTokenHandler creates a new TokenHandler. taskService may be nil, in which case
// asynchronous updates are refused.
func NewTokenHandler(
	queryService service.TokenQueryService,
	updaterService service.TokenUpdaterService,
	taskService service.TokenTaskService,
	logger *logger.Logger,
) *TokenHandler {
	return &TokenHandler{
		queryService:   queryService,
		updaterService: updaterService,
		taskService:    taskService,
		logger:         logger,
	}
}

// RegisterRoutes registers the token routes to the Echo group.
func (h *TokenHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/tokens", h.ListTokens)
	g.GET("/tokens/check", h.CheckToken)
	g.POST("/tokens/update", h.UpdateTokens)
	g.GET("/tokens/:id", h.GetToken)
	g.POST("/tokens/:id/update", h.RefreshToken)
	g.GET("/recommendations", h.GetRecommendations)
	g.GET("/dashboard", h.GetDashboard)
}

// ListTokens godoc
// @Summary List analyzed tokens
// @Description List stored tokens with optional filters, ordering and pagination
// @Tags tokens
// @Produce  json
// @Param   recommendation  query  string  false  "BUY, HOLD or AVOID"
// @Param   symbol          query  string  false  "Exact symbol"
// @Param   search          query  string  false  "Substring of name or symbol"
// @Param   ordering        query  string  false  "Comma separated columns, prefix with - for descending"
// @Param   limit           query  int     false  "Page size (max 200)"
// @Param   offset          query  int     false  "Page offset"
// @Success 200 {object} dto.TokenListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tokens [get]
func (h *TokenHandler) ListTokens(c echo.Context) error {
	var params dto.TokenListParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid query parameters"})
	}

	resp, err := h.queryService.ListTokens(c.Request().Context(), params)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetToken godoc
// @Summary Get a token by ID
// @Tags tokens
// @Produce  json
// @Param   id  path  int  true  "Token ID"
// @Success 200 {object} entity.Token
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tokens/{id} [get]
func (h *TokenHandler) GetToken(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid token ID"})
	}

	token, err := h.queryService.GetToken(c.Request().Context(), id)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, token)
}

// CheckToken godoc
// @Summary Look up a token
// @Description Search the store by name or address and fall back to a live DexScreener search
// @Tags tokens
// @Produce  json
// @Param   search  query  string  true   "Name, symbol or address"
// @Param   type    query  string  false  "name (default) or address"
// @Success 200 {object} dto.TokenCheckResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /tokens/check [get]
func (h *TokenHandler) CheckToken(c echo.Context) error {
	resp, err := h.queryService.CheckToken(c.Request().Context(), c.QueryParam("search"), c.QueryParam("type"))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateTokens godoc
// @Summary Run a batch update
// @Description Fetch the default chain and reconcile every pair. With async=true the run is queued on the worker stream instead.
// @Tags tokens
// @Produce  json
// @Param   async  query  bool  false  "Queue the update instead of running it"
// @Success 200 {object} dto.UpdateResponse
// @Success 202 {object} dto.UpdateResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tokens/update [post]
func (h *TokenHandler) UpdateTokens(c echo.Context) error {
	ctx := c.Request().Context()

	if async, _ := strconv.ParseBool(c.QueryParam("async")); async {
		if h.taskService == nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "Task queue is not configured"})
		}
		id, err := h.taskService.Publish(ctx, dto.UpdateTask{Kind: dto.TaskUpdateAll})
		if err != nil {
			return h.errorResponse(c, err)
		}
		return c.JSON(http.StatusAccepted, dto.UpdateResponse{Success: true, Queued: true, MessageID: id})
	}

	report, err := h.updaterService.UpdateAll(ctx)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.UpdateResponse{Success: true, UpdatedCount: report.Updated, Report: report})
}

// RefreshToken godoc
// @Summary Refresh one token
// @Description Re-fetch a stored token by its symbol, then by its name
// @Tags tokens
// @Produce  json
// @Param   id  path  int  true  "Token ID"
// @Success 200 {object} entity.Token
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /tokens/{id}/update [post]
func (h *TokenHandler) RefreshToken(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid token ID"})
	}

	token, err := h.updaterService.RefreshToken(c.Request().Context(), id)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, token)
}

// GetRecommendations godoc
// @Summary List BUY picks
// @Tags recommendations
// @Produce  json
// @Param   limit  query  int  false  "Maximum number of tokens"
// @Success 200 {array} entity.Token
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /recommendations [get]
func (h *TokenHandler) GetRecommendations(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid limit"})
		}
		limit = n
	}

	tokens, err := h.queryService.Recommendations(c.Request().Context(), limit)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}

// GetDashboard godoc
// @Summary Recommendation counts and top BUY picks
// @Tags dashboard
// @Produce  json
// @Success 200 {object} dto.DashboardResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /dashboard [get]
func (h *TokenHandler) GetDashboard(c echo.Context) error {
	resp, err := h.queryService.Dashboard(c.Request().Context())
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// errorResponse maps service and repository errors onto HTTP status codes.
func (h *TokenHandler) errorResponse(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidArgument),
		errors.Is(err, service.ErrEmptyQuery),
		errors.Is(err, service.ErrInvalidTask),
		errors.Is(err, repository.ErrTooManyAddresses):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrTokenNotFound),
		errors.Is(err, service.ErrTokenNotFound),
		errors.Is(err, service.ErrMissingBaseTokenAddress),
		errors.Is(err, service.ErrMissingPairAddress):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrUpstream),
		errors.Is(err, service.ErrNoPairs):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(c.Request().Context(), "Request failed",
			logger.StringField("path", c.Path()),
			logger.ErrorField(err))
		return c.JSON(status, echo.Map{"error": "Internal server error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}
