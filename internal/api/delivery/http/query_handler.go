package http

import (
	"net/http"
	"strconv"

	"golang-crypto-picker/internal/api/service"
	"golang-crypto-picker/pkg/logger"

	"github.com/labstack/echo/v4"
)

const defaultRecentTradeLimit = 20

// QueryHandler handles HTTP requests for the read-only dashboard API.
type QueryHandler struct {
	queryService service.QueryService
	logger       *logger.Logger
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(queryService service.QueryService, logger *logger.Logger) *QueryHandler {
	return &QueryHandler{queryService: queryService, logger: logger}
}

// RegisterRoutes registers the query routes to the Echo group.
func (h *QueryHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/metrics/latest", h.GetLatestMetrics)
	g.GET("/trades/recent", h.GetRecentTrades)
	g.GET("/trades/pending", h.GetPendingTrades)
	g.GET("/models/history", h.GetModelHistory)
	g.GET("/models/current", h.GetCurrentVersion)
}

// GetLatestMetrics godoc
// @Summary Get latest performance metrics
// @Description Current model version, its latest backtest metrics and live trade performance
// @Tags metrics
// @Produce  json
// @Success 200 {object} dto.LatestMetrics
// @Failure 500 {object} dto.ErrorResponse
// @Router /metrics/latest [get]
func (h *QueryHandler) GetLatestMetrics(c echo.Context) error {
	metrics, err := h.queryService.GetLatestMetrics(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get latest metrics", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get latest metrics"})
	}
	return c.JSON(http.StatusOK, metrics)
}

// GetRecentTrades godoc
// @Summary Get recent completed trades
// @Description Most recent completed trades, newest first
// @Tags trades
// @Produce  json
// @Param   n  query   int false   "Number of trades to return"
// @Success 200 {array} entity.Trade
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /trades/recent [get]
func (h *QueryHandler) GetRecentTrades(c echo.Context) error {
	limit := defaultRecentTradeLimit
	if nStr := c.QueryParam("n"); nStr != "" {
		n, err := strconv.Atoi(nStr)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid n parameter"})
		}
		limit = n
	}

	trades, err := h.queryService.GetRecentTrades(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to get recent trades", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get recent trades"})
	}
	return c.JSON(http.StatusOK, trades)
}

// GetPendingTrades godoc
// @Summary Get pending trades
// @Description Trades that have been opened but have no recorded outcome yet
// @Tags trades
// @Produce  json
// @Success 200 {array} entity.Trade
// @Failure 500 {object} dto.ErrorResponse
// @Router /trades/pending [get]
func (h *QueryHandler) GetPendingTrades(c echo.Context) error {
	trades, err := h.queryService.GetPendingTrades(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get pending trades", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get pending trades"})
	}
	return c.JSON(http.StatusOK, trades)
}

// GetModelHistory godoc
// @Summary Get the model version ledger
// @Description Every promoted model version with its promotion metrics, oldest first
// @Tags models
// @Produce  json
// @Success 200 {array} dto.ModelHistoryEntry
// @Failure 500 {object} dto.ErrorResponse
// @Router /models/history [get]
func (h *QueryHandler) GetModelHistory(c echo.Context) error {
	history, err := h.queryService.GetModelHistory(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get model history", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get model history"})
	}
	return c.JSON(http.StatusOK, history)
}

// GetCurrentVersion godoc
// @Summary Get the active model version
// @Description The version the ranking engine uses right now
// @Tags models
// @Produce  json
// @Success 200 {object} dto.CurrentVersion
// @Failure 500 {object} dto.ErrorResponse
// @Router /models/current [get]
func (h *QueryHandler) GetCurrentVersion(c echo.Context) error {
	version, err := h.queryService.GetCurrentVersion(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get current version", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get current version"})
	}
	return c.JSON(http.StatusOK, version)
}
