package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/quantlevels/internal/domain/dto"
	"github.com/guttosm/quantlevels/internal/domain/models"
	"github.com/guttosm/quantlevels/internal/service"
)

const dateLayout = "2006-01-02"

// Handler provides HTTP handlers for the stored price levels.
//
// Responsibilities:
//   - Validate incoming HTTP query parameters
//   - Delegate lookups to the level service
//   - Translate domain rows into response DTOs
type Handler struct {
	svc           service.LevelService
	defaultTicker string
}

// NewHandler constructs a new Handler instance.
//
// Parameters:
//   - svc (service.LevelService): read side over stored levels.
//   - defaultTicker (string): instrument used when the request names none.
func NewHandler(svc service.LevelService, defaultTicker string) *Handler {
	return &Handler{svc: svc, defaultTicker: strings.ToUpper(defaultTicker)}
}

// GetLevels handles GET /api/v1/levels requests.
//
// Query Parameters:
//   - date (string, optional): level date in YYYY-MM-DD format; latest stored date when absent.
//   - ticker (string, optional): instrument, defaults to the configured one.
//   - zone (string, optional): BUY, SELL or NONE.
//
// GetLevels godoc
// @Summary      List stored price levels
// @Description  Returns the levels stored for a date, highest start price first
// @Tags         levels
// @Accept       json
// @Produce      json
// @Param        date    query     string  false  "Level date in YYYY-MM-DD" example(2025-08-28)
// @Param        ticker  query     string  false  "Instrument" example(SPX)
// @Param        zone    query     string  false  "Zone filter" Enums(BUY, SELL, NONE)
// @Success      200     {object}  dto.LevelsResponse  "Success"
// @Failure      400     {object}  dto.ErrorResponse   "Bad Request"
// @Failure      404     {object}  dto.ErrorResponse   "Not Found"
// @Failure      500     {object}  dto.ErrorResponse   "Internal Error"
// @Router       /api/v1/levels [get]
func (h *Handler) GetLevels(c *gin.Context) {
	// ─── Parse optional "date" param ──────────────────────────
	var date *time.Time
	if s := strings.TrimSpace(c.Query("date")); s != "" {
		parsed, err := time.Parse(dateLayout, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid date format, expected YYYY-MM-DD", err))
			return
		}
		date = &parsed
	}

	// ─── Parse optional "zone" param ──────────────────────────
	var zone *models.Zone
	if s := strings.TrimSpace(c.Query("zone")); s != "" {
		z, err := models.ParseZone(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid zone, expected BUY, SELL or NONE", err))
			return
		}
		zone = &z
	}

	ticker := strings.ToUpper(strings.TrimSpace(c.Query("ticker")))
	if ticker == "" {
		ticker = h.defaultTicker
	}

	// ─── Query service (with request context) ─────────────────
	day, rows, err := h.svc.GetLevels(c.Request.Context(), date, ticker, zone)
	if errors.Is(err, service.ErrNoData) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("no levels found", nil))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to fetch levels", err))
		return
	}

	// ─── Build and return response DTO ────────────────────────
	resp := dto.LevelsResponse{
		Date:   day.Format(dateLayout),
		Count:  len(rows),
		Levels: make([]dto.LevelResponse, 0, len(rows)),
	}
	for _, r := range rows {
		resp.Levels = append(resp.Levels, dto.LevelResponse{
			Date:       r.Date.Format(dateLayout),
			Ticker:     r.Instrument,
			StartPrice: r.StartPrice,
			EndPrice:   r.EndPrice,
			Comment:    r.Comment,
			Zone:       string(r.Zone),
			SourceLink: r.SourceLink,
		})
	}

	c.JSON(http.StatusOK, resp)
}
