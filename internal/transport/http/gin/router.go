package httpgin

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/perzequiel/woki-brain/internal/domain"
	"github.com/perzequiel/woki-brain/internal/service"
	"github.com/perzequiel/woki-brain/internal/service/allocation"
)

func NewRouter(
	svcs *service.Services,
	limiter RateLimiter,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware(logger), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	woki := r.Group("/woki")
	{
		woki.GET("/discover", handleDiscover(svcs))
		woki.POST("/bookings", RateLimitMiddleware(limiter, logger), handleCreateBooking(svcs))
		woki.GET("/bookings/day", handleListDay(svcs))
	}

	return r
}

// @Summary  Discover seating options
// @Param    restaurantId query string true  "Restaurant ID"
// @Param    sectorId     query string true  "Sector ID"
// @Param    date         query string true  "YYYY-MM-DD"
// @Param    partySize    query int    true  "Party size"
// @Param    duration     query int    true  "Minutes, multiple of 15 in [30,180]"
// @Param    windowStart  query string false "HH:MM"
// @Param    windowEnd    query string false "HH:MM"
// @Param    limit        query int    false "Max candidates (default 10)"
// @Success  200 {object} DiscoverResponse
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Failure  422 {object} ErrorResponse "no_capacity / outside_service_window"
// @Router   /woki/discover [get]
func handleDiscover(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q DiscoverQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			badRequest(c, err.Error())
			return
		}

		res, err := svcs.Discovery.Discover(c.Request.Context(), q.toQuery())
		if err != nil {
			respondErr(c, err)
			return
		}

		writeJSONWithCache(c, http.StatusOK, newDiscoverResponse(res), "private, max-age=5", true)
	}
}

// @Summary  Book the best candidate (idempotent)
// @Param    Idempotency-Key header string true "Client generated key"
// @Param    req body CreateBookingRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} domain.Booking
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "conflict, retry the request"
// @Failure  422 {object} ErrorResponse "no_capacity / outside_service_window"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /woki/bookings [post]
func handleCreateBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))

		b, err := svcs.Allocation.Allocate(c.Request.Context(), allocation.Request{
			Query: DiscoverQuery{
				RestaurantID:    req.RestaurantID,
				SectorID:        req.SectorID,
				Date:            req.Date,
				PartySize:       req.PartySize,
				DurationMinutes: req.DurationMinutes,
				WindowStart:     req.WindowStart,
				WindowEnd:       req.WindowEnd,
			}.toQuery(),
			IdempotencyKey: idemKey,
		})
		if err != nil {
			respondErr(c, err)
			return
		}

		c.Header("Idempotency-Key", idemKey)
		c.JSON(http.StatusCreated, b)
	}
}

// @Summary  List the bookings of a restaurant day
// @Param    restaurantId query string true  "Restaurant ID"
// @Param    sectorId     query string false "Sector ID"
// @Param    date         query string true  "YYYY-MM-DD"
// @Success  200 {object} bookings.Day
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /woki/bookings/day [get]
func handleListDay(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q DayQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			badRequest(c, err.Error())
			return
		}

		day, err := svcs.Bookings.ListDay(c.Request.Context(), q.RestaurantID, q.SectorID, q.Date)
		if err != nil {
			respondErr(c, err)
			return
		}

		writeJSONWithCache(c, http.StatusOK, day, "private, max-age=5", true)
	}
}

func badRequest(c *gin.Context, msg string) {
	c.Set("error_code", domain.CodeInvalidInput)
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: domain.CodeInvalidInput})
}

var statusByCode = map[string]int{
	domain.CodeInvalidInput:         http.StatusBadRequest,
	domain.CodeNotFound:             http.StatusNotFound,
	domain.CodeNoCapacity:           http.StatusUnprocessableEntity,
	domain.CodeOutsideServiceWindow: http.StatusUnprocessableEntity,
	domain.CodeConflict:             http.StatusConflict,
}

// respondErr maps err onto its wire code. Unclassified errors are logged by
// LoggingMiddleware and answered with a generic 500.
func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	code := domain.Code(err)
	c.Set("error_code", code)

	status, ok := statusByCode[code]
	if !ok {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: domain.CodeInternal})
		return
	}

	if code == domain.CodeConflict {
		c.Header("Retry-After", "1")
	}

	c.JSON(status, ErrorResponse{Error: publicMessage(err, code), Code: code})
}

var sentinelByCode = map[string]error{
	domain.CodeInvalidInput:         domain.ErrInvalidInput,
	domain.CodeNotFound:             domain.ErrNotFound,
	domain.CodeNoCapacity:           domain.ErrNoCapacity,
	domain.CodeOutsideServiceWindow: domain.ErrOutsideServiceWindow,
	domain.CodeConflict:             domain.ErrConflict,
}

// publicMessage drops the op chain in front of the domain error text.
func publicMessage(err error, code string) string {
	msg := err.Error()
	if sentinel, ok := sentinelByCode[code]; ok {
		if i := strings.Index(msg, sentinel.Error()); i >= 0 {
			return msg[i:]
		}
	}
	return msg
}
