package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/seo-optimizer/competitor/comparison"
	"github.com/seo-optimizer/competitor/competitor"
	"github.com/seo-optimizer/competitor/render"
	"github.com/seo-optimizer/competitor/stats"
)

const msgInvalidBody = "Invalid request body"

// CompareResponse is the body of a successful POST /api/compare.
type CompareResponse struct {
	Status  competitor.Status  `json:"status"`
	Report  *comparison.Report `json:"report"`
	Summary comparison.Summary `json:"summary"`
}

// Compare returns a handler for POST /api/compare.
func Compare(svc *competitor.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req competitor.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": msgInvalidBody,
			})
			return
		}

		result := svc.Analyze(c.Request.Context(), req, nil)
		switch {
		case result.Invalid():
			c.JSON(http.StatusBadRequest, gin.H{"error": result.Message})
		case result.Status != competitor.StatusDone:
			c.JSON(http.StatusBadGateway, gin.H{"error": result.Message})
		default:
			c.JSON(http.StatusOK, CompareResponse{
				Status:  result.Status,
				Report:  result.Report,
				Summary: result.Report.Summary(),
			})
		}
	}
}

// Index returns a handler for GET / serving the empty form.
func Index() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "index", render.PageData{
			Result: &competitor.Result{Status: competitor.StatusIdle},
		})
	}
}

// Submit returns a handler for POST / that renders the report page.
func Submit(svc *competitor.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req competitor.Request
		if err := c.ShouldBind(&req); err != nil {
			log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("invalid form submission")
			c.HTML(http.StatusBadRequest, "index", render.PageData{
				Result: &competitor.Result{Status: competitor.StatusFailed, Message: msgInvalidBody},
			})
			return
		}

		result := svc.Analyze(c.Request.Context(), req, nil)
		status := http.StatusOK
		switch {
		case result.Invalid():
			status = http.StatusBadRequest
		case result.Status != competitor.StatusDone:
			status = http.StatusBadGateway
		}

		c.HTML(status, "index", render.PageData{Request: req, Result: &result})
	}
}

// Statistics returns a handler for GET /api/statistics. The per-month history
// is only exposed in dev mode.
func Statistics(storage *stats.Storage, devMode bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if storage == nil {
			c.JSON(http.StatusOK, gin.H{})
			return
		}

		body := gin.H{"currentMonth": storage.GetCurrentStats()}
		if devMode {
			months := make(map[string]stats.MonthlyStats)
			for _, m := range storage.GetAllMonths() {
				if s, ok := storage.GetMonthlyStats(m); ok {
					months[m] = s
				}
			}
			body["months"] = months
		}
		c.JSON(http.StatusOK, body)
	}
}
