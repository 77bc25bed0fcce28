package monitoring

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"talleres-system/security"
)

// StartMetricsServer serves the Prometheus scrape endpoint on its own port,
// rate limited and CORS-wrapped so the web dashboard can read it directly.
func StartMetricsServer(port string, limiter *security.RateLimiter) {
	e := echo.New()
	e.Use(limiter.BlockScrapers())
	e.Use(limiter.ScrapeRateLimit())
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/livez", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	handler := cors.Default().Handler(e)
	srv := &http.Server{Addr: ":" + port, Handler: handler}

	go func() {
		log.Printf("Metrics server listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Metrics server stopped: %v", err)
		}
	}()
}
