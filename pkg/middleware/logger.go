package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/verzoeken/pkg/context"
)

// quietPrefixes are health check and scrape paths that are not logged.
var quietPrefixes = []string{"/health", "/metrics"}

// Logger writes one line per request. Server errors log at error level, client errors at warn.
func Logger(logger ectologger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			for _, prefix := range quietPrefixes {
				if strings.HasPrefix(req.URL.Path, prefix) {
					return nil
				}
			}

			ctx := req.Context()
			res := c.Response()
			log := logger.WithContext(ctx).WithFields(map[string]any{
				"request_id":    context.GetRequestID(ctx),
				"user_id":       context.GetUserID(ctx),
				"method":        req.Method,
				"uri":           req.RequestURI,
				"route":         c.Path(),
				"status":        res.Status,
				"remote_ip":     c.RealIP(),
				"host":          req.Host,
				"user_agent":    req.UserAgent(),
				"response_time": time.Since(start),
				"request_size":  req.Header.Get(echo.HeaderContentLength),
				"response_size": strconv.FormatInt(res.Size, 10),
			})

			switch {
			case res.Status >= http.StatusInternalServerError:
				log.Error("Request")
			case res.Status >= http.StatusBadRequest:
				log.Warn("Request")
			default:
				log.Info("Request")
			}
			return nil
		}
	}
}
