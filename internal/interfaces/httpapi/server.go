package httpapi

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/riskibarqy/match-analysis/internal/platform/logging"
)

// RouterOptions toggles the optional surfaces of the router.
type RouterOptions struct {
	SwaggerEnabled     bool
	MetricsEnabled     bool
	MetricsGatherer    prometheus.Gatherer
	CORSAllowedOrigins []string
	InternalJobToken   string
	RequestTimeout     time.Duration
}

func NewRouter(
	handler *Handler,
	verifier TokenVerifier,
	logger *logging.Logger,
	opts RouterOptions,
) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, opts)
	registerMatchRoutes(mux, handler, verifier)
	registerUserRoutes(mux, handler, verifier)
	registerCatalogRoutes(mux, handler, verifier)
	registerInternalJobRoutes(mux, handler, opts.InternalJobToken)

	return RequestTracing(
		RequestLogging(logger,
			CORS(opts.CORSAllowedOrigins,
				RequestTimeout(opts.RequestTimeout,
					recoverPanic(logger, mux)))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
