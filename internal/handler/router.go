package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/stash/internal/metrics"
	"github.com/hitoshi/stash/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// serviceName はルートおよびヘルスチェックレスポンスで返すサービス名。
const serviceName = "stash"

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	SubjectResolver   middleware.SubjectResolver
	MetricsRecorder   middleware.HTTPMetricsRecorder
	Gatherer          prometheus.Gatherer

	// サービス
	IdentityService IdentityServiceInterface
	RecordService   RecordServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → CORS → Logging → Metrics
//
// 認証ルート（/auth/*）とライブネスルートは認証ミドルウェアの外に配置し、
// /data以下は AuthMiddleware → RateLimiter を通す。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	if deps.MetricsRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	}

	authHandler := NewAuthHandler(deps.IdentityService)
	recordHandler := NewRecordHandler(deps.RecordService)

	// --- 認証不要のルート ---

	// ライブネス
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": serviceName + " server is running",
		})
	})
	r.Get("/health", newHealthHandler(deps.HealthChecker))

	// Prometheusスクレイプ
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// 認証ルート。/auth/meと/auth/logoutはAuthorizationヘッダーを
	// ハンドラー内で直接読むため、認証ミドルウェアの外に置く。
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.SubjectResolver))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		r.Route("/data", func(r chi.Router) {
			r.Post("/", recordHandler.Create)
			r.Get("/", recordHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", recordHandler.Get)
				r.Put("/", recordHandler.Update)
				r.Delete("/", recordHandler.Delete)
			})
		})
	})

	return r
}

// newHealthHandler はヘルスチェックハンドラーを生成する。
// DBへの疎通が取れない場合は503を返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status":  "unhealthy",
					"service": serviceName,
				})
				return
			}
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": serviceName,
		})
	}
}
