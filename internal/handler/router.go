package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/blogd/internal/middleware"
)

// HealthChecker はヘルスチェック時のDB疎通確認インターフェース。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.AccessVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger
	RequestMetrics    middleware.RequestRecorder // nil可

	// 運用エンドポイント
	HealthChecker  HealthChecker // nil可
	MetricsHandler http.Handler  // nil可

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig
	AuthMetrics AuthMetricsRecorder // nil可

	// ドメインサービス
	ArticleService  ArticleServiceInterface
	CommentService  CommentServiceInterface
	CategoryService CategoryServiceInterface
	TagService      TagServiceInterface
	ImageService    ImageServiceInterface
	ImageMetrics    ImageMetricsRecorder // nil可
	UserService     UserServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics → RateLimit(General)
//
// 公開の読み取りルートは認証なし、状態変更ルートはBearer認証と
// 状態変更専用レート制限の配下に置く。コメント投稿のみ任意認証とする。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.RequestMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.RequestMetrics))
	}
	r.Use(deps.RateLimiter.GeneralMiddleware())

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.AuthMetrics)
	articleHandler := NewArticleHandler(deps.ArticleService)
	commentHandler := NewCommentHandler(deps.CommentService)
	categoryHandler := NewCategoryHandler(deps.CategoryService)
	tagHandler := NewTagHandler(deps.TagService)
	imageHandler := NewImageHandler(deps.ImageService, deps.ImageMetrics)
	userHandler := NewUserHandler(deps.UserService)

	requireAuth := middleware.NewAuthMiddleware(deps.TokenVerifier)
	optionalAuth := middleware.NewOptionalAuthMiddleware(deps.TokenVerifier)
	mutationLimit := deps.RateLimiter.MutationMiddleware()

	// --- 運用エンドポイント ---
	r.Get("/health", newHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- 認証ルート ---
	// リフレッシュはHttpOnly Cookieで運ぶため、CSRF検証を必須とする。
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.SignUp)
		r.Post("/signin", authHandler.SignIn)
		r.With(middleware.NewCSRFMiddleware(deps.CSRFConfig)).Post("/refresh", authHandler.Refresh)
		r.Post("/signout", authHandler.SignOut)
	})
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// --- 公開の読み取りルート ---
	r.Group(func(r chi.Router) {
		r.Get("/api/articles", articleHandler.ListArticles)
		r.Get("/api/articles/{id}", articleHandler.GetArticle)
		r.Get("/api/articles/{id}/comments", commentHandler.ListComments)
		r.Get("/api/articles/{id}/tags", articleHandler.ListArticleTags)
		r.Get("/api/articles/{id}/images", imageHandler.ListImages)

		r.Get("/api/comments/{id}", commentHandler.GetComment)

		r.Get("/api/categories", categoryHandler.ListCategories)
		r.Get("/api/categories/{id}", categoryHandler.GetCategory)

		r.Get("/api/tags", tagHandler.ListTags)
		r.Get("/api/tags/{id}", tagHandler.GetTag)
		r.Get("/api/tags/{id}/articles", articleHandler.ListArticlesByTag)

		r.Get("/api/images/{id}", imageHandler.GetImage)
		r.Get("/api/images/{id}/data", imageHandler.GetImageData)

		r.Get("/api/users/{id}", userHandler.GetUser)
	})

	// --- コメント投稿（任意認証） ---
	// 未認証ならゲストコメント、認証済みならログインユーザーのコメントになる。
	r.With(optionalAuth, mutationLimit).Post("/api/comments", commentHandler.CreateComment)

	// --- 認証必須の読み取りルート ---
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/api/users/me", userHandler.Me)
	})

	// --- 認証必須の状態変更ルート ---
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(mutationLimit)

		// 記事管理
		r.Post("/api/articles", articleHandler.CreateArticle)
		r.Put("/api/articles/{id}", articleHandler.UpdateArticle)
		r.Delete("/api/articles/{id}", articleHandler.DeleteArticle)
		r.Put("/api/articles/{id}/tags", articleHandler.SetArticleTags)
		r.Post("/api/articles/{id}/images", imageHandler.UploadImage)

		// コメント管理
		r.Put("/api/comments/{id}", commentHandler.UpdateComment)
		r.Delete("/api/comments/{id}", commentHandler.DeleteComment)

		// カテゴリ管理
		r.Post("/api/categories", categoryHandler.CreateCategory)
		r.Put("/api/categories/{id}", categoryHandler.UpdateCategory)
		r.Delete("/api/categories/{id}", categoryHandler.DeleteCategory)

		// タグ管理
		r.Post("/api/tags", tagHandler.CreateTag)
		r.Delete("/api/tags/{id}", tagHandler.DeleteTag)

		// 画像管理
		r.Delete("/api/images/{id}", imageHandler.DeleteImage)

		// ユーザー管理
		r.Patch("/api/users/me", userHandler.UpdateMe)
		r.Delete("/api/users/me", userHandler.DeleteMe)
	})

	return r
}

// newHealthHandler はヘルスチェックエンドポイントのハンドラーを返す。
// checkerが指定されている場合はDB疎通も確認する。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := checker.PingContext(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
