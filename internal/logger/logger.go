// Package logger はJSON構造化ログのセットアップを提供する。
package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/hitoshi/blogd/internal/model"
)

// Setup はJSON構造化ログ出力のslog.Loggerを生成して返す。
func Setup(w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(handler)
}

// SetupDefault はJSON構造化ログ出力をグローバルロガーとして設定する。
// 本番ではos.Stdoutを渡すことを想定している。
func SetupDefault(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	logger := Setup(w)
	slog.SetDefault(logger)
}

// LogAPIError はAPIErrorをSeverityに応じたログレベルで記録する。
// Internalコンテキストはここでのみ出力し、レスポンスには決して含めない。
func LogAPIError(apiErr *model.APIError) {
	attrs := []any{
		slog.String("code", apiErr.Code),
		slog.String("category", string(apiErr.Category)),
	}
	if apiErr.Internal != "" {
		attrs = append(attrs, slog.String("internal", apiErr.Internal))
	}

	switch apiErr.Severity {
	case model.SeverityInfo:
		slog.Info(apiErr.Message, attrs...)
	case model.SeverityWarning:
		slog.Warn(apiErr.Message, attrs...)
	default:
		// SeverityError以上はすべてerrorレベルで記録する。
		slog.Error(apiErr.Message, attrs...)
	}
}
