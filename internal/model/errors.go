// Package model はドメインモデルを定義する。
package model

import "fmt"

// ErrorCategory はトランスポートに依存しないエラーの意味分類を表す。
// HTTPステータスコードへの変換はhandler層の1箇所でのみ行う。
type ErrorCategory string

// 定義済みエラーカテゴリ
const (
	CategoryAuthentication  ErrorCategory = "authentication"
	CategoryAuthorization   ErrorCategory = "authorization"
	CategoryValidation      ErrorCategory = "validation"
	CategoryNotFound        ErrorCategory = "not_found"
	CategoryConflict        ErrorCategory = "conflict"
	CategoryDatabase        ErrorCategory = "database"
	CategoryExternalService ErrorCategory = "external_service"
	CategoryInternal        ErrorCategory = "internal"
)

// ErrorSeverity はログ出力とアラートのための深刻度を表す。
type ErrorSeverity int

const (
	// SeverityInfo は想定内のユーザー起因エラー（バリデーション失敗等）。
	SeverityInfo ErrorSeverity = iota
	// SeverityWarning は監視対象とすべき想定内エラー（レート制限等）。
	SeverityWarning
	// SeverityError は調査が必要な想定外エラー（DB障害、外部サービス障害等）。
	SeverityError
	// SeverityCritical は即時対応が必要な重大エラー。
	SeverityCritical
)

// String はErrorSeverityの表示名を返す。
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// APIError は統一エラーフォーマットを表す。
// Messageはユーザーに返して安全な文言のみを含み、
// Internalは内部ログ専用の生の詳細を保持する（レスポンスには絶対に含めない）。
type APIError struct {
	Code     string        // エラーコード
	Message  string        // ユーザー向けメッセージ
	Category ErrorCategory // 意味分類
	Severity ErrorSeverity // ログ深刻度
	Action   string        // ユーザー向け対処方法
	Internal string        // 内部コンテキスト（ログ専用）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// WithInternal は内部コンテキストを付与した複製を返す。
// 元のエラー定義を書き換えないため値コピーで複製する。
func (e *APIError) WithInternal(internal string) *APIError {
	clone := *e
	clone.Internal = internal
	return &clone
}

// 定義済みエラーコード
const (
	ErrCodeTokenExpired         = "TOKEN_EXPIRED"
	ErrCodeInvalidSignature     = "INVALID_SIGNATURE"
	ErrCodeInvalidToken         = "INVALID_TOKEN"
	ErrCodeTokenValidation      = "TOKEN_VALIDATION_FAILED"
	ErrCodeAuthRequired         = "AUTHENTICATION_REQUIRED"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodeEmailExists          = "EMAIL_ALREADY_EXISTS"
	ErrCodeAccountDisabled      = "ACCOUNT_DISABLED"
	ErrCodeOwnershipViolation   = "OWNERSHIP_VIOLATION"
	ErrCodeInvalidRequest       = "INVALID_REQUEST"
	ErrCodeValidationFailed     = "VALIDATION_FAILED"
	ErrCodeArticleNotFound      = "ARTICLE_NOT_FOUND"
	ErrCodeCommentNotFound      = "COMMENT_NOT_FOUND"
	ErrCodeCategoryNotFound     = "CATEGORY_NOT_FOUND"
	ErrCodeTagNotFound          = "TAG_NOT_FOUND"
	ErrCodeImageNotFound        = "IMAGE_NOT_FOUND"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
	ErrCodeDuplicateName        = "DUPLICATE_NAME"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeExternalServiceError = "EXTERNAL_SERVICE_ERROR"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// NewTokenExpiredError はトークン期限切れエラーを生成する。
func NewTokenExpiredError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenExpired,
		Message:  "セッションの有効期限が切れました。",
		Category: CategoryAuthentication,
		Severity: SeverityInfo,
		Action:   "再度ログインしてください。",
	}
}

// NewInvalidSignatureError はトークン署名不正エラーを生成する。
func NewInvalidSignatureError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSignature,
		Message:  "認証トークンが不正です。",
		Category: CategoryAuthentication,
		Severity: SeverityInfo,
		Action:   "再度ログインしてください。",
	}
}

// NewInvalidTokenError はトークン形式不正エラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "認証トークンが不正です。",
		Category: CategoryAuthentication,
		Severity: SeverityInfo,
		Action:   "再度ログインしてください。",
	}
}

// NewTokenValidationError はクレーム検証失敗エラーを生成する。
// reasonは内部ログ専用で、ユーザーには汎用メッセージのみ返す。
func NewTokenValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeTokenValidation,
		Message:  "認証に失敗しました。",
		Category: CategoryAuthentication,
		Severity: SeverityInfo,
		Action:   "再度ログインしてください。",
		Internal: reason,
	}
}

// NewAuthRequiredError は未認証エラーを生成する。
func NewAuthRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthRequired,
		Message:  "認証が必要です。",
		Category: CategoryAuthentication,
		Severity: SeverityInfo,
		Action:   "ログインしてください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// メールアドレスの存在有無を推測させないため、文言は存在しない場合と共通にする。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: CategoryAuthentication,
		Severity: SeverityInfo,
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewEmailExistsError はメールアドレス重複エラーを生成する。
func NewEmailExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailExists,
		Message:  "このメールアドレスは既に登録されています。",
		Category: CategoryConflict,
		Severity: SeverityInfo,
		Action:   "ログインするか、別のメールアドレスを使用してください。",
	}
}

// NewAccountDisabledError は無効化済みアカウントエラーを生成する。
func NewAccountDisabledError() *APIError {
	return &APIError{
		Code:     ErrCodeAccountDisabled,
		Message:  "このアカウントは無効化されています。",
		Category: CategoryAuthentication,
		Severity: SeverityWarning,
		Action:   "サポートにお問い合わせください。",
	}
}

// NewOwnershipError は所有権違反エラーを生成する。
// 自分が所有していないリソースへの変更・削除要求で返す。
func NewOwnershipError() *APIError {
	return &APIError{
		Code:     ErrCodeOwnershipViolation,
		Message:  "このリソースを操作する権限がありません。",
		Category: CategoryAuthorization,
		Severity: SeverityInfo,
		Action:   "自分が作成したリソースのみ変更・削除できます。",
	}
}

// NewInvalidRequestError はリクエスト解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: CategoryValidation,
		Severity: SeverityInfo,
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewValidationError は入力バリデーション失敗エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  message,
		Category: CategoryValidation,
		Severity: SeverityInfo,
		Action:   "入力内容を確認してください。",
	}
}

// NewArticleNotFoundError は記事未検出エラーを生成する。
func NewArticleNotFoundError(articleID string) *APIError {
	return &APIError{
		Code:     ErrCodeArticleNotFound,
		Message:  "指定された記事が見つかりません。",
		Category: CategoryNotFound,
		Severity: SeverityInfo,
		Action:   "記事IDを確認してください。",
		Internal: fmt.Sprintf("article not found: %s", articleID),
	}
}

// NewCommentNotFoundError はコメント未検出エラーを生成する。
func NewCommentNotFoundError(commentID string) *APIError {
	return &APIError{
		Code:     ErrCodeCommentNotFound,
		Message:  "指定されたコメントが見つかりません。",
		Category: CategoryNotFound,
		Severity: SeverityInfo,
		Action:   "コメントIDを確認してください。",
		Internal: fmt.Sprintf("comment not found: %s", commentID),
	}
}

// NewCategoryNotFoundError はカテゴリ未検出エラーを生成する。
func NewCategoryNotFoundError(categoryID string) *APIError {
	return &APIError{
		Code:     ErrCodeCategoryNotFound,
		Message:  "指定されたカテゴリが見つかりません。",
		Category: CategoryNotFound,
		Severity: SeverityInfo,
		Action:   "カテゴリIDを確認してください。",
		Internal: fmt.Sprintf("category not found: %s", categoryID),
	}
}

// NewTagNotFoundError はタグ未検出エラーを生成する。
func NewTagNotFoundError(tagID string) *APIError {
	return &APIError{
		Code:     ErrCodeTagNotFound,
		Message:  "指定されたタグが見つかりません。",
		Category: CategoryNotFound,
		Severity: SeverityInfo,
		Action:   "タグIDを確認してください。",
		Internal: fmt.Sprintf("tag not found: %s", tagID),
	}
}

// NewImageNotFoundError は画像未検出エラーを生成する。
func NewImageNotFoundError(imageID string) *APIError {
	return &APIError{
		Code:     ErrCodeImageNotFound,
		Message:  "指定された画像が見つかりません。",
		Category: CategoryNotFound,
		Severity: SeverityInfo,
		Action:   "画像IDを確認してください。",
		Internal: fmt.Sprintf("image not found: %s", imageID),
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: CategoryNotFound,
		Severity: SeverityInfo,
		Action:   "ログインし直してください。",
	}
}

// NewDuplicateNameError は名前重複エラーを生成する。
// カテゴリ・タグのユニーク制約違反で返す。
func NewDuplicateNameError(name string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateName,
		Message:  "同じ名前が既に登録されています。",
		Category: CategoryConflict,
		Severity: SeverityInfo,
		Action:   "別の名前を指定してください。",
		Internal: fmt.Sprintf("duplicate name: %s", name),
	}
}

// NewDatabaseError はデータベースエラーを生成する。
// 生のドライバエラーはInternalにのみ保持し、ユーザーには汎用メッセージを返す。
func NewDatabaseError(internal string) *APIError {
	return &APIError{
		Code:     ErrCodeDatabaseError,
		Message:  "データベースエラーが発生しました。",
		Category: CategoryDatabase,
		Severity: SeverityError,
		Action:   "しばらく待ってから再度お試しください。",
		Internal: internal,
	}
}

// NewExternalServiceError は外部サービス呼び出し失敗エラーを生成する。
// 認証プロバイダーへの通信失敗等、認証失敗とは区別して扱う。
func NewExternalServiceError(internal string) *APIError {
	return &APIError{
		Code:     ErrCodeExternalServiceError,
		Message:  "外部サービスとの通信に失敗しました。",
		Category: CategoryExternalService,
		Severity: SeverityError,
		Action:   "しばらく待ってから再度お試しください。",
		Internal: internal,
	}
}

// NewInternalError は内部エラーを生成する。
func NewInternalError(internal string) *APIError {
	return &APIError{
		Code:     ErrCodeInternalError,
		Message:  "内部エラーが発生しました。",
		Category: CategoryInternal,
		Severity: SeverityError,
		Action:   "しばらく待ってから再度お試しください。",
		Internal: internal,
	}
}
