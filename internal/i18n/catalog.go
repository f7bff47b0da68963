// Package i18n holds the user-facing messages in every supported language.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

type Key string

const (
	ConnectionUnstable            Key = "connection_unstable"
	InvalidCredentials            Key = "invalid_credentials"
	UsernameTaken                 Key = "username_taken"
	RegisterFailed                Key = "register_failed"
	LogoutNoCookieHeader          Key = "logout_no_cookie_header"
	LogoutMissingSessionKey       Key = "logout_missing_session_key"
	LogoutConnectionUnstable      Key = "logout_connection_unstable"
	CurrentUserConnectionUnstable Key = "current_user_connection_unstable"
	SessionNotFound               Key = "session_not_found"
	SessionExpired                Key = "session_expired"
	Required                      Key = "required"
	UsernameTooShort              Key = "username_too_short"
	PasswordTooShort              Key = "password_too_short"
	Alphanumeric                  Key = "alphanumeric"
	LoggedIn                      Key = "logged_in"
	Registered                    Key = "registered"
	LoggedOut                     Key = "logged_out"
	PleaseLogIn                   Key = "please_log_in"
	AlreadyLoggedIn               Key = "already_logged_in"
	Unexpected                    Key = "unexpected"
	DatabaseUnavailable           Key = "database_unavailable"
	Forbidden                     Key = "forbidden"
	TooManyRequests               Key = "too_many_requests"
)

var entries = map[Key]map[language.Tag]string{
	ConnectionUnstable: {
		language.Japanese: "データベースとの接続が不安定です。再度ログインを試行してください。",
		language.English:  "The connection to the database is unstable. Please try again.",
	},
	InvalidCredentials: {
		language.Japanese: "ユーザー名またはパスワードが違います。",
		language.English:  "The username or password is incorrect.",
	},
	UsernameTaken: {
		language.Japanese: "このユーザー名は既に使用されています。他のユーザー名を使用してください。",
		language.English:  "This username is already in use. Please choose another one.",
	},
	RegisterFailed: {
		language.Japanese: "登録できませんでした。ユーザー名が既に使用されているか、データベースとの接続が不安定です。",
		language.English:  "Registration failed. The username may be in use or the connection to the database is unstable.",
	},
	LogoutNoCookieHeader: {
		language.Japanese: "正常にログアウトできませんでした。リクエストヘッダにCookieがセットされていません。",
		language.English:  "Could not log out. The request has no cookie header.",
	},
	LogoutMissingSessionKey: {
		language.Japanese: "正常にログアウトできませんでした。Cookieにsidが含まれていません。",
		language.English:  "Could not log out. The cookie has no session key.",
	},
	LogoutConnectionUnstable: {
		language.Japanese: "正常にログアウトできませんでした。データベースとの接続が不安定です。",
		language.English:  "Could not log out. The connection to the database is unstable.",
	},
	CurrentUserConnectionUnstable: {
		language.Japanese: "ユーザー情報を取得できませんでした。データベースとの接続が不安定です。",
		language.English:  "Could not load the user. The connection to the database is unstable.",
	},
	SessionNotFound: {
		language.Japanese: "リクエストされたセッションIDが存在しません。",
		language.English:  "The requested session id does not exist.",
	},
	SessionExpired: {
		language.Japanese: "セッションの有効期限が切れました。再度ログインしてください。",
		language.English:  "The session has expired. Please log in again.",
	},
	Required: {
		language.Japanese: "入力してください。",
		language.English:  "This field is required.",
	},
	UsernameTooShort: {
		language.Japanese: "3文字以上で入力してください。",
		language.English:  "Enter at least 3 characters.",
	},
	PasswordTooShort: {
		language.Japanese: "8文字以上で入力してください。",
		language.English:  "Enter at least 8 characters.",
	},
	Alphanumeric: {
		language.Japanese: "半角英数字で入力してください。",
		language.English:  "Use only letters and digits.",
	},
	LoggedIn: {
		language.Japanese: "ログインしました。",
		language.English:  "Logged in.",
	},
	Registered: {
		language.Japanese: "正常に登録されました。登録されたアカウントでログインしました。",
		language.English:  "Registration complete. You are now logged in with the new account.",
	},
	LoggedOut: {
		language.Japanese: "ログアウトしました。",
		language.English:  "Logged out.",
	},
	PleaseLogIn: {
		language.Japanese: "ログインしてください。",
		language.English:  "Please log in.",
	},
	AlreadyLoggedIn: {
		language.Japanese: "既にログインしています。",
		language.English:  "You are already logged in.",
	},
	Unexpected: {
		language.Japanese: "処理中に予期しないエラーが発生しました。",
		language.English:  "An unexpected error occurred.",
	},
	DatabaseUnavailable: {
		language.Japanese: "データベースに接続できませんでした。時間をおいてもう一度お試しください。",
		language.English:  "Could not reach the database. Please try again later.",
	},
	Forbidden: {
		language.Japanese: "この操作を行う権限がありません。",
		language.English:  "You are not allowed to do this.",
	},
	TooManyRequests: {
		language.Japanese: "リクエストが多すぎます。しばらくしてから再度お試しください。",
		language.English:  "Too many requests. Please wait a moment and try again.",
	},
}

var supported = []language.Tag{language.Japanese, language.English}

// Catalog renders messages for a single locale.
type Catalog struct {
	tag     language.Tag
	printer *message.Printer
}

// New builds a catalog for locale, falling back to Japanese for anything unknown.
func New(locale string) *Catalog {
	builder := catalog.NewBuilder(catalog.Fallback(language.Japanese))
	for key, translations := range entries {
		for tag, text := range translations {
			// SetString only fails on malformed message syntax.
			_ = builder.SetString(tag, string(key), text)
		}
	}

	tag := match(locale)
	return &Catalog{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(builder)),
	}
}

func match(locale string) language.Tag {
	requested, err := language.Parse(locale)
	if err != nil {
		return language.Japanese
	}
	matcher := language.NewMatcher(supported)
	_, index, confidence := matcher.Match(requested)
	if confidence == language.No {
		return language.Japanese
	}
	return supported[index]
}

func (c *Catalog) Language() language.Tag {
	return c.tag
}

func (c *Catalog) Text(key Key) string {
	return c.printer.Sprintf(string(key))
}
