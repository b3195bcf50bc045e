package errors

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 认证相关错误。
var (
	Unauthorized  = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	InvalidUserID = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}
)

// 报警派发模块错误。
var (
	InvalidCoordinates = Definition{Code: "INVALID_COORDINATES", Message: "Latitude or longitude out of range"}
	InvalidAccuracy    = Definition{Code: "INVALID_ACCURACY", Message: "Accuracy must be non-negative"}
	TooManyRequests    = Definition{Code: "RATE_LIMIT_EXCEEDED", Message: "Too many requests. Please try again later."}
	AlertCreateFailed  = Definition{Code: "ALERT_CREATE_FAILED", Message: "Could not create alert"}
)

// 报警生命周期错误。
var (
	AlertNotFound        = Definition{Code: "ALERT_NOT_FOUND", Message: "Alert not found"}
	AlertAlreadyResolved = Definition{Code: "ALERT_ALREADY_RESOLVED", Message: "Alert has already been resolved"}
	NothingToResend      = Definition{Code: "NOTHING_TO_RESEND", Message: "No failed deliveries to resend"}
)

// 联系人模块错误。
var (
	ContactNotFound = Definition{Code: "CONTACT_NOT_FOUND", Message: "Contact not found"}
	InvalidPhone    = Definition{Code: "INVALID_PHONE", Message: "Phone number must be E.164, e.g. +6591234567"}
)

// 设置模块错误。
var (
	InvalidCountdown = Definition{Code: "INVALID_COUNTDOWN", Message: "Countdown seconds must be between 1 and 30"}
)

// Token 相关错误。
var (
	ErrTokenGeneratorNotInitialized = Definition{Code: "TOKEN_GENERATOR_NOT_INITIALIZED", Message: "Token generator is not initialized"}
	ErrUnexpectedSigningMethod      = Definition{Code: "UNEXPECTED_SIGNING_METHOD", Message: "Unexpected token signing method"}
	ErrInvalidToken                 = Definition{Code: "INVALID_TOKEN", Message: "Token is invalid"}
	ErrInvalidTokenClaims           = Definition{Code: "INVALID_TOKEN_CLAIMS", Message: "Token claims are invalid"}
	ErrInvalidTokenType             = Definition{Code: "INVALID_TOKEN_TYPE", Message: "Token type is invalid"}
	ErrUserIDNotFound               = Definition{Code: "USER_ID_NOT_FOUND", Message: "User ID not found in token"}
)

// 短信网关配置错误。
var (
	ErrSignNameRequired     = Definition{Code: "SMS_SIGN_NAME_REQUIRED", Message: "SMS sign name is required"}
	ErrTemplateCodeRequired = Definition{Code: "SMS_TEMPLATE_CODE_REQUIRED", Message: "SMS template code is required"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	Unauthorized.Code:         Unauthorized,
	InvalidUserID.Code:        InvalidUserID,
	InvalidCoordinates.Code:   InvalidCoordinates,
	InvalidAccuracy.Code:      InvalidAccuracy,
	TooManyRequests.Code:      TooManyRequests,
	AlertCreateFailed.Code:    AlertCreateFailed,
	AlertNotFound.Code:        AlertNotFound,
	AlertAlreadyResolved.Code: AlertAlreadyResolved,
	NothingToResend.Code:      NothingToResend,
	ContactNotFound.Code:      ContactNotFound,
	InvalidPhone.Code:         InvalidPhone,
	InvalidCountdown.Code:     InvalidCountdown,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}
