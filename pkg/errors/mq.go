package errors

import "fmt"

// SkipMessageError 消费者幂等跳过：消息已处理过，ack 掉但不算失败。
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return fmt.Sprintf("skip message: %s", e.Reason)
}

func IsSkipMessageError(err error) bool {
	_, ok := err.(*SkipMessageError)
	return ok
}

// NonRetryableError 网关返回的配置类错误，重试也不会成功。
type NonRetryableError struct {
	Code    string
	Message string
	Hint    string
}

func (e *NonRetryableError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Hint)
}

func NewNonRetryableError(code, message, hint string) *NonRetryableError {
	return &NonRetryableError{Code: code, Message: message, Hint: hint}
}
