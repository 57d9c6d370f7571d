package merge

import "fmt"

// Error はクライアントへ返却可能なエラーコードとメッセージを持つエラーです。
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// FailureCode はジョブ失敗記録用のエラーコードを返します。
func (e *Error) FailureCode() string {
	return e.Code
}

// FailureMessage はジョブ失敗記録用のメッセージを返します。
func (e *Error) FailureMessage() string {
	return e.Message
}

func newError(code, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
