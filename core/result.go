package core

// ResultError carries the human-readable message of a failed operation.
type ResultError struct {
	Message string `json:"message"`
}

// Result is the uniform outcome envelope returned by every data-access
// operation: either a success holding Data, or a failure holding Error.
// Exactly one of the two is ever populated; callers must check Success
// before touching Data.
type Result[T any] struct {
	Success bool         `json:"success"`
	Data    T            `json:"data,omitempty"`
	Error   *ResultError `json:"error,omitempty"`
}

// OK wraps data in a successful Result.
func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail wraps a failure message in an unsuccessful Result.
func Fail[T any](msg string) Result[T] {
	return Result[T]{Success: false, Error: &ResultError{Message: msg}}
}

// FailErr is Fail with the message taken from err.
func FailErr[T any](err error) Result[T] {
	return Fail[T](err.Error())
}
