// Package apperr описывает классы ошибок API и их HTTP-статусы.
package apperr

import (
	"context"
	"errors"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindUnauthorized
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindStore:
		return "store"
	}
	return "unknown"
}

// Error - ошибка с классом; Msg уходит клиенту, Err - исходная причина
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }

func NotFound(msg string) error { return &Error{Kind: KindNotFound, Msg: msg} }

func Conflict(msg string) error { return &Error{Kind: KindConflict, Msg: msg} }

func Unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Msg: msg} }

// Store оборачивает ошибку хранилища; наружу отдаётся только msg
func Store(msg string, err error) error { return &Error{Kind: KindStore, Msg: msg, Err: err} }

// KindOf возвращает класс ошибки; всё неизвестное считается ошибкой хранилища
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// Is сообщает, относится ли err к классу k
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// PublicMessage - текст для поля error в ответе. Детали ошибок хранилища
// показываются только если verbose.
func PublicMessage(err error, verbose bool) string {
	var e *Error
	if !errors.As(err, &e) {
		if verbose {
			return err.Error()
		}
		return "internal server error"
	}
	if e.Kind == KindStore {
		if verbose {
			return e.Error()
		}
		return "internal server error"
	}
	return e.Msg
}

// FromStore оборачивает ошибку хранилища; истёкший дедлайн даёт "store timeout"
func FromStore(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return Store("store timeout", err)
	}
	return Store(op+" failed", err)
}
