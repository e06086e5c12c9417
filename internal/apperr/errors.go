// Package apperr définit la taxonomie d'erreurs exposée par l'API.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindServer Kind = iota
	KindValidation
	KindAuth
	KindAuthorization
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "server"
	}
}

// Error porte un message destiné au client et, optionnellement, la cause interne.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status retourne le code HTTP correspondant au type d'erreur.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func Validation(msg string) *Error    { return &Error{Kind: KindValidation, Message: msg} }
func Auth(msg string) *Error          { return &Error{Kind: KindAuth, Message: msg} }
func Authorization(msg string) *Error { return &Error{Kind: KindAuthorization, Message: msg} }
func NotFound(msg string) *Error      { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error      { return &Error{Kind: KindConflict, Message: msg} }

// Server enveloppe une erreur inattendue; le message brut reste visible côté client.
func Server(err error) *Error {
	msg := "Server error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{Kind: KindServer, Message: msg, Err: err}
}

// As extrait une *Error de la chaîne; toute autre erreur devient une erreur serveur.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Server(err)
}

// Is indique si err est une *Error du type donné.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
