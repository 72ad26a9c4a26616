// Package errors contiene el catálogo de errores HTTP y su traducción desde
// los errores de dominio y persistencia.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dropDatabas3/hellouser/internal/domain/repository"
	"github.com/dropDatabas3/hellouser/internal/domain/user"
	"github.com/dropDatabas3/hellouser/internal/observability/logger"
)

// errorResponse controla exactamente qué campos se envían al cliente.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Field   string `json:"field,omitempty"`
}

// FromError convierte cualquier error en un AppError.
// El orden importa: un error de flush envuelve tanto ErrPersistence como la
// causa, y la causa (conflicto, validación) define el status.
func FromError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var ve *user.ValidationError
	switch {
	case stderrors.As(err, &ve):
		return ErrInvalidFormat.WithField(ve.Field).WithDetail(ve.Reason).WithCause(err)
	case stderrors.Is(err, repository.ErrInvalidInput):
		return ErrBadRequest.WithDetail(err.Error()).WithCause(err)
	case repository.IsConflict(err):
		return ErrEmailAlreadyInUse.WithCause(err)
	case repository.IsNotFound(err):
		return ErrUserNotFound.WithCause(err)
	case repository.IsNoDatabase(err):
		return ErrServiceUnavailable.WithDetail("no database configured").WithCause(err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return ErrGatewayTimeout.WithCause(err)
	}
	return ErrInternalServerError.WithCause(err)
}

// WriteError escribe la respuesta HTTP para err. Los 5xx se loguean con la
// causa original, que nunca se expone al cliente.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := FromError(err)

	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.From(r.Context()).Error("request failed",
			logger.Layer("http"),
			logger.Status(appErr.HTTPStatus),
			logger.Err(appErr.Err),
		)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
		Field:   appErr.Field,
	})
}
