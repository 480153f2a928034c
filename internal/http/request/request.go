// Package request декодирует и валидирует JSON-тело запроса.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/nexus/internal/http/response"
	"github.com/magabrotheeeer/nexus/internal/lib/sl"
	"github.com/magabrotheeeer/nexus/internal/models"
)

const maxBodyBytes = 1 << 20

type options struct {
	validationStatus int
}

// Option настраивает Decode.
type Option func(*options)

// WithValidationStatus задаёт статус ответа при ошибке валидации
// вместо 422 по умолчанию.
func WithValidationStatus(status int) Option {
	return func(o *options) {
		o.validationStatus = status
	}
}

// Decode читает тело запроса в dst и проверяет теги validate. При ошибке
// пишет ответ 400 или 422 и возвращает false.
func Decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, validate *validator.Validate, dst any, opts ...Option) bool {
	o := options{validationStatus: http.StatusUnprocessableEntity}
	for _, opt := range opts {
		opt(&o)
	}

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.MsgInvalidBody))
		return false
	}

	if err := validate.Struct(dst); err != nil {
		log.Error("validation failed", sl.Err(err))
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			render.Status(r, o.validationStatus)
			render.JSON(w, r, response.ValidationError(verrs))
			return false
		}
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.MsgInvalidBody))
		return false
	}
	return true
}

// IDParam читает положительный числовой параметр пути name.
func IDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad %s %q: %w", name, raw, models.ErrInvalidInput)
	}
	return id, nil
}
