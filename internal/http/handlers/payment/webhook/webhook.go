// Package webhook принимает события платёжного шлюза о подписках.
//
// Подпись тела проверяется до разбора JSON. Ответ 2xx означает, что событие
// принято и повторять его не нужно.
package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/nexus/internal/http/response"
	"github.com/magabrotheeeer/nexus/internal/lib/sl"
	"github.com/magabrotheeeer/nexus/internal/models"
	"github.com/magabrotheeeer/nexus/internal/paymentprovider"
)

// SignatureHeader заголовок с HMAC-подписью тела.
const SignatureHeader = "X-Razorpay-Signature"

const maxBodyBytes = 1 << 20

// Verifier проверяет подпись вебхука.
type Verifier interface {
	VerifyWebhookSignature(body []byte, signature string) bool
}

// Service применяет событие к подписке.
type Service interface {
	ApplyWebhookEvent(ctx context.Context, event paymentprovider.WebhookEvent) error
}

// Handler обрабатывает POST /api/razorpay/webhook.
type Handler struct {
	log      *slog.Logger
	service  Service
	verifier Verifier
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, verifier Verifier) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		verifier: verifier,
	}
}

// ServeHTTP godoc
// @Summary Вебхук платёжного шлюза
// @Tags Payment
// @Accept  json
// @Produce  json
// @Param X-Razorpay-Signature header string true "HMAC-SHA256 тела"
// @Success 200 {object} response.Response "Событие принято"
// @Failure 400 {object} response.ErrorResponse "Неверная подпись или тело"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /razorpay/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.MsgInvalidBody))
		return
	}

	if !h.verifier.VerifyWebhookSignature(body, r.Header.Get(SignatureHeader)) {
		log.Warn("invalid or missing webhook signature")
		response.WriteError(w, r, models.ErrInvalidSignature)
		return
	}

	var event paymentprovider.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to decode webhook", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.MsgInvalidBody))
		return
	}

	if err := h.service.ApplyWebhookEvent(r.Context(), event); err != nil {
		log.Error("failed to apply webhook", slog.String("event", event.Event), sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("webhook processed", slog.String("event", event.Event))
	render.JSON(w, r, response.OK(nil))
}
