package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"ridematch/internal/shared/apperr"
	"ridematch/internal/shared/logger"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrMalformedBody — тело запроса не разобралось
var ErrMalformedBody = errors.New("malformed request body")

// ErrorBody — конверт ошибки, одинаковый для всех эндпоинтов
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// RespondJSON отправляет JSON ответ
func RespondJSON(w http.ResponseWriter, log *logger.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error(logger.Entry{
			Action:  "encode_response_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}
}

// StatusFor — HTTP статус по виду ошибки
func StatusFor(err error) int {
	if errors.Is(err, ErrMalformedBody) {
		return http.StatusBadRequest
	}
	switch apperr.Kind(err) {
	case apperr.ErrUnauthenticated:
		return http.StatusUnauthorized
	case apperr.ErrNotFound:
		return http.StatusNotFound
	case apperr.ErrForbidden:
		return http.StatusForbidden
	case apperr.ErrInvalidTransition, apperr.ErrConflict:
		return http.StatusConflict
	case apperr.ErrInvalidAction:
		return http.StatusBadRequest
	case apperr.ErrValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// RespondError переводит ошибку в конверт. Неклассифицированные ошибки логируются
// целиком, а клиенту уходит только "internal server error".
func RespondError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	status := StatusFor(err)
	reqID := middleware.GetReqID(r.Context())

	detail := ErrorDetail{RequestID: reqID}
	switch {
	case status == http.StatusInternalServerError:
		log.Error(logger.Entry{
			Action:    "request_failed",
			Message:   err.Error(),
			RequestID: reqID,
			Error:     &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			},
		})
		detail.Code = apperr.Code(nil)
		detail.Message = "internal server error"
	case errors.Is(err, ErrMalformedBody):
		detail.Code = "BAD_REQUEST"
		detail.Message = ErrMalformedBody.Error()
	default:
		detail.Code = apperr.Code(apperr.Kind(err))
		detail.Message = apperr.Message(err)
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	RespondJSON(w, log, status, ErrorBody{Error: detail})
}

// DecodeJSON читает тело запроса (не больше 1MB) в dst
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Join(ErrMalformedBody, err)
	}
	return nil
}

const maxBodySize = 1 << 20 // 1MB
