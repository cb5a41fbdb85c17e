package response

import (
	"encoding/json"
	"net/http"

	domainerr "github.com/fixora/complaintdesk/domain/error"
)

type Envelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, envelope Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(envelope)
}

func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	WriteJSON(w, statusCode, Envelope{Status: true, Message: message, Data: data})
}

func Error(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, Envelope{Status: false, Message: message})
}

// AppError writes err with the status and code of its kind. Internal and upstream
// causes are replaced by a generic message.
func AppError(w http.ResponseWriter, err error) {
	WriteJSON(w, domainerr.GetHTTPStatusCode(err), Envelope{
		Status:  false,
		Message: domainerr.PublicMessage(err),
		Code:    domainerr.PublicCode(err),
	})
}

func BadRequest(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusBadRequest, Envelope{
		Message: message,
		Code:    string(domainerr.ErrCodeInvalidRequest),
	})
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

func TooManyRequests(w http.ResponseWriter) {
	WriteJSON(w, http.StatusTooManyRequests, Envelope{
		Message: "Too many requests. Please try again later.",
		Code:    string(domainerr.ErrCodeRateLimitExceeded),
	})
}
