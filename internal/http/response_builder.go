// Package http serves the dompet JSON API.
//
// This file implements the builder used for every response. Bodies share
// one envelope so clients can always look for data, error and notification.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"dompet/internal/core"
	"dompet/internal/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NotificationType represents the type of notification to display.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// Notification is a message the client shows to the user.
type Notification struct {
	Type        NotificationType `json:"type"`
	Message     string           `json:"message"`
	Dismissible bool             `json:"dismissible"`
}

type envelope struct {
	Data         any           `json:"data,omitempty"`
	Error        string        `json:"error,omitempty"`
	Fields       []FieldError  `json:"fields,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
}

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       envelope
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.body.Data = v
	return b
}

func (b *JSONResponseBuilder) Error(msg string) *JSONResponseBuilder {
	b.body.Error = msg
	return b
}

func (b *JSONResponseBuilder) Fields(fields []FieldError) *JSONResponseBuilder {
	b.body.Fields = fields
	return b
}

func (b *JSONResponseBuilder) Notify(t NotificationType, msg string, dismissible bool) *JSONResponseBuilder {
	b.body.Notification = &Notification{Type: t, Message: msg, Dismissible: dismissible}
	return b
}

// WarnSkipped adds a warning when some records had unreadable dates.
func (b *JSONResponseBuilder) WarnSkipped(skipped int) *JSONResponseBuilder {
	if skipped <= 0 {
		return b
	}
	return b.Notify(NotificationWarning,
		fmt.Sprintf("%d catatan memiliki tanggal tidak valid dan tidak ditampilkan per tanggal", skipped), true)
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Write sends the built response. A 204 has no body.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}

	payload, err := json.Marshal(b.body)
	if err != nil {
		http.Error(w, `{"error":"encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(payload)
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Error(message)
}

const retryMessage = "Gagal memuat data. Silakan coba lagi."

// writeError maps service errors to status codes. Store failures carry a
// dismissible notification so the client can offer a retry.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *requestError
	switch {
	case errors.As(err, &verr):
		logRejected(r, err, log.ErrorTypeValidation)
		ErrorResponse(http.StatusUnprocessableEntity, verr.Error()).Fields(verr.fields).Write(w)
	case errors.Is(err, core.ErrNotFound):
		logRejected(r, err, log.ErrorTypeNotFound)
		ErrorResponse(http.StatusNotFound, "record not found").Write(w)
	case errors.Is(err, core.ErrAlreadyPaid):
		logRejected(r, err, log.ErrorTypeConflict)
		ErrorResponse(http.StatusConflict, "record already paid").Write(w)
	case core.IsValidation(err):
		logRejected(r, err, log.ErrorTypeValidation)
		ErrorResponse(http.StatusUnprocessableEntity, err.Error()).Write(w)
	case core.IsDataAccess(err), errors.Is(err, context.DeadlineExceeded):
		logError(r, "Record store unavailable", err, log.ErrorTypeDatabase)
		ErrorResponse(http.StatusServiceUnavailable, "record store unavailable").
			Notify(NotificationError, retryMessage, true).
			Write(w)
	default:
		logError(r, "Unhandled request error", err, log.ErrorTypeInternal)
		ErrorResponse(http.StatusInternalServerError, "internal error").Write(w)
	}
}

func logError(r *http.Request, msg string, err error, errorType string) {
	ctx := r.Context()
	fields := log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, "", "", "")
	fields["error_type"] = errorType
	if owner := OwnerFrom(ctx); owner != "" {
		fields[log.FieldOwner] = owner
	}
	log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, msg, err, log.ComponentHTTP, opForMethod(r.Method), fields)
}

// logRejected records client errors at debug level.
func logRejected(r *http.Request, err error, errorType string) {
	log.FromContext(r.Context()).DebugContext(r.Context(), "Request rejected",
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path,
		"error_type", errorType,
		log.FieldError, err)
}

func opForMethod(method string) string {
	switch method {
	case http.MethodPost:
		return log.OpCreate
	case http.MethodPut:
		return log.OpUpdate
	case http.MethodDelete:
		return log.OpDelete
	default:
		return log.OpRead
	}
}
