package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape of every non-2xx response. Detail carries the
// human-readable message; Errors carries per-field validation messages.
type ErrorBody struct {
	Detail    string            `json:"detail"`
	Errors    map[string]string `json:"errors,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// DetailBody is the acknowledgment shape used by operations without a payload.
type DetailBody struct {
	Detail string `json:"detail"`
}

// JSON writes data as the response body.
func JSON[T any](ctx *gin.Context, status int, data T) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, data)
}

// Detail writes a confirmation message such as a delete acknowledgment.
func Detail(ctx *gin.Context, status int, message string) {
	JSON(ctx, status, DetailBody{Detail: message})
}

// Error writes an ErrorBody and aborts the handler chain.
func Error(ctx *gin.Context, status int, message string, fields map[string]string) ErrorBody {
	if status == 0 {
		status = http.StatusBadRequest
	}
	body := ErrorBody{
		Detail:    message,
		Errors:    fields,
		RequestID: ctx.GetString("request_id"),
	}
	ctx.AbortWithStatusJSON(status, body)
	return body
}
