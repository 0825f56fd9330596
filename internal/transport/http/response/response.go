package response

import "github.com/gin-gonic/gin"

// APIError carries the request id set by the RequestID middleware so an
// operator can correlate a failed response with its log line.
type APIError struct {
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type Meta struct {
	NextCursor string `json:"next_cursor,omitempty"`
}

type APIResponse struct {
	Data  any       `json:"data,omitempty"`
	Error *APIError `json:"error,omitempty"`
	Meta  *Meta     `json:"meta,omitempty"`
}

func RespondOK(c *gin.Context, status int, data any, meta *Meta) {
	c.JSON(status, APIResponse{
		Data: data,
		Meta: meta,
	})
}

func RespondError(c *gin.Context, status int, message string) {
	c.JSON(status, APIResponse{
		Error: &APIError{
			Message:   message,
			RequestID: c.Writer.Header().Get("X-Request-ID"),
		},
	})
}
