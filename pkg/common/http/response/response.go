package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response codes carried in the JSON envelope.
const (
	CodeSuccess        = 20000
	CodeNotFound       = 40400
	CodeInternalServer = 50000
	CodeUnavailable    = 50300
)

var httpStatus = map[int]int{
	CodeSuccess:        http.StatusOK,
	CodeNotFound:       http.StatusNotFound,
	CodeInternalServer: http.StatusInternalServerError,
	CodeUnavailable:    http.StatusServiceUnavailable,
}

var messages = map[int]string{
	CodeSuccess:        "success",
	CodeNotFound:       "not found",
	CodeInternalServer: "internal server error",
	CodeUnavailable:    "service unavailable",
}

// Response is the envelope of every JSON reply.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StatusOf maps a response code to its HTTP status.
func StatusOf(code int) int {
	if s, ok := httpStatus[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func SuccessResponse(c *gin.Context, code int, data any) {
	c.JSON(StatusOf(code), Response{Code: code, Message: messages[code], Data: data})
}

func ErrorResponse(c *gin.Context, code int, err error) {
	resp := Response{Code: code, Message: messages[code]}
	if err != nil {
		resp.Error = err.Error()
	}
	c.AbortWithStatusJSON(StatusOf(code), resp)
}
