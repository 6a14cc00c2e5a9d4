package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
)

// dataResponse is the success envelope.
type dataResponse struct {
	Data any `json:"data"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dataResponse{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dataResponse{Data: data})
}

func respondAccepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, dataResponse{Data: data})
}

// respondWithError maps err onto a status code. Only validation errors carry
// their details; everything else answers with the job failure summary.
func respondWithError(c *gin.Context, err error) {
	status := statusFor(err)
	body := errorBody{Code: codeFor(status), Message: domain.Summary(err)}

	switch {
	case domain.IsKind(err, domain.KindInvalidInput):
		var derr *domain.Error
		if errors.As(err, &derr) && derr.Err != nil {
			body.Details = derr.Err.Error()
		}
	case errors.Is(err, domain.ErrNotFound):
		body.Message = "Meeting not found."
	case errors.Is(err, domain.ErrAlreadyQueued):
		body.Message = "Meeting is already scheduled or running."
	case errors.Is(err, domain.ErrStatusConflict):
		body.Message = "Meeting is not in a state that allows this operation."
	}

	c.AbortWithStatusJSON(status, errorResponse{Error: body})
}

func statusFor(err error) int {
	switch {
	case domain.IsKind(err, domain.KindInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyQueued), errors.Is(err, domain.ErrStatusConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "INVALID_INPUT"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	default:
		return "INTERNAL_ERROR"
	}
}
