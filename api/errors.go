package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/jacentio/onetable/store"
)

// Error codes carried in the error envelope.
const (
	CodeBadRequest = "BAD_REQUEST"
	CodeConflict   = "CONFLICT"
	CodeNotFound   = "NOT_FOUND"
	CodeInternal   = "INTERNAL_SERVER_ERROR"
)

// Messages returned for store errors.
const (
	MsgMissingKey     = "Bad request: id or slug must be provided"
	MsgUniqueSlug     = "Unique constraint failed: slug"
	MsgForeignBlog    = "Foreign constraint failed: blog"
	MsgInternalServer = "Internal server error"
)

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type resultBody struct {
	Data any `json:"data"`
}

type resultEnvelope struct {
	Result resultBody `json:"result"`
}

func respond(c *gin.Context, data any) {
	c.JSON(http.StatusOK, resultEnvelope{Result: resultBody{Data: data}})
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorEnvelope{Error: errorBody{Message: message, Code: code}})
}

func badRequest(c *gin.Context, err error) {
	abort(c, http.StatusBadRequest, CodeBadRequest, validationMessage(err))
}

// storeError maps store errors onto the envelope. Unknown errors are logged
// and hidden from the caller.
func (h *Handler) storeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, store.ErrConflict):
		abort(c, http.StatusConflict, CodeConflict, MsgUniqueSlug)
	case errors.Is(err, store.ErrNotFound):
		abort(c, http.StatusNotFound, CodeNotFound, MsgForeignBlog)
	case errors.Is(err, store.ErrTooManyPosts):
		abort(c, http.StatusBadRequest, CodeBadRequest, err.Error())
	default:
		h.logger.Error("store operation failed",
			"op", op,
			"error", err,
		)
		abort(c, http.StatusInternalServerError, CodeInternal, MsgInternalServer)
	}
}

// validationMessage renders binding failures as "field: rule" pairs.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Bad request: " + err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fieldPath(fe), rule))
	}
	return "Bad request: " + strings.Join(parts, ", ")
}

// fieldPath drops the request struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
