// Package handler provides the HTTP request handlers.
package handler

import (
	"errors"
	"net/http"

	"beacon_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ResponseData is the uniform response envelope.
type ResponseData struct {
	Code int `json:"code"`
	Msg  any `json:"msg"`
	Data any `json:"data,omitempty"`
}

// HandleSuccess writes a 200 envelope.
func HandleSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code": errorx.CodeSuccess,
		"msg":  "success",
		"data": data,
	})
}

// HandleCreated writes a 201 envelope for resource-creating endpoints.
func HandleCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{
		"code": errorx.CodeSuccess,
		"msg":  "success",
		"data": data,
	})
}

// httpStatus maps a business code onto the transport status so clients
// can route on the status line alone.
func httpStatus(code int) int {
	switch code {
	case errorx.CodeInvalidParam:
		return http.StatusBadRequest
	case errorx.CodeUnauthorized:
		return http.StatusUnauthorized
	case errorx.CodeForbidden:
		return http.StatusForbidden
	case errorx.CodeNotFound:
		return http.StatusNotFound
	case errorx.CodeConflict:
		return http.StatusConflict
	case errorx.CodeGone:
		return http.StatusGone
	case errorx.CodeServerBusy:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HandleError classifies an error into the envelope. Storage and cache
// failures keep their diagnostic detail in the log, not the response.
func HandleError(c *gin.Context, err error) {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		msg := codeErr.Msg
		if codeErr.Code == errorx.CodeDBError || codeErr.Code == errorx.CodeCacheError {
			zap.L().Error("storage error",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(err),
			)
			msg = "internal error"
		}
		c.JSON(httpStatus(codeErr.Code), gin.H{
			"code": codeErr.Code,
			"msg":  msg,
			"data": nil,
		})
		return
	}

	zap.L().Error("unclassified error",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"code": errorx.CodeServerBusy,
		"msg":  "server busy, try again later",
		"data": nil,
	})
}

// HandleParamError translates binding failures into a 400 envelope.
func HandleParamError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": errorx.CodeInvalidParam,
			"msg":  RemoveTopStruct(validationErrs.Translate(Trans)),
			"data": nil,
		})
		return
	}

	// Non-validator failure, typically malformed JSON.
	c.JSON(http.StatusBadRequest, gin.H{
		"code": errorx.CodeInvalidParam,
		"msg":  "invalid request payload",
		"data": nil,
	})
}
