package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"budget/config"
	"budget/middleware"
	"budget/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// SafeErrorMessage 生产环境下不向客户端暴露内部错误详情
func SafeErrorMessage(err error, fallback string) string {
	return config.SafeErrorMessage(err, fallback)
}

// respondError 把 service 层错误映射为 HTTP 响应
func respondError(c *gin.Context, err error, fallback string) {
	var verr *service.ValidationError
	var perr *service.PersistenceError
	switch {
	case errors.As(err, &verr):
		ValidationFailed(c, verr.Fields)
	case errors.Is(err, service.ErrNotFound):
		NotFound(c, notFoundMessage(err))
	case errors.Is(err, service.ErrEmailDisabled):
		Error(c, http.StatusServiceUnavailable, "Email delivery is not configured")
	case errors.As(err, &perr):
		logrus.WithFields(logrus.Fields{
			"op":      perr.Op,
			"user_id": middleware.GetCurrentUserID(c),
			"path":    c.FullPath(),
		}).WithError(perr.Err).Error("存储操作失败")
		InternalError(c, SafeErrorMessage(err, fallback))
	default:
		logrus.WithField("path", c.FullPath()).WithError(err).Error(fallback)
		InternalError(c, SafeErrorMessage(err, fallback))
	}
	_ = c.Error(err)
}

func notFoundMessage(err error) string {
	resource := strings.TrimSuffix(err.Error(), " "+service.ErrNotFound.Error())
	if resource == "" || resource == err.Error() {
		return "Not found"
	}
	return strings.ToUpper(resource[:1]) + resource[1:] + " not found"
}

// bindingFailed 把 gin 绑定错误转换为字段错误
func bindingFailed(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &verrs):
		fields := make([]service.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, service.FieldError{
				Field:   lowerFirst(fe.Field()),
				Message: fieldMessage(fe),
			})
		}
		ValidationFailed(c, fields)
	case errors.As(err, &typeErr):
		ValidationFailed(c, []service.FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("Expected %s", typeErr.Type.String()),
		}})
	case errors.As(err, &syntaxErr):
		BadRequest(c, "Malformed JSON body")
	default:
		BadRequest(c, SafeErrorMessage(err, "Invalid request"))
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "hexcolor":
		return "Invalid color format"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "email":
		return "Invalid email address"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
