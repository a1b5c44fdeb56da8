package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound 资源不存在或不属于当前用户，两种情况不做区分
var ErrNotFound = errors.New("not found")

// FieldError 单个字段的校验错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError 入参校验失败，写库前返回
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError 单字段校验错误
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// Add 追加字段错误
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil 没有字段错误时返回 nil，便于逐项累积后统一返回
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// PersistenceError 存储层失败，细节只写日志
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistenceError(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

func notFound(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// lookupError 区分记录不存在与存储失败
func lookupError(resource, op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(resource)
	}
	return persistenceError(op, err)
}
