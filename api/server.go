// Package api exposes the blog store over HTTP as tRPC-style procedures.
package api

import (
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jacentio/onetable/store"
)

var registerOnce sync.Once

// RegisterValidators installs the slug rule and JSON field names on gin's
// validator. It is safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return store.ValidSlug(fl.Field().String())
		})
	})
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// NewServer builds a gin engine serving s.
func NewServer(s store.Store, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	RegisterValidators()

	router := gin.New()
	router.Use(RequestLogger(logger), gin.Recovery())
	Routes(router, NewHandler(s, logger))
	return router
}

// RequestLogger logs one line per request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"clientIP", c.ClientIP(),
		)
	}
}
