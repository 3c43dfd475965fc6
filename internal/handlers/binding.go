package handlers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"prizewheel/internal/models"
)

type bindMessages map[string]map[string]string

var (
	deleteMessages = bindMessages{
		"Name": {
			"required": "prize name is required",
			"notblank": "prize name is required",
		},
	}
	saveMessages = bindMessages{
		"Prizes": {"required": "prize list is required"},
	}
)

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("notblank", validators.NotBlank)
	})
}

// bindJSON decodes the body into req. On failure it answers with a
// {success: false} result and reports false.
func bindJSON(c *gin.Context, req any, messages bindMessages, fallback string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResult{
			Success: false,
			Message: resolveBindError(err, messages, fallback),
		})
		return false
	}
	return true
}

func resolveBindError(err error, messages bindMessages, fallback string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, verr := range verrs {
			if fieldMsgs, ok := messages[verr.Field()]; ok {
				if msg, ok := fieldMsgs[verr.Tag()]; ok {
					return msg
				}
			}
		}
	}
	if fallback != "" {
		return fallback
	}
	return "invalid request"
}
