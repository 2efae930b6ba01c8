package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/rovora/search-service/internal/domain"
)

var registerOnce sync.Once

// registerValidators installs the custom binding rules on gin's validator.
// Field names in validation errors use the query parameter name.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("playstatus", playStatusList)
	})
}

// playStatusList accepts a comma-separated list of known play statuses.
func playStatusList(fl validator.FieldLevel) bool {
	for _, s := range domain.SplitList(fl.Field().String()) {
		if _, ok := domain.ParsePlayStatus(s); !ok {
			return false
		}
	}
	return true
}

// bindingMessage turns a query binding error into a client-facing message.
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid search parameters"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("invalid %s: %q", fe.Field(), fe.Value()))
	}
	return strings.Join(msgs, "; ")
}
