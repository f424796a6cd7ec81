package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
	usernameRe   = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

// InitValidator 初始化验证器，并把自定义规则注册到gin的binding引擎
func InitValidator() {
	validateOnce.Do(func() {
		validate = validator.New()
		registerCustom(validate)

		if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
			registerCustom(engine)
		}
	})
}

func registerCustom(v *validator.Validate) {
	_ = v.RegisterValidation("username", validateUsername)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// GetValidator 获取验证器实例
func GetValidator() *validator.Validate {
	InitValidator()
	return validate
}

// validateUsername 验证用户名
func validateUsername(fl validator.FieldLevel) bool {
	username := fl.Field().String()
	if len(username) < 3 || len(username) > 50 {
		return false
	}
	return usernameRe.MatchString(username)
}

// ValidateStruct 验证结构体，失败时返回 ValidationError
func ValidateStruct(s interface{}) error {
	v := GetValidator()
	if err := v.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// FormatBindError 把gin绑定错误转成 ValidationError
func FormatBindError(err error) error {
	return formatValidationError(err)
}

// formatValidationError 格式化验证错误
func formatValidationError(err error) error {
	var messages []string

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			param := e.Param()

			var message string
			switch e.Tag() {
			case "required":
				message = fmt.Sprintf("%s is required", field)
			case "min":
				message = fmt.Sprintf("%s must be at least %s characters", field, param)
			case "max":
				message = fmt.Sprintf("%s must be at most %s characters", field, param)
			case "email":
				message = fmt.Sprintf("%s must be a valid email address", field)
			case "oneof":
				message = fmt.Sprintf("%s must be one of [%s]", field, param)
			case "username":
				message = fmt.Sprintf("%s may only contain letters, digits, '_', '.', '-' (3-50 chars)", field)
			default:
				message = fmt.Sprintf("%s failed validation: %s", field, e.Tag())
			}

			messages = append(messages, message)
		}
	}

	if len(messages) > 0 {
		return NewValidationError("%s", strings.Join(messages, "; "))
	}

	return NewValidationError("%s", err.Error())
}
