package util

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// 错误信息使用客户端看到的 json 字段名
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
}

// ValidateDTO 校验结构体，只返回第一条错误
func ValidateDTO(dto any) error {
	err := validate.Struct(dto)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) || len(vErrs) == 0 {
		return err
	}
	first := vErrs[0]
	if first.Param() != "" {
		return fmt.Errorf("字段 [%s] 校验失败，规则 [%s=%s]", first.Field(), first.Tag(), first.Param())
	}
	return fmt.Errorf("字段 [%s] 校验失败，规则 [%s]", first.Field(), first.Tag())
}
