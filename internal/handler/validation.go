package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// maxRequestBodyBytes はリクエストボディの上限サイズ。
const maxRequestBodyBytes = 1 << 20

// mealDateLayouts は食事の日時として受け付ける書式。先頭から順に試す。
var mealDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// sessionTokenRule は再利用するセッショントークン（Cookie値）の形式。
// 長さはusers.session_idカラム（VARCHAR(128)）に合わせる。
const sessionTokenRule = "max=128,printascii"

// registerRequest はPOST /usersのリクエストボディ。
type registerRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
}

// mealRequest はPOST /mealsおよびPUT /meals/{id}のリクエストボディ。
// on_dietの欠落を検出するためポインタで受ける。
type mealRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"required,max=2000"`
	Date        string `json:"date" validate:"required,mealdate"`
	OnDiet      *bool  `json:"on_diet" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// エラーメッセージにはJSONのフィールド名を使う
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("mealdate", func(fl validator.FieldLevel) bool {
		_, err := parseMealDate(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}

	return v
}

// parseMealDate は食事の日時文字列を解析する。
// タイムゾーンを含まない書式はUTCとして扱う。
func parseMealDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range mealDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// decodeAndValidate はJSONボディをdstにデコードし、validateタグで検証する。
// 失敗した場合は利用者向けの理由を返す。
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) (string, bool) {
	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return "request body is empty", false
		}
		return "request body must be valid JSON", false
	}

	if err := validate.Struct(dst); err != nil {
		return describeValidationError(err), false
	}
	return "", true
}

// describeValidationError はvalidatorのエラーを1行の理由に変換する。
func describeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			reasons = append(reasons, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			reasons = append(reasons, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "max":
			reasons = append(reasons, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "mealdate":
			reasons = append(reasons, fmt.Sprintf("%s must be a date (YYYY-MM-DD) or date-time", fe.Field()))
		default:
			reasons = append(reasons, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(reasons, "; ")
}

// validSessionToken はCookieから受け取ったトークンが保存可能な形式かを判定する。
// 空文字列（Cookieなし）は有効とする。
func validSessionToken(token string) bool {
	return validate.Var(token, sessionTokenRule) == nil
}

// parseMealID はパスパラメータの食事IDがUUID形式であることを確認する。
func parseMealID(raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
