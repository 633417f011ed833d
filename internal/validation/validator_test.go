package validation

import (
	"errors"
	"testing"

	"jobboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type skillBody struct {
	Name string `json:"name" validate:"required,max=100"`
}

type profileBody struct {
	Email  string      `json:"email" validate:"required,email"`
	Type   string      `json:"type" validate:"omitempty,offertype"`
	Age    int         `json:"age" validate:"gte=0"`
	Skills []skillBody `json:"skills" validate:"omitempty,dive"`
}

func asAppError(t *testing.T, err error) *models.AppError {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T", err)
	return appErr
}

func TestDecodeStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		wantField string
		wantErr   bool
	}{
		{"Valid", `{"email":"a@x.com","type":"pfe","age":3}`, "", false},
		{"Empty Body", ``, "", true},
		{"Unknown Field", `{"email":"a@x.com","role":"admin"}`, "role", true},
		{"Mistyped Field", `{"email":"a@x.com","age":"three"}`, "age", true},
		{"Malformed", `{"email":`, "", true},
		{"Trailing Data", `{"email":"a@x.com"} {}`, "", true},
		{"Missing Required", `{"type":"job"}`, "email", true},
		{"Bad Enum", `{"email":"a@x.com","type":"gig"}`, "type", true},
		{"Nested Entry", `{"email":"a@x.com","skills":[{"name":""}]}`, "skills[0].name", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var dst profileBody
			err := DecodeStrict([]byte(tt.body), &dst)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			appErr := asAppError(t, err)
			assert.Equal(t, models.CodeValidation, appErr.Code)
			if tt.wantField != "" {
				assert.Contains(t, appErr.Fields, tt.wantField)
			}
		})
	}
}

func TestStruct_StrongPassword(t *testing.T) {
	t.Parallel()

	type body struct {
		Password string `json:"password" validate:"required,strongpassword"`
	}

	require.NoError(t, Struct(body{Password: "Str0ng!pass"}))

	appErr := asAppError(t, Struct(body{Password: "weakpass"}))
	assert.Contains(t, appErr.Fields["password"], "uppercase")
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"  padded  ", "padded"},
		{"<b>bold</b> & co", "bold & co"},
		{"<script>alert(1)</script>hello", "hello"},
		{`<img src=x onerror="alert(1)">caption`, "caption"},
		{"", ""},
		{"AT&T", "AT&T"},
		{"https://example.com/cv?a=1&param=2", "https://example.com/cv?a=1&param=2"},
		{"https://example.com/?x=1&notify=true&region=eu&copy=1", "https://example.com/?x=1&notify=true&region=eu&copy=1"},
		{"<p>R&amp;D &sect; 3</p>", "R&amp;D &sect; 3"},
		{"5 < 6 & 7", "5 < 6 & 7"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeText(tt.in), tt.in)
	}

	a, b := "<i>x</i>", "y"
	SanitizeAll(&a, nil, &b)
	assert.Equal(t, "x", a)
	assert.Equal(t, "y", b)
}
