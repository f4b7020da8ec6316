package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type bookForm struct {
	Title    string  `form:"title" validate:"required" msg:"required=Title is required"`
	Author   *string `form:"author"`
	Year     *int    `form:"yearOfPublication,year" validate:"omitempty,gte=1600,notfuture"`
	EAN13    *int64  `form:"ean13" validate:"omitempty,ean13" msg:"number=EAN13 must be exactly 13 digits"`
	CopyNum  *int    `form:"copyNum" validate:"required,min=1" msg:"required=Copy number is required;number=Copy number is required"`
	Status   string  `form:"loanableStatus" validate:"required,oneof='available on site' loanable" msg:"required=Please select a loanable status;oneof=Please select a loanable status"`
	CoverURL *string `form:"coverURL" validate:"omitempty,url" msg:"url=Invalid URL format"`
}

func TestParse(t *testing.T) {
	t.Parallel()
	cv := NewCustomValidator()
	cv.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name       string
		raw        map[string]string
		wantErrors FieldErrors
		check      func(t *testing.T, f bookForm)
	}{
		{
			name: "ok. optional fields absent stay nil",
			raw:  map[string]string{"title": " Dune ", "copyNum": "2", "loanableStatus": "loanable", "author": ""},
			check: func(t *testing.T, f bookForm) {
				require.Equal(t, "Dune", f.Title)
				require.Nil(t, f.Author)
				require.Nil(t, f.Year)
				require.Nil(t, f.EAN13)
				require.Equal(t, 2, *f.CopyNum)
			},
		},
		{
			name: "ok. year from iso date",
			raw: map[string]string{
				"title": "Dune", "copyNum": "1", "loanableStatus": "available on site",
				"yearOfPublication": "1965-08-01", "ean13": "9780441172719",
			},
			check: func(t *testing.T, f bookForm) {
				require.Equal(t, 1965, *f.Year)
				require.Equal(t, int64(9780441172719), *f.EAN13)
			},
		},
		{
			name: "err. every invalid field reported",
			raw:  map[string]string{"title": "", "copyNum": "0", "loanableStatus": "lost", "coverURL": "not a url"},
			wantErrors: FieldErrors{
				"title":          {"Title is required"},
				"copyNum":        {"copyNum must be at least 1"},
				"loanableStatus": {"Please select a loanable status"},
				"coverURL":       {"Invalid URL format"},
			},
		},
		{
			name: "err. ean13 too short",
			raw:  map[string]string{"title": "Dune", "copyNum": "1", "loanableStatus": "loanable", "ean13": "123"},
			wantErrors: FieldErrors{
				"ean13": {"EAN13 must be exactly 13 digits"},
			},
		},
		{
			name: "err. non numeric reported once",
			raw:  map[string]string{"title": "Dune", "copyNum": "two", "loanableStatus": "loanable", "ean13": "abc"},
			wantErrors: FieldErrors{
				"copyNum": {"Copy number is required"},
				"ean13":   {"EAN13 must be exactly 13 digits"},
			},
		},
		{
			name: "err. year bounds",
			raw:  map[string]string{"title": "Dune", "copyNum": "1", "loanableStatus": "loanable", "yearOfPublication": "2030"},
			wantErrors: FieldErrors{
				"yearOfPublication": {"Year cannot be in the future"},
			},
		},
		{
			name: "err. year too old",
			raw:  map[string]string{"title": "Dune", "copyNum": "1", "loanableStatus": "loanable", "yearOfPublication": "1500"},
			wantErrors: FieldErrors{
				"yearOfPublication": {"yearOfPublication must be at least 1600"},
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var f bookForm
			got := cv.Parse(tt.raw, &f)
			if tt.wantErrors == nil {
				require.Empty(t, got)
			} else {
				require.Equal(t, tt.wantErrors, got)
			}
			if tt.check != nil {
				tt.check(t, f)
			}
		})
	}
}

func TestParse_NonPointerPanics(t *testing.T) {
	t.Parallel()
	require.Panics(t, func() {
		Parse(map[string]string{}, bookForm{})
	})
}

func TestCustomValidator_Validate(t *testing.T) {
	t.Parallel()
	type req struct {
		Email string `json:"email" validate:"required,email"`
	}
	cv := NewCustomValidator()
	require.NoError(t, cv.Validate(req{Email: "a@b.co"}))
	require.Error(t, cv.Validate(req{Email: "nope"}))
}

func TestFieldErrors_String(t *testing.T) {
	t.Parallel()
	fe := FieldErrors{}
	fe.Add("title", "Title is required")
	fe.Add("copyNum", "Copy number must be a number")
	fe.Add("copyNum", "Copy number must be at least 1")
	require.Equal(t, "copyNum: Copy number must be a number, Copy number must be at least 1; title: Title is required", fe.String())
}

func TestParse_NoTrim(t *testing.T) {
	t.Parallel()
	type credentials struct {
		Email    string `form:"email" validate:"required,email"`
		Password string `form:"password,notrim" validate:"required,min=6" msg:"min=Password must be at least 6 characters"`
	}
	tests := []struct {
		name       string
		password   string
		want       string
		wantErrors FieldErrors
	}{
		{name: "surrounding spaces kept", password: "  secret  ", want: "  secret  "},
		{name: "spaces count towards length", password: "      ab", want: "      ab"},
		{name: "too short", password: "ab", want: "ab", wantErrors: FieldErrors{"password": {"Password must be at least 6 characters"}}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var c credentials
			fieldErrs := Parse(map[string]string{"email": " ann@example.com ", "password": tt.password}, &c)
			require.Equal(t, "ann@example.com", c.Email)
			require.Equal(t, tt.want, c.Password)
			if tt.wantErrors == nil {
				require.Empty(t, fieldErrs)
				return
			}
			require.Equal(t, tt.wantErrors, fieldErrs)
		})
	}
}
