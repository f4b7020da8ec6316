package model

// Form schemas parsed by validate.Parse from raw form fields.

type BookForm struct {
	Title             string  `form:"title" validate:"required" msg:"required=Title is required"`
	Author            *string `form:"author"`
	EditionName       *string `form:"editionName"`
	YearOfPublication *int    `form:"yearOfPublication,year" validate:"omitempty,gte=1600,notfuture" msg:"number=Invalid year;gte=Year must be 1600 or later;notfuture=Year cannot be in the future"`
	EAN13             *int64  `form:"ean13" validate:"omitempty,ean13" msg:"number=EAN13 must be exactly 13 digits;ean13=EAN13 must be exactly 13 digits"`
	CopyNum           *int    `form:"copyNum" validate:"required,min=1" msg:"required=Copy number is required;number=Copy number must be a number;min=Copy number must be at least 1"`
	LoanableStatus    string  `form:"loanableStatus" validate:"required,oneof='available on site' loanable" msg:"required=Please select a loanable status;oneof=Please select a loanable status"`
	Summary           *string `form:"summary"`
	CoverURL          *string `form:"coverURL" validate:"omitempty,url" msg:"url=Invalid URL format"`
	Genre             *string `form:"genre" validate:"omitempty,uuid" msg:"uuid=Please select a valid genre"`
}

type MemberForm struct {
	Name    string  `form:"name" validate:"required" msg:"required=Name is required"`
	Email   string  `form:"email" validate:"required,email" msg:"required=Invalid email address;email=Invalid email address"`
	Phone   *string `form:"phone"`
	Address *string `form:"address"`
}

type SignupForm struct {
	Name     string `form:"name" validate:"required" msg:"required=Name is required"`
	Email    string `form:"email" validate:"required,email" msg:"required=Invalid email address;email=Invalid email address"`
	Password string `form:"password,notrim" validate:"required,min=6" msg:"required=Password must be at least 6 characters;min=Password must be at least 6 characters"`
}

type LoginForm struct {
	Email    string `form:"email" validate:"required,email" msg:"required=Invalid email address;email=Invalid email address"`
	Password string `form:"password,notrim" validate:"required" msg:"required=Password is required"`
}
