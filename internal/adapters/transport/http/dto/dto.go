package dto

// Every request arrives as flat string fields, either form-encoded or JSON.

type LoginDTO struct {
	Username string `form:"username" json:"username" validate:"nonblank,max=50"`
	Password string `form:"password" json:"password" validate:"nonblank"`
}

type RegisterDTO struct {
	Username string `form:"username" json:"username" validate:"nonblank,max=50"`
	Password string `form:"password" json:"password" validate:"nonblank,max=128"`
	Email    string `form:"email"    json:"email"    validate:"nonblank,email,max=100"`
	Phone    string `form:"phone"    json:"phone"    validate:"omitempty,max=20"`
	Question string `form:"question" json:"question" validate:"omitempty,max=100"`
	Answer   string `form:"answer"   json:"answer"   validate:"omitempty,max=100"`
}

type CheckValidDTO struct {
	Str  string `form:"str"  json:"str"  validate:"nonblank"`
	Type string `form:"type" json:"type" validate:"nonblank"`
}

type ForgetQuestionDTO struct {
	Username string `form:"username" json:"username" validate:"nonblank"`
}

type ForgetAnswerDTO struct {
	Username string `form:"username" json:"username" validate:"nonblank"`
	Question string `form:"question" json:"question" validate:"nonblank"`
	Answer   string `form:"answer"   json:"answer"   validate:"nonblank"`
}

type ForgetResetDTO struct {
	Username    string `form:"username"    json:"username"    validate:"nonblank"`
	PasswordNew string `form:"passwordNew" json:"passwordNew" validate:"nonblank,max=128"`
	ForgetToken string `form:"forgetToken" json:"forgetToken" validate:"nonblank"`
}

type ResetPasswordDTO struct {
	PasswordOld string `form:"passwordOld" json:"passwordOld" validate:"nonblank"`
	PasswordNew string `form:"passwordNew" json:"passwordNew" validate:"nonblank,max=128"`
}

// UpdateInformationDTO carries the editable profile fields. Empty fields
// are left untouched.
type UpdateInformationDTO struct {
	Email    string `form:"email"    json:"email"    validate:"omitempty,email,max=100"`
	Phone    string `form:"phone"    json:"phone"    validate:"omitempty,max=20"`
	Question string `form:"question" json:"question" validate:"omitempty,max=100"`
	Answer   string `form:"answer"   json:"answer"   validate:"omitempty,max=100"`
}
