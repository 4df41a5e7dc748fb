package service

type Error struct {
	Code   string
	Detail string
	Cause  error
}

func NewServiceError(code string, cause error) error {
	return Error{Code: code, Cause: cause}
}

func NewServiceErrorWithDetail(code, detail string, cause error) error {
	return Error{Code: code, Detail: detail, Cause: cause}
}

func (e Error) Error() string {
	return e.Cause.Error()
}

func (e Error) Unwrap() error {
	return e.Cause
}
