package app

import "errors"

var (
	ErrInvalidInput      = errors.New("account name must be at least 3 alphanumeric characters and password at least 6 word characters")
	ErrAccountTaken      = errors.New("account name is already used")
	ErrInvalidCredential = errors.New("wrong account name or password")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrMissingImage      = errors.New("an image is required")
	ErrInvalidMime       = errors.New("only jpg, png and gif images can be posted")
	ErrImageTooLarge     = errors.New("the file size is too large")
)
