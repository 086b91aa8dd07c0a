package client

import "errors"

var (
	ErrUnavailable     = errors.New("server unavailable")
	ErrUnauthorized    = errors.New("not authenticated")
	ErrBadCredentials  = errors.New("incorrect username or password")
	ErrNotFound        = errors.New("item not found")
	ErrWrongAnswers    = errors.New("incorrect security answers")
	ErrAlreadyExists   = errors.New("username already exists")
	ErrInvalidArgument = errors.New("invalid input")
	ErrRateLimited     = errors.New("too many attempts, try again later")
)
