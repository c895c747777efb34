package service

import "errors"

var (
	ErrIDRequired           = errors.New("id is required")
	ErrNotFound             = errors.New("record not found")
	ErrReaderNil            = errors.New("reader is nil")
	ErrUnsupportedProcessor = errors.New("processor does not support this operation")
	ErrDisputeClosed        = errors.New("dispute is already closed")
)
