package lead

import "errors"

var (
	ErrLeadNotFound        = errors.New("lead not found")
	ErrDuplicateSubmission = errors.New("session already submitted")
	ErrAlreadyConverted    = errors.New("lead already converted")
	ErrDispatchFailed      = errors.New("crm dispatch failed")
)
