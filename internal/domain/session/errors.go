package session

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionComplete  = errors.New("session already complete")
	ErrSubmitInFlight   = errors.New("submission already in progress")
	ErrUnknownField     = errors.New("field not part of current step")
	ErrUnknownOption    = errors.New("option not part of current step")
	ErrQuestionHidden   = errors.New("question is hidden by its condition")
	ErrStepIncomplete   = errors.New("current step is incomplete")
	ErrStepInvalid      = errors.New("current step failed validation")
	ErrNotOptionalStep  = errors.New("current step is not skippable")
	ErrAlreadyFirstStep = errors.New("already on first step")
	ErrWrongStepType    = errors.New("operation does not match step type")
	ErrDispatchFailed   = errors.New("lead submission failed")
	ErrFunnelMismatch   = errors.New("session does not belong to this funnel")
)
