package funnel

import "errors"

var (
	ErrFunnelNotFound  = errors.New("funnel not found")
	ErrInvalidFunnel   = errors.New("invalid funnel definition")
	ErrDuplicateFunnel = errors.New("duplicate funnel id")
)
