package session

import "errors"

var (
	ErrUnknownHost = errors.New("host is not in the table")
	ErrLoopStopped = errors.New("session loop stopped")
	ErrResultLost  = errors.New("push channel lost before the result arrived")
)
