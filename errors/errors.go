package errors

import "fmt"

var (
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrInvalidCoordinate = fmt.Errorf("coordinate outside the grid")
	ErrInvalidColor      = fmt.Errorf("color must be a 6 hex digit value")
	ErrEmptyContent      = fmt.Errorf("message content is empty")
	ErrContentTooLong    = fmt.Errorf("message content exceeds the maximum length")
	ErrNoIdentity        = fmt.Errorf("no authenticated user")
	ErrDeliveryDropped   = fmt.Errorf("delivery dropped, subscriber buffer full")
	ErrNotGroupMember    = fmt.Errorf("user is not a member of the group")
	ErrUnknownTopic      = fmt.Errorf("unknown topic")
)
