package errors

import "fmt"

var (
	ErrWorkerPanic   = fmt.Errorf("worker panic")
	ErrNotRegistered = fmt.Errorf("user not registered")
	ErrRoomNotFound  = fmt.Errorf("room not found")
	ErrNotInRoom     = fmt.Errorf("user not in a room")
)
