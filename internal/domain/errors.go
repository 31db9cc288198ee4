package domain

import "errors"

// Request rejections. None of them is fatal and none mutates state.
var (
	ErrDuplicateRoom = errors.New("room already exists")
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
)
