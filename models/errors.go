package models

import "errors"

// ErrDuplicateMember is returned by the room store when the (room_id, user_id)
// uniqueness constraint rejects a membership insert.
var ErrDuplicateMember = errors.New("membership already exists")

// ErrDuplicateUsername is returned by the user store when the username is taken.
var ErrDuplicateUsername = errors.New("username already exists")
