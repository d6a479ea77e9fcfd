package services

import "net/http"

// Failure is an expected business-rule violation together with the status the
// caller should surface. Failures are values; they never carry store internals.
type Failure struct {
	Status  int
	Message string
}

func (f *Failure) Error() string {
	return f.Message
}

func newFailure(status int, message string) *Failure {
	return &Failure{Status: status, Message: message}
}

// NoContent is the data type of operations that succeed without a body.
type NoContent struct{}

// Result is the outcome of a service operation. A Result built with Ok holds
// data and possibly an event to fan out; one built with Fail holds only a
// Failure. The zero value is not meaningful.
type Result[T any] struct {
	status  int
	data    T
	failure *Failure
	event   *Event
}

// Ok returns a successful result.
func Ok[T any](status int, data T) Result[T] {
	return Result[T]{status: status, data: data}
}

// Fail returns a failed result carrying f.
func Fail[T any](f *Failure) Result[T] {
	return Result[T]{status: f.Status, failure: f}
}

// WithEvent attaches the event the caller's edge layer should broadcast.
// It has no effect on a failed result.
func (r Result[T]) WithEvent(e Event) Result[T] {
	if r.failure != nil {
		return r
	}
	r.event = &e
	return r
}

func (r Result[T]) Status() int {
	return r.status
}

func (r Result[T]) Failed() bool {
	return r.failure != nil
}

// Data returns the success payload. ok is false for failed results.
func (r Result[T]) Data() (data T, ok bool) {
	if r.failure != nil {
		var zero T
		return zero, false
	}
	return r.data, true
}

// Failure returns nil for successful results.
func (r Result[T]) Failure() *Failure {
	return r.failure
}

// Event returns the event to broadcast, if the operation produced one.
func (r Result[T]) Event() (Event, bool) {
	if r.event == nil {
		return Event{}, false
	}
	return *r.event, true
}

// Message service failures.
var (
	ErrTextEmpty         = newFailure(http.StatusBadRequest, "text cannot be empty")
	ErrTextTooLong       = newFailure(http.StatusBadRequest, "text too long")
	ErrSenderNotFound    = newFailure(http.StatusNotFound, "sender not found")
	ErrRoomNotFound      = newFailure(http.StatusNotFound, "room not found")
	ErrSenderNotMember   = newFailure(http.StatusForbidden, "user is not a member of this room")
	ErrReceiverNotFound  = newFailure(http.StatusNotFound, "receiver not found")
	ErrReceiverNotMember = newFailure(http.StatusForbidden, "receiver is not a member of this room")
	ErrOriginalNotFound  = newFailure(http.StatusNotFound, "original message not found")
	ErrCrossRoomReply    = newFailure(http.StatusBadRequest, "cannot reply to message from different room")
	ErrMessageNotFound   = newFailure(http.StatusNotFound, "message not found")
	ErrEditNotAllowed    = newFailure(http.StatusForbidden, "user not allowed to edit this message")
	ErrDeleteNotAllowed  = newFailure(http.StatusForbidden, "user not allowed to delete this message")
	ErrSendFailed        = newFailure(http.StatusInternalServerError, "failed to send message")
	ErrGetMessagesFailed = newFailure(http.StatusInternalServerError, "failed to get room messages")
	ErrEditFailed        = newFailure(http.StatusInternalServerError, "failed to edit message")
	ErrUpdateFailed      = newFailure(http.StatusInternalServerError, "failed to update message")
	ErrDeleteFailed      = newFailure(http.StatusInternalServerError, "failed to delete message")
	ErrReplyFailed       = newFailure(http.StatusInternalServerError, "failed to reply to message")
)

// Room service failures.
var (
	ErrCreatorNotFound    = newFailure(http.StatusNotFound, "creator user not found")
	ErrRoomNameEmpty      = newFailure(http.StatusBadRequest, "room name cannot be empty")
	ErrUserNotFound       = newFailure(http.StatusNotFound, "user not found")
	ErrAlreadyMember      = newFailure(http.StatusBadRequest, "user is already a member of this room")
	ErrNotMember          = newFailure(http.StatusNotFound, "user is not a member of this room")
	ErrCreateRoomFailed   = newFailure(http.StatusInternalServerError, "failed to create room")
	ErrAddMemberFailed    = newFailure(http.StatusInternalServerError, "failed to add member to room")
	ErrRemoveMemberFailed = newFailure(http.StatusInternalServerError, "failed to remove member from room")
	ErrGetMembersFailed   = newFailure(http.StatusInternalServerError, "failed to get room members")
)

// Auth service failures.
var (
	ErrUsernameRequired = newFailure(http.StatusBadRequest, "username cannot be empty")
	ErrPasswordTooShort = newFailure(http.StatusBadRequest, "password must be at least 6 characters")
	ErrUsernameTaken    = newFailure(http.StatusUnprocessableEntity, "username already registered")
	ErrInvalidPassword  = newFailure(http.StatusUnauthorized, "invalid password")
	ErrCreateUserFailed = newFailure(http.StatusInternalServerError, "failed to create user")
	ErrLoginFailed      = newFailure(http.StatusInternalServerError, "failed to login")
	ErrGetUserFailed    = newFailure(http.StatusInternalServerError, "failed to retrieve user")
)
