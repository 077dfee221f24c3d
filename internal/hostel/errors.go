package hostel

import "errors"

var (
	ErrDuplicateStudent   = errors.New("student already exists")
	ErrStudentNotFound    = errors.New("student not found")
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrSameRoom           = errors.New("desired room is the current room")
	ErrComplaintNotFound  = errors.New("complaint not found")
	ErrRequestNotFound    = errors.New("room change request not found")
	ErrRequestClosed      = errors.New("room change request is no longer pending")
	ErrFeeNotFound        = errors.New("fee not found")
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrNoticeNotFound     = errors.New("notice not found")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid allotment id or room number")

	// ErrNoDocument is returned by a Repository that has nothing persisted yet.
	ErrNoDocument         = errors.New("no hostel document stored")
	ErrUnsupportedVersion = errors.New("unsupported document version")
)

// keptError marks a failed operation whose partial state change must still
// be committed (a room change rejected because the desired room is full).
type keptError struct {
	err error
}

func (e *keptError) Error() string { return e.err.Error() }

func (e *keptError) Unwrap() error { return e.err }

func commitAndFail(err error) error {
	return &keptError{err: err}
}
