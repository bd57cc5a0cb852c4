package repositories

import "errors"

// Sentinel errors shared by the repository implementations. Handlers map
// these onto HTTP statuses.
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrPostNotFound          = errors.New("post not found")
	ErrCommentNotFound       = errors.New("comment not found")
	ErrFriendRequestNotFound = errors.New("friend request not found")
	ErrGroupNotFound         = errors.New("group not found")
	ErrMessageNotFound       = errors.New("message not found")
	ErrEventNotFound         = errors.New("event not found")
	ErrListingNotFound       = errors.New("listing not found")
	ErrDuplicate             = errors.New("duplicate entry")
	ErrAlreadyHandled        = errors.New("request already handled")
)
