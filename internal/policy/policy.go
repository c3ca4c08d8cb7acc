// Package policy holds the capability checks governing who may read, mutate,
// and transition marketplace records. Handlers and services never compare
// roles or owner IDs directly; every decision routes through here.
package policy

import (
	"carmarket/internal/models"
)

// CanViewListing reports whether viewer may read the listing. Approved
// listings are public; anything else is visible only to the owner or an
// admin. A nil viewer is a guest.
func CanViewListing(viewer *models.User, listing *models.Listing) bool {
	if listing.Status == models.ListingStatusApproved {
		return true
	}
	if viewer == nil {
		return false
	}
	return viewer.IsAdmin() || listing.UserID == viewer.ID
}

// CanCreateListing requires an authenticated, non-blocked account.
func CanCreateListing(actor *models.User) error {
	return canAuthor(actor)
}

// CanModifyListing allows the owner or an admin to update/delete a listing.
// Blocked accounts are always refused, including blocked admins.
func CanModifyListing(actor *models.User, listing *models.Listing) error {
	if actor == nil {
		return models.NewUnauthorizedError("Authentication required")
	}
	if actor.IsBlocked {
		return models.NewForbiddenError("User is blocked")
	}
	if listing.UserID != actor.ID && !actor.IsAdmin() {
		return models.NewForbiddenError("You can only manage your own listings")
	}
	return nil
}

// OwnerTransition validates a status change requested through the generic
// update path. Only the owner may move a listing, only out of approved, and
// only into sold or reserved. Admin approval/rejection goes through the
// dedicated moderation endpoints, never through here.
func OwnerTransition(actor *models.User, listing *models.Listing, target models.ListingStatus) error {
	if listing.UserID != actor.ID {
		return models.NewForbiddenError("Only the owner can change listing status")
	}
	if target != models.ListingStatusSold && target != models.ListingStatusReserved {
		return models.NewValidationError("Status can only be changed to sold or reserved")
	}
	if listing.Status != models.ListingStatusApproved {
		return models.NewConflictError("Only approved listings can be marked sold or reserved")
	}
	return nil
}

// CanModerate gates admin-only operations: approve/reject, hard deletes,
// user block/unblock, and brand/car-model writes.
func CanModerate(actor *models.User) error {
	if actor == nil {
		return models.NewUnauthorizedError("Authentication required")
	}
	if !actor.IsAdmin() {
		return models.NewForbiddenError("Admin access required")
	}
	return nil
}

// CanComment requires an authenticated, non-blocked account. The author is
// always forced to the requester; client-supplied user IDs are ignored.
func CanComment(actor *models.User) error {
	return canAuthor(actor)
}

// CanModifyComment allows the author or an admin to edit/delete a comment.
func CanModifyComment(actor *models.User, comment *models.Comment) error {
	if actor == nil {
		return models.NewUnauthorizedError("Authentication required")
	}
	if actor.IsBlocked {
		return models.NewForbiddenError("User is blocked")
	}
	if comment.UserID != actor.ID && !actor.IsAdmin() {
		return models.NewForbiddenError("You can only manage your own comments")
	}
	return nil
}

// CanBlockUser checks the admin gate plus the self-block guard: an admin can
// never block their own account.
func CanBlockUser(actor *models.User, targetID uint) error {
	if err := CanModerate(actor); err != nil {
		return err
	}
	if actor.ID == targetID {
		return models.NewValidationError("You cannot block yourself")
	}
	return nil
}

func canAuthor(actor *models.User) error {
	if actor == nil {
		return models.NewUnauthorizedError("Authentication required")
	}
	if actor.IsBlocked {
		return models.NewForbiddenError("User is blocked")
	}
	return nil
}
