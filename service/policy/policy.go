// Package policy is the single place where ownership and role rules
// live. Every mutating handler asks here instead of re-deriving the
// rule inline.
package policy

import "github.com/eliff53/kitapkiralama/model"

// CanCancelRental: only the renter may cancel. Not the book owner,
// not an admin.
func CanCancelRental(caller model.Caller, r *model.Rental) bool {
	return r != nil && caller.ID == r.UserID
}

// CanModifyBook: only the listing owner may delete or edit a book.
func CanModifyBook(caller model.Caller, b *model.Book) bool {
	return b != nil && caller.ID == b.OwnerID
}

// CanManageUsers covers the admin surface: user listing, deletion,
// role changes.
func CanManageUsers(caller model.Caller) bool {
	return caller.IsAdmin()
}

// CanManageCatalog covers category creation and book-of-the-week
// promotion.
func CanManageCatalog(caller model.Caller) bool {
	return caller.IsAdmin()
}
