package service

// Actor identifies the caller of a service operation. Admins may act on
// resources owned by other users.
type Actor struct {
	UserID string
	Admin  bool
}

// CanAccess reports whether the actor may act on a resource owned by ownerID.
func (a Actor) CanAccess(ownerID string) bool {
	return a.Admin || (a.UserID != "" && a.UserID == ownerID)
}
