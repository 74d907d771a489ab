package circles

import "github.com/circlehub/backend/internal/models"

// Authorization policy: pure predicates over actor identity and circle
// ownership. Callers translate a false result into models.ErrUnauthorized
// before any mutation happens.

// CanCreate reports whether actor may create a circle hosted by requestedHostID.
// Users only create circles hosted by themselves.
func CanCreate(actorID, requestedHostID int64) bool {
	return actorID == requestedHostID
}

// CanModify reports whether actor may edit a circle or manage its tags.
// Host only.
func CanModify(actorID, hostID int64) bool {
	return actorID == hostID
}

// CanDelete reports whether actor may delete a circle. Host or admin.
func CanDelete(actorID int64, actorRole models.Role, hostID int64) bool {
	return actorID == hostID || actorRole == models.RoleAdmin
}
