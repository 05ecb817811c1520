package auth

// Role is the closed set of account roles. A user's role is fixed at
// registration and never changes for the lifetime of the account.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleClient   Role = "client"
	RoleSupplier Role = "supplier"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleClient, RoleSupplier:
		return Role(s), true
	}
	return "", false
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UserID int64 `json:"user_id"`
	Role   Role  `json:"role"`
}

// Allows reports whether the identity may access a resource group scoped
// to the given role. Admin is a superset of both client and supplier.
func (i Identity) Allows(required Role) bool {
	if i.Role == RoleAdmin {
		return true
	}
	return i.Role == required
}
