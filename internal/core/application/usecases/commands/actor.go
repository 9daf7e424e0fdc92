package commands

// Role identifies the kind of actor behind a command. Authentication happens
// upstream; handlers only enforce what each role may do.
type Role string

const (
	// RoleAgent is a delivery agent acting on its own orders.
	RoleAgent Role = "agent"
	// RolePartner is the partner that owns the order.
	RolePartner Role = "partner"
	// RoleAdmin is marketplace staff with override powers.
	RoleAdmin Role = "admin"
)

// IsValid reports whether the role is one of the known actor kinds.
func (r Role) IsValid() bool {
	switch r {
	case RoleAgent, RolePartner, RoleAdmin:
		return true
	}
	return false
}
