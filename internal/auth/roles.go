package auth

// Role is the privilege level a user resolves to. Owner and Developer are
// global; ChatAdmin only holds within the chat it was derived for.
type Role int

const (
	RolePublic Role = iota
	RoleChatAdmin
	RoleDeveloper
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "Owner"
	case RoleDeveloper:
		// Historical alias kept for user-facing output.
		return "Founder"
	case RoleChatAdmin:
		return "ChatAdmin"
	default:
		return "Public"
	}
}

// Tier is the privilege level a command prefix demands.
type Tier int

const (
	TierNone Tier = iota
	TierPublic
	TierAdmin
	TierDeveloper
)

func (t Tier) String() string {
	switch t {
	case TierDeveloper:
		return "developer"
	case TierAdmin:
		return "admin"
	case TierPublic:
		return "public"
	default:
		return "none"
	}
}
