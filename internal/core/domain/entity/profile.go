package entity

// Profile carries the display fields the admin order listing joins in.
// Written by the authentication collaborator; read-only here.
type Profile struct {
	ID    string
	Name  string
	Email string
}

// RoleAdmin is the only role the storefront acts on. Presence of a role
// row (caller, RoleAdmin) is the sole authorization signal.
const RoleAdmin = "admin"
