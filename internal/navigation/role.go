package navigation

import "strings"

type Role string

const (
	RoleNone     Role = "none"
	RoleBuyer    Role = "buyer"
	RoleSeller   Role = "seller"
	RoleTenant   Role = "tenant"
	RoleLandlord Role = "landlord"
	RoleAgent    Role = "agent"
)

// Kind groups roles of both app variants into the two navigation shapes.
type Kind int

const (
	KindNone Kind = iota
	KindConsumer
	KindProvider
)

func (r Role) Kind() Kind {
	switch r {
	case RoleBuyer, RoleTenant:
		return KindConsumer
	case RoleSeller, RoleLandlord, RoleAgent:
		return KindProvider
	}
	return KindNone
}

func ParseRole(s string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r.Kind() == KindNone {
		return RoleNone
	}
	return r
}

// HomeFor is the landing screen of an authenticated role.
func HomeFor(r Role) Screen {
	switch r.Kind() {
	case KindConsumer:
		return Home
	case KindProvider:
		return Dashboard
	}
	return RoleSelection
}
