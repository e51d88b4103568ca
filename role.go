package main

// Role says whether an instance may mutate canonical game state
type Role uint8

const (
	RoleObserver  Role = 0
	RoleAuthority Role = 1
)

func (r Role) String() string {
	if r == RoleAuthority {
		return "authority"
	}
	return "observer"
}
