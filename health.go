package main

// NotifyPolicy decides when a health write or replica delivery re-runs the
// change callback
type NotifyPolicy uint8

const (
	// NotifyEveryDelivery runs the callback on every write and every replica
	// delivery, even when the value did not change
	NotifyEveryDelivery NotifyPolicy = 0
	// NotifyOnChange runs the callback only when the stored value changed
	NotifyOnChange NotifyPolicy = 1
)

// ParseNotifyPolicy maps a config string to a policy. Unknown values fall
// back to NotifyEveryDelivery.
func ParseNotifyPolicy(s string) NotifyPolicy {
	if s == "on-change" {
		return NotifyOnChange
	}
	return NotifyEveryDelivery
}

// HealthState is a replicated health value. Only the authority instance may
// write it; observers receive the value through ApplyReplicated.
type HealthState struct {
	role     Role
	current  float64
	max      float64
	policy   NotifyPolicy
	onChange func()
}

// NewHealthState creates a full-health state
func NewHealthState(role Role, max float64, onChange func()) *HealthState {
	if max < 0 {
		max = 0
	}
	return &HealthState{
		role:     role,
		current:  max,
		max:      max,
		onChange: onChange,
	}
}

func (h *HealthState) Current() float64 { return h.current }
func (h *HealthState) Max() float64     { return h.max }
func (h *HealthState) Role() Role       { return h.role }

// SetPolicy changes the notification policy
func (h *HealthState) SetPolicy(p NotifyPolicy) {
	h.policy = p
}

// SetCurrentHealth clamps v to [0, max], stores it and notifies. Returns
// false without touching state when called without authority or with a
// non-finite value.
func (h *HealthState) SetCurrentHealth(v float64) bool {
	if h.role != RoleAuthority {
		return false
	}
	if !finite(v) {
		return false
	}
	next := Clamp(v, 0, h.max)
	changed := next != h.current
	h.current = next
	if changed || h.policy == NotifyEveryDelivery {
		h.notify()
	}
	return true
}

// TakeDamage subtracts amount through SetCurrentHealth
func (h *HealthState) TakeDamage(amount float64) bool {
	return h.SetCurrentHealth(h.current - amount)
}

// ApplyReplicated stores a value delivered by replication. The authority
// owns the canonical value and ignores deliveries. Returns true if the
// stored value changed.
func (h *HealthState) ApplyReplicated(v float64) bool {
	if h.role == RoleAuthority {
		return false
	}
	if !finite(v) {
		return false
	}
	next := Clamp(v, 0, h.max)
	changed := next != h.current
	h.current = next
	if changed || h.policy == NotifyEveryDelivery {
		h.notify()
	}
	return changed
}

// Depleted reports whether health has reached zero
func (h *HealthState) Depleted() bool {
	return h.current <= 0
}

func (h *HealthState) notify() {
	if h.onChange != nil {
		h.onChange()
	}
}
