package core

// Identity is the session identity explicitly passed to every operation that
// reads or writes per-user state. It is populated once per request from the
// verified auth claims; the zero value is the anonymous caller.
type Identity struct {
	ID        string
	Name      string
	Email     string
	AvatarURL string
}

// Anonymous reports whether the caller has no identity. Progress and scores
// are not tracked for anonymous callers.
func (i Identity) Anonymous() bool { return i.Email == "" }

// DisplayName returns the user's display name, falling back to the local part
// of the email address.
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	for j := 0; j < len(i.Email); j++ {
		if i.Email[j] == '@' {
			return i.Email[:j]
		}
	}
	return i.Email
}
