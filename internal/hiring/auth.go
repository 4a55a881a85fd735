package hiring

import "fmt"

// Role determines which operations a caller is authorized to perform.
// It is fixed for the lifetime of a session and forwarded by the Gateway.
type Role string

const (
	RoleRecruiter Role = "RECRUITER"
	RoleJobSeeker Role = "JOB_SEEKER"
)

// ParseRole converts a raw string to a Role, returning an error for unknown
// values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	switch r {
	case RoleRecruiter, RoleJobSeeker:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// AuthenticatedUser is the identity attached to every request by the
// Gateway. The core treats it as trusted input; it never consults ambient
// session state.
type AuthenticatedUser struct {
	ID    string
	Email string
	Role  Role
}

// authorize is the shared role + ownership guard.
//
// Ownership failures are reported as ErrJobNotFound rather than a forbidden
// error so callers cannot probe for jobs owned by other recruiters. Pure
// predicate — no side effects.
func authorize(user AuthenticatedUser, job *Job, required Role, requireOwnership bool) error {
	if user.Role != required {
		return ErrUnauthorized
	}
	if requireOwnership && job.PostedBy != user.ID {
		return ErrJobNotFound
	}
	return nil
}
