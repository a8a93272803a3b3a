package models

// PrincipalKind tags who a session belongs to.
type PrincipalKind string

const (
	PrincipalAnonymous  PrincipalKind = "anonymous"
	PrincipalStudent    PrincipalKind = "student"
	PrincipalCenter     PrincipalKind = "center"
	PrincipalSuperAdmin PrincipalKind = "superadmin"
)

// Principal is the single authenticated slot stored in a session. ID carries
// the studentId for students, the record id for centers and the operator email
// for the super-admin.
type Principal struct {
	Kind PrincipalKind
	ID   string
}

// Anonymous returns the empty principal.
func Anonymous() Principal {
	return Principal{Kind: PrincipalAnonymous}
}

// IsAnonymous reports whether no principal is assigned.
func (p Principal) IsAnonymous() bool {
	return p.Kind == "" || p.Kind == PrincipalAnonymous || p.ID == ""
}

// StudentIdentity is the resolved student view of a session.
type StudentIdentity struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// CenterIdentity is the resolved center view of a session.
type CenterIdentity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SuperAdminIdentity is the resolved operator view of a session.
type SuperAdminIdentity struct {
	Email string `json:"email"`
}

// Identity is the read-only principal resolved once per request.
type Identity struct {
	Kind       PrincipalKind       `json:"kind"`
	Student    *StudentIdentity    `json:"student,omitempty"`
	Center     *CenterIdentity     `json:"center,omitempty"`
	SuperAdmin *SuperAdminIdentity `json:"superAdmin,omitempty"`
}

// AnonymousIdentity returns an identity with no principal.
func AnonymousIdentity() *Identity {
	return &Identity{Kind: PrincipalAnonymous}
}

// IsStudent reports whether a student is signed in.
func (i *Identity) IsStudent() bool {
	return i != nil && i.Kind == PrincipalStudent && i.Student != nil
}

// IsCenter reports whether a center is signed in.
func (i *Identity) IsCenter() bool {
	return i != nil && i.Kind == PrincipalCenter && i.Center != nil
}

// IsSuperAdmin reports whether the operator is signed in.
func (i *Identity) IsSuperAdmin() bool {
	return i != nil && i.Kind == PrincipalSuperAdmin && i.SuperAdmin != nil
}
