// Package schema defines the documents stored by celerix-build and the
// identity records shared between the API and its clients.
package schema

import "time"

// Role is the caller's role as asserted by the fronting auth provider.
type Role string

const (
	RoleOwner          Role = "owner"
	RoleProjectManager Role = "project_manager"
	RoleSiteEngineer   Role = "site_engineer"
	RoleAccountant     Role = "accountant"
	RoleProfessional   Role = "professional"
	RoleViewer         Role = "viewer"
)

// Roles lists every known role.
var Roles = []Role{
	RoleOwner, RoleProjectManager, RoleSiteEngineer,
	RoleAccountant, RoleProfessional, RoleViewer,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Role Role   `json:"role"`
}

// Meta carries the identity and audit timestamps common to every document.
type Meta struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	CreatedBy string     `json:"createdBy,omitempty"`
}

// GetMeta gives generic code access to the embedded Meta.
func (m *Meta) GetMeta() *Meta { return m }

// Deleted reports whether the document has been soft-deleted.
func (m Meta) Deleted() bool { return m.DeletedAt != nil }

// ApprovalAction is recorded in an approval chain.
type ApprovalAction string

const (
	ActionSubmitted ApprovalAction = "submitted"
	ActionApproved  ApprovalAction = "approved"
	ActionRejected  ApprovalAction = "rejected"
)

// ApprovalEntry records who moved a document through its approval workflow.
// Approval chains are append-only.
type ApprovalEntry struct {
	Action  ApprovalAction `json:"action"`
	By      string         `json:"by"`
	ByName  string         `json:"byName,omitempty"`
	Role    Role           `json:"role"`
	At      time.Time      `json:"at"`
	Comment string         `json:"comment,omitempty"`
}

// Date is a calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return &time.ParseError{Layout: dateLayout, Value: s}
	}
	s = s[1 : len(s)-1]
	// Accept full timestamps sent by browser date pickers.
	if len(s) > len(dateLayout) {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
		*d = NewDate(t)
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
