// Package models defines the core data structures for accounts, projects and flows.
package models

import "time"

// Account is a registered local user with credentials.
type Account struct {
	// ID is the unique identifier for the account.
	ID string `json:"id"`
	// Name is the display name chosen at registration.
	Name string `json:"name"`
	// Email is the login identity; unique across the accounts table.
	Email string `json:"email"`
	// PasswordHash is the bcrypt hash of the account secret.
	PasswordHash string `json:"passwordHash"`
	// CreatedAt is the registration time.
	CreatedAt time.Time `json:"createdAt"`
	// Avatar is an optional image data URL.
	Avatar string `json:"avatar,omitempty"`
	// Role is the account role, "user" unless set otherwise.
	Role string `json:"role"`
	// Department is optional organisational metadata.
	Department string `json:"department,omitempty"`
	// Position is optional organisational metadata.
	Position string `json:"position,omitempty"`
}

// Profile is the session-visible copy of an Account. It never carries the secret.
type Profile struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"createdAt"`
	Avatar     string    `json:"avatar,omitempty"`
	Role       string    `json:"role"`
	Department string    `json:"department,omitempty"`
	Position   string    `json:"position,omitempty"`
}

// Profile strips the credential from the account.
func (a Account) Profile() Profile {
	return Profile{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		CreatedAt:  a.CreatedAt,
		Avatar:     a.Avatar,
		Role:       a.Role,
		Department: a.Department,
		Position:   a.Position,
	}
}

// Status is one entry of a project's status workflow (e.g. draft → review → published).
type Status struct {
	ID    string `json:"id"    validate:"required"`
	Name  string `json:"name"  validate:"required"`
	Color string `json:"color"`
}

// Project owns a forest of flows plus project-wide documents and glossary.
type Project struct {
	// ID is the unique identifier for the project.
	ID string `json:"id"`
	// Name is the project title.
	Name string `json:"name"`
	// Description is free text.
	Description string `json:"description"`
	// CreatedAt is the creation time.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is stamped on every persisted mutation.
	UpdatedAt time.Time `json:"updatedAt"`
	// Version is a "major.minor.patch" counter bumped on edits.
	Version string `json:"version"`
	// Statuses is the ordered status set; never empty once settings are saved.
	Statuses []Status `json:"statuses"`
	// Flows holds every flow of the project; parentId links them into a forest.
	Flows []Flow `json:"flows"`
	// Documents are project-level markdown documents.
	Documents []Document `json:"documents,omitempty"`
	// Glossary is a flat list of terms matched against document text at display time.
	Glossary []GlossaryTerm `json:"glossary,omitempty"`
}

// FlowIndex returns the position of the flow with the given id, or -1.
func (p *Project) FlowIndex(id string) int {
	for i := range p.Flows {
		if p.Flows[i].ID == id {
			return i
		}
	}
	return -1
}

// FindFlow returns a pointer into p.Flows, or nil when the id does not resolve.
func (p *Project) FindFlow(id string) *Flow {
	if i := p.FlowIndex(id); i >= 0 {
		return &p.Flows[i]
	}
	return nil
}

// GlossaryTerm is a project glossary entry.
type GlossaryTerm struct {
	ID          string    `json:"id"`
	Term        string    `json:"term"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
