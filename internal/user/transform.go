package user

import (
	"fmt"
	"time"
)

// Link is a navigational reference attached to projected records.
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// PublicUser is the external shape of a user record. Field names are part
// of the API contract and never change with the internal model. The
// password hash and verification token are deliberately absent.
type PublicUser struct {
	Identifier   string  `json:"identifier"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	IsVerified   int     `json:"isVerified"`
	IsAdmin      bool    `json:"isAdmin"`
	CreationDate string  `json:"creationDate"`
	LastChange   string  `json:"lastChange"`
	DeleteDate   *string `json:"deleteDate"`
	Links        []Link  `json:"links"`
}

// attributeMap translates external field names back to internal ones, for
// generic request-to-model translation. See http.TransformInput.
var attributeMap = map[string]string{
	"identifier":   "id",
	"name":         "name",
	"email":        "email",
	"isVerified":   "verified",
	"isAdmin":      "role",
	"creationDate": "created_at",
	"lastChange":   "updated_at",
	"deleteDate":   "deleted_at",
}

// OriginalAttribute maps an external field name to its internal counterpart.
// Unrecognized names return "" and false.
func OriginalAttribute(external string) (string, bool) {
	internal, ok := attributeMap[external]
	return internal, ok
}

// Transformer projects domain users into their public representation.
type Transformer struct {
	baseURL string
}

func NewTransformer(baseURL string) *Transformer {
	return &Transformer{baseURL: baseURL}
}

// Transform maps one user record to the public shape.
func (t *Transformer) Transform(u *User) PublicUser {
	verified := 0
	if u.Verified {
		verified = 1
	}

	var deleteDate *string
	if u.DeletedAt != nil {
		formatted := u.DeletedAt.Format(time.RFC3339)
		deleteDate = &formatted
	}

	return PublicUser{
		Identifier:   u.ID.String(),
		Name:         u.Name,
		Email:        u.Email,
		IsVerified:   verified,
		IsAdmin:      u.IsAdmin(),
		CreationDate: u.CreatedAt.Format(time.RFC3339),
		LastChange:   u.UpdatedAt.Format(time.RFC3339),
		DeleteDate:   deleteDate,
		Links: []Link{
			{
				Rel:  "self",
				Href: fmt.Sprintf("%s/users/%s", t.baseURL, u.ID),
			},
		},
	}
}

// TransformAll maps a slice of records, preserving order.
func (t *Transformer) TransformAll(users []*User) []PublicUser {
	out := make([]PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, t.Transform(u))
	}
	return out
}
