// Package models contains data structures for the application's domain models.
package models

import "time"

// User is a creator profile. Following and Followers mirror each other across
// users: B in A.Following iff A in B.Followers.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Name           string    `json:"name"`
	Avatar         string    `json:"avatar"`
	Bio            string    `json:"bio"`
	Location       string    `json:"location"`
	ArtType        string    `json:"artType"`
	UserType1      string    `json:"userType1,omitempty"`
	UserType2      string    `json:"userType2,omitempty"`
	Contributions  float64   `json:"contributions"`
	ProjectsJoined int       `json:"projectsJoined"`
	CreatedAt      time.Time `json:"createdAt"`
	Following      IDSet     `json:"following"`
	Followers      IDSet     `json:"followers"`
	Posts          IDSet     `json:"posts"`
	PasswordHash   string    `json:"passwordHash,omitempty"`
}

// Public returns a copy safe to hand to API clients.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// UserPatch holds profile fields to merge into a user; nil fields are left untouched.
type UserPatch struct {
	Name      *string `json:"name,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	Location  *string `json:"location,omitempty"`
	ArtType   *string `json:"artType,omitempty"`
	UserType1 *string `json:"userType1,omitempty"`
	UserType2 *string `json:"userType2,omitempty"`
}

// Apply merges the patch into u.
func (p UserPatch) Apply(u *User) {
	setIf(&u.Name, p.Name)
	setIf(&u.Avatar, p.Avatar)
	setIf(&u.Bio, p.Bio)
	setIf(&u.Location, p.Location)
	setIf(&u.ArtType, p.ArtType)
	setIf(&u.UserType1, p.UserType1)
	setIf(&u.UserType2, p.UserType2)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
