package model

import "strings"

// User is the subset of a firm user the notification subsystem needs
type User struct {
	ID        string `json:"id" db:"id" bson:"_id"`
	FirstName string `json:"firstName" db:"first_name" bson:"firstName"`
	LastName  string `json:"lastName" db:"last_name" bson:"lastName"`
	Email     string `json:"email" db:"email" bson:"email"`
	IsActive  bool   `json:"isActive" db:"is_active" bson:"isActive"`
}

// FullName joins first and last name, falling back to the email address
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}
