package entity

import "math"

// MaxAge is the largest age every backend can store (postgres INTEGER).
const MaxAge = math.MaxInt32

// User is the aggregate root for the user directory.
// ID is the store-assigned identifier rendered as a string; it is set exactly
// once, on insert, and never changes afterwards.
type User struct {
	ID    string
	Name  string
	Email string
	Age   int
}

// UserFields is the replaceable part of a User: everything except ID.
type UserFields struct {
	Name  string
	Email string
	Age   int
}

// WithID attaches a store-assigned identifier to the fields.
func (f UserFields) WithID(id string) *User {
	return &User{ID: id, Name: f.Name, Email: f.Email, Age: f.Age}
}

// Fields returns the replaceable part of u.
func (u *User) Fields() UserFields {
	return UserFields{Name: u.Name, Email: u.Email, Age: u.Age}
}
