package entity

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// IsValidUser reports whether u carries the login keys, a password and a non-negative point balance.
func IsValidUser(u *User) bool {
	return u != nil && validate.Struct(u) == nil
}

// IsValidPost reports whether p is well formed enough to enter the store.
// Comments must be a non-nil slice; an empty one is fine.
func IsValidPost(p *Post) bool {
	return p != nil && validate.Struct(p) == nil
}

// IsValidComment reports whether c has an ID, author, content and creation time.
func IsValidComment(c *Comment) bool {
	return c != nil && validate.Struct(c) == nil
}
