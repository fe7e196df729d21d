package models

import (
	"slices"
	"time"
)

// User is the profile record the auth flows read and patch. It is owned by
// the profile store; the auth services only mutate it through UserPatch.
type User struct {
	ID            string
	Email         string
	Name          string
	PasswordHash  string
	EmailVerified bool
	DeviceTokens  []string
	CreatedAt     time.Time
}

// HasDeviceToken reports whether token is registered for the user.
func (u *User) HasDeviceToken(token string) bool {
	return slices.Contains(u.DeviceTokens, token)
}

// UserPatch is a partial update. Nil pointers and empty slices leave the
// corresponding field untouched.
type UserPatch struct {
	Name               *string
	PasswordHash       *string
	EmailVerified      *bool
	AddDeviceTokens    []string
	RemoveDeviceTokens []string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.PasswordHash == nil && p.EmailVerified == nil &&
		len(p.AddDeviceTokens) == 0 && len(p.RemoveDeviceTokens) == 0
}

// Apply mutates u according to the patch. Device tokens behave as a set:
// adding a present token or removing an absent one is a no-op.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.EmailVerified != nil {
		u.EmailVerified = *p.EmailVerified
	}
	for _, t := range p.AddDeviceTokens {
		if t != "" && !u.HasDeviceToken(t) {
			u.DeviceTokens = append(u.DeviceTokens, t)
		}
	}
	if len(p.RemoveDeviceTokens) > 0 {
		u.DeviceTokens = slices.DeleteFunc(u.DeviceTokens, func(t string) bool {
			return slices.Contains(p.RemoveDeviceTokens, t)
		})
	}
}
