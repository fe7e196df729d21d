// Package models defines client-side data models used by the credkeeper CLI.
package models

import "time"

// Session is the signed-in state persisted between CLI runs.
type Session struct {
	Email          string
	UserID         string
	AccessToken    string
	AccessExpires  time.Time
	RefreshToken   string
	RefreshExpires time.Time
	DeviceToken    string
}

// Tokens is an access/refresh pair as handed out by the server.
type Tokens struct {
	AccessToken    string
	AccessExpires  time.Time
	RefreshToken   string
	RefreshExpires time.Time
}

// Apply copies t into s.
func (s *Session) Apply(t Tokens) {
	s.AccessToken = t.AccessToken
	s.AccessExpires = t.AccessExpires
	s.RefreshToken = t.RefreshToken
	s.RefreshExpires = t.RefreshExpires
}

// Profile is the account view returned by UserInfo.
type Profile struct {
	ID             string
	Email          string
	Name           string
	EmailVerified  bool
	DeviceTokens   []string
	AccessExpires  time.Time
	RefreshExpires *time.Time
}
