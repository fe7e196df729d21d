// Package authv1 is the wire contract of the credkeeper.v1.AuthService gRPC
// service. The message structs stand in for generated .pb.go types and keep
// their field shape; they travel as JSON through the codec registered in
// codec.go.
package authv1

import "time"

type Token struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type AuthTokens struct {
	Access  Token `json:"access"`
	Refresh Token `json:"refresh"`
}

type UserProfile struct {
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	Name          string   `json:"name,omitempty"`
	EmailVerified bool     `json:"email_verified"`
	DeviceTokens  []string `json:"device_tokens,omitempty"`
}

type Empty struct{}

type RegisterRequest struct {
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
	Password    string `json:"password"`
	DeviceToken string `json:"device_token,omitempty"`
}

type RegisterResponse struct {
	User   UserProfile `json:"user"`
	Tokens AuthTokens  `json:"tokens"`
}

type LoginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DeviceToken string `json:"device_token,omitempty"`
}

type LoginResponse struct {
	User   UserProfile `json:"user"`
	Tokens AuthTokens  `json:"tokens"`
}

type RefreshTokensRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokensResponse struct {
	Tokens AuthTokens `json:"tokens"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
	DeviceToken  string `json:"device_token,omitempty"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

type SendVerificationEmailRequest struct {
	Email string `json:"email"`
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

type UserInfoResponse struct {
	User    UserProfile `json:"user"`
	Access  Token       `json:"access"`
	Refresh *Token      `json:"refresh,omitempty"`
}

type ChangePasswordRequest struct {
	Password string `json:"password"`
}

type PingResponse struct {
	Status string `json:"status"`
}
