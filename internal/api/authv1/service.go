package authv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "credkeeper.v1.AuthService"

// Full method names, as seen by interceptors.
const (
	MethodRegister              = "/" + ServiceName + "/Register"
	MethodLogin                 = "/" + ServiceName + "/Login"
	MethodRefreshTokens         = "/" + ServiceName + "/RefreshTokens"
	MethodLogout                = "/" + ServiceName + "/Logout"
	MethodForgotPassword        = "/" + ServiceName + "/ForgotPassword"
	MethodVerifyCode            = "/" + ServiceName + "/VerifyCode"
	MethodResetPassword         = "/" + ServiceName + "/ResetPassword"
	MethodSendVerificationEmail = "/" + ServiceName + "/SendVerificationEmail"
	MethodVerifyEmail           = "/" + ServiceName + "/VerifyEmail"
	MethodUserInfo              = "/" + ServiceName + "/UserInfo"
	MethodChangePassword        = "/" + ServiceName + "/ChangePassword"
	MethodPing                  = "/" + ServiceName + "/Ping"
)

type AuthServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	RefreshTokens(context.Context, *RefreshTokensRequest) (*RefreshTokensResponse, error)
	Logout(context.Context, *LogoutRequest) (*Empty, error)
	ForgotPassword(context.Context, *ForgotPasswordRequest) (*Empty, error)
	VerifyCode(context.Context, *VerifyCodeRequest) (*Empty, error)
	ResetPassword(context.Context, *ResetPasswordRequest) (*Empty, error)
	SendVerificationEmail(context.Context, *SendVerificationEmailRequest) (*Empty, error)
	VerifyEmail(context.Context, *VerifyEmailRequest) (*Empty, error)
	UserInfo(context.Context, *Empty) (*UserInfoResponse, error)
	ChangePassword(context.Context, *ChangePasswordRequest) (*Empty, error)
	Ping(context.Context, *Empty) (*PingResponse, error)
}

// UnimplementedAuthServiceServer answers codes.Unimplemented for every method.
type UnimplementedAuthServiceServer struct{}

func unimplemented(name string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", name)
}

func (UnimplementedAuthServiceServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, unimplemented("Register")
}
func (UnimplementedAuthServiceServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, unimplemented("Login")
}
func (UnimplementedAuthServiceServer) RefreshTokens(context.Context, *RefreshTokensRequest) (*RefreshTokensResponse, error) {
	return nil, unimplemented("RefreshTokens")
}
func (UnimplementedAuthServiceServer) Logout(context.Context, *LogoutRequest) (*Empty, error) {
	return nil, unimplemented("Logout")
}
func (UnimplementedAuthServiceServer) ForgotPassword(context.Context, *ForgotPasswordRequest) (*Empty, error) {
	return nil, unimplemented("ForgotPassword")
}
func (UnimplementedAuthServiceServer) VerifyCode(context.Context, *VerifyCodeRequest) (*Empty, error) {
	return nil, unimplemented("VerifyCode")
}
func (UnimplementedAuthServiceServer) ResetPassword(context.Context, *ResetPasswordRequest) (*Empty, error) {
	return nil, unimplemented("ResetPassword")
}
func (UnimplementedAuthServiceServer) SendVerificationEmail(context.Context, *SendVerificationEmailRequest) (*Empty, error) {
	return nil, unimplemented("SendVerificationEmail")
}
func (UnimplementedAuthServiceServer) VerifyEmail(context.Context, *VerifyEmailRequest) (*Empty, error) {
	return nil, unimplemented("VerifyEmail")
}
func (UnimplementedAuthServiceServer) UserInfo(context.Context, *Empty) (*UserInfoResponse, error) {
	return nil, unimplemented("UserInfo")
}
func (UnimplementedAuthServiceServer) ChangePassword(context.Context, *ChangePasswordRequest) (*Empty, error) {
	return nil, unimplemented("ChangePassword")
}
func (UnimplementedAuthServiceServer) Ping(context.Context, *Empty) (*PingResponse, error) {
	return nil, unimplemented("Ping")
}

// unary adapts a typed server method to grpc.MethodHandler, running the
// interceptor chain when one is installed.
func unary[Req, Resp any](fullMethod string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuthServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AuthServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var AuthService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unary(MethodRegister, AuthServiceServer.Register)},
		{MethodName: "Login", Handler: unary(MethodLogin, AuthServiceServer.Login)},
		{MethodName: "RefreshTokens", Handler: unary(MethodRefreshTokens, AuthServiceServer.RefreshTokens)},
		{MethodName: "Logout", Handler: unary(MethodLogout, AuthServiceServer.Logout)},
		{MethodName: "ForgotPassword", Handler: unary(MethodForgotPassword, AuthServiceServer.ForgotPassword)},
		{MethodName: "VerifyCode", Handler: unary(MethodVerifyCode, AuthServiceServer.VerifyCode)},
		{MethodName: "ResetPassword", Handler: unary(MethodResetPassword, AuthServiceServer.ResetPassword)},
		{MethodName: "SendVerificationEmail", Handler: unary(MethodSendVerificationEmail, AuthServiceServer.SendVerificationEmail)},
		{MethodName: "VerifyEmail", Handler: unary(MethodVerifyEmail, AuthServiceServer.VerifyEmail)},
		{MethodName: "UserInfo", Handler: unary(MethodUserInfo, AuthServiceServer.UserInfo)},
		{MethodName: "ChangePassword", Handler: unary(MethodChangePassword, AuthServiceServer.ChangePassword)},
		{MethodName: "Ping", Handler: unary(MethodPing, AuthServiceServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "credkeeper/v1/auth.json",
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthService_ServiceDesc, srv)
}
