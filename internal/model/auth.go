package model

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type RegisterResponse struct {
	User User `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutResponse struct{}

type GetMeRequest struct{}

type GetMeResponse User

type AssignRoleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type AssignRoleResponse struct{}

const SessionUserIDKey = "user_id"

func (r LoginResponse) SessionInfo() map[string]any {
	return map[string]any{SessionUserIDKey: r.User.ID}
}

func (r LoginResponse) AccessTokenInfo() string {
	return r.AccessToken
}

func (r RefreshTokenResponse) AccessTokenInfo() string {
	return r.AccessToken
}

func (LogoutResponse) ClearSession() {}
