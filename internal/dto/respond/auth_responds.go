package respond

// LoginRespond returns the profile and a fresh token pair.
type LoginRespond struct {
	Uuid         string `json:"uuid"`
	Username     string `json:"username"`
	Nickname     string `json:"nickname"`
	Avatar       string `json:"avatar"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterRespond mirrors LoginRespond so clients are signed in
// immediately after registration.
type RegisterRespond = LoginRespond

// RefreshTokenRespond carries the rotated token pair.
type RefreshTokenRespond struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserInfoRespond is the public profile shape.
type UserInfoRespond struct {
	Uuid     string `json:"uuid"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}
