package auth

// LoginRequest carries admin credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginResponse returns the signed token plus the account it belongs to.
type LoginResponse struct {
	Token string     `json:"token"`
	User  *AdminUser `json:"user"`
}
