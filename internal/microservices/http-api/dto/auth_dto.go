package dto

// Data Transfer Objects for authentication requests and responses

// RegisterRequest: payload for user registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest: payload for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse: response payload after successful login.
// TokenExpiration is expressed in hours.
type AuthResponse struct {
	Token           string `json:"token"`
	UserID          string `json:"userId"`
	TokenExpiration int    `json:"tokenExpiration"`
}

// RegisterResponse: response payload after successful registration
type RegisterResponse struct {
	Message string         `json:"message"`
	Member  MemberResponse `json:"member"`
}
