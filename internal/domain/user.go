package domain

// User is the identity record returned by the storefront API.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Credentials contains login request data.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterCredentials contains registration request data.
type RegisterCredentials struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// AuthResponse is the payload returned by login and register.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
