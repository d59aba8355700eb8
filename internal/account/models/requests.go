package models

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	TaxID       string `json:"tax_id,omitempty"`
}

// LoginRequest authenticates by the opaque username assigned at registration.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token for subsequent requests.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserResponse is the public view of an account. Verification fields are
// read-only; only the workflow mutates them.
type UserResponse struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	CompanyName   string `json:"company_name,omitempty"`
	PhoneNumber   string `json:"phone_number,omitempty"`
	TaxID         string `json:"tax_id,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Status        string `json:"verification_status"`
}

// UpdateProfileRequest carries the caller-editable profile fields. Nil means
// leave unchanged.
type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	CompanyName *string `json:"company_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	TaxID       *string `json:"tax_id,omitempty"`
}

// ToResponse converts a User to its public view.
func ToResponse(u *User) UserResponse {
	return UserResponse{
		ID:            u.ID.String(),
		Username:      u.Username,
		Email:         u.Email,
		Role:          string(u.Role),
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		CompanyName:   u.CompanyName,
		PhoneNumber:   u.PhoneNumber,
		TaxID:         u.TaxID,
		EmailVerified: u.EmailVerified,
		Status:        string(u.Status),
	}
}
