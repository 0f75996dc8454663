package credentials

// Credentials are the raw sign-up form values. They live for one request
// and are never persisted or logged.
type Credentials struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FullName        string `json:"full_name"`
}

// Signup is a validated sign-up submission.
type Signup struct {
	Email    string
	Password string
	FullName string
}
