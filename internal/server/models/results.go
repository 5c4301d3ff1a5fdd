package models

// SignUpInput carries the registration form.
type SignUpInput struct {
	Email    string
	Password string
	FullName string
	Phone    *string
	Address  *string
}

// SignUpResult is returned after a successful registration.
type SignUpResult struct {
	UserID            string
	Email             string
	FullName          string
	VerificationToken string
}

// SignInResult is returned after a successful sign-in.
type SignInResult struct {
	User      UserSummary
	Token     string
	SessionID string
}

// VerifiedEmail identifies the account whose address was just confirmed.
type VerifiedEmail struct {
	UserID string
	Email  string
}

// VerificationBundle is returned when a verification email is re-sent.
type VerificationBundle struct {
	UserID            string
	Email             string
	VerificationToken string
}
