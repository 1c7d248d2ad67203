package domain

import "time"

type User struct {
	UserID    string    `json:"id" dynamodbav:"user_id"`
	Email     string    `json:"email" dynamodbav:"email"`
	Username  string    `json:"username" dynamodbav:"username"`
	Name      string    `json:"name" dynamodbav:"name"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

// SendOTPRequest drives both registration and login. A present username means
// registration; absent means login for an existing account.
type SendOTPRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Username *string `json:"username" validate:"omitempty,min=3"`
}

// UpdateProfileRequest carries the profile fields a logged-in user may change.
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type VerifyOTPRequest struct {
	Email   string `json:"email" validate:"required,email"`
	OTPCode string `json:"otp_code" validate:"required,len=6,number"`
}
