package domain

import "time"

// OTP record purposes. An "otp" is a 6-digit code typed by the user; a
// "magic" record holds the opaque token embedded in an emailed login link.
const (
	PurposeOTP       = "otp"
	PurposeMagicLink = "magic"
)

// OtpCode is a single-use login credential tied to an email address.
// Lifecycle: issued → used | expired | superseded by a newer request.
// All three outcomes are terminal.
type OtpCode struct {
	OtpID     string    `json:"id" dynamodbav:"otp_id"`
	Code      string    `json:"-" dynamodbav:"code"`
	Email     string    `json:"email" dynamodbav:"email"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Purpose   string    `json:"purpose" dynamodbav:"purpose"`
	Used      bool      `json:"used" dynamodbav:"used"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

// Expired reports whether the code is past its expiry at the given instant.
func (o *OtpCode) Expired(now time.Time) bool {
	return o.ExpiresAt < now.Unix()
}
