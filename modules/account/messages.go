package account

import "fmt"

// User-facing messages. Credential failures share one message so responses
// never reveal whether an email is registered.
const (
	MsgInvalidEmail       = "Please enter a valid email address"
	MsgPasswordRequired   = "Please enter your password"
	MsgPasswordTooLong    = "Password must be at most 72 bytes long"
	MsgEmailTaken         = "It seems like an account for the chosen email already exists"
	MsgInvalidCredentials = "Could not authenticate user, please check your credentials"
)

func msgPasswordTooShort(min int) string {
	return fmt.Sprintf("Password must be at least %d characters long", min)
}
