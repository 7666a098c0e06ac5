package account

// Config is the env-driven account configuration.
type Config struct {
	MinPasswordLength int    `env:"ACCOUNT_MIN_PASSWORD_LENGTH" envDefault:"3"`
	SuccessRedirect   string `env:"ACCOUNT_SUCCESS_REDIRECT" envDefault:"/training"`
	LogoutRedirect    string `env:"ACCOUNT_LOGOUT_REDIRECT" envDefault:"/"`
}

// DefaultConfig mirrors the envDefault tags.
func DefaultConfig() Config {
	return Config{
		MinPasswordLength: 3,
		SuccessRedirect:   "/training",
		LogoutRedirect:    "/",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinPasswordLength <= 0 {
		c.MinPasswordLength = d.MinPasswordLength
	}
	if c.SuccessRedirect == "" {
		c.SuccessRedirect = d.SuccessRedirect
	}
	if c.LogoutRedirect == "" {
		c.LogoutRedirect = d.LogoutRedirect
	}
	return c
}
