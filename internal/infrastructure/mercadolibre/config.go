package mercadolibre

import "errors"

// DefaultAPIBaseURL is the production MercadoLibre API endpoint
const DefaultAPIBaseURL = "https://api.mercadolibre.com"

// DefaultSiteID is the marketplace site assumed when a listing does not
// report one
const DefaultSiteID = "MLA"

// Errors for client configuration
var (
	ErrConfigMissingAppID       = errors.New("mercadolibre: app id is required")
	ErrConfigMissingSecretKey   = errors.New("mercadolibre: secret key is required")
	ErrConfigMissingRedirectURI = errors.New("mercadolibre: redirect URI is required")
)

// Config holds configuration for the MercadoLibre API client
type Config struct {
	// AppID is the application id from the MercadoLibre dev console
	AppID string
	// SecretKey is the application secret
	SecretKey string
	// RedirectURI is the OAuth callback URL registered for the app
	RedirectURI string
	// APIBaseURL is the API endpoint, overridable for tests
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// NewConfig creates a client configuration with defaults
func NewConfig(appID, secretKey, redirectURI string) *Config {
	return &Config{
		AppID:          appID,
		SecretKey:      secretKey,
		RedirectURI:    redirectURI,
		APIBaseURL:     DefaultAPIBaseURL,
		TimeoutSeconds: 30,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.AppID == "" {
		return ErrConfigMissingAppID
	}
	if c.SecretKey == "" {
		return ErrConfigMissingSecretKey
	}
	if c.RedirectURI == "" {
		return ErrConfigMissingRedirectURI
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
