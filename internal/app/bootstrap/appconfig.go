// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS). AppConfig is everything specific to SchoolHub: the
// MongoDB connection, session cookies, the profile image directory, the
// audit trail mode, Google sign-in, and the bootstrap manager account.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions
	SessionDomain string // Cookie domain (blank means current host)

	// Profile image uploads
	UploadDir string // Directory for stored student profile images

	// Audit trail mode: "all" (db+log), "db", "log", or "off"
	AuditLogMode string

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL for OAuth callbacks
	BaseURL string

	// Bootstrap manager account, created on startup when no such user
	// exists. Leave the email empty to skip.
	ManagerName     string
	ManagerEmail    string
	ManagerPassword string
}
