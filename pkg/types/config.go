package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	DatabaseSchema  string `envconfig:"DATABASE_SCHEMA" default:"reparv"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"60"`
	DisplayTimezone string `envconfig:"DISPLAY_TIMEZONE" default:"Asia/Kolkata"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`

	// Blob storage
	BlobDriver       string `envconfig:"BLOB_DRIVER" default:"s3"`
	S3Bucket         string `envconfig:"S3_BUCKET"`
	S3Region         string `envconfig:"S3_REGION" default:"ap-south-1"`
	S3Endpoint       string `envconfig:"S3_ENDPOINT"`
	S3PathStyle      bool   `envconfig:"S3_PATH_STYLE" default:"false"`
	S3PublicBaseURL  string `envconfig:"S3_PUBLIC_BASE_URL"`
	S3AccessKeyID    string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey      string `envconfig:"S3_SECRET_ACCESS_KEY"`
	SupabaseURL      string `envconfig:"SUPABASE_PROJECT_URL"`
	SupabaseKey      string `envconfig:"SUPABASE_SERVICE_KEY"`
	SupabaseBucket   string `envconfig:"SUPABASE_BUCKET" default:"uploads"`
	UploadTimeoutSec uint   `envconfig:"UPLOAD_TIMEOUT_SEC" default:"30"`
	UploadMaxBytes   int64  `envconfig:"UPLOAD_MAX_BYTES" default:"10485760"` // 10 MiB per file

	// Pipeline
	ReferralMaxAttempts       int  `envconfig:"REFERRAL_MAX_ATTEMPTS" default:"20"`
	CompensateOrphanedUploads bool `envconfig:"COMPENSATE_ORPHANED_UPLOADS" default:"true"`

	// Auth. Tokens are verified against JWKS_URL when set, otherwise JWT_SECRET (HS256).
	JWTSecret string `envconfig:"JWT_SECRET"`
	JWKSURL   string `envconfig:"JWKS_URL"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// Credential emails
	SMTPHost   string `envconfig:"SMTP_HOST"`
	SMTPPort   int    `envconfig:"SMTP_PORT" default:"465"`
	SMTPUser   string `envconfig:"SMTP_USER"`
	SMTPPass   string `envconfig:"SMTP_PASS"`
	SMTPSender string `envconfig:"SMTP_SENDER"`
}
