package common

const (
	EnvKeyEnvironment string = "ENVIRONMENT"

	EnvKeyDatabaseURL  string = "DATABASE_URL"
	EnvKeyHTTPHostPort string = "HTTP_HOST_PORT"

	EnvKeySecretKey                 string = "SECRET_KEY"
	EnvKeyAlgorithm                 string = "ALGORITHM"
	EnvKeyAccessTokenExpireMinutes  string = "ACCESS_TOKEN_EXPIRE_MINUTES"
	EnvKeyRefreshTokenExpireMinutes string = "REFRESH_TOKEN_EXPIRE_MINUTES"

	EnvKeyDeviceDataSecretKey string = "DEVICE_DATA_SECRET_KEY"
	EnvKeyDeviceDataAlgorithm string = "DEVICE_DATA_ALGORITHM"

	EnvKeyCORSOrigins  string = "BACKEND_CORS_ORIGINS"
	EnvKeyTrustedHosts string = "TRUSTED_HOSTS"

	EnvKeyAuthRateLimit string = "AUTH_RATE_LIMIT"
	EnvKeyAuthRateBurst string = "AUTH_RATE_BURST"

	LoggerNameAuth          string = "auth"
	LoggerNameIngest        string = "ingest"
	LoggerNameCrud          string = "crud"
	LoggerNameRestfulServer string = "restful_server"

	LoggerFieldCategory string = "category"
)
