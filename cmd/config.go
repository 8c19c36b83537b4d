package cmd

// Config carries the raw environment settings the application starts from.
// Rates and amounts stay strings here; they are parsed into domain types
// during startup so a typo fails fast instead of silently defaulting.
type Config struct {
	HTTPPort           string
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	DBSslMode          string
	VatRate            string
	CommissionRate     string
	BaseDeliveryFee    string
	DeliveryPerKmRate  string
	DeliveryDistanceKm string
}
