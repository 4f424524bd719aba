package config

type SMSConfig struct {
	Provider   string `yaml:"provider"` // twilio, aws, or empty to disable
	FromNumber string `yaml:"from_number"`
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	AWSRegion  string `yaml:"aws_region"`
}

func loadSMSConfig() *SMSConfig {
	return &SMSConfig{
		Provider:   getEnv("SMS_PROVIDER", ""),
		FromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		AWSRegion:  getEnv("AWS_SNS_REGION", "us-east-1"),
	}
}
