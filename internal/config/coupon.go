package config

import "time"

type CouponConfig struct {
	// ActivationValue is the opening balance of a newly activated coupon, in
	// minor currency units.
	ActivationValue int64         `yaml:"activation_value"`
	IdempotencyTTL  time.Duration `yaml:"idempotency_ttl"`
	CodeCacheTTL    time.Duration `yaml:"code_cache_ttl"`
}

func loadCouponConfig() *CouponConfig {
	return &CouponConfig{
		ActivationValue: getEnvAsInt64("COUPON_ACTIVATION_VALUE", 50000),
		IdempotencyTTL:  getEnvAsDuration("COUPON_IDEMPOTENCY_TTL", 24*time.Hour),
		CodeCacheTTL:    getEnvAsDuration("COUPON_CODE_CACHE_TTL", 5*time.Minute),
	}
}
