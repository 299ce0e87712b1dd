package config

import (
	"fmt"
	"os"
)

// Config holds everything the server needs from the environment. The Razorpay
// key secret doubles as the signature verification key, so it is loaded once
// here and injected rather than read from the environment at verify time.
type Config struct {
	Port         string
	MongoURI     string
	DatabaseName string

	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string

	JWTSecret     string
	AdminPassword string
}

// Load reads configuration from the environment. Required values missing is a
// startup failure, not something to discover on the first request.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              os.Getenv("PORT"),
		MongoURI:          os.Getenv("MONGOURI"),
		DatabaseName:      os.Getenv("MONGO_DATABASE"),
		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayBaseURL:   os.Getenv("RAZORPAY_BASE_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.DatabaseName == "" {
		cfg.DatabaseName = "sevasangamdb"
	}
	if cfg.RazorpayBaseURL == "" {
		cfg.RazorpayBaseURL = "https://api.razorpay.com"
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGOURI environment variable not set")
	}
	if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
		return nil, fmt.Errorf("RAZORPAY_KEY_ID or RAZORPAY_KEY_SECRET environment variable not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	return cfg, nil
}
