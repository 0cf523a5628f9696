package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		Port                      string
		DebugHost                 string
		DisableReqLogs            bool
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		ShutdownTimeout           time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	PaymentConfig struct {
		Provider           string // console | stripe | midtrans
		Currency           string
		StripeSecretKey    string
		MidtransServerKey  string
		MidtransProduction bool
		SuccessURL         string // fmt template, receives the course ID
		CancelURL          string
	}

	Config struct {
		Env              string
		Build            string
		Debug            bool
		TestMode         bool
		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		WorkDir          string
		SendgridApiKey   string
		RollbarToken     string
		defaultFromEmail string

		// VerificationTimeoutDelta bounds the validity of email verification tokens.
		VerificationTimeoutDelta time.Duration

		Server   ServerConfig
		Database DatabaseConfig
		Payment  PaymentConfig
	}
)

func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
	}
	if addr.Name == "" {
		addr.Name = c.AppName
	}
	return *addr
}

func (d DatabaseConfig) Address() string {
	return net.JoinHostPort(d.Host, d.Port)
}

func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// NewConfig loads the app configuration from the environment, with an optional `.env.<env>` file.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "dev")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "CourseHub")
	v.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("frontendBaseURL", "http://127.0.0.1:8000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("verificationTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("serverHost", "")
	v.SetDefault("serverPort", "8000")
	v.SetDefault("serverDebugHost", "0.0.0.0:4000")
	v.SetDefault("serverDisableReqLogs", false)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("serverShutdownTimeout", 5*time.Second)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbName", "coursehub")
	v.SetDefault("dbUser", "coursehub")
	v.SetDefault("dbPassword", "coursehub")
	v.SetDefault("dbAdminUser", "postgres")
	v.SetDefault("dbAdminPassword", "postgres")
	v.SetDefault("dbDisableTLS", true)

	v.SetDefault("paymentProvider", "console")
	v.SetDefault("paymentCurrency", "rub")
	v.SetDefault("stripeSecretKey", "")
	v.SetDefault("midtransServerKey", "")
	v.SetDefault("midtransProduction", false)
	v.SetDefault("paymentSuccessURL", "http://127.0.0.1:8000/api/student/confirm_subscription/%d")
	v.SetDefault("paymentCancelURL", "http://127.0.0.1:8000/api/student/courses")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:                      env,
		Build:                    v.GetString("build"),
		Debug:                    v.GetBool("debug"),
		TestMode:                 v.GetBool("testMode"),
		AppName:                  v.GetString("appName"),
		SecretKey:                v.GetString("secretKey"),
		FrontendBaseURL:          v.GetString("frontendBaseURL"),
		WorkDir:                  wd,
		SendgridApiKey:           v.GetString("sendgridApiKey"),
		RollbarToken:             v.GetString("rollbarToken"),
		defaultFromEmail:         v.GetString("defaultFromEmail"),
		VerificationTimeoutDelta: v.GetDuration("verificationTimeoutDelta"),
		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			Port:                      v.GetString("serverPort"),
			DebugHost:                 v.GetString("serverDebugHost"),
			DisableReqLogs:            v.GetBool("serverDisableReqLogs"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
			ShutdownTimeout:           v.GetDuration("serverShutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		Payment: PaymentConfig{
			Provider:           strings.ToLower(v.GetString("paymentProvider")),
			Currency:           strings.ToLower(v.GetString("paymentCurrency")),
			StripeSecretKey:    v.GetString("stripeSecretKey"),
			MidtransServerKey:  v.GetString("midtransServerKey"),
			MidtransProduction: v.GetBool("midtransProduction"),
			SuccessURL:         v.GetString("paymentSuccessURL"),
			CancelURL:          v.GetString("paymentCancelURL"),
		},
	}
}

// NewTestConfig returns a Config suited for tests: no env lookups, fixed secrets.
func NewTestConfig() *Config {
	return &Config{
		Env:                      "TEST",
		Build:                    "test",
		TestMode:                 true,
		AppName:                  "CourseHub",
		SecretKey:                "secret",
		FrontendBaseURL:          "http://localhost:8000",
		defaultFromEmail:         "noreply@localhost",
		VerificationTimeoutDelta: 3 * 24 * time.Hour,
		Server: ServerConfig{
			DisableReqLogs:            true,
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			ShutdownTimeout:           time.Second,
		},
		Payment: PaymentConfig{
			Provider:   "console",
			Currency:   "rub",
			SuccessURL: "http://localhost:8000/api/student/confirm_subscription/%d",
			CancelURL:  "http://localhost:8000/api/student/courses",
		},
	}
}
