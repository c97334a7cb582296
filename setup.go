package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"

	"timesheet/internal/notifications"
	"timesheet/internal/sheets"
)

// setupEnvironment loads .env file and configures zerolog output and log level.
func setupEnvironment() {
	// Load .env file if it exists
	err := godotenv.Load()

	// Configure logging
	if os.Getenv("ENV") == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	levelStr := strings.ToLower(os.Getenv("LOGLEVEL"))
	switch levelStr {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	case "disabled":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "":
		// Default based on environment
		if os.Getenv("ENV") == "production" {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
	}

	// wait until now to report on the .env file so we have the chance to set up logging first
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found or error loading .env file; proceeding with existing environment variables.")
	}
}

// getRequiredEnv fetches a required environment variable or exits if not set.
func getRequiredEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatal().Msgf("%s environment variable is required", key)
	}
	return value
}

// getEnvWithDefault fetches an environment variable with a default fallback.
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// initializeSheetsClient creates the Google Sheets client. Credentials come
// from GOOGLE_CLIENT_EMAIL/GOOGLE_PRIVATE_KEY when both are set, otherwise
// from a service account key file.
func initializeSheetsClient(ctx context.Context) *sheets.Client {
	log.Debug().Msg("Initializing sheets client")

	client, err := sheets.NewClient(ctx, sheetsAuthOptions(ctx)...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create sheets client")
	}

	log.Debug().Msg("Sheets client initialized successfully")
	return client
}

func sheetsAuthOptions(ctx context.Context) []option.ClientOption {
	clientEmail := os.Getenv("GOOGLE_CLIENT_EMAIL")
	privateKey := os.Getenv("GOOGLE_PRIVATE_KEY")

	if clientEmail != "" && privateKey != "" {
		// Keys pasted into env files usually carry literal \n sequences.
		conf := &jwt.Config{
			Email:      clientEmail,
			PrivateKey: []byte(strings.ReplaceAll(privateKey, `\n`, "\n")),
			Scopes:     []string{sheetsv4.SpreadsheetsScope},
			TokenURL:   google.JWTTokenURL,
		}
		log.Info().Msg("Google Sheets auth configured from environment variables")
		return []option.ClientOption{option.WithTokenSource(conf.TokenSource(ctx))}
	}

	credsFile := getEnvWithDefault("CREDENTIALS_FILE", "credentials.json")
	log.Info().Str("file", credsFile).Msg("Google Sheets auth configured from credentials file")
	return []option.ClientOption{
		option.WithCredentialsFile(credsFile),
		option.WithScopes(sheetsv4.SpreadsheetsScope),
	}
}

// initializeNotificationClient creates the optional ntfy client.
func initializeNotificationClient() *notifications.Client {
	enabled := getEnvWithDefault("NTFY_ENABLED", "false") == "true"
	baseURL := getEnvWithDefault("NTFY_URL", "https://ntfy.sh")
	topic := getEnvWithDefault("NTFY_TOPIC", "timesheet")

	client := notifications.NewClient(baseURL, topic, enabled)

	if enabled {
		log.Info().Str("topic", topic).Msg("Notifications enabled")
	} else {
		log.Debug().Msg("Notifications disabled")
	}

	return client
}
