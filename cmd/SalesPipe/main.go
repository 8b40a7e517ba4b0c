package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CloseLoop/SalesPipe/internal/api"
	"github.com/CloseLoop/SalesPipe/internal/dialogue"
	"github.com/CloseLoop/SalesPipe/internal/genai"
	"github.com/CloseLoop/SalesPipe/internal/messaging"
	"github.com/CloseLoop/SalesPipe/internal/scheduler"
	"github.com/CloseLoop/SalesPipe/internal/slots"
	"github.com/CloseLoop/SalesPipe/internal/store"
	"github.com/CloseLoop/SalesPipe/internal/util"
	"github.com/CloseLoop/SalesPipe/internal/webhook"
	"github.com/CloseLoop/SalesPipe/internal/whatsapp"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for SalesPipe state data
	DefaultStateDir = "/var/lib/salespipe"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "salespipe.db"
	// DefaultWhatsAppDBFileName is the default whatsmeow SQLite database filename
	DefaultWhatsAppDBFileName = "whatsmeow.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Ensure required directories exist
	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	st, err := buildStore(flags)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	sessions := dialogue.NewManager()
	slotEngine := slots.NewEngine(buildSlotOptions(flags)...)
	sched := scheduler.NewScheduler()

	gaClient := buildGenAIClient(flags)
	smsService := buildSMSService()
	bookingHook := buildBookingWebhook(flags)

	server, err := api.NewServer(sessions, slotEngine, st, gaClient, smsService, bookingHook, sched, buildAPIOptions(flags)...)
	if err != nil {
		slog.Error("Failed to configure API server", "error", err)
		os.Exit(1)
	}

	if util.ParseBoolEnv("WHATSAPP_ENABLED", false) {
		if err := startWhatsAppChannel(flags, sessions, gaClient); err != nil {
			slog.Error("Failed to start WhatsApp channel", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Bootstrapping SalesPipe with configured modules")
	slog.Debug("Final configuration", "state_dir", *flags.stateDir, "dsn_set", *flags.dbDSN != "", "api_addr", *flags.apiAddr)
	if err := server.Run(); err != nil {
		slog.Error("SalesPipe failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("SalesPipe exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL string
	WhatsAppDSN string
	StateDir    string
	OpenAIKey   string
	APIAddr     string
	WebhookURL  string
	BusinessTZ  string
}

// Flags holds command line flag values
type Flags struct {
	qrOutput   *string
	numeric    *bool
	stateDir   *string
	dbDSN      *string
	waDSN      *string
	openaiKey  *string
	apiAddr    *string
	webhookURL *string
	businessTZ *string
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		WhatsAppDSN: os.Getenv("WHATSAPP_DB_DSN"),
		StateDir:    os.Getenv("SALESPIPE_STATE_DIR"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		APIAddr:     os.Getenv("API_ADDR"),
		WebhookURL:  os.Getenv("BOOKING_WEBHOOK_URL"),
		BusinessTZ:  os.Getenv("BUSINESS_TIMEZONE"),
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No SALESPIPE_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}
	if config.WhatsAppDSN == "" {
		config.WhatsAppDSN = filepath.Join(config.StateDir, DefaultWhatsAppDBFileName)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"WHATSAPP_DB_DSN_SET", config.WhatsAppDSN != "",
		"SALESPIPE_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"BOOKING_WEBHOOK_URL_SET", config.WebhookURL != "",
		"BUSINESS_TIMEZONE", config.BusinessTZ)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		qrOutput:   flag.String("qr-output", "", "path to write WhatsApp login QR code"),
		numeric:    flag.Bool("numeric-code", false, "use numeric WhatsApp login code instead of QR code"),
		stateDir:   flag.String("state-dir", config.StateDir, "state directory for SalesPipe data (overrides $SALESPIPE_STATE_DIR)"),
		dbDSN:      flag.String("db-dsn", config.DatabaseURL, "database DSN for call events and bookings (overrides $DATABASE_URL)"),
		waDSN:      flag.String("whatsapp-db-dsn", config.WhatsAppDSN, "database DSN for the WhatsApp device store (overrides $WHATSAPP_DB_DSN)"),
		openaiKey:  flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		apiAddr:    flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		webhookURL: flag.String("booking-webhook-url", config.WebhookURL, "CRM booking webhook URL (overrides $BOOKING_WEBHOOK_URL)"),
		businessTZ: flag.String("business-timezone", config.BusinessTZ, "IANA time zone for business hours (overrides $BUSINESS_TIMEZONE)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"qrOutput", *flags.qrOutput,
		"numeric", *flags.numeric,
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"webhookURL_set", *flags.webhookURL != "",
		"businessTZ", *flags.businessTZ)

	// Update database DSN if not explicitly set but state directory is provided
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "dsn_updated", true, "old_state_dir", config.StateDir, "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if !strings.Contains(*flags.dbDSN, "postgres://") && !strings.Contains(*flags.dbDSN, "host=") {
		stateDir := filepath.Dir(*flags.dbDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
	}
	return nil
}

// buildStore selects and initializes the storage backend from the DSN
func buildStore(flags Flags) (store.Store, error) {
	if *flags.dbDSN == "" {
		slog.Debug("No database DSN provided, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_type", "postgresql")
		return store.NewPostgresStore(store.WithPostgresDSN(*flags.dbDSN))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "dsn_type", "sqlite", "db_path", *flags.dbDSN)
	return store.NewSQLiteStore(store.WithSQLiteDSN(*flags.dbDSN))
}

// buildSlotOptions constructs slot engine configuration options
func buildSlotOptions(flags Flags) []slots.Option {
	var slotOpts []slots.Option
	if *flags.businessTZ != "" {
		loc, err := time.LoadLocation(*flags.businessTZ)
		if err != nil {
			slog.Warn("Invalid business timezone, using local time", "timezone", *flags.businessTZ, "error", err)
		} else {
			slotOpts = append(slotOpts, slots.WithLocation(loc))
		}
	}
	return slotOpts
}

// buildGenAIClient constructs the optional completion client
func buildGenAIClient(flags Flags) genai.ClientInterface {
	var genaiOpts []genai.Option
	if *flags.openaiKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openaiKey))
	}
	client, err := genai.NewClient(genaiOpts...)
	if err != nil {
		slog.Warn("Completion client not configured, fallback replies disabled", "error", err)
		return nil
	}
	return client
}

// buildSMSService constructs the optional Twilio SMS sender from environment credentials
func buildSMSService() messaging.Service {
	service, err := messaging.NewTwilioService()
	if err != nil {
		slog.Warn("Twilio SMS not configured, booking confirmations disabled", "error", err)
		return nil
	}
	return service
}

// buildBookingWebhook constructs the optional CRM booking webhook client
func buildBookingWebhook(flags Flags) webhook.Sender {
	if *flags.webhookURL == "" {
		slog.Warn("No booking webhook URL configured, CRM delivery disabled")
		return nil
	}
	client, err := webhook.NewClient(webhook.WithURL(*flags.webhookURL))
	if err != nil {
		slog.Warn("Booking webhook not configured", "error", err)
		return nil
	}
	return client
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	return apiOpts
}

// startWhatsAppChannel connects the WhatsApp text channel and routes its
// messages through the dialogue engine
func startWhatsAppChannel(flags Flags, sessions *dialogue.Manager, gaClient genai.ClientInterface) error {
	var waOpts []whatsapp.Option
	if *flags.waDSN != "" {
		waOpts = append(waOpts, whatsapp.WithDBDSN(*flags.waDSN))
	}
	if *flags.qrOutput != "" {
		waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
	}
	if *flags.numeric {
		waOpts = append(waOpts, whatsapp.WithNumericCode())
	}

	waClient, err := whatsapp.NewClient(waOpts...)
	if err != nil {
		return err
	}
	channel := whatsapp.NewTextChannel(waClient, sessions, gaClient)
	return channel.Start(context.Background())
}
