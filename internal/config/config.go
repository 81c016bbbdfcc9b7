// Package config provides configuration loading, validation, and management
// for the bot. It handles reading from a YAML file, applying BOT_* environment
// variable overrides, setting default values, and validating the result.
package config

import (
	"time"
)

// Config defines the application configuration parameters for all components:
// logging, webhook server, Messenger delivery, advisor AI integration,
// catalog files, session timers, and every user-facing message.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Messenger MessengerConfig `mapstructure:"messenger"`
	Advisor   AdvisorConfig   `mapstructure:"advisor"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Session   SessionConfig   `mapstructure:"session"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LogConfig controls log level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// ServerConfig controls the webhook HTTP server.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"             validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s,max=1m"`
}

// MessengerConfig holds the Graph API credentials and endpoints.
//
// AppSecret is optional: when set, incoming webhook payloads must carry a
// valid X-Hub-Signature-256 header; when empty the check is skipped.
type MessengerConfig struct {
	PageAccessToken string        `mapstructure:"page_access_token" validate:"required"`
	VerifyToken     string        `mapstructure:"verify_token"      validate:"required"`
	AppSecret       string        `mapstructure:"app_secret"`
	GraphURL        string        `mapstructure:"graph_url"         validate:"required,url"`
	SendTimeout     time.Duration `mapstructure:"send_timeout"      validate:"min=1s,max=2m"`
}

// AdvisorConfig selects and configures the conversational AI backend.
type AdvisorConfig struct {
	Provider    string        `mapstructure:"provider"    validate:"oneof=openai gemini"`
	Token       string        `mapstructure:"token"       validate:"required"`
	BaseURL     string        `mapstructure:"base_url"    validate:"omitempty,url"`
	Model       string        `mapstructure:"model"       validate:"required"`
	Temperature float64       `mapstructure:"temperature" validate:"min=0,max=2"`
	Timeout     time.Duration `mapstructure:"timeout"     validate:"min=1s,max=10m"`
}

// CatalogConfig points at the static catalog data loaded once at startup.
type CatalogConfig struct {
	DataPath   string `mapstructure:"data_path"   validate:"required"`
	PromoPath  string `mapstructure:"promo_path"  validate:"required"`
	PromptPath string `mapstructure:"prompt_path" validate:"required"`
}

// SessionConfig controls the inactivity deadlines and the janitor sweep.
type SessionConfig struct {
	NudgeAfter      time.Duration `mapstructure:"nudge_after"      validate:"min=1s"`
	EndAfter        time.Duration `mapstructure:"end_after"        validate:"min=1s,gtfield=NudgeAfter"`
	PruneAfter      time.Duration `mapstructure:"prune_after"      validate:"min=1m"`
	JanitorInterval time.Duration `mapstructure:"janitor_interval" validate:"min=1m"`
}

// MessagesConfig holds every user-facing message the bot sends. The defaults
// carry the storefront's Spanish copy; deployments can override any of them.
type MessagesConfig struct {
	MainMenu       string `mapstructure:"main_menu"`
	SubmenuMen     string `mapstructure:"submenu_men"`
	SubmenuWomen   string `mapstructure:"submenu_women"`
	LocationPrompt string `mapstructure:"location_prompt"`

	DataRequestLima     string `mapstructure:"data_request_lima"`
	DataRequestProvince string `mapstructure:"data_request_province"`
	ErrName             string `mapstructure:"err_name"`
	ErrDNI              string `mapstructure:"err_dni"`
	ErrPhone            string `mapstructure:"err_phone"`
	ErrAddress          string `mapstructure:"err_address"`
	DataReminder        string `mapstructure:"data_reminder"`
	ConfirmProvince     string `mapstructure:"confirm_province"`
	PaymentProvince     string `mapstructure:"payment_province"`
	ConfirmLima         string `mapstructure:"confirm_lima"`

	AdvisorWelcome   string `mapstructure:"advisor_welcome"`
	AdvisorExit      string `mapstructure:"advisor_exit"`
	AdvisorExitShort string `mapstructure:"advisor_exit_short"`
	AdvisorError     string `mapstructure:"advisor_error"`
	AskGender        string `mapstructure:"ask_gender"`
	ModelNotFound    string `mapstructure:"model_not_found"`

	Gratitude       string `mapstructure:"gratitude"`
	UnknownPostback string `mapstructure:"unknown_postback"`
	EmptyCategory   string `mapstructure:"empty_category"`
	IdleNudge       string `mapstructure:"idle_nudge"`
	SessionEnded    string `mapstructure:"session_ended"`

	WhatsAppURL    string `mapstructure:"whatsapp_url"     validate:"required,url"`
	WhatsAppBuyURL string `mapstructure:"whatsapp_buy_url" validate:"required,url"`
}
