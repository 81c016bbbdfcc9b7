package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load loads and validates configuration from:
// 1. Default values
// 2. The YAML file at path (optional; missing file falls back to defaults)
// 3. BOT_* environment variables
func Load(path string) (*Config, error) {
	setDefaults()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("BOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Missing config file is fine, defaults plus environment apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values for every optional parameter. The
// message defaults are the storefront's production Spanish copy.
func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")

	viper.SetDefault("server.addr", ":3000")
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)

	viper.SetDefault("messenger.graph_url", "https://graph.facebook.com/v17.0/me/messages")
	viper.SetDefault("messenger.send_timeout", 15*time.Second)

	viper.SetDefault("advisor.provider", "openai")
	viper.SetDefault("advisor.model", "gpt-4o")
	viper.SetDefault("advisor.temperature", 1.0)
	viper.SetDefault("advisor.timeout", 2*time.Minute)

	viper.SetDefault("catalog.data_path", "data.json")
	viper.SetDefault("catalog.promo_path", "promoData.json")
	viper.SetDefault("catalog.prompt_path", "SystemPrompt.txt")

	viper.SetDefault("session.nudge_after", 10*time.Minute)
	viper.SetDefault("session.end_after", 12*time.Minute)
	viper.SetDefault("session.prune_after", 24*time.Hour)
	viper.SetDefault("session.janitor_interval", time.Hour)

	viper.SetDefault("messages.main_menu",
		"👋 ¡Hola! Bienvenido a Tiendas Megan\n⌚💎 Descubre tu reloj ideal o el regalo perfecto 🎁\nElige una opción para ayudarte 👇")
	viper.SetDefault("messages.submenu_men",
		"🔥 ¡Excelente elección! ¿Qué tipo de reloj para caballeros le interesa?")
	viper.SetDefault("messages.submenu_women",
		"🔥 ¡Excelente elección! ¿Qué tipo de reloj para damas le interesa?")
	viper.SetDefault("messages.location_prompt",
		"😊 Por favor indíquenos, ¿su pedido es para Lima o para Provincia?")

	viper.SetDefault("messages.data_request_lima",
		"😊 Claro que sí. Por favor, para enviar su pedido indíquenos los siguientes datos:\n\n"+
			"✅ Nombre completo ✍️\n"+
			"✅ Número de WhatsApp 📱\n"+
			"✅ Dirección exacta 📍\n"+
			"✅ Una referencia de cómo llegar a su domicilio 🏠")
	viper.SetDefault("messages.data_request_province",
		"😊 Claro que sí. Por favor, permítanos los siguientes datos para programar su pedido:\n\n"+
			"✅ Nombre completo ✍️\n"+
			"✅ DNI 🪪\n"+
			"✅ Número de WhatsApp 📱\n"+
			"✅ Agencia Shalom que le queda más cerca 🚚")
	viper.SetDefault("messages.err_name", "📌 Por favor envíe su nombre completo.")
	viper.SetDefault("messages.err_dni", "📌 Su DNI debe tener 8 dígitos. Por favor, envíelo correctamente.")
	viper.SetDefault("messages.err_phone", "📌 Su número de WhatsApp debe tener 9 dígitos y comenzar con 9.")
	viper.SetDefault("messages.err_address", "📌 Su dirección debe incluir calle, avenida, jirón o pasaje.")
	viper.SetDefault("messages.data_reminder",
		"📌 Por favor, asegúrese de enviar sus datos correctos (nombre, WhatsApp, DNI/dirección y agencia Shalom).")
	viper.SetDefault("messages.confirm_province",
		"✅ Su orden ha sido confirmada ✔\nEnvío de: 1 Reloj Premium\n"+
			"👉 Forma: Envío a recoger en Agencia Shalom\n"+
			"👉 Datos recibidos correctamente.\n")
	viper.SetDefault("messages.payment_province",
		"😊 Estimado cliente, para enviar su pedido necesitamos un adelanto simbólico de 20 soles por motivo de seguridad.\n\n"+
			"📱 YAPE: 979 434 826 (Paulina Gonzales Ortega)\n"+
			"🏦 BCP: 19303208489096\n"+
			"🏦 CCI: 00219310320848909613\n\n"+
			"📤 Envíe la captura de su pago aquí para registrar su adelanto.")
	viper.SetDefault("messages.confirm_lima",
		"✅ Su orden ha sido confirmada ✔\nEnvío de: 1 Reloj Premium\n"+
			"👉 Forma: Envío express a domicilio\n"+
			"👉 Datos recibidos correctamente.\n"+
			"💰 El costo incluye S/10 adicionales por envío a domicilio.")

	viper.SetDefault("messages.advisor_welcome",
		"😊 ¡Claro que sí! Estamos listos para responder todas sus dudas y consultas. Por favor, escríbenos qué te gustaría saber ✍️")
	viper.SetDefault("messages.advisor_exit",
		"🚪 Has salido del chat con asesor. Volviendo al menú principal...")
	viper.SetDefault("messages.advisor_exit_short", "🚪 Has salido del chat con asesor.")
	viper.SetDefault("messages.advisor_error",
		"⚠️ Lo siento, hubo un problema al conectarme con el asesor. Intenta nuevamente en unos minutos.")
	viper.SetDefault("messages.ask_gender",
		"😊 Claro que sí. ¿El catálogo que desea ver es para caballeros o para damas?")
	viper.SetDefault("messages.model_not_found",
		"😔 Lo siento, no encontramos ese modelo en nuestra base de datos.")

	viper.SetDefault("messages.gratitude", "😄 ¡Gracias a usted! Estamos para servirle.")
	viper.SetDefault("messages.unknown_postback", "❓ No entendí su selección, por favor intente de nuevo.")
	viper.SetDefault("messages.empty_category", "❌ No tenemos productos en esta categoría por ahora.")
	viper.SetDefault("messages.idle_nudge",
		"¿Le gustaría que le ayudemos en algo más o desea continuar la conversación con un asesor por WhatsApp?")
	viper.SetDefault("messages.session_ended", "⏳ Su sesión ha terminado.")

	viper.SetDefault("messages.whatsapp_url", "https://wa.me/51904805167")
	viper.SetDefault("messages.whatsapp_buy_url", "https://wa.me/51904805167?text=Hola%20quiero%20comprar%20este%20modelo")
}
