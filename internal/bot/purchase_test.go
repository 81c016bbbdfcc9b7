package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendasmegan/meganbot/internal/session"
)

func TestProvinciaFlowComplete(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	f.sessions.SetStage("user-1", session.StageAwaitingDataProvincia)

	f.text("user-1", "Juana Perez Lopez 12345678 987654321")

	msgs := f.sender.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "CONFIRM_PROVINCE", msgs[0].text)
	assert.Equal(t, "PAYMENT_PROVINCE", msgs[1].text)

	sess := f.sessions.Get("user-1")
	assert.Equal(t, session.StageNone, sess.Stage)
	assert.True(t, sess.ProvinceConfirmationSent)
}

func TestLimaFlowComplete(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	f.sessions.SetStage("user-1", session.StageAwaitingDataLima)

	f.text("user-1", "Carlos Ramos 987654321 vive en Av. Los Olivos 123")

	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].text, "recargo")
	assert.Equal(t, session.StageNone, f.sessions.Get("user-1").Stage)
}

func TestLimaFlowMissingAddress(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	f.sessions.SetStage("user-1", session.StageAwaitingDataLima)

	f.text("user-1", "Carlos Ramos 987654321")

	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "ERR_ADDRESS", msgs[0].text)
	assert.Equal(t, session.StageAwaitingDataLima, f.sessions.Get("user-1").Stage)
}

func TestProvinciaFlowFieldErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"missing name", "12345678 987654321", "ERR_NAME"},
		{"missing dni", "Juana Perez 987654321", "ERR_DNI"},
		{"missing phone", "Juana Perez 12345678", "ERR_PHONE"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newRouterFixture(t)
			f.sessions.SetStage("user-1", session.StageAwaitingDataProvincia)
			f.text("user-1", tc.input)

			msgs := f.sender.messages()
			require.Len(t, msgs, 1)
			assert.Equal(t, tc.wantMsg, msgs[0].text)
			assert.Equal(t, session.StageAwaitingDataProvincia, f.sessions.Get("user-1").Stage)
		})
	}
}

func TestPurchaseReminderOnce(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	f.sessions.SetStage("user-1", session.StageAwaitingDataProvincia)

	f.text("user-1", "una consulta antes de comprar...")
	f.text("user-1", "sigue ahí?")

	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "DATA_REMINDER", msgs[0].text)
	assert.True(t, f.sessions.Get("user-1").WarningSent)
}

func TestPurchaseFieldErrorIgnoresWarningFlag(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	f.sessions.Mutate("user-1", func(s *session.Session) {
		s.Stage = session.StageAwaitingDataLima
		s.WarningSent = true
	})

	// A field-specific failure always answers, even after the one-shot
	// reminder was spent.
	f.text("user-1", "Carlos Ramos 987654321")

	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "ERR_ADDRESS", msgs[0].text)
}

func TestFieldPatterns(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		re      string
		input   string
		matches bool
	}{
		{"name with trailing digits", "name", "Juana Perez Lopez 12345678", true},
		{"single word is not a name", "name", "Juana", false},
		{"lowercase words are not a name", "name", "juana perez", false},
		{"accented name", "name", "José Ñañez pregunta", true},
		{"phone must start with 9", "phone", "887654321", false},
		{"phone standalone", "phone", "mi número es 987654321", true},
		{"phone too long", "phone", "9876543210", false},
		{"dni standalone", "dni", "dni 12345678 gracias", true},
		{"dni not inside phone", "dni", "987654321", false},
		{"address keyword", "address", "vivo en Jr. Cusco 105", true},
		{"address case-insensitive", "address", "AVENIDA AREQUIPA 2020", true},
		{"no address keyword", "address", "frente al parque", false},
	}

	regexes := map[string]interface{ MatchString(string) bool }{
		"name":    nameRe,
		"phone":   phoneRe,
		"dni":     dniRe,
		"address": addressRe,
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.matches, regexes[tc.re].MatchString(tc.input))
		})
	}
}
