package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/relay/backend/internal/config"
	"github.com/sysu-ecnc-dev/relay/backend/internal/domain"
)

type recordedMail struct {
	calls   int
	auth    string
	payload domain.MailerooPayload
}

func fakeMaileroo(rec *recordedMail, status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec.calls++
		rec.auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&rec.payload)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func validMailForm() url.Values {
	return url.Values{
		"to":      {"someone@example.com"},
		"subject": {"Hello"},
		"message": {"line one\nline two"},
	}
}

func TestSendMailMissingEnv(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*config.Config)
		variable string
	}{
		{
			name:     "api key",
			mutate:   func(c *config.Config) { c.Maileroo.APIKey = "" },
			variable: config.EnvMailerooAPIKey,
		},
		{
			name:     "from address",
			mutate:   func(c *config.Config) { c.Mail.FromAddress = "" },
			variable: config.EnvMailFromAddress,
		},
		{
			name: "both",
			mutate: func(c *config.Config) {
				c.Maileroo.APIKey = ""
				c.Mail.FromAddress = ""
			},
			variable: config.EnvMailerooAPIKey,
		},
	}

	forms := map[string]url.Values{
		"valid form": validMailForm(),
		"empty form": {},
	}

	for _, tt := range tests {
		for formName, form := range forms {
			t.Run(tt.name+"/"+formName, func(t *testing.T) {
				rec := &recordedMail{}
				cfg := testConfig(t)
				tt.mutate(cfg)
				h := newTestHandler(t, cfg, fakeMaileroo(rec, http.StatusOK, `{}`))

				resp := serve(h, urlencodedRequest("/api/send-mail-maileroo", form))

				assert.Equal(t, http.StatusInternalServerError, resp.Code)
				body := decodeBody(t, resp)
				assert.Equal(t, KindMissingEnv, body["error"])
				assert.Equal(t, tt.variable, body["variable"])
				assert.Zero(t, rec.calls)
			})
		}
	}
}

func TestSendMailRejectsEmptyFields(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
	}{
		{name: "missing to", field: "to", value: ""},
		{name: "blank subject", field: "subject", value: "   "},
		{name: "whitespace message", field: "message", value: "\n\t "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordedMail{}
			h := newTestHandler(t, testConfig(t), fakeMaileroo(rec, http.StatusOK, `{}`))

			form := validMailForm()
			form.Set(tt.field, tt.value)
			resp := serve(h, urlencodedRequest("/api/send-mail-maileroo", form))

			assert.Equal(t, http.StatusBadRequest, resp.Code)
			body := decodeBody(t, resp)
			assert.Equal(t, KindInvalidInput, body["error"])
			assert.Contains(t, body["detail"], tt.field)
			assert.Zero(t, rec.calls)
		})
	}
}

func TestSendMailSuccess(t *testing.T) {
	rec := &recordedMail{}
	h := newTestHandler(t, testConfig(t), fakeMaileroo(rec, http.StatusOK, `{"id":"abc"}`))

	form := validMailForm()
	form.Set("to", "  someone@example.com ")
	resp := serve(h, urlencodedRequest("/api/send-mail-maileroo", form))

	require.Equal(t, http.StatusOK, resp.Code)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "someone@example.com", body["to"])
	assert.Equal(t, map[string]any{"id": "abc"}, body["data"])

	require.Equal(t, 1, rec.calls)
	assert.Equal(t, "Bearer mail-key", rec.auth)
	assert.Equal(t, domain.MailAddress{Address: "no-reply@example.maileroo.org", DisplayName: "My-Web"}, rec.payload.From)
	assert.Equal(t, []domain.MailAddress{{Address: "someone@example.com"}}, rec.payload.To)
	assert.Equal(t, "Hello", rec.payload.Subject)
	assert.Equal(t, "<p>line one<br>line two</p>", rec.payload.HTML)
	assert.Equal(t, "line one\nline two", rec.payload.Plain)
	assert.True(t, rec.payload.Tracking)
}

func TestSendMailMultipartWithFooter(t *testing.T) {
	rec := &recordedMail{}
	cfg := testConfig(t)
	cfg.Mail.Footer = true
	h := newTestHandler(t, cfg, fakeMaileroo(rec, http.StatusOK, `{"id":"abc"}`))

	resp := serve(h, multipartRequest(t, "/api/send-mail-maileroo", map[string]string{
		"to":      "someone@example.com",
		"subject": "Hello",
		"message": "hi",
	}, nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "<p>hi</p>"+domain.HTMLFooter, rec.payload.HTML)
	assert.Equal(t, "hi"+domain.PlainFooter, rec.payload.Plain)
}

func TestSendMailUpstreamRejected(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		data   any
	}{
		{
			name:   "json error",
			status: http.StatusUnprocessableEntity,
			body:   `{"success":false,"message":"invalid recipient"}`,
			data:   map[string]any{"success": false, "message": "invalid recipient"},
		},
		{
			name:   "text error",
			status: http.StatusUnauthorized,
			body:   "unauthorized",
			data:   "unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, testConfig(t), fakeMaileroo(&recordedMail{}, tt.status, tt.body))

			resp := serve(h, urlencodedRequest("/api/send-mail-maileroo", validMailForm()))

			assert.Equal(t, tt.status, resp.Code)
			body := decodeBody(t, resp)
			assert.Equal(t, KindMailerooError, body["error"])
			assert.Equal(t, float64(tt.status), body["status"])
			assert.Equal(t, tt.data, body["data"])
		})
	}
}

func TestSendMailRequestFailed(t *testing.T) {
	h := newTestHandler(t, testConfig(t), nil)
	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	h.config.Maileroo.APIURL = closed.URL

	resp := serve(h, urlencodedRequest("/api/send-mail-maileroo", validMailForm()))

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	body := decodeBody(t, resp)
	assert.Equal(t, KindRequestFailed, body["error"])
	assert.NotEmpty(t, body["detail"])
}
