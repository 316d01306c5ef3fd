package handler

import (
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sysu-ecnc-dev/relay/backend/internal/config"
	"github.com/sysu-ecnc-dev/relay/backend/internal/storage"
	"github.com/sysu-ecnc-dev/relay/backend/internal/upstream"
)

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	upstream   *upstream.Upstream
	localStore *storage.LocalStore
	translator ut.Translator
	logger     *slog.Logger

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, up *upstream.Upstream, logger *slog.Logger) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// 校验错误信息中使用表单字段名而不是结构体字段名
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		upstream:   up,
		localStore: storage.NewLocalStore(cfg.Pic.LocalDir),
		translator: trans,
		logger:     logger,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.requestLogger)
	// recoverer 写出的 500 也要经过 metrics 记录
	h.Mux.Use(h.metrics)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/", h.RedirectIndex)
	h.Mux.Get("/public", h.RedirectPublic)
	h.Mux.Get("/public/*", h.RedirectPublic)

	h.Mux.Get("/healthz", h.Healthz)
	h.Mux.Method("GET", "/metrics", promhttp.Handler())

	h.Mux.Route("/api", func(r chi.Router) {
		r.Post("/upload", h.UploadImage)
		r.Post("/send-mail", h.SendMailLegacy)
		r.Post("/send-mail-maileroo", h.SendMailMaileroo)
	})
}
