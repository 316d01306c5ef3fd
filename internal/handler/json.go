package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// 错误类型
const (
	KindInvalidInput  = "invalid_input"
	KindMissingEnv    = "missing_env"
	KindProxyError    = "proxy_error"
	KindRequestFailed = "request_failed"
	KindMailerooError = "maileroo_error"
	KindInternalError = "internal_error"
)

type ErrorResponse struct {
	Error    string `json:"error"`
	Detail   string `json:"detail,omitempty"`
	Variable string `json:"variable,omitempty"`
}

// UpstreamErrorResponse 用于上游返回非 2xx 的情况，原样带回上游的状态码和响应体
type UpstreamErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
	Data   any    `json:"data"`
}

type MailSentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	To      string `json:"to"`
	Data    any    `json:"data"`
}

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	h.logger.Error("服务器内部错误", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// 状态码已经写出，编码失败时只能记录日志
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
	}
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, kind, detail string) {
	h.writeJSON(w, r, status, ErrorResponse{
		Error:  kind,
		Detail: detail,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		h.errorResponse(w, r, http.StatusBadRequest, KindInvalidInput, err.Error())
		return
	}

	h.errorResponse(w, r, http.StatusBadRequest, KindInvalidInput, validationErrors[0].Translate(h.translator))
}

func (h *Handler) missingEnv(w http.ResponseWriter, r *http.Request, name string) {
	h.logger.Error("缺少环境变量", "variable", name, "path", r.URL.Path)
	h.writeJSON(w, r, http.StatusInternalServerError, ErrorResponse{
		Error:    KindMissingEnv,
		Detail:   name + " is not set",
		Variable: name,
	})
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.errorResponse(w, r, http.StatusInternalServerError, KindInternalError, "internal server error")
}
