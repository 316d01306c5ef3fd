package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/relay/backend/internal/domain"
)

const maxMailFormSize = 1 << 20

const legacyMailHTML = `<h2>Gmail SMTP is not supported in this environment</h2>
<p>This route used to send mail over SMTP, which requires raw TCP connections that the hosting platform does not allow.</p>
<p>Please use <code>/api/send-mail-maileroo</code> instead.</p>
<a href="/">Back to home</a>
`

// SendMailLegacy 旧的 SMTP 发信接口，固定返回 501
func (h *Handler) SendMailLegacy(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotImplemented)
	if _, err := w.Write([]byte(legacyMailHTML)); err != nil {
		h.logInternalServerError(r, err)
	}
}

func (h *Handler) SendMailMaileroo(w http.ResponseWriter, r *http.Request) {
	// 配置缺失时不读取表单，直接报错
	if name := h.config.MissingMailEnv(); name != "" {
		h.missingEnv(w, r, name)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxMailFormSize)
	if err := parseForm(r); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	req := domain.NewMailRequest(r.PostFormValue("to"), r.PostFormValue("subject"), r.PostFormValue("message"))
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	payload := domain.BuildMailerooPayload(req, domain.MailAddress{
		Address:     h.config.Mail.FromAddress,
		DisplayName: h.config.Mail.FromName,
	}, h.config.Mail.Footer)

	reply, err := h.upstream.SendMail(r.Context(), payload)
	if err != nil {
		h.logger.Error("调用 Maileroo API 失败", "error", err)
		h.errorResponse(w, r, http.StatusInternalServerError, KindRequestFailed, err.Error())
		return
	}

	if !reply.OK() {
		h.logger.Error("Maileroo API 返回错误", "status", reply.StatusCode, "body", reply.Body)
		h.writeJSON(w, r, reply.StatusCode, UpstreamErrorResponse{
			Error:  KindMailerooError,
			Status: reply.StatusCode,
			Data:   reply.Body,
		})
		return
	}

	h.logger.Info("邮件已提交给 Maileroo", "to", req.To)
	h.writeJSON(w, r, http.StatusOK, MailSentResponse{
		Success: true,
		Message: "mail sent",
		To:      req.To,
		Data:    reply.Body,
	})
}
