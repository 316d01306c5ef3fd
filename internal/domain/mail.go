package domain

import (
	"html"
	"strings"
)

type MailRequest struct {
	To      string `form:"to" validate:"required"`
	Subject string `form:"subject" validate:"required"`
	Message string `form:"message" validate:"required"`
}

type MailAddress struct {
	Address     string `json:"address"`
	DisplayName string `json:"display_name,omitempty"`
}

// MailerooPayload 对应 Maileroo v2 发送接口的请求体
type MailerooPayload struct {
	From     MailAddress   `json:"from"`
	To       []MailAddress `json:"to"`
	Subject  string        `json:"subject"`
	HTML     string        `json:"html"`
	Plain    string        `json:"plain"`
	Tracking bool          `json:"tracking"`
}

const (
	HTMLFooter  = `<hr><p style="color:#888;font-size:12px">This message was sent from the website contact form. Please do not reply to this address.</p>`
	PlainFooter = "\n\n--\nThis message was sent from the website contact form. Please do not reply to this address."
)

// NewMailRequest 去掉三个字段首尾的空白
func NewMailRequest(to, subject, message string) MailRequest {
	return MailRequest{
		To:      strings.TrimSpace(to),
		Subject: strings.TrimSpace(subject),
		Message: strings.TrimSpace(message),
	}
}

// BuildMailerooPayload 根据表单内容构造发送给 Maileroo 的请求体
func BuildMailerooPayload(req MailRequest, from MailAddress, withFooter bool) MailerooPayload {
	body := "<p>" + MessageToHTML(req.Message) + "</p>"
	plain := req.Message
	if withFooter {
		body += HTMLFooter
		plain += PlainFooter
	}

	return MailerooPayload{
		From:     from,
		To:       []MailAddress{{Address: req.To}},
		Subject:  req.Subject,
		HTML:     body,
		Plain:    plain,
		Tracking: true,
	}
}

// MessageToHTML 转义 HTML 并把换行转成 <br>
func MessageToHTML(message string) string {
	message = strings.ReplaceAll(message, "\r\n", "\n")
	return strings.ReplaceAll(html.EscapeString(message), "\n", "<br>")
}
