package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sysu-ecnc-dev/relay/backend/internal/domain"
)

// SendMail 以 JSON 形式把邮件提交给 Maileroo，非 2xx 状态不视为错误，由调用方根据 Reply 判断
func (u *Upstream) SendMail(ctx context.Context, payload domain.MailerooPayload) (*Reply, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.cfg.Maileroo.APIURL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+u.cfg.Maileroo.APIKey)

	resp, err := u.do(NameMaileroo, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read mail response: %w", err)
	}

	parsed, ok := decodeJSON(respBody)
	if !ok {
		parsed = string(respBody)
	}

	return &Reply{StatusCode: resp.StatusCode, Body: parsed}, nil
}
