package upstream

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/relay/backend/internal/config"
	"github.com/sysu-ecnc-dev/relay/backend/internal/metrics"
)

const (
	NamePic      = "pic"
	NameMaileroo = "maileroo"
)

type Upstream struct {
	cfg    *config.Config
	client *http.Client
}

func NewUpstream(cfg *config.Config, client *http.Client) *Upstream {
	if client == nil {
		client = &http.Client{Timeout: time.Duration(cfg.Upstream.Timeout) * time.Second}
	}
	return &Upstream{
		cfg:    cfg,
		client: client,
	}
}

// Reply 是上游返回的状态码和尽力解析后的响应体
type Reply struct {
	StatusCode int
	Body       any
}

func (r *Reply) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func decodeJSON(data []byte) (any, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	// 不允许合法 JSON 之后还跟着其他内容
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	return v, true
}

func (u *Upstream) do(name string, req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := u.client.Do(req)
	switch {
	case err != nil:
		metrics.RecordUpstreamCall(name, "failed", time.Since(start))
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		metrics.RecordUpstreamCall(name, "success", time.Since(start))
	default:
		metrics.RecordUpstreamCall(name, "rejected", time.Since(start))
	}
	return resp, err
}
