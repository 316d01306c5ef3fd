package handler

import (
	"net/http"
	"strings"
)

func (h *Handler) RedirectIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/index.html", http.StatusFound)
}

// RedirectPublic 把 /public/xxx 重定向到 /xxx
func (h *Handler) RedirectPublic(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/public")
	if path == "" {
		path = "/index.html"
	} else {
		// 防止 /public//host 变成协议相对地址跳到外站
		path = "/" + strings.TrimLeft(path, `/\`)
	}
	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}

	http.Redirect(w, r, path, http.StatusFound)
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
