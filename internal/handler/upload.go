package handler

import (
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/relay/backend/internal/domain"
	"github.com/sysu-ecnc-dev/relay/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/relay/backend/internal/upstream"
)

const noFileDetail = "no_file: field \"file\" must be an uploaded file"

// UploadImage 把 file 字段中的文件转发给图床，返回图床的响应和状态码
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.Server.MaxUploadSize)
	value, cleanup, err := multipartValue(r, "file")
	defer cleanup()
	if err != nil {
		if errors.Is(err, errSpool) {
			h.proxyError(w, r, err)
			return
		}
		h.logger.Warn("无法解析上传表单", "error", err)
		h.errorResponse(w, r, http.StatusBadRequest, KindInvalidInput, noFileDetail)
		return
	}

	var payload domain.BinaryPayload
	switch v := value.(type) {
	case domain.BinaryPayload:
		payload = v
	default:
		// 缺失或者是普通文本字段
		h.errorResponse(w, r, http.StatusBadRequest, KindInvalidInput, noFileDetail)
		return
	}

	// 本地保存是尽力而为的，失败不影响本次请求
	var localPath string
	if h.config.Pic.SaveLocal {
		localPath, err = h.saveLocalCopy(payload)
		if err != nil {
			h.logger.Warn("本地保存上传文件失败", "path", localPath, "error", err)
			metrics.IncrementLocalSaveFailures()
		}
	}

	f, err := payload.Open()
	if err != nil {
		h.proxyError(w, r, err)
		return
	}
	defer f.Close()

	reply, err := h.upstream.UploadImage(r.Context(), upstream.ImageUpload{
		Filename:    payload.UploadName(),
		ContentType: payload.ContentType,
		Content:     f,
		Size:        payload.Size,
	})
	if err != nil {
		h.proxyError(w, r, err)
		return
	}

	body := reply.Body
	if localPath != "" {
		body = withLocalPath(body, localPath)
	}

	h.writeJSON(w, r, reply.StatusCode, body)
}

// saveLocalCopy 返回的路径在保存失败时依然有效，作为 local_path 提示返回给客户端
func (h *Handler) saveLocalCopy(payload domain.BinaryPayload) (string, error) {
	path := h.localStore.Path(payload.Filename)

	f, err := payload.Open()
	if err != nil {
		return path, err
	}
	defer f.Close()

	return path, h.localStore.Save(path, f)
}

func (h *Handler) proxyError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("上传代理错误", "error", err)
	h.errorResponse(w, r, http.StatusInternalServerError, KindProxyError, err.Error())
}

func withLocalPath(body any, localPath string) any {
	if obj, ok := body.(map[string]any); ok {
		obj["local_path"] = localPath
		return obj
	}
	return map[string]any{
		"data":       body,
		"local_path": localPath,
	}
}
