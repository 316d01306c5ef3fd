package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// ImageUpload 是要转发给图床的文件
type ImageUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
	// Content 的字节数，小于 0 表示未知，此时以 chunked 方式发送
	Size int64
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// switchWriter 让同一个 multipart.Writer 先后写入不同的缓冲区
type switchWriter struct {
	w io.Writer
}

func (s *switchWriter) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

// UploadImage 把文件以 source 字段转发给图床，并附带 format、key、album_id。
// 文件内容直接从 img.Content 流式读取，只有 multipart 的头尾会放在内存中
func (u *Upstream) UploadImage(ctx context.Context, img ImageUpload) (*Reply, error) {
	head, tail := &bytes.Buffer{}, &bytes.Buffer{}
	sw := &switchWriter{w: head}
	mw := multipart.NewWriter(sw)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="source"; filename="%s"`, quoteEscaper.Replace(img.Filename)))
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	if _, err := mw.CreatePart(header); err != nil {
		return nil, fmt.Errorf("create source part: %w", err)
	}

	// 文件内容夹在 head 和 tail 之间
	sw.w = tail

	fields := [][2]string{{"format", "json"}}
	if u.cfg.Pic.APIKey != "" {
		fields = append(fields, [2]string{"key", u.cfg.Pic.APIKey})
	}
	if u.cfg.Pic.AlbumID != "" {
		fields = append(fields, [2]string{"album_id", u.cfg.Pic.AlbumID})
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	contentLength := int64(-1)
	if img.Size >= 0 {
		contentLength = int64(head.Len()) + img.Size + int64(tail.Len())
	}

	body := io.MultiReader(head, img.Content, tail)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.cfg.Pic.APIURL, body)
	if err != nil {
		return nil, err
	}
	req.ContentLength = contentLength
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.do(NamePic, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upload response: %w", err)
	}

	parsed, ok := decodeJSON(data)
	if !ok {
		parsed = map[string]any{"raw": string(data)}
	}

	return &Reply{StatusCode: resp.StatusCode, Body: parsed}, nil
}
