package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sysu-ecnc-dev/relay/backend/internal/domain"
)

// 超过这个大小的 multipart 内容会落到临时文件中
const multipartMemory = 8 << 20

// 文本字段只用于判断字段类型，不需要完整读入
const maxTextFieldSize = 64 << 10

// errSpool 表示服务器无法暂存上传的文件，和客户端的请求无关
var errSpool = errors.New("无法暂存上传文件")

// parseForm 同时支持 multipart/form-data 和 application/x-www-form-urlencoded
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(multipartMemory)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, http.ErrNotMultipart):
		// ParseMultipartForm 在返回 ErrNotMultipart 之前已经调用过 ParseForm
		return nil
	default:
		return err
	}
}

// multipartValue 逐个读取 multipart 分段，返回第一个名为 name 的字段，找不到时返回 nil。
// 文件字段会暂存到临时文件中，调用方负责在用完之后调用 cleanup
func multipartValue(r *http.Request, name string) (domain.FormValue, func(), error) {
	cleanup := func() {}

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, cleanup, err
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, cleanup, nil
		}
		if err != nil {
			return nil, cleanup, err
		}
		if part.FormName() != name {
			part.Close()
			continue
		}
		defer part.Close()

		if !isFilePart(part) {
			b, err := io.ReadAll(io.LimitReader(part, maxTextFieldSize))
			if err != nil {
				return nil, cleanup, err
			}
			return domain.TextField{Value: string(b)}, cleanup, nil
		}
		return spoolPart(part)
	}
}

// isFilePart 判断分段是否是文件。带有 filename 参数（即使为空）或者类型不是 text/plain 的分段都算文件
func isFilePart(part *multipart.Part) bool {
	if _, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition")); err == nil {
		if _, ok := params["filename"]; ok {
			return true
		}
	}

	declared := part.Header.Get("Content-Type")
	if declared == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	return err != nil || mediaType != "text/plain"
}

// spoolPart 把文件分段写入临时文件，之后可以多次打开读取
func spoolPart(part *multipart.Part) (domain.BinaryPayload, func(), error) {
	noop := func() {}

	tmp, err := os.CreateTemp("", "relay-upload-*")
	if err != nil {
		return domain.BinaryPayload{}, noop, fmt.Errorf("%w: %w", errSpool, err)
	}
	path := tmp.Name()
	cleanup := func() { os.Remove(path) }

	size, err := io.Copy(tmp, part)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("%w: %w", errSpool, closeErr)
	}
	if err != nil {
		cleanup()
		return domain.BinaryPayload{}, noop, err
	}

	open := func() (io.ReadSeekCloser, error) {
		return os.Open(path)
	}

	return domain.BinaryPayload{
		Filename:    part.FileName(),
		ContentType: detectContentType(part.Header.Get("Content-Type"), open),
		Size:        size,
		Open:        open,
	}, cleanup, nil
}

// detectContentType 优先使用浏览器声明的类型，缺失或过于笼统时根据文件内容推断
func detectContentType(declared string, open func() (io.ReadSeekCloser, error)) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}

	f, err := open()
	if err != nil {
		return "application/octet-stream"
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "application/octet-stream"
	}
	return mtype.String()
}
