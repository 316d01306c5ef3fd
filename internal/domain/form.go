package domain

import (
	"io"
)

// FormValue 是表单解析层产生的字段值，只可能是 BinaryPayload 或 TextField
type FormValue interface {
	formValue()
}

// BinaryPayload 是上传的文件字段
type BinaryPayload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadSeekCloser, error)
}

// TextField 是普通的文本字段
type TextField struct {
	Value string
}

func (BinaryPayload) formValue() {}
func (TextField) formValue()     {}

const DefaultUploadFilename = "upload.bin"

// UploadName 返回转发给图床时使用的文件名
func (p BinaryPayload) UploadName() string {
	if p.Filename == "" {
		return DefaultUploadFilename
	}
	return p.Filename
}
