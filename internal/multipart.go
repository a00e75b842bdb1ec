package internal

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
)

// FormPart is one part of a multipart body. Parts with Data are file parts.
type FormPart struct {
	Name     string
	Value    string
	FileName string
	// ContentType of a file part. Defaults to application/octet-stream.
	ContentType string
	Data        []byte
	// Header adds extra MIME headers to the part.
	Header map[string]string
}

// BuildMultipart encodes parts with a fixed boundary. The service expects the
// boundary to be the client's UUID, so callers pass it in.
// It returns the body and the matching Content-Type value.
func BuildMultipart(boundary string, parts []FormPart) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(boundary); err != nil {
		return nil, "", err
	}

	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		if p.FileName != "" || p.Data != nil {
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, p.Name, p.FileName))
			ct := p.ContentType
			if ct == "" {
				ct = "application/octet-stream"
			}
			h.Set("Content-Type", ct)
		} else {
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q`, p.Name))
		}
		for k, v := range p.Header {
			h.Set(k, v)
		}

		pw, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		payload := p.Data
		if payload == nil {
			payload = []byte(p.Value)
		}
		if _, err := pw.Write(payload); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
