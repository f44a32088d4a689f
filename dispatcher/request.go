package dispatcher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
)

// Request describes one call relative to the dispatcher's base URL.
type Request struct {
	Method string     // HTTP method, GET when empty
	Path   string     // Path below the base URL, e.g. "/player/rocks"
	Query  url.Values // Optional query parameters
	Body   any        // JSON-encodable body, nil for none
	Form   *Form      // Multipart body; takes precedence over Body
}

// Form is a multipart/form-data body.
type Form struct {
	Fields map[string]string
	Files  []File
}

// File is one file part of a Form.
type File struct {
	Field       string    // Form field name, e.g. "file"
	Filename    string    // Filename reported to the server
	ContentType string    // Part content type, application/octet-stream when empty
	Content     io.Reader // Part content
}

// Response is the raw result of a successful (2xx) call.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %v", rqerrors.ErrDecodeResponse, err)
	}
	return nil
}

func (r *Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(r.Method)
}

// url joins base and the request path and appends the query.
func (r *Request) url(base string) (string, error) {
	if r.Path == "" || !strings.HasPrefix(r.Path, "/") {
		return "", fmt.Errorf("%w: path %q must start with /", rqerrors.ErrInvalidRequest, r.Path)
	}
	u := strings.TrimRight(base, "/") + r.Path
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}
	return u, nil
}

// body encodes the request body and returns it with its content type. The
// content type is empty for JSON bodies; the content type interceptor
// decides whether to set it.
func (r *Request) body() (io.Reader, string, error) {
	if r.Form != nil {
		return r.Form.encode()
	}
	if r.Body == nil {
		return nil, "", nil
	}
	raw, err := json.Marshal(r.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", rqerrors.ErrInvalidBody, err)
	}
	return bytes.NewReader(raw), "", nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (f *Form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range f.Fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("%w: field %s: %v", rqerrors.ErrInvalidBody, name, err)
		}
	}

	for _, file := range f.Files {
		if file.Field == "" || file.Content == nil {
			return nil, "", fmt.Errorf("%w: file part needs a field name and content", rqerrors.ErrInvalidBody)
		}
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(file.Field), quoteEscaper.Replace(file.Filename)))
		h.Set("Content-Type", contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", rqerrors.ErrInvalidBody, err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("%w: reading %s: %v", rqerrors.ErrInvalidBody, file.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("%w: %v", rqerrors.ErrInvalidBody, err)
	}
	return &buf, w.FormDataContentType(), nil
}
