package net

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
)

type ContentType int

const (
	ContentTypeJSON ContentType = iota
	ContentTypeText
)

// StatusError is returned when the remote side answers with a non 2xx code.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, truncate(string(e.Body), 512))
}

// Header is an extra request header, e.g. an API key header that is not a
// bearer token.
type Header struct {
	Key   string
	Value string
}

func SendRequest(ctx context.Context, client *http.Client, url string, data *bytes.Buffer,
	contentType ContentType, apiKey string, headers ...Header) ([]byte, error) {
	// create a https request to url and use data as the request body
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, data)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	// set the headers
	switch contentType {
	case ContentTypeJSON:
		req.Header.Set("Content-Type", "application/json")
	case ContentTypeText:
		req.Header.Set("Content-Type", "text/plain")
	}
	if apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", apiKey))
	}
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}
	return do(client, req)
}

// FilePart is a file field of a multipart upload.
type FilePart struct {
	Field       string
	FileName    string
	ContentType string
	Data        []byte
}

// SendMultipart posts a multipart/form-data body made of the given file parts
// and plain fields. The bearer header is only set when apiKey is not empty.
func SendMultipart(ctx context.Context, client *http.Client, url string, files []FilePart,
	fields map[string]string, apiKey string) ([]byte, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.Field, f.FileName))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("error creating part %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("error writing part %s: %w", f.Field, err)
		}
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("error writing field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("error closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", apiKey))
	}
	return do(client, req)
}

func do(client *http.Client, req *http.Request) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	// send the request
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return body, &StatusError{Code: resp.StatusCode, Body: body}
	}

	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
