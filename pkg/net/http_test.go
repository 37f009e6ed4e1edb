package net

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendRequestHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		b, _ := io.ReadAll(r.Body)
		w.Write(b)
	}))
	defer srv.Close()

	res, err := SendRequest(context.Background(), srv.Client(), srv.URL,
		bytes.NewBufferString(`{"a":1}`), ContentTypeJSON, "k",
		Header{Key: "anthropic-version", Value: "2023-06-01"})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(res))
}

func TestSendRequestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	body, err := SendRequest(context.Background(), nil, srv.URL,
		bytes.NewBufferString("x"), ContentTypeText, "")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.Equal(t, "slow down", string(body))
}

func TestSendMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "open settings", r.FormValue("task"))
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "shot.png", hdr.Filename)
		assert.Equal(t, "image/png", hdr.Header.Get("Content-Type"))
		assert.Equal(t, []byte{1, 2, 3}, data)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	res, err := SendMultipart(context.Background(), srv.Client(), srv.URL,
		[]FilePart{{Field: "file", FileName: "shot.png", ContentType: "image/png", Data: []byte{1, 2, 3}}},
		map[string]string{"task": "open settings"}, "")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(res))
}
