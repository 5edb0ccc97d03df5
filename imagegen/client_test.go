package imagegen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brensch/llamabot/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	rows []db.Generation
	err  error
}

func (f *fakeRecorder) RecordGeneration(_ context.Context, g db.Generation) error {
	f.rows = append(f.rows, g)
	return f.err
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, "a cat", r.URL.Query().Get("prompt"))
		_, _ = w.Write([]byte(`{"image":"https://img/cat.png","prompt":"a cat","imageId":1234,"status":"success","duration":5.5}`))
	}))
	defer srv.Close()

	history := &fakeRecorder{}
	img, err := NewClient(srv.URL, "secret", history).Generate(context.Background(), "a cat")
	require.NoError(t, err)

	assert.Equal(t, "https://img/cat.png", img.URL)
	assert.Equal(t, Text("1234"), img.ImageID)
	assert.Equal(t, "5.5", img.Duration.Or("N/A"))

	require.Len(t, history.rows, 1)
	row := history.rows[0]
	assert.Equal(t, "a cat", row.Prompt)
	assert.Equal(t, "1234", row.ImageID)
	assert.Equal(t, "success", row.Status)
	assert.Empty(t, row.Error)
	assert.False(t, row.CreatedAt.IsZero())
}

func TestGenerateFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		is     error
	}{
		{name: "no image", status: http.StatusOK, body: `{"status":"queued"}`, is: ErrNoImage},
		{name: "null image", status: http.StatusOK, body: `{"image":null}`, is: ErrNoImage},
		{name: "server error", status: http.StatusBadGateway, body: `bad gateway`},
		{name: "not json", status: http.StatusOK, body: `nope`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			history := &fakeRecorder{}
			img, err := NewClient(srv.URL, "k", history).Generate(context.Background(), "p")
			require.Error(t, err)
			assert.Nil(t, img)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}

			require.Len(t, history.rows, 1)
			assert.NotEmpty(t, history.rows[0].Error)
		})
	}
}

func TestGenerateRecorderFailureIgnored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"image":"https://img/x.png"}`))
	}))
	defer srv.Close()

	img, err := NewClient(srv.URL, "", &fakeRecorder{err: errors.New("disk full")}).Generate(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "https://img/x.png", img.URL)
}

func TestTextUnmarshal(t *testing.T) {
	var got struct {
		A Text `json:"a"`
		B Text `json:"b"`
		C Text `json:"c"`
		D Text `json:"d"`
		E Text `json:"e"`
	}
	err := json.Unmarshal([]byte(`{"a":"x","b":12,"c":true,"d":null}`), &got)
	require.NoError(t, err)

	assert.Equal(t, Text("x"), got.A)
	assert.Equal(t, Text("12"), got.B)
	assert.Equal(t, Text("true"), got.C)
	assert.Equal(t, Text(""), got.D)
	assert.Equal(t, "fallback", got.E.Or("fallback"))
}
