package illustrate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImageServer(t *testing.T, generate http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/images/generations", generate)
	mux.HandleFunc("/img.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSiliconFlowSynthesize(t *testing.T) {
	var got generationRequest
	var srv *httptest.Server
	srv = newImageServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"url": srv.URL + "/img.png"}},
		})
	})

	sf, err := NewSiliconFlow(SiliconFlowSettings{APIKey: "secret", Endpoint: srv.URL + "/v1/images/generations"}, srv.Client())
	require.NoError(t, err)
	data, err := sf.Synthesize(context.Background(), "一只猫")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	assert.Equal(t, generationRequest{
		Model:          defaultModel,
		Prompt:         "一只猫",
		ImageSize:      defaultImageSize,
		InferenceSteps: defaultSteps,
	}, got)
}

func TestSiliconFlowImagesField(t *testing.T) {
	var srv *httptest.Server
	srv = newImageServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"images":[{"url":"` + srv.URL + `/img.png"}]}`))
	})
	sf, err := NewSiliconFlow(SiliconFlowSettings{APIKey: "k", Endpoint: srv.URL + "/v1/images/generations"}, nil)
	require.NoError(t, err)
	data, err := sf.Synthesize(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestSiliconFlowErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"no url": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[]}`))
		},
		"status": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		},
		"bad json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{`))
		},
		"broken download": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[{"url":"http://127.0.0.1:1/missing.png"}]}`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := newImageServer(t, h)
			sf, err := NewSiliconFlow(SiliconFlowSettings{APIKey: "k", Endpoint: srv.URL + "/v1/images/generations"}, srv.Client())
			require.NoError(t, err)
			_, err = sf.Synthesize(context.Background(), "p")
			assert.ErrorIs(t, err, ErrImageSynthesis)
		})
	}
}

func TestNewSiliconFlowRequiresKey(t *testing.T) {
	_, err := NewSiliconFlow(SiliconFlowSettings{}, nil)
	assert.Error(t, err)
}
