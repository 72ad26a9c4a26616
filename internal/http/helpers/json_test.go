package helpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name string `json:"name"`
}

func TestReadJSON(t *testing.T) {
	cases := []struct {
		name   string
		ct     string
		body   string
		ok     bool
		status int
	}{
		{"valid", "application/json", `{"name":"ada"}`, true, http.StatusOK},
		{"wrong content type", "text/plain", `{"name":"ada"}`, false, http.StatusUnsupportedMediaType},
		{"unknown field", "application/json", `{"nick":"ada"}`, false, http.StatusBadRequest},
		{"empty", "application/json; charset=utf-8", ``, false, http.StatusBadRequest},
		{"too large", "application/json", `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`, false, http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", tc.ct)

			var p payload
			ok := ReadJSON(rec, req, &p)
			require.Equal(t, tc.ok, ok)
			if ok {
				assert.Equal(t, "ada", p.Name)
				return
			}
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, payload{Name: "x"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"name":"x"}`, rec.Body.String())
}
