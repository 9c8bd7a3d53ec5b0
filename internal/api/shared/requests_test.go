package shared

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPair struct {
	Left  string `json:"left"  validate:"required,max=5"`
	Right string `json:"right" validate:"required"`
}

type testPayload struct {
	Pairs []testPair `json:"pairs" validate:"required,min=1,dive"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"pairs":[{"left":"a","right":"b"}]}`},
		{name: "malformed", body: `{"pairs":[`, wantErr: true},
		{name: "unknown field", body: `{"pairs":[],"extra":true}`, wantErr: true},
		{name: "trailing object", body: `{"pairs":[]}{"pairs":[]}`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var p testPayload
			err := DecodeJSON(httptest.NewRecorder(), req, &p)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a", p.Pairs[0].Left)
		})
	}
}

func TestValidationFields(t *testing.T) {
	err := ValidateRequest(testPayload{Pairs: []testPair{{Left: "toolong"}}})
	require.Error(t, err)

	assert.Equal(t, map[string]string{
		"pairs[0].left":  "must be at most 5 characters",
		"pairs[0].right": "is required",
	}, ValidationFields(err))

	err = ValidateRequest(testPayload{Pairs: []testPair{}})
	assert.Equal(t, map[string]string{"pairs": "must contain at least 1 item(s)"}, ValidationFields(err))

	assert.Nil(t, ValidationFields(errors.New("not a validation error")))
}
