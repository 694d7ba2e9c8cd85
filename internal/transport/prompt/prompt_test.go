package prompt_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainprompt "github.com/alanyang/twig/internal/domain/prompt"
	"github.com/alanyang/twig/internal/domain/template"
	"github.com/alanyang/twig/internal/mocks"
	promptsvc "github.com/alanyang/twig/internal/service/prompt"
	transportprompt "github.com/alanyang/twig/internal/transport/prompt"
)

func init() { gin.SetMode(gin.TestMode) }

func newRouter(t *testing.T) (*gin.Engine, *mocks.MockRegistry) {
	t.Helper()
	ctrl := gomock.NewController(t)
	reg := mocks.NewMockRegistry(ctrl)
	r := gin.New()
	transportprompt.Register(r.Group("/prompts"), promptsvc.NewService(reg))
	return r, reg
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var greetEntry = domainprompt.Entry{
	Name: "lib:greet",
	Metadata: domainprompt.Metadata{
		Description: "Greet someone",
		Arguments:   []domainprompt.Argument{{Name: "name", Required: true}},
	},
}

// ── GET / (listPrompts) ───────────────────────────────────────────────────────

func TestListPrompts(t *testing.T) {
	r, reg := newRouter(t)
	reg.EXPECT().List().Return([]domainprompt.Entry{greetEntry})

	w := do(r, http.MethodGet, "/prompts", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got []promptsvc.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, domainprompt.QualifiedName("lib:greet"), got[0].Name)
	assert.Equal(t, greetEntry.Metadata.Arguments, got[0].Arguments)
}

func TestListPrompts_EmptyIsArray(t *testing.T) {
	r, reg := newRouter(t)
	reg.EXPECT().List().Return([]domainprompt.Entry{})

	w := do(r, http.MethodGet, "/prompts", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

// ── POST /:name/render (renderPrompt) ─────────────────────────────────────────

func TestRenderPrompt(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       any
		setup      func(reg *mocks.MockRegistry)
		wantStatus int
		wantKind   string
	}{
		{
			name: "success",
			path: "/prompts/lib:greet/render",
			body: map[string]any{"arguments": map[string]any{"name": "World"}},
			setup: func(reg *mocks.MockRegistry) {
				reg.EXPECT().Lookup(domainprompt.QualifiedName("lib:greet")).Return(greetEntry, true)
				reg.EXPECT().GetRendered(gomock.Any(), domainprompt.QualifiedName("lib:greet"), gomock.Any()).Return("Hello, World!", nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "malformed name",
			path:       "/prompts/greet/render",
			body:       map[string]any{},
			setup:      func(*mocks.MockRegistry) {},
			wantStatus: http.StatusNotFound,
			wantKind:   "not_found",
		},
		{
			name: "unknown prompt",
			path: "/prompts/lib:nope/render",
			setup: func(reg *mocks.MockRegistry) {
				reg.EXPECT().Lookup(gomock.Any()).Return(domainprompt.Entry{}, false)
			},
			wantStatus: http.StatusNotFound,
			wantKind:   "not_found",
		},
		{
			name: "missing argument",
			path: "/prompts/lib:greet/render",
			body: map[string]any{"arguments": map[string]any{}},
			setup: func(reg *mocks.MockRegistry) {
				reg.EXPECT().Lookup(gomock.Any()).Return(greetEntry, true)
				reg.EXPECT().GetRendered(gomock.Any(), gomock.Any(), gomock.Any()).
					Return("", &domainprompt.MissingArgumentError{Argument: "name"})
			},
			wantStatus: http.StatusBadRequest,
			wantKind:   "missing_argument",
		},
		{
			name: "template syntax",
			path: "/prompts/lib:greet/render",
			body: map[string]any{},
			setup: func(reg *mocks.MockRegistry) {
				reg.EXPECT().Lookup(gomock.Any()).Return(greetEntry, true)
				reg.EXPECT().GetRendered(gomock.Any(), gomock.Any(), gomock.Any()).
					Return("", &template.SyntaxError{Template: "lib:greet", Line: 2, Msg: "unclosed if"})
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   "render_error",
		},
		{
			name: "read failure",
			path: "/prompts/lib:greet/render",
			body: map[string]any{},
			setup: func(reg *mocks.MockRegistry) {
				reg.EXPECT().Lookup(gomock.Any()).Return(greetEntry, true)
				reg.EXPECT().GetRendered(gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("disk error"))
			},
			wantStatus: http.StatusInternalServerError,
			wantKind:   "internal",
		},
		{
			name:       "invalid json",
			path:       "/prompts/lib:greet/render",
			body:       "not an object",
			setup:      func(*mocks.MockRegistry) {},
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, reg := newRouter(t)
			tt.setup(reg)

			w := do(r, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, body["kind"])
			}
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "Hello, World!", body["text"])
				assert.Equal(t, "Greet someone", body["description"])
			}
		})
	}
}

func TestRenderPrompt_MissingArgumentNamesArgument(t *testing.T) {
	r, reg := newRouter(t)
	reg.EXPECT().Lookup(gomock.Any()).Return(greetEntry, true)
	reg.EXPECT().GetRendered(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", &domainprompt.MissingArgumentError{Argument: "name"})

	w := do(r, http.MethodPost, "/prompts/lib:greet/render", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"missing required argument: name","kind":"missing_argument","argument":"name"}`, w.Body.String())
}

// ── POST /reload (reloadPrompts) ──────────────────────────────────────────────

func TestReloadPrompts(t *testing.T) {
	r, reg := newRouter(t)
	reg.EXPECT().Reload(gomock.Any()).Return([]domainprompt.QualifiedName{"lib:a", "lib:b"}, nil)

	w := do(r, http.MethodPost, "/prompts/reload", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"loaded":["lib:a","lib:b"]}`, w.Body.String())
}

func TestReloadPrompts_Error(t *testing.T) {
	r, reg := newRouter(t)
	reg.EXPECT().Reload(gomock.Any()).Return(nil, errors.New("scan failed"))

	w := do(r, http.MethodPost, "/prompts/reload", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
