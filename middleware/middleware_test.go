package middleware

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sociomate/auth"
	"sociomate/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAuthenticate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := auth.NewTokens([]byte("mw-secret"), time.Hour)
	id := primitive.NewObjectID()
	good, err := tokens.Issue(id.Hex())
	require.NoError(t, err)
	notAnID, err := tokens.Issue("not-an-object-id")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", Authenticate(tokens), func(c *gin.Context) {
		got, ok := Actor(c)
		require.True(t, ok)
		c.String(http.StatusOK, got.Hex())
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + good, http.StatusOK},
		{"lower-case scheme", "bearer " + good, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + good, http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"subject is not an id", "Bearer " + notAnID, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, id.Hex(), w.Body.String())
			}
		})
	}
}

func formRequest(t *testing.T, field, name string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("content", "x"))
	if data != nil {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestFormImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	png := append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

	run := func(req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = req
		return c, w
	}

	t.Run("image", func(t *testing.T) {
		c, _ := run(formRequest(t, "image", "photo", png))
		up, err := FormImage(c, "image")
		require.NoError(t, err)
		require.NotNil(t, up)
		assert.Equal(t, "photo.png", up.Filename)
		body, err := io.ReadAll(up.Body)
		require.NoError(t, err)
		assert.Equal(t, png, body)
	})

	t.Run("missing", func(t *testing.T) {
		c, _ := run(formRequest(t, "image", "", nil))
		up, err := FormImage(c, "image")
		require.NoError(t, err)
		assert.Nil(t, up)
	})

	t.Run("not an image", func(t *testing.T) {
		c, _ := run(formRequest(t, "image", "notes.png", []byte("just text")))
		_, err := FormImage(c, "image")
		assert.True(t, repository.IsValidation(err))
	})

	t.Run("too large", func(t *testing.T) {
		req := formRequest(t, "image", "big.png", append(append([]byte{}, png...), make([]byte, 4096)...))
		c, w := run(req)
		c.Request.Body = http.MaxBytesReader(w, c.Request.Body, 512)
		_, err := FormImage(c, "image")
		assert.True(t, repository.IsValidation(err))
	})
}
