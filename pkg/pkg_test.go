package pkg

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteResponse(t *testing.T) {
	w := httptest.NewRecorder()
	WriteResponse(w, ContentType.JSON, `{"ok":true}`, http.StatusCreated)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, ContentType.JSON, w.Header().Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, w.Body.String())
}

func TestWriteTextResponseOK(t *testing.T) {
	w := httptest.NewRecorder()
	WriteTextResponseOK(w, "all good")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ContentType.Text, w.Header().Get("Content-Type"))
	assert.Equal(t, "all good", w.Body.String())
}

func TestIsUniqueViolationError(t *testing.T) {
	assert.True(t, IsUniqueViolationError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolationError(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolationError(assert.AnError))
	assert.False(t, IsUniqueViolationError(nil))
}

func TestIsForeignKeyViolationError(t *testing.T) {
	assert.True(t, IsForeignKeyViolationError(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsForeignKeyViolationError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsForeignKeyViolationError(nil))
}

func TestGenerateRandomString(t *testing.T) {
	s1, err := GenerateRandomString(32)
	require.NoError(t, err)
	s2, err := GenerateRandomString(32)
	require.NoError(t, err)

	assert.NotEmpty(t, s1)
	assert.NotEmpty(t, s2)
	assert.NotEqual(t, s1, s2)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-14")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2025-03-14T19:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 19, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("not-a-date")
	assert.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cr3t")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cr3t", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestReadUserIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Real-Ip", "100.1.2.3")
	ip, err := ReadUserIP(req)
	require.NoError(t, err)
	assert.Equal(t, "100.1.2.3", ip)

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	ip, err = ReadUserIP(req)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", ip)

	req = httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "127.0.0.1:51234"
	ip, err = ReadUserIP(req)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", ip)
	assert.True(t, IPIsLocal(ip))
}

func TestCombinedWriter(t *testing.T) {
	var b1, b2 bytes.Buffer
	w := NewCombinedWriter(&b1, &b2)

	n, err := w.Write([]byte("zumba"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "zumba", b1.String())
	assert.Equal(t, "zumba", b2.String())
}
