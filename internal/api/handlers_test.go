package api

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/adventure-scaler/scaler/internal/cache"
	"github.com/adventure-scaler/scaler/internal/testutil"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestCache(t *testing.T) *cache.SummaryCache {
	t.Helper()
	c, err := cache.NewSummaryCache(100)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

// multipartRequest builds a multipart POST with an optional file part.
func multipartRequest(t *testing.T, target string, fields map[string]string, fileName string, data []byte) *http.Request {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func caveArchive(t *testing.T) []byte {
	t.Helper()
	return testutil.BuildArchive(t,
		testutil.Entry{Name: "adventure.json", Data: []byte(`{"name":"Cave"}`)},
		testutil.Entry{Name: "scene/s1.json", Data: testutil.PopulatedScene("s1").JSON(t)},
		testutil.Entry{Name: "assets/map.webp", Data: []byte{1, 2, 3}},
	)
}

func testWriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}
