package emulator_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"archive-manager/core/checksum"
	"archive-manager/core/database"
	"archive-manager/feature/emulator"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	store, err := emulator.NewStore(db)
	require.NoError(t, err)

	svc := emulator.NewService(store, emulator.NewMemoryStore(), zap.NewNop())
	app := fiber.New()
	emulator.NewHandler(svc).RegisterRoutes(app)
	return app
}

func request(t *testing.T, app *fiber.App, method, path string, body []byte, contentType string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	return resp
}

func jsonBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	doc := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	return doc
}

// createPublishedRecord walks a record through the full draft lifecycle
// and returns its id.
func createPublishedRecord(t *testing.T, app *fiber.App, title string, files map[string][]byte) string {
	t.Helper()

	envelope := fmt.Sprintf(`{"access":{"record":"public"},"files":{"enabled":true},"metadata":{"title":%q}}`, title)
	resp := request(t, app, "POST", "/api/records", []byte(envelope), "application/json")
	require.Equal(t, 201, resp.StatusCode)
	id := jsonBody(t, resp)["id"].(string)

	for name, content := range files {
		resp = request(t, app, "POST", "/api/records/"+id+"/draft/files",
			[]byte(fmt.Sprintf(`[{"key":%q}]`, name)), "application/json")
		require.Equal(t, 201, resp.StatusCode)
		resp.Body.Close()

		resp = request(t, app, "PUT", "/api/records/"+id+"/draft/files/"+name+"/content",
			content, "application/octet-stream")
		require.Equal(t, 200, resp.StatusCode)
		resp.Body.Close()

		resp = request(t, app, "POST", "/api/records/"+id+"/draft/files/"+name+"/commit", nil, "")
		require.Equal(t, 200, resp.StatusCode)
		resp.Body.Close()
	}

	resp = request(t, app, "POST", "/api/records/"+id+"/draft/actions/publish", nil, "")
	require.Equal(t, 202, resp.StatusCode)
	resp.Body.Close()
	return id
}

func TestRecordLifecycle(t *testing.T) {
	app := newTestApp(t)

	envelope := `{"access":{"record":"public"},"files":{"enabled":true},"metadata":{"title":"Emulated dataset"}}`
	resp := request(t, app, "POST", "/api/records", []byte(envelope), "application/json")
	require.Equal(t, 201, resp.StatusCode)
	draft := jsonBody(t, resp)
	id := draft["id"].(string)
	assert.Regexp(t, `^[0-9a-z]{5}-[0-9a-z]{5}$`, id)
	assert.Equal(t, false, draft["is_published"])
	assert.Equal(t, true, draft["is_draft"])

	resp = request(t, app, "POST", "/api/records/"+id+"/draft/files",
		[]byte(`[{"key":"data.csv"}]`), "application/json")
	require.Equal(t, 201, resp.StatusCode)
	entries := jsonBody(t, resp)["entries"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, "pending", entries[0].(map[string]any)["status"])

	content := []byte("col1,col2\n1,2\n")
	resp = request(t, app, "PUT", "/api/records/"+id+"/draft/files/data.csv/content",
		content, "application/octet-stream")
	require.Equal(t, 200, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, app, "POST", "/api/records/"+id+"/draft/files/data.csv/commit", nil, "")
	require.Equal(t, 200, resp.StatusCode)
	committed := jsonBody(t, resp)
	assert.Equal(t, "completed", committed["status"])
	assert.Equal(t, checksum.Bytes(content), committed["checksum"])
	assert.Equal(t, float64(len(content)), committed["size"])

	resp = request(t, app, "POST", "/api/records/"+id+"/draft/actions/publish", nil, "")
	require.Equal(t, 202, resp.StatusCode)
	published := jsonBody(t, resp)
	assert.Equal(t, true, published["is_published"])
	meta := published["metadata"].(map[string]any)
	assert.Equal(t, "Emulated dataset", meta["title"])
	assert.Equal(t, time.Now().Format("2006-01-02"), meta["publication_date"])

	resp = request(t, app, "GET", "/api/records/"+id, nil, "")
	assert.Equal(t, 200, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, app, "GET", "/api/user/records?allversions=false&size=100", nil, "")
	require.Equal(t, 200, resp.StatusCode)
	hits := jsonBody(t, resp)["hits"].(map[string]any)["hits"].([]any)
	require.Len(t, hits, 1)
	hit := hits[0].(map[string]any)
	assert.Equal(t, id, hit["id"])
	assert.Equal(t, true, hit["is_published"])
}

func TestVersionLifecycle(t *testing.T) {
	app := newTestApp(t)
	xContent := []byte("x content")
	yContent := []byte("y content")
	v1 := createPublishedRecord(t, app, "Versioned dataset", map[string][]byte{
		"x.csv": xContent,
		"y.csv": yContent,
	})

	resp := request(t, app, "POST", "/api/records/"+v1+"/versions", nil, "")
	require.Equal(t, 201, resp.StatusCode)
	draft := jsonBody(t, resp)
	v2 := draft["id"].(string)
	assert.NotEqual(t, v1, v2)
	assert.Equal(t, false, draft["is_published"])
	assert.Equal(t, map[string]any{"index": float64(2)}, draft["versions"])
	// The copied metadata loses its publication date.
	assert.NotContains(t, draft["metadata"].(map[string]any), "publication_date")

	// Asking for another version returns the pending draft.
	resp = request(t, app, "POST", "/api/records/"+v1+"/versions", nil, "")
	require.Equal(t, 201, resp.StatusCode)
	assert.Equal(t, v2, jsonBody(t, resp)["id"])

	// The fresh draft has no files until they are imported.
	resp = request(t, app, "GET", "/api/records/"+v2+"/draft/files", nil, "")
	require.Equal(t, 200, resp.StatusCode)
	assert.Empty(t, jsonBody(t, resp)["entries"])

	resp = request(t, app, "POST", "/api/records/"+v2+"/draft/actions/files-import", nil, "")
	require.Equal(t, 201, resp.StatusCode)
	entries := jsonBody(t, resp)["entries"].([]any)
	require.Len(t, entries, 2)
	byKey := map[string]map[string]any{}
	for _, raw := range entries {
		entry := raw.(map[string]any)
		byKey[entry["key"].(string)] = entry
	}
	assert.Equal(t, checksum.Bytes(xContent), byKey["x.csv"]["checksum"])
	assert.Equal(t, checksum.Bytes(yContent), byKey["y.csv"]["checksum"])
	assert.Equal(t, "completed", byKey["x.csv"]["status"])

	// Drop y.csv and add z.csv on the new version.
	resp = request(t, app, "DELETE", "/api/records/"+v2+"/draft/files/y.csv", nil, "")
	require.Equal(t, 204, resp.StatusCode)
	resp.Body.Close()

	zContent := []byte("z content")
	resp = request(t, app, "POST", "/api/records/"+v2+"/draft/files",
		[]byte(`[{"key":"z.csv"}]`), "application/json")
	require.Equal(t, 201, resp.StatusCode)
	resp.Body.Close()
	resp = request(t, app, "PUT", "/api/records/"+v2+"/draft/files/z.csv/content",
		zContent, "application/octet-stream")
	require.Equal(t, 200, resp.StatusCode)
	resp.Body.Close()
	resp = request(t, app, "POST", "/api/records/"+v2+"/draft/files/z.csv/commit", nil, "")
	require.Equal(t, 200, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, app, "POST", "/api/records/"+v2+"/draft/actions/publish", nil, "")
	require.Equal(t, 202, resp.StatusCode)
	resp.Body.Close()

	// Latest-only listing collapses the family to the new version.
	resp = request(t, app, "GET", "/api/records?allversions=false&size=100", nil, "")
	require.Equal(t, 200, resp.StatusCode)
	hits := jsonBody(t, resp)["hits"].(map[string]any)["hits"].([]any)
	require.Len(t, hits, 1)
	assert.Equal(t, v2, hits[0].(map[string]any)["id"])

	resp = request(t, app, "GET", "/api/records?allversions=true&size=100", nil, "")
	require.Equal(t, 200, resp.StatusCode)
	hits = jsonBody(t, resp)["hits"].(map[string]any)["hits"].([]any)
	assert.Len(t, hits, 2)
}

func TestEditPublishedMetadata(t *testing.T) {
	app := newTestApp(t)
	id := createPublishedRecord(t, app, "First title", nil)

	resp := request(t, app, "POST", "/api/records/"+id+"/draft", nil, "")
	require.Equal(t, 201, resp.StatusCode)
	draft := jsonBody(t, resp)
	assert.Equal(t, true, draft["is_draft"])
	assert.Equal(t, "First title", draft["metadata"].(map[string]any)["title"])

	envelope := `{"access":{"record":"public"},"files":{"enabled":true},"metadata":{"title":"Second title"}}`
	resp = request(t, app, "PUT", "/api/records/"+id+"/draft", []byte(envelope), "application/json")
	require.Equal(t, 200, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, app, "POST", "/api/records/"+id+"/draft/actions/publish", nil, "")
	require.Equal(t, 202, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, app, "GET", "/api/records/"+id, nil, "")
	require.Equal(t, 200, resp.StatusCode)
	record := jsonBody(t, resp)
	assert.Equal(t, id, record["id"])
	assert.Equal(t, "Second title", record["metadata"].(map[string]any)["title"])
}

func TestDeleteUnpublishedDraft(t *testing.T) {
	app := newTestApp(t)

	resp := request(t, app, "POST", "/api/records",
		[]byte(`{"metadata":{"title":"Short lived"}}`), "application/json")
	require.Equal(t, 201, resp.StatusCode)
	id := jsonBody(t, resp)["id"].(string)

	resp = request(t, app, "DELETE", "/api/records/"+id+"/draft", nil, "")
	require.Equal(t, 204, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, app, "GET", "/api/records/"+id+"/draft", nil, "")
	assert.Equal(t, 404, resp.StatusCode)
	resp.Body.Close()
}

func TestHandlerErrors(t *testing.T) {
	app := newTestApp(t)

	t.Run("Unknown Record", func(t *testing.T) {
		resp := request(t, app, "GET", "/api/records/zzzzz-99999/draft", nil, "")
		require.Equal(t, 404, resp.StatusCode)
		body := jsonBody(t, resp)
		assert.Equal(t, float64(404), body["status"])
		assert.Equal(t, "The persistent identifier does not exist.", body["message"])
	})

	t.Run("Unpublished Record Not Visible", func(t *testing.T) {
		resp := request(t, app, "POST", "/api/records",
			[]byte(`{"metadata":{"title":"Hidden"}}`), "application/json")
		require.Equal(t, 201, resp.StatusCode)
		id := jsonBody(t, resp)["id"].(string)

		resp = request(t, app, "GET", "/api/records/"+id, nil, "")
		assert.Equal(t, 404, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("Commit Without Upload", func(t *testing.T) {
		resp := request(t, app, "POST", "/api/records",
			[]byte(`{"metadata":{"title":"Pending"}}`), "application/json")
		require.Equal(t, 201, resp.StatusCode)
		id := jsonBody(t, resp)["id"].(string)

		resp = request(t, app, "POST", "/api/records/"+id+"/draft/files",
			[]byte(`[{"key":"a.csv"}]`), "application/json")
		require.Equal(t, 201, resp.StatusCode)
		resp.Body.Close()

		resp = request(t, app, "POST", "/api/records/"+id+"/draft/files/a.csv/commit", nil, "")
		require.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "No content was uploaded for file a.csv.", jsonBody(t, resp)["message"])

		// Publishing with the pending file is rejected as well.
		resp = request(t, app, "POST", "/api/records/"+id+"/draft/actions/publish", nil, "")
		require.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "The upload of file a.csv is not completed.", jsonBody(t, resp)["message"])

		// Registering the same key twice is rejected.
		resp = request(t, app, "POST", "/api/records/"+id+"/draft/files",
			[]byte(`[{"key":"a.csv"}]`), "application/json")
		require.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "A file with key a.csv already exists.", jsonBody(t, resp)["message"])
	})

	t.Run("Published Files Are Immutable", func(t *testing.T) {
		id := createPublishedRecord(t, app, "Frozen", map[string][]byte{"a.csv": []byte("alpha")})

		resp := request(t, app, "POST", "/api/records/"+id+"/draft/files",
			[]byte(`[{"key":"b.csv"}]`), "application/json")
		require.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "Cannot modify the files of a published record.", jsonBody(t, resp)["message"])
	})

	t.Run("Import Without Published Version", func(t *testing.T) {
		resp := request(t, app, "POST", "/api/records",
			[]byte(`{"metadata":{"title":"Fresh"}}`), "application/json")
		require.Equal(t, 201, resp.StatusCode)
		id := jsonBody(t, resp)["id"].(string)

		resp = request(t, app, "POST", "/api/records/"+id+"/draft/actions/files-import", nil, "")
		require.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "There is no published version to import files from.", jsonBody(t, resp)["message"])
	})

	t.Run("Unknown File", func(t *testing.T) {
		resp := request(t, app, "POST", "/api/records",
			[]byte(`{"metadata":{"title":"No files"}}`), "application/json")
		require.Equal(t, 201, resp.StatusCode)
		id := jsonBody(t, resp)["id"].(string)

		resp = request(t, app, "DELETE", "/api/records/"+id+"/draft/files/zzz.csv", nil, "")
		require.Equal(t, 404, resp.StatusCode)
		assert.Equal(t, "File zzz.csv does not exist.", jsonBody(t, resp)["message"])
	})

	t.Run("Invalid JSON Body", func(t *testing.T) {
		resp := request(t, app, "POST", "/api/records", []byte("not json"), "application/json")
		require.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "Invalid JSON body.", jsonBody(t, resp)["message"])
	})
}
