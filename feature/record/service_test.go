package record_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"archive-manager/core/archive"
	"archive-manager/core/archive/mocks"
	"archive-manager/core/checksum"
	"archive-manager/feature/record"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "alpha")
	writeFile(t, dir, "b.csv", "beta")
	writeFile(t, dir, "metadata.yaml", "title: Test upload")

	client := &mocks.Client{}
	client.On("CreateRecord", mock.Anything, mock.MatchedBy(func(doc archive.Document) bool {
		meta, _ := doc["metadata"].(map[string]any)
		return meta["title"] == "Test upload"
	})).Return(archive.Document{"id": "abcde-fghij"}, nil)
	client.On("RegisterFiles", mock.Anything, "abcde-fghij", []string{"a.csv", "b.csv"}).Return(nil)
	client.On("UploadFileContent", mock.Anything, "abcde-fghij", "a.csv", mock.Anything).Return(nil)
	client.On("UploadFileContent", mock.Anything, "abcde-fghij", "b.csv", mock.Anything).Return(nil)
	client.On("CommitFile", mock.Anything, "abcde-fghij", "a.csv").Return(nil)
	client.On("CommitFile", mock.Anything, "abcde-fghij", "b.csv").Return(nil)

	svc := record.NewService(client, zap.NewNop())
	res, err := svc.Create(context.Background(), record.CreateParams{
		MetadataFile: filepath.Join(dir, "metadata.yaml"),
		UploadDir:    dir,
	})
	require.NoError(t, err)

	assert.Equal(t, "abcde-fghij", res.RecordID)
	assert.Equal(t, []string{"a.csv", "b.csv"}, res.Uploaded)
	assert.False(t, res.Published)
	client.AssertExpectations(t)
	client.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCreateAndPublish(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "alpha")
	metaPath := filepath.Join(t.TempDir(), "metadata.yaml")
	require.NoError(t, os.WriteFile(metaPath, []byte("title: Published upload"), 0o644))

	client := &mocks.Client{}
	client.On("CreateRecord", mock.Anything, mock.Anything).Return(archive.Document{"id": "abcde-fghij"}, nil)
	client.On("RegisterFiles", mock.Anything, "abcde-fghij", []string{"a.csv"}).Return(nil)
	client.On("UploadFileContent", mock.Anything, "abcde-fghij", "a.csv", mock.Anything).Return(nil)
	client.On("CommitFile", mock.Anything, "abcde-fghij", "a.csv").Return(nil)
	client.On("GetDraft", mock.Anything, "abcde-fghij").Return(archive.Document{
		"id":       "abcde-fghij",
		"metadata": map[string]any{"title": "Published upload"},
	}, nil)
	client.On("PutDraft", mock.Anything, "abcde-fghij", mock.MatchedBy(func(doc archive.Document) bool {
		date, _ := doc.Metadata()["publication_date"].(string)
		return date == time.Now().Format("2006-01-02")
	})).Return(archive.Document{"id": "abcde-fghij"}, nil)
	client.On("Publish", mock.Anything, "abcde-fghij").Return(archive.Document{"id": "abcde-fghij"}, nil)

	svc := record.NewService(client, zap.NewNop())
	res, err := svc.Create(context.Background(), record.CreateParams{
		MetadataFile: metaPath,
		UploadDir:    dir,
		Publish:      true,
	})
	require.NoError(t, err)

	assert.True(t, res.Published)
	client.AssertExpectations(t)
}

func TestCreateWithoutReturnedID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "metadata.yaml", "title: Broken")

	client := &mocks.Client{}
	client.On("CreateRecord", mock.Anything, mock.Anything).Return(archive.Document{}, nil)

	svc := record.NewService(client, zap.NewNop())
	_, err := svc.Create(context.Background(), record.CreateParams{
		MetadataFile: filepath.Join(dir, "metadata.yaml"),
		UploadDir:    dir,
	})
	assert.ErrorContains(t, err, "did not return an id")
}

func TestUpdateSameVersion(t *testing.T) {
	metaPath := filepath.Join(t.TempDir(), "metadata.yaml")
	require.NoError(t, os.WriteFile(metaPath, []byte("title: New title"), 0o644))

	client := &mocks.Client{}
	client.On("CreateDraft", mock.Anything, "abcde-fghij").Return(archive.Document{"id": "abcde-fghij"}, nil)
	client.On("GetDraft", mock.Anything, "abcde-fghij").Return(archive.Document{
		"id": "abcde-fghij",
		"metadata": map[string]any{
			"title":            "Old title",
			"publication_date": "2026-01-15",
		},
	}, nil)

	var putDraft archive.Document
	client.On("PutDraft", mock.Anything, "abcde-fghij", mock.Anything).Run(func(args mock.Arguments) {
		putDraft = args.Get(2).(archive.Document)
	}).Return(archive.Document{"id": "abcde-fghij"}, nil)
	client.On("Publish", mock.Anything, "abcde-fghij").Return(archive.Document{"id": "abcde-fghij"}, nil)

	svc := record.NewService(client, zap.NewNop())
	res, err := svc.Update(context.Background(), record.UpdateParams{
		RecordID:     "abcde-fghij",
		MetadataFile: metaPath,
	})
	require.NoError(t, err)

	assert.Equal(t, "abcde-fghij", res.RecordID)
	assert.True(t, res.Published)
	assert.Nil(t, res.Plan)

	// Metadata replaced, publication date carried over.
	require.NotNil(t, putDraft)
	assert.Equal(t, "New title", putDraft.Title())
	assert.Equal(t, "2026-01-15", putDraft.Metadata()["publication_date"])

	client.AssertNotCalled(t, "CreateVersion", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "ImportFiles", mock.Anything, mock.Anything)
}

func TestUpdateNewVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "x.csv", "alpha")
	writeFile(t, dir, "z.csv", "gamma")
	writeFile(t, dir, "metadata.yaml", "title: Second version")

	// Post-import link set: x.csv unchanged locally, y.csv absent locally.
	remote := []archive.FileEntry{
		{Key: "x.csv", Checksum: checksum.Bytes([]byte("alpha")), Size: 5, Status: "completed"},
		{Key: "y.csv", Checksum: "md5:bbb", Size: 4, Status: "completed"},
	}

	client := &mocks.Client{}
	client.On("CreateVersion", mock.Anything, "abcde-fghij").Return(archive.Document{"id": "vwxyz-12345"}, nil)
	client.On("GetDraft", mock.Anything, "vwxyz-12345").Return(archive.Document{
		"id":       "vwxyz-12345",
		"metadata": map[string]any{},
	}, nil)
	client.On("PutDraft", mock.Anything, "vwxyz-12345", mock.Anything).Return(archive.Document{"id": "vwxyz-12345"}, nil)
	// First listing feeds the link clearing, the second the reconciliation.
	client.On("ListFiles", mock.Anything, "vwxyz-12345").Return([]archive.FileEntry{}, nil).Once()
	client.On("ListFiles", mock.Anything, "vwxyz-12345").Return(remote, nil).Once()
	client.On("ImportFiles", mock.Anything, "vwxyz-12345").Return(nil)
	client.On("DeleteFile", mock.Anything, "vwxyz-12345", "y.csv").Return(nil)
	client.On("RegisterFiles", mock.Anything, "vwxyz-12345", []string{"z.csv"}).Return(nil)
	client.On("UploadFileContent", mock.Anything, "vwxyz-12345", "z.csv", mock.Anything).Return(nil)
	client.On("CommitFile", mock.Anything, "vwxyz-12345", "z.csv").Return(nil)

	svc := record.NewService(client, zap.NewNop())
	res, err := svc.Update(context.Background(), record.UpdateParams{
		RecordID:     "abcde-fghij",
		NewVersion:   true,
		MetadataFile: filepath.Join(dir, "metadata.yaml"),
		UploadDir:    dir,
		Force:        true,
	})
	require.NoError(t, err)

	assert.Equal(t, "vwxyz-12345", res.RecordID)
	assert.False(t, res.Published)
	require.NotNil(t, res.Plan)
	assert.Equal(t, []string{"y.csv"}, res.Plan.ToDelete)
	assert.Equal(t, []string{"x.csv"}, res.Plan.ToImport)
	assert.Equal(t, []string{"z.csv"}, res.Plan.ToUpload)

	client.AssertExpectations(t)
	client.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestUpdateNewVersionClearsPrepopulatedLinks(t *testing.T) {
	dir := t.TempDir()
	metaPath := filepath.Join(t.TempDir(), "metadata.yaml")
	require.NoError(t, os.WriteFile(metaPath, []byte("title: Clean slate"), 0o644))

	var order []string

	client := &mocks.Client{}
	client.On("CreateVersion", mock.Anything, "abcde-fghij").Return(archive.Document{"id": "vwxyz-12345"}, nil)
	client.On("GetDraft", mock.Anything, "vwxyz-12345").Return(archive.Document{"id": "vwxyz-12345"}, nil)
	client.On("PutDraft", mock.Anything, "vwxyz-12345", mock.Anything).Return(archive.Document{"id": "vwxyz-12345"}, nil)
	client.On("ListFiles", mock.Anything, "vwxyz-12345").Return([]archive.FileEntry{{Key: "stale.csv"}}, nil).Once()
	client.On("ListFiles", mock.Anything, "vwxyz-12345").Return([]archive.FileEntry{}, nil).Once()
	client.On("DeleteFile", mock.Anything, "vwxyz-12345", "stale.csv").Run(func(mock.Arguments) {
		order = append(order, "delete stale link")
	}).Return(nil)
	client.On("ImportFiles", mock.Anything, "vwxyz-12345").Run(func(mock.Arguments) {
		order = append(order, "import links")
	}).Return(nil)

	svc := record.NewService(client, zap.NewNop())
	res, err := svc.Update(context.Background(), record.UpdateParams{
		RecordID:     "abcde-fghij",
		NewVersion:   true,
		MetadataFile: metaPath,
		UploadDir:    dir,
	})
	require.NoError(t, err)

	// Pre-populated links are cleared before the bulk import.
	assert.Equal(t, []string{"delete stale link", "import links"}, order)
	assert.True(t, res.Plan.IsNoop())
	client.AssertNotCalled(t, "RegisterFiles", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateAbortsOnFirstError(t *testing.T) {
	metaPath := filepath.Join(t.TempDir(), "metadata.yaml")
	require.NoError(t, os.WriteFile(metaPath, []byte("title: Doomed"), 0o644))

	client := &mocks.Client{}
	client.On("CreateVersion", mock.Anything, "missing-00000").Return(nil, &archive.StatusError{
		StatusCode: 404,
		Status:     "404 Not Found",
		Method:     "POST",
		URL:        "https://archive.example.org/api/records/missing-00000/versions",
	})

	svc := record.NewService(client, zap.NewNop())
	_, err := svc.Update(context.Background(), record.UpdateParams{
		RecordID:     "missing-00000",
		NewVersion:   true,
		MetadataFile: metaPath,
		UploadDir:    t.TempDir(),
	})

	require.Error(t, err)
	assert.True(t, archive.IsStatus(err, 404))
	client.AssertNotCalled(t, "GetDraft", mock.Anything, mock.Anything)
}

func userRecordsResponse() archive.Document {
	return archive.Document{
		"hits": map[string]any{
			"hits": []any{
				map[string]any{
					"id":           "aaaaa-11111",
					"is_published": true,
					"metadata":     map[string]any{"title": "Lab backups"},
				},
				map[string]any{
					"id":           "bbbbb-22222",
					"is_published": false,
					"metadata":     map[string]any{"title": "Work in progress"},
				},
			},
		},
	}
}

func TestLatestVersions(t *testing.T) {
	client := &mocks.Client{}
	client.On("ListUserRecords", mock.Anything, false, 1000000).Return(userRecordsResponse(), nil)

	svc := record.NewService(client, zap.NewNop())
	versions, err := svc.LatestVersions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []record.VersionInfo{
		{ID: "aaaaa-11111", IsPublished: true},
		{ID: "bbbbb-22222", IsPublished: false},
	}, versions)
}

func TestPublishedUserRecordsWithTitle(t *testing.T) {
	client := &mocks.Client{}
	client.On("ListUserRecords", mock.Anything, false, 1000000).Return(userRecordsResponse(), nil)

	svc := record.NewService(client, zap.NewNop())

	ids, err := svc.PublishedUserRecordsWithTitle(context.Background(), "Lab backups")
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaaa-11111"}, ids)

	// Unpublished records never match, even with the right title.
	ids, err = svc.PublishedUserRecordsWithTitle(context.Background(), "Work in progress")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestExistsAndIsPublished(t *testing.T) {
	client := &mocks.Client{}
	client.On("ListUserRecords", mock.Anything, false, 1000000).Return(userRecordsResponse(), nil)

	svc := record.NewService(client, zap.NewNop())

	published, err := svc.ExistsAndIsPublished(context.Background(), "aaaaa-11111")
	require.NoError(t, err)
	assert.True(t, published)

	published, err = svc.ExistsAndIsPublished(context.Background(), "bbbbb-22222")
	require.NoError(t, err)
	assert.False(t, published)

	published, err = svc.ExistsAndIsPublished(context.Background(), "zzzzz-99999")
	require.NoError(t, err)
	assert.False(t, published)
}

func TestRecordTitle(t *testing.T) {
	client := &mocks.Client{}
	client.On("GetRecord", mock.Anything, "aaaaa-11111").Return(archive.Document{
		"id":       "aaaaa-11111",
		"metadata": map[string]any{"title": "Lab backups"},
	}, nil)

	svc := record.NewService(client, zap.NewNop())
	title, err := svc.RecordTitle(context.Background(), "aaaaa-11111")
	require.NoError(t, err)
	assert.Equal(t, "Lab backups", title)
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output", "metadata.json")

	err := record.Export(path, archive.Document{"id": "abcde-fghij"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "abcde-fghij", doc["id"])
}
