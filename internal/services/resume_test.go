package services

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"careercoach/api/internal/models"
	"careercoach/api/internal/repositories"
)

type fakeParser struct {
	text  string
	err   error
	paths []string
}

func (p *fakeParser) ExtractText(filePath string) (string, error) {
	p.paths = append(p.paths, filePath)
	return p.text, p.err
}

type fakeResumeIndex struct {
	indexed map[uuid.UUID]string
	results []SearchResult
}

func (f *fakeResumeIndex) InitCollection(ctx context.Context) error { return nil }

func (f *fakeResumeIndex) IndexResume(ctx context.Context, userID uuid.UUID, content string) error {
	if f.indexed == nil {
		f.indexed = make(map[uuid.UUID]string)
	}
	f.indexed[userID] = content
	return nil
}

func (f *fakeResumeIndex) SearchRelated(ctx context.Context, userID uuid.UUID, query string, limit int) ([]SearchResult, error) {
	return f.results, nil
}

type resumeFixture struct {
	*testEnv
	svc     ResumeService
	parser  *fakeParser
	index   *fakeResumeIndex
	storage StorageService
}

func newResumeFixture(t *testing.T, gen *fakeGenerator) *resumeFixture {
	t.Helper()
	env := newTestEnv(t, gen)
	f := &resumeFixture{
		testEnv: env,
		parser:  &fakeParser{},
		index:   &fakeResumeIndex{},
		storage: NewStorageService(t.TempDir()),
	}
	f.svc = NewResumeService(
		env.users,
		env.userRepo,
		repositories.NewResumeRepository(env.db),
		env.client,
		f.storage,
		f.parser,
		f.index,
		zap.NewNop(),
	)
	return f
}

func multipartFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="resume"; filename="`+filename+`"`)
	header.Set("Content-Type", "application/octet-stream")
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["resume"][0]
}

func TestSaveResume_UpsertsAndIndexes(t *testing.T) {
	f := newResumeFixture(t, newFakeGenerator())
	ctx := context.Background()
	identity := testIdentity("writer")

	first, err := f.svc.SaveResume(ctx, identity, "# Resume v1")
	require.NoError(t, err)
	second, err := f.svc.SaveResume(ctx, identity, "# Resume v2")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "# Resume v2", second.Content)
	assert.Equal(t, "# Resume v2", f.index.indexed[second.UserID])

	got, err := f.svc.GetResume(ctx, identity)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "# Resume v2", got.Content)
}

func TestGetResume_NoneSaved(t *testing.T) {
	f := newResumeFixture(t, newFakeGenerator())

	got, err := f.svc.GetResume(context.Background(), testIdentity("blank"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestImproveText(t *testing.T) {
	f := newResumeFixture(t, newFakeGenerator(reply("  Cut deploy time by 40% by automating releases.  ")))
	f.index.results = []SearchResult{{ID: "1", Score: 0.9, Text: "Built CI pipelines in GitHub Actions"}}
	identity := testIdentity("improver")
	f.createUser(t, identity, "tech")

	improved, err := f.svc.ImproveText(context.Background(), identity, models.ImproveResumeRequest{
		Current: "Worked on deployments",
		Type:    "experience",
	})
	require.NoError(t, err)

	assert.Equal(t, "Cut deploy time by 40% by automating releases.", improved)
	assert.Contains(t, f.gen.LastPrompt(), "Worked on deployments")
	assert.Contains(t, f.gen.LastPrompt(), "Built CI pipelines in GitHub Actions")
}

func TestImproveText_GenerationFailureSurfaces(t *testing.T) {
	f := newResumeFixture(t, newFakeGenerator(replyErr(errors.New("rate limited"))))
	identity := testIdentity("improver")
	f.createUser(t, identity, "tech")

	_, err := f.svc.ImproveText(context.Background(), identity, models.ImproveResumeRequest{
		Current: "Worked on deployments",
		Type:    "experience",
	})

	require.ErrorIs(t, err, ErrGenerationFailed)
	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, "Failed to improve content", serviceErr.Message)
}

func TestImproveText_Validation(t *testing.T) {
	f := newResumeFixture(t, newFakeGenerator())
	identity := testIdentity("improver")
	f.createUser(t, identity, "tech")
	ctx := context.Background()

	_, err := f.svc.ImproveText(ctx, identity, models.ImproveResumeRequest{Type: "summary"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.ImproveText(ctx, identity, models.ImproveResumeRequest{Current: "text"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.ImproveText(ctx, testIdentity("stranger"), models.ImproveResumeRequest{Current: "text", Type: "summary"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Zero(t, f.gen.Calls())
}

func TestImportResume(t *testing.T) {
	f := newResumeFixture(t, newFakeGenerator())
	f.parser.text = "Jane Doe\n\nSenior Engineer"
	identity := testIdentity("importer")

	resume, err := f.svc.ImportResume(context.Background(), identity, multipartFile(t, "cv.pdf", []byte("%PDF-1.4")))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\n\nSenior Engineer", resume.Content)

	require.Len(t, f.parser.paths, 1)
	_, statErr := os.Stat(f.parser.paths[0])
	assert.True(t, os.IsNotExist(statErr), "upload is removed after import")
}

func TestImportResume_Rejections(t *testing.T) {
	f := newResumeFixture(t, newFakeGenerator())
	identity := testIdentity("importer")
	ctx := context.Background()

	_, err := f.svc.ImportResume(ctx, identity, multipartFile(t, "cv.txt", []byte("plain")))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	f.parser.err = errors.New("no text layer")
	_, err = f.svc.ImportResume(ctx, identity, multipartFile(t, "cv.docx", []byte("zip")))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.ImportResume(ctx, nil, multipartFile(t, "cv.pdf", []byte("%PDF")))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestImportResume_UploadDirUnavailable(t *testing.T) {
	f := newResumeFixture(t, newFakeGenerator())
	f.parser.text = "never read"
	svc := NewResumeService(
		f.users,
		f.userRepo,
		repositories.NewResumeRepository(f.db),
		f.client,
		NewStorageService(filepath.Join(t.TempDir(), "missing", "dir")),
		f.parser,
		nil,
		zap.NewNop(),
	)

	_, err := svc.ImportResume(context.Background(), testIdentity("importer"), multipartFile(t, "cv.pdf", []byte("%PDF-1.4")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.NotErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, err, ErrUnsupportedFileType)

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "Failed to save upload", svcErr.Message)
	assert.Empty(t, f.parser.paths)
}
