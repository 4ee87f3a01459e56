package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"go.uber.org/zap"

	"careercoach/api/internal/models"
	"careercoach/api/internal/repositories"
)

const relatedResumeChunks = 3

type ResumeService interface {
	SaveResume(ctx context.Context, identity *models.Identity, content string) (*models.Resume, error)
	GetResume(ctx context.Context, identity *models.Identity) (*models.Resume, error)
	ImproveText(ctx context.Context, identity *models.Identity, req models.ImproveResumeRequest) (string, error)
	ImportResume(ctx context.Context, identity *models.Identity, file *multipart.FileHeader) (*models.Resume, error)
}

type resumeService struct {
	users     UserService
	userRepo  repositories.UserRepository
	resumes   repositories.ResumeRepository
	generator *StructuredGenerationClient
	prompts   *PromptBuilder
	storage   StorageService
	parser    DocumentParserService
	index     ResumeIndex
	logger    *zap.Logger
}

// NewResumeService wires the resume flows. index may be nil, which turns off
// resume context retrieval.
func NewResumeService(
	users UserService,
	userRepo repositories.UserRepository,
	resumes repositories.ResumeRepository,
	generator *StructuredGenerationClient,
	storage StorageService,
	parser DocumentParserService,
	index ResumeIndex,
	logger *zap.Logger,
) ResumeService {
	return &resumeService{
		users:     users,
		userRepo:  userRepo,
		resumes:   resumes,
		generator: generator,
		prompts:   NewPromptBuilder(),
		storage:   storage,
		parser:    parser,
		index:     index,
		logger:    logger.Named("resume"),
	}
}

func (s *resumeService) SaveResume(ctx context.Context, identity *models.Identity, content string) (*models.Resume, error) {
	user, err := s.users.SyncUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	resume, err := s.resumes.Upsert(ctx, user.ID, content)
	if err != nil {
		s.logger.Error("failed to save resume", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, newServiceError(ErrPersistence, "Failed to save resume", err)
	}

	if s.index != nil {
		if err := s.index.IndexResume(ctx, user.ID, content); err != nil {
			s.logger.Warn("failed to index resume", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}

	return resume, nil
}

// GetResume returns nil without error when the user has not saved a resume.
func (s *resumeService) GetResume(ctx context.Context, identity *models.Identity) (*models.Resume, error) {
	user, err := s.users.SyncUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	resume, err := s.resumes.FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		s.logger.Error("failed to load resume", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, newServiceError(ErrPersistence, "Failed to load resume", err)
	}

	return resume, nil
}

// ImproveText rewrites one resume section. Unlike insights and quizzes there
// is no default text, so a failed generation is returned as an error.
func (s *resumeService) ImproveText(ctx context.Context, identity *models.Identity, req models.ImproveResumeRequest) (string, error) {
	user, err := resolveUser(ctx, s.userRepo, identity)
	if err != nil {
		return "", err
	}

	current := strings.TrimSpace(req.Current)
	if current == "" {
		return "", newServiceError(ErrInvalidInput, "current content is required", nil)
	}
	sectionType := strings.TrimSpace(req.Type)
	if sectionType == "" {
		return "", newServiceError(ErrInvalidInput, "type is required", nil)
	}

	prompt := s.prompts.BuildResumeImprovementPrompt(user.Industry, sectionType, current, s.relatedContext(ctx, user, current))

	improved, err := s.generator.GenerateText(ctx, CallSiteResumeImprovement, prompt)
	if err != nil {
		return "", newServiceError(ErrGenerationFailed, "Failed to improve content", err)
	}

	return improved, nil
}

func (s *resumeService) relatedContext(ctx context.Context, user *models.User, query string) string {
	if s.index == nil {
		return ""
	}

	results, err := s.index.SearchRelated(ctx, user.ID, query, relatedResumeChunks)
	if err != nil {
		s.logger.Warn("resume context lookup failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		return ""
	}

	return FormatResumeContext(results)
}

// ImportResume replaces the saved resume with the text of an uploaded
// .pdf or .docx file. The upload itself is not kept.
func (s *resumeService) ImportResume(ctx context.Context, identity *models.Identity, file *multipart.FileHeader) (*models.Resume, error) {
	if identity == nil {
		return nil, newServiceError(ErrUnauthenticated, "Not authenticated", nil)
	}

	upload, err := s.storage.StageResume(file)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFileType) {
			return nil, newServiceError(ErrInvalidInput, "Only .pdf and .docx resumes are supported", err)
		}
		s.logger.Error("failed to store uploaded resume", zap.String("file", file.Filename), zap.Error(err))
		return nil, newServiceError(ErrPersistence, "Failed to save upload", err)
	}
	defer func() {
		if err := s.storage.Discard(upload); err != nil {
			s.logger.Warn("failed to remove uploaded resume", zap.String("file", upload.Name), zap.Error(err))
		}
	}()

	text, err := s.parser.ExtractText(upload.Path)
	if err != nil {
		return nil, newServiceError(ErrInvalidInput, "Could not read text from the uploaded resume", err)
	}

	return s.SaveResume(ctx, identity, text)
}
