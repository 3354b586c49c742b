package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gioia-labs/gioia-archive/internal/chunker"
	"github.com/gioia-labs/gioia-archive/internal/core/domain"
	"github.com/gioia-labs/gioia-archive/internal/core/ports/driven"
	"github.com/gioia-labs/gioia-archive/internal/core/ports/driving"
	"github.com/gioia-labs/gioia-archive/internal/extract"
	"github.com/gioia-labs/gioia-archive/internal/logger"
)

// Ensure ArchiveService implements the interface.
var _ driving.ArchiveService = (*ArchiveService)(nil)

// MaxFileSize is the upload size cap.
const MaxFileSize = 50 * 1024 * 1024

// ArchiveService orchestrates the ingest pipeline: store the file, extract
// text, chunk and index it, then enrich it with AI metadata.
type ArchiveService struct {
	store    driven.ArchiveStore
	enricher driven.Enricher
	splitter *chunker.Chunker
	filesDir string
}

// NewArchiveService creates an archive service. The enricher is optional:
// without it, documents get filename-derived metadata instead of
// AI-generated titles and tags.
func NewArchiveService(store driven.ArchiveStore, enricher driven.Enricher, splitter *chunker.Chunker, filesDir string) (*ArchiveService, error) {
	if err := os.MkdirAll(filesDir, 0700); err != nil {
		return nil, fmt.Errorf("creating files directory: %w", err)
	}
	return &ArchiveService{
		store:    store,
		enricher: enricher,
		splitter: splitter,
		filesDir: filesDir,
	}, nil
}

// AddFile ingests a local file.
func (s *ArchiveService) AddFile(ctx context.Context, path string) (*domain.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%w: maximum size is 50 MB", domain.ErrFileTooLarge)
	}

	originalName := filepath.Base(path)
	mimeType := extract.MIMEType(originalName)
	if !extract.Supported(mimeType) {
		return nil, fmt.Errorf("%w: allowed: .txt, .md, .pdf, .html", domain.ErrUnsupportedType)
	}

	id, err := s.store.InsertDocument(ctx, "pending", originalName, mimeType)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("%d_%s", id, extract.SanitizeFilename(originalName))
	storedPath := filepath.Join(s.filesDir, filename)
	if err := copyFile(path, storedPath); err != nil {
		return nil, fmt.Errorf("storing file: %w", err)
	}
	if err := s.store.UpdateFilename(ctx, id, filename); err != nil {
		return nil, err
	}

	s.process(ctx, id, storedPath, mimeType, originalName)

	return s.store.GetDocument(ctx, id)
}

// AddURL fetches an HTML page and ingests its article text.
func (s *ArchiveService) AddURL(ctx context.Context, pageURL string) (*domain.Document, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("%w: invalid url", domain.ErrInvalidInput)
	}

	html, err := extract.FetchURL(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	originalName := extract.HTMLTitle(html)
	if originalName == "" {
		originalName = parsed.Host
	}
	originalName += ".html"

	id, err := s.store.InsertDocument(ctx, "pending", originalName, "text/html")
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("%d_%s", id, extract.SanitizeFilename(originalName))
	storedPath := filepath.Join(s.filesDir, filename)
	if err := os.WriteFile(storedPath, []byte(html), 0600); err != nil {
		return nil, fmt.Errorf("storing page: %w", err)
	}
	if err := s.store.UpdateFilename(ctx, id, filename); err != nil {
		return nil, err
	}

	s.process(ctx, id, storedPath, "text/html", originalName)

	return s.store.GetDocument(ctx, id)
}

// process runs extraction, chunking and enrichment. Failures mark the
// document StatusError instead of propagating.
func (s *ArchiveService) process(ctx context.Context, id int64, path, mimeType, originalName string) {
	if err := s.processDocument(ctx, id, path, mimeType, originalName); err != nil {
		logger.Error("processing document %d: %v", id, err)
		if updateErr := s.store.UpdateError(ctx, id, err.Error()); updateErr != nil {
			logger.Error("recording document %d error: %v", id, updateErr)
		}
	}
}

func (s *ArchiveService) processDocument(ctx context.Context, id int64, path, mimeType, originalName string) error {
	text, err := extract.Text(path, mimeType)
	if err != nil {
		return err
	}

	if err := s.store.UpdateContent(ctx, id, text); err != nil {
		return err
	}
	if err := s.store.ReplaceChunks(ctx, id, s.splitter.Split(text)); err != nil {
		return err
	}

	enrichment, formattedHTML := s.enrich(ctx, text, originalName)

	if err := s.store.UpdateEnrichment(ctx, id, *enrichment, formattedHTML, Slugify(enrichment.Title)); err != nil {
		return err
	}

	logger.Info("document %d enriched: %q", id, enrichment.Title)
	return nil
}

// enrich generates metadata, degrading to filename-derived values when no
// enricher is configured or the model call fails.
func (s *ArchiveService) enrich(ctx context.Context, text, originalName string) (*domain.Enrichment, string) {
	if s.enricher == nil {
		return fallbackEnrichment(originalName), ""
	}

	enrichment, err := s.enricher.Enrich(ctx, text, originalName)
	if err != nil {
		logger.Warn("enrichment failed, using filename metadata: %v", err)
		return fallbackEnrichment(originalName), ""
	}

	formattedHTML, err := s.enricher.Format(ctx, text, originalName)
	if err != nil {
		logger.Warn("formatting failed: %v", err)
		formattedHTML = ""
	}

	return enrichment, formattedHTML
}

// fallbackEnrichment derives a title from the filename.
func fallbackEnrichment(originalName string) *domain.Enrichment {
	title := strings.TrimSuffix(originalName, filepath.Ext(originalName))
	title = strings.ReplaceAll(title, "_", " ")
	title = strings.ReplaceAll(title, "-", " ")
	title = strings.TrimSpace(title)
	if title == "" {
		title = originalName
	}
	return &domain.Enrichment{Title: title, Tags: []string{}}
}

// Reindex re-extracts and re-chunks an existing document's stored file.
func (s *ArchiveService) Reindex(ctx context.Context, id int64) error {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	text, err := extract.Text(filepath.Join(s.filesDir, doc.Filename), doc.MIMEType)
	if err != nil {
		return fmt.Errorf("re-extracting document %d: %w", id, err)
	}

	if err := s.store.UpdateContent(ctx, id, text); err != nil {
		return err
	}
	return s.store.ReplaceChunks(ctx, id, s.splitter.Split(text))
}

// Get retrieves a document by id.
func (s *ArchiveService) Get(ctx context.Context, id int64) (*domain.Document, error) {
	return s.store.GetDocument(ctx, id)
}

// GetBySlug retrieves a document by its URL slug.
func (s *ArchiveService) GetBySlug(ctx context.Context, slug string) (*domain.Document, error) {
	return s.store.GetDocumentBySlug(ctx, slug)
}

// List returns all documents, newest first.
func (s *ArchiveService) List(ctx context.Context) ([]domain.Document, error) {
	return s.store.ListDocuments(ctx)
}

// Delete removes a document, its chunks and its stored file.
func (s *ArchiveService) Delete(ctx context.Context, id int64) error {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteDocument(ctx, id); err != nil {
		return err
	}

	if doc.Filename != "" && doc.Filename != "pending" {
		if err := os.Remove(filepath.Join(s.filesDir, doc.Filename)); err != nil && !os.IsNotExist(err) {
			logger.Warn("removing stored file for document %d: %v", id, err)
		}
	}
	return nil
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe identifier from a title, bounded to 80
// characters. Empty titles yield an empty slug.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = slugUnsafe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 80 {
		slug = strings.Trim(slug[:80], "-")
	}
	return slug
}

// copyFile copies src to dst, creating or truncating dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
