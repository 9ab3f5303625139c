package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
)

// URLResolver turns a Telegram file id into a download URL.
// *tgbotapi.BotAPI satisfies it.
type URLResolver interface {
	GetFileDirectURL(fileID string) (string, error)
}

// FileService archives evidence attachments sent with problem reports.
type FileService struct {
	resolver URLResolver
	client   *http.Client
	docDir   string
}

func NewFileService(resolver URLResolver, client *http.Client, docDir string) (*FileService, error) {
	if err := os.MkdirAll(docDir, 0755); err != nil {
		return nil, fmt.Errorf("FileService: cannot create dir %s: %w", docDir, err)
	}

	if client == nil {
		client = http.DefaultClient
	}

	return &FileService{
		resolver: resolver,
		client:   client,
		docDir:   docDir,
	}, nil
}

// SaveFile downloads fileID into the evidence directory under a fresh name
// and returns the stored file name.
func (fs *FileService) SaveFile(ctx context.Context, fileID string) (string, error) {
	link, err := fs.resolver.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("FileService.SaveFile: cannot get file: %w", redact(err))
	}

	fileExt := path.Ext(link)
	if fileExt == "" {
		fileExt = ".jpg"
	}

	fileName := fmt.Sprintf("%s%s", uuid.New().String(), fileExt)
	filePath := filepath.Join(fs.docDir, fileName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("FileService.SaveFile: %w", err)
	}

	resp, err := fs.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("FileService.SaveFile: cannot download file: %w", redact(err))
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("FileService.SaveFile: unexpected status %d", resp.StatusCode)
	}

	out, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("FileService.SaveFile: cannot create file: %w", err)
	}

	defer out.Close()

	if _, err = io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("FileService.SaveFile: cannot save file: %w", err)
	}

	return fileName, nil
}

// redact drops the request URL from err. Telegram file and API URLs carry
// the bot token.
func redact(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}

	return fmt.Errorf("%s request: %w", urlErr.Op, urlErr.Err)
}

// DeleteFile removes a previously saved file. Missing files are ignored.
func (fs *FileService) DeleteFile(name string) error {
	if name == "" {
		return nil
	}

	if err := os.Remove(filepath.Join(fs.docDir, filepath.Base(name))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("FileService.DeleteFile: %w", err)
	}

	return nil
}
