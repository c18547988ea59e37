package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var errBadPDF = errors.New("file is not a readable pdf")

// fetchAndStore downloads a Telegram document and hands it to the blob
// store under key. PDF uploads are probed first so a truncated or
// mislabeled file is rejected before it is published.
func (b *Bot) fetchAndStore(fileID, key string, isPDF bool) (string, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return "", fmt.Errorf("get file info: %w", err)
	}

	tmp, err := os.CreateTemp("", "kitobbot-upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := b.downloadTo(tmp, file.Link(b.cfg.Token))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("download %s: %w", filepath.Base(key), err)
	}

	if isPDF {
		if _, err := b.probePDF(tmpPath); err != nil {
			return "", fmt.Errorf("%w: %v", errBadPDF, err)
		}
	}

	src, err := os.Open(tmpPath)
	if err != nil {
		return "", fmt.Errorf("reopen temp file: %w", err)
	}
	defer src.Close()

	ref, err := b.files.Save(context.Background(), key, src, size)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", key, err)
	}
	return ref, nil
}

func (b *Bot) downloadTo(dst io.Writer, url string) (int64, error) {
	resp, err := b.httpc.Get(url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.Copy(dst, resp.Body)
}
