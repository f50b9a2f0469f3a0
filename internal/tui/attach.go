package tui

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"

	"github.com/sriram629/AI-ChatBot/client/internal/types"
)

const (
	previewSample = 4096
	previewRunes  = 80
)

// LoadAttachment describes a local file as an attachment. Images are
// detected from content, not from the extension. Text files get a short
// one-line preview decoded to UTF-8.
func LoadAttachment(path string) (*types.Attachment, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("attach %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("attach %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("attach %s: is a directory", path)
	}

	mtype, err := mimetype.DetectFile(abs)
	if err != nil {
		return nil, fmt.Errorf("attach %s: %w", path, err)
	}

	att := &types.Attachment{
		Type:     types.AttachmentFile,
		URL:      "file://" + filepath.ToSlash(abs),
		Filename: filepath.Base(abs),
	}
	switch {
	case strings.HasPrefix(mtype.String(), "image/"):
		att.Type = types.AttachmentImage
	case strings.HasPrefix(mtype.String(), "text/"):
		att.Preview = textPreview(abs)
	}
	return att, nil
}

func textPreview(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	sample, err := io.ReadAll(io.LimitReader(f, previewSample))
	if err != nil || len(sample) == 0 {
		return ""
	}

	decoded := sample
	if r, err := charset.NewReader(bytes.NewReader(sample), detectCharset(sample)); err == nil {
		if out, err := io.ReadAll(r); err == nil {
			decoded = out
		}
	}

	return truncate(strings.Join(strings.Fields(string(decoded)), " "), previewRunes)
}

func detectCharset(data []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}
