// Package blobstore хранит загруженные изображения на локальном диске
// и отдаёт их через /uploads/.
package blobstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	URLPrefix = "/uploads/"
	// DefaultProfileImage отдаётся, когда у дилера нет своего фото
	DefaultProfileImage = URLPrefix + "default-profile.jpg"
	MaxSize             = 10 << 20
)

var (
	ErrNotImage = errors.New("uploaded file is not an image")
	ErrTooLarge = errors.New("uploaded file is too large")
	ErrEmpty    = errors.New("uploaded file is empty")
)

type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Dir() string { return s.dir }

// Save сохраняет изображение под случайным именем и возвращает путь вида
// /uploads/<uuid>.<ext>; этот путь и пишется в БД.
func (s *LocalStore) Save(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if len(data) > MaxSize {
		return "", ErrTooLarge
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", ErrNotImage
	}

	name := uuid.NewString() + mt.Extension()
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return URLPrefix + name, nil
}

// URL превращает сохранённый путь в абсолютную ссылку, если задан PUBLIC_BASE_URL
func (s *LocalStore) URL(path string) string {
	return s.baseURL + path
}

// IsClientError сообщает, что файл отклонён из-за содержимого, а не из-за диска
func IsClientError(err error) bool {
	return errors.Is(err, ErrNotImage) || errors.Is(err, ErrEmpty) || errors.Is(err, ErrTooLarge)
}
