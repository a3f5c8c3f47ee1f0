package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveKeyValueStore keeps each document as a JSON file in a Google Drive folder
type DriveKeyValueStore struct {
	client   *drive.Service
	folderID string
}

// Ensure DriveKeyValueStore implements KeyValueStoreInterface
var _ KeyValueStoreInterface = (*DriveKeyValueStore)(nil)

// NewDriveKeyValueStore creates a DriveKeyValueStore.
// credentialsPath should be the path to the Service Account JSON file
func NewDriveKeyValueStore(ctx context.Context, credentialsPath string, folderID string) (*DriveKeyValueStore, error) {
	if folderID == "" {
		return nil, fmt.Errorf("drive folder id is required")
	}

	// option.WithCredentialsFile automatically handles Service Account authentication
	client, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &DriveKeyValueStore{
		client:   client,
		folderID: folderID,
	}, nil
}

func driveFileName(key string) string {
	return key + ".json"
}

// findFile returns the file holding key, or nil when there is none
func (s *DriveKeyValueStore) findFile(ctx context.Context, key string) (*drive.File, error) {
	name := strings.ReplaceAll(driveFileName(key), "'", "\\'")
	query := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false", name, s.folderID)

	r, err := s.client.Files.List().
		Q(query).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	if len(r.Files) == 0 {
		return nil, nil
	}
	if len(r.Files) > 1 {
		log.Printf("⚠️  Drive folder %s has %d files named %s, using the first", s.folderID, len(r.Files), r.Files[0].Name)
	}
	return r.Files[0], nil
}

func (s *DriveKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	file, err := s.findFile(ctx, key)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, ErrKeyNotFound
	}

	resp, err := s.client.Files.Get(file.Id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", file.Name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file.Name, err)
	}
	return data, nil
}

func (s *DriveKeyValueStore) Put(ctx context.Context, key string, value []byte) error {
	file, err := s.findFile(ctx, key)
	if err != nil {
		return err
	}

	if file == nil {
		created, err := s.client.Files.Create(&drive.File{
			Name:     driveFileName(key),
			Parents:  []string{s.folderID},
			MimeType: "application/json",
		}).Media(bytes.NewReader(value)).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", driveFileName(key), err)
		}
		log.Printf("💾 Created Drive document %s (id=%s)", created.Name, created.Id)
		return nil
	}

	if _, err := s.client.Files.Update(file.Id, &drive.File{}).Media(bytes.NewReader(value)).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to update %s: %w", file.Name, err)
	}
	return nil
}
