// Package storage holds the object-storage collaborator. The core only
// keeps the returned public URL on the member record; image bytes are
// never inspected here.
package storage

import (
	"fmt"
	"io"
	"path"

	storage_go "github.com/supabase-community/storage-go"
)

// AvatarStore uploads a profile image and returns its public URL.
type AvatarStore interface {
	UploadAvatar(userID, filename, contentType string, body io.Reader) (string, error)
}

type Supabase struct {
	client *storage_go.Client
	bucket string
}

func NewSupabase(url, apiKey, bucket string) (*Supabase, error) {
	if url == "" || apiKey == "" || bucket == "" {
		return nil, fmt.Errorf("missing supabase storage url, key or bucket")
	}
	return &Supabase{
		client: storage_go.NewClient(url+"/storage/v1", apiKey, nil),
		bucket: bucket,
	}, nil
}

func (s *Supabase) UploadAvatar(userID, filename, contentType string, body io.Reader) (string, error) {
	filePath := path.Join(userID, filename)

	if _, err := s.client.UploadFile(s.bucket, filePath, body, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      boolPtr(true),
	}); err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}

	resp := s.client.GetPublicUrl(s.bucket, filePath)
	return resp.SignedURL, nil
}

func boolPtr(b bool) *bool { return &b }
