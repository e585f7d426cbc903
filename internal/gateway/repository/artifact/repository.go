package artifact

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Object is a stored RFP document.
type Object struct {
	Name        string
	ContentType string
	Content     []byte
}

// Store persists uploaded documents per project.
type Store interface {
	Put(ctx context.Context, projectID, name, contentType string, content []byte) error
	Get(ctx context.Context, projectID, name string) (Object, error)
	// GetURL returns a download URL, or "" when the backend cannot serve one.
	GetURL(ctx context.Context, projectID, name string) (string, error)
	List(ctx context.Context, projectID string) ([]string, error)
}

var ErrNotFound = errors.New("artifact not found")

const defaultContentType = "application/octet-stream"

// normalize validates and trims a project id and object name.
func normalize(projectID, name string) (string, string, error) {
	projectID = strings.TrimSpace(projectID)
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if projectID == "" {
		return "", "", fmt.Errorf("project_id is required")
	}
	if name == "" {
		return "", "", fmt.Errorf("name is required")
	}
	if strings.Contains(projectID, "..") || strings.Contains(projectID, "/") {
		return "", "", fmt.Errorf("invalid project_id: %s", projectID)
	}
	if strings.Contains(name, "..") || filepath.IsAbs(name) {
		return "", "", fmt.Errorf("invalid name: %s", name)
	}
	return projectID, name, nil
}

func objectKey(projectID, name string) string {
	return projectID + "/" + name
}

func contentTypeOr(ct string) string {
	if ct = strings.TrimSpace(ct); ct != "" {
		return ct
	}
	return defaultContentType
}
