package handler

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"vastustructural/internal/model"
	"vastustructural/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadsURLPrefix is where main serves UploadStore.Dir
const UploadsURLPrefix = "/uploads"

// UploadStore writes deliverable files below Dir, one folder per project.
type UploadStore struct {
	Dir string
}

var typeByExt = map[string]string{
	".pdf":  model.DeliverablePDF,
	".dwg":  model.DeliverableDWG,
	".dxf":  model.DeliverableDWG,
	".png":  model.DeliverableImage,
	".jpg":  model.DeliverableImage,
	".jpeg": model.DeliverableImage,
	".webp": model.DeliverableImage,
}

func deliverableType(filename string) string {
	if t, ok := typeByExt[strings.ToLower(filepath.Ext(filename))]; ok {
		return t
	}
	return model.DeliverableDocument
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}

// readDeliverable accepts either a multipart upload (field "file") or a JSON body that
// references an already hosted file. Malformed input is reported as model.ErrValidation.
// The returned discard removes a stored upload and must be called when the deliverable is
// not recorded.
func (u *UploadStore) readDeliverable(c *gin.Context, projectID string) (service.DeliverableInput, func(), error) {
	var in service.DeliverableInput
	discard := func() {}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBindJSON(&in); err != nil {
			return in, discard, fmt.Errorf("%w: invalid request payload: %v", model.ErrValidation, err)
		}
		return in, discard, nil
	}

	// project ids are uuids; anything else must never reach the filesystem
	if _, err := uuid.Parse(projectID); err != nil {
		return in, discard, fmt.Errorf("project %s: %w", projectID, model.ErrNotFound)
	}
	file, err := c.FormFile("file")
	if err != nil {
		return in, discard, fmt.Errorf("%w: file is required: %v", model.ErrValidation, err)
	}
	base := filepath.Base(file.Filename)
	in.Name = strings.TrimSpace(c.DefaultPostForm("name", base))
	in.Type = c.DefaultPostForm("type", deliverableType(base))
	in.Size = humanSize(file.Size)
	in.Message = c.PostForm("message")
	if in.Name == "" {
		return in, discard, fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	if !model.IsDeliverableType(in.Type) {
		return in, discard, fmt.Errorf("%w: type must be one of: pdf, dwg, image, document", model.ErrValidation)
	}

	stored := uuid.NewString() + filepath.Ext(base)
	dir := filepath.Join(u.Dir, projectID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return in, discard, fmt.Errorf("failed to prepare upload dir: %w", err)
	}
	path := filepath.Join(dir, stored)
	if err := c.SaveUploadedFile(file, path); err != nil {
		return in, discard, fmt.Errorf("failed to store upload: %w", err)
	}
	in.URL = UploadsURLPrefix + "/" + projectID + "/" + stored
	discard = func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("Failed to remove orphaned upload %s: %v", path, err)
		}
	}
	return in, discard, nil
}
