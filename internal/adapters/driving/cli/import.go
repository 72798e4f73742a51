package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/clipsearch/internal/core/domain"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Load clip records from a JSON file",
	Long: `Loads a JSON array of clip records into the configured store.
Records with an existing ID replace the stored clip; records without one
get a generated ID. Use - to read from stdin.

Record fields: id, camera_id, image_ref, description, created_at (RFC 3339)
and optional metadata. The legacy Clip_URL and Clip_Description fields are
accepted in place of image_ref and description.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	var r io.Reader
	if args[0] == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
	}

	clips, err := decodeClips(r)
	if err != nil {
		return err
	}

	app, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	if app.Writer == nil {
		return fmt.Errorf("configured store does not accept writes")
	}
	if err := app.Writer.Save(cmd.Context(), clips); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	logger.Info("clips imported", "count", len(clips), "source", args[0])
	cmd.Printf("Imported %d clips\n", len(clips))
	return nil
}

type clipRecord struct {
	ID          string               `json:"id"`
	CameraID    string               `json:"camera_id"`
	ImageRef    string               `json:"image_ref"`
	Description string               `json:"description"`
	CreatedAt   *time.Time           `json:"created_at"`
	Metadata    *domain.ClipMetadata `json:"metadata"`

	LegacyURL         string `json:"Clip_URL"`
	LegacyDescription string `json:"Clip_Description"`
}

// decodeClips parses and validates a JSON array of clip records
func decodeClips(r io.Reader) ([]*domain.Clip, error) {
	var records []clipRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: clip file: %w", domain.ErrInvalidInput, err)
	}

	clips := make([]*domain.Clip, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, rec := range records {
		clip, err := rec.toClip()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %s", domain.ErrInvalidInput, i, err)
		}
		if seen[clip.ID] {
			return nil, fmt.Errorf("%w: record %d: duplicate id %s", domain.ErrInvalidInput, i, clip.ID)
		}
		seen[clip.ID] = true
		clips = append(clips, clip)
	}
	return clips, nil
}

func (rec clipRecord) toClip() (*domain.Clip, error) {
	clip := &domain.Clip{
		ID:          strings.TrimSpace(rec.ID),
		CameraID:    strings.TrimSpace(rec.CameraID),
		ImageRef:    rec.ImageRef,
		Description: strings.TrimSpace(rec.Description),
		Metadata:    rec.Metadata,
	}
	if clip.ImageRef == "" {
		clip.ImageRef = rec.LegacyURL
	}
	if clip.Description == "" {
		clip.Description = strings.TrimSpace(rec.LegacyDescription)
	}

	if clip.Description == "" {
		return nil, fmt.Errorf("description is required")
	}
	if rec.CreatedAt == nil || rec.CreatedAt.IsZero() {
		return nil, fmt.Errorf("created_at is required")
	}
	clip.CreatedAt = *rec.CreatedAt

	if clip.ID == "" {
		clip.ID = uuid.NewString()
	}
	return clip, nil
}
