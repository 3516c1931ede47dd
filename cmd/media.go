package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/podbridge/podbridge/internal/shared"
	"github.com/urfave/cli/v3"
)

// MediaUpload uploads one podcast asset (artwork, intro or outro) for
// an agent.
func (r *Runner) MediaUpload(ctx context.Context, cmd *cli.Command, asset string) error {
	id := cmd.StringArg("id")
	file := cmd.StringArg("file")

	if id == "" {
		return fmt.Errorf("%w: agent ID is required", shared.ErrMissingArgument)
	}
	if file == "" {
		return fmt.Errorf("%w: file path is required", shared.ErrMissingArgument)
	}

	data, err := shared.VerifyAndReadFile(file)
	if err != nil {
		return err
	}

	filename := filepath.Base(file)
	r.logger.Infof("uploading %v %v (%d bytes)", asset, filename, len(data))

	switch asset {
	case "artwork":
		url, err := r.media.UploadArtwork(ctx, id, filename, data)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		r.writePlain("✓ Artwork uploaded\n")
		r.writePlain("  URL: %s\n", url)

	case "intro":
		url, err := r.media.UploadIntro(ctx, id, filename, data)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		r.writePlain("✓ Intro audio uploaded\n")
		r.writePlain("  URL: %s\n", url)

	case "outro":
		url, err := r.media.UploadOutro(ctx, id, filename, data)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		r.writePlain("✓ Outro audio uploaded\n")
		r.writePlain("  URL: %s\n", url)

	default:
		return fmt.Errorf("%w: unknown asset %q", shared.ErrInvalidArgument, asset)
	}

	return nil
}

// MediaRemove removes one podcast asset from an agent.
func (r *Runner) MediaRemove(ctx context.Context, cmd *cli.Command, asset string) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: agent ID is required", shared.ErrMissingArgument)
	}

	var err error
	switch asset {
	case "artwork":
		err = r.media.DeleteArtwork(ctx, id)
	case "intro":
		err = r.media.DeleteIntro(ctx, id)
	case "outro":
		err = r.media.DeleteOutro(ctx, id)
	default:
		return fmt.Errorf("%w: unknown asset %q", shared.ErrInvalidArgument, asset)
	}

	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlain("✓ %s removed\n", asset)
	return nil
}
