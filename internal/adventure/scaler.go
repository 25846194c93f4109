package adventure

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	apperrors "github.com/adventure-scaler/scaler/internal/errors"
	"github.com/adventure-scaler/scaler/internal/models"
)

// Options controls how scenes are scaled and written back.
type Options struct {
	Scale  models.ScaleOptions
	Encode models.EncodeOptions
}

// DefaultOptions returns the options matching the historical output format.
func DefaultOptions() Options {
	return Options{Encode: models.DefaultEncodeOptions()}
}

// Result describes a completed run.
type Result struct {
	Ratio       string                `json:"ratio"`
	Scenes      []models.SceneSummary `json:"scenes"`
	PassThrough int                   `json:"passThrough"`
}

// Scaler rescales adventure archives.
type Scaler struct {
	opts Options
	log  logrus.FieldLogger
}

// NewScaler creates a scaler. A nil logger discards output.
func NewScaler(opts Options, log logrus.FieldLogger) *Scaler {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Scaler{opts: opts, log: log}
}

// PerformScaling writes a scaled copy of the archive at inputPath to
// outputPath. The input is first copied verbatim to outputPath; the scaled
// archive is built in a temporary file beside it and renamed over the copy
// only when complete, so a failed run leaves the unscaled copy in place.
func (s *Scaler) PerformScaling(ctx context.Context, inputPath, outputPath string, ratio decimal.Decimal) (*Result, error) {
	if err := ValidateRatio(ratio); err != nil {
		return nil, err
	}

	outPath, err := filepath.Abs(outputPath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeOutputWrite, "resolve output path", err).WithEntry(outputPath)
	}

	log := s.log.WithFields(logrus.Fields{
		"input":  inputPath,
		"output": outPath,
		"scale":  ratio.String(),
	})
	log.Info("scaling adventure")

	in, err := os.Open(inputPath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeArchiveFormat, "open input archive", err).WithEntry(inputPath)
	}
	defer in.Close()

	inInfo, err := in.Stat()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeArchiveFormat, "stat input archive", err).WithEntry(inputPath)
	}

	if err := safetyCopy(in, inInfo, outPath); err != nil {
		return nil, err
	}

	tmpPath := filepath.Join(filepath.Dir(outPath), fmt.Sprintf(".%s.%s.tmp", filepath.Base(outPath), uuid.New().String()))
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeOutputWrite, "create temporary output", err).WithEntry(outPath)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	result, err := s.ScaleArchive(ctx, in, inInfo.Size(), tmp, ratio)
	if err != nil {
		log.WithError(err).Error("scaling failed, output left as unscaled copy")
		return nil, err
	}

	if err := tmp.Close(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeOutputWrite, "close temporary output", err).WithEntry(outPath)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		committed = true
		return nil, apperrors.Wrap(apperrors.CodeOutputWrite, "replace output archive", err).WithEntry(outPath)
	}
	committed = true

	log.WithFields(logrus.Fields{
		"scenes":      len(result.Scenes),
		"passThrough": result.PassThrough,
	}).Info("adventure scaled")
	return result, nil
}

// safetyCopy copies the input byte-for-byte to outPath unless both name the
// same file.
func safetyCopy(in *os.File, inInfo os.FileInfo, outPath string) error {
	if outInfo, err := os.Stat(outPath); err == nil && os.SameFile(inInfo, outInfo) {
		return nil
	}

	out, err := os.Create(outPath)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeOutputWrite, "create output archive", err).WithEntry(outPath)
	}
	if _, err := io.Copy(out, io.NewSectionReader(in, 0, inInfo.Size())); err != nil {
		out.Close()
		return apperrors.Wrap(apperrors.CodeOutputWrite, "copy input to output", err).WithEntry(outPath)
	}
	if err := out.Close(); err != nil {
		return apperrors.Wrap(apperrors.CodeOutputWrite, "close output archive", err).WithEntry(outPath)
	}
	return nil
}

// ScaleArchive reads the archive in r, scales every scene entry by ratio and
// writes the resulting archive to w. Entries that are not scenes are copied
// without recompression and come first, in input order; scenes follow in
// input order.
func (s *Scaler) ScaleArchive(ctx context.Context, r io.ReaderAt, size int64, w io.Writer, ratio decimal.Decimal) (*Result, error) {
	if err := ValidateRatio(ratio); err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeArchiveFormat, "read input archive", err)
	}

	zw := zip.NewWriter(w)
	bundle := NewBundle()
	passThrough := 0

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeCancelled, "scaling interrupted", err).WithEntry(f.Name)
		}

		if !IsSceneEntry(f.Name) {
			if err := zw.Copy(f); err != nil {
				return nil, apperrors.Wrap(apperrors.CodeOutputWrite, "copy archive entry", err).WithEntry(f.Name)
			}
			passThrough++
			continue
		}

		s.log.WithField("entry", f.Name).Debug("processing scene")
		scene, err := readScene(f)
		if err != nil {
			return nil, err
		}
		bundle.Add(f.FileHeader, scene)
	}

	bundle.ScaleAll(ratio, s.opts.Scale)

	err = bundle.each(func(header zip.FileHeader, scene *models.Scene) error {
		data, err := scene.Encode(s.opts.Encode)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeOutputWrite, "encode scene", err).WithEntry(header.Name)
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     header.Name,
			Comment:  header.Comment,
			Method:   header.Method,
			Modified: header.Modified,
		})
		if err != nil {
			return apperrors.Wrap(apperrors.CodeOutputWrite, "create scene entry", err).WithEntry(header.Name)
		}
		if _, err := fw.Write(data); err != nil {
			return apperrors.Wrap(apperrors.CodeOutputWrite, "write scene entry", err).WithEntry(header.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeOutputWrite, "finish output archive", err)
	}

	return &Result{
		Ratio:       ratio.String(),
		Scenes:      bundle.Summaries(),
		PassThrough: passThrough,
	}, nil
}

// Inspect parses every scene entry of the archive without modifying it.
func Inspect(ctx context.Context, r io.ReaderAt, size int64) ([]models.SceneSummary, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeArchiveFormat, "read input archive", err)
	}

	bundle := NewBundle()
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeCancelled, "inspection interrupted", err).WithEntry(f.Name)
		}
		if !IsSceneEntry(f.Name) {
			continue
		}
		scene, err := readScene(f)
		if err != nil {
			return nil, err
		}
		bundle.Add(f.FileHeader, scene)
	}
	return bundle.Summaries(), nil
}

func readScene(f *zip.File) (*models.Scene, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeArchiveFormat, "open archive entry", err).WithEntry(f.Name)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeArchiveFormat, "read archive entry", err).WithEntry(f.Name)
	}

	scene, err := models.ParseScene(data)
	if err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr.WithEntry(f.Name)
		}
		return nil, apperrors.Wrap(apperrors.CodeMalformedScene, "parse scene", err).WithEntry(f.Name)
	}
	return scene, nil
}
