// Package artifacts downloads generated code and deploys it to database links.
package artifacts

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/output"
	"github.com/dvmodel/dvctl/internal/platform"
)

// Downloader fetches a generation's zip archive.
type Downloader interface {
	DownloadFiles(ctx context.Context, generationID int64, w io.Writer) error
}

// Deployer deploys generations to a database link.
type Deployer interface {
	DatabaseLink(ctx context.Context, name string) (platform.DatabaseLink, error)
	Deploy(ctx context.Context, generationID, linkID int64) error
}

// Downloaded reports where a generation's files were written.
type Downloaded struct {
	Generation platform.Generation `json:"generation" yaml:"generation"`
	Dir        string              `json:"dir" yaml:"dir"`
	Files      int                 `json:"files" yaml:"files"`
}

// Deployed reports the deploy result for one generation.
type Deployed struct {
	Generation platform.Generation `json:"generation" yaml:"generation"`
	Deployed   bool                `json:"deployed" yaml:"deployed"`
	Reason     string              `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Download fetches every generation's archive and extracts it into its own
// directory under dir. The archive itself is not kept.
func Download(ctx context.Context, d Downloader, generations []platform.Generation, dir string) ([]Downloaded, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	results := make([]Downloaded, 0, len(generations))
	used := make(map[string]bool, len(generations))
	for _, g := range generations {
		var buf bytes.Buffer
		if err := d.DownloadFiles(ctx, g.ID, &buf); err != nil {
			return results, fmt.Errorf("downloading %s: %w", g, err)
		}

		name := TargetName(g)
		if used[name] {
			name = fmt.Sprintf("%s_%d", name, g.ID)
		}
		used[name] = true

		target := filepath.Join(dir, name)
		n, err := Extract(buf.Bytes(), target)
		if err != nil {
			return results, fmt.Errorf("extracting %s: %w", g, err)
		}
		output.Debug("downloaded generation", "generation", g, "dir", target, "files", n)
		results = append(results, Downloaded{Generation: g, Dir: target, Files: n})
	}
	return results, nil
}

// TargetName is the directory name a generation is extracted into: the
// archive file name without ".zip", or "<kind>_<id>" when the platform reports
// no usable file name.
func TargetName(g platform.Generation) string {
	name := filepath.Base(filepath.FromSlash(g.FileName))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	switch name {
	case "", ".", "..", string(filepath.Separator):
		return fmt.Sprintf("%s_%d", strings.ToLower(string(g.Kind)), g.ID)
	}
	return name
}

// Extract unpacks a zip archive into dir and returns the number of files
// written. Entries resolving outside dir are rejected.
func Extract(data []byte, dir string) (int, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, oerrors.Wrap(oerrors.ErrValidation, fmt.Sprintf("reading archive: %v", err))
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return 0, err
	}

	files := 0
	for _, f := range zr.File {
		path := filepath.Join(root, filepath.FromSlash(f.Name))
		if path != root && !strings.HasPrefix(path, root+string(os.PathSeparator)) {
			return files, oerrors.NewValidationError(
				fmt.Sprintf("archive entry %q escapes the target directory", f.Name),
				dir, f.Name, "")
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0o755); err != nil {
				return files, err
			}
			continue
		}
		if err := writeEntry(f, path); err != nil {
			return files, err
		}
		files++
	}
	return files, nil
}

func writeEntry(f *zip.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return out.Close()
}

// Deploy looks up the database link and deploys every generation that
// supports automatic deployment. The others are reported as not deployed.
func Deploy(ctx context.Context, d Deployer, generations []platform.Generation, linkName string) ([]Deployed, error) {
	link, err := d.DatabaseLink(ctx, linkName)
	if err != nil {
		return nil, fmt.Errorf("looking up database link %q: %w", linkName, err)
	}

	log := output.ScopeLogger("link", link.Name)
	results := make([]Deployed, 0, len(generations))
	for _, g := range generations {
		if !g.CanAutoDeploy {
			log.Info("generation cannot be deployed automatically", "generation", g)
			results = append(results, Deployed{Generation: g, Reason: "not auto-deployable"})
			continue
		}
		if err := d.Deploy(ctx, g.ID, link.ID); err != nil {
			return results, fmt.Errorf("deploying %s to %s: %w", g, link.Name, err)
		}
		log.Debug("deployed generation", "generation", g)
		results = append(results, Deployed{Generation: g, Deployed: true})
	}
	return results, nil
}
