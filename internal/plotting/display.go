package plotting

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/edakit/internal/utils"
	"github.com/google/uuid"
	"gonum.org/v1/plot/vg"
)

// Figure is anything that can encode itself as an image of the given size.
// *plot.Plot satisfies it.
type Figure interface {
	WriterTo(w, h vg.Length, format string) (io.WriterTo, error)
}

// Chart is a figure ready to be shown.
type Chart struct {
	Kind   string
	Title  string
	Figure Figure
	// Width and Height override the display defaults when non-zero.
	Width, Height vg.Length
}

// Shown records a chart handed to a display.
type Shown struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Path      string    `json:"path,omitempty"`
	Format    string    `json:"format"`
	Bytes     int       `json:"bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// Display is the surface charts are shown on.
type Display interface {
	Show(c Chart) (Shown, error)
}

// Default figure size, matching an 8x6 inch canvas.
const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

// ManifestName is the file FileDisplay records its charts in.
const ManifestName = "manifest.json"

// FileDisplay writes each chart as an image file under Dir and keeps a
// manifest of everything it has written.
type FileDisplay struct {
	Dir    string
	Format string // png, svg or pdf
	Width  vg.Length
	Height vg.Length

	manifest []Shown
}

// NewFileDisplay prepares dir and loads any manifest already there.
func NewFileDisplay(dir, format string, w, h vg.Length) (*FileDisplay, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		format = "png"
	}
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	d := &FileDisplay{Dir: dir, Format: format, Width: w, Height: h}
	b, err := os.ReadFile(filepath.Join(dir, ManifestName))
	switch {
	case err == nil:
		if err := json.Unmarshal(b, &d.manifest); err != nil {
			return nil, fmt.Errorf("parse manifest: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return d, nil
}

// Show encodes the chart to <slug>-<id>.<format> and updates the manifest.
func (d *FileDisplay) Show(c Chart) (Shown, error) {
	var buf bytes.Buffer
	s, err := encode(&buf, c, d.Format, d.Width, d.Height)
	if err != nil {
		return Shown{}, err
	}
	s.Path = filepath.Join(d.Dir, fmt.Sprintf("%s-%s.%s", utils.Slug(c.Title), s.ID[:8], d.Format))
	if err := os.WriteFile(s.Path, buf.Bytes(), 0o644); err != nil {
		return Shown{}, fmt.Errorf("write chart: %w", err)
	}
	d.manifest = append(d.manifest, s)
	data, err := utils.PrettyJSON(d.manifest)
	if err != nil {
		return Shown{}, err
	}
	if err := utils.SafeWriteFile(filepath.Join(d.Dir, ManifestName), data); err != nil {
		return Shown{}, fmt.Errorf("write manifest: %w", err)
	}
	slog.Info("chart written", "title", c.Title, "path", s.Path)
	return s, nil
}

// Manifest returns every chart recorded in the display directory.
func (d *FileDisplay) Manifest() []Shown { return append([]Shown(nil), d.manifest...) }

// Rendered is a chart kept in memory.
type Rendered struct {
	Shown
	Data []byte
}

// MemoryDisplay encodes charts into memory instead of files.
type MemoryDisplay struct {
	Format string
	Charts []Rendered
}

// NewMemoryDisplay returns a display encoding to format (png when empty).
func NewMemoryDisplay(format string) *MemoryDisplay {
	if format == "" {
		format = "png"
	}
	return &MemoryDisplay{Format: format}
}

func (d *MemoryDisplay) Show(c Chart) (Shown, error) {
	var buf bytes.Buffer
	s, err := encode(&buf, c, d.Format, DefaultWidth, DefaultHeight)
	if err != nil {
		return Shown{}, err
	}
	d.Charts = append(d.Charts, Rendered{Shown: s, Data: buf.Bytes()})
	slog.Debug("chart rendered", "title", c.Title, "bytes", s.Bytes)
	return s, nil
}

// Titles lists the titles of the rendered charts in order.
func (d *MemoryDisplay) Titles() []string {
	out := make([]string, len(d.Charts))
	for i, c := range d.Charts {
		out[i] = c.Title
	}
	return out
}

func encode(w io.Writer, c Chart, format string, defW, defH vg.Length) (Shown, error) {
	if c.Figure == nil {
		return Shown{}, errors.New("chart has no figure")
	}
	width, height := c.Width, c.Height
	if width == 0 {
		width = defW
	}
	if height == 0 {
		height = defH
	}
	wt, err := c.Figure.WriterTo(width, height, format)
	if err != nil {
		return Shown{}, fmt.Errorf("render %q: %w", c.Title, err)
	}
	n, err := wt.WriteTo(w)
	if err != nil {
		return Shown{}, fmt.Errorf("encode %q: %w", c.Title, err)
	}
	return Shown{
		ID:        uuid.NewString(),
		Kind:      c.Kind,
		Title:     c.Title,
		Format:    format,
		Bytes:     int(n),
		CreatedAt: time.Now(),
	}, nil
}
