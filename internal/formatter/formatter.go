// package formatter renders connection routes as text, Markdown, CSV and JSON,
// and writes them to disk for exports and batch runs.
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/sdos/internal/models"
	"github.com/desertthunder/sdos/internal/render"
	"github.com/desertthunder/sdos/internal/shared"
	"github.com/dustin/go-humanize"
)

// Format names an output rendition.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatMarkdown, FormatCSV, FormatJSON}

// ParseFormat accepts a format name or common alias ("txt", "md").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatCSV:
		return ".csv"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// Route is a found path plus whatever media was resolved for it.
//
// Cards is nil when media was not resolved.
type Route struct {
	Source  string
	Target  string
	Path    models.Path
	Seconds float64
	Cards   []render.Card
}

// NewRoute builds a route from a path and an optional render model.
func NewRoute(path models.Path, seconds float64, model *render.Model) Route {
	r := Route{Path: path, Seconds: seconds}
	if len(path) > 0 {
		r.Source = path[0].FromName
		r.Target = path[len(path)-1].ToName
	}
	if model != nil {
		r.Cards = model.Cards
	}
	return r
}

func (r Route) card(i int) (render.Card, bool) {
	if i < len(r.Cards) {
		return r.Cards[i], true
	}
	return render.Card{}, false
}

// links returns the outbound links for step i, deriving them when no card carries them.
func (r Route) links(i int) []render.Link {
	if c, ok := r.card(i); ok {
		return c.Links
	}
	return render.StepLinks(r.Path[i])
}

// Elapsed formats backend search time, e.g. "0.42s".
func Elapsed(seconds float64) string {
	return humanize.FtoaWithDigits(seconds, 2) + "s"
}

// Degrees describes the path length, e.g. "3 steps".
func Degrees(n int) string {
	if n == 1 {
		return "1 step"
	}
	return humanize.Comma(int64(n)) + " steps"
}

// ShareText is the message shared for a path: a question followed by the text rendition.
func ShareText(path models.Path) string {
	r := NewRoute(path, 0, nil)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "What connects %s with %s?\n\n", r.Source, r.Target)
	for i, step := range path {
		writeTextStep(&buf, i, step)
	}
	return strings.TrimRight(buf.String(), "\n")
}

// ToText converts a route to plain text.
func ToText(r Route) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s → %s\n", r.Source, r.Target))
	buf.WriteString(Degrees(len(r.Path)))
	if r.Seconds > 0 {
		buf.WriteString(fmt.Sprintf(", found in %s", Elapsed(r.Seconds)))
	}
	buf.WriteString("\n\n")

	for i, step := range r.Path {
		writeTextStep(&buf, i, step)
		if c, ok := r.card(i); ok && c.Preview != "" {
			buf.WriteString(fmt.Sprintf("   Preview: %s\n", c.Preview))
		}
	}

	return buf.Bytes()
}

func writeTextStep(buf *bytes.Buffer, i int, step models.ConnectionStep) {
	buf.WriteString(fmt.Sprintf("%d. %s → %s\n", i+1, step.FromName, step.ToName))
	if step.HasTrack() {
		buf.WriteString(fmt.Sprintf("   %q\n", step.Track))
	}
}

// ToMarkdown converts a route to Markdown with cover images and service links.
//
// coverFiles optionally maps a step index to a local image file that replaces the cover URL.
func ToMarkdown(r Route, coverFiles map[int]string) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s → %s\n\n", r.Source, r.Target))
	buf.WriteString(fmt.Sprintf("**Degrees**: %d\n", len(r.Path)))
	if r.Seconds > 0 {
		buf.WriteString(fmt.Sprintf("**Search time**: %s\n", Elapsed(r.Seconds)))
	}
	buf.WriteString("\n## Steps\n\n")

	for i, step := range r.Path {
		buf.WriteString(fmt.Sprintf("### %d. %s → %s\n\n", i+1, step.FromName, step.ToName))

		cover := coverFiles[i]
		if c, ok := r.card(i); ok && cover == "" {
			cover = c.Cover
		}
		if cover != "" {
			buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", cover))
		}

		if !step.HasTrack() {
			continue
		}
		buf.WriteString(fmt.Sprintf("**Track**: %s\n\n", step.Track))
		if c, ok := r.card(i); ok && c.Preview != "" {
			buf.WriteString(fmt.Sprintf("[Preview](%s)\n\n", c.Preview))
		}

		links := r.links(i)
		parts := make([]string, 0, len(links))
		for _, l := range links {
			parts = append(parts, fmt.Sprintf("[%s](%s)", l.Service, l.URL))
		}
		if len(parts) > 0 {
			buf.WriteString(strings.Join(parts, " · ") + "\n\n")
		}
	}

	return buf.Bytes()
}

// ToCSV converts a route to CSV with one row per step.
func ToCSV(r Route) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Step", "From ID", "From", "To ID", "To", "Track", "To MBID", "Cover", "Preview"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, step := range r.Path {
		c, _ := r.card(i)
		record := []string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(step.FromID, 10),
			step.FromName,
			strconv.FormatInt(step.ToID, 10),
			step.ToName,
			step.Track,
			step.ToMBID,
			c.Cover,
			c.Preview,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

type jsonStep struct {
	models.ConnectionStep
	Cover   string            `json:"cover,omitempty"`
	Preview string            `json:"preview,omitempty"`
	Links   map[string]string `json:"links,omitempty"`
}

type jsonRoute struct {
	Source  string     `json:"source"`
	Target  string     `json:"target"`
	Degrees int        `json:"degrees"`
	Seconds float64    `json:"seconds,omitempty"`
	Steps   []jsonStep `json:"steps"`
}

// ToJSON converts a route to indented JSON.
func ToJSON(r Route) ([]byte, error) {
	out := jsonRoute{Source: r.Source, Target: r.Target, Degrees: len(r.Path), Seconds: r.Seconds, Steps: make([]jsonStep, len(r.Path))}
	for i, step := range r.Path {
		js := jsonStep{ConnectionStep: step}
		if c, ok := r.card(i); ok {
			js.Cover, js.Preview = c.Cover, c.Preview
		}
		if links := r.links(i); len(links) > 0 {
			js.Links = make(map[string]string, len(links))
			for _, l := range links {
				js.Links[l.Service] = l.URL
			}
		}
		out.Steps[i] = js
	}
	return marshalJSON(out)
}

// Render converts r to format f.
func Render(r Route, f Format) ([]byte, error) {
	switch f {
	case FormatMarkdown:
		return ToMarkdown(r, nil), nil
	case FormatCSV:
		return ToCSV(r)
	case FormatJSON:
		return ToJSON(r)
	case FormatText, "":
		return ToText(r), nil
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, f)
}

// WriteRoute renders r as f and writes it to path.
func WriteRoute(r Route, f Format, path string) error {
	data, err := Render(r, f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s file: %w", f, err)
	}
	return nil
}

// WriteJSON writes v to path as indented JSON.
func WriteJSON(v any, path string) error {
	data, err := marshalJSON(v)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	return nil
}

func marshalJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty URL provided", shared.ErrInvalidArgument)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: failed to download image: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// BundleResult contains information about files created by WriteMarkdownBundle
type BundleResult struct {
	Directory string
	Files     []string
	Covers    int
	Warnings  []error
}

// WriteMarkdownBundle writes a route to {dir}/README.md and downloads each card's
// cover next to it as step_{n}.jpg. Failed downloads fall back to the cover URL
// and are reported in Warnings.
func WriteMarkdownBundle(r Route, dir string, client *http.Client) (*BundleResult, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: output directory is required", shared.ErrMissingArgument)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &BundleResult{Directory: dir}
	coverFiles := make(map[int]string)
	for i, c := range r.Cards {
		if c.Cover == "" {
			continue
		}
		data, err := DownloadImage(client, c.Cover)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Errorf("step %d cover: %w", i+1, err))
			continue
		}
		name := fmt.Sprintf("step_%d.jpg", i+1)
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, data, 0644); err != nil {
			result.Warnings = append(result.Warnings, fmt.Errorf("step %d cover: %w", i+1, err))
			continue
		}
		coverFiles[i] = name
		result.Files = append(result.Files, p)
		result.Covers++
	}

	mdFile := filepath.Join(dir, "README.md")
	if err := os.WriteFile(mdFile, ToMarkdown(r, coverFiles), 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}
	result.Files = append(result.Files, mdFile)

	return result, nil
}
