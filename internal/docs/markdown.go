package docs

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"

	"waveify.dev/web/internal/importer"
)

//go:embed content
var embedded embed.FS

// ContentFS returns the embedded markdown tree, rooted so that "<slug>.md" resolves.
func ContentFS() fs.FS {
	sub, err := fs.Sub(embedded, "content")
	if err != nil {
		panic(err)
	}
	return sub
}

type frontMatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Renderer converts markdown to sanitized HTML.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewRenderer returns a GFM renderer with heading ids and a UGC sanitizing policy.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		policy: newDocsHTMLPolicy(),
	}
}

func newDocsHTMLPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+-]+$`)).OnElements("code")
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	policy.RequireNoFollowOnLinks(false)
	return policy
}

// Render converts src to sanitized HTML and extracts its outline.
func (r *Renderer) Render(src []byte) (template.HTML, []Heading, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return "", nil, fmt.Errorf("docs: render markdown: %w", err)
	}
	clean := r.policy.Sanitize(buf.String())
	headings, err := Outline(clean)
	if err != nil {
		return "", nil, err
	}
	return template.HTML(clean), headings, nil
}

// MarkdownEntries builds one entry per "*.md" file in fsys. The slug is the path without
// the extension. Front matter is read eagerly for metadata; the body is loaded and
// rendered on demand through the importer policy.
func MarkdownEntries(fsys fs.FS, policy importer.Policy) ([]Entry, error) {
	renderer := NewRenderer()
	var entries []Entry
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(name) != ".md" {
			return nil
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		slug := strings.TrimSuffix(name, ".md")
		front, _, err := parseDocument(data)
		if err != nil {
			return fmt.Errorf("docs: %s: %w", name, err)
		}
		entries = append(entries, Entry{
			Slug:        slug,
			Title:       firstNonEmpty(front.Title, prettifySlug(path.Base(slug))),
			Description: front.Description,
			Load:        markdownLoader(fsys, name, renderer, policy),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func markdownLoader(fsys fs.FS, name string, renderer *Renderer, policy importer.Policy) Loader {
	return func(ctx context.Context) (Descriptor, error) {
		return importer.Do(ctx, policy, func(context.Context) (Descriptor, error) {
			data, err := fs.ReadFile(fsys, name)
			if err != nil {
				return Descriptor{}, err
			}
			// Only reads are transient; a document that fails to parse fails every time.
			front, body, err := parseDocument(data)
			if err != nil {
				return Descriptor{}, importer.Permanent(err)
			}
			content, headings, err := renderer.Render([]byte(body))
			if err != nil {
				return Descriptor{}, importer.Permanent(err)
			}
			return Descriptor{
				Title:       front.Title,
				Description: front.Description,
				Content:     content,
				Headings:    headings,
			}, nil
		})
	}
}

// NewDefaultRegistry registers the embedded docs.
func NewDefaultRegistry(policy importer.Policy) (*Registry, error) {
	entries, err := MarkdownEntries(ContentFS(), policy)
	if err != nil {
		return nil, err
	}
	return NewRegistry(entries...)
}

func parseDocument(data []byte) (frontMatter, string, error) {
	fm, body := splitFrontMatter(string(data))
	front := frontMatter{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return frontMatter{}, "", fmt.Errorf("parse front matter: %w", err)
		}
	}
	front.Title = strings.TrimSpace(front.Title)
	front.Description = strings.TrimSpace(front.Description)
	return front, body, nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func prettifySlug(slug string) string {
	parts := strings.Split(strings.TrimSpace(slug), "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
