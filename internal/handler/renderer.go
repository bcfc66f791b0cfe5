package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"
)

// Renderer manages template parsing and rendering with isolated template sets.
// Every page uses the "public" layout.
//
// Templates are organized as:
//   - layouts/public.html - base layout
//   - components/*.html - reusable components (shared by every page)
//   - partials/*.html - standalone fragments for htmx responses
//   - pages/*.html - pages, each defining "content"
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
	isDev     bool
	mu        sync.RWMutex

	fsys fs.FS
}

// RendererConfig holds configuration for the renderer.
type RendererConfig struct {
	// FS holds the templates. Ignored when TemplatesDir is set.
	FS fs.FS

	// TemplatesDir reads templates from disk instead, for development.
	TemplatesDir string

	Logger *slog.Logger

	// IsDev reloads templates before every render.
	IsDev bool
}

// NewRenderer creates a new template renderer.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	fsys := cfg.FS
	if cfg.TemplatesDir != "" {
		fsys = os.DirFS(cfg.TemplatesDir)
	}
	if fsys == nil {
		return nil, fmt.Errorf("renderer: no template source configured")
	}

	r := &Renderer{
		templates: make(map[string]*template.Template),
		logger:    cfg.Logger,
		isDev:     cfg.IsDev,
		fsys:      fsys,
	}

	if err := r.loadTemplates(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Renderer) loadTemplates() error {
	var componentFiles []string
	err := fs.WalkDir(r.fsys, "components", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".html") {
			componentFiles = append(componentFiles, p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk components dir: %w", err)
	}

	partialFiles, err := fs.Glob(r.fsys, "partials/*.html")
	if err != nil {
		return fmt.Errorf("failed to glob partials: %w", err)
	}

	// Each partial is also parsed on its own for htmx responses
	for _, partial := range partialFiles {
		partialTmpl, err := template.New("").Funcs(TemplateFuncs()).ParseFS(r.fsys, partial)
		if err != nil {
			return fmt.Errorf("failed to parse partial %s: %w", partial, err)
		}
		r.templates["partial/"+baseName(partial)] = partialTmpl
	}

	publicBaseTmpl, err := template.New("public").Funcs(TemplateFuncs()).ParseFS(r.fsys, "layouts/public.html")
	if err != nil {
		return fmt.Errorf("failed to parse public layout: %w", err)
	}

	if len(componentFiles) > 0 {
		publicBaseTmpl, err = publicBaseTmpl.ParseFS(r.fsys, componentFiles...)
		if err != nil {
			return fmt.Errorf("failed to parse components into public layout: %w", err)
		}
	}

	if len(partialFiles) > 0 {
		publicBaseTmpl, err = publicBaseTmpl.ParseFS(r.fsys, partialFiles...)
		if err != nil {
			return fmt.Errorf("failed to parse partials into public layout: %w", err)
		}
	}

	pages, err := fs.Glob(r.fsys, "pages/*.html")
	if err != nil {
		return fmt.Errorf("failed to glob pages: %w", err)
	}

	for _, page := range pages {
		pageTmpl, err := publicBaseTmpl.Clone()
		if err != nil {
			return fmt.Errorf("failed to clone public template for %s: %w", page, err)
		}

		pageTmpl, err = pageTmpl.ParseFS(r.fsys, page)
		if err != nil {
			return fmt.Errorf("failed to parse page %s: %w", page, err)
		}

		// Store as "public/home", "public/gallery", etc.
		r.templates["public/"+baseName(page)] = pageTmpl
	}

	r.logger.Info("templates loaded", "count", len(r.templates))
	return nil
}

func baseName(p string) string {
	name := path.Base(p)
	return strings.TrimSuffix(name, path.Ext(name))
}

// Reload reloads all templates. Useful for development.
func (r *Renderer) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.templates = make(map[string]*template.Template)
	return r.loadTemplates()
}

func (r *Renderer) lookup(name string) (*template.Template, error) {
	if r.isDev {
		if err := r.Reload(); err != nil {
			return nil, fmt.Errorf("template reload failed: %w", err)
		}
	}

	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	return tmpl, nil
}

// Render renders a template to an io.Writer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}) error {
	tmpl, err := r.lookup(name)
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, r.getBaseTemplateName(name), data)
}

// RenderHTML renders a template and returns the HTML as a string.
func (r *Renderer) RenderHTML(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderHTTP renders a template directly to an http.ResponseWriter.
func (r *Renderer) RenderHTTP(w http.ResponseWriter, name string, data interface{}) {
	r.RenderHTTPStatus(w, http.StatusOK, name, data)
}

// RenderHTTPStatus renders a template with the given status code. The page
// is rendered to a buffer first so a failure can still produce a 500.
func (r *Renderer) RenderHTTPStatus(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		r.logger.Error("template execution failed", "name", name, "error", err)
		http.Error(w, "Template execution failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// RenderPartial renders a partial template (for htmx responses).
// The partial file should contain {{define "name"}}...{{end}} where name matches the file name.
func (r *Renderer) RenderPartial(w http.ResponseWriter, name string, data interface{}) {
	tmpl, err := r.lookup("partial/" + name)
	if err != nil {
		r.logger.Error("partial template not found", "name", name, "error", err)
		http.Error(w, "Partial not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("partial execution failed", "name", name, "error", err)
		http.Error(w, "Partial execution failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// getBaseTemplateName determines which base template to execute.
func (r *Renderer) getBaseTemplateName(name string) string {
	if strings.HasPrefix(name, "partial/") {
		return path.Base(name)
	}
	return "public"
}

// ListTemplates returns a list of all loaded template names.
// Useful for debugging.
func (r *Renderer) ListTemplates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}
