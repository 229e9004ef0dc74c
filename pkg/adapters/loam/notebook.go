package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/panmirror/pkg/runner"
)

// markdownExts are the note extensions fed to pandoc. Other documents in the
// repository (JSON, YAML) are ignored.
var markdownExts = map[string]bool{".md": true, ".markdown": true}

// Notebook reads a directory of markdown notes through Loam.
type Notebook struct {
	Repo *loam.TypedRepository[NoteMetadata]
}

// New creates a notebook over an existing typed repository.
func New(repo *loam.TypedRepository[NoteMetadata]) *Notebook {
	return &Notebook{Repo: repo}
}

// Open initializes a read-only Loam repository at path.
func Open(path string) (*Notebook, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	// Strict mode keeps front matter numbers as json.Number; read-only mode keeps
	// Loam from creating its sandbox.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
		loam.WithVersioning(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[NoteMetadata](repo)), nil
}

// Inputs lists every markdown note as a batch input, sorted by name.
// Notes with `skip: true` are left out.
func (n *Notebook) Inputs(ctx context.Context) ([]runner.Input, error) {
	docs, err := n.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	inputs := make([]runner.Input, 0, len(docs))
	for _, doc := range docs {
		if !isMarkdown(doc.ID) || doc.Data.Skip {
			continue
		}
		name := noteName(doc.ID, doc.Data)
		if existing, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: note '%s' is defined in both '%s' and '%s'", name, existing, doc.ID)
		}
		seen[name] = doc.ID
		inputs = append(inputs, runner.Input{
			Name:     name,
			Format:   doc.Data.Format,
			Markdown: doc.Content,
		})
	}

	sort.Slice(inputs, func(i, j int) bool { return inputs[i].Name < inputs[j].Name })
	return inputs, nil
}

// Input loads a single note by id.
func (n *Notebook) Input(ctx context.Context, id string) (runner.Input, error) {
	doc, err := n.Repo.Get(ctx, id)
	if err != nil {
		return runner.Input{}, fmt.Errorf("loam get failed for %s: %w", id, err)
	}
	return runner.Input{
		Name:     noteName(doc.ID, doc.Data),
		Format:   doc.Data.Format,
		Markdown: doc.Content,
	}, nil
}

// Watch signals the id of every note that changes on disk.
func (n *Notebook) Watch(ctx context.Context) (<-chan string, error) {
	events, err := n.Repo.Watch(ctx, "**/*.{md,markdown}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- evt.ID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

func isMarkdown(id string) bool {
	ext := strings.ToLower(filepath.Ext(id))
	return ext == "" || markdownExts[ext]
}

func noteName(docID string, meta NoteMetadata) string {
	raw := meta.ID
	if raw == "" {
		raw = docID
	}
	return trimExtension(raw)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
