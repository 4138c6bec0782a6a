// Package project serializes compositions to JSON documents and stores
// them through a storage backend.
package project

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/baileyeubanks/coedit/internal/storage"
	"github.com/baileyeubanks/coedit/internal/store"
	"github.com/baileyeubanks/coedit/internal/timeline"
)

// CurrentVersion is the document schema version this build writes.
const CurrentVersion = 1

var (
	ErrUnknownVersion = errors.New("unknown document version")
	ErrInvalidName    = errors.New("invalid project name")
)

// Document is the on-disk form of a composition.
type Document struct {
	Version  int                `json:"version"`
	Name     string             `json:"name"`
	Duration float64            `json:"duration"`
	Elements []timeline.Element `json:"elements"`
	Tracks   []timeline.Track   `json:"tracks"`
}

// Snapshot captures the store's current state as a document.
func Snapshot(st *store.Store, name string) Document {
	return Document{
		Version:  CurrentVersion,
		Name:     name,
		Duration: st.Duration(),
		Elements: st.Elements(),
		Tracks:   st.Tracks(),
	}
}

// Load replaces the store's state with the document's. History resets;
// loading is not an undoable edit.
func Load(st *store.Store, doc Document) {
	st.SetElements(doc.Elements)
	st.SetTracks(doc.Tracks)
	st.SetDuration(doc.Duration)
}

// Encode writes a document as indented JSON.
func Encode(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return nil
}

// Decode parses a document, rejecting versions this build does not
// understand.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("failed to decode document: %w", err)
	}
	if doc.Version != CurrentVersion {
		return Document{}, fmt.Errorf("%w: %d", ErrUnknownVersion, doc.Version)
	}
	return doc, nil
}

// Repository persists documents through a storage backend under
// "<name>.json" object names.
type Repository struct {
	store storage.Storage
}

func NewRepository(s storage.Storage) *Repository {
	return &Repository{store: s}
}

func objectName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, "/\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name + ".json", nil
}

// Save stores a document under its name.
func (r *Repository) Save(ctx context.Context, doc Document) error {
	obj, err := objectName(doc.Name)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return err
	}

	if _, err := r.store.Save(ctx, obj, &buf); err != nil {
		return fmt.Errorf("failed to save project %s: %w", doc.Name, err)
	}
	return nil
}

// Open loads a document by name.
func (r *Repository) Open(ctx context.Context, name string) (Document, error) {
	obj, err := objectName(name)
	if err != nil {
		return Document{}, err
	}

	rc, err := r.store.Open(ctx, obj)
	if err != nil {
		return Document{}, fmt.Errorf("failed to open project %s: %w", name, err)
	}
	defer rc.Close()

	return Decode(rc)
}

// Exists reports whether a project with the given name is stored.
func (r *Repository) Exists(ctx context.Context, name string) bool {
	obj, err := objectName(name)
	if err != nil {
		return false
	}
	return r.store.Exists(ctx, obj)
}

// List returns the names of all stored projects.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	objects, err := r.store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	var names []string
	for _, obj := range objects {
		if strings.HasSuffix(obj, ".json") {
			names = append(names, strings.TrimSuffix(obj, ".json"))
		}
	}
	return names, nil
}

// Delete removes a stored project.
func (r *Repository) Delete(ctx context.Context, name string) error {
	obj, err := objectName(name)
	if err != nil {
		return err
	}
	return r.store.Delete(ctx, obj)
}
