package domain

import (
	"encoding/json"
	"sort"
	"sync"
)

// Document is the container for one piece of text and every view computed over it.
//
// The structural fields (Text and Tokenization) are set once by a tokenization builder
// and treated as read-only afterwards. Views are added or replaced wholesale by the
// executor; a Document is safe for concurrent readers while a single writer holds the
// per-document guard.
type Document struct {
	CorpusID     string
	DocID        string
	Text         string
	Tokenization Tokenization

	mu         sync.RWMutex
	views      map[string]*View
	generation uint64
}

// NewDocument creates a document with no views.
func NewDocument(corpusID, docID, text string, tok Tokenization) *Document {
	return &Document{
		CorpusID:     corpusID,
		DocID:        docID,
		Text:         text,
		Tokenization: tok,
		views:        make(map[string]*View),
	}
}

// Key identifies the document across stores and locks.
func (d *Document) Key() string {
	return DocumentKey(d.CorpusID, d.DocID)
}

// DocumentKey builds the canonical "corpus/doc" key.
func DocumentKey(corpusID, docID string) string {
	return corpusID + "/" + docID
}

// Tokens is a shortcut for the structural token list.
func (d *Document) Tokens() []string {
	return d.Tokenization.Tokens
}

// View returns the view with the given name.
// The returned value must be treated as immutable; replace it with PutView instead.
func (d *Document) View(name string) (*View, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.views[name]
	return v, ok
}

// HasView reports whether a view with the given name is present.
func (d *Document) HasView(name string) bool {
	_, ok := d.View(name)
	return ok
}

// ViewNames returns the names of all present views, sorted.
func (d *Document) ViewNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.views))
	for name := range d.views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Views returns all present views sorted by name.
func (d *Document) Views() []*View {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*View, 0, len(d.views))
	for _, v := range d.views {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PutView stores v under v.Name, replacing any previous view of that name.
// It stamps v with the next document generation and returns it.
func (d *Document) PutView(v *View) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.views == nil {
		d.views = make(map[string]*View)
	}
	d.generation++
	v.Generation = d.generation
	d.views[v.Name] = v
	return v.Generation
}

// Generation returns the last generation handed out by PutView.
func (d *Document) Generation() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.generation
}

// Generations snapshots the present views as name -> generation.
func (d *Document) Generations() ViewSet {
	d.mu.RLock()
	defer d.mu.RUnlock()
	set := make(ViewSet, len(d.views))
	for name, v := range d.views {
		set[name] = v.Generation
	}
	return set
}

// Clone returns a copy with its own view map. View values are shared since
// they are never mutated after being stored.
func (d *Document) Clone() *Document {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c := &Document{
		CorpusID:     d.CorpusID,
		DocID:        d.DocID,
		Text:         d.Text,
		Tokenization: d.Tokenization,
		views:        make(map[string]*View, len(d.views)),
		generation:   d.generation,
	}
	for name, v := range d.views {
		c.views[name] = v
	}
	return c
}

type documentJSON struct {
	CorpusID     string           `json:"corpus_id"`
	DocID        string           `json:"doc_id"`
	Text         string           `json:"text"`
	Tokenization Tokenization     `json:"tokenization"`
	Generation   uint64           `json:"generation"`
	Views        map[string]*View `json:"views"`
}

// MarshalJSON implements json.Marshaler.
func (d *Document) MarshalJSON() ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return json.Marshal(documentJSON{
		CorpusID:     d.CorpusID,
		DocID:        d.DocID,
		Text:         d.Text,
		Tokenization: d.Tokenization,
		Generation:   d.generation,
		Views:        d.views,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
// View payloads come back as generic JSON values.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw documentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.CorpusID = raw.CorpusID
	d.DocID = raw.DocID
	d.Text = raw.Text
	d.Tokenization = raw.Tokenization
	d.generation = raw.Generation
	d.views = make(map[string]*View, len(raw.Views))
	for name, v := range raw.Views {
		if v == nil {
			continue
		}
		v.Name = name
		d.views[name] = v
	}
	return nil
}
