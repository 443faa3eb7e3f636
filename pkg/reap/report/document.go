package report

import "github.com/jamesainslie/reap/pkg/reap/types"

// document is the structure shared by the json and yaml encoders.
type document struct {
	Deleted []documentEntry `json:"deleted" yaml:"deleted"`
	Failed  []documentEntry `json:"failed,omitempty" yaml:"failed,omitempty"`
	Phases  []documentPhase `json:"phases" yaml:"phases"`
	Meta    documentMeta    `json:"meta" yaml:"meta"`
}

type documentEntry struct {
	Path      string `json:"path" yaml:"path"`
	Trigger   string `json:"trigger" yaml:"trigger"`
	Size      int64  `json:"size" yaml:"size"`
	SizeHuman string `json:"size_human" yaml:"size_human"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

type documentPhase struct {
	Name     string `json:"name" yaml:"name"`
	Deleted  int    `json:"deleted" yaml:"deleted"`
	Failed   int    `json:"failed" yaml:"failed"`
	Benign   int    `json:"already_gone" yaml:"already_gone"`
	Duration string `json:"duration" yaml:"duration"`
}

type documentMeta struct {
	Dirs        []string `json:"dirs" yaml:"dirs"`
	SearchRoot  string   `json:"search_root,omitempty" yaml:"search_root,omitempty"`
	Backend     string   `json:"backend,omitempty" yaml:"backend,omitempty"`
	Deleted     int      `json:"deleted" yaml:"deleted"`
	Failed      int      `json:"failed" yaml:"failed"`
	FreedBytes  int64    `json:"freed_bytes" yaml:"freed_bytes"`
	Duration    string   `json:"duration" yaml:"duration"`
	Interrupted bool     `json:"interrupted" yaml:"interrupted"`
}

func newDocument(r *Result) document {
	totals := r.Totals()
	doc := document{
		Deleted: make([]documentEntry, len(r.Deleted)),
		Phases:  make([]documentPhase, len(r.Phases)),
		Meta: documentMeta{
			Dirs:        r.Dirs,
			SearchRoot:  r.SearchRoot,
			Backend:     r.Backend,
			Deleted:     totals.Deleted,
			Failed:      totals.Failed,
			FreedBytes:  r.DeletedSize(),
			Duration:    r.Duration().String(),
			Interrupted: r.Interrupted,
		},
	}
	for i, e := range r.Deleted {
		doc.Deleted[i] = newDocumentEntry(e)
	}
	for _, e := range r.Failed {
		doc.Failed = append(doc.Failed, newDocumentEntry(e))
	}
	for i, p := range r.Phases {
		doc.Phases[i] = documentPhase{
			Name:     p.Name,
			Deleted:  p.Counters.Deleted,
			Failed:   p.Counters.Failed,
			Benign:   p.Counters.Benign,
			Duration: p.Duration.String(),
		}
	}
	return doc
}

func newDocumentEntry(e Entry) documentEntry {
	return documentEntry{
		Path:      e.Path,
		Trigger:   e.Trigger.String(),
		Size:      e.Size,
		SizeHuman: types.FormatSize(e.Size),
		Error:     e.Err,
	}
}
