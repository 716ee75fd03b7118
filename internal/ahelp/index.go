package ahelp

// IndexEntry is one row of an aggregate index page.
type IndexEntry struct {
	Name     string
	Synopsis string
}

// IndexPage describes one of the corpus-wide summary documents produced at
// the end of a batch run.
type IndexPage struct {
	Key      string
	Title    string
	Synopsis string
	Context  string
	Pkg      string
	Entries  []IndexEntry
}

// RenderIndex serializes an aggregate index page: a single TABLE of entity
// name and synopsis. Same determinism contract as Render.
func (r Renderer) RenderIndex(page IndexPage) []byte {
	w := &writer{}
	w.raw(r.DTD.Doctype())
	w.raw("\n")
	w.open(r.DTD.Root())
	w.open("ENTRY",
		attr{"pkg", page.Pkg},
		attr{"key", page.Key},
		attr{"refkeywords", ""},
		attr{"seealsogroups", ""},
		attr{"displayseealsogroups", ""},
		attr{"context", page.Context},
	)
	w.element("SYNOPSIS", page.Synopsis)
	w.open("SYNTAX")
	w.element("LINE", page.Key)
	w.close("SYNTAX")

	w.open("DESC")
	w.element("PARA", page.Title)
	w.open("TABLE")
	w.open("ROW")
	w.element("DATA", "Name")
	w.element("DATA", "Summary")
	w.close("ROW")
	for _, e := range page.Entries {
		w.open("ROW")
		w.element("DATA", e.Name)
		w.element("DATA", e.Synopsis)
		w.close("ROW")
	}
	w.close("TABLE")
	w.close("DESC")

	w.close("ENTRY")
	w.close(r.DTD.Root())
	return w.bytes()
}
