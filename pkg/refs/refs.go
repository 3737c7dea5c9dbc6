// Package refs finds "$ref" expressions in a document tree and splits
// them into file and fragment parts.
package refs

import (
	"strconv"
	"strings"

	"github.com/ormasoftchile/schemacheck/pkg/document"
	"github.com/ormasoftchile/schemacheck/pkg/pointer"
)

// Keyword is the reserved mapping key holding a reference.
const Keyword = "$ref"

// Reference is one occurrence of a reference expression.
type Reference struct {
	Raw      string // value as written
	Location string // JSON Pointer of the mapping that holds the $ref
}

// Collect returns every reference string in root in pre-order: a
// mapping's own $ref comes before anything nested beneath it, and
// children are visited in source order. Duplicates are kept.
func Collect(root *document.Node) []string {
	var out []string
	walk(root, nil, func(r Reference) {
		out = append(out, r.Raw)
	})
	return out
}

// Scan is Collect with the location of each occurrence.
func Scan(root *document.Node) []Reference {
	var out []Reference
	walk(root, nil, func(r Reference) {
		out = append(out, r)
	})
	return out
}

func walk(n *document.Node, path []string, visit func(Reference)) {
	if n == nil {
		return
	}
	switch n.Kind {
	case document.Object:
		if v, ok := n.Get(Keyword); ok {
			if s, ok := v.Str(); ok {
				visit(Reference{Raw: s, Location: "#" + pointer.Format(path)})
			}
		}
		for _, f := range n.Fields {
			walk(f.Value, append(path, f.Key), visit)
		}
	case document.Array:
		for i, it := range n.Items {
			walk(it, append(path, strconv.Itoa(i)), visit)
		}
	}
}

// IsRemote reports whether ref targets an absolute network location.
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Split separates ref at the first '#' into a file part and a fragment
// that keeps its leading '#'. A ref without '#' gets the fragment "#".
func Split(ref string) (file, fragment string) {
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		return ref[:i], ref[i:]
	}
	return ref, "#"
}
