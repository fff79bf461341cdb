package metadata

import (
	"path"
	"strings"
)

// Component is a classified metadata component.
type Component struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// String renders the component as Type:Name.
func (c Component) String() string {
	return c.Type + ":" + c.Name
}

// Miss explains why a path produced no component. A miss is not an error;
// callers skip the path.
type Miss int

const (
	// Matched means the path classified.
	Matched Miss = iota
	// OutsideRoot means the path does not contain the project-root marker.
	OutsideRoot
	// NoFolder means nothing follows the root marker but a single segment.
	NoFolder
	// UnknownFolder means the top-level folder has no registered type.
	UnknownFolder
	// UnknownObjectFolder means an object sub-path is neither a registered
	// sub-folder nor the object's definition file.
	UnknownObjectFolder
	// NoName means the rule could not derive a component name.
	NoName
)

// String describes the miss reason.
func (m Miss) String() string {
	switch m {
	case Matched:
		return "matched"
	case OutsideRoot:
		return "outside project root"
	case NoFolder:
		return "no metadata folder"
	case UnknownFolder:
		return "unregistered folder"
	case UnknownObjectFolder:
		return "unregistered object sub-folder"
	case NoName:
		return "no component name"
	default:
		return "unknown"
	}
}

// Classifier maps paths to components under a project root.
type Classifier struct {
	root     string
	registry Registry
}

// NewClassifier returns a classifier anchored at root. An empty root falls
// back to DefaultRoot.
func NewClassifier(root string, registry Registry) *Classifier {
	root = strings.Trim(toSlash(root), "/")
	if root == "" {
		root = DefaultRoot
	}
	return &Classifier{root: root, registry: registry}
}

// Default returns a classifier with the built-in registry and root.
func Default() *Classifier {
	return NewClassifier(DefaultRoot, DefaultRegistry())
}

// Root returns the project-root marker.
func (c *Classifier) Root() string {
	return c.root
}

// Classify returns the component for p, or false when p does not classify.
func (c *Classifier) Classify(p string) (Component, bool) {
	comp, miss := c.Explain(p)
	return comp, miss == Matched
}

// Explain classifies p and reports why it did not match.
func (c *Classifier) Explain(p string) (Component, Miss) {
	folder, rest, miss := c.split(p)
	if miss != Matched {
		return Component{}, miss
	}

	typ, rule, ok := c.registry.Lookup(folder)
	if !ok {
		return Component{}, UnknownFolder
	}

	var name string
	switch rule {
	case RuleBundle:
		name = bundleName(rest)
	case RuleContainer:
		return c.classifyObject(typ, rest)
	case RuleFlattened:
		name = cutFirstDot(rest)
	case RuleDottedRecord:
		name = recordName(path.Base(rest))
	default:
		name = cutFirstDot(path.Base(rest))
	}
	if name == "" {
		return Component{}, NoName
	}
	return Component{Type: typ, Name: name}, Matched
}

// split returns the first segment after the root marker and everything after it.
func (c *Classifier) split(p string) (string, string, Miss) {
	p = toSlash(p)
	marker := c.root + "/"
	idx := strings.Index(p, marker)
	if idx < 0 {
		return "", "", OutsideRoot
	}
	tail := p[idx+len(marker):]
	folder, rest, found := strings.Cut(tail, "/")
	if !found || folder == "" || rest == "" {
		return "", "", NoFolder
	}
	return folder, rest, Matched
}

// classifyObject handles the objects/<Object>/<sub path> taxonomy.
func (c *Classifier) classifyObject(containerType, rest string) (Component, Miss) {
	object, sub, found := strings.Cut(rest, "/")
	if !found || object == "" || sub == "" {
		return Component{}, NoName
	}

	subFolder, _, nested := strings.Cut(sub, "/")
	if nested {
		typ, ok := c.registry.LookupObject(subFolder)
		if !ok {
			return Component{}, UnknownObjectFolder
		}
		member := cutFirstDot(path.Base(sub))
		if member == "" {
			return Component{}, NoName
		}
		return Component{Type: typ, Name: object + "." + member}, Matched
	}

	if strings.HasSuffix(sub, ObjectDefinitionSuffix) {
		return Component{Type: containerType, Name: object}, Matched
	}
	return Component{}, UnknownObjectFolder
}

// bundleName returns the bundle folder; files sitting directly in the bundle
// root folder do not belong to any bundle.
func bundleName(rest string) string {
	name, _, found := strings.Cut(rest, "/")
	if !found {
		return ""
	}
	return name
}

// recordName keeps the Type.Record key of a custom metadata record file.
func recordName(base string) string {
	if idx := strings.Index(base, RecordMarker); idx >= 0 {
		return base[:idx]
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

func cutFirstDot(s string) string {
	name, _, _ := strings.Cut(s, ".")
	return name
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
