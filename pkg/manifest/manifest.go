// Package manifest reads, merges and writes package manifest documents.
//
// A manifest is kept as an etree document so that merging into an existing
// file only touches the type groups it needs to and leaves any other content
// in place.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/beevik/etree"
	"github.com/fulmenhq/sfdelta/pkg/changeset"
)

const (
	// Namespace is the metadata API namespace carried by the root element.
	Namespace = "http://soap.sforce.com/2006/04/metadata"
	// DefaultVersion is the API version written into fresh manifests.
	DefaultVersion = "64.0"

	rootTag    = "Package"
	typesTag   = "types"
	nameTag    = "name"
	membersTag = "members"
	versionTag = "version"

	indentSpaces = 4
)

// MalformedError reports an existing manifest that could not be used.
type MalformedError struct {
	Path string
	Err  error
}

func (e *MalformedError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed manifest: %v", e.Err)
	}
	return fmt.Sprintf("malformed manifest %s: %v", e.Path, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// IsMalformed reports whether err is a *MalformedError.
func IsMalformed(err error) bool {
	var me *MalformedError
	return errors.As(err, &me)
}

// TypeGroup is a read-only view of one <types> entry.
type TypeGroup struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Manifest is a package manifest document.
type Manifest struct {
	doc *etree.Document
}

// New returns an empty manifest carrying only the version entry.
func New(version string) *Manifest {
	if version == "" {
		version = DefaultVersion
	}
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(rootTag)
	root.CreateAttr("xmlns", Namespace)
	root.CreateElement(versionTag).SetText(version)
	return &Manifest{doc: doc}
}

// Parse reads a manifest document.
func Parse(data []byte) (*Manifest, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &MalformedError{Err: err}
	}
	root := doc.Root()
	if root == nil {
		return nil, &MalformedError{Err: errors.New("document has no root element")}
	}
	if root.Tag != rootTag {
		return nil, &MalformedError{Err: fmt.Errorf("unexpected root element <%s>", root.Tag)}
	}
	ensureDeclaration(doc)
	return &Manifest{doc: doc}, nil
}

// Load reads the manifest at path. A missing file yields an error matching
// fs.ErrNotExist; an unparsable one a *MalformedError.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- manifest path is operator supplied
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		var me *MalformedError
		if errors.As(err, &me) {
			me.Path = path
		}
		return nil, err
	}
	return m, nil
}

// Version returns the version entry, or "" when there is none.
func (m *Manifest) Version() string {
	if v := m.doc.Root().SelectElement(versionTag); v != nil {
		return v.Text()
	}
	return ""
}

// Types returns the type groups in document order.
func (m *Manifest) Types() []TypeGroup {
	var out []TypeGroup
	for _, el := range m.doc.Root().SelectElements(typesTag) {
		out = append(out, TypeGroup{Name: groupName(el), Members: memberNames(el)})
	}
	return out
}

// Members returns the members listed for typ, in document order.
func (m *Manifest) Members(typ string) []string {
	if el := m.findGroup(typ); el != nil {
		return memberNames(el)
	}
	return nil
}

// Merge adds every member of set that is not already listed. Types missing
// from the manifest get a new group in the set's type order. Existing members
// are never removed. It returns the number of members added.
func (m *Manifest) Merge(set *changeset.Set) int {
	added := 0
	for _, typ := range set.Types() {
		group := m.findGroup(typ)
		if group == nil {
			group = m.appendGroup(typ)
		}
		existing := make(map[string]struct{})
		for _, name := range memberNames(group) {
			existing[name] = struct{}{}
		}
		for _, name := range set.Names(typ) {
			if _, ok := existing[name]; ok {
				continue
			}
			group.CreateElement(membersTag).SetText(name)
			existing[name] = struct{}{}
			added++
		}
	}
	return added
}

// Sort orders the members of every group lexicographically and drops
// duplicate members. Group order is left untouched.
func (m *Manifest) Sort() {
	for _, group := range m.doc.Root().SelectElements(typesTag) {
		members := group.SelectElements(membersTag)
		if len(members) == 0 {
			continue
		}
		at := members[0].Index()
		seen := make(map[string]struct{}, len(members))
		names := make([]string, 0, len(members))
		for _, el := range members {
			name := el.Text()
			group.RemoveChild(el)
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
		sort.Strings(names)
		for i, name := range names {
			el := etree.NewElement(membersTag)
			el.SetText(name)
			group.InsertChildAt(at+i, el)
		}
	}
}

// Bytes serializes the manifest with an XML declaration and stable indentation.
func (m *Manifest) Bytes() ([]byte, error) {
	m.doc.Indent(indentSpaces)
	return m.doc.WriteToBytes()
}

func (m *Manifest) findGroup(typ string) *etree.Element {
	for _, el := range m.doc.Root().SelectElements(typesTag) {
		if groupName(el) == typ {
			return el
		}
	}
	return nil
}

// appendGroup adds a <types> entry after the last existing one, or at the end
// of the document when there is none.
func (m *Manifest) appendGroup(typ string) *etree.Element {
	root := m.doc.Root()
	group := etree.NewElement(typesTag)
	group.CreateElement(nameTag).SetText(typ)

	groups := root.SelectElements(typesTag)
	if len(groups) == 0 {
		root.AddChild(group)
		return group
	}
	root.InsertChildAt(groups[len(groups)-1].Index()+1, group)
	return group
}

func groupName(group *etree.Element) string {
	if n := group.SelectElement(nameTag); n != nil {
		return n.Text()
	}
	return ""
}

func memberNames(group *etree.Element) []string {
	var out []string
	for _, el := range group.SelectElements(membersTag) {
		out = append(out, el.Text())
	}
	return out
}

func ensureDeclaration(doc *etree.Document) {
	for _, tok := range doc.Child {
		if pi, ok := tok.(*etree.ProcInst); ok && pi.Target == "xml" {
			return
		}
	}
	doc.InsertChildAt(0, etree.NewProcInst("xml", `version="1.0" encoding="UTF-8"`))
}
