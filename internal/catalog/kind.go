package catalog

// Kind is one of the editable catalog entity kinds.
type Kind string

const (
	KindSection   Kind = "section"
	KindClass     Kind = "class"
	KindSubject   Kind = "subject"
	KindGroup     Kind = "group"
	KindProfessor Kind = "professor"
)

// Kinds lists the kinds in menu order.
var Kinds = []Kind{KindSection, KindClass, KindGroup, KindProfessor, KindSubject}

// Parent returns the kind that owns k, or "" for top-level kinds.
func (k Kind) Parent() Kind {
	switch k {
	case KindClass:
		return KindSection
	case KindSubject, KindGroup:
		return KindClass
	}
	return ""
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindSection, KindClass, KindSubject, KindGroup, KindProfessor:
		return true
	}
	return false
}

func (k Kind) table() string {
	switch k {
	case KindSection:
		return "sections"
	case KindClass:
		return "classes"
	case KindSubject:
		return "subjects"
	case KindGroup:
		return "course_groups"
	case KindProfessor:
		return "professors"
	}
	return ""
}

func (k Kind) parentColumn() string {
	switch k.Parent() {
	case KindSection:
		return "section_id"
	case KindClass:
		return "class_id"
	}
	return ""
}

// Item is the kind-independent view of an entity used by editing menus.
type Item struct {
	Kind     Kind
	ID       int64
	ParentID int64
	Name     string
}
