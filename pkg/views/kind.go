package views

import (
	"strings"
	"unicode"

	"github.com/samber/lo"
)

// Kind identifies a view type.
type Kind int

const (
	KindUnknown Kind = iota
	KindContainer
	KindHandle
	KindTable
	KindDrawer
	KindCounterTop
)

type kindInfo struct {
	name string
	tags []string
}

// kinds is the static tag table. Tags are matched against the tokens of a
// body name.
var kinds = map[Kind]kindInfo{
	KindContainer:  {name: "container", tags: []string{"container", "cabinet", "box", "shelf"}},
	KindHandle:     {name: "handle", tags: []string{"handle", "knob", "pull"}},
	KindTable:      {name: "table", tags: []string{"table", "desk"}},
	KindDrawer:     {name: "drawer", tags: []string{"drawer"}},
	KindCounterTop: {name: "countertop", tags: []string{"countertop", "counter", "worktop"}},
}

// Kinds lists every known kind in declaration order.
var Kinds = []Kind{KindContainer, KindHandle, KindTable, KindDrawer, KindCounterTop}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return "unknown"
}

// Supporting reports whether views of this kind expose a support surface.
func (k Kind) Supporting() bool {
	return k == KindTable || k == KindDrawer || k == KindCounterTop
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, k := range Kinds {
		if kinds[k].name == name {
			return k, true
		}
	}
	return KindUnknown, false
}

// Classify guesses the kinds a body name suggests, in declaration order.
// "kitchen_table_top" yields table; "drawer_handle" yields handle and drawer.
func Classify(bodyName string) []Kind {
	tokens := strings.FieldsFunc(strings.ToLower(bodyName), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return lo.Filter(Kinds, func(k Kind, _ int) bool {
		return lo.ContainsBy(kinds[k].tags, func(tag string) bool {
			return lo.Contains(tokens, tag)
		})
	})
}
