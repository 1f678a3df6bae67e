package views

import (
	"github.com/chazu/strata/pkg/surface"
	"github.com/chazu/strata/pkg/world"
	"github.com/samber/lo"
)

// precedence resolves names that suggest more than one kind.
var precedence = []Kind{KindHandle, KindDrawer, KindTable, KindCounterTop, KindContainer}

// PrimaryKind returns the single kind a body name suggests most strongly.
func PrimaryKind(bodyName string) Kind {
	suggested := Classify(bodyName)
	for _, k := range precedence {
		if lo.Contains(suggested, k) {
			return k
		}
	}
	return KindUnknown
}

// Annotate derives views for the bodies of w from their names. A drawer
// takes the first handle body mounted directly on its frame; a drawer with
// no handle is annotated as a plain container. Handles claimed by a drawer
// get no view of their own. Views come out in body order and share ex.
func Annotate(w *world.World, ex *surface.Extractor) []View {
	if ex == nil {
		ex = surface.NewExtractor()
	}
	bodies := w.Bodies()
	primary := lo.Map(bodies, func(b *world.Body, _ int) Kind { return PrimaryKind(b.Name) })

	claimed := make(map[*world.Body]bool)
	handleOf := make(map[*world.Body]*world.Body)
	for i, b := range bodies {
		if primary[i] != KindDrawer {
			continue
		}
		for j, h := range bodies {
			if primary[j] == KindHandle && !claimed[h] && h.Frame().Parent() == b.Frame() {
				handleOf[b] = h
				claimed[h] = true
				break
			}
		}
	}

	var out []View
	for i, b := range bodies {
		switch primary[i] {
		case KindTable:
			out = append(out, NewTable(b, ex))
		case KindCounterTop:
			out = append(out, NewCounterTop(b, ex))
		case KindContainer:
			out = append(out, &Container{Body: b})
		case KindDrawer:
			if h, ok := handleOf[b]; ok {
				out = append(out, NewDrawer(&Container{Body: b}, &Handle{Body: h}, ex))
			} else {
				out = append(out, &Container{Body: b})
			}
		case KindHandle:
			if !claimed[b] {
				out = append(out, &Handle{Body: b})
			}
		}
	}
	return out
}
