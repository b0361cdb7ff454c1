// Package relate builds the parent/child relation graph for GFF3
// input, extracting edges from "Parent=" attributes and computing the
// transitive closure up to a bounded level (spec.md §4.8).
//
// Parent values may name a feature that appears later in the file (or
// whose primary key was remapped by the merge controller), so edges
// are staged by the attribute's literal value and only resolved to
// real primary keys once the whole stream — and every id resolution —
// has been observed. This mirrors the Node/Leaf/Orphan classification
// in other_examples/grendeloz-ngs/gff3/gff3tree.go, reworked from an
// in-process tree into the adjacency-list-plus-closure shape the
// store's relations table requires.
package relate

// Edge is a resolved (parent, child, level) relation.
type Edge struct {
	Parent string
	Child  string
	Level  int
}

// pendingEdge is a staged edge before parent-value resolution.
type pendingEdge struct {
	parentValue string
	child       string
}

// Builder accumulates staged edges and the key->final-id registry
// needed to resolve them.
type Builder struct {
	pending  []pendingEdge
	registry map[string]string // candidate key (pre-merge) -> final primary key
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{registry: make(map[string]string)}
}

// Register records that the candidate key (the value a Parent=
// attribute would reference) ultimately resolved to finalID. Call
// this for every ingested feature, keyed by whatever value was fed to
// idresolve.Resolve (typically the feature's own "ID" attribute).
func (b *Builder) Register(candidateKey, finalID string) {
	b.registry[candidateKey] = finalID
}

// Stage records a direct parent/child edge candidate: child is the
// feature's resolved id, parentValues are the raw values from its
// Parent= attribute (one edge per listed parent; GFF3 explicitly
// allows multi-parent features).
func (b *Builder) Stage(child string, parentValues []string) {
	for _, pv := range parentValues {
		if pv == "" {
			continue
		}
		b.pending = append(b.pending, pendingEdge{parentValue: pv, child: child})
	}
}

// Resolve turns every staged edge into a level-1 Edge using the
// registry. A parent value that never resolved to a known feature (a
// dangling Parent= reference) is used literally as the parent id;
// accidental self-edges are skipped. It then computes levels 2..maxLevel by repeated join
// over the level-1 edges, matching spec.md §4.8's closure algorithm.
func (b *Builder) Resolve(maxLevel int) []Edge {
	var level1 []Edge
	seen := make(map[[2]string]bool)

	for _, pe := range b.pending {
		parentID, ok := b.registry[pe.parentValue]
		if !ok {
			// parent value might already be a final id (e.g. when
			// id_spec doesn't round-trip through the registry);
			// fall back to using it literally.
			parentID = pe.parentValue
		}
		if parentID == pe.child {
			continue // no self-edges
		}
		key := [2]string{parentID, pe.child}
		if seen[key] {
			continue
		}
		seen[key] = true
		level1 = append(level1, Edge{Parent: parentID, Child: pe.child, Level: 1})
	}

	all := append([]Edge(nil), level1...)
	// pairExists ignores level: spec.md §4.8 skips a join result
	// "if (a, c, _) already present", for any level.
	pairExists := make(map[[2]string]bool, len(all))
	for _, e := range all {
		pairExists[[2]string{e.Parent, e.Child}] = true
	}

	frontier := level1
	for lvl := 2; lvl <= maxLevel; lvl++ {
		var next []Edge
		for _, ab := range frontier {
			for _, bc := range level1 {
				if ab.Child != bc.Parent {
					continue
				}
				if ab.Parent == bc.Child {
					continue // no self-edges
				}
				if pairExists[[2]string{ab.Parent, bc.Child}] {
					continue
				}
				e := Edge{Parent: ab.Parent, Child: bc.Child, Level: lvl}
				next = append(next, e)
				pairExists[[2]string{e.Parent, e.Child}] = true
			}
		}
		if len(next) == 0 {
			break
		}
		all = append(all, next...)
		frontier = next
	}

	return all
}
