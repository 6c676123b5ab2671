package capability

import (
	"github.com/conduit-lang/harmony/internal/core/condition"
)

// Merge installs the members of each source onto target, in source order
// and member declaration order, skipping every name target already owns.
// Inherited members never block installation. Interface members install a
// stub that fails with NotImplemented. Merging the same sources again is a
// no-op.
func Merge(target *Set, sources ...*Bag) {
	for _, src := range sources {
		if src == nil {
			continue
		}
		for _, m := range src.members {
			if target.HasOwn(m.Name) {
				continue
			}
			if src.kind == KindInterface {
				target.defineStub(m.Name)
				continue
			}
			target.Define(m.Name, m.Value)
		}
	}
}

// Stub returns a member that always fails with NotImplemented naming the
// capability.
func Stub(name string) Func {
	return func(args ...any) (any, error) {
		return nil, condition.NotImplemented(name)
	}
}

// Missing returns the interface member names that are absent from target
// or still resolve to a stub.
func Missing(target *Set, iface *Bag) []string {
	var missing []string
	for _, name := range iface.Names() {
		if _, ok := target.Lookup(name); !ok || target.IsStub(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
