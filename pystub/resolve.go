package pystub

import (
	"sort"

	"github.com/dhamidi/stubgen/java"
)

// overloadSet groups the declared members that share one emitted
// Python name. Staticness stays per member so the emitter can pick
// the decoration per stanza.
type overloadSet struct {
	name    string
	members []*java.Member
}

// namedMember pairs a field with its emitted Python name.
type namedMember struct {
	name string
	m    *java.Member
}

// resolvedMembers arranges a class's declared members for emission.
// Inherited members never appear here: the model carries declared
// members only, and stub consumers inherit the rest through the base
// class list.
type resolvedMembers struct {
	fields  []namedMember
	ctors   overloadSet
	methods []overloadSet
}

// resolveMembers groups members into overload sets and resolves name
// conflicts. It never fails; a member Python cannot represent is
// omitted with a diagnostic instead.
func resolveMembers(cls *java.Class) resolvedMembers {
	resolved := resolvedMembers{
		ctors: overloadSet{name: "__init__"},
	}
	methodSets := make(map[string]*overloadSet)
	var methodNames []string

	for i := range cls.Members {
		m := &cls.Members[i]
		switch m.Kind {
		case java.MemberConstructor:
			resolved.ctors.members = append(resolved.ctors.members, m)
		case java.MemberMethod:
			name, ok := pysafe(m.Name)
			if !ok {
				log.Debugf("omitting method %s.%s: name is reserved for the Python runtime", cls.Name, m.Name)
				continue
			}
			set, found := methodSets[name]
			if !found {
				set = &overloadSet{name: name}
				methodSets[name] = set
				methodNames = append(methodNames, name)
			}
			set.members = append(set.members, m)
		case java.MemberField:
			name, ok := pysafe(m.Name)
			if !ok {
				log.Debugf("omitting field %s.%s: name is reserved for the Python runtime", cls.Name, m.Name)
				continue
			}
			resolved.fields = append(resolved.fields, namedMember{name: name, m: m})
		}
	}

	// A field and a method cannot share an attribute name; the
	// callable form wins.
	if len(methodSets) > 0 {
		kept := resolved.fields[:0]
		for _, f := range resolved.fields {
			if _, clash := methodSets[f.name]; clash {
				log.Warningf("field %s.%s collides with a method of the same name; dropping the field", cls.Name, f.m.Name)
				continue
			}
			kept = append(kept, f)
		}
		resolved.fields = kept
	}

	sort.Slice(resolved.fields, func(i, j int) bool {
		return resolved.fields[i].name < resolved.fields[j].name
	})
	orderOverloads(resolved.ctors.members)

	sort.Strings(methodNames)
	for _, name := range methodNames {
		set := methodSets[name]
		orderOverloads(set.members)
		resolved.methods = append(resolved.methods, *set)
	}
	return resolved
}

// orderOverloads fixes the emission order of one overload set:
// ascending parameter count, ties broken by the Java parameter type
// names. The key depends only on declared signatures, so the order is
// stable across runs and input orderings.
func orderOverloads(members []*java.Member) {
	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if len(a.Params) != len(b.Params) {
			return len(a.Params) < len(b.Params)
		}
		for k := range a.Params {
			an, bn := a.Params[k].Type.String(), b.Params[k].Type.String()
			if an != bn {
				return an < bn
			}
		}
		return false
	})
}
