package pystub

import (
	"sort"
	"strings"
	"testing"

	"github.com/dhamidi/stubgen/java"
)

func parameterized(name string, args ...*java.TypeRef) *java.TypeRef {
	return &java.TypeRef{Kind: java.KindParameterized, Name: name, Args: args}
}

func upperWildcard(bound *java.TypeRef) *java.TypeRef {
	return &java.TypeRef{Kind: java.KindWildcard, Upper: bound}
}

func lowerWildcard(bound *java.TypeRef) *java.TypeRef {
	return &java.TypeRef{Kind: java.KindWildcard, Lower: bound}
}

func TestTypeOf(t *testing.T) {
	listScope := scope{vars: []typeVar{{stubName: "_List__T", javaName: "T"}}}
	tests := []struct {
		name  string
		types mapper
		ref   *java.TypeRef
		sc    scope
		want  string
	}{
		{"boolean", mapper{}, java.PrimitiveType("boolean"), scope{}, "bool"},
		{"char is numeric", mapper{}, java.PrimitiveType("char"), scope{}, "int"},
		{"long", mapper{}, java.PrimitiveType("long"), scope{}, "int"},
		{"double", mapper{}, java.PrimitiveType("double"), scope{}, "float"},
		{"void", mapper{}, nil, scope{}, "None"},
		{"boxed integer", mapper{}, java.ClassType("java.lang.Integer"), scope{}, "int"},
		{"boxed character", mapper{}, java.ClassType("java.lang.Character"), scope{}, "int"},
		{"boxed void", mapper{}, java.ClassType("java.lang.Void"), scope{}, "None"},
		{"string stays a class", mapper{}, java.ClassType("java.lang.String"), scope{}, "java.lang.String"},
		{"string converts", mapper{convertStrings: true}, java.ClassType("java.lang.String"), scope{}, "str"},
		{"class object", mapper{}, parameterized("java.lang.Class", java.TypeVarType("T")), listScope, "typing.Type[_List__T]"},
		{"raw class object", mapper{}, java.ClassType("java.lang.Class"), scope{}, "typing.Type"},
		{"array", mapper{}, java.ArrayType(java.PrimitiveType("int")), scope{}, "typing.List[int]"},
		{"array of arrays", mapper{}, java.ArrayType(java.ArrayType(java.PrimitiveType("double"))), scope{}, "typing.List[typing.List[float]]"},
		{"builtin sequences", mapper{builtinList: true}, java.ArrayType(java.PrimitiveType("int")), scope{}, "list[int]"},
		{"plain class", mapper{}, java.ClassType("java.util.BitSet"), scope{}, "java.util.BitSet"},
		{"parameterized", mapper{}, parameterized("java.util.Map", java.ClassType("java.lang.Integer"), java.TypeVarType("T")), listScope, "java.util.Map[int, _List__T]"},
		{"raw generic use", mapper{}, java.ClassType("java.util.Map"), scope{}, "java.util.Map"},
		{"nested class", mapper{}, java.ClassType("java.util.Map$Entry"), scope{}, "java.util.Map.Entry"},
		{"type variable in scope", mapper{}, java.TypeVarType("T"), listScope, "_List__T"},
		{"escaped type variable", mapper{}, java.TypeVarType("E"), listScope, "typing.Any"},
		{"upper wildcard", mapper{}, upperWildcard(java.ClassType("java.lang.Number")), scope{}, "java.lang.Number"},
		{"lower wildcard", mapper{}, lowerWildcard(java.ClassType("java.lang.Number")), scope{}, "typing.Any"},
		{"unbounded wildcard", mapper{}, &java.TypeRef{Kind: java.KindWildcard}, scope{}, "typing.Any"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mc := newModuleContext("com.example", false, nil)
			got := mc.annotate(tt.types.typeOf(tt.ref, tt.sc))
			if got != tt.want {
				t.Errorf("typeOf(%s) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestTypeOfCollectsImports(t *testing.T) {
	mc := newModuleContext("com.example", false, nil)
	m := mapper{}
	mc.annotate(m.typeOf(parameterized("java.util.List", java.ClassType("java.io.File")), scope{}))
	mc.annotate(m.typeOf(java.ArrayType(java.PrimitiveType("int")), scope{}))

	want := []string{"import java.io", "import java.util", "import typing"}
	got := mc.importLines()
	if len(got) != len(want) {
		t.Fatalf("importLines() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("importLines()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTypeOfRecordsReferences(t *testing.T) {
	mc := newModuleContext("com.example", false, nil)
	m := mapper{}
	mc.annotate(m.typeOf(java.ClassType("com.example.Widget"), scope{}))
	mc.annotate(m.typeOf(java.ClassType("com.example.Outer$Inner"), scope{}))

	var used []string
	for name := range mc.used {
		used = append(used, name)
	}
	sort.Strings(used)
	want := []string{"com.example.Outer$Inner", "com.example.Widget"}
	if strings.Join(used, ",") != strings.Join(want, ",") {
		t.Errorf("used = %v, want %v", used, want)
	}
}

func TestTypeVarsFor(t *testing.T) {
	m := mapper{}

	t.Run("unbounded", func(t *testing.T) {
		vars := m.typeVarsFor([]java.TypeParam{{Name: "T"}}, "Box")
		if len(vars) != 1 {
			t.Fatalf("got %d vars, want 1", len(vars))
		}
		if vars[0].stubName != "_Box__T" {
			t.Errorf("stubName = %q, want %q", vars[0].stubName, "_Box__T")
		}
		if vars[0].bound != nil {
			t.Errorf("bound = %v, want nil", vars[0].bound)
		}
	})

	t.Run("object bound reads as absent", func(t *testing.T) {
		vars := m.typeVarsFor([]java.TypeParam{
			{Name: "T", Bounds: []*java.TypeRef{java.ClassType("java.lang.Object")}},
		}, "Box")
		if vars[0].bound != nil {
			t.Errorf("bound = %v, want nil", vars[0].bound)
		}
	})

	t.Run("class bound", func(t *testing.T) {
		vars := m.typeVarsFor([]java.TypeParam{
			{Name: "N", Bounds: []*java.TypeRef{java.ClassType("java.lang.Number")}},
		}, "Stat")
		if vars[0].bound == nil || vars[0].bound.name != "java.lang.Number" {
			t.Fatalf("bound = %v, want java.lang.Number", vars[0].bound)
		}
	})

	t.Run("parameterized bound collapses to raw", func(t *testing.T) {
		vars := m.typeVarsFor([]java.TypeParam{
			{Name: "T", Bounds: []*java.TypeRef{parameterized("java.lang.Comparable", java.TypeVarType("T"))}},
		}, "Sorted")
		if vars[0].bound == nil || vars[0].bound.name != "java.lang.Comparable" {
			t.Fatalf("bound = %v, want raw java.lang.Comparable", vars[0].bound)
		}
		if len(vars[0].bound.args) != 0 {
			t.Errorf("bound args = %v, want none", vars[0].bound.args)
		}
	})

	t.Run("type variable bound is dropped", func(t *testing.T) {
		vars := m.typeVarsFor([]java.TypeParam{
			{Name: "U", Bounds: []*java.TypeRef{java.TypeVarType("T")}},
		}, "Pair")
		if vars[0].bound != nil {
			t.Errorf("bound = %v, want nil", vars[0].bound)
		}
	})
}

func TestTypeVarLine(t *testing.T) {
	mc := newModuleContext("com.example", false, nil)

	got := mc.typeVarLine(typeVar{stubName: "_Box__T", javaName: "T"})
	want := "_Box__T = typing.TypeVar('_Box__T')  # <T>"
	if got != want {
		t.Errorf("typeVarLine() = %q, want %q", got, want)
	}

	bound := pyType{name: "java.lang.Number"}
	got = mc.typeVarLine(typeVar{stubName: "_Stat__N", javaName: "N", bound: &bound})
	want = "_Stat__N = typing.TypeVar('_Stat__N', bound=java.lang.Number)  # <N>"
	if got != want {
		t.Errorf("typeVarLine() = %q, want %q", got, want)
	}
}

func TestScopeShadowing(t *testing.T) {
	outer := scope{vars: []typeVar{{stubName: "_Outer__T", javaName: "T"}}}
	inner := outer.extend([]typeVar{{stubName: "_get__T", javaName: "T"}})

	if tv, ok := inner.lookup("T"); !ok || tv.stubName != "_get__T" {
		t.Errorf("lookup(T) = %v, %v; want the innermost declaration", tv, ok)
	}
	if tv, ok := outer.lookup("T"); !ok || tv.stubName != "_Outer__T" {
		t.Errorf("outer lookup(T) = %v, %v; want the outer declaration", tv, ok)
	}
	if _, ok := inner.lookup("E"); ok {
		t.Error("lookup(E) found a variable that was never declared")
	}
}

func TestClassScopeID(t *testing.T) {
	tests := []struct {
		className string
		want      string
	}{
		{"com.example.Box", "Box"},
		{"com.example.Outer$Inner", "Outer__Inner"},
		{"Box", "Box"},
	}
	for _, tt := range tests {
		cls := &java.Class{Name: tt.className}
		if got := classScopeID(cls); got != tt.want {
			t.Errorf("classScopeID(%s) = %q, want %q", tt.className, got, tt.want)
		}
	}
}
