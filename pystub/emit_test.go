package pystub

import (
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/dhamidi/stubgen/java"
)

// textDiff fails the test with a unified diff when got differs from
// want. Shared by every test that compares multi-line stub text.
func textDiff(t *testing.T, want, got string) {
	t.Helper()
	if got == want {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	t.Errorf("unexpected stub text:\n%s", diff)
}

func blockText(lines []string) string {
	return strings.Join(lines, "\n") + "\n"
}

func emitOne(t *testing.T, g generator, pkg string, cls *java.Class) (block, typeVars, imports []string) {
	t.Helper()
	mc := newModuleContext(pkg, false, nil)
	block = g.emitClass(mc, cls, scope{}, &typeVars)
	return block, typeVars, mc.importLines()
}

func TestEmitGenericClass(t *testing.T) {
	cls := &java.Class{
		Name:       "com.example.Box",
		Kind:       java.ClassKindClass,
		Visibility: java.VisibilityPublic,
		Super:      java.ClassType("java.lang.Object"),
		TypeParams: []java.TypeParam{{Name: "T"}},
		Members: []java.Member{
			{Kind: java.MemberConstructor, Name: "<init>", Visibility: java.VisibilityPublic,
				Params: []java.Param{{Name: "value", Type: java.TypeVarType("T")}}},
			{Kind: java.MemberMethod, Name: "set", Visibility: java.VisibilityPublic,
				Params: []java.Param{{Name: "value", Type: java.TypeVarType("T")}}},
			{Kind: java.MemberMethod, Name: "get", Visibility: java.VisibilityPublic,
				Return: java.TypeVarType("T")},
		},
	}

	block, typeVars, imports := emitOne(t, generator{types: mapper{}}, "com.example", cls)

	want := `class Box(java.lang.Object, typing.Generic[_Box__T]):
    def __init__(self, value: _Box__T): ...
    def get(self) -> _Box__T: ...
    def set(self, value: _Box__T) -> None: ...
`
	textDiff(t, want, blockText(block))

	wantVars := []string{"_Box__T = typing.TypeVar('_Box__T')  # <T>"}
	if strings.Join(typeVars, "\n") != strings.Join(wantVars, "\n") {
		t.Errorf("type variables = %v, want %v", typeVars, wantVars)
	}
	wantImports := "import java.lang\nimport typing"
	if strings.Join(imports, "\n") != wantImports {
		t.Errorf("imports = %v, want %q", imports, wantImports)
	}
}

func TestEmitOverloadStanzas(t *testing.T) {
	cls := &java.Class{
		Name:       "com.example.Counter",
		Visibility: java.VisibilityPublic,
		Super:      java.ClassType("java.lang.Object"),
		Members: []java.Member{
			{Kind: java.MemberMethod, Name: "size", Visibility: java.VisibilityPublic,
				Params: []java.Param{{Name: "filter", Type: java.ClassType("java.lang.String")}},
				Return: java.PrimitiveType("boolean")},
			{Kind: java.MemberMethod, Name: "size", Visibility: java.VisibilityPublic,
				Return: java.PrimitiveType("int")},
		},
	}

	block, _, _ := emitOne(t, generator{types: mapper{}}, "com.example", cls)

	want := `class Counter(java.lang.Object):
    @typing.overload
    def size(self) -> int: ...
    @typing.overload
    def size(self, filter: java.lang.String) -> bool: ...
`
	textDiff(t, want, blockText(block))
}

func TestEmitEnum(t *testing.T) {
	cls := &java.Class{
		Name:          "com.example.Color",
		Kind:          java.ClassKindEnum,
		Visibility:    java.VisibilityPublic,
		Super:         parameterized("java.lang.Enum", java.ClassType("com.example.Color")),
		EnumConstants: []string{"RED", "GREEN"},
	}

	block, _, imports := emitOne(t, generator{types: mapper{}}, "com.example", cls)

	want := `class Color(java.lang.Enum[Color]):
    RED: typing.ClassVar[Color] = ...
    GREEN: typing.ClassVar[Color] = ...
`
	textDiff(t, want, blockText(block))

	wantImports := "import java.lang\nimport typing"
	if strings.Join(imports, "\n") != wantImports {
		t.Errorf("imports = %v, want %q", imports, wantImports)
	}
}

func TestEmitStatics(t *testing.T) {
	cls := &java.Class{
		Name:       "com.example.Factory",
		Visibility: java.VisibilityPublic,
		Super:      java.ClassType("java.lang.Object"),
		Members: []java.Member{
			{Kind: java.MemberField, Name: "MAX", Visibility: java.VisibilityPublic,
				IsStatic: true, IsFinal: true, Type: java.PrimitiveType("int")},
			{Kind: java.MemberMethod, Name: "create", Visibility: java.VisibilityPublic,
				IsStatic: true, Return: java.ClassType("com.example.Thing")},
		},
	}

	block, _, _ := emitOne(t, generator{types: mapper{}}, "com.example", cls)

	want := `class Factory(java.lang.Object):
    MAX: typing.ClassVar[int] = ...
    @staticmethod
    def create() -> Thing: ...
`
	textDiff(t, want, blockText(block))
}

func TestEmitStaticMethodScope(t *testing.T) {
	// A static method cannot see the class's type variables; its own
	// declarations are all it has.
	cls := &java.Class{
		Name:       "com.example.Box",
		Visibility: java.VisibilityPublic,
		Super:      java.ClassType("java.lang.Object"),
		TypeParams: []java.TypeParam{{Name: "T"}},
		Members: []java.Member{
			{Kind: java.MemberMethod, Name: "empty", Visibility: java.VisibilityPublic,
				IsStatic: true, Return: java.TypeVarType("T")},
			{Kind: java.MemberMethod, Name: "of", Visibility: java.VisibilityPublic,
				IsStatic:   true,
				TypeParams: []java.TypeParam{{Name: "U"}},
				Params:     []java.Param{{Name: "value", Type: java.TypeVarType("U")}},
				Return:     java.TypeVarType("U")},
		},
	}

	block, _, _ := emitOne(t, generator{types: mapper{}}, "com.example", cls)

	want := `class Box(java.lang.Object, typing.Generic[_Box__T]):
    @staticmethod
    def empty() -> typing.Any: ...
    _of__U = typing.TypeVar('_of__U')  # <U>
    @staticmethod
    def of(value: _of__U) -> _of__U: ...
`
	textDiff(t, want, blockText(block))
}

func TestEmitVarargs(t *testing.T) {
	cls := &java.Class{
		Name:       "com.example.Joiner",
		Visibility: java.VisibilityPublic,
		Super:      java.ClassType("java.lang.Object"),
		Members: []java.Member{
			{Kind: java.MemberMethod, Name: "join", Visibility: java.VisibilityPublic,
				IsVarargs: true,
				Params: []java.Param{
					{Name: "first", Type: java.ClassType("java.lang.String")},
					{Name: "rest", Type: java.ArrayType(java.ClassType("java.lang.String"))},
				},
				Return: java.ClassType("java.lang.String")},
		},
	}

	block, _, _ := emitOne(t, generator{types: mapper{}}, "com.example", cls)

	want := `class Joiner(java.lang.Object):
    def join(self, first: java.lang.String, *rest: java.lang.String) -> java.lang.String: ...
`
	textDiff(t, want, blockText(block))
}

func TestEmitMethodTypeVariables(t *testing.T) {
	cls := &java.Class{
		Name:       "com.example.Box",
		Visibility: java.VisibilityPublic,
		Super:      java.ClassType("java.lang.Object"),
		TypeParams: []java.TypeParam{{Name: "T"}},
		Members: []java.Member{
			{Kind: java.MemberMethod, Name: "map", Visibility: java.VisibilityPublic,
				TypeParams: []java.TypeParam{{Name: "R"}},
				Params: []java.Param{{Name: "f",
					Type: parameterized("java.util.function.Function", java.TypeVarType("T"), java.TypeVarType("R"))}},
				Return: java.TypeVarType("R")},
		},
	}

	block, _, _ := emitOne(t, generator{types: mapper{}}, "com.example", cls)

	want := `class Box(java.lang.Object, typing.Generic[_Box__T]):
    _map__R = typing.TypeVar('_map__R')  # <R>
    def map(self, f: java.util.function.Function[_Box__T, _map__R]) -> _map__R: ...
`
	textDiff(t, want, blockText(block))
}

func TestEmitOverloadedMethodTypeVariables(t *testing.T) {
	// Each overload declares its own scope, so same-named variables
	// of different overloads get distinct module-level names, all
	// hoisted above the stanzas.
	cls := &java.Class{
		Name:       "com.example.Seq",
		Visibility: java.VisibilityPublic,
		Super:      java.ClassType("java.lang.Object"),
		Members: []java.Member{
			{Kind: java.MemberMethod, Name: "of", Visibility: java.VisibilityPublic,
				TypeParams: []java.TypeParam{{Name: "E"}},
				Params:     []java.Param{{Name: "value", Type: java.TypeVarType("E")}},
				Return:     java.TypeVarType("E")},
			{Kind: java.MemberMethod, Name: "of", Visibility: java.VisibilityPublic,
				TypeParams: []java.TypeParam{{Name: "E"}},
				Params: []java.Param{
					{Name: "first", Type: java.TypeVarType("E")},
					{Name: "second", Type: java.TypeVarType("E")},
				},
				Return: java.TypeVarType("E")},
		},
	}

	block, _, _ := emitOne(t, generator{types: mapper{}}, "com.example", cls)

	want := `class Seq(java.lang.Object):
    _of_0__E = typing.TypeVar('_of_0__E')  # <E>
    _of_1__E = typing.TypeVar('_of_1__E')  # <E>
    @typing.overload
    def of(self, value: _of_0__E) -> _of_0__E: ...
    @typing.overload
    def of(self, first: _of_1__E, second: _of_1__E) -> _of_1__E: ...
`
	textDiff(t, want, blockText(block))
}

func TestEmitThrowable(t *testing.T) {
	cls := &java.Class{
		Name:       "java.lang.Throwable",
		Visibility: java.VisibilityPublic,
		Super:      java.ClassType("java.lang.Object"),
		Members: []java.Member{
			{Kind: java.MemberMethod, Name: "getMessage", Visibility: java.VisibilityPublic,
				Return: java.ClassType("java.lang.String")},
		},
	}

	mc := newModuleContext("java.lang", false, nil)
	mc.done["Object"] = true
	var typeVars []string
	g := generator{types: mapper{}}
	block := g.emitClass(mc, cls, scope{}, &typeVars)

	want := `class Throwable(Object, builtins.Exception):
    def getMessage(self) -> String: ...
`
	textDiff(t, want, blockText(block))

	if got := strings.Join(mc.importLines(), "\n"); got != "import builtins" {
		t.Errorf("imports = %q, want %q", got, "import builtins")
	}
}

func TestEmitNestedClasses(t *testing.T) {
	t.Run("inner sees enclosing variables", func(t *testing.T) {
		inner := &java.Class{
			Name:       "com.example.Outer$Inner",
			Visibility: java.VisibilityPublic,
			Super:      java.ClassType("java.lang.Object"),
			Members: []java.Member{
				{Kind: java.MemberMethod, Name: "peek", Visibility: java.VisibilityPublic,
					Return: java.TypeVarType("T")},
			},
		}
		outer := &java.Class{
			Name:       "com.example.Outer",
			Visibility: java.VisibilityPublic,
			Super:      java.ClassType("java.lang.Object"),
			TypeParams: []java.TypeParam{{Name: "T"}},
			Members: []java.Member{
				{Kind: java.MemberMethod, Name: "get", Visibility: java.VisibilityPublic,
					Return: java.TypeVarType("T")},
			},
			Nested: []*java.Class{inner},
		}

		block, typeVars, _ := emitOne(t, generator{types: mapper{}}, "com.example", outer)

		want := `class Outer(java.lang.Object, typing.Generic[_Outer__T]):
    def get(self) -> _Outer__T: ...
    class Inner(java.lang.Object):
        def peek(self) -> _Outer__T: ...
`
		textDiff(t, want, blockText(block))

		wantVars := []string{"_Outer__T = typing.TypeVar('_Outer__T')  # <T>"}
		if strings.Join(typeVars, "\n") != strings.Join(wantVars, "\n") {
			t.Errorf("type variables = %v, want %v", typeVars, wantVars)
		}
	})

	t.Run("static nested starts a fresh scope", func(t *testing.T) {
		holder := &java.Class{
			Name:       "com.example.Outer$Holder",
			Visibility: java.VisibilityPublic,
			IsStatic:   true,
			Super:      java.ClassType("java.lang.Object"),
			Members: []java.Member{
				{Kind: java.MemberMethod, Name: "peek", Visibility: java.VisibilityPublic,
					Return: java.TypeVarType("T")},
			},
		}
		outer := &java.Class{
			Name:       "com.example.Outer",
			Visibility: java.VisibilityPublic,
			Super:      java.ClassType("java.lang.Object"),
			TypeParams: []java.TypeParam{{Name: "T"}},
			Nested:     []*java.Class{holder},
		}

		block, _, _ := emitOne(t, generator{types: mapper{}}, "com.example", outer)

		want := `class Outer(java.lang.Object, typing.Generic[_Outer__T]):
    class Holder(java.lang.Object):
        def peek(self) -> typing.Any: ...
`
		textDiff(t, want, blockText(block))
	})

	t.Run("siblings emit in name order", func(t *testing.T) {
		writer := &java.Class{
			Name:       "com.example.Channel$Writer",
			Visibility: java.VisibilityPublic,
			IsStatic:   true,
			Super:      java.ClassType("java.lang.Object"),
			Members: []java.Member{
				{Kind: java.MemberMethod, Name: "flush", Visibility: java.VisibilityPublic},
			},
		}
		reader := &java.Class{
			Name:       "com.example.Channel$Reader",
			Visibility: java.VisibilityPublic,
			IsStatic:   true,
			Super:      java.ClassType("java.lang.Object"),
			Members: []java.Member{
				{Kind: java.MemberMethod, Name: "ready", Visibility: java.VisibilityPublic,
					Return: java.PrimitiveType("boolean")},
			},
		}
		outer := &java.Class{
			Name:       "com.example.Channel",
			Visibility: java.VisibilityPublic,
			Super:      java.ClassType("java.lang.Object"),
			Nested:     []*java.Class{writer, reader},
		}

		block, _, _ := emitOne(t, generator{types: mapper{}}, "com.example", outer)

		want := `class Channel(java.lang.Object):
    class Reader(java.lang.Object):
        def ready(self) -> bool: ...
    class Writer(java.lang.Object):
        def flush(self) -> None: ...
`
		textDiff(t, want, blockText(block))
	})

	t.Run("nested type variables hoist to module level", func(t *testing.T) {
		entry := &java.Class{
			Name:       "com.example.Table$Entry",
			Visibility: java.VisibilityPublic,
			IsStatic:   true,
			Super:      java.ClassType("java.lang.Object"),
			TypeParams: []java.TypeParam{{Name: "V"}},
			Members: []java.Member{
				{Kind: java.MemberMethod, Name: "value", Visibility: java.VisibilityPublic,
					Return: java.TypeVarType("V")},
			},
		}
		table := &java.Class{
			Name:       "com.example.Table",
			Visibility: java.VisibilityPublic,
			Super:      java.ClassType("java.lang.Object"),
			TypeParams: []java.TypeParam{{Name: "K"}},
			Nested:     []*java.Class{entry},
		}

		_, typeVars, _ := emitOne(t, generator{types: mapper{}}, "com.example", table)

		want := []string{
			"_Table__Entry__V = typing.TypeVar('_Table__Entry__V')  # <V>",
			"_Table__K = typing.TypeVar('_Table__K')  # <K>",
		}
		if strings.Join(typeVars, "\n") != strings.Join(want, "\n") {
			t.Errorf("type variables = %v, want %v", typeVars, want)
		}
	})
}

func TestEmitMissingNestedStub(t *testing.T) {
	cls := &java.Class{
		Name:       "com.example.Outer",
		Visibility: java.VisibilityPublic,
		Super:      java.ClassType("java.lang.Object"),
		Members: []java.Member{
			{Kind: java.MemberMethod, Name: "hidden", Visibility: java.VisibilityPublic,
				Return: java.ClassType("com.example.Outer$Hidden")},
		},
	}

	block, _, _ := emitOne(t, generator{types: mapper{}}, "com.example", cls)

	want := `class Outer(java.lang.Object):
    def hidden(self) -> Outer.Hidden: ...
    class Hidden: ...
`
	textDiff(t, want, blockText(block))
}

func TestEmitDocstrings(t *testing.T) {
	g := generator{types: mapper{}, withDocs: true}

	t.Run("class, field, and method text", func(t *testing.T) {
		cls := &java.Class{
			Name:       "com.example.Widget",
			Visibility: java.VisibilityPublic,
			Super:      java.ClassType("java.lang.Object"),
			Doc:        "A widget.",
			Members: []java.Member{
				{Kind: java.MemberField, Name: "size", Visibility: java.VisibilityPublic,
					Type: java.PrimitiveType("int"), Doc: "Current size."},
				{Kind: java.MemberMethod, Name: "draw", Visibility: java.VisibilityPublic,
					Doc: "Draws it.", IsDeprecated: true},
			},
		}

		block, _, _ := emitOne(t, g, "com.example", cls)

		want := `class Widget(java.lang.Object):
    """
    A widget.
    """
    size: int = ...
    """
    Current size.
    """
    def draw(self) -> None:
        """
        Draws it.

        .. deprecated::
        """
        ...
`
		textDiff(t, want, blockText(block))
	})

	t.Run("documentation only", func(t *testing.T) {
		cls := &java.Class{
			Name:       "com.example.Marker",
			Visibility: java.VisibilityPublic,
			Super:      java.ClassType("java.lang.Object"),
			Doc:        "Nothing here.",
		}

		block, _, _ := emitOne(t, g, "com.example", cls)

		want := `class Marker(java.lang.Object):
    """
    Nothing here.
    """
    ...
`
		textDiff(t, want, blockText(block))
	})

	t.Run("deprecated class without text", func(t *testing.T) {
		cls := &java.Class{
			Name:         "com.example.Old",
			Visibility:   java.VisibilityPublic,
			Super:        java.ClassType("java.lang.Object"),
			IsDeprecated: true,
		}

		block, _, _ := emitOne(t, g, "com.example", cls)

		want := `class Old(java.lang.Object):
    """
    .. deprecated::
    """
    ...
`
		textDiff(t, want, blockText(block))
	})

	t.Run("triple quotes are defused", func(t *testing.T) {
		cls := &java.Class{
			Name:       "com.example.Quoted",
			Visibility: java.VisibilityPublic,
			Super:      java.ClassType("java.lang.Object"),
			Doc:        `Prints """ markers.`,
		}

		block, _, _ := emitOne(t, g, "com.example", cls)

		want := `class Quoted(java.lang.Object):
    """
    Prints ''' markers.
    """
    ...
`
		textDiff(t, want, blockText(block))
	})

	t.Run("docstrings disabled", func(t *testing.T) {
		cls := &java.Class{
			Name:       "com.example.Widget",
			Visibility: java.VisibilityPublic,
			Super:      java.ClassType("java.lang.Object"),
			Doc:        "A widget.",
			Members: []java.Member{
				{Kind: java.MemberMethod, Name: "draw", Visibility: java.VisibilityPublic,
					Doc: "Draws it."},
			},
		}

		block, _, _ := emitOne(t, generator{types: mapper{}}, "com.example", cls)

		want := `class Widget(java.lang.Object):
    def draw(self) -> None: ...
`
		textDiff(t, want, blockText(block))
	})
}

func TestEmitEmptyClass(t *testing.T) {
	cls := &java.Class{
		Name:       "com.example.Empty",
		Visibility: java.VisibilityPublic,
		Super:      java.ClassType("java.lang.Object"),
	}

	block, _, _ := emitOne(t, generator{types: mapper{}}, "com.example", cls)

	want := "class Empty(java.lang.Object): ...\n"
	textDiff(t, want, blockText(block))
}

func TestEmitKeywordNames(t *testing.T) {
	cls := &java.Class{
		Name:       "com.example.import",
		Visibility: java.VisibilityPublic,
		Super:      java.ClassType("java.lang.Object"),
		Members: []java.Member{
			{Kind: java.MemberField, Name: "lambda", Visibility: java.VisibilityPublic,
				Type: java.PrimitiveType("int")},
			{Kind: java.MemberMethod, Name: "print", Visibility: java.VisibilityPublic,
				Params: []java.Param{{Name: "class", Type: java.PrimitiveType("int")}}},
		},
	}

	block, _, _ := emitOne(t, generator{types: mapper{}}, "com.example", cls)

	want := `class import_(java.lang.Object):
    lambda_: int = ...
    def print_(self, class_: int) -> None: ...
`
	textDiff(t, want, blockText(block))
}

func TestEmitUnnamedArgs(t *testing.T) {
	cls := &java.Class{
		Name:       "com.example.Sink",
		Visibility: java.VisibilityPublic,
		Super:      java.ClassType("java.lang.Object"),
		Members: []java.Member{
			{Kind: java.MemberMethod, Name: "accept", Visibility: java.VisibilityPublic,
				Params: []java.Param{
					{Type: java.ClassType("java.lang.String")},
					{Type: java.ClassType("java.lang.String")},
					{Type: java.ArrayType(java.PrimitiveType("byte"))},
				}},
			{Kind: java.MemberMethod, Name: "mark", Visibility: java.VisibilityPublic,
				Params: []java.Param{{Name: "__pos__", Type: java.PrimitiveType("int")}}},
		},
	}

	block, _, _ := emitOne(t, generator{types: mapper{}}, "com.example", cls)

	want := `class Sink(java.lang.Object):
    def accept(self, string: java.lang.String, string2: java.lang.String, byteArray: typing.List[int]) -> None: ...
    def mark(self, invalidArgName1: int) -> None: ...
`
	textDiff(t, want, blockText(block))
}

func TestInferArgName(t *testing.T) {
	tests := []struct {
		name     string
		ref      *java.TypeRef
		prior    []string
		position int
		want     string
	}{
		{"class type", java.ClassType("java.lang.String"), []string{"self"}, 1, "string"},
		{"primitive", java.PrimitiveType("int"), []string{"self"}, 1, "int"},
		{"second occurrence", java.ClassType("java.lang.String"), []string{"self", "string"}, 2, "string2"},
		{"third occurrence", java.ClassType("java.lang.String"), []string{"self", "string", "string2"}, 3, "string3"},
		{"array", java.ArrayType(java.ClassType("java.lang.String")), []string{"self"}, 1, "stringArray"},
		{"nested class", java.ClassType("java.util.Map$Entry"), []string{"self"}, 1, "entry"},
		{"type variable", java.TypeVarType("T"), []string{"self"}, 1, "t"},
		{"no type", nil, []string{"self"}, 1, "arg1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inferArgName(tt.ref, tt.prior, tt.position); got != tt.want {
				t.Errorf("inferArgName() = %q, want %q", got, tt.want)
			}
		})
	}
}
