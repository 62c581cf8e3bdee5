package classfile_test

import (
	"bytes"
	"testing"

	"github.com/dhamidi/stubgen/classfile"
	"github.com/dhamidi/stubgen/classfile/classfiletest"
)

func parse(t *testing.T, c classfiletest.Class) *classfile.ClassFile {
	t.Helper()
	cf, err := classfile.Parse(bytes.NewReader(classfiletest.Build(c)))
	if err != nil {
		t.Fatalf("Failed to parse class file: %v", err)
	}
	return cf
}

func TestParseClassFile(t *testing.T) {
	cf := parse(t, classfiletest.Class{
		Flags:      classfile.AccPublic,
		Name:       "com/example/Widget",
		Super:      "java/lang/Object",
		Interfaces: []string{"java/lang/Runnable"},
		Signature:  "<T:Ljava/lang/Object;>Ljava/lang/Object;Ljava/lang/Runnable;",
		SourceFile: "Widget.java",
		Fields: []classfiletest.Member{
			{
				Flags:      classfile.AccPublic | classfile.AccStatic | classfile.AccFinal,
				Name:       "MAX_SIZE",
				Descriptor: "I",
			},
			{
				Flags:      classfile.AccPrivate,
				Name:       "name",
				Descriptor: "Ljava/lang/String;",
				Signature:  "TT;",
			},
		},
		Methods: []classfiletest.Member{
			{
				Flags:      classfile.AccPublic,
				Name:       "<init>",
				Descriptor: "()V",
			},
			{
				Flags:      classfile.AccPublic,
				Name:       "run",
				Descriptor: "()V",
			},
			{
				Flags:      classfile.AccPublic | classfile.AccVarargs,
				Name:       "join",
				Descriptor: "([Ljava/lang/String;)Ljava/lang/String;",
				Exceptions: []string{"java/io/IOException"},
				Deprecated: true,
			},
		},
	})

	t.Run("class name", func(t *testing.T) {
		expected := "com/example/Widget"
		if got := cf.ClassName(); got != expected {
			t.Errorf("ClassName() = %q, want %q", got, expected)
		}
	})

	t.Run("super class", func(t *testing.T) {
		expected := "java/lang/Object"
		if got := cf.SuperClassName(); got != expected {
			t.Errorf("SuperClassName() = %q, want %q", got, expected)
		}
	})

	t.Run("interfaces", func(t *testing.T) {
		interfaces := cf.InterfaceNames()
		if len(interfaces) != 1 {
			t.Fatalf("Expected 1 interface, got %d", len(interfaces))
		}
		if interfaces[0] != "java/lang/Runnable" {
			t.Errorf("Interface[0] = %q, want %q", interfaces[0], "java/lang/Runnable")
		}
	})

	t.Run("access flags", func(t *testing.T) {
		if !cf.AccessFlags.IsPublic() {
			t.Error("Expected class to be public")
		}
		if !cf.IsClass() {
			t.Error("Expected IsClass() to be true")
		}
		if cf.IsInterface() {
			t.Error("Expected IsInterface() to be false")
		}
	})

	t.Run("signature", func(t *testing.T) {
		expected := "<T:Ljava/lang/Object;>Ljava/lang/Object;Ljava/lang/Runnable;"
		if got := cf.Signature(); got != expected {
			t.Errorf("Signature() = %q, want %q", got, expected)
		}
	})

	t.Run("source file", func(t *testing.T) {
		if got := cf.SourceFile(); got != "Widget.java" {
			t.Errorf("SourceFile() = %q, want %q", got, "Widget.java")
		}
	})

	t.Run("fields", func(t *testing.T) {
		if len(cf.Fields) != 2 {
			t.Fatalf("Expected 2 fields, got %d", len(cf.Fields))
		}
		cp := cf.ConstantPool

		maxSize := cf.Fields[0]
		if maxSize.Name(cp) != "MAX_SIZE" {
			t.Errorf("Fields[0].Name = %q, want %q", maxSize.Name(cp), "MAX_SIZE")
		}
		if !maxSize.IsPublic() || !maxSize.IsStatic() || !maxSize.IsFinal() {
			t.Error("MAX_SIZE should be public static final")
		}
		if maxSize.Descriptor(cp) != "I" {
			t.Errorf("MAX_SIZE descriptor = %q, want %q", maxSize.Descriptor(cp), "I")
		}

		name := cf.Fields[1]
		if name.IsPublic() {
			t.Error("name should not be public")
		}
		if name.Signature(cp) != "TT;" {
			t.Errorf("name signature = %q, want %q", name.Signature(cp), "TT;")
		}
	})

	t.Run("methods", func(t *testing.T) {
		if len(cf.Methods) != 3 {
			t.Fatalf("Expected 3 methods, got %d", len(cf.Methods))
		}
		cp := cf.ConstantPool

		init := cf.Methods[0]
		if !init.IsConstructor(cp) {
			t.Error("Expected <init> to be a constructor")
		}

		join := cf.Methods[2]
		if !join.IsVarargs() {
			t.Error("Expected join to be varargs")
		}
		if !join.IsDeprecated(cp) {
			t.Error("Expected join to be deprecated")
		}
		exceptions := join.ExceptionNames(cp)
		if len(exceptions) != 1 || exceptions[0] != "java/io/IOException" {
			t.Errorf("ExceptionNames = %v, want [java/io/IOException]", exceptions)
		}
	})

	t.Run("absent attributes", func(t *testing.T) {
		if cf.GetAttribute("Deprecated") != nil {
			t.Error("Expected no Deprecated attribute on the class")
		}
		if cf.IsDeprecated() {
			t.Error("Expected IsDeprecated() to be false")
		}
	})
}

func TestParseRejectsBadMagic(t *testing.T) {
	data := classfiletest.Build(classfiletest.Class{
		Flags: classfile.AccPublic,
		Name:  "com/example/Bad",
		Super: "java/lang/Object",
	})
	data[0] = 0xDE

	_, err := classfile.Parse(bytes.NewReader(data))
	if err == nil {
		t.Fatal("Expected an error for a bad magic number")
	}
}

func TestParseTruncated(t *testing.T) {
	data := classfiletest.Build(classfiletest.Class{
		Flags: classfile.AccPublic,
		Name:  "com/example/Cut",
		Super: "java/lang/Object",
		Methods: []classfiletest.Member{
			{Flags: classfile.AccPublic, Name: "run", Descriptor: "()V"},
		},
	})

	_, err := classfile.Parse(bytes.NewReader(data[:len(data)-3]))
	if err == nil {
		t.Fatal("Expected an error for truncated input")
	}
}

func TestParseEnum(t *testing.T) {
	cf := parse(t, classfiletest.Class{
		Flags: classfile.AccPublic | classfile.AccFinal | classfile.AccEnum,
		Name:  "com/example/Color",
		Super: "java/lang/Enum",
		Fields: []classfiletest.Member{
			{Flags: classfile.AccPublic | classfile.AccStatic | classfile.AccFinal | classfile.AccEnum, Name: "RED", Descriptor: "Lcom/example/Color;"},
			{Flags: classfile.AccPublic | classfile.AccStatic | classfile.AccFinal | classfile.AccEnum, Name: "GREEN", Descriptor: "Lcom/example/Color;"},
			{Flags: classfile.AccPublic | classfile.AccStatic | classfile.AccFinal | classfile.AccSynthetic, Name: "$VALUES", Descriptor: "[Lcom/example/Color;"},
		},
	})

	if !cf.IsEnum() {
		t.Error("Expected IsEnum() to be true")
	}

	cp := cf.ConstantPool
	var constants []string
	for _, f := range cf.Fields {
		if f.IsEnum() {
			constants = append(constants, f.Name(cp))
		}
	}
	want := []string{"RED", "GREEN"}
	if len(constants) != len(want) {
		t.Fatalf("Enum constants = %v, want %v", constants, want)
	}
	for i := range want {
		if constants[i] != want[i] {
			t.Errorf("Enum constant %d = %q, want %q", i, constants[i], want[i])
		}
	}
}

func TestNestedClassNames(t *testing.T) {
	cf := parse(t, classfiletest.Class{
		Flags: classfile.AccPublic,
		Name:  "com/example/Outer",
		Super: "java/lang/Object",
		Inner: []classfiletest.InnerClass{
			{Inner: "com/example/Outer$First", Outer: "com/example/Outer", Name: "First", Flags: classfile.AccPublic | classfile.AccStatic},
			{Inner: "com/example/Outer$Second", Outer: "com/example/Outer", Name: "Second", Flags: classfile.AccPublic},
			{Inner: "com/example/Outer$1", Outer: "com/example/Outer", Name: "", Flags: 0},
			{Inner: "com/example/Other$Nested", Outer: "com/example/Other", Name: "Nested", Flags: classfile.AccPublic},
		},
	})

	got := cf.NestedClassNames()
	want := []string{"com/example/Outer$First", "com/example/Outer$Second"}
	if len(got) != len(want) {
		t.Fatalf("NestedClassNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NestedClassNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	entry := cf.InnerClassOf("com/example/Outer$First")
	if entry == nil {
		t.Fatal("Expected an InnerClasses entry for Outer$First")
	}
	if !entry.InnerClassAccessFlags.IsStatic() {
		t.Error("Expected Outer$First to be static")
	}
}

func TestIsLocalOrAnonymous(t *testing.T) {
	t.Run("enclosing method", func(t *testing.T) {
		cf := parse(t, classfiletest.Class{
			Flags:          0,
			Name:           "com/example/Outer$1Local",
			Super:          "java/lang/Object",
			EnclosingClass: "com/example/Outer",
		})
		if !cf.IsLocalOrAnonymous() {
			t.Error("Expected a local class to report IsLocalOrAnonymous()")
		}
	})

	t.Run("anonymous inner entry", func(t *testing.T) {
		cf := parse(t, classfiletest.Class{
			Flags: 0,
			Name:  "com/example/Outer$1",
			Super: "java/lang/Object",
			Inner: []classfiletest.InnerClass{
				{Inner: "com/example/Outer$1", Outer: "", Name: "", Flags: 0},
			},
		})
		if !cf.IsLocalOrAnonymous() {
			t.Error("Expected an anonymous class to report IsLocalOrAnonymous()")
		}
	})

	t.Run("plain nested class", func(t *testing.T) {
		cf := parse(t, classfiletest.Class{
			Flags: classfile.AccPublic,
			Name:  "com/example/Outer$Nested",
			Super: "java/lang/Object",
			Inner: []classfiletest.InnerClass{
				{Inner: "com/example/Outer$Nested", Outer: "com/example/Outer", Name: "Nested", Flags: classfile.AccPublic},
			},
		})
		if cf.IsLocalOrAnonymous() {
			t.Error("Expected a named nested class to not report IsLocalOrAnonymous()")
		}
	})
}

func TestParameterNames(t *testing.T) {
	t.Run("method parameters attribute", func(t *testing.T) {
		cf := parse(t, classfiletest.Class{
			Flags: classfile.AccPublic,
			Name:  "com/example/Named",
			Super: "java/lang/Object",
			Methods: []classfiletest.Member{
				{
					Flags:      classfile.AccPublic,
					Name:       "put",
					Descriptor: "(Ljava/lang/String;I)V",
					ParamNames: []string{"key", "value"},
				},
			},
		})

		got := cf.Methods[0].ParameterNames(cf.ConstantPool, 2, []int{1, 1})
		want := []string{"key", "value"}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("ParameterNames()[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("local variable table", func(t *testing.T) {
		cf := parse(t, classfiletest.Class{
			Flags: classfile.AccPublic,
			Name:  "com/example/Locals",
			Super: "java/lang/Object",
			Methods: []classfiletest.Member{
				{
					Flags:      classfile.AccPublic,
					Name:       "seek",
					Descriptor: "(JLjava/lang/String;)V",
					LocalNames: []string{"offset", "label"},
				},
			},
		})

		// The long parameter occupies two slots, so "label" sits in
		// slot 3, not slot 2.
		got := cf.Methods[0].ParameterNames(cf.ConstantPool, 2, []int{2, 1})
		want := []string{"offset", "label"}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("ParameterNames()[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("static method slots", func(t *testing.T) {
		cf := parse(t, classfiletest.Class{
			Flags: classfile.AccPublic,
			Name:  "com/example/StaticLocals",
			Super: "java/lang/Object",
			Methods: []classfiletest.Member{
				{
					Flags:      classfile.AccPublic | classfile.AccStatic,
					Name:       "of",
					Descriptor: "(I)V",
					LocalNames: []string{"count"},
				},
			},
		})

		got := cf.Methods[0].ParameterNames(cf.ConstantPool, 1, []int{1})
		if got[0] != "count" {
			t.Errorf("ParameterNames()[0] = %q, want %q", got[0], "count")
		}
	})

	t.Run("no name sources", func(t *testing.T) {
		cf := parse(t, classfiletest.Class{
			Flags: classfile.AccPublic,
			Name:  "com/example/Bare",
			Super: "java/lang/Object",
			Methods: []classfiletest.Member{
				{Flags: classfile.AccPublic, Name: "go", Descriptor: "(I)V"},
			},
		})

		got := cf.Methods[0].ParameterNames(cf.ConstantPool, 1, []int{1})
		if got[0] != "" {
			t.Errorf("ParameterNames()[0] = %q, want empty", got[0])
		}
	})
}
