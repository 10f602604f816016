package binding

import "testing"

func TestCodeBuilder_Indentation(t *testing.T) {
	b := NewCodeBuilder(2)
	b.Line("void f() {")
	b.Indent()
	b.Line("a();")
	b.Indent()
	b.Linef("b(%d);", 1)
	b.Dedent()
	b.Dedent()
	b.Dedent() // no-op below zero
	b.Line("}")

	want := "void f() {\n  a();\n    b(1);\n}\n"
	if got := b.String(); got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
	if b.Lines() != 4 {
		t.Errorf("Lines() = %d, want 4", b.Lines())
	}
}

func TestCodeBuilder_BlankAndComment(t *testing.T) {
	b := NewCodeBuilder(4)
	b.Indent()
	b.Comment("first\n\nsecond")
	b.Blank()
	b.Line("x;\ny;")

	want := "    // first\n    //\n    // second\n\n    x;\n    y;\n"
	if got := b.String(); got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestCodeBuilder_Block(t *testing.T) {
	b := NewCodeBuilder(0)
	b.Block("{", func() { b.Line("inner;") }, "}")
	if got, want := b.String(), "{\n    inner;\n}\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if b.Level() != 0 {
		t.Errorf("Level() = %d after Block, want 0", b.Level())
	}
}
