package jvmgen

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangzhangming/sstc/internal/ast"
	"github.com/tangzhangming/sstc/internal/errors"
)

// bogusEntry 不属于格式定义的常量类型
type bogusEntry struct{}

func (bogusEntry) Tag() uint8     { return 99 }
func (bogusEntry) constantEntry() {}

func compile(t *testing.T, opts Options, class *ast.Class) []byte {
	t.Helper()
	data, err := NewGenerator(opts).Compile(class)
	require.NoError(t, err)
	return data
}

func TestSerializeEmptyClass(t *testing.T) {
	got := compile(t, Options{}, newClass("Empty").build())

	want := new(be)
	want.u4(0xCAFEBABE).u2(0, 52).u2(14)
	want.u1(ConstantMethodref).u2(2, 3)
	want.u1(ConstantClass).u2(4)
	want.u1(ConstantNameAndType).u2(5, 6)
	want.utf8("java/lang/Object").utf8("<init>").utf8("()V")
	want.u1(ConstantClass).u2(8)
	want.utf8("Empty")
	want.utf8("Code").utf8("LineNumberTable").utf8("StackMapTable")
	want.utf8("SourceFile").utf8("Empty.java")
	want.u2(0x0001, 7, 2) // access, this, super
	want.u2(0)            // interfaces
	want.u2(0)            // fields
	want.u2(1)            // methods
	want.u2(0x0000, 5, 6, 1)
	want.u2(9).u4(17).u2(2, 1).u4(5).u1(0x2A, 0xB7, 0x00, 0x01, 0xB1).u2(0, 0)
	want.u2(1).u2(12).u4(2).u2(13)

	assert.Equal(t, want.Bytes(), got)
}

func TestSerializeFinalField(t *testing.T) {
	got := compile(t, Options{}, newClass("C").final("x", 5).build())

	// access_flags 之后：字段表与方法表
	want := new(be)
	want.u2(0x0001, 7, 2, 0)
	want.u2(1)
	want.u2(AccFinal, 11, 12, 1).u2(13).u4(2).u2(14)
	want.u2(1)
	want.u2(0, 5, 6, 1)
	want.u2(15).u4(22).u2(2, 1).u4(10)
	want.u1(0x2A, 0xB7, 0x00, 0x01, 0x2A, 0x08, 0xB5, 0x00, 0x09, 0xB1)
	want.u2(0, 0)
	want.u2(1).u2(18).u4(2).u2(19)

	assert.True(t, bytes.HasSuffix(got, want.Bytes()), "tail mismatch:\n% X", got)

	integer := new(be).u1(ConstantInteger).u4(5).Bytes()
	assert.True(t, bytes.Contains(got, integer))
}

func TestSerializeUnknownTag(t *testing.T) {
	pool := NewConstantPool()
	_, err := pool.Add(&ConstantUtf8Info{Value: "ok"})
	require.NoError(t, err)
	_, err = pool.Add(bogusEntry{})
	require.NoError(t, err)

	cf := NewClassFile(pool)
	_, err = cf.ToBytes()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.E0900))
	assert.True(t, errors.IsKind(err, errors.KindFormat))

	var out bytes.Buffer
	require.Error(t, cf.Write(&out))
	assert.Zero(t, out.Len(), "no partial output on failure")
}

func TestSerializeUtf8TooLong(t *testing.T) {
	pool := NewConstantPool()
	_, err := pool.Add(&ConstantUtf8Info{Value: strings.Repeat("a", 0x10000)})
	require.NoError(t, err)

	_, err = NewClassFile(pool).ToBytes()
	assert.True(t, errors.HasCode(err, errors.E0904))
}

func TestSerializeOversizedCode(t *testing.T) {
	cf := NewClassFile(NewConstantPool())
	cf.Methods = []MethodInfo{{Code: &CodeAttribute{Code: make([]byte, MaxCodeLength+1)}}}

	_, err := cf.ToBytes()
	assert.True(t, errors.HasCode(err, errors.E0901))
}

func TestSerializeLineNumberTable(t *testing.T) {
	class := newClass("L").build()
	class.Pos.Line = 3
	got := compile(t, Options{LineNumbers: true}, class)

	want := new(be)
	want.u2(9).u4(29).u2(2, 1).u4(5).u1(0x2A, 0xB7, 0x00, 0x01, 0xB1).u2(0)
	want.u2(1)
	want.u2(10).u4(6).u2(1).u2(0, 3)
	assert.True(t, bytes.Contains(got, want.Bytes()), "% X", got)
}

func TestSerializeVersionOverride(t *testing.T) {
	got := compile(t, Options{MajorVersion: 61, MinorVersion: 3}, newClass("V").build())
	assert.Equal(t, []byte{0xCA, 0xFE, 0xBA, 0xBE, 0x00, 0x03, 0x00, 0x3D}, got[:8])
}

func TestSerializeIsDeterministic(t *testing.T) {
	build := func() *ast.Class {
		b := newClass("Det").final("a", 1).final("b", -7).global("g").global("h")
		m := b.method("m", ast.TypeInt, "x")
		b.method("n", ast.TypeVoid)
		m.Body = chain(assign(b.ref("g"), b.call("n")), &ast.Node{Kind: ast.NodeReturn, Left: b.ref("x")})
		return b.build()
	}

	first := compile(t, Options{}, build())
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, compile(t, Options{}, build()))
	}
}
