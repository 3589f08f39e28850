package jvmgen

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/tangzhangming/sstc/internal/ast"
	"github.com/tangzhangming/sstc/internal/errors"
)

// 默认选项
const (
	DefaultSuperClass      = "java/lang/Object"
	DefaultSourceExtension = ".java"
	DefaultClassExtension  = ".class"
)

// Options 生成选项
type Options struct {
	SuperClass      string // 父类内部名
	SourceExtension string // SourceFile 属性使用的扩展名
	MajorVersion    uint16
	MinorVersion    uint16
	LineNumbers     bool // 为构造函数写出 LineNumberTable

	Debug    bool      // 输出常量池与字节码
	DebugOut io.Writer // 默认 os.Stderr

	Logger *zap.Logger // 为 nil 时不记录日志
}

// DefaultOptions 返回默认选项
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.SuperClass == "" {
		o.SuperClass = DefaultSuperClass
	}
	if o.SourceExtension == "" {
		o.SourceExtension = DefaultSourceExtension
	}
	if o.MajorVersion == 0 {
		o.MajorVersion = ClassMajorVersion
	}
	if o.DebugOut == nil {
		o.DebugOut = os.Stderr
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Generator JVM class 文件生成器
//
// 串联 PoolBuilder、Emitter 与 ClassFile。一个 Generator 可以顺序编译多个类，
// 但不能被多个 goroutine 同时使用。
type Generator struct {
	opts    Options
	log     *zap.Logger
	builder *PoolBuilder
	emitter *Emitter
}

// NewGenerator 创建生成器
func NewGenerator(opts Options) *Generator {
	opts = opts.withDefaults()
	return &Generator{
		opts:    opts,
		log:     opts.Logger.Named("jvmgen"),
		builder: NewPoolBuilder(opts),
		emitter: NewEmitter(opts),
	}
}

// Options 返回生效的选项
func (g *Generator) Options() Options {
	return g.opts
}

// Generate 生成 class 文件结构
func (g *Generator) Generate(class *ast.Class) (*ClassFile, error) {
	sk, err := g.builder.Build(class)
	if err != nil {
		return nil, err
	}

	code, err := g.emitter.EmitConstructor(sk)
	if err != nil {
		return nil, err
	}

	cf := NewClassFile(sk.Pool)
	cf.MajorVersion = g.opts.MajorVersion
	cf.MinorVersion = g.opts.MinorVersion
	cf.ThisClass = sk.ThisClass
	cf.SuperClass = sk.SuperClass
	cf.Fields = sk.Fields
	cf.Methods = make([]MethodInfo, len(sk.Methods))
	copy(cf.Methods, sk.Methods)
	cf.Methods[0].Code = code
	cf.SourceFile = sk.SourceFile

	g.log.Debug("class generated",
		zap.String("class", sk.ClassName),
		zap.Int("constants", sk.Pool.Len()),
		zap.Int("fields", len(cf.Fields)),
		zap.Int("methods", len(cf.Methods)))

	if g.opts.Debug {
		g.dump(sk.ClassName, cf)
	}
	return cf, nil
}

// Compile 生成 class 文件字节
func (g *Generator) Compile(class *ast.Class) ([]byte, error) {
	cf, err := g.Generate(class)
	if err != nil {
		return nil, err
	}
	return cf.ToBytes()
}

// Output 一个类的编译结果
type Output struct {
	Path string
	Data []byte
}

// CompileToFile 编译并写入 dir/<类名><ext>
//
// 写出失败时仍返回已生成的 Output，调用方可以用 WriteClassFile 重试。
func (g *Generator) CompileToFile(class *ast.Class, dir, ext string) (*Output, error) {
	data, err := g.Compile(class)
	if err != nil {
		return nil, err
	}
	if ext == "" {
		ext = DefaultClassExtension
	}
	out := &Output{Path: filepath.Join(dir, class.Name()+ext), Data: data}
	if err := WriteClassFile(out.Path, out.Data); err != nil {
		g.log.Warn("write failed", zap.String("path", out.Path), zap.Error(err))
		return out, err
	}
	g.log.Info("wrote class file", zap.String("path", out.Path), zap.Int("bytes", len(data)))
	return out, nil
}

func (g *Generator) dump(name string, cf *ClassFile) {
	w := g.opts.DebugOut
	fmt.Fprintf(w, "=== %s ===\n", name)
	DumpConstantPool(w, cf.Pool)
	fmt.Fprintln(w, "Code (<init>):")
	Disassemble(w, cf.Methods[0].Code.Code)
	HexDump(w, cf.Methods[0].Code.Code)
}

// WriteClassFile 原子地写出 class 文件
//
// 先写入同目录下的临时文件再重命名，失败时不会留下不完整的目标文件。
func WriteClassFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.IO(path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.IO(path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return errors.IO(path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.IO(path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return errors.IO(path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return errors.IO(path, err)
	}
	return nil
}
