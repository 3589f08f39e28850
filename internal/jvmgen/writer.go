package jvmgen

import (
	"bytes"
	"encoding/binary"

	"github.com/tangzhangming/sstc/internal/errors"
)

// ByteWriter 字节码写入器
//
// limit > 0 时写入总量不得超过 limit，超出后记录错误并丢弃后续写入，
// 调用方通过 Err 检查，不会静默截断。
type ByteWriter struct {
	buf   bytes.Buffer
	limit int
	err   error
}

// NewByteWriter 创建不限长度的写入器
func NewByteWriter() *ByteWriter {
	return &ByteWriter{}
}

// NewCodeWriter 创建受 code_length 上限约束的写入器
func NewCodeWriter() *ByteWriter {
	return &ByteWriter{limit: MaxCodeLength}
}

func (w *ByteWriter) reserve(n int) bool {
	if w.err != nil {
		return false
	}
	if w.limit > 0 && w.buf.Len()+n > w.limit {
		w.err = errors.Format(errors.E0901, "code length %d exceeds %d bytes", w.buf.Len()+n, w.limit)
		return false
	}
	return true
}

// WriteU8 写入无符号字节
func (w *ByteWriter) WriteU8(v uint8) {
	if w.reserve(1) {
		w.buf.WriteByte(v)
	}
}

// WriteI8 写入有符号字节
func (w *ByteWriter) WriteI8(v int8) {
	w.WriteU8(uint8(v))
}

// WriteU16 写入无符号短整型 (大端序)
func (w *ByteWriter) WriteU16(v uint16) {
	if w.reserve(2) {
		binary.Write(&w.buf, binary.BigEndian, v)
	}
}

// WriteU32 写入无符号整型 (大端序)
func (w *ByteWriter) WriteU32(v uint32) {
	if w.reserve(4) {
		binary.Write(&w.buf, binary.BigEndian, v)
	}
}

// WriteBytes 写入字节数组
func (w *ByteWriter) WriteBytes(b []byte) {
	if w.reserve(len(b)) {
		w.buf.Write(b)
	}
}

// Bytes 返回字节数组
func (w *ByteWriter) Bytes() []byte {
	return w.buf.Bytes()
}

// Len 返回当前长度
func (w *ByteWriter) Len() int {
	return w.buf.Len()
}

// Err 返回第一次越界写入的错误
func (w *ByteWriter) Err() error {
	return w.err
}

// Reset 重置写入器
func (w *ByteWriter) Reset() {
	w.buf.Reset()
	w.err = nil
}
