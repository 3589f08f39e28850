package jvmgen

// JVM 操作码常量
// 只定义 JavaSST 子集需要的操作码
const (
	// 常量操作
	OpIconstM1 = 0x02 // 将 -1 压入栈
	OpIconst0  = 0x03 // 将 0 压入栈
	OpIconst1  = 0x04 // 将 1 压入栈
	OpIconst2  = 0x05 // 将 2 压入栈
	OpIconst3  = 0x06 // 将 3 压入栈
	OpIconst4  = 0x07 // 将 4 压入栈
	OpIconst5  = 0x08 // 将 5 压入栈
	OpBipush   = 0x10 // 将单字节常量压入栈

	// 加载操作
	OpAload0 = 0x2A // 将局部变量 0 (引用类型) 压入栈

	// 控制流
	OpReturn = 0xB1 // void 返回

	// 字段操作
	OpGetfield = 0xB4 // 获取实例字段
	OpPutfield = 0xB5 // 设置实例字段

	// 方法调用
	OpInvokespecial = 0xB7 // 调用构造方法/父类方法/私有方法
)

// opcodeNames 反汇编用的助记符
var opcodeNames = map[byte]string{
	OpIconstM1:      "iconst_m1",
	OpIconst0:       "iconst_0",
	OpIconst1:       "iconst_1",
	OpIconst2:       "iconst_2",
	OpIconst3:       "iconst_3",
	OpIconst4:       "iconst_4",
	OpIconst5:       "iconst_5",
	OpBipush:        "bipush",
	OpAload0:        "aload_0",
	OpReturn:        "return",
	OpGetfield:      "getfield",
	OpPutfield:      "putfield",
	OpInvokespecial: "invokespecial",
}

// operandWidth 返回操作码后跟的操作数字节数
func operandWidth(op byte) int {
	switch op {
	case OpBipush:
		return 1
	case OpGetfield, OpPutfield, OpInvokespecial:
		return 2
	default:
		return 0
	}
}
