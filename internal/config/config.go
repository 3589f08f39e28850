// Package config 读取 sstc.toml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pelletier/go-toml/v2"

	"github.com/tangzhangming/sstc/internal/jvmgen"
)

// ConfigFileName 配置文件名
const ConfigFileName = "sstc.toml"

// Config 编译配置
type Config struct {
	Debug           bool   `toml:"debug"`
	OutputDir       string `toml:"output_dir"`
	SourceExtension string `toml:"source_extension"`
	ClassExtension  string `toml:"class_extension"`
	MajorVersion    uint16 `toml:"major_version"`
	MinorVersion    uint16 `toml:"minor_version"`
	SuperClass      string `toml:"super_class"`
	LineNumbers     bool   `toml:"line_numbers"`

	Log LogConfig `toml:"log"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level"`  // debug | info | warn | error
	Format string `toml:"format"` // console | json
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		OutputDir:       ".",
		SourceExtension: jvmgen.DefaultSourceExtension,
		ClassExtension:  jvmgen.DefaultClassExtension,
		MajorVersion:    jvmgen.ClassMajorVersion,
		MinorVersion:    jvmgen.ClassMinorVersion,
		SuperClass:      jvmgen.DefaultSuperClass,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load 从文件加载配置，未出现的键保留默认值
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate 检查配置取值
func (c *Config) Validate() error {
	var result *multierror.Error
	if c.SuperClass == "" || strings.Contains(c.SuperClass, ".") {
		result = multierror.Append(result,
			fmt.Errorf("super_class %q must be an internal name such as java/lang/Object", c.SuperClass))
	}
	if c.MajorVersion < 45 {
		result = multierror.Append(result, fmt.Errorf("major_version %d is below 45", c.MajorVersion))
	}
	if !strings.HasPrefix(c.SourceExtension, ".") {
		result = multierror.Append(result, fmt.Errorf("source_extension %q must start with '.'", c.SourceExtension))
	}
	if !strings.HasPrefix(c.ClassExtension, ".") {
		result = multierror.Append(result, fmt.Errorf("class_extension %q must start with '.'", c.ClassExtension))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		result = multierror.Append(result, fmt.Errorf("log.format %q must be console or json", c.Log.Format))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// GeneratorOptions 转换为生成选项
func (c *Config) GeneratorOptions() jvmgen.Options {
	return jvmgen.Options{
		SuperClass:      c.SuperClass,
		SourceExtension: c.SourceExtension,
		MajorVersion:    c.MajorVersion,
		MinorVersion:    c.MinorVersion,
		LineNumbers:     c.LineNumbers,
		Debug:           c.Debug,
	}
}

// Save 保存配置到文件
func (c *Config) Save(path string) error {
	content := generateConfigWithComments(c)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// generateConfigWithComments 生成带注释的配置文件内容
func generateConfigWithComments(c *Config) string {
	var sb strings.Builder

	sb.WriteString("# 输出常量池与构造函数字节码\n")
	sb.WriteString(fmt.Sprintf("debug = %t\n\n", c.Debug))
	sb.WriteString("# class 文件输出目录\n")
	sb.WriteString(fmt.Sprintf("output_dir = %q\n\n", c.OutputDir))
	sb.WriteString("# SourceFile 属性中的源文件扩展名\n")
	sb.WriteString(fmt.Sprintf("source_extension = %q\n", c.SourceExtension))
	sb.WriteString(fmt.Sprintf("class_extension = %q\n\n", c.ClassExtension))
	sb.WriteString("# class 文件版本（52 = Java 8）\n")
	sb.WriteString(fmt.Sprintf("major_version = %d\n", c.MajorVersion))
	sb.WriteString(fmt.Sprintf("minor_version = %d\n\n", c.MinorVersion))
	sb.WriteString("# 父类内部名\n")
	sb.WriteString(fmt.Sprintf("super_class = %q\n\n", c.SuperClass))
	sb.WriteString("# 为构造函数写出 LineNumberTable\n")
	sb.WriteString(fmt.Sprintf("line_numbers = %t\n\n", c.LineNumbers))
	sb.WriteString("[log]\n")
	sb.WriteString("# debug | info | warn | error\n")
	sb.WriteString(fmt.Sprintf("level = %q\n", c.Log.Level))
	sb.WriteString("# console | json\n")
	sb.WriteString(fmt.Sprintf("format = %q\n", c.Log.Format))

	return sb.String()
}

// Find 从指定路径向上查找配置文件
// 返回配置文件的完整路径，如果找不到则返回空字符串
func Find(startPath string) string {
	info, err := os.Stat(startPath)
	if err != nil {
		return ""
	}

	dir := startPath
	if !info.IsDir() {
		dir = filepath.Dir(startPath)
	}

	dir, err = filepath.Abs(dir)
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
