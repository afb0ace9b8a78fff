// Package mark 为handler附加swagger元数据
//
//	store := mark.New()
//	store.Mark(ListUser,
//		mark.Summary("User index."),
//		mark.Query("page", oas.KindInteger, true),
//		mark.ResponseObject(200, oas.Node{"description": "List of users."}),
//	)
//
// 多次标记会合并到同一份元数据 不会互相覆盖
package mark

import (
	"fmt"
	"reflect"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/parkingwang/swag/pkg/merge"
	"github.com/parkingwang/swag/pkg/oas"
)

// ID handler的唯一标识 使用函数的完整名称
// 同名的匿名函数在路由表中以 name#n 区分
type ID string

// 闭包 pkg.F.func1 / pkg.F.func1.2 / pkg.glob..func1
// 方法值 pkg.(*T).M-fm
var anonymousName = regexp.MustCompile(`\.func\d+(\.\d+)*$|-fm$`)

// Name 去掉注册序号
func (id ID) Name() string {
	name, _, _ := strings.Cut(string(id), "#")
	return name
}

// Anonymous 闭包或方法值 同一个名称可能对应多个不同的handler
func (id ID) Anonymous() bool {
	return anonymousName.MatchString(id.Name())
}

// Nth 第n次出现的标识 第一次保持原名
func (id ID) Nth(n int) ID {
	if n <= 1 {
		return ID(id.Name())
	}
	return ID(id.Name() + "#" + strconv.Itoa(n))
}

// IDOf 获取handler的标识
// 支持 ID string 以及任意函数
func IDOf(h any) ID {
	switch v := h.(type) {
	case ID:
		return v
	case string:
		return ID(v)
	}
	rv := reflect.ValueOf(h)
	if rv.Kind() != reflect.Func {
		panic(fmt.Sprintf("mark: handler must be a func, got %T", h))
	}
	return ID(runtime.FuncForPC(rv.Pointer()).Name())
}

// Store 保存每个handler的元数据
// 路由注册阶段写入 生成文档时只读
type Store struct {
	mu        sync.RWMutex
	marks     map[ID]oas.Node
	importers map[string]oas.Importer
	strict    bool
}

// Option Store选项
type Option func(*Store)

// WithImporter 注册schema转换器
func WithImporter(system string, imp oas.Importer) Option {
	return func(s *Store) {
		s.importers[system] = imp
	}
}

// WithDefaultImporters 注册内置的struct和jsonschema转换器
func WithDefaultImporters() Option {
	return func(s *Store) {
		s.importers[oas.ImportStruct] = oas.StructImporter{Tag: "json"}
		s.importers[oas.ImportJSONSchema] = oas.JSONSchemaImporter{}
	}
}

// Strict 严格模式 参数与响应使用严格模式构造 原始schema需要能够编译
func Strict() Option {
	return func(s *Store) {
		s.strict = true
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		marks:     make(map[ID]oas.Node),
		importers: make(map[string]oas.Importer),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Get 获取handler的元数据 不存在时创建
// 返回的是store中保存的同一个实例
func (s *Store) Get(h any) oas.Node {
	id := IDOf(h)
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.marks[id]
	if !ok {
		m = oas.Node{}
		s.marks[id] = m
	}
	return m
}

// Lookup 只读获取 不会创建
func (s *Store) Lookup(h any) (oas.Node, bool) {
	id := IDOf(h)
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.marks[id]
	return m, ok
}

// Set 整体替换
func (s *Store) Set(h any, m oas.Node) {
	id := IDOf(h)
	s.mu.Lock()
	defer s.mu.Unlock()
	if m == nil {
		m = oas.Node{}
	}
	s.marks[id] = m
}

// Update 浅覆盖顶层字段
func (s *Store) Update(h any, fragment oas.Node) {
	id := IDOf(h)
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.marks[id]
	if !ok {
		m = oas.Node{}
		s.marks[id] = m
	}
	for k, v := range fragment {
		m[k] = v
	}
}

// MergeIn 深度合并
func (s *Store) MergeIn(h any, fragment oas.Node) {
	id := IDOf(h)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marks[id] = merge.Maps(s.marks[id], fragment)
}

// modify 读取与写回在同一把锁内完成
func (s *Store) modify(id ID, fn func(oas.Node) oas.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marks[id] = fn(s.marks[id])
}

// Remove 删除指定的顶层字段
func (s *Store) Remove(h any, fields ...string) {
	id := IDOf(h)
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.marks[id]
	if !ok {
		return
	}
	for _, f := range fields {
		delete(m, f)
	}
}

// Mark 按顺序应用标记
func (s *Store) Mark(h any, anns ...Annotation) error {
	id := IDOf(h)
	for _, a := range anns {
		if err := a(s, id); err != nil {
			return fmt.Errorf("mark %s: %w", id, err)
		}
	}
	return nil
}

// MustMark 同Mark 失败时panic 适合在路由注册时使用
func (s *Store) MustMark(h any, anns ...Annotation) {
	if err := s.Mark(h, anns...); err != nil {
		panic(err)
	}
}

func (s *Store) buildOptions() []oas.BuildOption {
	return []oas.BuildOption{oas.StrictIf(s.strict)}
}

func (s *Store) resolveSchema(src oas.SchemaSource) (oas.Node, error) {
	s.mu.RLock()
	importers := s.importers
	s.mu.RUnlock()
	n, err := src.Resolve(importers)
	if err != nil {
		return nil, err
	}
	if s.strict && src.IsRaw() {
		if err := oas.CheckSchema(n); err != nil {
			return nil, err
		}
	}
	return n, nil
}
