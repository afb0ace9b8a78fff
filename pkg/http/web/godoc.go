package web

import (
	"go/ast"
	"go/token"
	"runtime/debug"
	"strings"

	"github.com/parkingwang/swag/pkg/mark"
	"golang.org/x/tools/go/packages"
)

// funcRef 由函数完整名称拆分
//
//	github.com/a/b.List           -> pkg=github.com/a/b name=List
//	github.com/a/b.(*User).Get-fm -> pkg=github.com/a/b recv=User name=Get
type funcRef struct {
	pkg  string
	recv string
	name string
}

func parseFuncName(id mark.ID) (funcRef, bool) {
	s := id.Name()
	slash := strings.LastIndexByte(s, '/')
	dot := strings.IndexByte(s[slash+1:], '.')
	if dot < 0 {
		return funcRef{}, false
	}
	ref := funcRef{pkg: s[:slash+1+dot]}
	rest := strings.TrimSuffix(s[slash+1+dot+1:], "-fm")
	// 匿名函数没有文档
	if strings.Contains(rest, ".func") {
		return funcRef{}, false
	}
	if i := strings.LastIndexByte(rest, '.'); i >= 0 {
		recv := rest[:i]
		recv = strings.TrimPrefix(strings.TrimSuffix(recv, ")"), "(")
		ref.recv = strings.TrimPrefix(recv, "*")
		rest = rest[i+1:]
	}
	ref.name = rest
	return ref, ref.name != ""
}

// LoadDocs 从源码读取handler的文档注释
// main包使用构建信息中的模块路径
func LoadDocs(ids []mark.ID) (map[mark.ID]string, error) {
	mainPath := ""
	if x, ok := debug.ReadBuildInfo(); ok {
		mainPath = x.Path
	}
	refs := make(map[mark.ID]funcRef, len(ids))
	patterns := make(map[string]struct{})
	for _, id := range ids {
		ref, ok := parseFuncName(id)
		if !ok {
			continue
		}
		if ref.pkg == "main" {
			if mainPath == "" {
				continue
			}
			ref.pkg = mainPath
		}
		refs[id] = ref
		patterns[ref.pkg] = struct{}{}
	}
	if len(patterns) == 0 {
		return nil, nil
	}
	list := make([]string, 0, len(patterns))
	for p := range patterns {
		list = append(list, p)
	}

	cfg := &packages.Config{
		Fset: token.NewFileSet(),
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
	}
	pkgs, err := packages.Load(cfg, list...)
	if err != nil {
		return nil, err
	}

	// pkg -> recv.name -> doc
	found := make(map[string]map[string]string)
	for _, pkg := range pkgs {
		docs := make(map[string]string)
		for _, f := range pkg.Syntax {
			for _, decl := range f.Decls {
				fn, ok := decl.(*ast.FuncDecl)
				if !ok || fn.Doc == nil {
					continue
				}
				docs[receiverName(fn)+"."+fn.Name.Name] = fn.Doc.Text()
			}
		}
		found[pkg.PkgPath] = docs
	}

	out := make(map[mark.ID]string, len(refs))
	for id, ref := range refs {
		if doc, ok := found[ref.pkg][ref.recv+"."+ref.name]; ok {
			out[id] = doc
		}
	}
	return out, nil
}

func receiverName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}
	t := fn.Recv.List[0].Type
	if star, ok := t.(*ast.StarExpr); ok {
		t = star.X
	}
	switch x := t.(type) {
	case *ast.Ident:
		return x.Name
	case *ast.IndexExpr:
		if id, ok := x.X.(*ast.Ident); ok {
			return id.Name
		}
	}
	return ""
}
