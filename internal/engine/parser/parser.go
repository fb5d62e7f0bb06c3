package parser

import (
	"path/filepath"
	"sort"
	"strings"

	"modelscan/internal/core/errors"
	"modelscan/internal/shared/util"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Parser selects a grammar by file extension and produces parsed files.
type Parser struct {
	loader         *GrammarLoader
	extensions     map[string]string // ".ts" -> "typescript"
	testFileSuffix []string
}

// ParsedFile is one file's syntax tree plus everything the walker needs to
// interpret it. Callers must Close it to release the tree.
type ParsedFile struct {
	Path     string
	Language string
	Source   []byte
	Tree     *sitter.Tree
	Dialect  *Dialect
}

func (f *ParsedFile) Root() *sitter.Node {
	if f == nil || f.Tree == nil {
		return nil
	}
	return f.Tree.RootNode()
}

func (f *ParsedFile) Close() {
	if f != nil && f.Tree != nil {
		f.Tree.Close()
		f.Tree = nil
	}
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader:     loader,
		extensions: make(map[string]string),
	}
	for lang, spec := range loader.LanguageRegistry() {
		if !spec.Enabled {
			continue
		}
		for _, ext := range spec.Extensions {
			p.extensions[strings.ToLower(ext)] = lang
		}
		p.testFileSuffix = append(p.testFileSuffix, spec.TestFileSuffixes...)
	}
	sort.Strings(p.testFileSuffix)
	return p
}

// Parse turns one file's content into a ParsedFile. Unsupported extensions
// return NOT_SUPPORTED; grammar-level failures return PARSE_ERROR. Both are
// per-file conditions: the caller skips the file and continues the scan.
func (p *Parser) Parse(path string, content []byte) (*ParsedFile, error) {
	lang := p.detectLanguage(path)
	if lang == "" {
		return nil, errors.AddContext(errors.New(errors.CodeNotSupported, "unsupported language"), errors.CtxPath, path)
	}

	dialect, ok := DialectFor(lang)
	if !ok {
		return nil, errors.Newf(errors.CodeInternal, "no dialect for language %q", lang)
	}
	pool, ok := p.loader.Pool(lang)
	if !ok {
		return nil, errors.Newf(errors.CodeInternal, "grammar not loaded: %s", lang)
	}

	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, parseError(path, lang, "parser returned no tree")
	}
	root := tree.RootNode()
	if root == nil || root.HasError() {
		tree.Close()
		return nil, parseError(path, lang, "syntax errors in file")
	}

	return &ParsedFile{
		Path:     path,
		Language: lang,
		Source:   content,
		Tree:     tree,
		Dialect:  dialect,
	}, nil
}

func parseError(path, lang, msg string) error {
	err := errors.New(errors.CodeParse, msg)
	err = errors.AddContext(err, errors.CtxPath, path)
	return errors.AddContext(err, errors.CtxLanguage, lang)
}

func (p *Parser) detectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := p.extensions[ext]; ok {
		return lang
	}
	return ""
}

func (p *Parser) IsSupportedPath(filePath string) bool {
	return p.detectLanguage(filePath) != ""
}

func (p *Parser) Language(path string) string {
	return p.detectLanguage(path)
}

func (p *Parser) IsTestFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, suffix := range p.testFileSuffix {
		if strings.HasSuffix(base, strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

func (p *Parser) SupportedExtensions() []string {
	return util.SortedStringKeys(p.extensions)
}
