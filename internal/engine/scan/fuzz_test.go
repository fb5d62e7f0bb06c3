package scan

import (
	"testing"

	"modelscan/internal/engine/parser"
	"modelscan/internal/engine/rules"
)

func fuzzScan(f *testing.F, path string) {
	loader, err := parser.NewGrammarLoader()
	if err != nil {
		f.Fatal(err)
	}
	p := parser.NewParser(loader)
	rs := rules.Default(rules.Options{})

	f.Fuzz(func(t *testing.T, data []byte) {
		file, err := p.Parse(path, data)
		if err != nil {
			return
		}
		defer file.Close()

		if res := File(file, rs); res == nil {
			t.Fatal("nil result for parsed file")
		}
	})
}

func FuzzScanGo(f *testing.F) {
	f.Add([]byte(`package main

func main() {
	model := "gpt-" + "4o"
	generate(model)
}
`))
	fuzzScan(f, "fuzz.go")
}

func FuzzScanPython(f *testing.F) {
	f.Add([]byte(`model = f"claude-{tier}"
client.chat.completions.create(model=model)
`))
	fuzzScan(f, "fuzz.py")
}

func FuzzScanJavaScript(f *testing.F) {
	f.Add([]byte("const model = `gpt-${version}`;\nclient.chat.completions.create({ model });\n"))
	fuzzScan(f, "fuzz.js")
}
