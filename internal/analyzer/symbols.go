package analyzer

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// GeneratedMarker is the header comment the renderer stamps into every
// artifact. Symbols found in files carrying it are attributed to this
// engine rather than to hand-written code.
const GeneratedMarker = "// quill:generated"

var declRe = regexp.MustCompile(`(?m)^\s*(?:@\w+(?:\([^)]*\))?\s+)*(?:(?:public|open|internal|fileprivate|private|final|indirect)\s+)*(class|struct|enum|protocol|actor|extension)\s+([A-Za-z_][A-Za-z0-9_]*)`)

type fileResult struct {
	symbols   []Symbol
	evidence  architectureEvidence
	generated bool
}

// scanSwiftFile extracts top-level declarations and architecture evidence
// from one source file. rel is slash-separated and relative to root.
func scanSwiftFile(root, rel string) (fileResult, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return fileResult{}, err
	}

	content := string(data)
	generated := strings.Contains(header(content), GeneratedMarker)

	res := fileResult{evidence: architectureEvidence{}, generated: generated}

	for _, m := range declRe.FindAllStringSubmatch(content, -1) {
		res.symbols = append(res.symbols, Symbol{
			Name:      m[2],
			Kind:      m[1],
			Path:      rel,
			Generated: generated,
		})
	}

	base := strings.TrimSuffix(filepath.Base(rel), ".swift")
	switch {
	case strings.HasSuffix(base, "ViewModel"):
		res.evidence[ArchMVVM]++
	case strings.HasSuffix(base, "ViewController"):
		res.evidence[ArchMVC]++
	case strings.HasSuffix(base, "Presenter"),
		strings.HasSuffix(base, "Interactor"),
		strings.HasSuffix(base, "Router"):
		res.evidence[ArchVIPER]++
	}
	if strings.Contains(content, "import ComposableArchitecture") {
		res.evidence[ArchTCA]++
	}

	return res, nil
}

// header returns the first few lines of a file, where the generated marker
// lives.
func header(content string) string {
	const headerLines = 5
	lines := strings.SplitN(content, "\n", headerLines+1)
	if len(lines) > headerLines {
		lines = lines[:headerLines]
	}
	return strings.Join(lines, "\n")
}
