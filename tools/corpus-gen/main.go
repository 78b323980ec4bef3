package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentic-research/ocaast/ast"
)

// Entry describes one generated file in the manifest.
type Entry struct {
	File     string `json:"file"`
	Valid    bool   `json:"valid"`
	Mutation string `json:"mutation,omitempty"`
	Kind     string `json:"expected_kind,omitempty"` // decode error kind for invalid seeds
}

func main() {
	count := flag.Int("n", 20, "Number of valid documents to generate")
	invalid := flag.Int("invalid", 10, "Number of mutated, invalid documents")
	outDir := flag.String("out", "corpus", "Output directory")
	fuzzDir := flag.String("fuzz", "", "Also write Go fuzz seeds here (e.g. ast/testdata/fuzz/FuzzParseJSON)")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fatal(err)
	}

	var manifest []Entry
	var seeds [][]byte
	for i := 0; i < *count; i++ {
		data, err := json.MarshalIndent(generate(rng), "", "  ")
		if err != nil {
			fatal(err)
		}
		name := fmt.Sprintf("valid_%03d.json", i)
		write(filepath.Join(*outDir, name), data)
		manifest = append(manifest, Entry{File: name, Valid: true})
		seeds = append(seeds, data)
	}

	for i := 0; i < *invalid; i++ {
		data, err := json.Marshal(generate(rng))
		if err != nil {
			fatal(err)
		}
		mutated, desc := mutate(data, rng)
		_, derr := ast.ParseJSON(mutated)
		if derr == nil {
			// The mutation happened to keep the document valid.
			continue
		}
		name := fmt.Sprintf("invalid_%03d.json", i)
		write(filepath.Join(*outDir, name), mutated)
		manifest = append(manifest, Entry{File: name, Mutation: desc, Kind: errorKind(derr)})
		seeds = append(seeds, mutated)
	}

	m, _ := json.MarshalIndent(manifest, "", "  ")
	write(filepath.Join(*outDir, "manifest.json"), m)

	if *fuzzDir != "" {
		if err := os.MkdirAll(*fuzzDir, 0o755); err != nil {
			fatal(err)
		}
		for i, s := range seeds {
			write(filepath.Join(*fuzzDir, fmt.Sprintf("seed_%03d", i)), fuzzSeed(s))
		}
	}
	fmt.Printf("Generated %d files in %s (seed %d)\n", len(manifest), *outDir, *seed)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func write(path string, data []byte) {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fatal(err)
	}
}

// fuzzSeed renders data in the go test fuzz corpus file format.
func fuzzSeed(data []byte) []byte {
	return []byte(fmt.Sprintf("go test fuzz v1\n[]byte(%q)\n", data))
}

var (
	attrNames = []string{"name", "dob", "address", "email", "height", "photo", "consent", "tags"}
	propNames = []string{"classification", "lang", "description", "unit", "issuer"}
	attrTypes = []ast.AttributeType{ast.AttributeText, ast.AttributeNumeric, ast.AttributeBoolean, ast.AttributeBinary, ast.AttributeDatetime}
	verbs     = []ast.CommandType{ast.CommandAdd, ast.CommandRemove, ast.CommandModify}
)

// generate builds a random, structurally valid document.
func generate(rng *rand.Rand) *ast.OCAAst {
	b := ast.NewBuilder("")
	line := 1
	if rng.Intn(3) == 0 {
		said := randomSaid(rng)
		b.PushWithMeta(ast.Command{Kind: ast.CommandFrom, ObjectKind: ast.OCABundle(ast.BundleContent{Said: ast.Reference(ast.SaidRef(said))})},
			ast.CommandMeta{LineNumber: line, RawLine: "FROM refs:" + said})
		line++
	}

	n := 1 + rng.Intn(6)
	for i := 0; i < n; i++ {
		verb := verbs[rng.Intn(len(verbs))]
		var kind ast.ObjectKind
		if rng.Intn(3) == 0 {
			kind = ast.CaptureBase(randomContent(rng, true).CaptureContent())
		} else {
			code := 2 + rng.Intn(ast.MaxObjectKindCode-1)
			k, _ := ast.FromInt(code)
			ov, _ := ast.AsOverlay(k)
			kind = ast.NewOverlay(ov.OverlayType, randomContent(rng, false).Content())
		}
		cmd := ast.Command{Kind: verb, ObjectKind: kind}
		if rng.Intn(2) == 0 {
			b.PushWithMeta(cmd, ast.CommandMeta{LineNumber: line, RawLine: strings.ToUpper(verb.String()) + " " + string(kind.Type())})
		} else {
			b.Push(cmd)
		}
		line++
	}
	if rng.Intn(2) == 0 {
		b.Meta("name", fmt.Sprintf("generated-%d", rng.Intn(1000)))
	}

	doc, err := b.Build()
	if err != nil {
		fatal(err)
	}
	return doc
}

func randomContent(rng *rand.Rand, flaggable bool) *ast.ContentBuilder {
	cb := ast.NewContentBuilder()
	for _, i := range rng.Perm(len(attrNames))[:1+rng.Intn(3)] {
		name := attrNames[i]
		cb.Attribute(name, randomAttr(rng, 2))
		if flaggable && rng.Intn(4) == 0 {
			cb.Flag(name)
		}
	}
	for _, i := range rng.Perm(len(propNames))[:rng.Intn(3)] {
		cb.Property(propNames[i], randomValue(rng, 2))
	}
	return cb
}

func randomAttr(rng *rand.Rand, depth int) ast.NestedAttrType {
	switch r := rng.Intn(6); {
	case r == 0:
		return ast.AttrRef(ast.SaidRef(randomSaid(rng)))
	case r == 1 && depth > 0:
		return ast.AttrArrayOf(randomAttr(rng, depth-1))
	default:
		return ast.AttrOf(attrTypes[rng.Intn(len(attrTypes))])
	}
}

func randomValue(rng *rand.Rand, depth int) ast.NestedValue {
	switch r := rng.Intn(6); {
	case r == 0:
		return ast.NewReference(ast.NameRef(attrNames[rng.Intn(len(attrNames))]))
	case r == 1 && depth > 0:
		return ast.NewArray(randomValue(rng, depth-1), randomValue(rng, depth-1))
	case r == 2 && depth > 0:
		return ast.NewObject(ast.Field("en", randomValue(rng, depth-1)), ast.Field("fr", randomValue(rng, depth-1)))
	default:
		return ast.NewValue(fmt.Sprintf("value-%d", rng.Intn(100)))
	}
}

func randomSaid(rng *rand.Rand) string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	b := make([]byte, 44)
	b[0] = 'E'
	for i := 1; i < len(b); i++ {
		b[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(b)
}

// mutate applies a random damaging edit to a compact JSON document.
func mutate(src []byte, rng *rand.Rand) ([]byte, string) {
	str := string(src)
	strategies := []string{"unknown-overlay", "bad-verb", "strip-content", "bad-ref", "bad-attr-type", "unknown-kind"}
	strategy := strategies[rng.Intn(len(strategies))]

	switch strategy {
	case "unknown-overlay":
		if i := strings.Index(str, `"spec/overlays/`); i >= 0 {
			return []byte(str[:i] + `"spec/overlays/bogus/1.0"` + str[strings.Index(str[i+1:], `"`)+i+2:]), "Replaced overlay type"
		}
	case "bad-verb":
		for _, v := range []string{`"type":"Add"`, `"type":"Remove"`, `"type":"Modify"`, `"type":"From"`} {
			if strings.Contains(str, v) {
				return []byte(strings.Replace(str, v, `"type":"Rename"`, 1)), "Replaced command type"
			}
		}
	case "strip-content":
		if strings.Contains(str, `"type":"CaptureBase","content":`) {
			return []byte(strings.Replace(str, `"type":"CaptureBase","content":`, `"type":"CaptureBase","dropped":`, 1)), "Removed capture base content"
		}
	case "bad-ref":
		if strings.Contains(str, `"refs:`) {
			return []byte(strings.Replace(str, `"refs:`, `"ref:`, 1)), "Broke reference tag"
		}
	case "bad-attr-type":
		for _, t := range []string{`"Text"`, `"Numeric"`, `"Boolean"`} {
			if strings.Contains(str, t) {
				return []byte(strings.Replace(str, t, `"Integer"`, 1)), "Unknown attribute type"
			}
		}
	case "unknown-kind":
		if strings.Contains(str, `"type":"Overlay"`) {
			return []byte(strings.Replace(str, `"type":"Overlay"`, `"type":"Schema"`, 1)), "Unknown object kind"
		}
	}
	return []byte(`{"commands":[{"type":"Add"}]}`), "Dropped object kind"
}

func errorKind(err error) string {
	var e *ast.Error
	if errors.As(err, &e) {
		return string(e.Kind)
	}
	var re *ast.RefValueParsingError
	if errors.As(err, &re) {
		return string(re.Kind)
	}
	return "syntax"
}
