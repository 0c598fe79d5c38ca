package prompt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"baselinedev/baseline"

	"github.com/tidwall/gjson"
)

// reportFeatureLimit caps the feature list appended to a discovery report.
const reportFeatureLimit = 20

// ProjectContext records which kinds of web sources a project contains.
type ProjectContext struct {
	HasPackageJSON bool
	HasHTML        bool
	HasCSS         bool
	HasJavaScript  bool
	HasTypeScript  bool
	Frameworks     []string
}

// Empty reports whether no web sources were found.
func (p ProjectContext) Empty() bool {
	return !p.HasPackageJSON && !p.HasHTML && !p.HasCSS && !p.HasJavaScript && !p.HasTypeScript
}

func (p ProjectContext) complete() bool {
	return p.HasPackageJSON && p.HasHTML && p.HasCSS && p.HasJavaScript && p.HasTypeScript
}

var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
	"vendor":       true,
}

// known framework packages, keyed by dependency name
var frameworkDeps = map[string]string{
	"react":         "React",
	"vue":           "Vue",
	"svelte":        "Svelte",
	"@angular/core": "Angular",
	"next":          "Next.js",
	"nuxt":          "Nuxt",
	"astro":         "Astro",
	"lit":           "Lit",
	"solid-js":      "Solid",
	"preact":        "Preact",
}

var errScanDone = errors.New("scan complete")

// ScanProject walks root looking for web source markers. Dependency and
// build directories are skipped. The walk stops once every marker is seen.
func ScanProject(root string) (ProjectContext, error) {
	var pc ProjectContext

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		switch name := d.Name(); {
		case name == "package.json":
			if !pc.HasPackageJSON {
				pc.HasPackageJSON = true
				pc.Frameworks = detectFrameworks(path)
			}
		default:
			switch strings.ToLower(filepath.Ext(name)) {
			case ".html", ".htm":
				pc.HasHTML = true
			case ".css", ".scss":
				pc.HasCSS = true
			case ".js", ".jsx", ".mjs":
				pc.HasJavaScript = true
			case ".ts", ".tsx":
				pc.HasTypeScript = true
			}
		}

		if pc.complete() {
			return errScanDone
		}
		return nil
	})
	if err != nil && !errors.Is(err, errScanDone) {
		return pc, fmt.Errorf("scan %s: %w", root, err)
	}

	return pc, nil
}

func detectFrameworks(packageJSON string) []string {
	data, err := os.ReadFile(packageJSON)
	if err != nil || !gjson.ValidBytes(data) {
		return nil
	}

	seen := make(map[string]bool)
	for _, section := range []string{"dependencies", "devDependencies", "peerDependencies"} {
		gjson.GetBytes(data, section).ForEach(func(key, _ gjson.Result) bool {
			if name, ok := frameworkDeps[key.String()]; ok {
				seen[name] = true
			}
			return true
		})
	}

	var out []string
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DiscoveryReport formats the backend's answer together with the
// recently available features it was given.
func DiscoveryReport(threshold baseline.Threshold, response string, features []baseline.WebFeature, generated time.Time) string {
	var sb strings.Builder

	sb.WriteString("# Baseline.dev: New Features Discovery Report\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n", generated.Format("2006-01-02 15:04"))
	fmt.Fprintf(&sb, "Baseline Threshold: %s\n\n---\n\n", threshold)
	sb.WriteString(response)
	sb.WriteString("\n\n---\n\n## All Recently Available Features (Last 12 Months)\n\n")

	for i, f := range features {
		if i == reportFeatureLimit {
			break
		}
		fmt.Fprintf(&sb, "- **%s** (`%s`) - Available since %s\n", f.Name, f.ID, AvailableSince(f))
	}
	if len(features) > reportFeatureLimit {
		fmt.Fprintf(&sb, "\n*...and %d more features*\n", len(features)-reportFeatureLimit)
	}

	return sb.String()
}
