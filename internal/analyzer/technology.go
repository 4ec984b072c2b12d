package analyzer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"codemod/internal/errors"
)

// Technology categories.
const (
	CategoryLanguage  = "language"
	CategoryFramework = "framework"
	CategoryTool      = "tool"
)

// maxCensusFiles bounds how many files the extension census inspects.
const maxCensusFiles = 2000

// Technology is one detected language, framework, or tool.
type Technology struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Evidence string `json:"evidence"`
	Detail   string `json:"detail,omitempty"`
}

// TechnologyReport lists what a workspace is built with.
type TechnologyReport struct {
	Root         string       `json:"root"`
	Technologies []Technology `json:"technologies"`
}

type pyprojectManifest struct {
	Project struct {
		Name         string   `toml:"name"`
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name         string                 `toml:"name"`
			Dependencies map[string]interface{} `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

type cargoManifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Dependencies map[string]interface{} `toml:"dependencies"`
}

type packageManifest struct {
	Name            string            `json:"name"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

type composeManifest struct {
	Services map[string]struct {
		Image string `yaml:"image"`
	} `yaml:"services"`
}

type workflowManifest struct {
	Name string `yaml:"name"`
}

// frameworkHints maps package.json dependency names to frameworks.
var frameworkHints = map[string]string{
	"react":         "React",
	"vue":           "Vue",
	"@angular/core": "Angular",
	"next":          "Next.js",
	"express":       "Express",
	"svelte":        "Svelte",
}

// extensionLanguages maps source file extensions to languages for the census.
var extensionLanguages = map[string]string{
	".go":   "Go",
	".py":   "Python",
	".js":   "JavaScript",
	".jsx":  "JavaScript",
	".mjs":  "JavaScript",
	".cjs":  "JavaScript",
	".ts":   "TypeScript",
	".tsx":  "TypeScript",
	".rs":   "Rust",
	".java": "Java",
	".kt":   "Kotlin",
	".rb":   "Ruby",
}

// DetectTechnologies inspects manifests at relPath and runs a bounded
// extension census below it. Manifest evidence wins over census evidence
// when both see the same technology.
func (a *Analyzer) DetectTechnologies(ctx context.Context, relPath string) (*TechnologyReport, error) {
	start := a.resolve(relPath)
	info, err := os.Stat(start)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("path", relPath)
		}
		return nil, errors.NewIOFailureError("stat path", err)
	}
	if !info.IsDir() {
		return nil, errors.NewInvalidInputError("path", "technology detection needs a directory").
			WithDetails(map[string]interface{}{"path": relPath})
	}

	found := make(map[string]Technology)
	add := func(t Technology) {
		if _, ok := found[t.Name]; !ok {
			found[t.Name] = t
		}
	}

	a.detectManifests(start, add)
	if err := a.censusExtensions(ctx, start, add); err != nil {
		return nil, err
	}

	report := &TechnologyReport{
		Root:         relPath,
		Technologies: make([]Technology, 0, len(found)),
	}
	if report.Root == "" {
		report.Root = "."
	}
	for _, t := range found {
		report.Technologies = append(report.Technologies, t)
	}

	rank := map[string]int{CategoryLanguage: 0, CategoryFramework: 1, CategoryTool: 2}
	sort.Slice(report.Technologies, func(i, j int) bool {
		ti, tj := report.Technologies[i], report.Technologies[j]
		if rank[ti.Category] != rank[tj.Category] {
			return rank[ti.Category] < rank[tj.Category]
		}
		return ti.Name < tj.Name
	})

	a.logger.Debug("detected technologies", "root", report.Root, "count", len(report.Technologies))
	return report, nil
}

// detectManifests checks for well-known manifest files directly under dir
// and parses the ones that carry useful metadata.
func (a *Analyzer) detectManifests(dir string, add func(Technology)) {
	if mod := a.parseGoModule(filepath.Join(dir, "go.mod")); mod != nil {
		add(*mod)
	}
	if techs := a.parsePackageJSON(dir); len(techs) > 0 {
		for _, t := range techs {
			add(t)
		}
	}
	if techs := a.parsePyproject(filepath.Join(dir, "pyproject.toml")); len(techs) > 0 {
		for _, t := range techs {
			add(t)
		}
	}
	if t := a.parseCargo(filepath.Join(dir, "Cargo.toml")); t != nil {
		add(*t)
	}
	if techs := a.parseCompose(dir); len(techs) > 0 {
		for _, t := range techs {
			add(t)
		}
	}
	if t := a.detectWorkflows(dir); t != nil {
		add(*t)
	}

	presence := []struct {
		file string
		tech Technology
	}{
		{"requirements.txt", Technology{Name: "Python", Category: CategoryLanguage, Evidence: "requirements.txt"}},
		{"setup.py", Technology{Name: "Python", Category: CategoryLanguage, Evidence: "setup.py"}},
		{"tsconfig.json", Technology{Name: "TypeScript", Category: CategoryLanguage, Evidence: "tsconfig.json"}},
		{"pom.xml", Technology{Name: "Java", Category: CategoryLanguage, Evidence: "pom.xml"}},
		{"build.gradle", Technology{Name: "Java", Category: CategoryLanguage, Evidence: "build.gradle"}},
		{"build.gradle.kts", Technology{Name: "Kotlin", Category: CategoryLanguage, Evidence: "build.gradle.kts"}},
		{"Gemfile", Technology{Name: "Ruby", Category: CategoryLanguage, Evidence: "Gemfile"}},
		{"Dockerfile", Technology{Name: "Docker", Category: CategoryTool, Evidence: "Dockerfile"}},
	}
	for _, p := range presence {
		if _, err := os.Stat(filepath.Join(dir, p.file)); err == nil {
			add(p.tech)
		}
	}
}

func (a *Analyzer) parseGoModule(path string) *Technology {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	tech := Technology{Name: "Go", Category: CategoryLanguage, Evidence: "go.mod"}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if module, ok := strings.CutPrefix(line, "module "); ok {
			tech.Detail = fmt.Sprintf("module %s", strings.TrimSpace(module))
			break
		}
	}
	return &tech
}

func (a *Analyzer) parsePackageJSON(dir string) []Technology {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return nil
	}

	var manifest packageManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		a.logger.Debug("unreadable package.json", "dir", dir, "error", err)
		return []Technology{{Name: "JavaScript", Category: CategoryLanguage, Evidence: "package.json"}}
	}

	lang := "JavaScript"
	if _, err := os.Stat(filepath.Join(dir, "tsconfig.json")); err == nil {
		lang = "TypeScript"
	} else if _, ok := manifest.DevDependencies["typescript"]; ok {
		lang = "TypeScript"
	}

	depCount := len(manifest.Dependencies) + len(manifest.DevDependencies)
	detail := fmt.Sprintf("%d dependencies", depCount)
	if manifest.Name != "" {
		detail = fmt.Sprintf("package %s, %d dependencies", manifest.Name, depCount)
	}

	techs := []Technology{{Name: lang, Category: CategoryLanguage, Evidence: "package.json", Detail: detail}}
	for dep, framework := range frameworkHints {
		_, inDeps := manifest.Dependencies[dep]
		_, inDev := manifest.DevDependencies[dep]
		if inDeps || inDev {
			techs = append(techs, Technology{
				Name:     framework,
				Category: CategoryFramework,
				Evidence: "package.json",
				Detail:   fmt.Sprintf("dependency %s", dep),
			})
		}
	}
	frameworks := techs[1:]
	sort.Slice(frameworks, func(i, j int) bool { return frameworks[i].Name < frameworks[j].Name })
	return techs
}

func (a *Analyzer) parsePyproject(path string) []Technology {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var manifest pyprojectManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		a.logger.Debug("unreadable pyproject.toml", "path", path, "error", err)
		return []Technology{{Name: "Python", Category: CategoryLanguage, Evidence: "pyproject.toml"}}
	}

	name := manifest.Project.Name
	depCount := len(manifest.Project.Dependencies)
	poetry := manifest.Tool.Poetry.Name != "" || len(manifest.Tool.Poetry.Dependencies) > 0
	if name == "" {
		name = manifest.Tool.Poetry.Name
	}
	if depCount == 0 && poetry {
		depCount = len(manifest.Tool.Poetry.Dependencies)
	}

	detail := fmt.Sprintf("%d dependencies", depCount)
	if name != "" {
		detail = fmt.Sprintf("project %s, %d dependencies", name, depCount)
	}

	techs := []Technology{{Name: "Python", Category: CategoryLanguage, Evidence: "pyproject.toml", Detail: detail}}
	if poetry {
		techs = append(techs, Technology{Name: "Poetry", Category: CategoryTool, Evidence: "pyproject.toml"})
	}
	return techs
}

func (a *Analyzer) parseCargo(path string) *Technology {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	tech := Technology{Name: "Rust", Category: CategoryLanguage, Evidence: "Cargo.toml"}
	var manifest cargoManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		a.logger.Debug("unreadable Cargo.toml", "path", path, "error", err)
		return &tech
	}

	if manifest.Package.Name != "" {
		tech.Detail = fmt.Sprintf("crate %s, %d dependencies", manifest.Package.Name, len(manifest.Dependencies))
	} else {
		tech.Detail = fmt.Sprintf("%d dependencies", len(manifest.Dependencies))
	}
	return &tech
}

func (a *Analyzer) parseCompose(dir string) []Technology {
	names := []string{"docker-compose.yml", "docker-compose.yaml", "compose.yaml"}
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		techs := []Technology{{Name: "Docker", Category: CategoryTool, Evidence: name}}
		compose := Technology{Name: "Docker Compose", Category: CategoryTool, Evidence: name}

		var manifest composeManifest
		if err := yaml.Unmarshal(data, &manifest); err != nil {
			a.logger.Debug("unreadable compose file", "path", path, "error", err)
		} else if len(manifest.Services) > 0 {
			services := make([]string, 0, len(manifest.Services))
			for svc := range manifest.Services {
				services = append(services, svc)
			}
			sort.Strings(services)
			compose.Detail = fmt.Sprintf("%d services: %s", len(services), strings.Join(services, ", "))
		}

		return append(techs, compose)
	}
	return nil
}

func (a *Analyzer) detectWorkflows(dir string) *Technology {
	workflowDir := filepath.Join(dir, ".github", "workflows")
	entries, err := os.ReadDir(workflowDir)
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yml" && ext != ".yaml" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(workflowDir, entry.Name()))
		if err != nil {
			continue
		}
		var manifest workflowManifest
		if err := yaml.Unmarshal(data, &manifest); err != nil || manifest.Name == "" {
			names = append(names, entry.Name())
			continue
		}
		names = append(names, manifest.Name)
	}

	if len(names) == 0 {
		return nil
	}
	return &Technology{
		Name:     "GitHub Actions",
		Category: CategoryTool,
		Evidence: ".github/workflows",
		Detail:   fmt.Sprintf("%d workflows: %s", len(names), strings.Join(names, ", ")),
	}
}

// censusExtensions walks below start counting source extensions and adds a
// language finding for each extension family it sees.
func (a *Analyzer) censusExtensions(ctx context.Context, start string, add func(Technology)) error {
	counts := make(map[string]int)
	visited := 0

	walkErr := filepath.Walk(start, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() {
			if path != start && a.policy.SkipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if visited >= maxCensusFiles {
			return errWalkLimit
		}
		visited++

		if a.policy.SkipFile(info.Name()) {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(info.Name()))
		if _, ok := extensionLanguages[ext]; ok {
			counts[ext]++
		}
		return nil
	})
	if walkErr != nil && walkErr != errWalkLimit {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.NewIOFailureError("walk workspace", walkErr)
	}

	exts := make([]string, 0, len(counts))
	for ext := range counts {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		add(Technology{
			Name:     extensionLanguages[ext],
			Category: CategoryLanguage,
			Evidence: fmt.Sprintf("*%s files", ext),
			Detail:   fmt.Sprintf("%d files", counts[ext]),
		})
	}
	return nil
}
