package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/gqlorm/gqlorm/internal/config"
	"github.com/gqlorm/gqlorm/internal/target"
)

// Scripts added to package.json by integrate.
var packageScripts = [][2]string{
	{"codegen:rust", "gqlorm generate"},
	{"codegen:all", "npm run codegen && npm run codegen:rust"},
}

type IntegrateOptions struct {
	// Dir holds codegen.yml and package.json; defaults to the working directory.
	Dir string
	// OutputDir is the generated code root; the section points at <OutputDir>/db.
	OutputDir string
	Force     bool
	NoScripts bool
}

type IntegrateCommand struct {
	report *Reporter
}

func NewIntegrateCommand(out io.Writer) *IntegrateCommand {
	return &IntegrateCommand{report: NewReporter(out)}
}

func (ic *IntegrateCommand) Run(_ context.Context, opts IntegrateOptions) error {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.OutputDir == "" {
		opts.OutputDir = config.DefaultOutputDir
	}

	path, err := findCodegenConfig(opts.Dir)
	if err != nil {
		return err
	}
	ic.report.Info("Found GraphQL Code Generator configuration at %s", path)

	updated, err := ic.patchCodegenConfig(path, filepath.Join(opts.OutputDir, "db"), opts.Force)
	if err != nil {
		return err
	}
	if updated {
		ic.report.Success("Updated %s with the %s section", filepath.Base(path), config.CodegenSection)
	}

	if !opts.NoScripts {
		if err := ic.addScripts(filepath.Join(opts.Dir, "package.json")); err != nil {
			return err
		}
	}

	ic.report.Success("Integration complete!")
	ic.report.Info("Run 'gqlorm generate' to generate your database code.")
	return nil
}

func findCodegenConfig(dir string) (string, error) {
	for _, name := range []string{"codegen.yml", "codegen.yaml"} {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("no codegen.yml or codegen.yaml found in %s; integrate extends an existing GraphQL Code Generator setup", dir)
}

// patchCodegenConfig adds the generator section through the yaml node tree so
// the rest of the file keeps its comments and key order.
func (ic *IntegrateCommand) patchCodegenConfig(path, outputDir string, force bool) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return false, fmt.Errorf("failed to parse existing %s: %w", filepath.Base(path), err)
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return false, fmt.Errorf("%s: top level must be a mapping", path)
	}

	section := codegenSection(outputDir)
	replaced := false
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != config.CodegenSection {
			continue
		}
		if !force {
			ic.report.Info("%s section already exists in %s", config.CodegenSection, filepath.Base(path))
			ic.report.Info("Use --force to overwrite existing configuration")
			return false, nil
		}
		root.Content[i+1] = section
		replaced = true
		break
	}
	if !replaced {
		root.Content = append(root.Content, strNode(config.CodegenSection), section)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return false, fmt.Errorf("failed to serialize updated config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

func codegenSection(outputDir string) *yaml.Node {
	return &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
		Content: []*yaml.Node{
			strNode("orm"), strNode(target.Diesel.String()),
			strNode("db"), strNode(target.Sqlite.String()),
			strNode("output_dir"), strNode(filepath.ToSlash(outputDir)),
			strNode("generate_migrations"), boolNode(true),
			strNode("generate_entities"), boolNode(true),
		},
	}
}

func strNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func boolNode(v bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}
}

// addScripts adds the missing codegen scripts. Existing scripts are never
// overwritten.
func (ic *IntegrateCommand) addScripts(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		ic.report.Warn("package.json not found, skipping script setup")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var pkg map[string]any
	if err := json.Unmarshal(data, &pkg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if pkg == nil {
		pkg = map[string]any{}
	}
	scripts, ok := pkg["scripts"].(map[string]any)
	if !ok {
		scripts = map[string]any{}
		pkg["scripts"] = scripts
	}

	added := 0
	for _, s := range packageScripts {
		if _, exists := scripts[s[0]]; exists {
			continue
		}
		scripts[s[0]] = s[1]
		ic.report.Info("Added '%s' script to package.json", s[0])
		added++
	}
	if added == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pkg); err != nil {
		return fmt.Errorf("failed to serialize %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	ic.report.Success("Updated package.json with new scripts")
	return nil
}
