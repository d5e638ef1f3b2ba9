package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/0xPolygon/cdk-gateway/log"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/valyala/fasttemplate"
)

const (
	startTag = "{{"
	endTag   = "}}"
)

var (
	ErrCycleVars                 = errors.New("cycle vars")
	ErrMissingVars               = errors.New("missing vars")
	ErrUnsupportedConfigFileType = errors.New("unsupported config file type")

	// A = {{B}} is not valid TOML, it's kept as A = "{{B:int}}" while merging
	unquotedVarRe = regexp.MustCompile(`=\s*\{\{([^}:]+)\}\}`)
	quotedVarRe   = regexp.MustCompile(`=\s*\"\{\{([^}:]+:int)\}\}\"`)
	typeMarkRe    = regexp.MustCompile(`\{\{([^}:]+:int)\}\}`)
)

// FileData is the content of one config source, later sources override earlier ones
type FileData struct {
	Name    string
	Content string
}

// ConfigRender merges TOML sources and resolves the {{Var}} references between them
type ConfigRender struct {
	FilesData []FileData
	// LookupEnvFunc resolves environment variables, usually os.LookupEnv
	LookupEnvFunc     func(key string) (string, bool)
	EnvironmentPrefix string
}

func NewConfigRender(filesData []FileData, environmentPrefix string) *ConfigRender {
	return &ConfigRender{
		FilesData:         filesData,
		LookupEnvFunc:     os.LookupEnv,
		EnvironmentPrefix: environmentPrefix,
	}
}

// Render merges all the sources and resolves every var. A var is taken from
// the environment (PREFIX_Var) before the merged values.
func (c *ConfigRender) Render() (string, error) {
	merged, err := c.Merge()
	if err != nil {
		return "", fmt.Errorf("fail to merge files. Err: %w", err)
	}
	return c.ResolveVars(merged)
}

// Merge loads every source on top of the previous ones, vars are left unresolved
func (c *ConfigRender) Merge() (string, error) {
	k := koanf.New(".")
	for _, data := range c.FilesData {
		content := quoteVars(data.Content)
		if err := k.Load(rawbytes.Provider([]byte(content)), toml.Parser()); err != nil {
			log.Errorf("error loading file %s. Err:%v. FileData: %v", data.Name, err, content)
			return "", fmt.Errorf("fail to load converted template %s to toml. Err: %w", data.Name, err)
		}
	}
	marshaled, err := k.Marshal(toml.Parser())
	if err != nil {
		return "", fmt.Errorf("fail to marshal to toml. Err: %w", err)
	}

	return unquoteVars(string(marshaled)), nil
}

// ResolveVars replaces the vars of a merged config. Vars referencing other
// vars are resolved in successive passes, a pass that resolves nothing means
// there is a cycle.
func (c *ConfigRender) ResolveVars(data string) (string, error) {
	tpl, values, err := c.readTemplateAndValues(data)
	if err != nil {
		return "", err
	}
	rendered := removeTypeMarks(c.execute(tpl, values))
	if missing := c.missingVars(tpl, values); len(missing) > 0 {
		return rendered, fmt.Errorf("missing vars: %v. Err: %w", missing, ErrMissingVars)
	}

	resolved, err := c.resolveNested(rendered)
	if err != nil {
		return data, err
	}

	return resolved, nil
}

func (c *ConfigRender) resolveNested(partial string) (string, error) {
	current := unquoteVars(partial)
	pending := c.GetVars(current)
	if len(pending) == 0 {
		return partial, nil
	}
	log.Debugf("config render: pending vars: %v", pending)
	for len(pending) > 0 {
		previous := pending
		tpl, values, err := c.readTemplateAndValues(current)
		if err != nil {
			return "", fmt.Errorf("fails to read template resolving nested vars. Err: %w", err)
		}
		current = removeTypeMarks(unquoteVars(c.execute(tpl, values)))
		pending = c.GetVars(current)
		if len(pending) == len(previous) {
			return partial, fmt.Errorf("not resolved cycle vars: %v. Err: %w", pending, ErrCycleVars)
		}
	}

	return current, nil
}

func (c *ConfigRender) readTemplateAndValues(data string) (*fasttemplate.Template, map[string]interface{}, error) {
	tpl, err := fasttemplate.NewTemplate(data, startTag, endTag)
	if err != nil {
		return nil, nil, fmt.Errorf("fail to load template. Err:%w", err)
	}
	k := koanf.New(".")
	content := quoteVars(data)
	if err := k.Load(rawbytes.Provider([]byte(content)), toml.Parser()); err != nil {
		return nil, nil, fmt.Errorf("error parsing config template. Content: %s. Err: %w", content, err)
	}

	return tpl, k.All(), nil
}

func (c *ConfigRender) execute(tpl *fasttemplate.Template, values map[string]interface{}) string {
	return tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if v, ok := c.lookupEnv(tag); ok {
			return w.Write([]byte(v))
		}
		if v, ok := values[tag]; ok {
			return w.Write([]byte(fmt.Sprintf("%v", v)))
		}

		return w.Write([]byte(startTag + tag + endTag))
	})
}

// missingVars returns the vars defined neither in values nor in the environment
func (c *ConfigRender) missingVars(tpl *fasttemplate.Template, values map[string]interface{}) []string {
	var missing []string
	tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		_, inEnv := c.lookupEnv(tag)
		_, inValues := values[tag]
		if !inEnv && !inValues && !contains(missing, tag) {
			missing = append(missing, tag)
		}
		return w.Write(nil)
	})

	return missing
}

// GetVars returns the vars still present in data
func (c *ConfigRender) GetVars(data string) []string {
	tpl, err := fasttemplate.NewTemplate(data, startTag, endTag)
	if err != nil {
		return []string{}
	}
	var vars []string
	tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		vars = append(vars, tag)
		return w.Write(nil)
	})

	return vars
}

func (c *ConfigRender) lookupEnv(tag string) (string, bool) {
	return c.LookupEnvFunc(c.EnvironmentPrefix + "_" + strings.ReplaceAll(tag, ".", "_"))
}

func quoteVars(data string) string {
	return unquotedVarRe.ReplaceAllString(data, `= "{{${1}:int}}"`)
}

func unquoteVars(data string) string {
	return quotedVarRe.ReplaceAllStringFunc(data, func(match string) string {
		submatch := quotedVarRe.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}
		return "= {{" + strings.TrimSuffix(submatch[1], ":int") + "}}"
	})
}

func removeTypeMarks(data string) string {
	return typeMarkRe.ReplaceAllStringFunc(data, func(match string) string {
		submatch := typeMarkRe.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}
		return startTag + strings.TrimSuffix(submatch[1], ":int") + endTag
	})
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func convertFileToToml(fileData string, fileType string) (string, error) {
	switch strings.ToLower(fileType) {
	case "json":
		k := koanf.New(".")
		if err := k.Load(rawbytes.Provider([]byte(fileData)), json.Parser()); err != nil {
			return fileData, fmt.Errorf("error loading json file. Err: %w", err)
		}
		tomlData, err := toml.Parser().Marshal(k.Raw())
		if err != nil {
			return fileData, fmt.Errorf("error converting json to toml. Err: %w", err)
		}
		return string(tomlData), nil
	case "yml", "yaml", "ini":
		return fileData, fmt.Errorf("cant convert from %s to TOML. Err: %w", fileType, ErrUnsupportedConfigFileType)
	default:
		log.Warnf("filetype %s unknown, assuming is a TOML file", fileType)
		return fileData, nil
	}
}
