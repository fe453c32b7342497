package codegen

import (
	"errors"
	"maps"
	"os"

	"github.com/alexandremahdhaoui/gentask/pkg/flaterrors"
	"k8s.io/apimachinery/pkg/util/sets"
	"sigs.k8s.io/yaml"
)

// Config holds the options of one generation unit. It mirrors the schema of
// a generation configuration file.
//
// Scalar options are unset when empty. Map and set options merge additively
// through the Add* operations of Unit and through Merge.
type Config struct {
	// InputSpec is the path to the API description. Required.
	InputSpec string `json:"inputSpec,omitempty"`
	// OutputDir is the directory the engine writes into. Required.
	OutputDir string `json:"outputDir,omitempty"`
	// Lang selects the engine's output variant. Required.
	Lang string `json:"lang,omitempty"`

	TemplateDir string `json:"templateDir,omitempty"`
	Auth        string `json:"auth,omitempty"`

	ModelPackage    string `json:"modelPackage,omitempty"`
	APIPackage      string `json:"apiPackage,omitempty"`
	InvokerPackage  string `json:"invokerPackage,omitempty"`
	ModelNamePrefix string `json:"modelNamePrefix,omitempty"`
	ModelNameSuffix string `json:"modelNameSuffix,omitempty"`

	GroupID            string `json:"groupId,omitempty"`
	ArtifactID         string `json:"artifactId,omitempty"`
	ArtifactVersion    string `json:"artifactVersion,omitempty"`
	Library            string `json:"library,omitempty"`
	GitUserID          string `json:"gitUserId,omitempty"`
	GitRepoID          string `json:"gitRepoId,omitempty"`
	ReleaseNote        string `json:"releaseNote,omitempty"`
	HTTPUserAgent      string `json:"httpUserAgent,omitempty"`
	IgnoreFileOverride string `json:"ignoreFileOverride,omitempty"`

	Verbose       *bool `json:"verbose,omitempty"`
	SkipOverwrite *bool `json:"skipOverwrite,omitempty"`

	InstantiationTypes    map[string]string `json:"instantiationTypes,omitempty"`
	TypeMappings          map[string]string `json:"typeMappings,omitempty"`
	ImportMappings        map[string]string `json:"importMappings,omitempty"`
	ReservedWordsMappings map[string]string `json:"reservedWordsMappings,omitempty"`

	AdditionalProperties map[string]any `json:"additionalProperties,omitempty"`
	DynamicProperties    map[string]any `json:"dynamicProperties,omitempty"`

	// LanguageSpecificPrimitives is a set; it is kept sorted and deduplicated.
	LanguageSpecificPrimitives []string `json:"languageSpecificPrimitives,omitempty"`

	// SystemProperties are applied as process-wide settings for the duration
	// of the engine invocation.
	SystemProperties map[string]string `json:"systemProperties,omitempty"`
}

var errReadingConfig = errors.New("reading generation config")

// ReadConfigFromPath reads a generation configuration from a YAML or JSON
// file. Unknown keys are rejected. Errors are *ConfigurationError.
func ReadConfigFromPath(path string) (Config, error) {
	b, err := os.ReadFile(path) //nolint:varnamelen
	if err != nil {
		return Config{}, &ConfigurationError{Err: flaterrors.Join(err, errReadingConfig)}
	}

	out := Config{} //nolint:exhaustruct // unmarshal

	if err := yaml.UnmarshalStrict(b, &out); err != nil {
		return Config{}, &ConfigurationError{Err: flaterrors.Join(err, errReadingConfig)}
	}

	out.LanguageSpecificPrimitives = normalizeSet(out.LanguageSpecificPrimitives)

	return out, nil
}

// DeepCopy returns a copy of c sharing no maps or slices with it.
func (c Config) DeepCopy() Config {
	out := c

	if c.Verbose != nil {
		v := *c.Verbose
		out.Verbose = &v
	}
	if c.SkipOverwrite != nil {
		v := *c.SkipOverwrite
		out.SkipOverwrite = &v
	}

	out.InstantiationTypes = maps.Clone(c.InstantiationTypes)
	out.TypeMappings = maps.Clone(c.TypeMappings)
	out.ImportMappings = maps.Clone(c.ImportMappings)
	out.ReservedWordsMappings = maps.Clone(c.ReservedWordsMappings)
	out.AdditionalProperties = maps.Clone(c.AdditionalProperties)
	out.DynamicProperties = maps.Clone(c.DynamicProperties)
	out.SystemProperties = maps.Clone(c.SystemProperties)

	if c.LanguageSpecificPrimitives != nil {
		out.LanguageSpecificPrimitives = append([]string{}, c.LanguageSpecificPrimitives...)
	}

	return out
}

// Merge applies other on top of c: set scalars in other override those of c,
// maps and sets are merged additively with other's entries winning on
// duplicate keys.
func (c *Config) Merge(other Config) {
	for _, s := range []struct {
		dst *string
		src string
	}{
		{&c.InputSpec, other.InputSpec},
		{&c.OutputDir, other.OutputDir},
		{&c.Lang, other.Lang},
		{&c.TemplateDir, other.TemplateDir},
		{&c.Auth, other.Auth},
		{&c.ModelPackage, other.ModelPackage},
		{&c.APIPackage, other.APIPackage},
		{&c.InvokerPackage, other.InvokerPackage},
		{&c.ModelNamePrefix, other.ModelNamePrefix},
		{&c.ModelNameSuffix, other.ModelNameSuffix},
		{&c.GroupID, other.GroupID},
		{&c.ArtifactID, other.ArtifactID},
		{&c.ArtifactVersion, other.ArtifactVersion},
		{&c.Library, other.Library},
		{&c.GitUserID, other.GitUserID},
		{&c.GitRepoID, other.GitRepoID},
		{&c.ReleaseNote, other.ReleaseNote},
		{&c.HTTPUserAgent, other.HTTPUserAgent},
		{&c.IgnoreFileOverride, other.IgnoreFileOverride},
	} {
		if s.src != "" {
			*s.dst = s.src
		}
	}

	if other.Verbose != nil {
		v := *other.Verbose
		c.Verbose = &v
	}
	if other.SkipOverwrite != nil {
		v := *other.SkipOverwrite
		c.SkipOverwrite = &v
	}

	mergeInto(&c.InstantiationTypes, other.InstantiationTypes)
	mergeInto(&c.TypeMappings, other.TypeMappings)
	mergeInto(&c.ImportMappings, other.ImportMappings)
	mergeInto(&c.ReservedWordsMappings, other.ReservedWordsMappings)
	mergeInto(&c.AdditionalProperties, other.AdditionalProperties)
	mergeInto(&c.DynamicProperties, other.DynamicProperties)
	mergeInto(&c.SystemProperties, other.SystemProperties)

	c.LanguageSpecificPrimitives = normalizeSet(append(c.LanguageSpecificPrimitives, other.LanguageSpecificPrimitives...))
}

// mergeInto adds every entry of src to *dst, allocating *dst when needed.
func mergeInto[V any](dst *map[string]V, src map[string]V) {
	if len(src) == 0 {
		return
	}
	if *dst == nil {
		*dst = make(map[string]V, len(src))
	}
	maps.Copy(*dst, src)
}

func normalizeSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return sets.List(sets.New(values...))
}
