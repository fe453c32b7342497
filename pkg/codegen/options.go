package codegen

import "maps"

// Options is the value handed to an engine's generate operation. It is a
// one-way projection of a Config: every option set in the Config appears
// exactly once, unset options are omitted.
type Options struct {
	Lang      string `json:"lang" jsonschema:"output variant of the engine"`
	InputSpec string `json:"inputSpec" jsonschema:"absolute path to the API description"`
	OutputDir string `json:"outputDir" jsonschema:"absolute path of the directory to generate into"`

	TemplateDir        string `json:"templateDir,omitempty"`
	Auth               string `json:"auth,omitempty"`
	IgnoreFileOverride string `json:"ignoreFileOverride,omitempty"`

	Verbose       *bool `json:"verbose,omitempty"`
	SkipOverwrite *bool `json:"skipOverwrite,omitempty"`

	Naming      *NamingOptions     `json:"naming,omitempty"`
	Coordinates *CoordinateOptions `json:"coordinates,omitempty"`
	Mappings    *MappingOptions    `json:"mappings,omitempty"`

	LanguageSpecificPrimitives []string          `json:"languageSpecificPrimitives,omitempty"`
	AdditionalProperties       map[string]any    `json:"additionalProperties,omitempty"`
	DynamicProperties          map[string]any    `json:"dynamicProperties,omitempty"`
	SystemProperties           map[string]string `json:"systemProperties,omitempty"`
}

// NamingOptions groups the naming targets of generated code.
type NamingOptions struct {
	ModelPackage    string `json:"modelPackage,omitempty"`
	APIPackage      string `json:"apiPackage,omitempty"`
	InvokerPackage  string `json:"invokerPackage,omitempty"`
	ModelNamePrefix string `json:"modelNamePrefix,omitempty"`
	ModelNameSuffix string `json:"modelNameSuffix,omitempty"`
}

// CoordinateOptions groups the publication coordinates of generated code.
type CoordinateOptions struct {
	GroupID         string `json:"groupId,omitempty"`
	ArtifactID      string `json:"artifactId,omitempty"`
	ArtifactVersion string `json:"artifactVersion,omitempty"`
	Library         string `json:"library,omitempty"`
	GitUserID       string `json:"gitUserId,omitempty"`
	GitRepoID       string `json:"gitRepoId,omitempty"`
	ReleaseNote     string `json:"releaseNote,omitempty"`
	HTTPUserAgent   string `json:"httpUserAgent,omitempty"`
}

// MappingOptions groups the type and name mappings of generated code.
type MappingOptions struct {
	InstantiationTypes    map[string]string `json:"instantiationTypes,omitempty"`
	TypeMappings          map[string]string `json:"typeMappings,omitempty"`
	ImportMappings        map[string]string `json:"importMappings,omitempty"`
	ReservedWordsMappings map[string]string `json:"reservedWordsMappings,omitempty"`
}

// GenerateResult is returned by an engine after a successful generation.
type GenerateResult struct {
	OutputDir string `json:"outputDir"`
	// Files lists the generated files, relative to OutputDir.
	Files []string `json:"files,omitempty"`
}

// Options projects c onto the engine invocation contract.
func (c Config) Options() Options {
	c = c.DeepCopy()

	out := Options{
		Lang:                       c.Lang,
		InputSpec:                  c.InputSpec,
		OutputDir:                  c.OutputDir,
		TemplateDir:                c.TemplateDir,
		Auth:                       c.Auth,
		IgnoreFileOverride:         c.IgnoreFileOverride,
		Verbose:                    c.Verbose,
		SkipOverwrite:              c.SkipOverwrite,
		LanguageSpecificPrimitives: c.LanguageSpecificPrimitives,
		AdditionalProperties:       nilIfEmpty(c.AdditionalProperties),
		DynamicProperties:          nilIfEmpty(c.DynamicProperties),
		SystemProperties:           nilIfEmpty(c.SystemProperties),
	}

	naming := NamingOptions{
		ModelPackage:    c.ModelPackage,
		APIPackage:      c.APIPackage,
		InvokerPackage:  c.InvokerPackage,
		ModelNamePrefix: c.ModelNamePrefix,
		ModelNameSuffix: c.ModelNameSuffix,
	}
	if naming != (NamingOptions{}) {
		out.Naming = &naming
	}

	coordinates := CoordinateOptions{
		GroupID:         c.GroupID,
		ArtifactID:      c.ArtifactID,
		ArtifactVersion: c.ArtifactVersion,
		Library:         c.Library,
		GitUserID:       c.GitUserID,
		GitRepoID:       c.GitRepoID,
		ReleaseNote:     c.ReleaseNote,
		HTTPUserAgent:   c.HTTPUserAgent,
	}
	if coordinates != (CoordinateOptions{}) {
		out.Coordinates = &coordinates
	}

	mappings := MappingOptions{
		InstantiationTypes:    nilIfEmpty(c.InstantiationTypes),
		TypeMappings:          nilIfEmpty(c.TypeMappings),
		ImportMappings:        nilIfEmpty(c.ImportMappings),
		ReservedWordsMappings: nilIfEmpty(c.ReservedWordsMappings),
	}
	if mappings.InstantiationTypes != nil || mappings.TypeMappings != nil ||
		mappings.ImportMappings != nil || mappings.ReservedWordsMappings != nil {
		out.Mappings = &mappings
	}

	return out
}

func nilIfEmpty[V any](m map[string]V) map[string]V {
	if len(m) == 0 {
		return nil
	}
	return maps.Clone(m)
}
