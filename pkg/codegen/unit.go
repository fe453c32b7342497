package codegen

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/alexandremahdhaoui/gentask/pkg/flaterrors"
)

// DefaultOutputRoot is the directory, relative to the project directory,
// under which each unit gets its default output directory.
const DefaultOutputRoot = "build/generated-src"

// Unit is one declared generation unit: a named Config bound to the project
// that declares it.
//
// A Unit is mutable until it is handed to a runner. Nothing is validated on
// mutation; a failed FromFile is reported by Snapshot.
type Unit struct {
	name       string
	dirs       ProjectDirs
	configFile string
	loadErr    error
	config     Config
}

// NewUnit declares a unit. Its output directory defaults to
// <projectDir>/build/generated-src/<name>. An empty RootDir defaults to the
// project directory.
func NewUnit(name string, dirs ProjectDirs) *Unit {
	dirs.ProjectDir = absPath(dirs.ProjectDir)
	if dirs.RootDir == "" {
		dirs.RootDir = dirs.ProjectDir
	} else {
		dirs.RootDir = absPath(dirs.RootDir)
	}

	u := &Unit{name: name, dirs: dirs} //nolint:exhaustruct
	u.SetOutputDir(u.defaultOutputDir())

	return u
}

// Name returns the unit name.
func (u *Unit) Name() string { return u.name }

// Dirs returns the directories of the declaring project.
func (u *Unit) Dirs() ProjectDirs { return u.dirs }

// ConfigFile returns the resolved path of the last file loaded by FromFile.
func (u *Unit) ConfigFile() string { return u.configFile }

// FromFile replaces the whole configuration with the one declared in path.
// Relative paths, in the argument and in the file, are resolved against the
// project directory. Options set afterwards override the file's values.
func (u *Unit) FromFile(path string) {
	u.configFile = u.resolve(path)

	cfg, err := ReadConfigFromPath(u.configFile)
	if err != nil {
		u.loadErr = err
		u.config = Config{} //nolint:exhaustruct
		u.SetOutputDir(u.defaultOutputDir())

		return
	}

	u.loadErr = nil
	u.config = cfg
	u.config.InputSpec = u.resolve(cfg.InputSpec)
	u.config.TemplateDir = u.resolve(cfg.TemplateDir)

	if cfg.OutputDir == "" {
		u.SetOutputDir(u.defaultOutputDir())
	} else {
		u.SetOutputDir(cfg.OutputDir)
	}
}

// Configure merges cfg into the unit as overrides, see Config.Merge.
// Paths in cfg are resolved against the project directory.
func (u *Unit) Configure(cfg Config) {
	cfg = cfg.DeepCopy()
	cfg.InputSpec = u.resolve(cfg.InputSpec)
	cfg.OutputDir = u.resolve(cfg.OutputDir)
	cfg.TemplateDir = u.resolve(cfg.TemplateDir)
	u.config.Merge(cfg)
}

// Snapshot returns a deep copy of the configuration, safe to read while the
// unit keeps being mutated. The error is the failure of the last FromFile.
func (u *Unit) Snapshot() (Config, error) {
	return u.config.DeepCopy(), u.loadErr
}

// Inputs returns the files the generation reads: the input spec, the
// template directory and the configuration file, when set.
func (u *Unit) Inputs() []string {
	var out []string
	for _, p := range []string{u.config.InputSpec, u.config.TemplateDir, u.configFile} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Outputs returns the directories the generation writes.
func (u *Unit) Outputs() []string {
	if u.config.OutputDir == "" {
		return nil
	}
	return []string{u.config.OutputDir}
}

var errFingerprinting = errors.New("computing unit fingerprint")

// Fingerprint hashes the engine options together with the content of every
// input. Two runs with equal fingerprints would produce the same output.
func (u *Unit) Fingerprint() (string, error) {
	h := sha256.New()

	b, err := json.Marshal(u.config.Options())
	if err != nil {
		return "", flaterrors.Join(err, errFingerprinting)
	}
	_, _ = h.Write(b)

	if err := hashFiles(h, u.Inputs()); err != nil {
		return "", flaterrors.Join(err, errFingerprinting)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// hashFiles writes the path and content of every file under paths to h.
func hashFiles(h io.Writer, paths []string) error {
	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}

			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			_, _ = h.Write([]byte(path))
			_, _ = h.Write(content)

			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (u *Unit) defaultOutputDir() string {
	return filepath.Join(u.dirs.ProjectDir, DefaultOutputRoot, u.name)
}

func (u *Unit) resolve(path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(u.dirs.ProjectDir, path)
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// ----------------------------------------------------- PATHS ------------------------------------------------------ //

func (u *Unit) InputSpec() string          { return u.config.InputSpec }
func (u *Unit) SetInputSpec(path string)   { u.config.InputSpec = u.resolve(path) }
func (u *Unit) OutputDir() string          { return u.config.OutputDir }
func (u *Unit) SetOutputDir(path string)   { u.config.OutputDir = u.resolve(path) }
func (u *Unit) TemplateDir() string        { return u.config.TemplateDir }
func (u *Unit) SetTemplateDir(path string) { u.config.TemplateDir = u.resolve(path) }

// ----------------------------------------------------- SCALARS ---------------------------------------------------- //

func (u *Unit) Lang() string                   { return u.config.Lang }
func (u *Unit) SetLang(v string)               { u.config.Lang = v }
func (u *Unit) Auth() string                   { return u.config.Auth }
func (u *Unit) SetAuth(v string)               { u.config.Auth = v }
func (u *Unit) ModelPackage() string           { return u.config.ModelPackage }
func (u *Unit) SetModelPackage(v string)       { u.config.ModelPackage = v }
func (u *Unit) APIPackage() string             { return u.config.APIPackage }
func (u *Unit) SetAPIPackage(v string)         { u.config.APIPackage = v }
func (u *Unit) InvokerPackage() string         { return u.config.InvokerPackage }
func (u *Unit) SetInvokerPackage(v string)     { u.config.InvokerPackage = v }
func (u *Unit) ModelNamePrefix() string        { return u.config.ModelNamePrefix }
func (u *Unit) SetModelNamePrefix(v string)    { u.config.ModelNamePrefix = v }
func (u *Unit) ModelNameSuffix() string        { return u.config.ModelNameSuffix }
func (u *Unit) SetModelNameSuffix(v string)    { u.config.ModelNameSuffix = v }
func (u *Unit) GroupID() string                { return u.config.GroupID }
func (u *Unit) SetGroupID(v string)            { u.config.GroupID = v }
func (u *Unit) ArtifactID() string             { return u.config.ArtifactID }
func (u *Unit) SetArtifactID(v string)         { u.config.ArtifactID = v }
func (u *Unit) ArtifactVersion() string        { return u.config.ArtifactVersion }
func (u *Unit) SetArtifactVersion(v string)    { u.config.ArtifactVersion = v }
func (u *Unit) Library() string                { return u.config.Library }
func (u *Unit) SetLibrary(v string)            { u.config.Library = v }
func (u *Unit) GitUserID() string              { return u.config.GitUserID }
func (u *Unit) SetGitUserID(v string)          { u.config.GitUserID = v }
func (u *Unit) GitRepoID() string              { return u.config.GitRepoID }
func (u *Unit) SetGitRepoID(v string)          { u.config.GitRepoID = v }
func (u *Unit) ReleaseNote() string            { return u.config.ReleaseNote }
func (u *Unit) SetReleaseNote(v string)        { u.config.ReleaseNote = v }
func (u *Unit) HTTPUserAgent() string          { return u.config.HTTPUserAgent }
func (u *Unit) SetHTTPUserAgent(v string)      { u.config.HTTPUserAgent = v }
func (u *Unit) IgnoreFileOverride() string     { return u.config.IgnoreFileOverride }
func (u *Unit) SetIgnoreFileOverride(v string) { u.config.IgnoreFileOverride = v }

// Verbose reports the verbose flag; an unset flag reads as false.
func (u *Unit) Verbose() bool { return u.config.Verbose != nil && *u.config.Verbose }

// SetVerbose sets the verbose flag.
func (u *Unit) SetVerbose(v bool) { u.config.Verbose = &v }

// SkipOverwrite reports the skip-overwrite flag; an unset flag reads as false.
func (u *Unit) SkipOverwrite() bool { return u.config.SkipOverwrite != nil && *u.config.SkipOverwrite }

// SetSkipOverwrite sets the skip-overwrite flag.
func (u *Unit) SetSkipOverwrite(v bool) { u.config.SkipOverwrite = &v }

// ----------------------------------------------------- MAPPINGS --------------------------------------------------- //

// Getters return copies. Set* replaces the whole mapping, Add* merges
// entries into it, overriding duplicate keys only.

func (u *Unit) InstantiationTypes() map[string]string { return maps.Clone(u.config.InstantiationTypes) }
func (u *Unit) SetInstantiationTypes(m map[string]string) {
	u.config.InstantiationTypes = maps.Clone(m)
}
func (u *Unit) AddInstantiationTypes(m map[string]string) { mergeInto(&u.config.InstantiationTypes, m) }

func (u *Unit) TypeMappings() map[string]string          { return maps.Clone(u.config.TypeMappings) }
func (u *Unit) SetTypeMappings(m map[string]string)      { u.config.TypeMappings = maps.Clone(m) }
func (u *Unit) AddTypeMappings(m map[string]string)      { mergeInto(&u.config.TypeMappings, m) }
func (u *Unit) ImportMappings() map[string]string        { return maps.Clone(u.config.ImportMappings) }
func (u *Unit) SetImportMappings(m map[string]string)    { u.config.ImportMappings = maps.Clone(m) }
func (u *Unit) AddImportMappings(m map[string]string)    { mergeInto(&u.config.ImportMappings, m) }
func (u *Unit) SystemProperties() map[string]string      { return maps.Clone(u.config.SystemProperties) }
func (u *Unit) SetSystemProperties(m map[string]string)  { u.config.SystemProperties = maps.Clone(m) }
func (u *Unit) AddSystemProperties(m map[string]string)  { mergeInto(&u.config.SystemProperties, m) }
func (u *Unit) ReservedWordsMappings() map[string]string { return maps.Clone(u.config.ReservedWordsMappings) }
func (u *Unit) SetReservedWordsMappings(m map[string]string) {
	u.config.ReservedWordsMappings = maps.Clone(m)
}
func (u *Unit) AddReservedWordsMappings(m map[string]string) {
	mergeInto(&u.config.ReservedWordsMappings, m)
}

func (u *Unit) AdditionalProperties() map[string]any { return maps.Clone(u.config.AdditionalProperties) }
func (u *Unit) SetAdditionalProperties(m map[string]any) {
	u.config.AdditionalProperties = maps.Clone(m)
}
func (u *Unit) AddAdditionalProperties(m map[string]any) { mergeInto(&u.config.AdditionalProperties, m) }

func (u *Unit) DynamicProperties() map[string]any     { return maps.Clone(u.config.DynamicProperties) }
func (u *Unit) SetDynamicProperties(m map[string]any) { u.config.DynamicProperties = maps.Clone(m) }
func (u *Unit) AddDynamicProperties(m map[string]any) { mergeInto(&u.config.DynamicProperties, m) }

// LanguageSpecificPrimitives returns the sorted set of primitives.
func (u *Unit) LanguageSpecificPrimitives() []string {
	return slices.Clone(u.config.LanguageSpecificPrimitives)
}

// SetLanguageSpecificPrimitives replaces the set of primitives.
func (u *Unit) SetLanguageSpecificPrimitives(v ...string) {
	u.config.LanguageSpecificPrimitives = normalizeSet(v)
}

// AddLanguageSpecificPrimitives adds primitives to the set.
func (u *Unit) AddLanguageSpecificPrimitives(v ...string) {
	u.config.LanguageSpecificPrimitives = normalizeSet(
		append(slices.Clone(u.config.LanguageSpecificPrimitives), v...))
}
