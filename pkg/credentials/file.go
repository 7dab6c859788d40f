package credentials

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"gopkg.in/ini.v1"
)

// CredentialFileName is the file name searched for in the default locations.
const CredentialFileName = "credentials.cbc"

// DefaultCredentialFiles returns the standard credential file locations in
// load order: system-wide, per-user, then the working directory. Later files
// override earlier ones.
func DefaultCredentialFiles() []string {
	var paths []string
	if runtime.GOOS != "windows" {
		paths = append(paths, filepath.Join("/etc", "carbonblack", CredentialFileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".carbonblack", CredentialFileName))
	}
	paths = append(paths, filepath.Join(".carbonblack", CredentialFileName))
	return paths
}

// FileProvider reads credentials from INI credential files. Each section is a
// profile.
type FileProvider struct {
	paths  []string
	logger *slog.Logger

	once sync.Once
	cfg  *ini.File
	err  error
}

// FileOption configures a FileProvider.
type FileOption func(*FileProvider)

// WithFileLogger sets the logger used for permission warnings.
func WithFileLogger(l *slog.Logger) FileOption {
	return func(p *FileProvider) { p.logger = l }
}

// NewFileProvider creates a provider over the given files. With no paths the
// default locations are used. Missing files are skipped.
func NewFileProvider(paths []string, opts ...FileOption) *FileProvider {
	if len(paths) == 0 {
		paths = DefaultCredentialFiles()
	}
	p := &FileProvider{paths: paths, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns "file".
func (p *FileProvider) Name() string {
	return "file"
}

// Paths returns the files this provider reads, in load order.
func (p *FileProvider) Paths() []string {
	return append([]string(nil), p.paths...)
}

func (p *FileProvider) load() (*ini.File, error) {
	p.once.Do(func() {
		p.cfg, p.err = p.loadFiles()
	})
	return p.cfg, p.err
}

func (p *FileProvider) loadFiles() (*ini.File, error) {
	var existing []interface{}
	for _, path := range p.paths {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("reading credential file %s: %w", path, err)
		}
		if info.IsDir() {
			continue
		}
		p.checkPermissions(path, info)
		existing = append(existing, path)
	}

	// Values may contain '#' and ';' (tokens, proxy passwords), so inline
	// comments are not recognized.
	opts := ini.LoadOptions{InsensitiveKeys: true, IgnoreInlineComment: true}
	if len(existing) == 0 {
		return ini.Empty(opts), nil
	}
	cfg, err := ini.LoadSources(opts, existing[0], existing[1:]...)
	if err != nil {
		return nil, &CredentialError{
			Provider: p.Name(),
			Err:      ErrInvalidValue,
			Detail:   fmt.Sprintf("parsing credential file: %v", err),
		}
	}
	return cfg, nil
}

// checkPermissions warns when a credential file is readable by group or other.
func (p *FileProvider) checkPermissions(path string, info os.FileInfo) {
	if runtime.GOOS == "windows" {
		return
	}
	if perm := info.Mode().Perm(); perm&0077 != 0 {
		p.logger.Warn("credential file is readable by other users",
			"path", path,
			"mode", fmt.Sprintf("%04o", perm),
			"fix", "chmod 600 "+path)
	}
}

// Profiles returns the profile (section) names found across all files.
func (p *FileProvider) Profiles() ([]string, error) {
	cfg, err := p.load()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, name := range cfg.SectionStrings() {
		if name == ini.DefaultSection {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// loadErr returns the error from reading or parsing the files, if any.
// Missing files are not an error.
func (p *FileProvider) loadErr() error {
	_, err := p.load()
	return err
}

// HasProfile reports whether a section named profile exists.
func (p *FileProvider) HasProfile(profile string) bool {
	cfg, err := p.load()
	if err != nil {
		return false
	}
	_, err = cfg.GetSection(profileOrDefault(profile))
	return err == nil
}

// GetCredentials returns the credentials in the section named profile.
func (p *FileProvider) GetCredentials(ctx context.Context, profile string) (*Credentials, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	profile = profileOrDefault(profile)

	cfg, err := p.load()
	if err != nil {
		return nil, withContext(err, p.Name(), profile)
	}

	section, err := cfg.GetSection(profile)
	if err != nil {
		return nil, notFound(p.Name(), profile,
			"Add a ["+profile+"] section to one of: "+strings.Join(p.paths, ", "))
	}

	creds, err := New(section.KeysHash())
	if err != nil {
		return nil, withContext(err, p.Name(), profile)
	}
	return creds, nil
}
