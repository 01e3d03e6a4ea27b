package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"perio_dictation/internal/voice"
)

// vocabularyExts lists the accepted vocabulary file extensions in lookup
// order.
var vocabularyExts = []string{".json", ".yaml", ".yml"}

var (
	errClinicNotFound = errors.New("clinic vocabulary not found")
	errInvalidClinic  = errors.New("invalid clinic name")
)

// ProfileCache caches clinic parsers built from vocabulary files, dropping
// entries when their file changes on disk.
type ProfileCache struct {
	sync.RWMutex
	profiles     map[string]*ClinicProfile
	fileModTimes map[string]time.Time
	watcher      *fsnotify.Watcher
	dir          string

	defaultProfile *ClinicProfile
	baseThresholds voice.Thresholds
	baseOptions    []voice.Option
}

// NewProfileCache creates a cache over dir. When dir does not exist only the
// default profile is served and no watcher is started.
func NewProfileCache(dir string, cfg ParserConfig, logger *slog.Logger) (*ProfileCache, error) {
	base := cfg.parserOptions(logger)
	defaultProfile, err := NewClinicProfile(nil, "", cfg.Thresholds, base)
	if err != nil {
		return nil, err
	}

	cache := &ProfileCache{
		profiles:       make(map[string]*ClinicProfile),
		fileModTimes:   make(map[string]time.Time),
		dir:            dir,
		defaultProfile: defaultProfile,
		baseThresholds: cfg.Thresholds,
		baseOptions:    base,
	}

	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("vocabulary directory missing; serving default vocabulary only", "dir", dir)
			return cache, nil
		}
		return nil, fmt.Errorf("failed to stat vocabulary directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch vocabulary directory: %w", err)
	}
	cache.watcher = watcher

	slog.Info("file watcher initialized", "dir", dir)
	return cache, nil
}

func (pc *ProfileCache) Close() {
	if pc.watcher != nil {
		pc.watcher.Close()
	}
}

// WatchFiles drops cached profiles whose vocabulary file is written, created,
// removed or renamed. It returns when ctx is done or the watcher is closed.
func (pc *ProfileCache) WatchFiles(ctx context.Context) {
	if pc.watcher == nil {
		return
	}
	slog.Info("file watcher started")

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-pc.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			clinic, ok := clinicFromFile(event.Name)
			if !ok {
				continue
			}
			pc.Invalidate(clinic)
			slog.Info("vocabulary changed; clinic will reload on next request",
				"file", event.Name, "clinic", clinic, "op", event.Op.String())

		case err, ok := <-pc.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("file watcher error", "err", err)
		}
	}
}

// Invalidate drops one clinic from the cache.
func (pc *ProfileCache) Invalidate(clinic string) {
	pc.Lock()
	delete(pc.profiles, clinic)
	delete(pc.fileModTimes, clinic)
	pc.Unlock()
}

// InvalidateAll empties the cache and returns how many profiles were dropped.
func (pc *ProfileCache) InvalidateAll() int {
	pc.Lock()
	defer pc.Unlock()
	n := len(pc.profiles)
	pc.profiles = make(map[string]*ClinicProfile)
	pc.fileModTimes = make(map[string]time.Time)
	return n
}

// Get returns the profile for clinic, loading it on first use or after its
// file changed. An empty clinic selects the default profile.
func (pc *ProfileCache) Get(clinic string) (*ClinicProfile, error) {
	if clinic == "" {
		return pc.defaultProfile, nil
	}
	if !validClinicName(clinic) {
		return nil, fmt.Errorf("%w: %q", errInvalidClinic, clinic)
	}

	filePath, err := pc.findFile(clinic)
	if err != nil {
		return nil, err
	}

	if modified, err := pc.isFileModified(clinic, filePath); err == nil && modified {
		pc.Lock()
		delete(pc.profiles, clinic)
		pc.Unlock()
		slog.Debug("detected modification, reloading", "clinic", clinic)
	}

	pc.RLock()
	profile, exists := pc.profiles[clinic]
	pc.RUnlock()
	if exists {
		return profile, nil
	}

	pc.Lock()
	defer pc.Unlock()

	// Double-check after acquiring write lock
	if profile, exists := pc.profiles[clinic]; exists {
		return profile, nil
	}

	raw, err := readVocabularyFile(filePath)
	if err != nil {
		return nil, err
	}
	profile, err = NewClinicProfile(raw, filePath, pc.baseThresholds, pc.baseOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to build clinic profile: %w", err)
	}
	pc.profiles[clinic] = profile

	slog.Info("loaded clinic vocabulary", "clinic", clinic, "file", filePath)
	return profile, nil
}

// Snapshot returns the cached profiles keyed by clinic.
func (pc *ProfileCache) Snapshot() map[string]*ClinicProfile {
	pc.RLock()
	defer pc.RUnlock()
	out := make(map[string]*ClinicProfile, len(pc.profiles))
	for k, v := range pc.profiles {
		out[k] = v
	}
	return out
}

func (pc *ProfileCache) findFile(clinic string) (string, error) {
	for _, ext := range vocabularyExts {
		p := filepath.Join(pc.dir, clinic+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", errClinicNotFound, clinic)
}

func (pc *ProfileCache) isFileModified(clinic, filePath string) (bool, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return false, err
	}
	modTime := info.ModTime()

	pc.RLock()
	lastModTime, exists := pc.fileModTimes[clinic]
	pc.RUnlock()

	if !exists || modTime.After(lastModTime) {
		pc.Lock()
		pc.fileModTimes[clinic] = modTime
		pc.Unlock()
		return exists, nil
	}
	return false, nil
}

func readVocabularyFile(filePath string) (FlexibleVocabulary, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load clinic vocabulary: %w", err)
	}

	var raw FlexibleVocabulary
	switch filepath.Ext(filePath) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse clinic vocabulary: %w", err)
	}
	return raw, nil
}

// clinicFromFile maps a watched path to its clinic name.
func clinicFromFile(name string) (string, bool) {
	base := filepath.Base(name)
	for _, ext := range vocabularyExts {
		if strings.HasSuffix(base, ext) {
			return strings.TrimSuffix(base, ext), true
		}
	}
	return "", false
}

// validClinicName rejects names that could escape the vocabulary directory.
func validClinicName(clinic string) bool {
	if clinic == "." || clinic == ".." || strings.ContainsAny(clinic, `/\`) {
		return false
	}
	return filepath.Base(clinic) == clinic
}
