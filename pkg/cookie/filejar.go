// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cookie

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const fileJarSchemaVersion = "1.0.0"

// StaleLockAge is how old a lock file must be before Flush treats it as
// left behind by a crashed run and removes it.
const StaleLockAge = 30 * time.Second

// 💾 FileJar is a Jar persisted to a JSON file between runs. It stands in for
// a browser profile when the engine is driven from the command line.
type FileJar struct {
	*Jar
	path string
}

// 📄 jarFile is the on-disk format
type jarFile struct {
	SchemaVersion string    `json:"schema_version"`
	LastUpdated   time.Time `json:"last_updated"`
	Cookies       []Cookie  `json:"cookies"`
}

// 🏭 NewFileJar creates a jar backed by path. Nothing is read until Load.
func NewFileJar(path string, opts ...JarOption) (*FileJar, error) {
	if path == "" {
		return nil, errors.Errorf("jar path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Errorf("resolving jar path: %w", err)
	}
	return &FileJar{Jar: NewJar(opts...), path: abs}, nil
}

// Path returns the absolute location of the jar file.
func (f *FileJar) Path() string {
	return f.path
}

// 📥 Load replaces the jar contents with the file contents. A missing file
// leaves the jar empty.
func (f *FileJar) Load(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", f.path).Msg("loading cookie jar")

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Errorf("reading jar file: %w", err)
	}

	var file jarFile
	if err := json.Unmarshal(data, &file); err != nil {
		return errors.Errorf("parsing jar file: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.cookies = make(map[string]Cookie, len(file.Cookies))
	f.order = f.order[:0]
	now := f.now()
	for _, c := range file.Cookies {
		if c.Name == "" || c.Expired(now) {
			continue
		}
		if _, dup := f.cookies[c.Name]; !dup {
			f.order = append(f.order, c.Name)
		}
		f.cookies[c.Name] = c
	}
	logger.Debug().Int("cookies", len(f.order)).Msg("cookie jar loaded")
	return nil
}

// 📤 Flush writes the visible cookies to disk. The write goes through a
// lock file and a temp file rename so concurrent runs never see a torn jar.
func (f *FileJar) Flush(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", f.path).Msg("flushing cookie jar")

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return errors.Errorf("creating jar directory: %w", err)
	}

	lockPath := f.path + ".lock"
	lock, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil && os.IsExist(err) && removeStaleLock(lockPath) {
		logger.Warn().Str("lock", lockPath).Msg("removed stale lock file")
		lock, err = os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	}
	if err != nil {
		return errors.Errorf("creating lock file %s: %w", lockPath, err)
	}
	defer func() {
		lock.Close()
		os.Remove(lockPath)
	}()

	data, err := json.MarshalIndent(jarFile{
		SchemaVersion: fileJarSchemaVersion,
		LastUpdated:   f.now().UTC(),
		Cookies:       f.Cookies(),
	}, "", "\t")
	if err != nil {
		return errors.Errorf("encoding jar file: %w", err)
	}

	tempPath := f.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tempPath, f.path); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func removeStaleLock(path string) bool {
	info, err := os.Stat(path)
	if err != nil || time.Since(info.ModTime()) < StaleLockAge {
		return false
	}
	return os.Remove(path) == nil
}
