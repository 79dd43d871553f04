/*
 *	Copyright 2025 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

// Package kernelcache is an on-disk cache of compiled code objects, indexed by everything that determines
// the compilation output: source, headers, name expressions, options and target architecture.
//
// Entries are encoded in the protocol buffers wire format, one file per entry, and written atomically
// (temporary file + rename), so concurrent processes can share a cache directory.
package kernelcache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
	"k8s.io/klog/v2"
)

// DirEnv is the name of the environment variable that overrides the default cache directory.
const DirEnv = "GOHIP_KERNEL_CACHE"

// entryExt is the file extension of the cache entries.
const entryExt = ".hipco"

// Header is a source #include'd by the program.
type Header struct {
	Name, Source string
}

// Key identifies a compilation.
type Key struct {
	Source          string
	Name            string
	Headers         []Header
	NameExpressions []string
	Options         []string
	Arch            string

	// Platform ("amd" or "nvidia") and CompilerVersion (e.g. "6.2") of the compiler: code objects are not reused
	// across platforms or compiler upgrades.
	Platform        string
	CompilerVersion string
}

// Field numbers of the Key encoding.
const (
	keySourceField protowire.Number = iota + 1
	keyNameField
	keyHeaderField
	keyNameExpressionField
	keyOptionField
	keyArchField
	keyPlatformField
	keyCompilerVersionField
)

// Digest returns the hex encoded SHA-256 of the key. Two keys have the same digest only if all their fields
// are equal, including the order of headers, name expressions and options.
func (k Key) Digest() string {
	var b []byte
	b = appendString(b, keySourceField, k.Source)
	b = appendString(b, keyNameField, k.Name)
	for _, h := range k.Headers {
		var header []byte
		header = appendString(header, 1, h.Name)
		header = appendString(header, 2, h.Source)
		b = protowire.AppendTag(b, keyHeaderField, protowire.BytesType)
		b = protowire.AppendBytes(b, header)
	}
	for _, expr := range k.NameExpressions {
		b = appendString(b, keyNameExpressionField, expr)
	}
	for _, option := range k.Options {
		b = appendString(b, keyOptionField, option)
	}
	b = appendString(b, keyArchField, k.Arch)
	b = appendString(b, keyPlatformField, k.Platform)
	b = appendString(b, keyCompilerVersionField, k.CompilerVersion)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// Cache of compiled code objects in a directory.
type Cache struct {
	dir string
}

// New returns a cache stored in dir, creating the directory if needed.
func New(dir string) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("kernelcache.New() requires a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating kernel cache directory %q", dir)
	}
	return &Cache{dir: dir}, nil
}

// DefaultDir returns the directory set in $GOHIP_KERNEL_CACHE, or "gohip/kernels" under the user cache
// directory (see os.UserCacheDir).
func DefaultDir() (string, error) {
	if dir := os.Getenv(DirEnv); dir != "" {
		return dir, nil
	}
	userDir, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrapf(err, "no user cache directory, set $%s to the kernel cache directory", DirEnv)
	}
	return filepath.Join(userDir, "gohip", "kernels"), nil
}

// Default returns the cache in DefaultDir.
func Default() (*Cache, error) {
	dir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	return New(dir)
}

// Dir returns the directory of the cache.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) path(key Key) string {
	return filepath.Join(c.dir, key.Digest()+entryExt)
}

// Get returns the entry for the key. If there is no entry it returns found=false and no error.
func (c *Cache) Get(key Key) (entry *Entry, found bool, err error) {
	entryPath := c.path(key)
	data, err := os.ReadFile(entryPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "reading kernel cache entry %q", entryPath)
	}
	entry, err = UnmarshalEntry(data)
	if err != nil {
		return nil, false, errors.WithMessagef(err, "kernel cache entry %q", entryPath)
	}
	klog.V(2).Infof("kernel cache hit: %s", entryPath)
	return entry, true, nil
}

// Put stores the entry for the key, replacing any previous entry.
func (c *Cache) Put(key Key, entry *Entry) error {
	entryPath := c.path(key)
	f, err := os.CreateTemp(c.dir, filepath.Base(entryPath)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "creating kernel cache entry for %q", entryPath)
	}
	tmpPath := f.Name()
	_, err = f.Write(entry.Marshal())
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmpPath, entryPath)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "writing kernel cache entry %q", entryPath)
	}
	klog.V(2).Infof("kernel cache stored: %s", entryPath)
	return nil
}

// Delete removes the entry for the key, if present.
func (c *Cache) Delete(key Key) error {
	err := os.Remove(c.path(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "deleting kernel cache entry")
	}
	return nil
}

// Clear removes all entries of the cache. It returns the number of entries removed.
func (c *Cache) Clear() (int, error) {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, errors.Wrapf(err, "listing kernel cache %q", c.dir)
	}
	var count int
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() || !strings.HasSuffix(dirEntry.Name(), entryExt) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, dirEntry.Name())); err != nil {
			return count, errors.Wrapf(err, "clearing kernel cache %q", c.dir)
		}
		count++
	}
	return count, nil
}
