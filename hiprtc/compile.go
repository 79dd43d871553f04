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

package hiprtc

import (
	"fmt"
	"time"

	"github.com/gomlx/gohip/hip"
	"github.com/gomlx/gohip/kernelcache"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Compilation configures the compilation of a program, see NewCompilation.
// It can only be used once.
type Compilation struct {
	source          string
	name            string
	headers         []kernelcache.Header
	nameExpressions []string
	options         []string
	arch            string
	cache           *kernelcache.Cache
	done            bool
}

// Compiled is the output of a successful Compilation.
type Compiled struct {
	// Code object, to be loaded with hip.LoadModule.
	Code []byte

	// Log of the compiler, usually empty.
	Log string

	// LoweredNames maps each name expression given with Compilation.WithNameExpressions to its lowered name.
	LoweredNames map[string]string

	// FromCache is true if the output was retrieved from the kernel cache, without compiling.
	FromCache bool
}

// NewCompilation starts the configuration of the compilation of the source code.
// Call Compilation.Done to compile.
func NewCompilation(source string) *Compilation {
	return &Compilation{source: source, name: DefaultProgramName}
}

// WithName sets the program name, used in the compiler messages. Default is DefaultProgramName.
func (c *Compilation) WithName(name string) *Compilation {
	c.name = name
	return c
}

// WithHeader adds a header that the source can #include with the given name.
func (c *Compilation) WithHeader(name, source string) *Compilation {
	c.headers = append(c.headers, kernelcache.Header{Name: name, Source: source})
	return c
}

// WithNameExpressions registers name expressions, whose lowered names are returned in Compiled.LoweredNames.
func (c *Compilation) WithNameExpressions(nameExpressions ...string) *Compilation {
	c.nameExpressions = append(c.nameExpressions, nameExpressions...)
	return c
}

// WithOptions appends compiler options.
func (c *Compilation) WithOptions(options ...string) *Compilation {
	c.options = append(c.options, options...)
	return c
}

// WithArch sets the target architecture (e.g. "gfx90a"), see DeviceArch. An empty arch leaves the choice to
// the compiler. It is only used on the AMD platform, see ArchOption.
func (c *Compilation) WithArch(arch string) *Compilation {
	c.arch = arch
	return c
}

// WithCache sets a kernel cache: a previous output for the same compilation is returned without compiling,
// and new outputs are stored. Failures to use the cache are logged and otherwise ignored.
func (c *Compilation) WithCache(cache *kernelcache.Cache) *Compilation {
	c.cache = cache
	return c
}

// allOptions returns the options given to the compiler on the platform.
func (c *Compilation) allOptions(platform string) []string {
	options := append([]string(nil), c.options...)
	return append(options, ArchOption(platform, c.arch)...)
}

// compilerIdentity returns the platform and the compiler version: code objects compiled with a different
// one are not reused from the cache.
func compilerIdentity() (platform, compilerVersion string, err error) {
	if platform, err = hip.Platform(); err != nil {
		return "", "", err
	}
	major, minor, err := Version()
	if err != nil {
		return "", "", err
	}
	return platform, fmt.Sprintf("%d.%d", major, minor), nil
}

func (c *Compilation) cacheKey(options []string, platform, compilerVersion string) kernelcache.Key {
	return kernelcache.Key{
		Source:          c.source,
		Name:            c.name,
		Headers:         c.headers,
		NameExpressions: c.nameExpressions,
		Options:         options,
		Arch:            c.arch,
		Platform:        platform,
		CompilerVersion: compilerVersion,
	}
}

// Done compiles the program. The program is released in all cases.
//
// If the compilation fails, the returned error is an *Error with the compiler log in Error.Log.
func (c *Compilation) Done() (compiled *Compiled, err error) {
	if c.done {
		return nil, errors.New("Compilation.Done() called more than once, create a new one with NewCompilation()")
	}
	c.done = true
	var platform string
	if c.arch != "" {
		if platform, err = hip.Platform(); err != nil {
			return nil, errors.WithMessagef(err, "compiling %q for arch %q", c.name, c.arch)
		}
	}
	options := c.allOptions(platform)

	cache := c.cache
	var key kernelcache.Key
	if cache != nil {
		cachePlatform, compilerVersion, identityErr := compilerIdentity()
		if identityErr != nil {
			klog.Warningf("hiprtc: not using the kernel cache: %+v", identityErr)
			cache = nil
		} else {
			key = c.cacheKey(options, cachePlatform, compilerVersion)
		}
	}
	if cache != nil {
		entry, found, getErr := cache.Get(key)
		switch {
		case getErr != nil:
			klog.Warningf("hiprtc: ignoring kernel cache: %+v", getErr)
		case found:
			return &Compiled{Code: entry.Code, Log: entry.Log, LoweredNames: entry.LoweredNames, FromCache: true}, nil
		}
	}

	headerNames := make([]string, len(c.headers))
	headerSources := make([]string, len(c.headers))
	for ii, h := range c.headers {
		headerNames[ii], headerSources[ii] = h.Name, h.Source
	}
	prog, err := CreateProgram(c.source, c.name, headerNames, headerSources)
	if err != nil {
		return nil, err
	}
	defer func() {
		if destroyErr := prog.Destroy(); destroyErr != nil && err == nil {
			compiled, err = nil, destroyErr
		}
	}()

	for _, expr := range c.nameExpressions {
		if err = prog.AddNameExpression(expr); err != nil {
			return nil, err
		}
	}
	compileErr := prog.Compile(options...)
	log, logErr := prog.Log()
	if compileErr != nil {
		var rtcErr *Error
		if logErr == nil && errors.As(compileErr, &rtcErr) {
			rtcErr.Log = log
		}
		return nil, errors.WithMessagef(compileErr, "compiling %q", c.name)
	}
	if logErr != nil {
		return nil, logErr
	}
	compiled = &Compiled{Log: log}
	if compiled.Code, err = prog.Code(); err != nil {
		return nil, err
	}
	if len(c.nameExpressions) > 0 {
		compiled.LoweredNames = make(map[string]string, len(c.nameExpressions))
		for _, expr := range c.nameExpressions {
			if compiled.LoweredNames[expr], err = prog.LoweredName(expr); err != nil {
				return nil, err
			}
		}
	}

	if cache != nil {
		entry := &kernelcache.Entry{
			Code:         compiled.Code,
			Log:          compiled.Log,
			LoweredNames: compiled.LoweredNames,
			Options:      options,
			Arch:         c.arch,
			CreatedAt:    time.Now(),
		}
		if err := cache.Put(key, entry); err != nil {
			klog.Warningf("hiprtc: failed to store compilation of %q in the kernel cache: %+v", c.name, err)
		}
	}
	return compiled, nil
}

// ArchOption returns the compiler options that target the given architecture: "--offload-arch=<arch>" on AMD,
// none on NVIDIA or if gcnArchName is empty.
func ArchOption(platform, gcnArchName string) []string {
	if platform != hip.PlatformAMD || gcnArchName == "" {
		return nil
	}
	return []string{"--offload-arch=" + gcnArchName}
}

// DeviceArch returns the architecture to use with Compilation.WithArch to target the device: its
// GCNArchName on AMD, and empty on NVIDIA.
func DeviceArch(device hip.Device) (string, error) {
	platform, err := hip.Platform()
	if err != nil {
		return "", err
	}
	if platform != hip.PlatformAMD {
		return "", nil
	}
	props, err := device.Properties()
	if err != nil {
		return "", err
	}
	return props.GCNArchName, nil
}
